package tracker

import (
	"fmt"
	"log"
)

// Resume scans the store once for transactions left mid-flight by an earlier
// run and reattaches a background loop to each. Foreground polling is never
// restarted: the original attempt budget and the user's waiting context are
// gone, so resumed transactions always track at the long interval
func (c *Controller) Resume() (resumed int, err error) {
	pending, err := c.ListPending()
	if err != nil {
		return 0, fmt.Errorf("failed to scan pending transactions: %w", err)
	}

	for _, tx := range pending {
		if !tx.Status.Tracking() {
			continue
		}

		if tx.Status != StatusBackground {
			tx.Status = StatusBackground
			tx.Attempts = 0
			tx, err = c.savePending(tx)
			if err != nil {
				log.Println("ERROR|RESUME|SAVE", tx.Id, err)
				continue
			}
		}

		if c.startLoop(tx.Id) {
			resumed++
		}
	}
	return resumed, nil
}
