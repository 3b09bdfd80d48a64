package tracker

import (
	"errors"
	"log"
)

// Cancel stops tracking a transaction. Idempotent: cancelling an unknown,
// already stopped or already terminal transaction is a no-op. The provider
// side state is untouched, only local tracking goes away
func (c *Controller) Cancel(id string) {
	c.mu.Lock()
	l, running := c.loops[id]
	c.mu.Unlock()

	if running {
		l.signalStop()
		// Polls are single-writer per id: wait for the loop to settle
		// before touching its entry
		<-l.done
	}

	tx, err := c.getPending(id)
	if err != nil {
		if !errors.Is(err, ErrTransactionNotFound) {
			log.Println("ERROR|CANCEL|LOAD", id, err)
		}
		return
	}
	if tx.Status.Terminal() {
		return
	}

	err = c.deletePending(id)
	if err != nil {
		log.Println("ERROR|CANCEL|DELETE", id, err)
		return
	}
	c.publish(Update{Event: EventCancelled, Transaction: tx})
}
