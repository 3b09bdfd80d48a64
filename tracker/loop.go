package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/brightsms/momotracker/gateways"
	"github.com/brightsms/momotracker/ledger"
	"github.com/brightsms/momotracker/utils"
)

// loop owns the polling of a single transaction id. Polls are strictly
// sequential inside it: the store write of poll N happens before poll N+1
// is even scheduled
type loop struct {
	id       string
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (l *loop) signalStop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// startLoop attaches a polling loop to the id unless one is already live.
// This is the at-most-one-loop-per-id guarantee
func (c *Controller) startLoop(id string) (started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, running := c.loops[id]
	if running {
		return false
	}

	l := &loop{
		id:   id,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.loops[id] = l
	go c.run(l)
	return true
}

func (c *Controller) forgetLoop(l *loop) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loops[l.id] == l {
		delete(c.loops, l.id)
	}
}

func (c *Controller) run(l *loop) {
	defer close(l.done)
	defer c.forgetLoop(l)

	for {
		tx, err := c.getPending(l.id)
		if err != nil {
			if !errors.Is(err, ErrTransactionNotFound) {
				log.Println("ERROR|TRACKING|LOAD", l.id, err)
			}
			return
		}

		interval := c.pollInterval
		if tx.Status == StatusBackground {
			interval = c.backgroundInterval
		}

		timer := time.NewTimer(interval)
		select {
		case <-l.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if c.pollOnce(l.id) {
			return
		}
	}
}

// pollOnce performs a single verification round trip and applies the state
// machine to the result. It reports whether tracking is over
func (c *Controller) pollOnce(id string) (done bool) {
	tx, err := c.getPending(id)
	if err != nil {
		// Cancelled or settled while the timer was waiting
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.requestTimeout)
	verification, err := c.gateway.Verify(ctx, gateways.VerifyRequest{TransactionId: tx.Id})
	cancel()

	var raw string
	if err != nil {
		// Transient. Counts toward the foreground bound but is never read
		// as a payment failure on its own
		log.Println("WARN|VERIFY|TRANSIENT", tx.Id, err)
	} else {
		raw = verification.Status
	}

	status, terminal := MapProviderStatus(raw)
	if terminal {
		err = c.finalize(tx, status)
		if err != nil {
			log.Println("ERROR|TRACKING|FINALIZE", tx.Id, err)
		}
		return true
	}

	if tx.Status != StatusProcessing {
		// Background polling is unbounded and keeps no counter
		return false
	}

	tx.Attempts++
	if tx.Attempts >= c.pollAttempts {
		tx.Status = StatusBackground
		tx.Attempts = 0
	}

	tx, err = c.savePending(tx)
	if err != nil {
		log.Println("ERROR|TRACKING|SAVE", tx.Id, err)
		return false
	}

	if tx.Status == StatusBackground {
		c.publish(Update{Event: EventBackground, Transaction: tx})
	}
	return false
}

// finalize applies a terminal status: credit the wallet exactly once on
// success, move the entry from pending to the terminal records and notify
// subscribers. A failed credit does not resurrect the transaction, it is
// parked in the unsettled queue instead
func (c *Controller) finalize(tx Transaction, status Status) (err error) {
	tx.Status = status

	var unsettled bool
	if status == StatusCompleted {
		ctx, cancel := utils.NewContext()
		creditErr := c.ledger.Credit(ctx, ledger.CreditRequest{
			Reference:     tx.Reference,
			TransactionId: tx.Id,
			Phone:         tx.Phone,
			Amount:        tx.Amount,
			Description:   tx.Description,
		})
		cancel()
		if creditErr != nil {
			unsettled = true
			tx.Error = creditErr.Error()
			log.Println("ERROR|CREDIT|UNSETTLED", tx.Id, creditErr)
		}
	}

	err = c.settle(tx, unsettled)
	if err != nil {
		return fmt.Errorf("failed to settle %s: %w", tx.Id, err)
	}

	switch status {
	case StatusCompleted:
		c.publish(Update{Event: EventCompleted, Transaction: tx})
	default:
		c.publish(Update{Event: EventFailed, Transaction: tx})
	}
	if unsettled {
		c.publish(Update{
			Event:       EventUnsettled,
			Transaction: tx,
			Err:         fmt.Errorf("%w: %s", ErrSideEffectFailed, tx.Error),
		})
	}
	return nil
}
