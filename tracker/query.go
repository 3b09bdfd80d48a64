package tracker

import (
	"errors"
)

var (
	pendingPrefix   = []byte("/pending/")
	unsettledPrefix = []byte("/unsettled/")
)

// Query returns the live pending entry of a transaction, or the terminal
// record kept after settlement
func (c *Controller) Query(id string) (tx Transaction, err error) {
	tx, err = c.getPending(id)
	if err == nil {
		return tx, nil
	}
	if !errors.Is(err, ErrTransactionNotFound) {
		return tx, err
	}
	return c.getAt(TransactionKey(id))
}

// ListPending returns every transaction still being tracked. Used by the
// resumption scan and by UIs showing payment-in-progress banners
func (c *Controller) ListPending() (txs []Transaction, err error) {
	return c.listPrefix(pendingPrefix)
}

// ListUnsettled returns confirmed payments whose wallet credit failed and
// which wait for manual reconciliation
func (c *Controller) ListUnsettled() (txs []Transaction, err error) {
	return c.listPrefix(unsettledPrefix)
}
