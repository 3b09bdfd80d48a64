package tracker

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

func (c *Controller) getAt(key []byte) (tx Transaction, err error) {
	err = c.db.View(func(txn *badger.Txn) (err error) {
		entry, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to query entry: %w", err)
		}

		err = entry.Value(func(val []byte) (err error) {
			err = tx.FromBytes(val)
			if err != nil {
				return fmt.Errorf("failed to unmarshal transaction: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to retrieve value: %w", err)
		}
		return nil
	})
	if err != nil {
		return tx, err
	}
	return tx, nil
}

func (c *Controller) getPending(id string) (tx Transaction, err error) {
	return c.getAt(PendingKey(id))
}

// savePending writes a pending entry, honoring the merge rules: tracking an
// already known id overwrites mutable fields only, created_at is preserved
// and terminal entries are never resurrected
func (c *Controller) savePending(tx Transaction) (saved Transaction, err error) {
	err = c.db.Update(func(txn *badger.Txn) (err error) {
		key := PendingKey(tx.Id)

		entry, err := txn.Get(key)
		switch {
		case err == nil:
			var existing Transaction
			err = entry.Value(func(val []byte) (err error) {
				return existing.FromBytes(val)
			})
			if err != nil {
				return fmt.Errorf("failed to read existing entry: %w", err)
			}
			if existing.Status.Terminal() {
				tx = existing
				return nil
			}
			tx.CreatedAt = existing.CreatedAt
		case errors.Is(err, badger.ErrKeyNotFound):
			// First write for this id
		default:
			return fmt.Errorf("failed to query existing entry: %w", err)
		}

		err = txn.Set(key, tx.Bytes())
		if err != nil {
			return fmt.Errorf("failed to set pending entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return saved, fmt.Errorf("failed to save pending transaction: %w", err)
	}
	return tx, nil
}

func (c *Controller) deletePending(id string) (err error) {
	err = c.db.Update(func(txn *badger.Txn) (err error) {
		err = txn.Delete(PendingKey(id))
		if err != nil {
			return fmt.Errorf("failed to delete pending key: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete pending transaction: %w", err)
	}
	return nil
}

// settle atomically removes the pending entry and writes the terminal
// record kept for queries after completion. A failed credit additionally
// leaves a copy in the unsettled queue for manual reconciliation
func (c *Controller) settle(tx Transaction, unsettled bool) (err error) {
	err = c.db.Update(func(txn *badger.Txn) (err error) {
		err = txn.Delete(PendingKey(tx.Id))
		if err != nil {
			return fmt.Errorf("failed to delete pending key: %w", err)
		}

		err = txn.Set(TransactionKey(tx.Id), tx.Bytes())
		if err != nil {
			return fmt.Errorf("failed to set terminal record: %w", err)
		}

		if unsettled {
			err = txn.Set(UnsettledKey(tx.Id), tx.Bytes())
			if err != nil {
				return fmt.Errorf("failed to set unsettled record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to settle transaction: %w", err)
	}
	return nil
}

func (c *Controller) listPrefix(prefix []byte) (txs []Transaction, err error) {
	err = c.db.View(func(txn *badger.Txn) (err error) {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			var tx Transaction

			item := it.Item()
			err = item.Value(func(val []byte) (err error) {
				err = tx.FromBytes(val)
				if err != nil {
					return fmt.Errorf("failed to unmarshal to transaction: %w", err)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to retrieve transaction value: %w", err)
			}

			txs = append(txs, tx)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate prefix: %w", err)
	}
	return txs, nil
}
