package mock

import (
	"context"
	"sync"

	"github.com/brightsms/momotracker/ledger"
)

// Mock implements the ledger.Ledger interface for testing purposes.
// It records every credit and can be told to fail
type Mock struct {
	mu      sync.Mutex
	credits []ledger.CreditRequest
	err     error
}

var _ ledger.Ledger = (*Mock)(nil)

// New creates a new Mock ledger.
func New() *Mock {
	return &Mock{}
}

// Fail makes every Credit call fail with err until reset with nil
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Credits returns a copy of every credit request received
func (m *Mock) Credits() (reqs []ledger.CreditRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(reqs, m.credits...)
}

// CreditsFor returns how many credits were attempted with the given reference
func (m *Mock) CreditsFor(reference string) (count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, credit := range m.credits {
		if credit.Reference == reference {
			count++
		}
	}
	return count
}

func (m *Mock) Credit(ctx context.Context, req ledger.CreditRequest) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.credits = append(m.credits, req)
	return m.err
}
