package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/brightsms/momotracker/gateways"
	"github.com/brightsms/momotracker/random"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNetwork             = errors.New("simulated network failure")
)

// ScriptError is the script entry that makes Verify fail at the transport
// level instead of returning a provider status
const ScriptError = "!error"

type transaction struct {
	script []string
	reads  int
}

// Mock implements the gateways.Gateway interface for testing purposes.
// Each transaction follows a script of status strings returned by
// successive Verify calls. The last entry repeats forever
type Mock struct {
	mu           sync.Mutex
	queued       [][]string // scripts for transactions not yet initiated
	transactions map[string]*transaction
	initiations  []gateways.InitiateRequest
	initiateErr  error

	inflight    int
	maxInflight int
}

var _ gateways.Gateway = (*Mock)(nil)

// New creates a new Mock gateway.
func New() *Mock {
	return &Mock{transactions: make(map[string]*transaction)}
}

// ScriptNext queues a Verify script for the next initiated transaction
func (m *Mock) ScriptNext(statuses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, statuses)
}

// Script installs a Verify script for a known transaction id. Used to
// simulate transactions that predate the tracker instance
func (m *Mock) Script(id string, statuses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[id] = &transaction{script: statuses}
}

// FailInitiations makes every Initiate call fail with err until reset with nil
func (m *Mock) FailInitiations(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initiateErr = err
}

// Initiations returns a copy of every initiation request received
func (m *Mock) Initiations() (reqs []gateways.InitiateRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(reqs, m.initiations...)
}

// Verifications returns how many Verify calls a transaction has received
func (m *Mock) Verifications(id string) (count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, found := m.transactions[id]
	if !found {
		return 0
	}
	return tx.reads
}

// MaxInflight reports the largest number of Verify calls ever in flight at once
func (m *Mock) MaxInflight() (count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInflight
}

func (m *Mock) Initiate(ctx context.Context, req gateways.InitiateRequest) (initiation gateways.Initiation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initiateErr != nil {
		return initiation, m.initiateErr
	}

	var script []string
	if len(m.queued) > 0 {
		script = m.queued[0]
		m.queued = m.queued[1:]
	}

	id := "MM" + random.String(random.PseudoRand, random.CharsetDigits, 12)
	m.transactions[id] = &transaction{script: script}
	m.initiations = append(m.initiations, req)

	initiation = gateways.Initiation{
		TransactionId: id,
		Status:        "pending",
	}
	return initiation, nil
}

func (m *Mock) Verify(ctx context.Context, req gateways.VerifyRequest) (verification gateways.Verification, err error) {
	m.mu.Lock()
	tx, found := m.transactions[req.TransactionId]
	if !found {
		m.mu.Unlock()
		return verification, ErrTransactionNotFound
	}

	m.inflight++
	if m.inflight > m.maxInflight {
		m.maxInflight = m.inflight
	}

	var status string
	switch {
	case len(tx.script) == 0:
		status = "pending"
	case tx.reads < len(tx.script):
		status = tx.script[tx.reads]
	default:
		status = tx.script[len(tx.script)-1]
	}
	tx.reads++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}()

	if status == ScriptError {
		return verification, ErrNetwork
	}

	verification = gateways.Verification{Status: status}
	return verification, nil
}
