package testsuite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	_ "embed"

	"github.com/brightsms/momotracker/gateways"
	ledgermock "github.com/brightsms/momotracker/ledger/mock"
	"github.com/brightsms/momotracker/random"
	"github.com/brightsms/momotracker/tracker"
	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

// Scriptable is a gateway whose Verify answers can be scripted per
// transaction ahead of time
type Scriptable interface {
	gateways.Gateway

	// ScriptNext queues the Verify script of the next initiated transaction
	ScriptNext(statuses ...string)
	// Verifications returns how many Verify calls a transaction received
	Verifications(id string) (count int)
}

//go:embed tests/scenarios.yaml
var scenarioTests []byte

const (
	pollInterval       = 40 * time.Millisecond
	backgroundInterval = 60 * time.Millisecond
	settleDeadline     = 10 * time.Second
)

// Test runs the scripted confirmation scenarios against any Scriptable
// gateway implementation.
func Test(t *testing.T, gw Scriptable) {
	t.Run("Scenarios", func(t *testing.T) {
		type Expect struct {
			Events        []string `yaml:"events"`
			Status        string   `yaml:"status"`
			Credits       int      `yaml:"credits"`
			Verifications int      `yaml:"verifications"`
			Unsettled     bool     `yaml:"unsettled"`
		}
		type Test struct {
			Name                  string   `yaml:"name"`
			Script                []string `yaml:"script"`
			Bound                 uint64   `yaml:"bound"`
			CreditError           string   `yaml:"credit-error"`
			CancelAfterBackground bool     `yaml:"cancel-after-background"`
			Expect                Expect   `yaml:"expect"`
		}

		var tests []Test
		err := yaml.Unmarshal(scenarioTests, &tests)
		assert.Nil(t, err, "failed to load tests")

		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				assertions := assert.New(t)

				options := badger.
					DefaultOptions("").
					WithInMemory(true)
				db, err := badger.Open(options)
				assertions.Nil(err, "failed to open database")
				defer db.Close()

				wallet := ledgermock.New()
				if test.CreditError != "" {
					wallet.Fail(errors.New(test.CreditError))
				}

				ctrl := tracker.New(tracker.Config{
					DB:                 db,
					Gateway:            gw,
					Ledger:             wallet,
					PollInterval:       pollInterval,
					PollAttempts:       test.Bound,
					BackgroundInterval: backgroundInterval,
				})
				defer ctrl.Close()

				gw.ScriptNext(test.Script...)

				description := random.String(random.PseudoRand, random.CharsetAlphaNumeric, 12)
				tx, err := ctrl.Initiate(context.Background(), tracker.Initiate{
					Amount:      decimal.NewFromInt(1000),
					Phone:       "+256700000000",
					Description: description,
				})
				assertions.Nil(err, "failed to initiate payment")
				assertions.Equal(tracker.StatusProcessing, tx.Status, "fresh transaction should be processing")
				assertions.Zero(tx.Attempts, "fresh transaction should have no attempts")
				assertions.NotEmpty(tx.Reference, "missing reference")

				var mu sync.Mutex
				var events []string
				unsubscribe := ctrl.Subscribe(tx.Id, func(update tracker.Update) {
					mu.Lock()
					defer mu.Unlock()
					events = append(events, string(update.Event))
				})
				defer unsubscribe()

				seen := func(event string) (found bool) {
					mu.Lock()
					defer mu.Unlock()
					for _, e := range events {
						if e == event {
							return true
						}
					}
					return false
				}

				deadline := time.Now().Add(settleDeadline)
				if test.CancelAfterBackground {
					for !seen(string(tracker.EventBackground)) && time.Now().Before(deadline) {
						time.Sleep(pollInterval / 4)
					}
					assertions.True(seen(string(tracker.EventBackground)), "never escalated to background")

					escalated, err := ctrl.Query(tx.Id)
					assertions.Nil(err, "failed to query escalated transaction")
					assertions.Equal(tracker.StatusBackground, escalated.Status, "invalid escalated status")
					assertions.Zero(escalated.Attempts, "attempts should reset on escalation")

					ctrl.Cancel(tx.Id)
					// Cancelling again must change nothing
					ctrl.Cancel(tx.Id)

					_, err = ctrl.Query(tx.Id)
					assertions.ErrorIs(err, tracker.ErrTransactionNotFound, "cancelled transaction should be gone")
				} else {
					// Terminal events publish after the store settles, so once
					// the event is visible every other assert below is stable
					for !seen(test.Expect.Status) && time.Now().Before(deadline) {
						time.Sleep(pollInterval / 4)
					}
					assertions.True(seen(test.Expect.Status), "never reached a terminal status")

					latest, err := ctrl.Query(tx.Id)
					assertions.Nil(err, "failed to query settled transaction")
					assertions.Equal(tracker.Status(test.Expect.Status), latest.Status, "invalid terminal status")
					assertions.Equal(tx.CreatedAt.Unix(), latest.CreatedAt.Unix(), "created_at must not change")

					// Terminal transactions leave the pending set
					pending, err := ctrl.ListPending()
					assertions.Nil(err, "failed to list pending")
					for _, p := range pending {
						assertions.NotEqual(tx.Id, p.Id, "settled transaction still pending")
					}
				}

				if test.Expect.Unsettled {
					for !seen(string(tracker.EventUnsettled)) && time.Now().Before(deadline) {
						time.Sleep(pollInterval / 4)
					}
					unsettled, err := ctrl.ListUnsettled()
					assertions.Nil(err, "failed to list unsettled")
					assertions.Len(unsettled, 1, "expected one unsettled record")
					if len(unsettled) == 1 {
						assertions.Equal(tx.Id, unsettled[0].Id, "wrong unsettled record")
						assertions.NotEmpty(unsettled[0].Error, "unsettled record should carry the credit error")
					}
				} else {
					unsettled, err := ctrl.ListUnsettled()
					assertions.Nil(err, "failed to list unsettled")
					assertions.Empty(unsettled, "unexpected unsettled records")
				}

				assertions.Equal(test.Expect.Credits, wallet.CreditsFor(tx.Reference), "invalid credit count")

				if test.Expect.Verifications > 0 {
					assertions.Equal(test.Expect.Verifications, gw.Verifications(tx.Id), "invalid verification count")
				}

				mu.Lock()
				observed := append([]string(nil), events...)
				mu.Unlock()
				assertions.Equal(test.Expect.Events, observed, "invalid event sequence")
			})
		}
	})
}
