package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/brightsms/momotracker/gateways"
	gwmock "github.com/brightsms/momotracker/gateways/mock"
	ledgermock "github.com/brightsms/momotracker/ledger/mock"
	"github.com/brightsms/momotracker/tracker"
	"github.com/brightsms/momotracker/tracker/testsuite"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func Test_Integration(t *testing.T) {
	t.Run("Mock", func(t *testing.T) {
		testsuite.Test(t, gwmock.New())
	})
}

func openDB(t *testing.T) (db *badger.DB) {
	options := badger.
		DefaultOptions("").
		WithInMemory(true)
	db, err := badger.Open(options)
	assert.Nil(t, err, "failed to open database")
	t.Cleanup(func() { db.Close() })
	return db
}

func Test_Initiate_Validation(t *testing.T) {
	assertions := assert.New(t)

	gw := gwmock.New()
	ctrl := tracker.New(tracker.Config{
		DB:      openDB(t),
		Gateway: gw,
		Ledger:  ledgermock.New(),
	})
	defer ctrl.Close()

	_, err := ctrl.Initiate(context.Background(), tracker.Initiate{
		Amount: decimal.Zero,
		Phone:  "+256700000000",
	})
	assertions.ErrorIs(err, tracker.ErrInvalidAmount, "zero amount should fail fast")

	_, err = ctrl.Initiate(context.Background(), tracker.Initiate{
		Amount: decimal.NewFromInt(-5),
		Phone:  "+256700000000",
	})
	assertions.ErrorIs(err, tracker.ErrInvalidAmount, "negative amount should fail fast")

	_, err = ctrl.Initiate(context.Background(), tracker.Initiate{
		Amount: decimal.NewFromInt(100),
		Phone:  "not-a-phone",
	})
	assertions.ErrorIs(err, tracker.ErrInvalidPhone, "bad phone should fail fast")

	// Validation failures must never reach the provider
	assertions.Empty(gw.Initiations(), "gateway contacted despite local validation error")

	pending, err := ctrl.ListPending()
	assertions.Nil(err, "failed to list pending")
	assertions.Empty(pending, "nothing should be tracked")
}

func Test_Initiate_GatewayRejection(t *testing.T) {
	assertions := assert.New(t)

	gw := gwmock.New()
	gw.FailInitiations(&gateways.Error{StatusCode: 400, Detail: "subscriber not registered"})

	ctrl := tracker.New(tracker.Config{
		DB:      openDB(t),
		Gateway: gw,
		Ledger:  ledgermock.New(),
	})
	defer ctrl.Close()

	_, err := ctrl.Initiate(context.Background(), tracker.Initiate{
		Amount: decimal.NewFromInt(100),
		Phone:  "+256700000000",
	})
	assertions.ErrorIs(err, tracker.ErrInitiationFailed, "rejection should map to ErrInitiationFailed")
	assertions.ErrorContains(err, "subscriber not registered", "provider detail should be preserved")

	// Nothing is stored for a rejected initiation
	pending, listErr := ctrl.ListPending()
	assertions.Nil(listErr, "failed to list pending")
	assertions.Empty(pending, "rejected initiation should store nothing")
}

func Test_Cancel_Unknown(t *testing.T) {
	ctrl := tracker.New(tracker.Config{
		DB:      openDB(t),
		Gateway: gwmock.New(),
		Ledger:  ledgermock.New(),
	})
	defer ctrl.Close()

	// Cancelling something never tracked is a no-op, twice over
	ctrl.Cancel("MM000000000000")
	ctrl.Cancel("MM000000000000")
}

func Test_Resume(t *testing.T) {
	assertions := assert.New(t)

	db := openDB(t)
	gw := gwmock.New()
	wallet := ledgermock.New()

	// A transaction left behind by an earlier run, already escalated
	seed := tracker.Transaction{
		Id:        "MM555000111222",
		Reference: uuid.NewString(),
		Amount:    decimal.NewFromInt(1000),
		Phone:     "+256700000000",
		CreatedAt: time.Now().Add(-time.Hour),
		Status:    tracker.StatusBackground,
	}
	err := db.Update(func(txn *badger.Txn) (err error) {
		return txn.Set(tracker.PendingKey(seed.Id), seed.Bytes())
	})
	assertions.Nil(err, "failed to seed store")
	gw.Script(seed.Id, "pending", "success")

	ctrl := tracker.New(tracker.Config{
		DB:                 db,
		Gateway:            gw,
		Ledger:             wallet,
		PollInterval:       20 * time.Millisecond,
		BackgroundInterval: 30 * time.Millisecond,
		PollAttempts:       3,
	})
	defer ctrl.Close()

	resumed, err := ctrl.Resume()
	assertions.Nil(err, "failed to resume")
	assertions.Equal(1, resumed, "expected exactly one reattached loop")

	// A second scan finds the loop already attached
	resumed, err = ctrl.Resume()
	assertions.Nil(err, "failed to resume again")
	assertions.Zero(resumed, "no loop should be attached twice")

	deadline := time.Now().Add(10 * time.Second)
	var latest tracker.Transaction
	for time.Now().Before(deadline) {
		latest, err = ctrl.Query(seed.Id)
		assertions.Nil(err, "failed to query resumed transaction")
		if latest.Status.Terminal() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	assertions.Equal(tracker.StatusCompleted, latest.Status, "resumed transaction should complete")
	assertions.Equal(1, wallet.CreditsFor(seed.Reference), "wallet should be credited exactly once")
}

func Test_Resume_ForcesBackground(t *testing.T) {
	assertions := assert.New(t)

	db := openDB(t)
	gw := gwmock.New()

	// Interrupted mid-foreground: the attempt budget context is gone
	seed := tracker.Transaction{
		Id:        "MM555000111333",
		Reference: uuid.NewString(),
		Amount:    decimal.NewFromInt(700),
		Phone:     "+256700000001",
		CreatedAt: time.Now().Add(-10 * time.Minute),
		Status:    tracker.StatusProcessing,
		Attempts:  7,
	}
	err := db.Update(func(txn *badger.Txn) (err error) {
		return txn.Set(tracker.PendingKey(seed.Id), seed.Bytes())
	})
	assertions.Nil(err, "failed to seed store")
	gw.Script(seed.Id, "pending")

	ctrl := tracker.New(tracker.Config{
		DB:                 db,
		Gateway:            gw,
		Ledger:             ledgermock.New(),
		PollInterval:       20 * time.Millisecond,
		BackgroundInterval: 30 * time.Millisecond,
	})
	defer ctrl.Close()

	resumed, err := ctrl.Resume()
	assertions.Nil(err, "failed to resume")
	assertions.Equal(1, resumed, "expected exactly one reattached loop")

	escalated, err := ctrl.Query(seed.Id)
	assertions.Nil(err, "failed to query resumed transaction")
	assertions.Equal(tracker.StatusBackground, escalated.Status, "resumed tracking is always background")
	assertions.Zero(escalated.Attempts, "attempts should reset on resumption")
	assertions.Equal(seed.CreatedAt.Unix(), escalated.CreatedAt.Unix(), "created_at must not change")
}

func Test_NoOverlappingVerifications(t *testing.T) {
	assertions := assert.New(t)

	gw := gwmock.New()
	ctrl := tracker.New(tracker.Config{
		DB:                 openDB(t),
		Gateway:            gw,
		Ledger:             ledgermock.New(),
		PollInterval:       10 * time.Millisecond,
		BackgroundInterval: 15 * time.Millisecond,
		PollAttempts:       3,
	})
	defer ctrl.Close()

	gw.ScriptNext("pending")
	tx, err := ctrl.Initiate(context.Background(), tracker.Initiate{
		Amount: decimal.NewFromInt(1000),
		Phone:  "+256700000000",
	})
	assertions.Nil(err, "failed to initiate")

	deadline := time.Now().Add(2 * time.Second)
	for gw.Verifications(tx.Id) < 6 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	ctrl.Cancel(tx.Id)

	assertions.GreaterOrEqual(gw.Verifications(tx.Id), 6, "expected several polls")
	assertions.Equal(1, gw.MaxInflight(), "verification calls must never overlap per transaction")
}

func Test_TerminalMonotonicity(t *testing.T) {
	assertions := assert.New(t)

	gw := gwmock.New()
	wallet := ledgermock.New()
	ctrl := tracker.New(tracker.Config{
		DB:                 openDB(t),
		Gateway:            gw,
		Ledger:             wallet,
		PollInterval:       10 * time.Millisecond,
		BackgroundInterval: 15 * time.Millisecond,
	})
	defer ctrl.Close()

	gw.ScriptNext("success")
	tx, err := ctrl.Initiate(context.Background(), tracker.Initiate{
		Amount: decimal.NewFromInt(1000),
		Phone:  "+256700000000",
	})
	assertions.Nil(err, "failed to initiate")

	deadline := time.Now().Add(5 * time.Second)
	var latest tracker.Transaction
	for time.Now().Before(deadline) {
		latest, err = ctrl.Query(tx.Id)
		assertions.Nil(err, "failed to query")
		if latest.Status.Terminal() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assertions.Equal(tracker.StatusCompleted, latest.Status, "transaction should complete")

	// No later event may disturb a terminal transaction
	ctrl.Cancel(tx.Id)
	after, err := ctrl.Query(tx.Id)
	assertions.Nil(err, "terminal record should survive cancellation")
	assertions.Equal(tracker.StatusCompleted, after.Status, "cancel must not change a terminal status")

	pending, err := ctrl.ListPending()
	assertions.Nil(err, "failed to list pending")
	assertions.Empty(pending, "terminal transaction must not be re-added")
	assertions.Equal(1, wallet.CreditsFor(tx.Reference), "credit must stay exactly once")
}
