package tracker

import (
	"sync"
	"time"

	"github.com/brightsms/momotracker/gateways"
	"github.com/brightsms/momotracker/ledger"
	"github.com/brightsms/momotracker/utils"
	badger "github.com/dgraph-io/badger/v4"
)

const (
	// Foreground window: 12 polls at 5s, roughly a minute of active waiting
	DefaultPollInterval = 5 * time.Second
	DefaultPollAttempts = 12
	// Background polls run until a terminal status or cancellation
	DefaultBackgroundInterval = 15 * time.Second

	minRequestTimeout = 100 * time.Millisecond
)

type Config struct {
	// Badger database to use
	DB *badger.DB
	// Payment provider to initiate and verify transactions against
	Gateway gateways.Gateway
	// Wallet credited once per confirmed payment
	Ledger ledger.Ledger
	// Interval between foreground polls
	PollInterval time.Duration
	// Foreground polls before handing the transaction to background tracking
	PollAttempts uint64
	// Interval between background polls
	BackgroundInterval time.Duration
	// Timeout of a single verification call. Clamped to half the foreground
	// interval so a stalled call never overlaps the next poll
	RequestTimeout time.Duration
	// URL forwarded to the provider for its own notifications
	CallbackURL string
}

type Controller struct {
	db      *badger.DB
	gateway gateways.Gateway
	ledger  ledger.Ledger

	pollInterval       time.Duration
	pollAttempts       uint64
	backgroundInterval time.Duration
	requestTimeout     time.Duration
	callbackURL        string

	mu          sync.Mutex
	loops       map[string]*loop
	subscribers map[string]map[uint64]func(Update)
	nextSub     uint64
}

func New(config Config) (c *Controller) {
	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	pollAttempts := config.PollAttempts
	if pollAttempts == 0 {
		pollAttempts = DefaultPollAttempts
	}
	backgroundInterval := config.BackgroundInterval
	if backgroundInterval <= 0 {
		backgroundInterval = DefaultBackgroundInterval
	}
	highestTimeout := pollInterval / 2
	if highestTimeout < minRequestTimeout {
		highestTimeout = minRequestTimeout
	}
	requestTimeout := config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = highestTimeout
	}
	requestTimeout = utils.Clamp(requestTimeout, minRequestTimeout, highestTimeout)

	return &Controller{
		db:                 config.DB,
		gateway:            config.Gateway,
		ledger:             config.Ledger,
		pollInterval:       pollInterval,
		pollAttempts:       pollAttempts,
		backgroundInterval: backgroundInterval,
		requestTimeout:     requestTimeout,
		callbackURL:        config.CallbackURL,
		loops:              make(map[string]*loop),
		subscribers:        make(map[string]map[uint64]func(Update)),
	}
}

// Close stops every polling loop and waits for them to settle. The pending
// entries stay in the store so a later Resume can pick them up
func (c *Controller) Close() {
	c.mu.Lock()
	loops := make([]*loop, 0, len(c.loops))
	for _, l := range c.loops {
		loops = append(loops, l)
	}
	c.mu.Unlock()

	for _, l := range loops {
		l.signalStop()
		<-l.done
	}
}
