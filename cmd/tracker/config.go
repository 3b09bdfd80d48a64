package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/brightsms/momotracker/gateways/momo"
	"github.com/brightsms/momotracker/ledger/rest"
	"github.com/brightsms/momotracker/tracker"
	"github.com/dgraph-io/badger/v4"
	"github.com/gabstv/httpdigest"
)

// Yaml configuration reference
type (
	GatewayAPI struct {
		Url      string  `yaml:"url"`
		Username *string `yaml:"username,omitempty"`
		Password *string `yaml:"password,omitempty"`
	}
	WalletAPI struct {
		Url string `yaml:"url"`
	}
	Config struct {
		ListenAddress      string        `yaml:"listen-address"`
		DatabasePath       string        `yaml:"database-path"`
		CallbackUrl        string        `yaml:"callback-url"`
		PollInterval       time.Duration `yaml:"poll-interval"`
		PollAttempts       uint64        `yaml:"poll-attempts"`
		BackgroundInterval time.Duration `yaml:"background-interval"`
		RequestTimeout     time.Duration `yaml:"request-timeout"`
		ReportInterval     time.Duration `yaml:"report-interval"`
		Gateway            GatewayAPI    `yaml:"gateway"`
		Wallet             WalletAPI     `yaml:"wallet"`
	}
)

func (c *Config) Compile() (ctrl *tracker.Controller, db *badger.DB, err error) {
	opt := badger.DefaultOptions(c.DatabasePath)

	var httpClient http.Client
	if c.Gateway.Username != nil && c.Gateway.Password != nil {
		httpClient.Transport = httpdigest.New(*c.Gateway.Username, *c.Gateway.Password)
	}

	db, err = badger.Open(opt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctrl = tracker.New(tracker.Config{
		DB: db,
		Gateway: momo.New(momo.Config{
			Url:    c.Gateway.Url,
			Client: &httpClient,
		}),
		Ledger: rest.New(rest.Config{
			Url: c.Wallet.Url,
		}),
		PollInterval:       c.PollInterval,
		PollAttempts:       c.PollAttempts,
		BackgroundInterval: c.BackgroundInterval,
		RequestTimeout:     c.RequestTimeout,
		CallbackURL:        c.CallbackUrl,
	})
	return ctrl, db, nil
}
