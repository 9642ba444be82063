// Package controller wires the ledger client, snapshot store, refresh
// orchestrator and mutation commands into one unit.
package controller

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/commands"
	"github.com/mmynk/splitsync/internal/config"
	"github.com/mmynk/splitsync/internal/ledger"
	"github.com/mmynk/splitsync/internal/metrics"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/refresh"
	"github.com/mmynk/splitsync/internal/snapshot"
)

// Controller is the client-side sync controller.
type Controller struct {
	Config   config.Config
	Client   *ledger.Client
	Store    *snapshot.Store
	Refresh  *refresh.Orchestrator
	Commands *commands.Commands
	Metrics  *metrics.Metrics
}

// New builds a Controller from cfg. Metrics are registered with reg when it
// is non-nil. Extra client options (e.g., a test HTTP client) are applied
// after the configured timeout.
func New(cfg config.Config, reg prometheus.Registerer, clientOpts ...ledger.Option) *Controller {
	m := metrics.New(reg)

	opts := append([]ledger.Option{ledger.WithTimeout(cfg.RequestTimeout)}, clientOpts...)
	client := ledger.New(cfg.LedgerURL, opts...)
	store := snapshot.NewStore()
	orchestrator := refresh.New(client, store, refresh.WithMetrics(m))
	cmds := commands.New(client, orchestrator, store, commands.WithMetrics(m))

	return &Controller{
		Config:   cfg,
		Client:   client,
		Store:    store,
		Refresh:  orchestrator,
		Commands: cmds,
		Metrics:  m,
	}
}

// Start performs the initial refresh. A failure leaves the empty snapshot in
// place; the caller may keep running and retry later.
func (c *Controller) Start(ctx context.Context) error {
	_, err := c.Refresh.RefreshAll(ctx)
	return err
}

// Snapshot returns the current snapshot.
func (c *Controller) Snapshot() models.Snapshot {
	return c.Store.Snapshot()
}

// Summary holds the derived dashboard values.
type Summary struct {
	Total     decimal.Decimal `json:"total"`
	ShareName string          `json:"shareName"`
	Share     decimal.Decimal `json:"share"`
}

// Summarize computes the derived values for snap using the configured
// share display name.
func (c *Controller) Summarize(snap models.Snapshot) Summary {
	return Summary{
		Total:     snap.Total(),
		ShareName: c.Config.ShareName,
		Share:     snap.ShareOf(c.Config.ShareName),
	}
}
