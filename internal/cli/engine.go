package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tcfw/govern/internal/config"
	"github.com/tcfw/govern/internal/retry"
	"github.com/tcfw/govern/internal/storage"
	"github.com/tcfw/govern/internal/utils/logging"
	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/governance"
	"github.com/tcfw/govern/pkg/identity"
)

// engine is a configured ledger and layout ready to be populated
type engine struct {
	cfg     *config.Config
	ledger  *governance.Ledger
	layout  embedding.Layout
	metrics *prometheus.Registry

	closers []func() error
}

func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	lc := cfg.Ledger()

	provider, err := identity.NewProvider(lc.IdentityScheme, []byte(lc.IdentitySeed))
	if err != nil {
		return nil, errors.Wrap(err, "building identity provider")
	}

	e := &engine{
		cfg:     cfg,
		metrics: prometheus.NewRegistry(),
	}

	opts := append(lc.Options(),
		governance.WithLogger(logging.Component("ledger")),
		governance.WithMetrics(e.metrics),
	)

	if lc.VoteLogPath != "" {
		vl, err := storage.NewPebbleVoteLog(lc.VoteLogPath)
		if err != nil {
			return nil, err
		}

		e.closers = append(e.closers, vl.Close)
		opts = append(opts, governance.WithVoteLog(vl))
	}

	e.ledger, err = governance.NewLedger(retry.Wrap(provider), opts...)
	if err != nil {
		e.Close()
		return nil, errors.Wrap(err, "building ledger")
	}

	pc := cfg.Population()

	e.layout, err = embedding.New(pc.Layout, pc.Embedding)
	if err != nil {
		e.Close()
		return nil, errors.Wrap(err, "building layout")
	}

	return e, nil
}

func (e *engine) populate(ctx context.Context) ([]*governance.Participant, error) {
	pc := e.cfg.Population()

	return governance.Populate(ctx, e.ledger, pc.Rows, e.layout,
		governance.WithConcurrency(pc.Concurrency),
		governance.WithMaxParticipants(pc.MaxParticipants),
	)
}

func (e *engine) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			logging.WithError(err).Error("closing engine")
		}
	}
}
