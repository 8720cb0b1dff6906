package governance

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/govern/pkg/weight"
)

const (
	DefaultDecayHalfLife  = time.Hour
	DefaultProximityScale = 100.0
	DefaultTallyCacheSize = 1024
)

type Option func(*Ledger) error

func WithWeights(cfg weight.Config) Option {
	return func(l *Ledger) error {
		c, err := weight.NewCalculator(cfg)
		if err != nil {
			return err
		}

		l.weights = c
		return nil
	}
}

// WithDecayHalfLife sets the time constant of vote decay; the effective
// constant is phi times this value.
func WithDecayHalfLife(d time.Duration) Option {
	return func(l *Ledger) error {
		if d <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "decay half life %s", d)
		}

		l.decayHalfLife = d
		return nil
	}
}

func WithProximityScale(s float64) Option {
	return func(l *Ledger) error {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return errors.Wrapf(ErrInvalidConfig, "proximity scale %v", s)
		}

		l.proximityScale = s
		return nil
	}
}

// WithDefaultThreshold sets the threshold of proposals created without
// WithThreshold.
func WithDefaultThreshold(t float64) Option {
	return func(l *Ledger) error {
		if err := checkThreshold(t); err != nil {
			return err
		}

		l.threshold = t
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) error {
		if now == nil {
			return errors.Wrap(ErrInvalidConfig, "nil clock")
		}

		l.now = now
		return nil
	}
}

func WithLogger(e *logrus.Entry) Option {
	return func(l *Ledger) error {
		l.logger = e
		return nil
	}
}

// WithVoteLog records every cast vote, including overwritten ones
func WithVoteLog(vl VoteLog) Option {
	return func(l *Ledger) error {
		l.voteLog = vl
		return nil
	}
}

func WithMetrics(reg prometheus.Registerer) Option {
	return func(l *Ledger) error {
		l.registerer = reg
		return nil
	}
}

func WithTallyCacheSize(n int) Option {
	return func(l *Ledger) error {
		if n < 1 {
			return errors.Wrapf(ErrInvalidConfig, "tally cache size %d", n)
		}

		l.tallyCacheSize = n
		return nil
	}
}

type proposalOptions struct {
	threshold *float64
	createdAt *time.Time
}

type ProposalOption func(*proposalOptions)

// WithThreshold overrides the ledger default threshold
func WithThreshold(t float64) ProposalOption {
	return func(o *proposalOptions) {
		o.threshold = &t
	}
}

// WithCreatedAt pins the creation time instead of reading the ledger clock
func WithCreatedAt(t time.Time) ProposalOption {
	return func(o *proposalOptions) {
		o.createdAt = &t
	}
}

func checkThreshold(t float64) error {
	if !(t > 0 && t <= 1) {
		return errors.Wrapf(ErrInvalidThreshold, "%v", t)
	}

	return nil
}
