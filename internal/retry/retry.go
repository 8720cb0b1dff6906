package retry

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/tcfw/govern/internal/utils/logging"
	"github.com/tcfw/govern/pkg/identity"
)

const (
	DefaultAttempts = 5
	DefaultMin      = 50 * time.Millisecond
	DefaultMax      = 5 * time.Second
)

// Do calls fn until it succeeds, attempts is exhausted or ctx is done,
// sleeping between calls as dictated by bo.
func Do(ctx context.Context, bo *backoff.Backoff, attempts int, fn func() error) error {
	var err error

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}

		if permanent(err) {
			return err
		}

		if i == attempts-1 {
			break
		}

		d := bo.Duration()
		logging.Entry().
			WithError(err).
			WithField("waiting", d).
			WithField("attempt", i+1).
			Debug("retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}

	return err
}

// permanent errors fail the same way on every call
func permanent(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, identity.ErrUnknownIdentity) ||
		errors.Is(err, identity.ErrInvalidSeed) ||
		errors.Is(err, identity.ErrUnknownScheme)
}

var _ identity.Provider = (*Provider)(nil)

// Provider retries Derive and Sign of an identity provider with
// exponential backoff.
type Provider struct {
	p        identity.Provider
	attempts int
	min, max time.Duration
}

type Option func(*Provider)

func WithAttempts(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.attempts = n
		}
	}
}

func WithBackoff(min, max time.Duration) Option {
	return func(p *Provider) {
		p.min, p.max = min, max
	}
}

func Wrap(p identity.Provider, opts ...Option) *Provider {
	r := &Provider{
		p:        p,
		attempts: DefaultAttempts,
		min:      DefaultMin,
		max:      DefaultMax,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Provider) backoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    r.min,
		Max:    r.max,
		Factor: 2,
		Jitter: true,
	}
}

func (r *Provider) Derive(ctx context.Context, row, col, instance int) (identity.ID, error) {
	var id identity.ID

	err := Do(ctx, r.backoff(), r.attempts, func() error {
		var err error
		id, err = r.p.Derive(ctx, row, col, instance)
		return err
	})

	return id, err
}

func (r *Provider) Sign(ctx context.Context, id identity.ID, payload []byte) (identity.Signature, error) {
	var sig identity.Signature

	err := Do(ctx, r.backoff(), r.attempts, func() error {
		var err error
		sig, err = r.p.Sign(ctx, id, payload)
		return err
	})

	return sig, err
}

func (r *Provider) Verify(payload []byte, sig identity.Signature, id identity.ID) bool {
	return r.p.Verify(payload, sig, id)
}
