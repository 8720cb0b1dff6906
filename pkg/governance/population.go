package governance

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/triangle"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPopulateConcurrency = 8
	DefaultMaxParticipants     = 1 << 16
)

type populateOptions struct {
	concurrency     int
	maxParticipants uint64
}

type PopulateOption func(*populateOptions)

// WithConcurrency bounds the number of in flight identity derivations
func WithConcurrency(n int) PopulateOption {
	return func(o *populateOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithMaxParticipants(n uint64) PopulateOption {
	return func(o *populateOptions) {
		o.maxParticipants = n
	}
}

type seat struct {
	index    int
	row      int
	col      int
	instance int
	value    uint64
}

// seats lists every participant instance of t in linear index order: cells
// row-major, instances within a cell consecutive.
func seats(t triangle.Triangle) []seat {
	list := make([]seat, 0, t.Total())

	for _, c := range t.Cells() {
		for i := uint64(0); i < c.Value; i++ {
			list = append(list, seat{
				index:    len(list),
				row:      c.Row,
				col:      c.Col,
				instance: int(i),
				value:    c.Value,
			})
		}
	}

	return list
}

// Populate generates a triangle of rows rows and registers one participant
// per cell instance, placed by layout. Participants are returned in linear
// index order. Identities are derived first and the population registered
// as a whole, so a failed call leaves the ledger untouched.
func Populate(ctx context.Context, l *Ledger, rows int, layout embedding.Layout, opts ...PopulateOption) ([]*Participant, error) {
	o := &populateOptions{
		concurrency:     DefaultPopulateConcurrency,
		maxParticipants: DefaultMaxParticipants,
	}
	for _, opt := range opts {
		opt(o)
	}

	t, err := triangle.Generate(rows)
	if err != nil {
		return nil, err
	}

	if total := t.Total(); total > o.maxParticipants {
		return nil, errors.Wrapf(ErrInvalidPopulationSize, "%d rows gives %d participants, limit %d", rows, total, o.maxParticipants)
	}

	list := seats(t)
	out := make([]*Participant, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, s := range list {
		s := s

		// stop scheduling once a derivation failed or ctx is done
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			p, err := l.newParticipant(gctx, s.row, s.col, s.instance, s.value, layout.Embed(s.index))
			if err != nil {
				return err
			}

			out[s.index] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// scheduling may stop on a cancelled ctx without any seat failing
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := l.register(out...); err != nil {
		return nil, err
	}

	l.logger.WithField("participants", len(out)).WithField("layout", layout.Kind()).Info("population built")

	return out, nil
}
