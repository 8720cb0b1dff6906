package embedding

import (
	"github.com/pkg/errors"
)

// Layout maps a linear index onto a position. Implementations are pure: the
// same index always yields the same position. Negative indices are treated
// as 0.
type Layout interface {
	Kind() Kind
	Embed(index int) Position
}

var (
	_ Layout = (*ConcentricLayout)(nil)
	_ Layout = (*SpiralLayout)(nil)
	_ Layout = (*PolyhedralLayout)(nil)
)

// New builds the layout strategy for kind
func New(kind Kind, cfg Config) (Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch kind {
	case Concentric:
		return NewConcentric(cfg.BaseRadius), nil
	case Spiral:
		return NewSpiral(Spiral, cfg.Spiral), nil
	case ExtendedSpiral:
		return NewSpiral(ExtendedSpiral, cfg.Extended), nil
	case Polyhedral:
		return NewPolyhedral(cfg.Polyhedral, cfg.Extended)
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%d", kind)
	}
}

// Embed is the one-shot form of New(kind, cfg).Embed(index)
func Embed(index int, kind Kind, cfg Config) (Position, error) {
	if index < 0 {
		return Position{}, errors.Wrapf(ErrInvalidIndex, "%d", index)
	}

	l, err := New(kind, cfg)
	if err != nil {
		return Position{}, err
	}

	return l.Embed(index), nil
}
