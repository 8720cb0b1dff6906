package weight

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tcfw/govern/pkg/embedding"
)

var (
	Phi = embedding.Phi

	// PhiConjugate (1/phi) is both a weighting term and the default
	// consensus threshold
	PhiConjugate = 1 / Phi

	ErrInvalidConfig = errors.New("invalid weight config")
)

type Config struct {
	// BaseUnit scales the idealised radius of a layer (layer*phi*BaseUnit)
	BaseUnit float64
	// Normalizer divides the radial deviation
	Normalizer float64
	// Amplitude of the angular oscillation, bounded to [0,1]
	Amplitude float64
	// Harmonic is the angular frequency of the oscillation
	Harmonic float64
	// Conjugate is the per-layer multiplier in (1 + layer*Conjugate)
	Conjugate float64
}

func DefaultConfig() Config {
	return Config{
		BaseUnit:   50,
		Normalizer: 100,
		Amplitude:  0.1,
		Harmonic:   5,
		Conjugate:  PhiConjugate,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Normalizer <= 0:
		return errors.Wrap(ErrInvalidConfig, "normalizer must be positive")
	case c.Amplitude < 0 || c.Amplitude > 1:
		return errors.Wrap(ErrInvalidConfig, "amplitude must be within [0, 1]")
	case c.BaseUnit < 0:
		return errors.Wrap(ErrInvalidConfig, "base unit is negative")
	case c.Conjugate < 0:
		return errors.Wrap(ErrInvalidConfig, "conjugate is negative")
	}

	return nil
}

// Factors is the breakdown of a voting power computation
type Factors struct {
	Radial        float64
	Angular       float64
	Depth         float64
	Amplification float64
	LayerBonus    float64
}

// Influence is the product of the four positional factors
func (f Factors) Influence() float64 {
	return f.Radial * f.Angular * f.Depth * f.Amplification
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{cfg}, nil
}

func (c *Calculator) Config() Config {
	return c.cfg
}

func (c *Calculator) Factors(pos embedding.Position, value uint64) Factors {
	layer := float64(pos.Layer)
	ideal := layer * Phi * c.cfg.BaseUnit

	return Factors{
		Radial:        1 + math.Abs(pos.Distance-ideal)/c.cfg.Normalizer,
		Angular:       1 + c.cfg.Amplitude*math.Cos(c.cfg.Harmonic*pos.Angle),
		Depth:         1 + 1/(layer+1),
		Amplification: math.Log(float64(value) + 1),
		LayerBonus:    1 + layer*c.cfg.Conjugate,
	}
}

// Influence is the geometric influence of a participant before the
// combinatorial value and layer bonus are applied.
func (c *Calculator) Influence(pos embedding.Position, value uint64) float64 {
	return c.Factors(pos, value).Influence()
}

// VotingPower computes value * (radial*angular*depth) * amplification * (1 + layer*conjugate)
func (c *Calculator) VotingPower(pos embedding.Position, value uint64) float64 {
	f := c.Factors(pos, value)
	p := float64(value) * (f.Radial * f.Angular * f.Depth) * f.Amplification * f.LayerBonus

	// layers are never negative for the shipped layouts; clamp for foreign positions
	if p < 0 || math.IsNaN(p) {
		return 0
	}

	return p
}
