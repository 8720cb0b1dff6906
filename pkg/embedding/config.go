package embedding

import (
	"github.com/pkg/errors"
)

type SpiralConfig struct {
	Scale      float64
	LayerSize  int
	ZAmplitude float64
}

type PolyhedralConfig struct {
	// Anchors selects the fixed anchor set, see AnchorSet
	Anchors     string
	InnerCount  int
	InnerRadius float64
	OuterCount  int
	OuterRadius float64
	SolidScale  float64
}

type Config struct {
	BaseRadius float64
	Spiral     SpiralConfig
	Extended   SpiralConfig
	Polyhedral PolyhedralConfig
}

func DefaultConfig() Config {
	return Config{
		BaseRadius: 100,
		Spiral: SpiralConfig{
			Scale:      20,
			LayerSize:  8,
			ZAmplitude: 10,
		},
		Extended: SpiralConfig{
			Scale:      30,
			LayerSize:  12,
			ZAmplitude: 10,
		},
		Polyhedral: PolyhedralConfig{
			Anchors:     string(AnchorRings),
			InnerCount:  4,
			InnerRadius: 150,
			OuterCount:  8,
			OuterRadius: 200,
			SolidScale:  100,
		},
	}
}

func (c Config) Validate() error {
	if c.BaseRadius < 0 {
		return errors.Wrap(ErrInvalidConfig, "base radius is negative")
	}

	for name, s := range map[string]SpiralConfig{"spiral": c.Spiral, "extended": c.Extended} {
		if s.Scale < 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s scale is negative", name)
		}
		if s.LayerSize < 1 {
			return errors.Wrapf(ErrInvalidConfig, "%s layer size must be at least 1", name)
		}
	}

	p := c.Polyhedral
	if p.InnerCount < 0 || p.OuterCount < 0 {
		return errors.Wrap(ErrInvalidConfig, "polyhedral ring counts are negative")
	}
	if p.InnerRadius < 0 || p.OuterRadius < 0 || p.SolidScale < 0 {
		return errors.Wrap(ErrInvalidConfig, "polyhedral radii are negative")
	}

	if _, err := anchors(p); err != nil {
		return err
	}

	return nil
}
