package embedding

import "math"

// SpiralLayout is the golden-angle spiral:
// angle = i*phi*2pi, distance = sqrt(i)*Scale, layer = i/LayerSize.
type SpiralLayout struct {
	cfg  SpiralConfig
	kind Kind
}

func NewSpiral(kind Kind, cfg SpiralConfig) *SpiralLayout {
	if cfg.LayerSize < 1 {
		cfg.LayerSize = 1
	}

	return &SpiralLayout{cfg: cfg, kind: kind}
}

func (s *SpiralLayout) Kind() Kind {
	return s.kind
}

func (s *SpiralLayout) Embed(index int) Position {
	if index < 0 {
		index = 0
	}

	i := float64(index)
	angle := i * Phi * 2 * math.Pi
	distance := math.Sqrt(i) * s.cfg.Scale

	return Position{
		X:        math.Cos(angle) * distance,
		Y:        math.Sin(angle) * distance,
		Z:        math.Sin(i*Phi) * s.cfg.ZAmplitude,
		Layer:    index / s.cfg.LayerSize,
		Angle:    angle,
		Distance: distance,
		Kind:     s.kind,
	}
}
