package embedding

import "math"

// ConcentricLayout places index 0 at the origin and fills rings outwards,
// ring L holding 6L evenly spaced points at radius BaseRadius*L.
type ConcentricLayout struct {
	BaseRadius float64
}

func NewConcentric(baseRadius float64) *ConcentricLayout {
	return &ConcentricLayout{BaseRadius: baseRadius}
}

func (c *ConcentricLayout) Kind() Kind {
	return Concentric
}

func (c *ConcentricLayout) Embed(index int) Position {
	if index <= 0 {
		return Position{Kind: Concentric}
	}

	layer, k := ring(index)

	angle := 2 * math.Pi * float64(k) / float64(6*layer)
	distance := c.BaseRadius * float64(layer)

	return Position{
		X:        math.Cos(angle) * distance,
		Y:        math.Sin(angle) * distance,
		Layer:    layer,
		Angle:    angle,
		Distance: distance,
		Kind:     Concentric,
	}
}

// ring finds the ring holding index (>= 1) and the offset within it.
// Rings 1..L-1 hold 3L(L-1) points in total.
func ring(index int) (layer int, offset int) {
	layer = int(math.Sqrt(float64(index) / 3))
	if layer < 1 {
		layer = 1
	}

	for layer > 1 && 1+3*layer*(layer-1) > index {
		layer--
	}
	for 1+3*(layer+1)*layer <= index {
		layer++
	}

	return layer, index - 1 - 3*layer*(layer-1)
}
