package embedding

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Phi is the golden ratio
var Phi = (1 + math.Sqrt(5)) / 2

type Kind uint8

const (
	Concentric Kind = iota + 1
	Spiral
	Polyhedral
	ExtendedSpiral
)

var kindNames = map[Kind]string{
	Concentric:     "concentric",
	Spiral:         "spiral",
	Polyhedral:     "polyhedral",
	ExtendedSpiral: "extended_spiral",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "unknown"
}

func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Position is a point of the synthetic coordinate space together with the
// layout metadata the weight calculator depends on.
type Position struct {
	X        float64 `msgpack:"x" yaml:"x"`
	Y        float64 `msgpack:"y" yaml:"y"`
	Z        float64 `msgpack:"z" yaml:"z"`
	Layer    int     `msgpack:"l" yaml:"layer"`
	Angle    float64 `msgpack:"a" yaml:"angle"`
	Distance float64 `msgpack:"d" yaml:"distance"`
	Kind     Kind    `msgpack:"k" yaml:"kind"`
}

func (p Position) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// DistanceTo is the euclidean distance between two positions
func (p Position) DistanceTo(o Position) float64 {
	return r3.Norm(r3.Sub(p.Vec(), o.Vec()))
}

// PlanarDistanceTo is the euclidean distance between two positions projected
// onto the XY plane
func (p Position) PlanarDistanceTo(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}
