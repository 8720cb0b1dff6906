package embedding

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

type AnchorSet string

const (
	AnchorRings       AnchorSet = "rings"
	AnchorTetrahedron AnchorSet = "tetrahedron"
	AnchorCube        AnchorSet = "cube"
	AnchorOctahedron  AnchorSet = "octahedron"
	AnchorIcosahedron AnchorSet = "icosahedron"
	AnchorMerkaba     AnchorSet = "merkaba"
)

// PolyhedralLayout serves a fixed set of anchor points and, once the anchors
// are exhausted, continues on the extended spiral keyed by the same index.
type PolyhedralLayout struct {
	anchors  []Position
	overflow *SpiralLayout
}

func NewPolyhedral(cfg PolyhedralConfig, overflow SpiralConfig) (*PolyhedralLayout, error) {
	a, err := anchors(cfg)
	if err != nil {
		return nil, err
	}

	return &PolyhedralLayout{
		anchors:  a,
		overflow: NewSpiral(ExtendedSpiral, overflow),
	}, nil
}

func (p *PolyhedralLayout) Kind() Kind {
	return Polyhedral
}

// Anchors returns the number of fixed anchor points before overflow
func (p *PolyhedralLayout) Anchors() int {
	return len(p.anchors)
}

func (p *PolyhedralLayout) Embed(index int) Position {
	if index < 0 {
		index = 0
	}

	if index < len(p.anchors) {
		return p.anchors[index]
	}

	return p.overflow.Embed(index)
}

func anchors(cfg PolyhedralConfig) ([]Position, error) {
	set := AnchorSet(cfg.Anchors)
	if set == "" {
		set = AnchorRings
	}

	switch set {
	case AnchorRings:
		pts := ringAnchors(cfg.InnerCount, cfg.InnerRadius, 1)
		return append(pts, ringAnchors(cfg.OuterCount, cfg.OuterRadius, 2)...), nil
	case AnchorTetrahedron:
		return solidAnchors(tetrahedron(), cfg.SolidScale), nil
	case AnchorCube:
		return solidAnchors(cube(), cfg.SolidScale), nil
	case AnchorOctahedron:
		return solidAnchors(octahedron(), cfg.SolidScale), nil
	case AnchorIcosahedron:
		return solidAnchors(icosahedron(), cfg.SolidScale), nil
	case AnchorMerkaba:
		verts := tetrahedron()
		for _, v := range tetrahedron() {
			verts = append(verts, r3.Scale(-1, v))
		}
		return solidAnchors(verts, cfg.SolidScale), nil
	default:
		return nil, errors.Wrapf(ErrUnknownAnchor, "%q", cfg.Anchors)
	}
}

func ringAnchors(n int, radius float64, layer int) []Position {
	pts := make([]Position, 0, n)

	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Position{
			X:        math.Cos(angle) * radius,
			Y:        math.Sin(angle) * radius,
			Layer:    layer,
			Angle:    angle,
			Distance: radius,
			Kind:     Polyhedral,
		})
	}

	return pts
}

func solidAnchors(verts []r3.Vec, scale float64) []Position {
	pts := make([]Position, 0, len(verts))

	for _, v := range verts {
		s := r3.Scale(scale, v)
		pts = append(pts, Position{
			X:        s.X,
			Y:        s.Y,
			Z:        s.Z,
			Layer:    1,
			Angle:    math.Atan2(v.Y, v.X),
			Distance: r3.Norm(v) * scale,
			Kind:     Polyhedral,
		})
	}

	return pts
}

func tetrahedron() []r3.Vec {
	return []r3.Vec{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
}

func cube() []r3.Vec {
	verts := make([]r3.Vec, 0, 8)
	for x := -1.0; x <= 1; x += 2 {
		for y := -1.0; y <= 1; y += 2 {
			for z := -1.0; z <= 1; z += 2 {
				verts = append(verts, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}

	return verts
}

func octahedron() []r3.Vec {
	return []r3.Vec{
		{X: 1}, {X: -1},
		{Y: 1}, {Y: -1},
		{Z: 1}, {Z: -1},
	}
}

func icosahedron() []r3.Vec {
	return []r3.Vec{
		{X: 0, Y: 1, Z: Phi},
		{X: 0, Y: -1, Z: Phi},
		{X: 0, Y: 1, Z: -Phi},
		{X: 0, Y: -1, Z: -Phi},
		{X: 1, Y: Phi, Z: 0},
		{X: -1, Y: Phi, Z: 0},
		{X: 1, Y: -Phi, Z: 0},
		{X: -1, Y: -Phi, Z: 0},
		{X: Phi, Y: 0, Z: 1},
		{X: Phi, Y: 0, Z: -1},
		{X: -Phi, Y: 0, Z: 1},
		{X: -Phi, Y: 0, Z: -1},
	}
}
