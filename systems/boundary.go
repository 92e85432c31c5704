package systems

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// BoundaryKind selects how agents interact with the domain edges.
type BoundaryKind uint8

const (
	BoundaryPeriodic BoundaryKind = iota
	BoundaryHard
	BoundarySoft
)

// DefaultSoftRange is the soft band width used when cycling back to Soft
// without a remembered range.
const DefaultSoftRange = 2.0

// Boundary is the boundary policy. SoftRange is remembered across Swap even
// while the kind is not Soft.
type Boundary struct {
	Kind      BoundaryKind
	SoftRange float64
}

// Periodic returns a wrapping boundary.
func Periodic() Boundary { return Boundary{Kind: BoundaryPeriodic} }

// Hard returns a clamping boundary.
func Hard() Boundary { return Boundary{Kind: BoundaryHard} }

// Soft returns a boundary that steers agents away from edges within band.
func Soft(band float64) Boundary { return Boundary{Kind: BoundarySoft, SoftRange: band} }

// ParseBoundary builds a boundary from its config name.
func ParseBoundary(name string, softRange float64) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "periodic":
		return Boundary{Kind: BoundaryPeriodic, SoftRange: softRange}, nil
	case "hard":
		return Boundary{Kind: BoundaryHard, SoftRange: softRange}, nil
	case "soft":
		if !(softRange > 0) {
			return Boundary{}, fmt.Errorf("soft boundary range %v must be positive: %w", softRange, ErrInvalidConfig)
		}
		return Soft(softRange), nil
	default:
		return Boundary{}, fmt.Errorf("unknown boundary %q: %w", name, ErrInvalidConfig)
	}
}

func (b Boundary) String() string {
	switch b.Kind {
	case BoundaryPeriodic:
		return "periodic"
	case BoundaryHard:
		return "hard"
	case BoundarySoft:
		return fmt.Sprintf("soft(%g)", b.SoftRange)
	default:
		return "unknown"
	}
}

// Name returns the config name of the boundary kind.
func (b Boundary) Name() string {
	if b.Kind == BoundarySoft {
		return "soft"
	}
	return b.String()
}

// Swap cycles Soft -> Periodic -> Hard -> Soft.
func (b Boundary) Swap() Boundary {
	switch b.Kind {
	case BoundarySoft:
		return Boundary{Kind: BoundaryPeriodic, SoftRange: b.SoftRange}
	case BoundaryPeriodic:
		return Boundary{Kind: BoundaryHard, SoftRange: b.SoftRange}
	default:
		band := b.SoftRange
		if !(band > 0) {
			band = DefaultSoftRange
		}
		return Soft(band)
	}
}

// Offset returns the displacement from a to c, using the minimum image under
// a periodic boundary.
func (b Boundary) Offset(a, c r2.Vec, length float64) r2.Vec {
	d := r2.Sub(c, a)
	if b.Kind == BoundaryPeriodic {
		d.X = MinImage(d.X, length)
		d.Y = MinImage(d.Y, length)
	}
	return d
}

// Distance returns the length of Offset(a, c).
func (b Boundary) Distance(a, c r2.Vec, length float64) float64 {
	return r2.Norm(b.Offset(a, c, length))
}

// Bias returns the unit-weight steering bias away from nearby edges.
// Only the soft boundary produces a bias.
func (b Boundary) Bias(p r2.Vec, length float64) r2.Vec {
	if b.Kind != BoundarySoft {
		return r2.Vec{}
	}
	return r2.Vec{
		X: softAxis(p.X, length, b.SoftRange),
		Y: softAxis(p.Y, length, b.SoftRange),
	}
}

func softAxis(x, length, band float64) float64 {
	var bias float64
	if x < band {
		bias += 1 + math.Cos(x*math.Pi/band)
	}
	if length-x < band {
		bias -= 1 + math.Cos((length-x)*math.Pi/band)
	}
	return bias
}

// Correct applies the post-integration correction. Periodic wraps positions;
// Hard and Soft clamp into [0, length] and stop the agent if it touched an edge.
func (b Boundary) Correct(p, v r2.Vec, length float64) (r2.Vec, r2.Vec) {
	if b.Kind == BoundaryPeriodic {
		return r2.Vec{X: Wrap(p.X, length), Y: Wrap(p.Y, length)}, v
	}
	cx := clampFloat(p.X, 0, length)
	cy := clampFloat(p.Y, 0, length)
	if cx != p.X || cy != p.Y {
		v = r2.Vec{}
	}
	return r2.Vec{X: cx, Y: cy}, v
}
