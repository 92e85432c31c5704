package systems

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Cell is one grid bucket. The box is [XMin,XMax) x [YMin,YMax).
type Cell struct {
	XMin, XMax float64
	YMin, YMax float64
	members    []int
}

// Contains reports whether p lies inside the cell's box.
func (c *Cell) Contains(p r2.Vec) bool {
	return p.X >= c.XMin && p.X < c.XMax && p.Y >= c.YMin && p.Y < c.YMax
}

// SpatialGrid buckets agent indices into square cells over a square domain.
// Cell indices wrap toroidally regardless of boundary policy.
type SpatialGrid struct {
	length   float64
	cellSize float64
	numCells int
	cells    []Cell // flat, i*numCells + j; i is the x axis

	moved []int // reindex scratch
}

// NewSpatialGrid creates a grid whose cells are at least referenceRadius wide.
func NewSpatialGrid(referenceRadius, length float64) (*SpatialGrid, error) {
	if !(referenceRadius > 0) {
		return nil, fmt.Errorf("grid reference radius %v must be positive: %w", referenceRadius, ErrInvalidConfig)
	}
	if referenceRadius > length {
		return nil, fmt.Errorf("grid reference radius %v exceeds domain length %v: %w", referenceRadius, length, ErrInvalidConfig)
	}

	n := max(1, int(math.Floor(length/referenceRadius)))
	size := length / float64(n)

	cells := make([]Cell, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cells[i*n+j] = Cell{
				XMin:    float64(i) * size,
				XMax:    float64(i+1) * size,
				YMin:    float64(j) * size,
				YMax:    float64(j+1) * size,
				members: make([]int, 0, 8),
			}
		}
	}

	return &SpatialGrid{
		length:   length,
		cellSize: size,
		numCells: n,
		cells:    cells,
	}, nil
}

// NumCells returns the number of cells per axis.
func (g *SpatialGrid) NumCells() int { return g.numCells }

// CellSize returns the side of one cell.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// Length returns the domain side.
func (g *SpatialGrid) Length() float64 { return g.length }

// Cell returns the bucket at (i, j). Callers must not modify its members.
func (g *SpatialGrid) Cell(i, j int) *Cell {
	return &g.cells[i*g.numCells+j]
}

// CellOf returns the cell indices for a position, wrapping out-of-range
// coordinates back onto the grid.
func (g *SpatialGrid) CellOf(p r2.Vec) (int, int) {
	return g.axisIndex(p.X), g.axisIndex(p.Y)
}

func (g *SpatialGrid) axisIndex(x float64) int {
	n := g.numCells
	k := int(math.Floor(x / g.cellSize))
	return ((k % n) + n) % n
}

// Insert adds an agent index to the cell containing p.
func (g *SpatialGrid) Insert(p r2.Vec, idx int) {
	i, j := g.CellOf(p)
	c := g.Cell(i, j)
	c.members = append(c.members, idx)
}

// Remove deletes an agent index from cell (i, j), preserving the order of the
// remaining members. It reports whether the index was present.
func (g *SpatialGrid) Remove(i, j, idx int) bool {
	c := g.Cell(i, j)
	k := slices.Index(c.members, idx)
	if k < 0 {
		return false
	}
	c.members = slices.Delete(c.members, k, k+1)
	return true
}

// Members returns the agent indices in cell (i, j). The slice aliases grid
// storage and is invalidated by the next mutation.
func (g *SpatialGrid) Members(i, j int) []int {
	return g.Cell(i, j).members
}

// Count returns the total number of indexed agents.
func (g *SpatialGrid) Count() int {
	total := 0
	for k := range g.cells {
		total += len(g.cells[k].members)
	}
	return total
}

// Reindex moves every member whose latest position maps to a different cell.
// Each cell is scanned fully before anything is removed from it, and moved
// members are reinserted only after all cells were scanned.
func (g *SpatialGrid) Reindex(latest func(idx int) r2.Vec) {
	g.moved = g.moved[:0]
	n := g.numCells
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := &g.cells[i*n+j]
			start := len(g.moved)
			for _, idx := range c.members {
				if ci, cj := g.CellOf(latest(idx)); ci != i || cj != j {
					g.moved = append(g.moved, idx)
				}
			}
			if len(g.moved) == start {
				continue
			}
			leaving := g.moved[start:]
			c.members = slices.DeleteFunc(c.members, func(idx int) bool {
				return slices.Contains(leaving, idx)
			})
		}
	}
	for _, idx := range g.moved {
		g.Insert(latest(idx), idx)
	}
}

// NeighborsWindow appends to dst the members of the (2*ring+1)^2 block of
// cells centered on (ci, cj), wrapping cell indices. When the block is at
// least as wide as the grid, every cell is visited exactly once.
func (g *SpatialGrid) NeighborsWindow(dst []int, ci, cj, ring int) []int {
	n := g.numCells
	if 2*ring+1 >= n {
		for k := range g.cells {
			dst = append(dst, g.cells[k].members...)
		}
		return dst
	}
	for di := -ring; di <= ring; di++ {
		i := ((ci+di)%n + n) % n
		for dj := -ring; dj <= ring; dj++ {
			j := ((cj+dj)%n + n) % n
			dst = append(dst, g.cells[i*n+j].members...)
		}
	}
	return dst
}
