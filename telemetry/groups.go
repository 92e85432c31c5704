package telemetry

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/systems"
)

const (
	unvisited = -2
	noise     = -1
)

// GroupParams configures density-based group detection.
type GroupParams struct {
	Eps       float64 // neighborhood radius
	MinPoints int     // neighbors (including self) for a core point
	Boundary  systems.Boundary
	Length    float64
}

// GroupSummary describes the clusters found among a set of positions.
type GroupSummary struct {
	Groups     int
	Largest    int
	Stragglers int // points in no group
	Labels     []int
}

// FindGroups clusters positions with DBSCAN. Neighborhood queries go through a
// spatial grid sized to Eps, and distances follow the boundary policy.
func FindGroups(pos []r2.Vec, p GroupParams) GroupSummary {
	n := len(pos)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}
	if n == 0 || p.MinPoints < 1 || !(p.Eps > 0) {
		return GroupSummary{Stragglers: n, Labels: labels}
	}

	eps := min(p.Eps, p.Length)
	grid, err := systems.NewSpatialGrid(eps, p.Length)
	if err != nil {
		return GroupSummary{Stragglers: n, Labels: labels}
	}
	for i, x := range pos {
		grid.Insert(x, i)
	}

	var window []int
	region := func(i int, dst []int) []int {
		ci, cj := grid.CellOf(pos[i])
		window = grid.NeighborsWindow(window[:0], ci, cj, 1)
		for _, j := range window {
			if p.Boundary.Distance(pos[i], pos[j], p.Length) <= p.Eps {
				dst = append(dst, j)
			}
		}
		return dst
	}

	cluster := 0
	var seeds, nbrs []int
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		seeds = region(i, seeds[:0])
		if len(seeds) < p.MinPoints {
			labels[i] = noise
			continue
		}
		labels[i] = cluster
		for k := 0; k < len(seeds); k++ {
			q := seeds[k]
			if labels[q] == noise {
				labels[q] = cluster
			}
			if labels[q] != unvisited {
				continue
			}
			labels[q] = cluster
			nbrs = region(q, nbrs[:0])
			if len(nbrs) >= p.MinPoints {
				seeds = append(seeds, nbrs...)
			}
		}
		cluster++
	}

	sizes := make([]int, cluster)
	s := GroupSummary{Groups: cluster, Labels: labels}
	for _, l := range labels {
		if l < 0 {
			s.Stragglers++
			continue
		}
		sizes[l]++
	}
	for _, size := range sizes {
		s.Largest = max(s.Largest, size)
	}
	return s
}
