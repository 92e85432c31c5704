package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Viewer overlays.
const (
	OverlayGrid       OverlayID = "grid"
	OverlayVision     OverlayID = "vision"
	OverlayTrails     OverlayID = "trails"
	OverlayDead       OverlayID = "dead"
	OverlaySoftBand   OverlayID = "soft_band"
	OverlayCellCounts OverlayID = "cell_counts"
	OverlayPerf       OverlayID = "perf"
	OverlayParams     OverlayID = "params"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 = no key
	KeyLabel    string // shown in the controls panel
	Category    string
	Exclusive   []OverlayID // switched off when this one is switched on
}

// defaultOverlays lists the viewer overlays in display order.
var defaultOverlays = []OverlayDescriptor{
	{ID: OverlayTrails, Name: "Trails", Description: "Recent path of every living agent",
		Key: rl.KeyT, KeyLabel: "T", Category: "visual"},
	{ID: OverlayDead, Name: "Dead Prey", Description: "Mark where prey were killed",
		Key: rl.KeyK, KeyLabel: "K", Category: "visual"},
	{ID: OverlayVision, Name: "Vision Radius", Description: "Vision circle of the selected agent",
		Key: rl.KeyV, KeyLabel: "V", Category: "perception"},
	{ID: OverlaySoftBand, Name: "Soft Band", Description: "Edge band of the soft boundary",
		Key: rl.KeyN, KeyLabel: "N", Category: "perception"},
	{ID: OverlayGrid, Name: "Spatial Grid", Description: "Cell lines of the neighbor grid",
		Key: rl.KeyG, KeyLabel: "G", Category: "debug"},
	{ID: OverlayCellCounts, Name: "Cell Counts", Description: "Grid lines with resident count per cell",
		Key: rl.KeyC, KeyLabel: "C", Category: "debug", Exclusive: []OverlayID{OverlayGrid}},
	{ID: OverlayPerf, Name: "Performance", Description: "Per-phase step timing",
		Key: rl.KeyP, KeyLabel: "P", Category: "debug"},
	{ID: OverlayParams, Name: "Parameters", Description: "Live parameter sliders",
		Key: rl.KeyTab, KeyLabel: "Tab", Category: "debug"},
}

// OverlayRegistry holds overlay metadata and which overlays are on.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	index       map[OverlayID]int
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with every viewer overlay switched off.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{
		index:   make(map[OverlayID]int, len(defaultOverlays)),
		enabled: make(map[OverlayID]bool, len(defaultOverlays)),
	}
	for _, d := range defaultOverlays {
		r.index[d.ID] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}
	return r
}

// Toggle switches an overlay and returns its new state. Unknown IDs stay off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	on := !r.enabled[id]
	r.enabled[id] = on
	if on {
		for _, excl := range r.descriptors[i].Exclusive {
			r.enabled[excl] = false
		}
	}
	return on
}

// HandleKeys toggles every overlay whose key pressed reports as down and
// returns the toggled IDs.
func (r *OverlayRegistry) HandleKeys(pressed func(key int32) bool) []OverlayID {
	var toggled []OverlayID
	for _, d := range r.descriptors {
		if d.Key != 0 && pressed(d.Key) {
			r.Toggle(d.ID)
			toggled = append(toggled, d.ID)
		}
	}
	return toggled
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns the overlays of one category in display order.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var out []OverlayDescriptor
	for _, d := range r.descriptors {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories returns the categories in first-seen order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for i, d := range r.descriptors {
		if i == 0 || d.Category != r.descriptors[i-1].Category {
			cats = append(cats, d.Category)
		}
	}
	return cats
}

// EnabledOverlays returns the active overlays in display order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var out []OverlayID
	for _, d := range r.descriptors {
		if r.enabled[d.ID] {
			out = append(out, d.ID)
		}
	}
	return out
}
