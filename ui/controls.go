package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/config"
)

// ControlsPanel renders the left-side controls panel with overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// SetPosition moves the panel.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x, c.y = x, y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	// Calculate panel height based on content
	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight // Extra for title

	// Draw panel background
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding

	// Title
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	// Draw overlays by category
	for _, category := range categories {
		// Category header
		catLabel := categoryLabel(category)
		rl.DrawText(catLabel, c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		// Overlays in this category
		for _, desc := range overlays.ByCategory(category) {
			enabled := overlays.IsEnabled(desc.ID)
			c.drawToggle(c.x+padding, y, desc, enabled, c.width-padding*2)
			y += lineHeight
		}

		y += 4 // Gap between categories
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	// Name
	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "perception":
		return "Perception"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// QuickStatsData holds data for the quick stats section.
type QuickStatsData struct {
	KillsPerSec    float32
	ProportionDead float32
	MeanSpeed      float32
	Groups         int
}

// QuickStatsPanel renders quick statistics.
type QuickStatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewQuickStatsPanel creates a new quick stats panel.
func NewQuickStatsPanel(x, y, width int32) *QuickStatsPanel {
	return &QuickStatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition moves the panel.
func (q *QuickStatsPanel) SetPosition(x, y int32) {
	q.x, q.y = x, y
}

// Draw renders the quick stats panel.
func (q *QuickStatsPanel) Draw(data QuickStatsData) int32 {
	r := q.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	panelHeight := lineHeight*6 + padding*2

	r.DrawPanel(q.x, q.y, q.width, panelHeight)

	y := q.y + padding

	rl.DrawText("Quick Stats", q.x+padding, y, 14, rl.White)
	y += lineHeight + 2

	y = r.DrawLabelValue(q.x+padding, y, "Kills/s", fmt.Sprintf("%.2f", data.KillsPerSec), q.width-padding*2)
	y = r.DrawBar(q.x+padding, y, "Dead", data.ProportionDead, q.width-padding*2)
	y = r.DrawLabelValue(q.x+padding, y, "Speed", fmt.Sprintf("%.2f", data.MeanSpeed), q.width-padding*2)
	y = r.DrawLabelValue(q.x+padding, y, "Groups", fmt.Sprintf("%d", data.Groups), q.width-padding*2)

	return y
}

// paramSlider binds one slider to a float field of the config.
type paramSlider struct {
	section string
	label   string
	min     float32
	max     float32
	field   func(c *config.Config) *float64
}

// ParamsPanel edits species weights with raygui sliders.
// Edits go to a pending config; the caller rebuilds the simulation when Draw reports a change.
type ParamsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sliders  []paramSlider
	visible  bool
}

// NewParamsPanel creates a parameter panel.
func NewParamsPanel(x, y, width int32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sliders:  defaultSliders(),
	}
}

func defaultSliders() []paramSlider {
	prey := func(f func(s *config.SpeciesConfig) *float64) func(c *config.Config) *float64 {
		return func(c *config.Config) *float64 { return f(&c.Prey) }
	}
	pred := func(f func(s *config.SpeciesConfig) *float64) func(c *config.Config) *float64 {
		return func(c *config.Config) *float64 { return f(&c.Predator) }
	}
	return []paramSlider{
		{"Prey", "Alignment", 0, 5, prey(func(s *config.SpeciesConfig) *float64 { return &s.Alignment })},
		{"Prey", "Attraction", 0, 5, prey(func(s *config.SpeciesConfig) *float64 { return &s.Attraction })},
		{"Prey", "Repulsion", 0, 5, prey(func(s *config.SpeciesConfig) *float64 { return &s.Repulsion })},
		{"Prey", "Flee", 0, 10, prey(func(s *config.SpeciesConfig) *float64 { return &s.CrossRepulsion })},
		{"Prey", "Evasion", 0, 5, prey(func(s *config.SpeciesConfig) *float64 { return &s.CrossAlignment })},
		{"Prey", "Max accel", 0.1, 10, prey(func(s *config.SpeciesConfig) *float64 { return &s.MaxAcceleration })},
		{"Prey", "Max speed", 0.1, 5, prey(func(s *config.SpeciesConfig) *float64 { return &s.MaxVelocity })},
		{"Predator", "Chase", 0, 10, pred(func(s *config.SpeciesConfig) *float64 { return &s.CrossAttraction })},
		{"Predator", "Alignment", 0, 5, pred(func(s *config.SpeciesConfig) *float64 { return &s.Alignment })},
		{"Predator", "Repulsion", 0, 5, pred(func(s *config.SpeciesConfig) *float64 { return &s.Repulsion })},
		{"Predator", "Max accel", 0.1, 10, pred(func(s *config.SpeciesConfig) *float64 { return &s.MaxAcceleration })},
		{"Predator", "Max speed", 0.1, 5, pred(func(s *config.SpeciesConfig) *float64 { return &s.MaxVelocity })},
		{"World", "Noise", 0, 0.5, func(c *config.Config) *float64 { return &c.Noise.Sigma }},
	}
}

// SetVisible shows or hides the panel.
func (p *ParamsPanel) SetVisible(visible bool) {
	p.visible = visible
}

// IsVisible returns whether the panel is shown.
func (p *ParamsPanel) IsVisible() bool {
	return p.visible
}

// Width returns the panel width.
func (p *ParamsPanel) Width() int32 {
	return p.width
}

// SetPosition moves the panel.
func (p *ParamsPanel) SetPosition(x, y int32) {
	p.x, p.y = x, y
}

// Contains reports whether a screen point lies over the panel.
func (p *ParamsPanel) Contains(x, y int32) bool {
	if !p.visible {
		return false
	}
	return x >= p.x && x < p.x+p.width && y >= p.y && y < p.y+p.height()
}

func (p *ParamsPanel) height() int32 {
	lh := p.renderer.Theme.LineHeight
	return int32(len(p.sliders))*(lh+6) + 3*lh + p.renderer.Theme.Padding*2 + 30
}

// Draw renders the sliders over cfg and applies edits in place.
// It returns changed when any slider moved and reset when the Reset button was pressed.
func (p *ParamsPanel) Draw(cfg *config.Config) (changed, reset bool) {
	if !p.visible {
		return false, false
	}

	r := p.renderer
	padding := r.Theme.Padding
	lh := r.Theme.LineHeight

	r.DrawPanel(p.x, p.y, p.width, p.height())

	x := float32(p.x + padding)
	y := p.y + padding
	rl.DrawText("Parameters", p.x+padding, y, 16, rl.White)
	y += lh + 4

	section := ""
	sliderW := float32(p.width - padding*2 - r.Theme.LabelWidth - 40)
	for _, s := range p.sliders {
		if s.section != section {
			section = s.section
			y = r.DrawSectionHeader(p.x+padding, y, section)
		}
		v := s.field(cfg)
		rl.DrawText(s.label, p.x+padding, y+2, r.Theme.FontSize, r.Theme.LabelColor)
		next := gui.SliderBar(
			rl.Rectangle{X: x + float32(r.Theme.LabelWidth), Y: float32(y), Width: sliderW, Height: float32(lh)},
			"", "",
			float32(*v), s.min, s.max,
		)
		rl.DrawText(fmt.Sprintf("%.2f", *v), p.x+p.width-padding-36, y+2, r.Theme.FontSize, r.Theme.ValueColor)
		if next != float32(*v) {
			*v = float64(next)
			changed = true
		}
		y += lh + 6
	}

	y += 4
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: 120, Height: 24}, "Reset") {
		reset = true
	}

	if changed {
		cfg.Recompute()
	}
	return changed, reset
}
