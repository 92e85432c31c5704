package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/sim"
)

// InspectorData is what the inspector shows for the selected agent.
type InspectorData struct {
	Agent      sim.AgentView
	Params     components.SpeciesParams
	HistoryLen int
	Neighbors  int     // agents of either kind inside the vision radius
	DeathTime  float64 // only meaningful for dead agents
}

// Inspector renders a panel describing the selected agent.
type Inspector struct {
	renderer *Renderer
	sections []SectionDescriptor
	width    int32
}

// NewInspector creates an inspector panel of the given width.
func NewInspector(width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		sections: inspectorSections(),
		width:    width,
	}
}

func inspectorData(d any) *InspectorData { return d.(*InspectorData) }

func inspectorSections() []SectionDescriptor {
	theme := DefaultTheme()
	return []SectionDescriptor{
		{
			ID:    "identity",
			Title: "Agent",
			Fields: []FieldDescriptor{
				{ID: "index", Label: "Index", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d", inspectorData(d).Agent.Index)
				}},
				{ID: "kind", Label: "Kind", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
					a := inspectorData(d).Agent
					switch {
					case !a.Alive():
						return theme.DeadColor
					case a.Kind == components.KindPredator:
						return theme.PredatorColor
					default:
						return theme.PreyColor
					}
				}},
				{ID: "status", Label: "Status", Widget: WidgetText, TextGetter: func(d any) string {
					data := inspectorData(d)
					if data.Agent.Alive() {
						return data.Agent.Kind.String() + ", alive"
					}
					return fmt.Sprintf("killed t=%.2f", data.DeathTime)
				}},
				{ID: "history", Label: "History", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d states", inspectorData(d).HistoryLen)
				}},
			},
		},
		{
			ID:    "motion",
			Title: "Motion",
			Fields: []FieldDescriptor{
				{ID: "pos", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
					p := inspectorData(d).Agent.Position
					return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
				}},
				{ID: "speed", Label: "Speed", Widget: WidgetBar, Getter: func(d any) float32 {
					data := inspectorData(d)
					if data.Params.MaxVelocity <= 0 {
						return 0
					}
					v := data.Agent.Velocity
					return float32(math.Hypot(v.X, v.Y) / data.Params.MaxVelocity)
				}},
				{ID: "heading", Label: "Heading", Widget: WidgetCenteredBar, Range: FieldRange{Min: -math.Pi, Max: math.Pi}, Getter: func(d any) float32 {
					return float32(inspectorData(d).Agent.Heading())
				}},
				{ID: "neighbors", Label: "In view", Widget: WidgetText, Visible: func(d any) bool {
					return inspectorData(d).Agent.Alive()
				}, TextGetter: func(d any) string {
					return fmt.Sprintf("%d", inspectorData(d).Neighbors)
				}},
			},
		},
		{
			ID:    "hunt",
			Title: "Hunt",
			Visible: func(d any) bool {
				return inspectorData(d).Agent.Kind == components.KindPredator
			},
			Fields: []FieldDescriptor{
				{ID: "cooldown", Label: "Cooldown", Widget: WidgetBar, Color: theme.PredatorColor, Getter: func(d any) float32 {
					data := inspectorData(d)
					if data.Params.KillCooldown <= 0 {
						return 0
					}
					return float32(data.Agent.Cooldown / data.Params.KillCooldown)
				}},
			},
		},
		{
			ID:    "params",
			Title: "Weights",
			Fields: []FieldDescriptor{
				{ID: "vision", Label: "Vision", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
					return float32(inspectorData(d).Params.VisionRadius)
				}},
				{ID: "align", Label: "Align", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
					return float32(inspectorData(d).Params.Alignment)
				}},
				{ID: "attract", Label: "Attract", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
					return float32(inspectorData(d).Params.Attraction)
				}},
				{ID: "repulse", Label: "Repulse", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
					return float32(inspectorData(d).Params.Repulsion)
				}},
			},
		},
	}
}

// Width returns the panel width.
func (in *Inspector) Width() int32 {
	return in.width
}

// Draw renders the inspector with its top-left corner at (x, y).
func (in *Inspector) Draw(x, y int32, data *InspectorData) {
	if data == nil {
		return
	}
	r := in.renderer
	padding := r.Theme.Padding

	r.DrawPanel(x, y, in.width, in.height(data))

	cy := y + padding
	for _, sd := range in.sections {
		cy = r.DrawSection(x+padding, cy, sd, data, in.width-padding*2)
	}
}

// height counts visible rows to size the panel.
func (in *Inspector) height(data *InspectorData) int32 {
	lh := in.renderer.Theme.LineHeight
	rows := int32(0)
	gaps := int32(0)
	for _, sd := range in.sections {
		if sd.Visible != nil && !sd.Visible(data) {
			continue
		}
		rows++
		gaps++
		for _, fd := range sd.Fields {
			if fd.Visible == nil || fd.Visible(data) {
				rows++
			}
		}
	}
	return rows*lh + gaps*4 + in.renderer.Theme.Padding*2
}
