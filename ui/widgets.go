package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panels and descriptor-driven fields with one theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the next row.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

func (r *Renderer) label(x, y int32, text string) {
	rl.DrawText(text+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
}

// DrawLabelValue draws a label and value on one row.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string, width int32) int32 {
	r.label(x, y, label)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// track draws the bar background and returns its origin and width.
func (r *Renderer) track(x, y int32, label string, width int32) (int32, int32) {
	r.label(x, y, label)
	barX := x + r.Theme.LabelWidth
	barWidth := max(width-r.Theme.LabelWidth-50, 10)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	return barX, barWidth
}

// DrawBar draws a fill bar for a [0, 1] fraction.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, width int32) int32 {
	return r.drawBar(x, y, label, value, r.Theme.BarFill, width)
}

func (r *Renderer) drawBar(x, y int32, label string, value float32, fill rl.Color, width int32) int32 {
	value = min(max(value, 0), 1)
	barX, barWidth := r.track(x, y, label, width)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), r.Theme.BarHeight, fill)
	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight + 2
}

// DrawCenteredBar draws a bar growing from the middle of [minVal, maxVal].
// Values above the midpoint fill right, values below fill left.
func (r *Renderer) DrawCenteredBar(x, y int32, label string, value, minVal, maxVal float32, width int32) int32 {
	barX, barWidth := r.track(x, y, label, width)
	centerX := barX + barWidth/2
	rl.DrawLine(centerX, y+2, centerX, y+2+r.Theme.BarHeight, r.Theme.PanelBorder)

	mid := (minVal + maxVal) / 2
	half := (maxVal - minVal) / 2
	if half > 0 {
		frac := min(max((value-mid)/half, -1), 1)
		fillWidth := int32(float32(barWidth/2) * frac)
		if fillWidth >= 0 {
			rl.DrawRectangle(centerX, y+2, fillWidth, r.Theme.BarHeight, r.Theme.BarFillPositive)
		} else {
			rl.DrawRectangle(centerX+fillWidth, y+2, -fillWidth, r.Theme.BarHeight, r.Theme.BarFillNegative)
		}
	}

	rl.DrawText(fmt.Sprintf("%+.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight + 2
}

// DrawColorSwatch draws a label with a small color square.
func (r *Renderer) DrawColorSwatch(x, y int32, label string, color rl.Color, width int32) int32 {
	r.label(x, y, label)
	rl.DrawRectangle(x+r.Theme.LabelWidth, y+1, 12, 12, color)
	return y + r.Theme.LineHeight
}

// DrawField renders one field according to its widget type.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	value := float32(0)
	if fd.Getter != nil {
		value = fd.Getter(data)
	}

	switch fd.Widget {
	case WidgetText:
		text := ""
		if fd.TextGetter != nil {
			text = fd.TextGetter(data)
		} else if fd.Getter != nil {
			text = fmt.Sprintf(fd.Format, value)
		}
		return r.DrawLabelValue(x, y, fd.Label, text, width)

	case WidgetBar:
		fill := r.Theme.BarFill
		if fd.Color.A > 0 {
			fill = fd.Color
		}
		return r.drawBar(x, y, fd.Label, value, fill, width)

	case WidgetCenteredBar:
		rng := fd.Range
		if rng.Min == rng.Max {
			rng = CenteredRange()
		}
		return r.DrawCenteredBar(x, y, fd.Label, value, rng.Min, rng.Max, width)

	case WidgetColorSwatch:
		color := fd.Color
		if fd.ColorGetter != nil {
			color = fd.ColorGetter(data)
		}
		return r.DrawColorSwatch(x, y, fd.Label, color, width)

	case WidgetSection:
		return r.DrawSectionHeader(x, y, fd.Label)

	case WidgetSpacer:
		return y + 6
	}
	return y
}

// DrawSection renders a section header and its visible fields.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return y
	}
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, sd.Title)
	}
	for _, fd := range sd.Fields {
		if fd.Visible != nil && !fd.Visible(data) {
			continue
		}
		y = r.DrawField(x, y, fd, data, width)
	}
	return y + 4
}
