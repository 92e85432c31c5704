// Package camera maps the square simulation domain onto the screen.
package camera

import "math"

// Point is a screen position.
type Point struct{ X, Y float32 }

// Camera controls the viewport into the domain. Zoom 1 fits the whole
// domain into the shorter viewport side.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom over the fit scale (1.0 = whole domain visible)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Side length of the domain
	Length float32

	// Wrap is set for periodic domains: panning wraps and agents near the
	// seam are drawn on both sides.
	Wrap bool

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the domain.
func New(viewportW, viewportH, length float32, wrap bool) *Camera {
	return &Camera{
		X:         length / 2,
		Y:         length / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Length:    length,
		Wrap:      wrap,
		MinZoom:   0.5,
		MaxZoom:   8.0,
	}
}

// Scale returns screen pixels per world unit.
func (c *Camera) Scale() float32 {
	return min(c.ViewportW, c.ViewportH) / c.Length * c.Zoom
}

// delta is the offset from the camera center to (wx, wy), taking the
// shortest way around when the domain wraps.
func (c *Camera) delta(wx, wy float32) (dx, dy float32) {
	dx, dy = wx-c.X, wy-c.Y
	if c.Wrap {
		dx = toroidalDelta(wx, c.X, c.Length)
		dy = toroidalDelta(wy, c.Y, c.Length)
	}
	return dx, dy
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx, dy := c.delta(wx, wy)
	s := c.Scale()
	return c.ViewportW/2 + dx*s, c.ViewportH/2 + dy*s
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	s := c.Scale()
	wx = c.X + (sx-c.ViewportW/2)/s
	wy = c.Y + (sy-c.ViewportH/2)/s
	if c.Wrap {
		wx = mod(wx, c.Length)
		wy = mod(wy, c.Length)
	}
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with the given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	dx, dy := c.delta(wx, wy)
	s := c.Scale()
	halfW := c.ViewportW/(2*s) + radius
	halfH := c.ViewportH/(2*s) + radius
	return absf(dx) <= halfW && absf(dy) <= halfH
}

// GhostPositions returns the extra screen positions at which an agent near
// the seam of a wrapping domain is also visible. At most three are returned.
func (c *Camera) GhostPositions(wx, wy float32) []Point {
	if !c.Wrap {
		return nil
	}
	dx, dy := c.delta(wx, wy)
	s := c.Scale()
	halfW := c.ViewportW / (2 * s)
	halfH := c.ViewportH / (2 * s)

	var xs, ys []float32
	for _, shift := range []float32{-c.Length, c.Length} {
		if absf(dx+shift) <= halfW {
			xs = append(xs, dx+shift)
		}
		if absf(dy+shift) <= halfH {
			ys = append(ys, dy+shift)
		}
	}

	var ghosts []Point
	for _, gx := range xs {
		ghosts = append(ghosts, Point{c.ViewportW/2 + gx*s, c.ViewportH/2 + dy*s})
	}
	for _, gy := range ys {
		ghosts = append(ghosts, Point{c.ViewportW/2 + dx*s, c.ViewportH/2 + gy*s})
	}
	for _, gx := range xs {
		for _, gy := range ys {
			ghosts = append(ghosts, Point{c.ViewportW/2 + gx*s, c.ViewportH/2 + gy*s})
		}
	}
	if len(ghosts) > 3 {
		ghosts = ghosts[:3]
	}
	return ghosts
}

// DomainRect returns the screen rectangle of the domain [0, L]² as seen
// without wrapping.
func (c *Camera) DomainRect() (x, y, w, h float32) {
	s := c.Scale()
	x = c.ViewportW/2 - c.X*s
	y = c.ViewportH/2 - c.Y*s
	return x, y, c.Length * s, c.Length * s
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetWrap switches between wrapping and bounded domains. A bounded camera
// is pulled back inside the domain.
func (c *Camera) SetWrap(wrap bool) {
	c.Wrap = wrap
	if !wrap {
		c.X = clamp(c.X, 0, c.Length)
		c.Y = clamp(c.Y, 0, c.Length)
	}
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X += dx / s
	c.Y += dy / s
	if c.Wrap {
		c.X = mod(c.X, c.Length)
		c.Y = mod(c.Y, c.Length)
	} else {
		c.X = clamp(c.X, 0, c.Length)
		c.Y = clamp(c.Y, 0, c.Length)
	}
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.Length / 2
	c.Y = c.Length / 2
	c.Zoom = 1.0
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
