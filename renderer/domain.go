package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/systems"
)

// DomainRenderer draws the square domain, its grid and the soft boundary band.
type DomainRenderer struct {
	Background rl.Color
	Outline    rl.Color
	GridLine   rl.Color
	SoftBand   rl.Color
	CountText  rl.Color
}

// NewDomainRenderer creates a domain renderer with the default palette.
func NewDomainRenderer() *DomainRenderer {
	return &DomainRenderer{
		Background: rl.Color{R: 12, G: 18, B: 26, A: 255},
		Outline:    rl.Color{R: 90, G: 110, B: 130, A: 255},
		GridLine:   rl.Color{R: 60, G: 75, B: 90, A: 120},
		SoftBand:   rl.Color{R: 200, G: 140, B: 60, A: 40},
		CountText:  rl.Color{R: 160, G: 170, B: 180, A: 200},
	}
}

// DrawBackground fills the domain. A wrapping domain fills the whole screen.
func (d *DomainRenderer) DrawBackground(cam *camera.Camera) {
	if cam.Wrap {
		rl.DrawRectangle(0, 0, int32(cam.ViewportW), int32(cam.ViewportH), d.Background)
		return
	}
	x, y, w, h := cam.DomainRect()
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, d.Background)
}

// DrawOutline draws the domain edges. Periodic domains have no edge to draw.
func (d *DomainRenderer) DrawOutline(cam *camera.Camera) {
	if cam.Wrap {
		return
	}
	x, y, w, h := cam.DomainRect()
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, 2, d.Outline)
}

// DrawGrid draws the cell boundaries of an n×n grid.
func (d *DomainRenderer) DrawGrid(cam *camera.Camera, numCells int, cellSize float64) {
	top, bottom := float32(0), cam.ViewportH
	left, right := float32(0), cam.ViewportW
	if !cam.Wrap {
		x, y, w, h := cam.DomainRect()
		left, right = x, x+w
		top, bottom = y, y+h
	}

	for k := 0; k <= numCells; k++ {
		if cam.Wrap && k == numCells {
			break // same line as k == 0
		}
		c := float32(float64(k) * cellSize)
		sx, _ := cam.WorldToScreen(c, cam.Y)
		_, sy := cam.WorldToScreen(cam.X, c)
		rl.DrawLineV(rl.Vector2{X: sx, Y: top}, rl.Vector2{X: sx, Y: bottom}, d.GridLine)
		rl.DrawLineV(rl.Vector2{X: left, Y: sy}, rl.Vector2{X: right, Y: sy}, d.GridLine)
	}
}

// DrawCellCounts labels each cell with its resident count. Empty cells are skipped.
func (d *DomainRenderer) DrawCellCounts(cam *camera.Camera, numCells int, cellSize float64, count func(i, j int) int) {
	s := cam.Scale()
	if float64(s)*cellSize < 16 {
		return
	}
	for i := range numCells {
		for j := range numCells {
			n := count(i, j)
			if n == 0 {
				continue
			}
			wx := float32(float64(i) * cellSize)
			wy := float32(float64(j) * cellSize)
			if !cam.IsVisible(wx, wy, float32(cellSize)) {
				continue
			}
			sx, sy := cam.WorldToScreen(wx, wy)
			rl.DrawText(fmt.Sprintf("%d", n), int32(sx)+3, int32(sy)+3, 10, d.CountText)
		}
	}
}

// DrawSoftBand shades the strip inside each wall where the soft boundary pushes inward.
func (d *DomainRenderer) DrawSoftBand(cam *camera.Camera, b systems.Boundary) {
	if b.Kind != systems.BoundarySoft || b.SoftRange <= 0 || cam.Wrap {
		return
	}
	x, y, w, h := cam.DomainRect()
	band := min(float32(b.SoftRange)*cam.Scale(), w/2)
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: band}, d.SoftBand)
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y + h - band, Width: w, Height: band}, d.SoftBand)
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y + band, Width: band, Height: h - 2*band}, d.SoftBand)
	rl.DrawRectangleRec(rl.Rectangle{X: x + w - band, Y: y + band, Width: band, Height: h - 2*band}, d.SoftBand)
}
