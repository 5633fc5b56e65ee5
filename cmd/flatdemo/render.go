package main

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/flatphys/flat"
)

const (
	// terminal cells are about twice as tall as they are wide
	cellsPerMeterX = 2
	cellsPerMeterY = 1

	minZoom = 0.25
	maxZoom = 4
)

// camera maps world meters to terminal cells: screen = scale * (world + offset).
type camera struct {
	offset flat.Vector
	zoom   float64
}

func newCamera() *camera {
	return &camera{zoom: 1}
}

func (c *camera) matrix() mgl64.Mat3 {
	scale := mgl64.Scale2D(cellsPerMeterX*c.zoom, cellsPerMeterY*c.zoom)
	return scale.Mul3(mgl64.Translate2D(c.offset.X, c.offset.Y))
}

func (c *camera) worldToScreen(p flat.Vector) (float64, float64) {
	v := c.matrix().Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return v.X(), v.Y()
}

// screenToWorld returns the world position of the center of cell (x, y).
func (c *camera) screenToWorld(x, y int) flat.Vector {
	v := c.matrix().Inv().Mul3x1(mgl64.Vec3{float64(x) + 0.5, float64(y) + 0.5, 1})
	return flat.Vector{X: v.X(), Y: v.Y()}
}

func (c *camera) zoomBy(delta float64) {
	c.zoom = flat.Clamp(c.zoom+delta, minZoom, maxZoom)
}

func (c *camera) pan(delta flat.Vector) {
	c.offset = c.offset.Add(delta)
}

var (
	staticColor  = colorful.Color{R: 0.55, G: 0.55, B: 0.55}
	controlColor = colorful.Color{R: 0.2, G: 0.35, B: 1}
)

func toFColor(c colorful.Color) flat.FColor {
	return flat.FColor{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}
}

func toTcell(c flat.FColor) tcell.Color {
	r, g, b := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// screenDrawer renders a world into a tcell screen, one cell per sample.
type screenDrawer struct {
	screen tcell.Screen
	cam    *camera
	flags  int
}

func (d *screenDrawer) setCell(x, y int, r rune, color flat.FColor) {
	w, h := d.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	d.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(toTcell(color)))
}

// cellRange returns the cells covered by a world space box, clipped to the screen.
func (d *screenDrawer) cellRange(bb flat.BB) (x0, y0, x1, y1 int) {
	ax, ay := d.cam.worldToScreen(flat.Vector{X: bb.L, Y: bb.B})
	bx, by := d.cam.worldToScreen(flat.Vector{X: bb.R, Y: bb.T})
	w, h := d.screen.Size()

	x0 = max(int(math.Floor(math.Min(ax, bx))), 0)
	y0 = max(int(math.Floor(math.Min(ay, by))), 0)
	x1 = min(int(math.Ceil(math.Max(ax, bx))), w-1)
	y1 = min(int(math.Ceil(math.Max(ay, by))), h-1)
	return x0, y0, x1, y1
}

func (d *screenDrawer) DrawCircle(pos flat.Vector, angle, radius float64, outline, fill flat.FColor, data interface{}) {
	x0, y0, x1, y1 := d.cellRange(flat.NewBBForCircle(pos, radius))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if d.cam.screenToWorld(x, y).DistanceSq(pos) <= radius*radius {
				d.setCell(x, y, '█', fill)
			}
		}
	}

	// spoke showing the rotation
	tip := pos.Add(flat.ForAngle(angle).Mult(radius * 0.6))
	x, y := d.cam.worldToScreen(tip)
	d.setCell(int(x), int(y), '●', outline)
}

func (d *screenDrawer) DrawSegment(a, b flat.Vector, fill flat.FColor, data interface{}) {
	ax, ay := d.cam.worldToScreen(a)
	bx, by := d.cam.worldToScreen(b)

	steps := int(math.Max(math.Abs(bx-ax), math.Abs(by-ay)))
	if steps == 0 {
		d.setCell(int(ax), int(ay), '·', fill)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		d.setCell(int(flat.Lerp(ax, bx, t)), int(flat.Lerp(ay, by, t)), '·', fill)
	}
}

func (d *screenDrawer) DrawPolygon(verts []flat.Vector, outline, fill flat.FColor, data interface{}) {
	x0, y0, x1, y1 := d.cellRange(flat.NewBBForPoints(verts))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if flat.PolyContainsPoint(verts, d.cam.screenToWorld(x, y)) {
				d.setCell(x, y, '█', fill)
			}
		}
	}
}

func (d *screenDrawer) DrawDot(size float64, pos flat.Vector, fill flat.FColor, data interface{}) {
	x, y := d.cam.worldToScreen(pos)
	d.setCell(int(x), int(y), '•', fill)
}

func (d *screenDrawer) Flags() int {
	return d.flags
}

func (d *screenDrawer) toggle(flag int) {
	d.flags ^= flag
}

func (d *screenDrawer) OutlineColor() flat.FColor {
	return flat.FColor{R: 1, G: 1, B: 1, A: 1}
}

func (d *screenDrawer) BodyColor(body *flat.Body, data interface{}) flat.FColor {
	if c, ok := body.UserData.(colorful.Color); ok {
		return toFColor(c)
	}
	if body.IsStatic() {
		return toFColor(staticColor)
	}
	return d.OutlineColor()
}

func (d *screenDrawer) CollisionPointColor() flat.FColor {
	return flat.FColor{R: 1, G: 0.2, B: 0.2, A: 1}
}

func (d *screenDrawer) Data() interface{} {
	return nil
}

func (d *screenDrawer) drawText(x, y int, text string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for i, r := range []rune(text) {
		d.screen.SetContent(x+i, y, r, nil, style)
	}
}
