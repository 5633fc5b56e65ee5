package main

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/flatphys/flat"
)

const (
	// force applied to the control body per unit of mass
	controlForce = 200
	zoomStep     = 0.125
	panStep      = 1.0
	scatterCount = 10
)

// controller turns terminal events into world changes.
type controller struct {
	ctx     context.Context
	world   *flat.World
	control *flat.Body
	cam     *camera
	drawer  *screenDrawer
	spawner *spawner

	dir         flat.Vector
	prevButtons tcell.ButtonMask
}

// handle applies one event and reports false when the demo should quit.
func (c *controller) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev)
	case *tcell.EventMouse:
		c.handleMouse(ev)
	case *tcell.EventResize:
		c.drawer.screen.Sync()
	}
	return true
}

func (c *controller) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		c.cam.pan(flat.Vector{Y: panStep})
	case tcell.KeyDown:
		c.cam.pan(flat.Vector{Y: -panStep})
	case tcell.KeyLeft:
		c.cam.pan(flat.Vector{X: panStep})
	case tcell.KeyRight:
		c.cam.pan(flat.Vector{X: -panStep})
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'w':
			c.dir.Y--
		case 's':
			c.dir.Y++
		case 'a':
			c.dir.X--
		case 'd':
			c.dir.X++
		case '=', '+':
			c.cam.zoomBy(zoomStep)
		case '-':
			c.cam.zoomBy(-zoomStep)
		case 'p':
			c.world.LogStats(c.ctx)
		case 'r':
			for _, body := range c.spawner.scatter(scatterCount) {
				c.world.AddBody(body)
			}
		case 'c':
			c.drawer.toggle(flat.DRAW_COLLISION_POINTS)
		case 'b':
			c.drawer.toggle(flat.DRAW_BOUNDING_BOXES)
		}
	}
	return true
}

// handleMouse spawns on press only, not while the button is held.
func (c *controller) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons &^ c.prevButtons
	c.prevButtons = buttons

	x, y := ev.Position()
	pos := c.cam.screenToWorld(x, y)

	switch {
	case pressed&tcell.Button1 != 0:
		c.world.AddBody(c.spawner.box(pos))
	case pressed&(tcell.Button2|tcell.Button3) != 0:
		c.world.AddBody(c.spawner.circle(pos))
	}
}

// applyControl pushes the control body with the keys pressed since the last frame.
func (c *controller) applyControl() {
	dir := c.dir
	c.dir = flat.Vector{}

	if c.control == nil || c.control.World() == nil || dir.IsZero() {
		return
	}
	c.control.ApplyForce(dir.Mult(c.control.Mass() * controlForce))
}
