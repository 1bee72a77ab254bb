// Package viewer glues the graph view together: the interaction controller
// that turns pointer events into simulation perturbations and transform
// updates, the session that owns the fetch → rebuild → simulate lifecycle,
// and the frame snapshot renderers consume.
package viewer

import (
	"github.com/tracive/linkscope/pkg/force"
	"github.com/tracive/linkscope/pkg/graph"
	"github.com/tracive/linkscope/pkg/viewport"
)

// clickSlop is the maximum pointer travel, in screen units, still treated as
// a click rather than a drag.
const clickSlop = 3.0

// Controller translates pointer events into either simulation perturbations
// (pinning the dragged node), view-transform updates (pan/zoom), or pure UI
// state (selection). It owns the selection state: at most one node id.
type Controller struct {
	engine     *force.Engine
	transform  *viewport.Transform
	pickRadius float64

	width, height float64

	selected string

	dragID        string
	dragOffX      float64
	dragOffY      float64
	dragWasPinned bool
	panning       bool
	downX, downY  float64
	lastX, lastY  float64
	moved         bool
}

func newController(engine *force.Engine, transform *viewport.Transform, pickRadius float64) *Controller {
	if pickRadius <= 0 {
		pickRadius = 40
	}
	return &Controller{engine: engine, transform: transform, pickRadius: pickRadius}
}

// SetCanvasSize tells the controller the rendering surface dimensions, used
// as the anchor for the discrete zoom controls.
func (c *Controller) SetCanvasSize(w, h float64) {
	c.width, c.height = w, h
}

// Selected returns the selected node id, or "" when nothing is selected.
func (c *Controller) Selected() string { return c.selected }

// ClearSelection drops the selection (detail panel close, background click).
func (c *Controller) ClearSelection() { c.selected = "" }

// pick returns the topmost node whose disc contains the world point.
func (c *Controller) pick(wx, wy float64) *graph.Node {
	r2 := c.pickRadius * c.pickRadius
	for _, n := range c.engine.Model().Nodes() {
		dx := wx - n.X
		dy := wy - n.Y
		if dx*dx+dy*dy <= r2 {
			return n
		}
	}
	return nil
}

// PointerDown begins either a node drag or a background pan. A node drag
// reheats the simulation via SetAlphaTarget(0.3), never a full restart, so
// the existing layout is preserved, and pins the node where it already sits.
// The pointer offset from the node center is kept for the whole gesture, so
// grabbing a node off-center never makes it jump.
func (c *Controller) PointerDown(sx, sy float64) {
	c.downX, c.downY = sx, sy
	c.lastX, c.lastY = sx, sy
	c.moved = false

	wx, wy := c.transform.ScreenToWorld(sx, sy)
	if n := c.pick(wx, wy); n != nil {
		c.dragID = n.ID
		c.dragOffX, c.dragOffY = n.X-wx, n.Y-wy
		c.dragWasPinned = n.Pinned()
		c.engine.SetAlphaTarget(0.3)
		c.engine.Pin(n.ID, n.X, n.Y)
		return
	}
	c.panning = true
}

// PointerMove updates the active gesture: the pin follows the pointer during
// a node drag, while a background drag pans the view transform.
func (c *Controller) PointerMove(sx, sy float64) {
	dx := sx - c.lastX
	dy := sy - c.lastY
	c.lastX, c.lastY = sx, sy

	if !c.moved {
		tx := sx - c.downX
		ty := sy - c.downY
		if tx*tx+ty*ty > clickSlop*clickSlop {
			c.moved = true
		}
	}

	switch {
	case c.dragID != "":
		// Below the slop threshold the gesture is still a click; the node
		// holds its own position.
		if c.moved {
			wx, wy := c.transform.ScreenToWorld(sx, sy)
			c.engine.Pin(c.dragID, wx+c.dragOffX, wy+c.dragOffY)
		}
	case c.panning:
		c.transform.Pan(dx, dy)
	}
}

// PointerUp ends the gesture. Releasing a dragged node lets the system cool
// (alphaTarget back to 0) but deliberately leaves the node pinned where the
// user dropped it; only the next model rebuild releases it. A press-release
// without movement is a click: on a node it selects without disturbing it
// (the down-pin is released unless the node was already pinned), on the
// background it clears the selection.
func (c *Controller) PointerUp(sx, sy float64) {
	if c.dragID != "" {
		c.engine.SetAlphaTarget(0)
		if !c.moved {
			c.selected = c.dragID
			if !c.dragWasPinned {
				c.engine.Unpin(c.dragID)
			}
		}
		c.dragID = ""
		return
	}
	if c.panning {
		c.panning = false
		if !c.moved {
			c.selected = ""
		}
	}
}

// Wheel applies continuous zoom around the pointer, through the same clamped
// transform the buttons use.
func (c *Controller) Wheel(sx, sy, deltaY float64) {
	step := deltaY / 500.0
	if step > 0.5 {
		step = 0.5
	}
	if step < -0.5 {
		step = -0.5
	}
	c.transform.ZoomAt(sx, sy, 1-step)
}

// ZoomIn is the discrete zoom-in control, anchored at the canvas center.
func (c *Controller) ZoomIn() { c.transform.ZoomIn(c.width/2, c.height/2) }

// ZoomOut is the discrete zoom-out control.
func (c *Controller) ZoomOut() { c.transform.ZoomOut(c.width/2, c.height/2) }
