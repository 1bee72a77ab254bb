// Package viewport maps simulated world coordinates to screen coordinates
// through a single affine transform (scale + translation). The transform is
// independent of the simulation's own coordinates: pan and zoom never perturb
// node positions.
package viewport

import "sync"

// Options configures the transform. There is exactly one clamp range; the
// discrete zoom buttons and the continuous wheel path both go through it, so
// the two interaction paths can never disagree about bounds.
type Options struct {
	MinScale float64 // default 0.5
	MaxScale float64 // default 3.0
	ZoomStep float64 // default 0.2, used by the discrete controls
}

func (o *Options) withDefaults() Options {
	d := Options{MinScale: 0.5, MaxScale: 3.0, ZoomStep: 0.2}
	if o == nil {
		return d
	}
	if o.MinScale != 0 {
		d.MinScale = o.MinScale
	}
	if o.MaxScale != 0 {
		d.MaxScale = o.MaxScale
	}
	if o.ZoomStep != 0 {
		d.ZoomStep = o.ZoomStep
	}
	return d
}

// Transform is the authoritative view transform for one graph view. All
// mutation goes through its methods so the scale invariant holds everywhere.
// Methods are safe for concurrent use: the UI mutates the transform on its
// event loop while session loads reset it from worker goroutines.
type Transform struct {
	opts Options

	mu     sync.Mutex
	scale  float64
	tx, ty float64
}

// New returns an identity transform (scale 1, no translation).
func New(opts *Options) *Transform {
	return &Transform{opts: opts.withDefaults(), scale: 1}
}

// Scale returns the current scale.
func (t *Transform) Scale() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scale
}

// Translation returns the current screen-space offset.
func (t *Transform) Translation() (x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx, t.ty
}

// Reset restores the identity transform.
func (t *Transform) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = 1
	t.tx, t.ty = 0, 0
}

// WorldToScreen maps a simulated coordinate to screen space.
func (t *Transform) WorldToScreen(wx, wy float64) (sx, sy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return wx*t.scale + t.tx, wy*t.scale + t.ty
}

// ScreenToWorld maps a screen coordinate back to simulated space.
func (t *Transform) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screenToWorld(sx, sy)
}

// screenToWorld is the unlocked inverse mapping; callers hold t.mu.
func (t *Transform) screenToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - t.tx) / t.scale, (sy - t.ty) / t.scale
}

// Pan shifts the view by a screen-space delta.
func (t *Transform) Pan(dx, dy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tx += dx
	t.ty += dy
}

// ZoomIn increases scale by one step, keeping the screen point (cx, cy)
// anchored to the same world point.
func (t *Transform) ZoomIn(cx, cy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.zoomTo(t.scale+t.opts.ZoomStep, cx, cy)
}

// ZoomOut decreases scale by one step around (cx, cy).
func (t *Transform) ZoomOut(cx, cy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.zoomTo(t.scale-t.opts.ZoomStep, cx, cy)
}

// ZoomAt applies a continuous zoom factor (wheel gesture) around the screen
// point (cx, cy).
func (t *Transform) ZoomAt(cx, cy, factor float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.zoomTo(t.scale*factor, cx, cy)
}

// zoomTo is the single clamp point for every zoom path; callers hold t.mu.
func (t *Transform) zoomTo(scale, cx, cy float64) {
	if scale < t.opts.MinScale {
		scale = t.opts.MinScale
	}
	if scale > t.opts.MaxScale {
		scale = t.opts.MaxScale
	}
	if scale == t.scale {
		return
	}
	wx, wy := t.screenToWorld(cx, cy)
	t.scale = scale
	t.tx = cx - wx*scale
	t.ty = cy - wy*scale
}

// Fit frames the world bounds (x0,y0)-(x1,y1) inside a width×height viewport
// with the given padding, clamped like any other zoom.
func (t *Transform) Fit(x0, y0, x1, y1, width, height, padding float64) {
	gw := x1 - x0
	if gw <= 0 {
		gw = 1
	}
	gh := y1 - y0
	if gh <= 0 {
		gh = 1
	}
	sx := (width - 2*padding) / gw
	sy := (height - 2*padding) / gh
	s := sx
	if sy < s {
		s = sy
	}
	if s < t.opts.MinScale {
		s = t.opts.MinScale
	}
	if s > t.opts.MaxScale {
		s = t.opts.MaxScale
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = s
	t.tx = width/2 - (x0+gw/2)*s
	t.ty = height/2 - (y0+gh/2)*s
}
