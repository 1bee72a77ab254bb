package force

import "math"

// applyLinkForce pulls the endpoints of every link toward the configured
// separation distance. Pinned endpoints do not receive the impulse; they hold
// position and the free endpoint does all the moving. Self-referential links
// are inert.
func (e *Engine) applyLinkForce() {
	o := e.opts
	for _, l := range e.model.Links() {
		si, sok := e.index[l.Source]
		ti, tok := e.index[l.Target]
		if !sok || !tok || si == ti {
			continue
		}
		src, tgt := e.nodes[si], e.nodes[ti]
		dx := tgt.X - src.X
		dy := tgt.Y - src.Y
		dist2 := dx*dx + dy*dy
		if dist2 == 0 {
			dx, dy = e.jiggle(), e.jiggle()
			dist2 = dx*dx + dy*dy
		}
		dist := math.Sqrt(dist2)
		f := o.LinkStrength * (dist - o.LinkDistance) / dist
		fx := f * dx
		fy := f * dy
		if !src.Pinned() {
			e.vx[si] += fx
			e.vy[si] += fy
		}
		if !tgt.Pinned() {
			e.vx[ti] -= fx
			e.vy[ti] -= fy
		}
	}
}

// applyChargeForce repels every pair of nodes with strength falling off with
// squared distance. Small graphs use the exact pairwise sum; above
// BruteForceThreshold the quadtree multipole approximation keeps the pass
// near O(n log n). This is the hot path of the whole component.
func (e *Engine) applyChargeForce() {
	n := len(e.nodes)
	if n < 2 {
		return
	}
	rep := -e.opts.ChargeStrength // positive magnitude repels

	if n <= e.opts.BruteForceThreshold {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := e.nodes[j].X - e.nodes[i].X
				dy := e.nodes[j].Y - e.nodes[i].Y
				dist2 := dx*dx + dy*dy
				if dist2 == 0 {
					dx, dy = e.jiggle(), e.jiggle()
					dist2 = dx*dx + dy*dy
				}
				f := rep / dist2
				inv := 1 / math.Sqrt(dist2)
				fx := f * dx * inv
				fy := f * dy * inv
				e.vx[i] -= fx
				e.vy[i] -= fy
				e.vx[j] += fx
				e.vy[j] += fy
			}
		}
		return
	}

	if e.px == nil || len(e.px) != n {
		e.px = make([]float64, n)
		e.py = make([]float64, n)
	}
	for i, node := range e.nodes {
		e.px[i] = node.X
		e.py[i] = node.Y
	}
	tree := newQuadtree(e.px, e.py)
	for i := 0; i < n; i++ {
		x, y := e.px[i], e.py[i]
		tree.repulsion(i, x, y, e.opts.Theta, func(dx, dy, mass float64) {
			dist2 := dx*dx + dy*dy
			if dist2 == 0 {
				dx, dy = e.jiggle(), e.jiggle()
				dist2 = dx*dx + dy*dy
			}
			f := rep * mass / dist2
			inv := 1 / math.Sqrt(dist2)
			e.vx[i] -= f * dx * inv
			e.vy[i] -= f * dy * inv
		})
	}
}

// applyCenterForce nudges the centroid of all positions toward the canvas
// center so the layout cannot drift off-screen. The correction moves
// positions directly; pinned nodes stay put.
func (e *Engine) applyCenterForce() {
	n := len(e.nodes)
	if n == 0 || e.opts.CenterStrength == 0 {
		return
	}
	var cx, cy float64
	for _, node := range e.nodes {
		cx += node.X
		cy += node.Y
	}
	cx /= float64(n)
	cy /= float64(n)
	sx := (e.opts.CenterX - cx) * e.opts.CenterStrength
	sy := (e.opts.CenterY - cy) * e.opts.CenterStrength
	for _, node := range e.nodes {
		if node.Pinned() {
			continue
		}
		node.X += sx
		node.Y += sy
	}
}

// applyCollideForce resolves overlaps between node discs of fixed radius so
// they do not interpenetrate. Overlap correction is split evenly between two
// free nodes; a pinned node pushes the full correction onto its partner.
func (e *Engine) applyCollideForce() {
	n := len(e.nodes)
	if n < 2 {
		return
	}
	d := 2 * e.opts.CollideRadius
	d2 := d * d

	resolve := func(i, j int) {
		a, b := e.nodes[i], e.nodes[j]
		dx := b.X - a.X
		dy := b.Y - a.Y
		dist2 := dx*dx + dy*dy
		if dist2 >= d2 {
			return
		}
		if dist2 == 0 {
			dx, dy = e.jiggle(), e.jiggle()
			dist2 = dx*dx + dy*dy
		}
		dist := math.Sqrt(dist2)
		overlap := d - dist
		ux := dx / dist
		uy := dy / dist
		switch {
		case a.Pinned() && b.Pinned():
			// Both held by the user; leave them alone.
		case a.Pinned():
			b.X += ux * overlap
			b.Y += uy * overlap
		case b.Pinned():
			a.X -= ux * overlap
			a.Y -= uy * overlap
		default:
			a.X -= ux * overlap / 2
			a.Y -= uy * overlap / 2
			b.X += ux * overlap / 2
			b.Y += uy * overlap / 2
		}
	}

	if n <= e.opts.BruteForceThreshold {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				resolve(i, j)
			}
		}
		return
	}

	if e.px == nil || len(e.px) != n {
		e.px = make([]float64, n)
		e.py = make([]float64, n)
	}
	for i, node := range e.nodes {
		e.px[i] = node.X
		e.py[i] = node.Y
	}
	tree := newQuadtree(e.px, e.py)
	for i := 0; i < n; i++ {
		tree.visitWithin(e.px[i], e.py[i], d, func(j int) {
			if j > i {
				resolve(i, j)
			}
		})
	}
}
