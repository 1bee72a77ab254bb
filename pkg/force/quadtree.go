package force

// quadtree is a spatial index over node positions used to approximate the
// n-body charge force (Barnes–Hut multipole) and to prune collision pair
// enumeration. Rebuilt every tick; positions are snapshotted at build time.
type quadtree struct {
	xs, ys []float64
	root   *quadCell
}

// maxDepth caps subdivision so coincident points terminate as a shared leaf
// instead of recursing forever.
const maxDepth = 24

type quadCell struct {
	x0, y0, x1, y1 float64

	// children is non-nil iff the cell is internal. Quadrant order:
	// NW, NE, SW, SE.
	children *[4]*quadCell

	// points holds node indices for leaves. More than one entry only at
	// maxDepth (coincident or near-coincident positions).
	points []int

	// Aggregates for the multipole approximation.
	mass   float64
	cx, cy float64
}

func (c *quadCell) leaf() bool { return c.children == nil }

func (c *quadCell) width() float64 { return c.x1 - c.x0 }

// newQuadtree indexes all positions in xs/ys (parallel slices).
func newQuadtree(xs, ys []float64) *quadtree {
	t := &quadtree{xs: xs, ys: ys}
	if len(xs) == 0 {
		return t
	}

	minX, minY := xs[0], ys[0]
	maxX, maxY := minX, minY
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	// Square bounds keep quadrants square, which the Barnes–Hut size
	// criterion assumes.
	side := maxX - minX
	if maxY-minY > side {
		side = maxY - minY
	}
	if side <= 0 {
		side = 1
	}

	t.root = &quadCell{x0: minX, y0: minY, x1: minX + side, y1: minY + side}
	for i := range xs {
		t.insert(t.root, i, 0)
	}
	t.accumulate(t.root)
	return t
}

func (t *quadtree) insert(c *quadCell, i int, depth int) {
	if c.leaf() {
		if len(c.points) == 0 || depth >= maxDepth {
			c.points = append(c.points, i)
			return
		}
		// Split: push the existing occupant down, then retry.
		old := c.points
		c.points = nil
		c.children = &[4]*quadCell{}
		for _, p := range old {
			t.insert(c, p, depth)
		}
		t.insert(c, i, depth)
		return
	}

	midX := (c.x0 + c.x1) / 2
	midY := (c.y0 + c.y1) / 2
	q := 0
	x0, y0, x1, y1 := c.x0, c.y0, midX, midY
	if t.xs[i] >= midX {
		q |= 1
		x0, x1 = midX, c.x1
	}
	if t.ys[i] >= midY {
		q |= 2
		y0, y1 = midY, c.y1
	}
	child := c.children[q]
	if child == nil {
		child = &quadCell{x0: x0, y0: y0, x1: x1, y1: y1}
		c.children[q] = child
	}
	t.insert(child, i, depth+1)
}

func (t *quadtree) accumulate(c *quadCell) {
	if c == nil {
		return
	}
	if c.leaf() {
		c.mass = float64(len(c.points))
		var sx, sy float64
		for _, p := range c.points {
			sx += t.xs[p]
			sy += t.ys[p]
		}
		if c.mass > 0 {
			c.cx = sx / c.mass
			c.cy = sy / c.mass
		}
		return
	}
	for _, child := range c.children {
		if child == nil {
			continue
		}
		t.accumulate(child)
		c.mass += child.mass
		c.cx += child.cx * child.mass
		c.cy += child.cy * child.mass
	}
	if c.mass > 0 {
		c.cx /= c.mass
		c.cy /= c.mass
	}
}

// repulsion walks the tree for the query point (x, y), calling apply with the
// offset to either an aggregated cell or an individual node. Cells whose
// angular size falls under theta are treated as a single body. The node at
// index skip is excluded so a node does not repel itself.
func (t *quadtree) repulsion(skip int, x, y, theta float64, apply func(dx, dy, mass float64)) {
	if t.root == nil {
		return
	}
	theta2 := theta * theta
	var walk func(c *quadCell)
	walk = func(c *quadCell) {
		if c == nil || c.mass == 0 {
			return
		}
		dx := c.cx - x
		dy := c.cy - y
		dist2 := dx*dx + dy*dy
		w := c.width()
		if !c.leaf() {
			if w*w < theta2*dist2 {
				apply(dx, dy, c.mass)
				return
			}
			for _, child := range c.children {
				walk(child)
			}
			return
		}
		for _, p := range c.points {
			if p == skip {
				continue
			}
			apply(t.xs[p]-x, t.ys[p]-y, 1)
		}
	}
	walk(t.root)
}

// visitWithin calls fn for every indexed point within radius r of (x, y),
// pruning whole cells outside the bounding square.
func (t *quadtree) visitWithin(x, y, r float64, fn func(i int)) {
	if t.root == nil {
		return
	}
	r2 := r * r
	var walk func(c *quadCell)
	walk = func(c *quadCell) {
		if c == nil || c.mass == 0 {
			return
		}
		if c.x0 > x+r || c.x1 < x-r || c.y0 > y+r || c.y1 < y-r {
			return
		}
		if c.leaf() {
			for _, p := range c.points {
				dx := t.xs[p] - x
				dy := t.ys[p] - y
				if dx*dx+dy*dy <= r2 {
					fn(p)
				}
			}
			return
		}
		for _, child := range c.children {
			walk(child)
		}
	}
	walk(t.root)
}
