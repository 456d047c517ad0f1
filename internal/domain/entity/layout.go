package entity

// Extent is the measured size of a pane's container.
type Extent struct {
	Width  float64
	Height float64
}

// along returns the extent on the axis of d.
func (e Extent) along(d Direction) float64 {
	if d == Vertical {
		return e.Height
	}
	return e.Width
}

// Rect is a pane's placement relative to the root container.
type Rect struct {
	X, Y float64
	W, H float64
}

// Extent returns the rectangle's size.
func (r Rect) Extent() Extent {
	return Extent{Width: r.W, Height: r.H}
}

// DoLayoutPane rescales Size so it sums exactly to the container extent along
// Direction, then lays out every child inside its share. Rounding leftovers go
// to the last entry. Panes with an unmeasured container or a zero size sum are
// left as they are.
func (p *Pane) DoLayoutPane(container Extent) {
	type job struct {
		pane   *Pane
		extent Extent
	}
	stack := []job{{pane: p, extent: container}}
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !j.pane.rescale(j.extent.along(j.pane.Direction)) {
			continue
		}
		for i, child := range j.pane.Children {
			childExtent := j.extent
			if j.pane.Direction == Vertical {
				childExtent.Height = j.pane.Size[i]
			} else {
				childExtent.Width = j.pane.Size[i]
			}
			stack = append(stack, job{pane: child, extent: childExtent})
		}
	}
}

// rescale reports whether the size vector now matches total.
func (p *Pane) rescale(total float64) bool {
	if total <= 0 || len(p.Size) == 0 || len(p.Size) != len(p.Children) {
		return false
	}
	current := sum(p.Size)
	if current == 0 {
		return false
	}
	ratio := total / current
	acc := 0.0
	last := len(p.Size) - 1
	for i := 0; i < last; i++ {
		p.Size[i] *= ratio
		acc += p.Size[i]
	}
	p.Size[last] = total - acc
	return true
}

// LayoutRects computes the rectangle of every leaf pane inside bounds from the
// proportional sizes, without modifying them.
func (p *Pane) LayoutRects(bounds Rect) map[PaneID]Rect {
	out := make(map[PaneID]Rect)
	type job struct {
		pane *Pane
		rect Rect
	}
	stack := []job{{pane: p, rect: bounds}}
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := j.pane

		if node.IsLeaf() {
			out[node.ID] = j.rect
			continue
		}
		vertical := node.Direction == Vertical
		total := j.rect.W
		if vertical {
			total = j.rect.H
		}
		shares := proportions(node.Size, len(node.Children), total)
		offset := 0.0
		for i, child := range node.Children {
			r := j.rect
			if vertical {
				r.Y += offset
				r.H = shares[i]
			} else {
				r.X += offset
				r.W = shares[i]
			}
			offset += shares[i]
			stack = append(stack, job{pane: child, rect: r})
		}
	}
	return out
}

// proportions splits total by the weights, falling back to equal shares when
// the weights are missing or sum to zero.
func proportions(weights []float64, count int, total float64) []float64 {
	shares := make([]float64, count)
	if count == 0 {
		return shares
	}
	current := 0.0
	if len(weights) == count {
		current = sum(weights)
	}
	acc := 0.0
	for i := 0; i < count-1; i++ {
		if current > 0 {
			shares[i] = weights[i] * total / current
		} else {
			shares[i] = total / float64(count)
		}
		acc += shares[i]
	}
	shares[count-1] = total - acc
	return shares
}
