package entity

// ClearEmptyPanes removes empty panes bottom-up and collapses single-child
// chains. An empty child (no alive windows, no children) is dropped and its
// share of the size is spread equally over the remaining siblings. A pane
// left with one child and no alive windows absorbs that child, taking over its
// id. It reports whether p itself ended up empty.
func (p *Pane) ClearEmptyPanes() bool {
	for _, node := range p.postOrder() {
		node.collapse()
	}
	return p.IsEmpty()
}

// collapse prunes one pane whose children are already pruned.
func (p *Pane) collapse() {
	for {
		p.removeEmptyChildren()
		if len(p.Children) != 1 || p.hasAliveWindows() {
			return
		}
		p.absorb(p.Children[0])
	}
}

func (p *Pane) removeEmptyChildren() {
	p.normalizeSize()
	for i := len(p.Children) - 1; i >= 0; i-- {
		child := p.Children[i]
		if !child.IsEmpty() {
			continue
		}
		removed := p.Size[i]
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
		p.Size = append(p.Size[:i], p.Size[i+1:]...)
		child.discard()

		if n := len(p.Children); n > 0 {
			share := (sum(p.Size) + removed) / float64(n)
			for j := range p.Size {
				p.Size[j] = share
			}
		}
	}
}

// absorb lifts the only child's content into p. p adopts the child's id so
// references taken on the child keep resolving.
func (p *Pane) absorb(child *Pane) {
	total := sum(p.Size)

	for _, w := range child.windows {
		w.parent = p
	}
	p.windows = append(p.windows, child.windows...)
	p.ID = child.ID
	p.Direction = child.Direction
	p.ActiveWindowID = child.ActiveWindowID
	p.Children = child.Children
	for _, grandchild := range p.Children {
		grandchild.Parent = p
	}
	if len(child.Children) > 0 {
		p.Size = append([]float64(nil), child.Size...)
	} else {
		p.Size = []float64{total}
	}

	child.windows = nil
	child.Children = nil
	child.Size = nil
	child.Parent = nil
}

// discard detaches a pruned pane and finalizes its remaining closing windows,
// so no pending destroy timer fires against a pane outside the tree.
func (p *Pane) discard() {
	for _, w := range p.windows {
		w.Dispose()
	}
	p.windows = nil
	p.Parent = nil
}

// normalizeSize restores one size entry per child, using equal weights when
// the vector is out of shape.
func (p *Pane) normalizeSize() {
	if len(p.Size) == len(p.Children) {
		return
	}
	p.Size = make([]float64, len(p.Children))
	for i := range p.Size {
		p.Size[i] = DefaultSplitWeight
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
