package entity

// Walk visits the tree depth-first in pre-order, children left to right.
// Returning false from fn skips that pane's subtree.
func (p *Pane) Walk(fn func(*Pane) bool) {
	stack := []*Pane{p}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(node) {
			continue
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

// breadthFirst returns the first pane, in level order, matching fn.
func (p *Pane) breadthFirst(fn func(*Pane) bool) *Pane {
	queue := []*Pane{p}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if fn(node) {
			return node
		}
		queue = append(queue, node.Children...)
	}
	return nil
}

// FindPane searches breadth-first for the pane with the given id.
func (p *Pane) FindPane(id PaneID) *Pane {
	return p.breadthFirst(func(node *Pane) bool {
		return node.ID == id
	})
}

// FindPaneByWindowID searches breadth-first for the pane holding the window,
// closing windows included.
func (p *Pane) FindPaneByWindowID(id WindowID) *Pane {
	return p.breadthFirst(func(node *Pane) bool {
		return node.windowIndex(id) >= 0
	})
}

// FindWindow returns the window with the given id anywhere in the tree.
func (p *Pane) FindWindow(id WindowID) *Window {
	if pane := p.FindPaneByWindowID(id); pane != nil {
		return pane.Window(id)
	}
	return nil
}

// AllWindows collects every window depth-first: a pane's own windows come
// before those of its children.
func (p *Pane) AllWindows() []*Window {
	var windows []*Window
	p.Walk(func(node *Pane) bool {
		windows = append(windows, node.windows...)
		return true
	})
	return windows
}

// Leaves returns the leaf panes in left-to-right order.
func (p *Pane) Leaves() []*Pane {
	var leaves []*Pane
	p.Walk(func(node *Pane) bool {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
		return true
	})
	return leaves
}

// PaneCount returns the number of panes in the subtree, p included.
func (p *Pane) PaneCount() int {
	count := 0
	p.Walk(func(*Pane) bool {
		count++
		return true
	})
	return count
}

// postOrder lists the subtree with every child before its parent; p is last.
func (p *Pane) postOrder() []*Pane {
	var order []*Pane
	stack := []*Pane{p}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, node)
		stack = append(stack, node.Children...)
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
