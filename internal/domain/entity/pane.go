// Package entity contains the pane tree domain: panes, windows, and their
// serializable snapshots. These are pure Go types with no infrastructure
// dependencies.
package entity

import "errors"

// DefaultSplitWeight is the proportional weight given to each side of a fresh split.
const DefaultSplitWeight = 100

var (
	ErrNilPane      = errors.New("pane: pane is nil")
	ErrCyclicInsert = errors.New("pane: cannot insert a pane into its own subtree")
)

// Pane is a node of the layout tree. It is either:
//   - Leaf: holds an ordered list of windows (tabs)
//   - Container: holds ordered child panes laid out along Direction
//
// Between a mutation and the next prune a pane may transiently hold both.
type Pane struct {
	ID             PaneID
	ActiveWindowID WindowID // Alive window shown in this pane, empty if none
	Direction      Direction
	Parent         *Pane // nil for root
	Children       []*Pane

	// Size holds one proportional extent per child. After DoLayoutPane the
	// entries are concrete extents along Direction.
	Size []float64

	windows []*Window
}

// NewPane creates an empty leaf pane. An empty id gets a generated one.
func NewPane(id PaneID) *Pane {
	if id == "" {
		id = PaneID(NewID())
	}
	return &Pane{
		ID:        id,
		Direction: Horizontal,
	}
}

// IsLeaf returns true if the pane has no children.
func (p *Pane) IsLeaf() bool {
	return len(p.Children) == 0
}

// IsContainer returns true if the pane has children.
func (p *Pane) IsContainer() bool {
	return len(p.Children) > 0
}

// IsEmpty reports whether the pane has neither alive windows nor children.
func (p *Pane) IsEmpty() bool {
	return len(p.Children) == 0 && !p.hasAliveWindows()
}

// Windows returns the pane's windows in order, including closing ones.
// The returned slice must not be modified.
func (p *Pane) Windows() []*Window {
	return p.windows
}

// AliveWindows returns the windows that are not closing, in order.
func (p *Pane) AliveWindows() []*Window {
	alive := make([]*Window, 0, len(p.windows))
	for _, w := range p.windows {
		if w.IsAlive() {
			alive = append(alive, w)
		}
	}
	return alive
}

// SetWindows replaces the pane's windows and reparents each of them.
func (p *Pane) SetWindows(windows []*Window) {
	ws := append([]*Window(nil), windows...)
	for _, w := range p.windows {
		if w.parent == p {
			w.parent = nil
		}
	}
	for _, w := range ws {
		if w.parent != nil && w.parent != p {
			w.parent.releaseWindow(w)
		}
		w.parent = p
	}
	p.windows = ws
}

// Window returns the window with the given id held by this pane, or nil.
func (p *Pane) Window(id WindowID) *Window {
	if i := p.windowIndex(id); i >= 0 {
		return p.windows[i]
	}
	return nil
}

// ActiveWindow returns the active window, or nil.
func (p *Pane) ActiveWindow() *Window {
	if p.ActiveWindowID == "" {
		return nil
	}
	return p.aliveWindow(p.ActiveWindowID)
}

// SetActiveWindow activates an alive window of this pane.
func (p *Pane) SetActiveWindow(id WindowID) bool {
	if p.aliveWindow(id) == nil {
		return false
	}
	p.ActiveWindowID = id
	return true
}

// ActivateNextWindow activates the alive window after id, wrapping to the first.
func (p *Pane) ActivateNextWindow(id WindowID) {
	alive := p.AliveWindows()
	i := indexOf(alive, id)
	if i < 0 {
		return
	}
	p.ActiveWindowID = alive[(i+1)%len(alive)].ID
}

// ActivatePreviousWindow activates the alive window before id, wrapping to the last.
func (p *Pane) ActivatePreviousWindow(id WindowID) {
	alive := p.AliveWindows()
	i := indexOf(alive, id)
	if i < 0 {
		return
	}
	prev := len(alive) - 1
	if i > 0 {
		prev = i - 1
	}
	p.ActiveWindowID = alive[prev].ID
}

// activateAfter moves the active selection away from id, which is about to
// stop being alive in this pane. With no other alive window the selection clears.
func (p *Pane) activateAfter(id WindowID) {
	alive := p.AliveWindows()
	i := indexOf(alive, id)
	switch {
	case i < 0:
		return
	case len(alive) == 1:
		p.ActiveWindowID = ""
	default:
		p.ActiveWindowID = alive[(i+1)%len(alive)].ID
	}
}

// InsertWindow adds w to the pane and makes it active. With an empty
// neighborID the window is appended; otherwise it goes left or right of the
// neighbor. An unknown neighbor leaves everything untouched and returns false.
func (p *Pane) InsertWindow(w *Window, position WindowInsertPosition, neighborID WindowID) bool {
	if w == nil {
		return false
	}
	idx := len(p.windows)
	if neighborID != "" {
		n := p.windowIndex(neighborID)
		if n < 0 || neighborID == w.ID {
			return false
		}
		idx = n
		if position != InsertLeft {
			idx++
		}
	}
	if src := w.parent; src != nil {
		if src == p {
			if p.windowIndex(w.ID) < idx {
				idx--
			}
			src.detachWindow(w)
		} else {
			src.releaseWindow(w)
		}
	}
	p.insertWindowAt(idx, w)
	p.ActiveWindowID = w.ID
	return true
}

// CloseWindow closes the window with the given id. See Window.Close.
func (p *Pane) CloseWindow(id WindowID) bool {
	w := p.Window(id)
	if w == nil {
		return false
	}
	w.Close()
	return true
}

// RemoveWindow hard-removes the window with the given id and returns it, or
// nil if the pane does not hold it.
func (p *Pane) RemoveWindow(id WindowID) *Window {
	w := p.Window(id)
	if w == nil {
		return nil
	}
	if p.ActiveWindowID == id {
		p.activateAfter(id)
	}
	p.detachWindow(w)
	return w
}

// SplitResult holds the two children produced by a split.
type SplitResult struct {
	NewPane      *Pane // Empty pane on the requested side
	OriginalPane *Pane // Carries the content the pane held before the split
}

// SplitPane turns the pane into a two-child container. The existing content
// moves to OriginalPane; NewPane is empty and sits on the requested side.
func (p *Pane) SplitPane(position InsertPanePosition, ids IDGenerator) (*SplitResult, error) {
	if err := position.validForSplit(); err != nil {
		return nil, err
	}
	gen := orDefault(ids)
	original := p.cloneInto(PaneID(gen()))
	newPane := NewPane(PaneID(gen()))
	p.setSplitChildren(position, original, newPane)
	return &SplitResult{NewPane: newPane, OriginalPane: original}, nil
}

// InsertPane wraps the pane's current state into a sibling and places pane on
// the requested side of it. It returns the sibling holding the former content.
func (p *Pane) InsertPane(pane *Pane, position InsertPanePosition, ids IDGenerator) (*Pane, error) {
	if pane == nil {
		return nil, ErrNilPane
	}
	if err := position.validForSplit(); err != nil {
		return nil, err
	}
	for anc := p; anc != nil; anc = anc.Parent {
		if anc == pane {
			return nil, ErrCyclicInsert
		}
	}
	if pane.Parent != nil {
		pane.Parent.detachChild(pane)
	}
	original := p.cloneInto(PaneID(orDefault(ids)()))
	p.setSplitChildren(position, original, pane)
	return original, nil
}

// cloneInto moves the pane's windows, children, and layout into a new pane.
func (p *Pane) cloneInto(id PaneID) *Pane {
	clone := NewPane(id)
	clone.ActiveWindowID = p.ActiveWindowID
	clone.Direction = p.Direction
	clone.Size = p.Size
	clone.Children = p.Children
	for _, child := range clone.Children {
		child.Parent = clone
	}
	clone.windows = p.windows
	for _, w := range clone.windows {
		w.parent = clone
	}

	p.windows = nil
	p.ActiveWindowID = ""
	p.Children = nil
	p.Size = nil
	return clone
}

func (p *Pane) setSplitChildren(position InsertPanePosition, original, other *Pane) {
	if position.originalFirst() {
		p.Children = []*Pane{original, other}
	} else {
		p.Children = []*Pane{other, original}
	}
	original.Parent = p
	other.Parent = p
	p.Direction = position.direction()
	p.Size = []float64{DefaultSplitWeight, DefaultSplitWeight}
	p.windows = nil
	p.ActiveWindowID = ""
}

// detachChild removes child and its size slot without rebalancing.
func (p *Pane) detachChild(child *Pane) {
	for i, c := range p.Children {
		if c != child {
			continue
		}
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
		if i < len(p.Size) {
			p.Size = append(p.Size[:i], p.Size[i+1:]...)
		}
		child.Parent = nil
		return
	}
}

func (p *Pane) hasAliveWindows() bool {
	for _, w := range p.windows {
		if w.IsAlive() {
			return true
		}
	}
	return false
}

func (p *Pane) windowIndex(id WindowID) int {
	return indexOf(p.windows, id)
}

func (p *Pane) aliveWindow(id WindowID) *Window {
	for _, w := range p.windows {
		if w.ID == id && w.IsAlive() {
			return w
		}
	}
	return nil
}

func (p *Pane) insertWindowAt(idx int, w *Window) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(p.windows) {
		idx = len(p.windows)
	}
	p.windows = append(p.windows, nil)
	copy(p.windows[idx+1:], p.windows[idx:])
	p.windows[idx] = w
	w.parent = p
}

// releaseWindow detaches w for a move to another pane, handing the active
// selection to the cyclic-next alive window when w held it.
func (p *Pane) releaseWindow(w *Window) {
	if p.ActiveWindowID == w.ID {
		p.activateAfter(w.ID)
		if p.ActiveWindowID == w.ID {
			p.ActiveWindowID = ""
		}
	}
	p.detachWindow(w)
}

// detachWindow drops w from the list without touching the active selection.
func (p *Pane) detachWindow(w *Window) {
	for i, cur := range p.windows {
		if cur == w {
			p.windows = append(p.windows[:i], p.windows[i+1:]...)
			break
		}
	}
	if w.parent == p {
		w.parent = nil
	}
}

func indexOf(windows []*Window, id WindowID) int {
	for i, w := range windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}
