package styles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/bnema/panetree/internal/domain/entity"
)

const maxDataWidth = 40

// PaneTree renders the subtree rooted at root. Leaf panes with an entry in
// rects get their rectangle appended. Closing windows are shown struck through.
func (t *Theme) PaneTree(root *entity.Pane, rects map[entity.PaneID]entity.Rect) string {
	if root == nil {
		return t.Subtle.Render("(no panes)")
	}
	return t.paneNode(root, rects).String()
}

func (t *Theme) paneNode(p *entity.Pane, rects map[entity.PaneID]entity.Rect) *tree.Tree {
	node := tree.Root(t.paneLabel(p, rects)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(t.Enumerator)

	for _, child := range p.Children {
		node.Child(t.paneNode(child, rects))
	}
	for _, w := range p.Windows() {
		node.Child(t.windowLabel(p, w))
	}
	return node
}

func (t *Theme) paneLabel(p *entity.Pane, rects map[entity.PaneID]entity.Rect) string {
	if p.IsContainer() {
		icon := IconHorizontal
		if p.Direction == entity.Vertical {
			icon = IconVertical
		}
		return fmt.Sprintf("%s %s %s %s",
			t.Container.Render(icon),
			t.Container.Render(string(p.ID)),
			t.Subtle.Render(string(p.Direction)),
			t.Subtle.Render(formatSizes(p.Size)),
		)
	}

	label := fmt.Sprintf("%s %s", t.Leaf.Render(IconLeaf), t.Leaf.Render(string(p.ID)))
	if r, ok := rects[p.ID]; ok {
		label += " " + t.Subtle.Render(formatRect(r))
	}
	if len(p.Windows()) == 0 {
		label += " " + t.WarningStyle.Render("(empty)")
	}
	return label
}

func (t *Theme) windowLabel(p *entity.Pane, w *entity.Window) string {
	id := string(w.ID)
	data := formatData(w.Data)

	switch {
	case !w.IsAlive():
		return fmt.Sprintf("%s %s", t.ClosingWin.Render(IconClosing+" "+id), t.Subtle.Render(w.State().String()))
	case w.ID == p.ActiveWindowID:
		return strings.TrimSpace(fmt.Sprintf("%s %s", t.ActiveWin.Render(IconActive+" "+id), t.Normal.Render(data)))
	default:
		return strings.TrimSpace(fmt.Sprintf("%s %s", t.Normal.Render(IconWindow+" "+id), t.Subtle.Render(data)))
	}
}

func formatSizes(sizes []float64) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.FormatFloat(s, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatRect(r entity.Rect) string {
	return fmt.Sprintf("%gx%g+%g+%g", r.W, r.H, r.X, r.Y)
}

func formatData(data any) string {
	if data == nil {
		return ""
	}
	s := fmt.Sprint(data)
	if len(s) > maxDataWidth {
		s = s[:maxDataWidth-3] + "..."
	}
	return s
}
