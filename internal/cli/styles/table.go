package styles

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bnema/panetree/internal/domain/entity"
)

// headerRow is the row index lipgloss/table passes for the header.
const headerRow = -1

// LayoutTable renders saved layout summaries as a bordered table.
func (t *Theme) LayoutTable(infos []entity.LayoutInfo) string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			strconv.Itoa(info.PaneCount),
			strconv.Itoa(info.WindowCount),
			strconv.Itoa(info.Version),
			RelativeTime(info.SavedAt),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.TableBorder).
		Headers("Name", "Panes", "Windows", "Version", "Saved").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return t.TableHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				return base.Foreground(t.Text).Bold(true)
			}
			return base.Foreground(t.Muted)
		}).
		String()
}
