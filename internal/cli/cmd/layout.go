package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/application/usecase"
	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/domain/entity"
)

var (
	layoutJSON       bool
	layoutWindows    int
	layoutImportName string
	openData         string
	insertPosition   string
	insertNeighbor   string
)

var layoutCmd = &cobra.Command{
	Use:     "layout",
	Aliases: []string{"layouts", "l"},
	Short:   "Manage stored layouts",
	Long: `List, inspect and edit stored pane layouts.

Edit commands (split, open, close, move, drop, prune) restore the named
layout, apply the operation, prune empty panes, and save it back. The
resulting tree is printed after every edit.`,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.AddCommand(layoutListCmd)
	layoutListCmd.Flags().BoolVar(&layoutJSON, "json", false, "output as JSON")

	layoutCmd.AddCommand(layoutShowCmd)
	layoutShowCmd.Flags().BoolVar(&layoutJSON, "json", false, "output the layout as JSON")

	layoutCmd.AddCommand(layoutNewCmd)
	layoutNewCmd.Flags().IntVarP(&layoutWindows, "windows", "w", 1, "number of windows in the root pane")

	layoutCmd.AddCommand(layoutDeleteCmd)

	layoutCmd.AddCommand(layoutImportCmd)
	layoutImportCmd.Flags().StringVar(&layoutImportName, "name", "", "store under this name instead of the one in the file")

	layoutCmd.AddCommand(layoutExportCmd)
	layoutCmd.AddCommand(layoutSplitCmd)

	layoutCmd.AddCommand(layoutOpenCmd)
	layoutOpenCmd.Flags().StringVar(&openData, "data", "", "payload stored with the window")
	addInsertFlags(layoutOpenCmd)

	layoutCmd.AddCommand(layoutCloseCmd)

	layoutCmd.AddCommand(layoutMoveCmd)
	addInsertFlags(layoutMoveCmd)

	layoutCmd.AddCommand(layoutDropCmd)
	layoutCmd.AddCommand(layoutPruneCmd)
}

func addInsertFlags(c *cobra.Command) {
	c.Flags().StringVar(&insertPosition, "position", string(entity.InsertRight), "side of the neighbor window (left, right)")
	c.Flags().StringVar(&insertNeighbor, "neighbor", "", "neighbor window id (default: append)")
}

func requireApp() (*cli.App, error) {
	app := GetApp()
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

var layoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored layouts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		infos, err := app.ManageLayoutsUC.List(app.Ctx())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if layoutJSON {
			return writeJSON(out, infos)
		}
		if len(infos) == 0 {
			_, err = fmt.Fprintln(out, app.Theme.Subtle.Render("No layouts stored yet. Create one with 'panetree layout new <name>'."))
			return err
		}
		_, err = fmt.Fprintln(out, app.Theme.LayoutTable(infos))
		return err
	},
}

var layoutShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored layout as a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if layoutJSON {
			layout, getErr := app.ManageLayoutsUC.Get(app.Ctx(), args[0])
			if getErr != nil {
				return getErr
			}
			return writeJSON(cmd.OutOrStdout(), layout)
		}
		m, err := app.LoadLayout(args[0])
		if err != nil {
			return err
		}
		return printTree(cmd.OutOrStdout(), app, args[0], m)
	},
}

var layoutNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a layout with a single pane",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if layoutWindows < 0 {
			return fmt.Errorf("--windows must be non-negative")
		}
		m, err := app.CreateLayout(args[0], layoutWindows)
		if err != nil {
			return err
		}
		return printTree(cmd.OutOrStdout(), app, args[0], m)
	},
}

var layoutDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a stored layout",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if err := app.ManageLayoutsUC.Delete(app.Ctx(), args[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted layout %s\n", app.Theme.Highlight.Render(args[0]))
		return err
	},
}

var layoutImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Store a layout from a JSON file",
	Long: `Store a layout from a JSON file produced by 'layout export'.
A bare pane snapshot is accepted too when --name is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		raw, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		layout, err := cli.DecodeLayout(raw, layoutImportName)
		if err != nil {
			return err
		}
		if err := app.ManageLayoutsUC.Import(app.Ctx(), layout); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported layout %s (%d panes, %d windows)\n",
			app.Theme.Highlight.Render(layout.Name), layout.CountPanes(), layout.CountWindows())
		return err
	},
}

var layoutExportCmd = &cobra.Command{
	Use:   "export <name> [file]",
	Short: "Write a stored layout as JSON",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		layout, err := app.ManageLayoutsUC.Get(app.Ctx(), args[0])
		if err != nil {
			return err
		}
		if len(args) == 1 || args[1] == "-" {
			return writeJSON(cmd.OutOrStdout(), layout)
		}
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[1], err)
		}
		if err := writeJSON(f, layout); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	},
}

var layoutSplitCmd = &cobra.Command{
	Use:   "split <name> <pane-id> <top|right|bottom|left>",
	Short: "Split a pane, adding a new pane on one side",
	Long: `Split a pane in two. The pane becomes a container and its windows move to
one child. The child on the requested side gets a fresh window, since panes
left empty are pruned when the edit is saved.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := entity.ParseInsertPanePosition(args[2])
		if err != nil {
			return err
		}
		return runEdit(cmd, args[0], func(ctx context.Context, m *usecase.WindowManager) error {
			res, err := m.SplitPane(ctx, entity.PaneID(args[1]), position)
			if err != nil {
				return err
			}
			_, err = m.OpenWindow(ctx, res.NewPane.ID, nil, entity.InsertRight, "")
			return err
		})
	},
}

var layoutOpenCmd = &cobra.Command{
	Use:   "open <name> <pane-id>",
	Short: "Open a new window in a leaf pane",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := entity.ParseWindowInsertPosition(insertPosition)
		if err != nil {
			return err
		}
		var data any
		if openData != "" {
			data = openData
		}
		return runEdit(cmd, args[0], func(ctx context.Context, m *usecase.WindowManager) error {
			_, err := m.OpenWindow(ctx, entity.PaneID(args[1]), data, position, entity.WindowID(insertNeighbor))
			return err
		})
	},
}

var layoutCloseCmd = &cobra.Command{
	Use:   "close <name> <window-id>...",
	Short: "Close windows",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, args[0], func(ctx context.Context, m *usecase.WindowManager) error {
			for _, id := range args[1:] {
				if err := m.CloseWindow(ctx, entity.WindowID(id)); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var layoutMoveCmd = &cobra.Command{
	Use:   "move <name> <window-id> <pane-id>",
	Short: "Move a window into another leaf pane",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := entity.ParseWindowInsertPosition(insertPosition)
		if err != nil {
			return err
		}
		return runEdit(cmd, args[0], func(ctx context.Context, m *usecase.WindowManager) error {
			moved, err := m.MoveWindow(ctx, usecase.MoveWindowInput{
				WindowID:     entity.WindowID(args[1]),
				TargetPaneID: entity.PaneID(args[2]),
				Position:     position,
				NeighborID:   entity.WindowID(insertNeighbor),
			})
			if err != nil {
				return err
			}
			if !moved {
				return fmt.Errorf("window %s was not moved", args[1])
			}
			return nil
		})
	},
}

var layoutDropCmd = &cobra.Command{
	Use:   "drop <name> <window-id> <pane-id> <top|right|bottom|left|middle>",
	Short: "Drop a window onto a pane edge or its middle",
	Long: `Apply a drag and drop. Middle moves the window into the pane; an edge
splits the pane and moves the window into the new side.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := entity.ParseInsertPanePosition(args[3])
		if err != nil {
			return err
		}
		return runEdit(cmd, args[0], func(ctx context.Context, m *usecase.WindowManager) error {
			_, err := m.DropWindow(ctx, entity.WindowID(args[1]), entity.PaneID(args[2]), position)
			return err
		})
	},
}

var layoutPruneCmd = &cobra.Command{
	Use:   "prune <name>",
	Short: "Remove empty panes and collapse single-child containers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd, args[0], func(context.Context, *usecase.WindowManager) error {
			return nil
		})
	},
}

func runEdit(cmd *cobra.Command, name string, edit cli.EditFunc) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	m, err := app.EditLayout(name, edit)
	if err != nil {
		return err
	}
	return printTree(cmd.OutOrStdout(), app, name, m)
}

func printTree(w io.Writer, app *cli.App, name string, m *usecase.WindowManager) error {
	header := fmt.Sprintf("%s %s %s",
		app.Theme.Title.Render(name),
		app.Theme.CountBadge(m.Root().PaneCount(), "pane"),
		app.Theme.CountBadge(len(m.AllWindows()), "window"),
	)
	_, err := fmt.Fprintf(w, "%s\n%s\n", header, app.RenderTree(m))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
