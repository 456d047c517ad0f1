package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/panetree/internal/cli"
	"github.com/bnema/panetree/internal/config"
	"github.com/bnema/panetree/internal/infrastructure/mainloop"
	"github.com/bnema/panetree/internal/logging"
)

var watchSaveAs string

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Follow a snapshot file and print the pruned tree on every change",
	Long: `Load a layout (or bare pane snapshot) JSON file into a live tree and reload
it whenever the file changes. Bursts of changes are coalesced into a single
reload. Each reload replaces the tree, prunes empty panes, lays the tree out
with the configured extent and prints it.

With --save, the live tree is autosaved under that name after the
configured debounce.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchSaveAs, "save", "", "autosave the live tree under this layout name")
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(app.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithComponent(ctx, "watch")
	log := logging.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	loop := mainloop.New(0)
	defer loop.Destroy()

	live := app.NewLiveLayout(loop, path, watchSaveAs, cmd.OutOrStdout())
	live.Start(ctx)

	if err := app.ConfigManager.Watch(); err != nil {
		log.Warn().Err(err).Msg("config hot reload unavailable")
	} else {
		app.ConfigManager.OnConfigChange(func(cfg *config.Config) {
			live.ApplyConfig(ctx, cfg)
		})
	}

	live.ScheduleReload(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		return forwardEvents(gctx, watcher, path, live)
	})

	err = g.Wait()
	if stopErr := live.Stop(app.Ctx()); stopErr != nil {
		log.Error().Err(stopErr).Msg("final autosave failed")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func forwardEvents(ctx context.Context, watcher *fsnotify.Watcher, path string, live *cli.LiveLayout) error {
	log := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debug().Str("op", event.Op.String()).Msg("layout file changed")
				live.ScheduleReload(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}
