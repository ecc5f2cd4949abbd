package commands

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/storage"
)

// WatchCmd follows changes other processes make to the store
var WatchCmd = &cobra.Command{
	Use:   "watch [collection...]",
	Short: "Follow store changes made by other processes",
	Long: `Print every collection as it changes, whichever process wrote it.
Without arguments all collections are watched.

Collections: postedGigs, applications, currentCourseId, guideShown

Examples:
  cashngo watch
  cashngo watch applications -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = storage.CollectionNames()
		}
		for _, name := range names {
			if !isCollection(name) {
				return errors.WithHint(
					errors.NewInvalidRequestError("unknown collection %q", name),
					"one of: postedGigs, applications, currentCourseId, guideShown",
				)
			}
		}

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var releases []func()
			for _, name := range names {
				releases = append(releases, watchCollection(e.cols, name))
			}
			defer func() {
				for _, release := range releases {
					release()
				}
			}()

			w := storage.NewWatcher(e.opened.Store, e.opened.Source)
			w.OnChange(func(c storage.Change) {
				if logger.ShouldOutput(e.verbosity, logger.OutputSyncEvents) {
					pterm.Info.Printf("%s changed in another process (revision %d)\n", c.Key, c.Revision)
				}
			})
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			pterm.Info.Printf("Watching %v on %s, press Ctrl+C to stop\n", names, e.opened.Backend)
			<-ctx.Done()
			return nil
		})
	},
}

func isCollection(name string) bool {
	for _, known := range storage.CollectionNames() {
		if name == known {
			return true
		}
	}
	return false
}

func watchCollection(cols *storage.Collections, name string) func() {
	switch name {
	case storage.KeyPostedGigs:
		return printOnChange(cols.PostedGigs)
	case storage.KeyApplications:
		return printOnChange(cols.Applications)
	case storage.KeyCurrentCourseID:
		return printOnChange(cols.CurrentCourseID)
	default:
		return printOnChange(cols.GuideShown)
	}
}

func printOnChange[T any](k *storage.Key[T]) func() {
	return k.Subscribe(func(v T) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			pterm.Error.Printf("%s: %v\n", k.Name(), err)
			return
		}
		pterm.Info.Printf("%s\n%s\n", pterm.LightMagenta(k.Name()), data)
	})
}
