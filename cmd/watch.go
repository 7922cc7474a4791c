package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/schemalens/schemalens/internal/config"
	"github.com/schemalens/schemalens/internal/engine"
	"github.com/schemalens/schemalens/internal/render"
	"github.com/schemalens/schemalens/internal/schema"
	"github.com/schemalens/schemalens/internal/ui"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var (
		output string
		fps    int
	)

	cmd := &cobra.Command{
		Use:   "watch <schema.json>",
		Short: "Keep a live layout and re-render whenever it settles",
		Long: "Keep a live layout and re-render whenever it settles.\n\n" +
			"The schema and settings files are reloaded when they change. A schema\n" +
			"that fails to load keeps the previous layout on screen.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if fps < 1 {
				return fmt.Errorf("--fps must be >= 1, got %d", fps)
			}
			schemaFile, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if settingsPath == "" && config.Locate() == config.Path() {
				if err := config.EnsureExists(); err != nil {
					logger.Warn("cannot create settings file", "path", config.Path(), "err", err)
				}
			}
			settingsFile, err := filepath.Abs(settingsSource())
			if err != nil {
				return err
			}

			s, err := openSession(schemaFile)
			if err != nil {
				return err
			}
			s.OnFrame(renderOnSettle(output, s, logger))

			ui.Banner("watching " + filepath.Base(schemaFile))
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.Subtle.Sprint("settings"), settingsFile)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n\n", ui.Subtle.Sprint("output  "), output)

			loop := engine.NewLoop(s, time.Second/time.Duration(fps))
			return loop.Run(cmd.Context(), watchFiles(schemaFile, settingsFile, logger))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG file to keep up to date")
	cmd.Flags().IntVar(&fps, "fps", 60, "Frames per second")
	return cmd
}

// renderOnSettle writes the frame each time the session comes to rest.
func renderOnSettle(path string, s *engine.Session, log *slog.Logger) func(engine.Frame) {
	wasIdle := false
	return func(f engine.Frame) {
		if f.Settled && !wasIdle {
			width, height := s.Size()
			data := render.SVG(f, s.Settings().Colors, width, height)
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				log.Error("render failed", "path", path, "err", err)
			} else {
				log.Info("rendered", "path", path, "nodes", len(f.Nodes), "status", s.Status())
			}
		}
		wasIdle = f.Settled
	}
}

// watchFiles reloads the schema and settings files on change. Directories
// are watched rather than files so editors that replace files on save are
// still seen.
func watchFiles(schemaFile, settingsFile string, log *slog.Logger) engine.Source {
	return func(ctx context.Context, l *engine.Loop) error {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer w.Close()

		dirs := make(map[string]bool)
		for _, p := range []string{schemaFile, settingsFile} {
			dir := filepath.Dir(p)
			if dirs[dir] {
				continue
			}
			if _, err := os.Stat(dir); err != nil {
				log.Debug("not watching missing directory", "dir", dir)
				continue
			}
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				switch filepath.Clean(ev.Name) {
				case schemaFile:
					sc, loadErr := schema.Load(schemaFile)
					if err := l.Do(ctx, func(s *engine.Session) { _ = s.ReplaceSchema(sc, loadErr) }); err != nil {
						return ignoreCanceled(err)
					}
				case settingsFile:
					st, err := config.LoadFile(settingsFile)
					if err != nil {
						log.Warn("settings not applied", "err", err)
						continue
					}
					if err := l.Do(ctx, func(s *engine.Session) { _ = s.Reconfigure(st) }); err != nil {
						return ignoreCanceled(err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Warn("watch error", "err", err)
			}
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, engine.ErrLoopClosed) {
		return nil
	}
	return err
}
