package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schemalens/schemalens/internal/config"
	"github.com/schemalens/schemalens/internal/engine"
	"github.com/schemalens/schemalens/internal/schema"
	"github.com/schemalens/schemalens/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	settingsPath string
	verbose      bool
	logger       = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "schemalens",
	Short: "schemalens · interactive schema graph layout",
	Long: ui.Brand.Sprint(ui.Mark+" schemalens") + " · lay out database schemas as force-directed graphs\n" +
		ui.Subtle.Sprint("Expand tables into columns, search, fit and render to SVG"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(os.Stderr, verbose)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.SetVersionTemplate("schemalens {{ .Version }}\n")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default: project .schemalens.toml or user settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")

	rootCmd.AddCommand(
		summaryCmd(),
		layoutCmd(),
		renderCmd(),
		discoverCmd(),
		sampleCmd(),
		watchCmd(),
		configCmd(),
		completionCmd(),
	)
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Bad.Fprintf(os.Stderr, "  %v\n", err)
	}
	return err
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadSettings reads --settings when given, otherwise the located file.
func loadSettings() (config.Settings, error) {
	if settingsPath != "" {
		return config.LoadFile(settingsPath)
	}
	return config.Load()
}

// settingsSource is the file loadSettings reads.
func settingsSource() string {
	if settingsPath != "" {
		return settingsPath
	}
	return config.Locate()
}

// loadSchema reads a schema file, or stdin for "-".
func loadSchema(path string) (*schema.Schema, error) {
	if path != "-" {
		return schema.Load(path)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return schema.Parse(data)
}

func openSession(path string, opts ...engine.Option) (*engine.Session, error) {
	st, err := loadSettings()
	if err != nil {
		return nil, err
	}
	sc, err := loadSchema(path)
	if err != nil {
		return nil, err
	}
	return engine.New(sc, st, append([]engine.Option{engine.WithLogger(logger)}, opts...)...)
}
