package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/schemalens/schemalens/internal/engine"
	"github.com/schemalens/schemalens/internal/render"
	"github.com/schemalens/schemalens/internal/ui"
	"github.com/spf13/cobra"
)

func renderCmd() *cobra.Command {
	var (
		opts   sceneOptions
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <schema.json>",
		Short: "Render the settled layout to SVG or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "svg" && format != "dot" {
				return fmt.Errorf("unknown format %q (want svg or dot)", format)
			}
			s, _, err := replay(args[0], opts)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return writeRender(cmd.OutOrStdout(), s, format)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := writeRender(f, s, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s Wrote %s\n", ui.StatusIcon(true), output)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "svg", "Output format: svg or dot")
	return cmd
}

func writeRender(w io.Writer, s *engine.Session, format string) error {
	if format == "dot" {
		_, err := io.WriteString(w, render.DOT(s.Frame()))
		return err
	}
	width, height := s.Size()
	return render.WriteSVG(w, s.Frame(), s.Settings().Colors, width, height)
}
