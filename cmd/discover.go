package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/schemalens/schemalens/internal/discover"
	"github.com/schemalens/schemalens/internal/schema"
	"github.com/schemalens/schemalens/internal/ui"
	"github.com/spf13/cobra"
)

func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Produce a schema snapshot from a live database",
	}
	cmd.AddCommand(discoverSQLiteCmd())
	return cmd
}

func discoverSQLiteCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sqlite <file.db>",
		Short: "Introspect a SQLite database (opened read-only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := discover.SQLite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := writeSchema(cmd.OutOrStdout(), sc, output); err != nil {
				return err
			}
			if output != "" {
				sum := sc.Summarize()
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s Wrote %s (%d tables, %d relationships)\n",
					ui.StatusIcon(true), output, sum.Tables, sum.Links)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func sampleCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in school management schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSchema(cmd.OutOrStdout(), discover.Sample(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func writeSchema(stdout io.Writer, sc *schema.Schema, output string) error {
	data, err := sc.Marshal()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if output == "" || output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}
