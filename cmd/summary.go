package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/schemalens/schemalens/internal/schema"
	"github.com/schemalens/schemalens/internal/ui"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary <schema.json>",
		Short: "Show database type, table and relationship counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), sc.Summarize(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func writeSummary(w io.Writer, sum schema.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	dbType := sum.DBType
	if dbType == "" {
		dbType = "unknown"
	}
	if sum.Database != "" {
		ui.Field(w, "Database", sum.Database)
	}
	ui.Field(w, "Type", dbType)
	ui.Field(w, "Tables", sum.Tables)
	ui.Field(w, "Relationships", sum.Links)
	if sum.Tables == 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", ui.Subtle.Sprint("No tables found"))
	}
	return nil
}
