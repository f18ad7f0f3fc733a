package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmnp-erp/lmnp-erp/internal/accounting/reports"
	"github.com/lmnp-erp/lmnp-erp/internal/export"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the income statement, balance sheet and ledger of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd)
			if err != nil {
				return err
			}
			period, err := periodFlags(cmd)
			if err != nil {
				return err
			}
			if !period.Valid() {
				return reports.ErrInvalidPeriod
			}
			result := reports.Build(ds.Collections, period, time.Now().UTC())
			out := cmd.OutOrStdout()
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "json":
				return writeJSON(out, result)
			case "csv":
				return export.WriteReportCSV(out, result)
			case "txt":
				return export.WriteReportText(out, result)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().Int("year", 0, "Calendar year used when --start/--end are omitted")
	cmd.Flags().String("start", "", "Period start (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Period end (YYYY-MM-DD)")
	cmd.Flags().String("format", "txt", "Output format: json, csv or txt")
	return cmd
}
