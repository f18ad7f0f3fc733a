package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmnp-erp/lmnp-erp/internal/export"
	"github.com/lmnp-erp/lmnp-erp/internal/liasse"
)

// ErrBlockingIssues is returned by --strict when validation raised errors.
var ErrBlockingIssues = errors.New("liasse has blocking validation errors")

func newLiasseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liasse",
		Short: "Map a declaration onto forms 2031, 2031 bis and 2033",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd)
			if err != nil {
				return err
			}
			overrides, err := ds.LiasseOverrides()
			if err != nil {
				return err
			}
			snap := liasse.BuildGenerationSnapshot(ds.Context(yearFlag(cmd)), overrides, time.Now())
			out := cmd.OutOrStdout()
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "json":
				err = writeJSON(out, snap)
			case "csv":
				err = export.WriteLiasseCSV(out, snap)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}
			if strict, _ := cmd.Flags().GetBool("strict"); strict && liasse.HasErrors(snap.Issues) {
				return ErrBlockingIssues
			}
			return nil
		},
	}
	cmd.Flags().Int("year", 0, "Fiscal year (defaults to the current year)")
	cmd.Flags().String("format", "json", "Output format: json or csv")
	cmd.Flags().Bool("strict", false, "Fail when validation raises errors")
	return cmd
}
