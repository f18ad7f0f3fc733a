package cli

import (
	"github.com/spf13/cobra"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
)

func newTotalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Compute the declaration totals of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(cmd)
			if err != nil {
				return err
			}
			year := yearFlag(cmd)
			raw, _ := cmd.Flags().GetString("properties")
			propertyIDs := splitList(raw)
			if len(propertyIDs) == 0 {
				propertyIDs = ds.Declaration(year).Properties
			}
			totals := declarations.CalculateTotals(year, ds.Revenues, ds.Expenses, ds.Amortizations, propertyIDs)
			return writeJSON(cmd.OutOrStdout(), totals)
		},
	}
	cmd.Flags().Int("year", 0, "Fiscal year (defaults to the current year)")
	cmd.Flags().String("properties", "", "Comma separated property ids restricting amortizations")
	return cmd
}
