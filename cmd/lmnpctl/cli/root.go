// Package cli implements the lmnpctl commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmnp-erp/lmnp-erp/internal/dataset"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// NewRootCommand builds the lmnpctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "lmnpctl",
		Short:         "Offline LMNP accounting and liasse tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().String("data", "dataset.toml", "Path to the TOML dataset")

	root.AddCommand(newTotalsCommand())
	root.AddCommand(newReportCommand())
	root.AddCommand(newLiasseCommand())
	root.AddCommand(newJobsCommand())
	return root
}

func loadDataset(cmd *cobra.Command) (*dataset.Dataset, error) {
	path, _ := cmd.Flags().GetString("data")
	return dataset.Load(path)
}

func yearFlag(cmd *cobra.Command) int {
	year, _ := cmd.Flags().GetInt("year")
	if year <= 0 {
		year = time.Now().Year()
	}
	return year
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func periodFlags(cmd *cobra.Command) (records.Period, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	if start == "" && end == "" {
		return records.YearPeriod(yearFlag(cmd)), nil
	}
	from, err := records.ParseDate(start)
	if err != nil {
		return records.Period{}, fmt.Errorf("invalid --start %s", strconv.Quote(start))
	}
	to, err := records.ParseDate(end)
	if err != nil {
		return records.Period{}, fmt.Errorf("invalid --end %s", strconv.Quote(end))
	}
	return records.Period{Start: from, End: to}, nil
}
