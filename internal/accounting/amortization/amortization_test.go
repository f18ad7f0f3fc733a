package amortization

import (
	"math"
	"testing"

	"github.com/lmnp-erp/lmnp-erp/internal/records"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

func furniture(purchased string) records.Amortization {
	return records.Amortization{
		ID:                 "a1",
		PurchaseDate:       records.MustDate(purchased),
		PurchaseAmount:     1200,
		UsefulLifeYears:    10,
		AnnualAmortization: 120,
		Status:             records.AmortizationActive,
	}
}

func TestForPeriod(t *testing.T) {
	cases := []struct {
		name  string
		asset records.Amortization
		start string
		end   string
		want  float64
	}{
		{"full year", furniture("2023-01-01"), "2023-01-01", "2023-12-31", 120},
		{"second half", furniture("2023-01-01"), "2023-07-01", "2023-12-31", 120 * 184.0 / 365.0},
		{"single day", furniture("2023-01-01"), "2023-01-01", "2023-01-01", 120.0 / 365.0},
		{"purchased mid period", furniture("2023-07-01"), "2023-01-01", "2023-12-31", 120 * 184.0 / 365.0},
		{"leap year", furniture("2024-01-01"), "2024-01-01", "2024-01-31", 120 * 31.0 / 366.0},
		{"purchased after period", furniture("2024-02-01"), "2023-01-01", "2023-12-31", 0},
		{"longer than a year", furniture("2020-01-01"), "2022-01-01", "2023-12-31", 120},
		{"missing purchase date", records.Amortization{ID: "a2", PurchaseAmount: 1200, AnnualAmortization: 120, Status: records.AmortizationActive}, "2023-01-01", "2023-12-31", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ForPeriod(tc.asset, records.MustDate(tc.start), records.MustDate(tc.end))
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestForPeriodSecondHalfRoundsTo6049(t *testing.T) {
	got := ForPeriod(furniture("2023-01-01"), records.MustDate("2023-07-01"), records.MustDate("2023-12-31"))
	if math.Round(got*100)/100 != 60.49 {
		t.Fatalf("expected 60.49 got %v", got)
	}
}

func TestForPeriodInactiveAsset(t *testing.T) {
	for _, status := range []records.AmortizationStatus{records.AmortizationCompleted, records.AmortizationDisposed} {
		asset := furniture("2023-01-01")
		asset.Status = status
		if got := ForPeriod(asset, records.MustDate("2023-01-01"), records.MustDate("2023-12-31")); got != 0 {
			t.Fatalf("status %s: expected 0 got %v", status, got)
		}
	}
}

func TestDaysInYear(t *testing.T) {
	for year, want := range map[int]int{2023: 365, 2024: 366, 1900: 365, 2000: 366} {
		if got := DaysInYear(year); got != want {
			t.Fatalf("%d: expected %d got %d", year, want, got)
		}
	}
}

func TestCap(t *testing.T) {
	cases := []struct {
		rev, exp, amort, want float64
	}{
		{1000, 200, 100, 100},
		{1000, 200, 1000, 800},
		{100, 200, 50, 0},
		{1000, 0, 0, 0},
	}
	for _, tc := range cases {
		if got := Cap(tc.rev, tc.exp, tc.amort); got != tc.want {
			t.Fatalf("cap(%v,%v,%v): expected %v got %v", tc.rev, tc.exp, tc.amort, tc.want, got)
		}
	}
}
