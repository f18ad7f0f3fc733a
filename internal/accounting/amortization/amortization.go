package amortization

import (
	"math"

	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// ForPeriod prorates the annual depreciation of an asset over [start, end] by day count.
// The result is not rounded; callers round when accumulating. Assets without a
// purchase date never depreciate.
func ForPeriod(asset records.Amortization, start, end records.Date) float64 {
	if !asset.IsActive() || asset.PurchaseDate.IsZero() || asset.PurchaseDate.After(end.Time) {
		return 0
	}
	effectiveStart := start
	if asset.PurchaseDate.After(start.Time) {
		effectiveStart = asset.PurchaseDate
	}
	covered := effectiveStart.DaysUntil(end) + 1
	if covered < 1 {
		covered = 1
	}
	prorata := math.Min(1, float64(covered)/float64(DaysInYear(end.Year())))
	return prorata * asset.AnnualAmortization.Float64()
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}

// Cap bounds deductible depreciation so that it never creates or enlarges a deficit:
// clamp(revenue - expenses, 0, amortizations).
func Cap(totalRevenue, totalExpenses, totalAmortizations float64) float64 {
	available := math.Max(0, totalRevenue-totalExpenses)
	return math.Max(0, math.Min(available, totalAmortizations))
}
