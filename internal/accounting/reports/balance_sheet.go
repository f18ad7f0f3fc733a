package reports

import (
	"math"

	"github.com/lmnp-erp/lmnp-erp/internal/accounting/amortization"
	"github.com/lmnp-erp/lmnp-erp/internal/amount"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// Balance sheet line labels.
const (
	LabelNetAssets  = "Immobilisations nettes"
	LabelTreasury   = "Trésorerie"
	LabelEquity     = "Capitaux propres"
	LabelResult     = "Résultat de l'exercice"
	LabelAdjustment = "Ajustement d'équilibre"
)

const (
	lineThreshold    = 0.005
	balanceTolerance = 0.01
)

// BalanceSheet is the simplified bilan of a period.
type BalanceSheet struct {
	Assets                  []StatementLine `json:"assets"`
	Liabilities             []StatementLine `json:"liabilities"`
	TotalAssets             float64         `json:"total_assets"`
	TotalLiabilities        float64         `json:"total_liabilities"`
	GrossAssets             float64         `json:"gross_assets"`
	AccumulatedAmortization float64         `json:"accumulated_amortization"`
	NetAssets               float64         `json:"net_assets"`
	Treasury                float64         `json:"treasury"`
	BalanceGap              float64         `json:"balance_gap"`
	IsBalanced              bool            `json:"is_balanced"`
}

// BuildBalanceSheet values assets bought by the end of the period, whatever their status,
// and takes treasury from the period's net result. Any residual of at least one cent is
// absorbed by an adjustment line on the deficit side.
func BuildBalanceSheet(assets []records.Amortization, period records.Period, netResult float64) BalanceSheet {
	var gross, accumulated float64
	for _, a := range assets {
		if a.PurchaseDate.IsZero() || a.PurchaseDate.After(period.End.Time) {
			continue
		}
		gross = amount.Add(gross, a.PurchaseAmount.Float64())
	}
	for _, a := range assets {
		accumulated = amount.Add(accumulated, amortization.ForPeriod(a, period.Start, period.End))
	}
	net := amount.Round2(gross - accumulated)
	treasury := amount.Round2(netResult)

	bs := BalanceSheet{
		GrossAssets:             gross,
		AccumulatedAmortization: accumulated,
		NetAssets:               net,
		Treasury:                treasury,
	}
	bs.Assets = appendLine(bs.Assets, LabelNetAssets, net)
	bs.Assets = appendLine(bs.Assets, LabelTreasury, treasury)
	bs.Liabilities = appendLine(bs.Liabilities, LabelEquity, net)
	bs.Liabilities = appendLine(bs.Liabilities, LabelResult, treasury)

	bs.settle()
	return bs
}

// settle totals both sides and absorbs a residual of at least one cent with an
// adjustment line on the side in deficit.
func (bs *BalanceSheet) settle() {
	bs.TotalAssets = sumLines(bs.Assets)
	bs.TotalLiabilities = sumLines(bs.Liabilities)
	gap := amount.Round2(bs.TotalAssets - bs.TotalLiabilities)
	if math.Abs(gap) >= balanceTolerance {
		adjustment := StatementLine{Label: LabelAdjustment, Amount: math.Abs(gap)}
		if gap > 0 {
			bs.Liabilities = append(bs.Liabilities, adjustment)
			bs.TotalLiabilities = sumLines(bs.Liabilities)
		} else {
			bs.Assets = append(bs.Assets, adjustment)
			bs.TotalAssets = sumLines(bs.Assets)
		}
	}
	bs.BalanceGap = amount.Round2(bs.TotalAssets - bs.TotalLiabilities)
	bs.IsBalanced = math.Abs(bs.BalanceGap) < balanceTolerance
}

func appendLine(lines []StatementLine, label string, value float64) []StatementLine {
	if math.Abs(value) <= lineThreshold {
		return lines
	}
	return append(lines, StatementLine{Label: label, Amount: value})
}

func sumLines(lines []StatementLine) float64 {
	var total float64
	for _, l := range lines {
		total = amount.Add(total, l.Amount)
	}
	return total
}
