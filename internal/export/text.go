package export

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lmnp-erp/lmnp-erp/internal/accounting/reports"
)

// TextFormatter renders amounts and headings in French.
type TextFormatter struct {
	printer *message.Printer
	upper   cases.Caser
}

// NewTextFormatter builds a formatter for the French locale.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		printer: message.NewPrinter(language.French),
		upper:   cases.Upper(language.French),
	}
}

// Amount formats v with two decimals, French separators and the euro sign.
func (f *TextFormatter) Amount(v float64) string {
	return f.printer.Sprintf("%.2f €", v)
}

// Heading upper-cases a section title.
func (f *TextFormatter) Heading(s string) string {
	return f.upper.String(s)
}

// WriteReportText writes the tab separated plaintext rendition of the report.
func WriteReportText(w io.Writer, r reports.AccountingReportResult) error {
	f := NewTextFormatter()
	buf := bufio.NewWriter(w)
	line := func(cols ...string) {
		_, _ = buf.WriteString(strings.Join(cols, "\t"))
		_ = buf.WriteByte('\n')
	}

	line(f.Heading("Rapport comptable LMNP"))
	line("Période", r.Period.Start.String(), r.Period.End.String())
	line()

	line(f.Heading("Compte de résultat"))
	for _, l := range r.IncomeStatement.Revenues {
		line("Produits", l.Label, f.Amount(l.Amount))
	}
	for _, l := range r.IncomeStatement.Expenses {
		line("Charges", l.Label, f.Amount(l.Amount))
	}
	line("Total produits", "", f.Amount(r.IncomeStatement.TotalRevenues))
	line("Total charges", "", f.Amount(r.IncomeStatement.TotalExpenses))
	line("Résultat net", "", f.Amount(r.IncomeStatement.NetResult))
	line()

	line(f.Heading("Bilan"))
	for _, l := range r.BalanceSheet.Assets {
		line("Actif", l.Label, f.Amount(l.Amount))
	}
	for _, l := range r.BalanceSheet.Liabilities {
		line("Passif", l.Label, f.Amount(l.Amount))
	}
	line("Total actif", "", f.Amount(r.BalanceSheet.TotalAssets))
	line("Total passif", "", f.Amount(r.BalanceSheet.TotalLiabilities))
	line()

	line(f.Heading("Grand livre"))
	for _, acc := range r.Ledger {
		line(acc.Code, acc.Label, "Débit "+f.Amount(acc.TotalDebit), "Crédit "+f.Amount(acc.TotalCredit))
		for _, e := range acc.Entries {
			line("", e.Date.String(), e.Description, f.Amount(e.Debit), f.Amount(e.Credit), e.Reference)
		}
	}
	line()

	line(f.Heading("Contrôles"))
	for _, c := range r.Checks {
		line(c.Label, string(c.Status), c.Message)
	}
	return buf.Flush()
}
