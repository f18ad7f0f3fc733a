// Package export serialises accounting reports and liasse snapshots for download.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lmnp-erp/lmnp-erp/internal/accounting/reports"
	"github.com/lmnp-erp/lmnp-erp/internal/liasse"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
	csvDelimiter  = ';'
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.Comma = csvDelimiter
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row ...string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("export: csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) writeRows(rows [][]string) error {
	for _, row := range rows {
		if err := s.writeRow(row...); err != nil {
			return err
		}
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("export: csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteReportCSV writes the accounting report as semicolon separated sections.
func WriteReportCSV(w io.Writer, r reports.AccountingReportResult) error {
	s := newCSVStreamer(w)
	if err := s.writeRow("Période", r.Period.Start.String(), r.Period.End.String()); err != nil {
		return err
	}

	rows := [][]string{{}, {"Compte de résultat", "Libellé", "Montant"}}
	for _, l := range r.IncomeStatement.Revenues {
		rows = append(rows, []string{"Produits", l.Label, formatAmount(l.Amount)})
	}
	for _, l := range r.IncomeStatement.Expenses {
		rows = append(rows, []string{"Charges", l.Label, formatAmount(l.Amount)})
	}
	rows = append(rows,
		[]string{"Total", "Total produits", formatAmount(r.IncomeStatement.TotalRevenues)},
		[]string{"Total", "Total charges", formatAmount(r.IncomeStatement.TotalExpenses)},
		[]string{"Total", "Résultat net", formatAmount(r.IncomeStatement.NetResult)},
	)

	rows = append(rows, []string{}, []string{"Bilan", "Libellé", "Montant"})
	for _, l := range r.BalanceSheet.Assets {
		rows = append(rows, []string{"Actif", l.Label, formatAmount(l.Amount)})
	}
	for _, l := range r.BalanceSheet.Liabilities {
		rows = append(rows, []string{"Passif", l.Label, formatAmount(l.Amount)})
	}
	rows = append(rows,
		[]string{"Total", "Total actif", formatAmount(r.BalanceSheet.TotalAssets)},
		[]string{"Total", "Total passif", formatAmount(r.BalanceSheet.TotalLiabilities)},
	)

	rows = append(rows, []string{}, []string{"Compte", "Libellé", "Date", "Description", "Débit", "Crédit", "Référence"})
	for _, acc := range r.Ledger {
		for _, e := range acc.Entries {
			rows = append(rows, []string{acc.Code, acc.Label, e.Date.String(), e.Description, formatAmount(e.Debit), formatAmount(e.Credit), e.Reference})
		}
		rows = append(rows, []string{acc.Code, "Total " + acc.Label, "", "", formatAmount(acc.TotalDebit), formatAmount(acc.TotalCredit), ""})
	}

	rows = append(rows, []string{}, []string{"Contrôle", "Statut", "Écart", "Message"})
	for _, c := range r.Checks {
		rows = append(rows, []string{c.Label, string(c.Status), formatAmount(c.Gap), c.Message})
	}
	if err := s.writeRows(rows); err != nil {
		return err
	}
	return s.Flush()
}

// WriteLiasseCSV writes every mapped case of a snapshot followed by its issues.
func WriteLiasseCSV(w io.Writer, snap liasse.GenerationSnapshot) error {
	s := newCSVStreamer(w)
	rows := [][]string{
		{"Déclaration", snap.DeclarationID, strconv.Itoa(snap.Year), snap.GeneratedAt},
		{},
		{"Formulaire", "Case", "Libellé", "Catégorie", "Valeur calculée", "Valeur", "Modifiée"},
	}
	for _, m := range snap.Mappings {
		for _, c := range m.Cases {
			rows = append(rows, []string{
				string(m.Form),
				c.Code,
				c.Label,
				string(c.Category),
				formatAmount(c.AutoValue),
				formatAmount(c.Value),
				yesNo(c.Overridden),
			})
		}
	}
	if len(snap.Issues) > 0 {
		rows = append(rows, []string{}, []string{"Formulaire", "Case", "Gravité", "Message"})
		for _, is := range snap.Issues {
			rows = append(rows, []string{is.Form, is.Code, string(is.Severity), is.Message})
		}
	}
	if err := s.writeRows(rows); err != nil {
		return err
	}
	return s.Flush()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}
