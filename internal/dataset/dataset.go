// Package dataset reads offline LMNP datasets from TOML files.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	"github.com/lmnp-erp/lmnp-erp/internal/liasse"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
)

// ErrDeclarationNotFound is returned when a dataset has no declaration for a year.
var ErrDeclarationNotFound = errors.New("dataset: declaration not found")

// Declaration describes a declaration row inside a dataset file.
type Declaration struct {
	ID         string              `toml:"id"`
	Year       int                 `toml:"year"`
	Status     declarations.Status `toml:"status"`
	Properties []string            `toml:"properties"`
	Regime     string              `toml:"regime"`
}

// Dataset is the decoded content of a dataset file.
type Dataset struct {
	UserID       string                        `toml:"user_id"`
	Declarations []Declaration                 `toml:"declarations"`
	Overrides    map[string]map[string]float64 `toml:"overrides"`
	records.Collections
}

// Load decodes the dataset at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a dataset and rejects unknown keys.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	meta, err := toml.NewDecoder(r).Decode(&ds)
	if err != nil {
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("dataset: unknown keys %s", strings.Join(keys, ", "))
	}
	if ds.UserID == "" {
		ds.UserID = "local"
	}
	for i := range ds.Declarations {
		d := &ds.Declarations[i]
		if d.ID == "" {
			d.ID = fmt.Sprintf("decl-%d", d.Year)
		}
		if d.Status == "" {
			d.Status = declarations.StatusDraft
		}
		if !d.Status.Valid() {
			return nil, fmt.Errorf("dataset: declaration %s: unknown status %q", d.ID, d.Status)
		}
	}
	return &ds, nil
}

// Store exposes the dataset records through the records.Store contract.
func (ds *Dataset) Store() records.StaticStore {
	return records.StaticStore{Data: ds.Collections}
}

// Declaration returns the declaration filed for year. Without an explicit row a
// draft covering every property is synthesised.
func (ds *Dataset) Declaration(year int) declarations.Declaration {
	for _, d := range ds.Declarations {
		if d.Year != year {
			continue
		}
		return declarations.Declaration{
			ID:         d.ID,
			UserID:     ds.UserID,
			Year:       d.Year,
			Status:     d.Status,
			Properties: d.Properties,
			Details:    declarations.Details{Regime: d.Regime},
		}
	}
	return declarations.Declaration{
		ID:     fmt.Sprintf("decl-%d", year),
		UserID: ds.UserID,
		Year:   year,
		Status: declarations.StatusDraft,
	}
}

// Context builds the declaration context of year with refreshed totals.
func (ds *Dataset) Context(year int) declarations.Context {
	decl := ds.Declaration(year)
	totals := declarations.CalculateTotals(year, ds.Revenues, ds.Expenses, ds.Amortizations, decl.Properties)
	decl.ApplyTotals(totals)
	return declarations.BuildContext(decl, ds.Revenues, ds.Expenses, ds.Properties, ds.Amortizations)
}

// LiasseOverrides converts the [overrides.<form>] tables into liasse overrides.
func (ds *Dataset) LiasseOverrides() (liasse.Overrides, error) {
	out := liasse.Overrides{}
	for form, cases := range ds.Overrides {
		ft := liasse.FormType(form)
		if !ft.Valid() {
			return nil, fmt.Errorf("dataset: unknown form %q in overrides", form)
		}
		for code, v := range cases {
			out.Set(ft, code, v)
		}
	}
	return out, nil
}
