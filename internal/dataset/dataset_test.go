package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	"github.com/lmnp-erp/lmnp-erp/internal/liasse"
	"github.com/lmnp-erp/lmnp-erp/internal/records"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

const sample = `
user_id = "u1"

[[properties]]
id = "p1"
name = "Studio"

[[properties]]
id = "p2"
name = "T2"

[[revenues]]
id = "r1"
property_id = "p1"
amount = 1000
date = 2023-03-01
type = "rent"

[[revenues]]
id = "r2"
property_id = "p2"
amount = "1 000,50"
date = "2022-12-31"
type = "rent"

[[expenses]]
id = "e1"
property_id = "p1"
amount = 200
date = "2023-04-01"
category = "maintenance"
deductible = true

[[amortizations]]
id = "a1"
property_id = "p1"
item_name = "Canapé"
purchase_date = 2023-01-01
purchase_amount = 1200
useful_life_years = 10
annual_amortization = 120
status = "active"

[[amortizations]]
id = "a2"
property_id = "p2"
purchase_date = 2023-01-01
purchase_amount = 500
useful_life_years = 5
annual_amortization = 100
status = "active"

[[declarations]]
year = 2023
status = "in_progress"
properties = ["p1"]

[overrides.2031]
5XA = 3.0
`

func TestDecodeDataset(t *testing.T) {
	ds, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, "u1", ds.UserID)
	require.Len(t, ds.Properties, 2)
	require.Len(t, ds.Revenues, 2)
	require.Equal(t, 1000.0, ds.Revenues[0].Amount.Float64())
	require.Equal(t, 1000.5, ds.Revenues[1].Amount.Float64())
	require.Equal(t, records.MustDate("2023-03-01"), ds.Revenues[0].Date)
	require.Equal(t, records.MustDate("2022-12-31"), ds.Revenues[1].Date)
	require.True(t, ds.Expenses[0].Deductible)
	require.Equal(t, "decl-2023", ds.Declarations[0].ID)
	require.Equal(t, declarations.StatusInProgress, ds.Declarations[0].Status)
}

func TestDatasetContext(t *testing.T) {
	ds, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	ctx := ds.Context(2023)
	require.Equal(t, "u1", ctx.Declaration.UserID)
	require.Equal(t, 1000.0, ctx.Totals.TotalRevenue)
	require.Equal(t, 200.0, ctx.Totals.TotalExpenses)
	require.Equal(t, 120.0, ctx.Totals.TotalAmortizations)
	require.Equal(t, 680.0, ctx.Declaration.NetResult)
	require.Len(t, ctx.Properties, 1)

	fallback := ds.Context(2022)
	require.Equal(t, declarations.StatusDraft, fallback.Declaration.Status)
	require.Equal(t, 1000.5, fallback.Totals.TotalRevenue)
	require.Len(t, fallback.Properties, 2)
}

func TestDatasetOverrides(t *testing.T) {
	ds, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	overrides, err := ds.LiasseOverrides()
	require.NoError(t, err)
	v, ok := overrides.Lookup(liasse.Form2031, "5XA")
	require.True(t, ok)
	require.Equal(t, 3.0, v)

	ds.Overrides["9999"] = map[string]float64{"X": 1}
	_, err = ds.LiasseOverrides()
	require.Error(t, err)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("user_id = \"u1\"\nbogus = 1\n"))
	require.ErrorContains(t, err, "bogus")

	_, err = Decode(strings.NewReader("[[declarations]]\nyear = 2023\nstatus = \"archived\"\n"))
	require.ErrorContains(t, err, "archived")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Amortizations, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
