package records

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

func TestPeriodContainsIsInclusive(t *testing.T) {
	p := Period{Start: MustDate("2023-07-01"), End: MustDate("2023-12-31")}
	require.True(t, p.Valid())
	require.True(t, p.Contains(MustDate("2023-07-01")))
	require.True(t, p.Contains(MustDate("2023-12-31")))
	require.False(t, p.Contains(MustDate("2023-06-30")))
	require.False(t, p.Contains(MustDate("2024-01-01")))
	require.False(t, p.Contains(Date{}))

	inverted := Period{Start: MustDate("2024-01-01"), End: MustDate("2023-01-01")}
	require.False(t, inverted.Valid())
}

func TestFilterExpensesDeductibleOnly(t *testing.T) {
	expenses := []Expense{
		{ID: "e1", Amount: 100, Date: MustDate("2023-02-01"), Deductible: true},
		{ID: "e2", Amount: 50, Date: MustDate("2023-02-02"), Deductible: false},
		{ID: "e3", Amount: 70, Date: MustDate("2022-12-31"), Deductible: true},
	}
	deductible := FilterExpensesByYear(expenses, 2023, true)
	require.Len(t, deductible, 1)
	require.Equal(t, "e1", deductible[0].ID)

	all := FilterExpensesByYear(expenses, 2023, false)
	require.Len(t, all, 2)

	inPeriod := FilterExpensesByPeriod(expenses, Period{Start: MustDate("2022-12-01"), End: MustDate("2023-01-31")}, true)
	require.Len(t, inPeriod, 1)
	require.Equal(t, "e3", inPeriod[0].ID)
}

func TestFilterRevenues(t *testing.T) {
	revenues := []Revenue{
		{ID: "r1", Date: MustDate("2023-01-01")},
		{ID: "r2", Date: MustDate("2024-01-01")},
		{ID: "r3"},
	}
	require.Len(t, FilterRevenuesByYear(revenues, 2023), 1)
	require.Len(t, FilterRevenuesByPeriod(revenues, YearPeriod(2024)), 1)
}

func TestPropertyAllowlist(t *testing.T) {
	open := PropertyAllowlist(nil)
	require.True(t, open("anything"))

	restricted := PropertyAllowlist([]string{"p1"})
	require.True(t, restricted("p1"))
	require.False(t, restricted("p2"))

	props := FilterProperties([]Property{{ID: "p1"}, {ID: "p2"}}, []string{"p2"})
	require.Len(t, props, 1)
	require.Equal(t, "p2", props[0].ID)
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2023-03-01","b":"2023-03-01T10:00:00Z","c":"not a date"}`), &payload))
	require.Equal(t, NewDate(2023, time.March, 1), payload.A)
	require.Equal(t, NewDate(2023, time.March, 1), payload.B)
	require.True(t, payload.C.IsZero())

	raw, err := json.Marshal(payload.A)
	require.NoError(t, err)
	require.JSONEq(t, `"2023-03-01"`, string(raw))
	require.Equal(t, 183, MustDate("2023-07-01").DaysUntil(MustDate("2023-12-31")))
}

type failingStore struct {
	StaticStore
}

func (failingStore) ListExpenses(ctx context.Context, userID string) ([]Expense, error) {
	return nil, errors.New("boom")
}

func TestLoadAll(t *testing.T) {
	store := StaticStore{Data: Collections{
		Properties:    []Property{{ID: "p1"}},
		Revenues:      []Revenue{{ID: "r1"}},
		Expenses:      []Expense{{ID: "e1"}},
		Amortizations: []Amortization{{ID: "a1"}},
	}}
	got, err := LoadAll(context.Background(), store, "u1")
	require.NoError(t, err)
	require.Len(t, got.Properties, 1)
	require.Len(t, got.Revenues, 1)
	require.Len(t, got.Expenses, 1)
	require.Len(t, got.Amortizations, 1)

	_, err = LoadAll(context.Background(), failingStore{StaticStore: store}, "u1")
	require.ErrorContains(t, err, "list expenses")
}
