package amount

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

func TestNormalize(t *testing.T) {
	str := "12,5"
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.34, 12.34},
		{"int", 7, 7},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"decimal comma", "1234,56", 1234.56},
		{"grouped with spaces", " 1 234,56 ", 1234.56},
		{"grouped with nbsp", "1 234,50", 1234.5},
		{"negative", "-80.10", -80.1},
		{"garbage", "abc", 0},
		{"empty", "", 0},
		{"json number", json.Number("99.9"), 99.9},
		{"pointer", &str, 12.5},
		{"bool", true, 0},
		{"struct", struct{}{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, Normalize(tc.in), 1e-9)
		})
	}
}

func TestRound2(t *testing.T) {
	require.Equal(t, 60.49, Round2(120*184.0/365))
	require.Equal(t, 0.33, Round2(1.0/3))
	require.Equal(t, -2.35, Round2(-2.345))
	require.Equal(t, 0.0, Round2(math.NaN()))
}

func TestSumRoundsEachStep(t *testing.T) {
	values := make([]float64, 0, 10)
	for i := 0; i < 10; i++ {
		values = append(values, 0.1)
	}
	require.Equal(t, 1.0, Sum(values...))
}

func TestValueUnmarshalJSON(t *testing.T) {
	var payload struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 10.5, "b": "1 000,25", "c": null, "d": "n/a"}`), &payload)
	require.NoError(t, err)
	require.Equal(t, 10.5, payload.A.Float64())
	require.Equal(t, 1000.25, payload.B.Float64())
	require.Zero(t, payload.C.Float64())
	require.Zero(t, payload.D.Float64())
}
