package declarations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

type declarationRow struct {
	details []byte
}

func (r declarationRow) Scan(dest ...any) error {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	*dest[0].(*string) = "d1"
	*dest[1].(*string) = "u1"
	*dest[2].(*int) = 2023
	*dest[3].(*string) = string(StatusDraft)
	*dest[4].(*string) = "1000.00"
	*dest[5].(*string) = "200.00"
	*dest[6].(*string) = "800.00"
	*dest[7].(*[]string) = []string{"p1"}
	*dest[8].(*[]byte) = r.details
	*dest[9].(*time.Time) = created
	*dest[10].(*time.Time) = created
	return nil
}

func TestScanDeclaration(t *testing.T) {
	decl, err := scanDeclaration(declarationRow{details: []byte(`{"regime":"micro"}`)})
	require.NoError(t, err)
	require.Equal(t, "d1", decl.ID)
	require.Equal(t, 800.0, decl.NetResult)
	require.Equal(t, "micro", decl.Details.Regime)

	decl, err = scanDeclaration(declarationRow{})
	require.NoError(t, err)
	require.Empty(t, decl.Details.Regime)
}

func TestScanDeclarationRejectsCorruptDetails(t *testing.T) {
	_, err := scanDeclaration(declarationRow{details: []byte(`{"regime":`)})
	require.ErrorContains(t, err, "declarations: decode details")
}
