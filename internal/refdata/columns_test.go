package refdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payments-register/internal/domain"
)

func table(headers ...string) domain.Table {
	return domain.Table{Headers: headers}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	a := DefaultAliases()

	h, ok := a.Resolve([]string{"NOMBRE", "CEDULA DEUDOR", "DOCUMENTO"}, domain.FieldDebtorDoc)
	require.True(t, ok)
	assert.Equal(t, "CEDULA DEUDOR", h)

	// exact aliases only match the whole header
	_, ok = a.Resolve([]string{"CEDULA ASESOR"}, domain.FieldDebtorDoc)
	assert.False(t, ok)

	h, ok = a.Resolve([]string{"ID"}, domain.FieldDebtorDoc)
	require.True(t, ok)
	assert.Equal(t, "ID", h)
}

func TestResolveColumns(t *testing.T) {
	cols, err := ResolveColumns(DefaultAliases(),
		table("CC", "NOMBRE RESPONSABLE"),
		table("CEDULA DEUDOR", "NRO OBLIGACION", "CAMPAÑA", "SALDO"),
		table("CIUDAD", "PUNTO DE PAGO"),
	)
	require.NoError(t, err)
	assert.Equal(t, domain.Columns{
		domain.FieldAdvisorDoc:  "CC",
		domain.FieldAdvisorName: "NOMBRE RESPONSABLE",
		domain.FieldDebtorDoc:   "CEDULA DEUDOR",
		domain.FieldObligation:  "NRO OBLIGACION",
		domain.FieldCampaign:    "CAMPAÑA",
		domain.FieldBank:        "PUNTO DE PAGO",
	}, cols)
}

func TestResolveColumns_EnglishHeaders(t *testing.T) {
	cols, err := ResolveColumns(DefaultAliases(),
		table("DOCUMENT", "FULL NAME"),
		table("DEBTOR ID", "OBLIGATION", "PORTFOLIO"),
		table("BANK"),
	)
	require.NoError(t, err)
	assert.Equal(t, "DEBTOR ID", cols[domain.FieldDebtorDoc])
	assert.Equal(t, "FULL NAME", cols[domain.FieldAdvisorName])
}

func TestResolveColumns_ReportsEveryMissingField(t *testing.T) {
	_, err := ResolveColumns(DefaultAliases(),
		table("CC"),
		table("CEDULA DEUDOR", "SALDO"),
		table("BANCO"),
	)
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []domain.Field{domain.FieldAdvisorName, domain.FieldObligation, domain.FieldCampaign}, cfgErr.Missing)
}

func TestResolveColumns_BankFallsBackToFirstColumn(t *testing.T) {
	cols, err := ResolveColumns(DefaultAliases(),
		table("CC", "NOMBRE"),
		table("DEUDOR", "OBLIGACION", "CARTERA"),
		table("ENTIDAD", "CIUDAD"),
	)
	require.NoError(t, err)
	assert.Equal(t, "ENTIDAD", cols[domain.FieldBank])
}

func TestLoadAliases_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
obligation:
  contains: ["CREDITO"]
campaign:
  equals: ["LINEA"]
`), 0o644))

	a, err := LoadAliases(path)
	require.NoError(t, err)

	h, ok := a.Resolve([]string{"NRO OBLIGACION", "NUMERO CREDITO"}, domain.FieldObligation)
	require.True(t, ok)
	assert.Equal(t, "NUMERO CREDITO", h)

	_, ok = a.Resolve([]string{"CAMPAÑA"}, domain.FieldCampaign)
	assert.False(t, ok)

	// untouched fields keep defaults
	_, ok = a.Resolve([]string{"CEDULA DEUDOR"}, domain.FieldDebtorDoc)
	assert.True(t, ok)
}

func TestLoadAliases_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("amount:\n  contains: [VALOR]\n"), 0o644))

	_, err := LoadAliases(path)
	assert.ErrorContains(t, err, "unknown column field")
}
