package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"payments-register/internal/domain"
	"payments-register/pkg/logger"
)

type fakeLedgerRows struct {
	header []string
	rows   [][]string
	err    error
	asked  string
}

func (f *fakeLedgerRows) RowsFor(ctx context.Context, advisorName string) ([]string, [][]string, error) {
	f.asked = advisorName
	return f.header, f.rows, f.err
}

func TestExportService_AdvisorRegister(t *testing.T) {
	ledger := &fakeLedgerRows{
		header: []string{"DOCUMENT", "RECEIPT NUMBER", "ADVISOR"},
		rows: [][]string{
			{"00999", "R-001", "Jane Doe"},
			{"777", "R-002", "Jane Doe"},
		},
	}
	svc := NewExportService(ledger, logger.Discard())
	svc.now = func() time.Time { return fixedNow }

	export, err := svc.AdvisorRegister(context.Background(), domain.Advisor{Document: "123", Name: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", ledger.asked)
	assert.Equal(t, "register_123_20240320_093000.xlsx", export.FileName)
	assert.Equal(t, 2, export.Rows)

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ledger.header, rows[0])
	assert.Equal(t, "00999", rows[1][0])
	assert.Equal(t, []string{"777", "R-002", "Jane Doe"}, rows[2])
}

func TestExportService_EmptyRegisterHasHeader(t *testing.T) {
	ledger := &fakeLedgerRows{header: []string{"DOCUMENT", "ADVISOR"}}
	svc := NewExportService(ledger, logger.Discard())

	export, err := svc.AdvisorRegister(context.Background(), domain.Advisor{Document: "123", Name: "Jane Doe"})
	require.NoError(t, err)
	assert.Zero(t, export.Rows)

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"DOCUMENT", "ADVISOR"}}, rows)
}

func TestExportService_LedgerError(t *testing.T) {
	boom := errors.New("disk gone")
	svc := NewExportService(&fakeLedgerRows{err: boom}, logger.Discard())

	_, err := svc.AdvisorRegister(context.Background(), domain.Advisor{Document: "123", Name: "Jane Doe"})
	assert.ErrorIs(t, err, boom)
}
