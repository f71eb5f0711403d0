package repository

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payments-register/internal/domain"
	"payments-register/internal/service"
	"payments-register/pkg/logger"
)

func sampleRecord() domain.PaymentRecord {
	return domain.PaymentRecord{
		RegisteredAt:     time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC),
		DebtorDocument:   "999",
		Campaign:         "CARTERA-A",
		Reference:        "REF1",
		ReceiptNumber:    "R-001",
		TotalAmount:      decimal.NewFromInt(50000),
		CampaignAmount:   decimal.NewFromInt(50000),
		PaymentDate:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		PaymentPoint:     "Bank X",
		AdvisorName:      "Jane Doe",
		PortfolioDetail:  domain.PortfolioMulti,
		ApplicationMonth: "MARCH",
		ApplicationYear:  "2024",
		Obligations:      []string{"OBL-000111", "OBL-000222"},
		ReceiptFile:      "123_Document_999_CARTERA-A_2024-03-20_09-30.pdf",
		PaymentType:      domain.PaymentFull,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestColumns_Layout(t *testing.T) {
	assert.Len(t, LogColumns, 21)
	require.Len(t, SheetColumns, 22)
	assert.Equal(t, ColReceiptFile, SheetColumns[19])
	assert.Equal(t, ColReceiptLink, SheetColumns[20])
	assert.Equal(t, "PAYMENT TYPE", SheetColumns[21])
}

func TestLogRow_Formats(t *testing.T) {
	row := LogRow(sampleRecord())
	require.Len(t, row, len(LogColumns))
	assert.Equal(t, "20/03/2024", row[0])
	assert.Equal(t, "$50,000", row[5])
	assert.Equal(t, "2024-03-15", row[7])
	assert.Equal(t, "OBL-000111, OBL-000222", row[18])
	assert.Equal(t, "Full payment", row[20])

	sheet := SheetRow(sampleRecord())
	require.Len(t, sheet, len(SheetColumns))
	assert.Equal(t, row[19], sheet[19])
	assert.Equal(t, "", sheet[20])
	assert.Equal(t, row[20], sheet[21])
}

func TestLogRow_LargeAmount(t *testing.T) {
	rec := sampleRecord()
	rec.TotalAmount = decimal.RequireFromString("12345678901234567890")
	rec.CampaignAmount = rec.TotalAmount

	row := LogRow(rec)
	assert.Equal(t, "$12,345,678,901,234,567,890", row[5])
	assert.Equal(t, row[5], row[6])
}

func TestCSVLedger_CreatesHeaderThenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "payments.csv")
	l := NewCSVLedger(path, logger.Discard())
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, sampleRecord()))
	second := sampleRecord()
	second.ReceiptNumber = "R-002"
	require.NoError(t, l.Append(ctx, second))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, LogColumns, rows[0])
	assert.Equal(t, "R-001", rows[1][4])
	assert.Equal(t, "R-002", rows[2][4])
}

func TestCSVLedger_Contains(t *testing.T) {
	l := NewCSVLedger(filepath.Join(t.TempDir(), "payments.csv"), logger.Discard())
	ctx := context.Background()

	key := service.KeyOf(sampleRecord())
	found, err := l.Contains(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "missing log holds no rows")

	require.NoError(t, l.Append(ctx, sampleRecord()))

	found, err = l.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)

	for _, k := range []domain.DuplicateKey{
		{DebtorDocument: "998", PaymentDate: key.PaymentDate, ReceiptNumber: key.ReceiptNumber},
		{DebtorDocument: key.DebtorDocument, PaymentDate: "2024-03-16", ReceiptNumber: key.ReceiptNumber},
		{DebtorDocument: key.DebtorDocument, PaymentDate: key.PaymentDate, ReceiptNumber: "R-002"},
	} {
		found, err := l.Contains(ctx, k)
		require.NoError(t, err)
		assert.False(t, found, "%+v", k)
	}
}

func TestCSVLedger_RowsFor(t *testing.T) {
	l := NewCSVLedger(filepath.Join(t.TempDir(), "payments.csv"), logger.Discard())
	ctx := context.Background()

	header, rows, err := l.RowsFor(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, LogColumns, header)
	assert.Empty(t, rows)

	require.NoError(t, l.Append(ctx, sampleRecord()))
	other := sampleRecord()
	other.AdvisorName = "John Roe"
	other.ReceiptNumber = "R-002"
	require.NoError(t, l.Append(ctx, other))

	header, rows, err = l.RowsFor(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, LogColumns, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "R-001", rows[0][4])
}

func TestCSVLedger_RejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payments.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,B,C\n1,2,3\n"), 0o644))

	_, err := NewCSVLedger(path, logger.Discard()).Contains(context.Background(), domain.DuplicateKey{})
	assert.Error(t, err)
}

func TestMirrorRepository_InsertQuery(t *testing.T) {
	r := NewMirrorRepository(nil, "")
	q := r.InsertQuery()
	assert.Contains(t, q, "INSERT INTO payment_register (registration_date, document,")
	assert.Contains(t, q, "receipt_file, receipt_link, payment_type)")
	assert.Contains(t, q, "$22)")
	assert.Equal(t, "collections_contact", SQLColumn("COLLECTIONS CONTACT"))
}
