package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"payments-register/internal/domain"
	"payments-register/internal/service"
	"payments-register/pkg/logger"
)

// CSVLedger is the local append-only payment log. The mutex keeps rows whole
// within one process; it does not make check-then-append atomic.
type CSVLedger struct {
	path string
	mu   sync.Mutex
	log  logrus.FieldLogger
}

func NewCSVLedger(path string, log logrus.FieldLogger) *CSVLedger {
	return &CSVLedger{path: path, log: logger.Component(log, "ledger")}
}

func (l *CSVLedger) Path() string {
	return l.path
}

// openLog opens the log and reads its header. It returns a nil file when the
// log is missing or empty. The caller holds l.mu.
func (l *CSVLedger) openLog() (*os.File, *csv.Reader, []string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open payment log: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		f.Close()
		return nil, nil, nil, nil
	}
	if err != nil {
		f.Close()
		return nil, nil, nil, fmt.Errorf("read payment log header: %w", err)
	}
	return f, r, header, nil
}

func (l *CSVLedger) each(ctx context.Context, r *csv.Reader, fn func(row []string) bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read payment log: %w", err)
		}
		if !fn(row) {
			return nil
		}
	}
}

// Contains reports whether a row with the same document, payment date and
// receipt number exists. A missing log holds no rows.
func (l *CSVLedger) Contains(ctx context.Context, key domain.DuplicateKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, r, header, err := l.openLog()
	if err != nil || f == nil {
		return false, err
	}
	defer f.Close()

	docIdx := indexOf(header, ColDocument)
	dateIdx := indexOf(header, ColPaymentDate)
	receiptIdx := indexOf(header, ColReceiptNumber)
	if docIdx < 0 || dateIdx < 0 || receiptIdx < 0 {
		return false, fmt.Errorf("payment log %s has an unexpected header", l.path)
	}

	found := false
	err = l.each(ctx, r, func(row []string) bool {
		found = cell(row, docIdx) == key.DebtorDocument &&
			cell(row, dateIdx) == key.PaymentDate &&
			cell(row, receiptIdx) == key.ReceiptNumber
		return !found
	})
	return found, err
}

// RowsFor returns the log header and every row registered by the named
// advisor, in file order. The log only records advisor names.
func (l *CSVLedger) RowsFor(ctx context.Context, advisorName string) ([]string, [][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, r, header, err := l.openLog()
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return LogColumns, nil, nil
	}
	defer f.Close()

	advisorIdx := indexOf(header, ColAdvisor)
	if advisorIdx < 0 {
		return nil, nil, fmt.Errorf("payment log %s has an unexpected header", l.path)
	}

	var rows [][]string
	err = l.each(ctx, r, func(row []string) bool {
		if cell(row, advisorIdx) == advisorName {
			rows = append(rows, row)
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}

// Append writes one row, creating the log with its header first if needed.
func (l *CSVLedger) Append(ctx context.Context, rec domain.PaymentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open payment log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat payment log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(LogColumns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		l.log.WithField("path", l.path).Info("payment log created")
	}
	if err := w.Write(LogRow(rec)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush payment log: %w", err)
	}
	return f.Sync()
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

var (
	_ service.Ledger     = (*CSVLedger)(nil)
	_ service.LedgerRows = (*CSVLedger)(nil)
)
