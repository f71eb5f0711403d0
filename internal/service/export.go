package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"payments-register/internal/domain"
	"payments-register/pkg/logger"
)

const (
	exportSheet = "Register"

	// XLSXContentType is the media type of exported workbooks.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type LedgerRows interface {
	RowsFor(ctx context.Context, advisorName string) ([]string, [][]string, error)
}

// Export is an advisor's slice of the payment log rendered as a workbook.
type Export struct {
	FileName string
	Rows     int
	Data     []byte
}

type ExportService struct {
	ledger LedgerRows
	now    func() time.Time
	log    logrus.FieldLogger
}

func NewExportService(ledger LedgerRows, log logrus.FieldLogger) *ExportService {
	return &ExportService{
		ledger: ledger,
		now:    time.Now,
		log:    logger.Component(log, "export"),
	}
}

// AdvisorRegister exports every payment the advisor has registered so far.
// An advisor with no payments gets a workbook holding only the header.
//
// Log rows carry the advisor name, not the document, so advisors sharing a
// name see each other's payments in the export.
func (s *ExportService) AdvisorRegister(ctx context.Context, advisor domain.Advisor) (*Export, error) {
	header, rows, err := s.ledger.RowsFor(ctx, advisor.Name)
	if err != nil {
		return nil, fmt.Errorf("reading payment log: %w", err)
	}

	data, err := buildWorkbook(header, rows, advisor.Document)
	if err != nil {
		return nil, fmt.Errorf("building workbook: %w", err)
	}

	export := &Export{
		FileName: fmt.Sprintf("register_%s_%s.xlsx", safeSegment(advisor.Document), s.now().Format("20060102_150405")),
		Rows:     len(rows),
		Data:     data,
	}
	s.log.WithFields(logrus.Fields{
		"advisor": advisor.Document,
		"rows":    export.Rows,
		"file":    export.FileName,
	}).Info("register exported")
	return export, nil
}

func buildWorkbook(header []string, rows [][]string, advisorDoc string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{Creator: "advisor_" + advisorDoc})

	if err := writeRow(f, 1, header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, rowIdx int, values []string) error {
	for colIdx, v := range values {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
		if err != nil {
			return err
		}
		// cells stay text so documents and receipt numbers keep leading zeros
		if err := f.SetCellStr(exportSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
