package repository

import (
	"strings"

	"payments-register/internal/domain"
	"payments-register/internal/service"
)

const (
	ColDocument      = "DOCUMENT"
	ColPaymentDate   = "PAYMENT DATE"
	ColReceiptNumber = "RECEIPT NUMBER"
	ColReceiptFile   = "RECEIPT FILE"
	ColReceiptLink   = "RECEIPT LINK"
	ColAdvisor       = "ADVISOR"
)

// LogColumns is the header of the local payment log, in file order.
var LogColumns = []string{
	"REGISTRATION DATE",
	ColDocument,
	"CAMPAIGN",
	"REFERENCE",
	ColReceiptNumber,
	"TOTAL AMOUNT",
	"CAMPAIGN AMOUNT",
	ColPaymentDate,
	"PAYMENT POINT",
	ColAdvisor,
	"PORTFOLIO DETAIL",
	"APPLICATION MONTH",
	"APPLICATION YEAR",
	"OBSERVATIONS",
	"RECONCILIATION",
	"NOTE",
	"ITEM",
	"COLLECTIONS CONTACT",
	"OBLIGATION",
	ColReceiptFile,
	"PAYMENT TYPE",
}

// SheetColumns is the remote mirror layout: the log columns with a receipt
// link slot after the receipt file. The link is never filled here.
var SheetColumns = func() []string {
	out := make([]string, 0, len(LogColumns)+1)
	for _, c := range LogColumns {
		out = append(out, c)
		if c == ColReceiptFile {
			out = append(out, ColReceiptLink)
		}
	}
	return out
}()

// LogRow renders a record in LogColumns order.
func LogRow(rec domain.PaymentRecord) []string {
	return []string{
		rec.RegisteredAt.Format(domain.RegistrationDateLayout),
		rec.DebtorDocument,
		rec.Campaign,
		rec.Reference,
		rec.ReceiptNumber,
		service.FormatAmount(rec.TotalAmount),
		service.FormatAmount(rec.CampaignAmount),
		rec.PaymentDate.Format(domain.PaymentDateLayout),
		rec.PaymentPoint,
		rec.AdvisorName,
		rec.PortfolioDetail,
		rec.ApplicationMonth,
		rec.ApplicationYear,
		rec.Observations,
		rec.Reconciliation,
		rec.Note,
		rec.Item,
		rec.CollectionsContact,
		strings.Join(rec.Obligations, ", "),
		rec.ReceiptFile,
		string(rec.PaymentType),
	}
}

// SheetRow renders a record in SheetColumns order.
func SheetRow(rec domain.PaymentRecord) []string {
	row := LogRow(rec)
	out := make([]string, 0, len(SheetColumns))
	for i, c := range LogColumns {
		out = append(out, row[i])
		if c == ColReceiptFile {
			out = append(out, "")
		}
	}
	return out
}
