package service

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"payments-register/internal/domain"
)

// ReceiptUpload is the proof-of-payment file sent with a submission.
type ReceiptUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PaymentInput holds the raw form fields of a submission. Values are parsed
// and checked by BuildRecord.
type PaymentInput struct {
	Reference     string
	ReceiptNumber string
	PaymentType   string
	Amount        string
	PaymentDate   string
	PaymentPoint  string
	Campaign      string
	Receipt       *ReceiptUpload
}

type RecordOptions struct {
	// RequireCampaign makes an explicit campaign choice mandatory.
	RequireCampaign bool
}

var receiptExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// BuildRecord validates the submission against the session and reference
// data and assembles the normalized record. Every failed check is reported in
// a single domain.ValidationErrors. now is the registration time.
func BuildRecord(state domain.SessionState, points []string, in PaymentInput, opts RecordOptions, now time.Time) (domain.PaymentRecord, error) {
	var verrs domain.ValidationErrors

	reference := strings.TrimSpace(in.Reference)
	if reference == "" {
		verrs.Add("reference", "reference is required")
	}

	receiptNumber := strings.TrimSpace(in.ReceiptNumber)
	if receiptNumber == "" {
		verrs.Add("receipt_number", "receipt number is required")
	}

	amount, ok := parseAmount(in.Amount)
	switch {
	case !ok:
		verrs.Add("amount", "amount must be a number")
	case !amount.IsPositive():
		verrs.Add("amount", "amount must be greater than 0")
	}

	paymentDate, dateErr := parsePaymentDate(in.PaymentDate, now)
	if dateErr != "" {
		verrs.Add("payment_date", dateErr)
	}

	point := strings.TrimSpace(in.PaymentPoint)
	if point == "" {
		verrs.Add("payment_point", "select a payment point")
	} else if len(points) > 0 && !contains(points, point) {
		verrs.Add("payment_point", "unknown payment point")
	}

	paymentType := domain.PaymentType(strings.TrimSpace(in.PaymentType))
	if paymentType == "" {
		paymentType = domain.PaymentFull
	}
	if !paymentType.Valid() {
		verrs.Add("payment_type", "unknown payment type")
	}

	ext := ""
	switch {
	case in.Receipt == nil || strings.TrimSpace(in.Receipt.FileName) == "":
		verrs.Add("receipt", "receipt file is required")
	default:
		ext = filepath.Ext(in.Receipt.FileName)
		if !receiptExtensions[strings.ToLower(ext)] {
			verrs.Add("receipt", "receipt must be an image (jpg, jpeg, png) or a PDF")
		} else if len(in.Receipt.Data) == 0 {
			verrs.Add("receipt", "receipt file is empty")
		}
	}

	selected := state.SelectedObligations()
	if len(selected) == 0 {
		verrs.Add("obligations", "select at least one obligation")
	}

	campaign := strings.TrimSpace(in.Campaign)
	switch {
	case campaign != "" && !contains(state.Campaigns(), campaign):
		verrs.Add("campaign", "campaign does not belong to this debtor")
	case campaign == "" && opts.RequireCampaign:
		verrs.Add("campaign", "select a campaign")
	case campaign == "" && len(selected) > 0:
		campaign = selected[0].Campaign
	}

	if err := verrs.Err(); err != nil {
		return domain.PaymentRecord{}, err
	}

	ids := make([]string, len(selected))
	for i, o := range selected {
		ids[i] = o.ID
	}

	return domain.PaymentRecord{
		RegisteredAt:     now,
		DebtorDocument:   state.DebtorDocument,
		Campaign:         campaign,
		Reference:        reference,
		ReceiptNumber:    receiptNumber,
		TotalAmount:      amount,
		CampaignAmount:   amount,
		PaymentDate:      paymentDate,
		PaymentPoint:     point,
		AdvisorName:      state.Advisor.Name,
		PortfolioDetail:  PortfolioDetail(len(selected)),
		ApplicationMonth: strings.ToUpper(paymentDate.Month().String()),
		ApplicationYear:  paymentDate.Format("2006"),
		Obligations:      ids,
		ReceiptFile:      ReceiptFileName(state.Advisor.Document, state.DebtorDocument, campaign, now, ext),
		PaymentType:      paymentType,
	}, nil
}

// PortfolioDetail classifies a payment by how many obligations it covers.
func PortfolioDetail(selected int) string {
	if selected == 1 {
		return domain.PortfolioSingle
	}
	return domain.PortfolioMulti
}

// ReceiptFileName derives the stored receipt name. Two submissions for the
// same advisor, debtor and campaign within one minute produce the same name.
func ReceiptFileName(advisorDoc, debtorDoc, campaign string, at time.Time, ext string) string {
	return safeSegment(advisorDoc) + "_Document_" + safeSegment(debtorDoc) + "_" +
		safeSegment(campaign) + "_" + at.Format(domain.ReceiptStampLayout) + ext
}

// ReceiptOwnedBy reports whether a stored receipt name was issued for the
// advisor's submissions.
func ReceiptOwnedBy(advisorDoc, fileName string) bool {
	doc := safeSegment(advisorDoc)
	return doc != "" && strings.HasPrefix(fileName, doc+"_Document_")
}

// FormatAmount renders an amount in whole currency units with grouped
// thousands, e.g. $50,000.
func FormatAmount(d decimal.Decimal) string {
	// BigInt keeps amounts beyond int64 intact
	return "$" + humanize.BigComma(d.RoundBank(0).BigInt())
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parsePaymentDate(s string, now time.Time) (time.Time, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "payment date is required"
	}
	d, err := time.ParseInLocation(domain.PaymentDateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, "payment date must be YYYY-MM-DD"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.After(today) {
		return time.Time{}, "payment date cannot be in the future"
	}
	return d, ""
}

func safeSegment(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer("/", "-", "\\", "-", "..", "-").Replace(s)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
