package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentFull        PaymentType = "Full payment"
	PaymentInstallment PaymentType = "Installment payment"
	PaymentPartial     PaymentType = "Partial payment"
	PaymentNovation    PaymentType = "Novation"
)

// PaymentTypes lists the accepted payment types in display order.
var PaymentTypes = []PaymentType{PaymentFull, PaymentInstallment, PaymentPartial, PaymentNovation}

func (t PaymentType) Valid() bool {
	for _, pt := range PaymentTypes {
		if pt == t {
			return true
		}
	}
	return false
}

const (
	PortfolioSingle = "SINGLE PRODUCT"
	PortfolioMulti  = "MULTI PRODUCT"
)

const (
	PaymentDateLayout      = "2006-01-02"
	RegistrationDateLayout = "02/01/2006"
	ReceiptStampLayout     = "2006-01-02_15-04"
)

// PaymentRecord is the normalized row appended to the payment log. It is
// built once per submission and never mutated afterwards.
type PaymentRecord struct {
	SubmissionID string

	RegisteredAt     time.Time
	DebtorDocument   string
	Campaign         string
	Reference        string
	ReceiptNumber    string
	TotalAmount      decimal.Decimal
	CampaignAmount   decimal.Decimal
	PaymentDate      time.Time
	PaymentPoint     string
	AdvisorName      string
	PortfolioDetail  string
	ApplicationMonth string
	ApplicationYear  string

	// annotation fields, filled later by back-office staff
	Observations       string
	Reconciliation     string
	Note               string
	Item               string
	CollectionsContact string

	Obligations []string
	ReceiptFile string
	PaymentType PaymentType
}

// DuplicateKey identifies a payment for duplicate detection.
type DuplicateKey struct {
	DebtorDocument string
	PaymentDate    string
	ReceiptNumber  string
}
