package rest

import (
	"strings"

	"payments-register/internal/domain"
	"payments-register/internal/service"
)

type advisorView struct {
	Document string `json:"document"`
	Name     string `json:"name"`
}

// obligationView never carries the raw identifier; clients select by key.
type obligationView struct {
	Key      int             `json:"key"`
	ID       string          `json:"id"`
	Campaign string          `json:"campaign"`
	Columns  []domain.Column `json:"columns,omitempty"`
	Selected bool            `json:"selected"`
}

type sessionView struct {
	SessionID      string           `json:"session_id"`
	Advisor        advisorView      `json:"advisor"`
	DebtorDocument string           `json:"debtor_document,omitempty"`
	Obligations    []obligationView `json:"obligations"`
	Campaigns      []string         `json:"campaigns"`
	Selected       []int            `json:"selected"`
}

func newSessionView(st domain.SessionState) sessionView {
	selected := make(map[int]bool, len(st.Selected))
	for _, k := range st.Selected {
		selected[k] = true
	}

	obligations := make([]obligationView, len(st.Obligations))
	for i, o := range st.Obligations {
		obligations[i] = obligationView{
			Key:      i,
			ID:       service.Mask(o.ID),
			Campaign: o.Campaign,
			Columns:  o.Columns,
			Selected: selected[i],
		}
	}

	campaigns := st.Campaigns()
	if campaigns == nil {
		campaigns = []string{}
	}
	keys := st.Selected
	if keys == nil {
		keys = []int{}
	}

	return sessionView{
		SessionID:      st.ID,
		Advisor:        advisorView{Document: service.Mask(st.Advisor.Document), Name: st.Advisor.Name},
		DebtorDocument: service.Mask(st.DebtorDocument),
		Obligations:    obligations,
		Campaigns:      campaigns,
		Selected:       keys,
	}
}

type paymentView struct {
	SubmissionID     string `json:"submission_id"`
	RegistrationDate string `json:"registration_date"`
	Document         string `json:"document"`
	Campaign         string `json:"campaign"`
	Reference        string `json:"reference"`
	ReceiptNumber    string `json:"receipt_number"`
	TotalAmount      string `json:"total_amount"`
	PaymentDate      string `json:"payment_date"`
	PaymentPoint     string `json:"payment_point"`
	Advisor          string `json:"advisor"`
	PortfolioDetail  string `json:"portfolio_detail"`
	ApplicationMonth string `json:"application_month"`
	ApplicationYear  string `json:"application_year"`
	Obligations      string `json:"obligations"`
	PaymentType      string `json:"payment_type"`
	ReceiptFile      string `json:"receipt_file"`
	ReceiptURL       string `json:"receipt_url"`
	RemoteSynced     bool   `json:"remote_synced"`
}

func (h *Handler) newPaymentView(sessionID string, sub *service.Submission) paymentView {
	rec := sub.Record
	masked := make([]string, len(rec.Obligations))
	for i, id := range rec.Obligations {
		masked[i] = service.Mask(id)
	}
	return paymentView{
		SubmissionID:     rec.SubmissionID,
		RegistrationDate: rec.RegisteredAt.Format(domain.RegistrationDateLayout),
		Document:         service.Mask(rec.DebtorDocument),
		Campaign:         rec.Campaign,
		Reference:        rec.Reference,
		ReceiptNumber:    rec.ReceiptNumber,
		TotalAmount:      service.FormatAmount(rec.TotalAmount),
		PaymentDate:      rec.PaymentDate.Format(domain.PaymentDateLayout),
		PaymentPoint:     rec.PaymentPoint,
		Advisor:          rec.AdvisorName,
		PortfolioDetail:  rec.PortfolioDetail,
		ApplicationMonth: rec.ApplicationMonth,
		ApplicationYear:  rec.ApplicationYear,
		Obligations:      strings.Join(masked, ", "),
		PaymentType:      string(rec.PaymentType),
		ReceiptFile:      rec.ReceiptFile,
		ReceiptURL:       h.receiptURL(sessionID, rec.ReceiptFile),
		RemoteSynced:     sub.RemoteSynced,
	}
}
