package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"payments-register/internal/domain"
)

func testReference() *domain.Reference {
	return &domain.Reference{
		Advisors: domain.Table{
			Name:    "advisors",
			Headers: []string{"DOCUMENTO", "RESPONSABLE"},
			Rows: []domain.Row{
				{"DOCUMENTO": "123", "RESPONSABLE": " Jane Doe "},
				{"DOCUMENTO": "456", "RESPONSABLE": "John Roe"},
			},
		},
		Obligations: domain.Table{
			Name:    "obligations",
			Headers: []string{"DEUDOR", "OBLIGACION", "CAMPAÑA", "SALDO"},
			Rows: []domain.Row{
				{"DEUDOR": "999", "OBLIGACION": "OBL-000111", "CAMPAÑA": "CARTERA-A", "SALDO": "1000\n000"},
				{"DEUDOR": "777", "OBLIGACION": "OBL-000333", "CAMPAÑA": "CARTERA-B", "SALDO": "5"},
				{"DEUDOR": " 999 ", "OBLIGACION": "OBL-000222", "CAMPAÑA": "CARTERA-A", "SALDO": "250"},
			},
		},
		PaymentPoints: domain.Table{
			Name:    "payment_points",
			Headers: []string{"BANCO"},
			Rows: []domain.Row{
				{"BANCO": "Bank Y"},
				{"BANCO": "Bank X"},
				{"BANCO": ""},
				{"BANCO": "Bank X"},
			},
		},
		Columns: domain.Columns{
			domain.FieldAdvisorDoc:  "DOCUMENTO",
			domain.FieldAdvisorName: "RESPONSABLE",
			domain.FieldDebtorDoc:   "DEUDOR",
			domain.FieldObligation:  "OBLIGACION",
			domain.FieldCampaign:    "CAMPAÑA",
			domain.FieldBank:        "BANCO",
		},
	}
}

var fixedNow = time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC)

func validInput() PaymentInput {
	return PaymentInput{
		Reference:     "REF1",
		ReceiptNumber: "R-001",
		Amount:        "50000",
		PaymentDate:   "2024-03-15",
		PaymentPoint:  "Bank X",
		Receipt: &ReceiptUpload{
			FileName:    "proof.PDF",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.4"),
		},
	}
}

type staticRefs struct {
	ref *domain.Reference
	err error
}

func (s staticRefs) Get(ctx context.Context) (*domain.Reference, error) {
	return s.ref, s.err
}

type memSessions struct {
	mu    sync.Mutex
	items map[string]domain.SessionState
}

func newMemSessions() *memSessions {
	return &memSessions{items: make(map[string]domain.SessionState)}
}

func (m *memSessions) Get(ctx context.Context, id string) (domain.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.items[id]
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return st, nil
}

func (m *memSessions) Save(ctx context.Context, st domain.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[st.ID] = st
	return nil
}

type fakeLedger struct {
	records   []domain.PaymentRecord
	appendErr error
}

func (l *fakeLedger) Contains(ctx context.Context, key domain.DuplicateKey) (bool, error) {
	for _, r := range l.records {
		if KeyOf(r) == key {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) Append(ctx context.Context, rec domain.PaymentRecord) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.records = append(l.records, rec)
	return nil
}

type fakeMirror struct {
	err     error
	records []domain.PaymentRecord
}

func (m *fakeMirror) Append(ctx context.Context, rec domain.PaymentRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

type fakeReceipts struct {
	saved map[string][]byte
}

func (r *fakeReceipts) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if r.saved == nil {
		r.saved = make(map[string][]byte)
	}
	if _, ok := r.saved[name]; ok {
		return "", errors.New("name taken")
	}
	r.saved[name] = data
	return name, nil
}

func (r *fakeReceipts) Delete(ctx context.Context, name string) error {
	delete(r.saved, name)
	return nil
}

type fakeNotifier struct {
	registered []string
	partial    []string
}

func (n *fakeNotifier) NotifyRegistered(ctx context.Context, advisorDoc string, rec domain.PaymentRecord) error {
	n.registered = append(n.registered, advisorDoc)
	return nil
}

func (n *fakeNotifier) NotifyPartial(ctx context.Context, advisorDoc string, rec domain.PaymentRecord, cause error) error {
	n.partial = append(n.partial, advisorDoc)
	return nil
}
