package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payments-register/internal/domain"
	"payments-register/pkg/logger"
)

type ReferenceSource interface {
	Get(ctx context.Context) (*domain.Reference, error)
}

type SessionStore interface {
	Get(ctx context.Context, id string) (domain.SessionState, error)
	Save(ctx context.Context, state domain.SessionState) error
}

// Ledger is the authoritative local payment log.
type Ledger interface {
	LedgerReader
	Append(ctx context.Context, rec domain.PaymentRecord) error
}

// Mirror is the best-effort remote copy of the log.
type Mirror interface {
	Append(ctx context.Context, rec domain.PaymentRecord) error
}

type ReceiptStore interface {
	// Save stores the receipt under name, or a variant of it when taken, and
	// returns the name actually used.
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

type Notifier interface {
	NotifyRegistered(ctx context.Context, advisorDoc string, rec domain.PaymentRecord) error
	NotifyPartial(ctx context.Context, advisorDoc string, rec domain.PaymentRecord, cause error) error
}

type Dependencies struct {
	References ReferenceSource
	Sessions   SessionStore
	Ledger     Ledger
	Mirror     Mirror
	Receipts   ReceiptStore
	Notifier   Notifier
	Options    RecordOptions
	Log        logrus.FieldLogger
}

// Submission is the outcome of a registered payment.
type Submission struct {
	Record       domain.PaymentRecord `json:"-"`
	RemoteSynced bool                 `json:"remote_synced"`
}

type RegistrationService struct {
	refs     ReferenceSource
	sessions SessionStore
	ledger   Ledger
	mirror   Mirror
	receipts ReceiptStore
	notifier Notifier
	opts     RecordOptions
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewRegistrationService(deps Dependencies) *RegistrationService {
	return &RegistrationService{
		refs:     deps.References,
		sessions: deps.Sessions,
		ledger:   deps.Ledger,
		mirror:   deps.Mirror,
		receipts: deps.Receipts,
		notifier: deps.Notifier,
		opts:     deps.Options,
		now:      time.Now,
		log:      logger.Component(deps.Log, "registration"),
	}
}

// StartSession identifies the advisor and opens a new workflow session.
func (s *RegistrationService) StartSession(ctx context.Context, advisorDoc string) (domain.SessionState, error) {
	ref, err := s.refs.Get(ctx)
	if err != nil {
		return domain.SessionState{}, err
	}

	now := s.now()
	state, err := IdentifyAdvisor(ref, domain.SessionState{ID: uuid.NewString(), CreatedAt: now}, advisorDoc)
	if err != nil {
		return domain.SessionState{}, err
	}
	state.UpdatedAt = now

	if err := s.sessions.Save(ctx, state); err != nil {
		return domain.SessionState{}, fmt.Errorf("saving session: %w", err)
	}
	s.log.WithFields(logrus.Fields{"session": state.ID, "advisor": state.Advisor.Document}).Info("session started")
	return state, nil
}

func (s *RegistrationService) Session(ctx context.Context, id string) (domain.SessionState, error) {
	return s.sessions.Get(ctx, id)
}

// LookupDebtor replaces the session's debtor. A debtor without obligations
// is stored as "no debtor" and reported with domain.ErrNoObligations.
func (s *RegistrationService) LookupDebtor(ctx context.Context, sessionID, document string) (domain.SessionState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}
	ref, err := s.refs.Get(ctx)
	if err != nil {
		return state, err
	}

	next, stepErr := LookupDebtor(ref, state, document)
	if stepErr != nil && !errors.Is(stepErr, domain.ErrNoObligations) {
		return state, stepErr
	}

	next.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, next); err != nil {
		return state, fmt.Errorf("saving session: %w", err)
	}
	return next, stepErr
}

func (s *RegistrationService) SelectObligations(ctx context.Context, sessionID string, keys []int) (domain.SessionState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}

	next, err := SelectObligations(state, keys)
	if err != nil {
		return state, err
	}

	next.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, next); err != nil {
		return state, fmt.Errorf("saving session: %w", err)
	}
	return next, nil
}

func (s *RegistrationService) PaymentPoints(ctx context.Context) ([]string, error) {
	ref, err := s.refs.Get(ctx)
	if err != nil {
		return nil, err
	}
	return PaymentPoints(ref), nil
}

// Submit validates and registers a payment: duplicate check, receipt upload,
// local append, then the remote mirror. A failed mirror append returns the
// submission together with a *domain.PartialPersistenceError.
func (s *RegistrationService) Submit(ctx context.Context, sessionID string, in PaymentInput) (*Submission, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ref, err := s.refs.Get(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := BuildRecord(state, PaymentPoints(ref), in, s.opts, s.now())
	if err != nil {
		return nil, err
	}
	rec.SubmissionID = uuid.NewString()

	log := s.log.WithFields(logrus.Fields{
		"session":    state.ID,
		"submission": rec.SubmissionID,
		"document":   rec.DebtorDocument,
	})

	if err := CheckDuplicate(ctx, s.ledger, rec); err != nil {
		log.WithError(err).Warn("submission blocked")
		return nil, err
	}

	stored, err := s.receipts.Save(ctx, rec.ReceiptFile, in.Receipt.Data, in.Receipt.ContentType)
	if err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	rec.ReceiptFile = stored

	if err := s.ledger.Append(ctx, rec); err != nil {
		// every stored receipt has a log row
		if derr := s.receipts.Delete(ctx, stored); derr != nil {
			log.WithError(derr).WithField("receipt", stored).Error("orphaned receipt left in store")
		}
		return nil, fmt.Errorf("appending to payment log: %w", err)
	}
	log.WithField("receipt", stored).Info("payment registered locally")

	sub := &Submission{Record: rec}

	if s.mirror != nil {
		if err := s.mirror.Append(ctx, rec); err != nil {
			log.WithError(err).Error("remote sync failed")
			s.notify(func() error { return s.notifier.NotifyPartial(ctx, state.Advisor.Document, rec, err) })
			return sub, &domain.PartialPersistenceError{Err: err}
		}
		sub.RemoteSynced = true
	}

	s.notify(func() error { return s.notifier.NotifyRegistered(ctx, state.Advisor.Document, rec) })
	return sub, nil
}

func (s *RegistrationService) notify(fn func() error) {
	if s.notifier == nil {
		return
	}
	if err := fn(); err != nil {
		s.log.WithError(err).Warn("notification failed")
	}
}
