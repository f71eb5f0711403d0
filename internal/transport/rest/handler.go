package rest

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"payments-register/internal/domain"
	"payments-register/internal/service"
	"payments-register/internal/transport/auth"
	ws "payments-register/internal/transport/websocket"
	"payments-register/pkg/logger"
)

type Registration interface {
	StartSession(ctx context.Context, advisorDoc string) (domain.SessionState, error)
	Session(ctx context.Context, id string) (domain.SessionState, error)
	LookupDebtor(ctx context.Context, sessionID, document string) (domain.SessionState, error)
	SelectObligations(ctx context.Context, sessionID string, keys []int) (domain.SessionState, error)
	PaymentPoints(ctx context.Context) ([]string, error)
	Submit(ctx context.Context, sessionID string, in service.PaymentInput) (*service.Submission, error)
}

// ReceiptFiles serves receipts kept on local disk.
type ReceiptFiles interface {
	Path(fileName string) (string, error)
	GetURL(routePrefix, fileName string) string
}

// ReceiptLinks hands out temporary links to receipts kept in object storage.
type ReceiptLinks interface {
	GetTemporaryURL(ctx context.Context, fileName string, ttl time.Duration) (string, error)
}

// Exporter renders an advisor's registered payments as a workbook.
type Exporter interface {
	AdvisorRegister(ctx context.Context, advisor domain.Advisor) (*service.Export, error)
}

type Options struct {
	Files          ReceiptFiles
	Links          ReceiptLinks
	Exports        Exporter
	LinkTTL        time.Duration
	MaxUploadBytes int64
	Timeout        time.Duration
	Log            logrus.FieldLogger
}

type Handler struct {
	registration Registration
	hub          *ws.Hub
	opts         Options
	log          logrus.FieldLogger
}

func NewHandler(registration Registration, hub *ws.Hub, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = 15 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Handler{
		registration: registration,
		hub:          hub,
		opts:         opts,
		log:          logger.Component(opts.Log, "http"),
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	withSession := auth.SessionMiddleware(h.registration, h.writeError)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.opts.Timeout))

		r.Get("/health", h.health)

		r.Route("/reference", func(r chi.Router) {
			r.Get("/payment-points", h.paymentPoints)
			r.Get("/payment-types", h.paymentTypes)
		})

		r.Post("/sessions", h.startSession)
		r.Route("/sessions/{session_id}", func(r chi.Router) {
			r.Use(withSession)
			r.Get("/", h.getSession)
			r.Post("/debtor", h.lookupDebtor)
			r.Post("/obligations", h.selectObligations)
			r.Post("/payments", h.submitPayment)
			r.Get("/receipts/{file}", h.getReceipt)
			if h.opts.Exports != nil {
				r.Get("/register.xlsx", h.exportRegister)
			}
		})
	})

	// long-lived, so outside the timeout group
	r.With(withSession).Get("/ws", h.websocket)

	return r
}
