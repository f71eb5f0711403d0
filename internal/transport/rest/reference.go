package rest

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"payments-register/internal/domain"
	"payments-register/internal/service"
	"payments-register/internal/transport/auth"
)

// health fails with 503 while the reference data cannot be loaded, since no
// workflow step can run in that state.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.registration.PaymentPoints(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	Success(w, "ok", nil)
}

func (h *Handler) paymentPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.registration.PaymentPoints(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if points == nil {
		points = []string{}
	}
	Success(w, "", points)
}

func (h *Handler) paymentTypes(w http.ResponseWriter, r *http.Request) {
	Success(w, "", domain.PaymentTypes)
}

// receiptURL points at the session-scoped download route.
func (h *Handler) receiptURL(sessionID, name string) string {
	prefix := "/sessions/" + url.PathEscape(sessionID) + "/receipts"
	if h.opts.Files != nil {
		return h.opts.Files.GetURL(prefix, name)
	}
	return prefix + "/" + url.PathEscape(name)
}

// getReceipt serves a receipt to the advisor who registered it. Receipts of
// other advisors are reported as missing.
func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GetSession(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	name := chi.URLParam(r, "file")
	if r.URL.RawPath != "" {
		// chi matched against the escaped path
		if name, err = url.PathUnescape(name); err != nil {
			ErrorNotFound(w, "receipt not found")
			return
		}
	}
	if !service.ReceiptOwnedBy(state.Advisor.Document, name) {
		ErrorNotFound(w, "receipt not found")
		return
	}

	switch {
	case h.opts.Files != nil:
		path, err := h.opts.Files.Path(name)
		if err != nil {
			ErrorNotFound(w, "receipt not found")
			return
		}
		http.ServeFile(w, r, path)

	case h.opts.Links != nil:
		link, err := h.opts.Links.GetTemporaryURL(r.Context(), name, h.opts.LinkTTL)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, link, http.StatusFound)

	default:
		ErrorNotFound(w, "receipt not found")
	}
}

func (h *Handler) websocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		ErrorNotFound(w, "notifications are disabled")
		return
	}
	state, err := auth.GetSession(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.hub.HandleWebSocket(w, r, state.Advisor.Document)
}
