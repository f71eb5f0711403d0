package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"payments-register/internal/domain"
	"payments-register/internal/transport/auth"
)

// writeError maps the domain error taxonomy onto the response envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr *domain.ConfigError
		verrs  domain.ValidationErrors
		dupErr *domain.DuplicateError
	)

	switch {
	case errors.As(err, &cfgErr):
		h.log.WithError(err).Error("reference data unavailable")
		ErrorUnavailable(w, cfgErr.Error())
	case errors.As(err, &verrs):
		ErrorUnprocessable(w, "please correct the following errors", []domain.FieldError(verrs))
	case errors.As(err, &dupErr):
		ErrorConflict(w, "this payment was already registered (possible duplicate)")
	case errors.Is(err, domain.ErrAdvisorNotFound),
		errors.Is(err, domain.ErrNoObligations),
		errors.Is(err, domain.ErrSessionNotFound):
		ErrorNotFound(w, err.Error())
	case errors.Is(err, errInvalidJSON), errors.Is(err, errInvalidForm):
		ErrorBadRequest(w, err.Error())
	case errors.Is(err, auth.ErrNoSession):
		ErrorUnauthorized(w, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		Error(w, "request timed out", 504, http.StatusGatewayTimeout)
	default:
		h.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("request failed")
		ErrorInternal(w, "internal error")
	}
}
