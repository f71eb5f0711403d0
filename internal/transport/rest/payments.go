package rest

import (
	"errors"
	"fmt"
	"net/http"

	"payments-register/internal/domain"
	"payments-register/internal/service"
	"payments-register/internal/transport/auth"
)

func (h *Handler) submitPayment(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GetSession(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	in, err := ParsePaymentForm(w, r, h.opts.MaxUploadBytes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sub, err := h.registration.Submit(r.Context(), state.ID, in)

	var partial *domain.PartialPersistenceError
	if errors.As(err, &partial) && sub != nil {
		PartialCreated(w, "payment saved locally, but the remote copy could not be updated", h.newPaymentView(state.ID, sub))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	SuccessCreated(w, fmt.Sprintf("payment registered for client %s", service.Mask(sub.Record.DebtorDocument)), h.newPaymentView(state.ID, sub))
}
