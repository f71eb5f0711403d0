package rest

import (
	"errors"
	"net/http"

	"payments-register/internal/domain"
	"payments-register/internal/transport/auth"
)

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateStartSessionRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	state, err := h.registration.StartSession(r.Context(), req.AdvisorDocument)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	SuccessCreated(w, "welcome, "+state.Advisor.Name, newSessionView(state))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GetSession(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	Success(w, "", newSessionView(state))
}

func (h *Handler) lookupDebtor(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GetSession(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := ValidateDebtorRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	next, err := h.registration.LookupDebtor(r.Context(), state.ID, req.Document)
	if errors.Is(err, domain.ErrNoObligations) {
		// the cleared session is still returned so the form can reset
		Response(w, err.Error(), newSessionView(next), 404, StatusWarning, http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	Success(w, "", newSessionView(next))
}

func (h *Handler) selectObligations(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GetSession(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := ValidateObligationsRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	next, err := h.registration.SelectObligations(r.Context(), state.ID, req.Keys)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	Success(w, "", newSessionView(next))
}
