package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"payments-register/internal/service"
	"payments-register/internal/transport/auth"
)

func (h *Handler) exportRegister(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GetSession(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	export, err := h.opts.Exports.AdvisorRegister(r.Context(), state.Advisor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", service.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		h.log.WithError(err).Warn("register export write failed")
	}
}
