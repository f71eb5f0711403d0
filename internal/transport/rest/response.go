package rest

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusWarning = "warning"
	StatusPartial = "partial"
)

type APIResponse struct {
	ErrorCode int    `json:"error_code"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

func Response(w http.ResponseWriter, message string, data any, errorCode int, status string, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	response := APIResponse{
		ErrorCode: errorCode,
		Status:    status,
		Message:   message,
		Data:      data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logrus.WithField("component", "http").WithError(err).Warn("write response failed")
	}
}

func Success(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, StatusSuccess, http.StatusOK)
}

func SuccessCreated(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, StatusSuccess, http.StatusCreated)
}

// PartialCreated reports a payment stored locally whose remote copy failed.
func PartialCreated(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 0, StatusPartial, http.StatusCreated)
}

func Error(w http.ResponseWriter, message string, errorCode int, httpStatus int) {
	Response(w, message, nil, errorCode, StatusError, httpStatus)
}

func ErrorBadRequest(w http.ResponseWriter, message string) {
	Error(w, message, 400, http.StatusBadRequest)
}

func ErrorUnauthorized(w http.ResponseWriter, message string) {
	Error(w, message, 401, http.StatusUnauthorized)
}

func ErrorNotFound(w http.ResponseWriter, message string) {
	Error(w, message, 404, http.StatusNotFound)
}

func ErrorConflict(w http.ResponseWriter, message string) {
	Response(w, message, nil, 409, StatusWarning, http.StatusConflict)
}

func ErrorUnprocessable(w http.ResponseWriter, message string, data any) {
	Response(w, message, data, 422, StatusError, http.StatusUnprocessableEntity)
}

func ErrorUnavailable(w http.ResponseWriter, message string) {
	Error(w, message, 503, http.StatusServiceUnavailable)
}

func ErrorInternal(w http.ResponseWriter, message string) {
	Error(w, message, 500, http.StatusInternalServerError)
}
