package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"payments-register/internal/domain"
	"payments-register/internal/service"
)

type StartSessionRequest struct {
	AdvisorDocument string `json:"advisor_document"`
}

type DebtorRequest struct {
	Document string `json:"document"`
}

type ObligationsRequest struct {
	Keys []int `json:"keys"`
}

type rawObligationsRequest struct {
	Keys []any `json:"keys"`
}

var errInvalidJSON = errors.New("invalid JSON")

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return errInvalidJSON
	}
	return nil
}

func ValidateStartSessionRequest(r *http.Request) (*StartSessionRequest, error) {
	var req StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AdvisorDocument) == "" {
		return nil, domain.ValidationErrors{{Field: "advisor_document", Message: "advisor document is required"}}
	}
	return &req, nil
}

func ValidateDebtorRequest(r *http.Request) (*DebtorRequest, error) {
	var req DebtorRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Document) == "" {
		return nil, domain.ValidationErrors{{Field: "document", Message: "debtor document is required"}}
	}
	return &req, nil
}

// ValidateObligationsRequest accepts keys as numbers or numeric strings.
func ValidateObligationsRequest(r *http.Request) (*ObligationsRequest, error) {
	var raw rawObligationsRequest
	if err := decodeJSON(r, &raw); err != nil {
		return nil, err
	}

	keys := make([]int, 0, len(raw.Keys))
	for _, v := range raw.Keys {
		k, err := toInt(v)
		if err != nil {
			return nil, domain.ValidationErrors{{Field: "keys", Message: "keys must be integers"}}
		}
		keys = append(keys, k)
	}
	return &ObligationsRequest{Keys: keys}, nil
}

// ParsePaymentForm reads the multipart submission. A missing receipt part is
// left for the record builder to report with the other field errors.
func ParsePaymentForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (service.PaymentInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.PaymentInput{}, domain.ValidationErrors{{Field: "receipt", Message: "receipt file is too large"}}
		}
		return service.PaymentInput{}, fmt.Errorf("%w: %v", errInvalidForm, err)
	}

	in := service.PaymentInput{
		Reference:     r.FormValue("reference"),
		ReceiptNumber: r.FormValue("receipt_number"),
		PaymentType:   r.FormValue("payment_type"),
		Amount:        r.FormValue("amount"),
		PaymentDate:   r.FormValue("payment_date"),
		PaymentPoint:  r.FormValue("payment_point"),
		Campaign:      r.FormValue("campaign"),
	}

	file, header, err := r.FormFile("receipt")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return service.PaymentInput{}, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.PaymentInput{}, fmt.Errorf("read receipt: %w", err)
	}
	in.Receipt = &service.ReceiptUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return in, nil
}

var errInvalidForm = errors.New("invalid multipart form")

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("not an integer: %v", t)
		}
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("invalid type %T", v)
	}
}
