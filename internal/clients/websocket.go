package clients

import (
	"context"

	"payments-register/internal/domain"
	"payments-register/internal/service"
	ws "payments-register/internal/transport/websocket"
)

const (
	MessagePaymentRegistered = "payment_registered"
	MessagePaymentPartial    = "payment_partial"
)

// WebSocketClient pushes submission outcomes to the advisor's open
// connections.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func channelFor(advisorDoc string) string {
	return "payments#" + advisorDoc
}

func recordData(rec domain.PaymentRecord) map[string]any {
	return map[string]any{
		"submission_id": rec.SubmissionID,
		"document":      service.Mask(rec.DebtorDocument),
		"receipt_file":  rec.ReceiptFile,
		"amount":        service.FormatAmount(rec.TotalAmount),
		"payment_date":  rec.PaymentDate.Format(domain.PaymentDateLayout),
	}
}

func (c *WebSocketClient) NotifyRegistered(ctx context.Context, advisorDoc string, rec domain.PaymentRecord) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(advisorDoc, &ws.Message{
		Type:    MessagePaymentRegistered,
		Channel: channelFor(advisorDoc),
		Data:    recordData(rec),
	})
	return nil
}

// NotifyPartial reports a payment kept locally whose remote sync failed.
func (c *WebSocketClient) NotifyPartial(ctx context.Context, advisorDoc string, rec domain.PaymentRecord, cause error) error {
	if c.hub == nil {
		return nil
	}

	data := recordData(rec)
	if cause != nil {
		data["message"] = cause.Error()
	}
	c.hub.Broadcast(advisorDoc, &ws.Message{
		Type:    MessagePaymentPartial,
		Channel: channelFor(advisorDoc),
		Data:    data,
	})
	return nil
}

var _ service.Notifier = (*WebSocketClient)(nil)
