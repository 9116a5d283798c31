package httpserver

import (
	"net/http"

	"github.com/shopspring/decimal"

	"staybook/internal/app"
)

type createPaymentRequest struct {
	Currency string `json:"currency"`
	Method   string `json:"method"`
}

func (h *Handlers) createPayment(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req createPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Currency) != 3 {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "currency must be a 3-letter code")
		return
	}
	p, err := h.Payments.Create(r.Context(), app.CreatePaymentInput{
		BookingID: bookingID, Currency: req.Currency, Method: req.Method,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

func (h *Handlers) getPayment(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Payments.GetByBooking(r.Context(), bookingID)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

// webhookRequest mirrors the gateway's event payload.
type webhookRequest struct {
	PaymentID     int64           `json:"payment_id"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"` // succeeded|failed
	Amount        decimal.Decimal `json:"amount"`
}

func (h *Handlers) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaymentID <= 0 || req.TransactionID == "" {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "payment_id and transaction_id are required")
		return
	}
	p, err := h.Payments.HandleWebhook(r.Context(), app.WebhookEvent{
		PaymentID:     req.PaymentID,
		TransactionID: req.TransactionID,
		Succeeded:     req.Status == "succeeded",
		Amount:        req.Amount,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}

func (h *Handlers) refundPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Payments.Refund(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(p))
}
