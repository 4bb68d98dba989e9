package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperr "benevita/internal/errors"
	"benevita/internal/service"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

type StripeWebhookHandler struct {
	WebhookSecret string
	Bookings      *service.BookingService
	Log           *zap.SugaredLogger
}

func NewStripeWebhookHandler(webhookSecret string, bookings *service.BookingService, log *zap.SugaredLogger) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret: webhookSecret,
		Bookings:      bookings,
		Log:           log,
	}
}

// HandleWebhook ingests the asynchronous payment callback. Stripe may
// deliver an event more than once; confirmation is idempotent downstream.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.Log.Errorw("error reading webhook body", "err", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.WebhookSecret)
	if err != nil {
		h.Log.Warnw("webhook signature verification failed", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			h.Log.Errorw("error parsing checkout.session", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		paymentRef := ""
		if sess.PaymentIntent != nil {
			paymentRef = sess.PaymentIntent.ID
		}

		_, err := h.Bookings.ConfirmPayment(r.Context(), sess.ID, paymentRef)
		switch {
		case err == nil:
		case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrSlotConflict):
			// Nothing Stripe can do by redelivering; acknowledge and
			// leave the trail in the logs.
			h.Log.Errorw("unresolvable payment callback",
				"session_id", sess.ID, "err", err)
		default:
			h.Log.Errorw("error confirming payment", "session_id", sess.ID, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	default:
		h.Log.Debugw("unhandled stripe event", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
