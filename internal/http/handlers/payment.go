package handlers

import (
	"net/http"
	"time"

	"github.com/venuetix/bookings/pkg/events"
	"github.com/venuetix/bookings/pkg/logger"
)

type paymentPage struct {
	TicketID        string
	StripePublicKey string
}

func (h *Handlers) PaymentForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "payment.html", "title.payment", paymentPage{
		TicketID:        r.URL.Query().Get("ticket_id"),
		StripePublicKey: h.config.Stripe.PublicKey,
	})
}

// Payment charges the fixed ticket amount against the submitted payment
// method.
func (h *Handlers) Payment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/payment", http.StatusSeeOther)
		return
	}

	paymentMethodID := r.PostFormValue("payment_method_id")
	ticketID := r.PostFormValue("ticket_id")
	if paymentMethodID == "" {
		h.flash(r, "danger", "Please provide a payment method.")
		http.Redirect(w, r, "/payment?ticket_id="+ticketID, http.StatusSeeOther)
		return
	}

	receipt, err := h.gateway.Charge(r.Context(), paymentMethodID)
	if err != nil {
		logger.WarnContext(r.Context(), "Payment failed", "error", err, "ticket_id", ticketID)
		h.flash(r, "danger", "An error occurred: "+err.Error())
		http.Redirect(w, r, "/payment?ticket_id="+ticketID, http.StatusSeeOther)
		return
	}

	if err := h.bus.Publish(r.Context(), events.PaymentCaptured, events.PaymentCapturedEvent{
		IntentID:   receipt.IntentID,
		TicketID:   ticketID,
		Amount:     receipt.Amount,
		Currency:   receipt.Currency,
		CapturedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "Failed to publish payment.captured", "error", err)
	}

	h.render(w, r, "payment_success.html", "title.payment", nil)
}
