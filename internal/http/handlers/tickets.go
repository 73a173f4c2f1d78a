package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/venuetix/bookings/internal/http/middleware"
	"github.com/venuetix/bookings/internal/service"
)

func (h *Handlers) BookTicketForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "book_ticket.html", "title.book", nil)
}

// BookTicket creates a ticket for the authenticated visitor and hands off to
// the payment page.
func (h *Handlers) BookTicket(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/book_ticket", http.StatusSeeOther)
		return
	}

	userID, err := middleware.Session(r).UserID(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	ticket, err := h.bookings.Book(r.Context(), userID, r.PostFormValue("group_size"))
	switch {
	case errors.Is(err, service.ErrInvalidGroupSize):
		h.flash(r, "danger", "⚠️ Please enter a valid number of visitors.")
		http.Redirect(w, r, "/book_ticket", http.StatusSeeOther)
	case err != nil:
		h.renderError(w, r, err)
	default:
		h.flash(r, "success", "✅ Ticket booked successfully!")
		http.Redirect(w, r, "/payment?ticket_id="+ticket.ID, http.StatusSeeOther)
	}
}

func (h *Handlers) MyTickets(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.Session(r).UserID(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	tickets, err := h.bookings.ListTickets(r.Context(), userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, "my_tickets.html", "title.tickets", tickets)
}

// DeleteTicket cancels one of the visitor's tickets. Unknown ids are a
// no-op.
func (h *Handlers) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.Session(r).UserID(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.bookings.CancelTicket(r.Context(), userID, chi.URLParam(r, "ticket_id")); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/my_tickets", http.StatusSeeOther)
}
