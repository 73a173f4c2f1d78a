package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/venuetix/bookings/pkg/events"
	"github.com/venuetix/bookings/pkg/logger"
)

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home.html", "title.home", nil)
}

func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "about.html", "nav.about", nil)
}

func (h *Handlers) Services(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "services.html", "nav.services", nil)
}

func (h *Handlers) View(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "view.html", "nav.view", nil)
}

func (h *Handlers) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "contact.html", "title.contact", nil)
}

// Contact relays the message to the contact inbox. Relay failure is
// tolerated: the visitor still gets the acknowledgement page.
func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	message := strings.TrimSpace(r.PostFormValue("message"))
	if name == "" || email == "" || message == "" {
		h.flash(r, "danger", "Please fill in all fields.")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	if err := h.mail.SendContactMessage(name, email, message); err != nil {
		logger.WarnContext(r.Context(), "Failed to relay contact message", "error", err)
	}

	if err := h.bus.Publish(r.Context(), events.ContactReceived, events.ContactReceivedEvent{
		Name:       name,
		Email:      email,
		ReceivedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "Failed to publish contact.received", "error", err)
	}

	h.render(w, r, "contact_thanks.html", "title.contact", nil)
}
