package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/venuetix/bookings/internal/chat"
	"github.com/venuetix/bookings/internal/http/middleware"
	"github.com/venuetix/bookings/internal/i18n"
	"github.com/venuetix/bookings/internal/mailer"
	"github.com/venuetix/bookings/internal/payments"
	"github.com/venuetix/bookings/internal/service"
	"github.com/venuetix/bookings/internal/session"
	"github.com/venuetix/bookings/pkg/config"
	"github.com/venuetix/bookings/pkg/events"
	"github.com/venuetix/bookings/pkg/logger"
	"github.com/venuetix/bookings/web"
)

type Handlers struct {
	config       *config.Config
	registration service.RegistrationService
	auth         service.AuthService
	bookings     service.BookingService
	gateway      payments.Gateway
	responder    chat.Responder
	mail         mailer.Service
	bus          events.Publisher
	templates    map[string]*template.Template
}

func New(
	config *config.Config,
	registration service.RegistrationService,
	auth service.AuthService,
	bookings service.BookingService,
	gateway payments.Gateway,
	responder chat.Responder,
	mail mailer.Service,
	bus events.Publisher,
) *Handlers {
	return &Handlers{
		config:       config,
		registration: registration,
		auth:         auth,
		bookings:     bookings,
		gateway:      gateway,
		responder:    responder,
		mail:         mail,
		bus:          bus,
		templates:    parseTemplates(),
	}
}

var pages = []string{
	"home.html",
	"about.html",
	"services.html",
	"view.html",
	"contact.html",
	"contact_thanks.html",
	"register.html",
	"verify_otp.html",
	"login.html",
	"book_ticket.html",
	"my_tickets.html",
	"payment.html",
	"payment_success.html",
	"chatbot.html",
}

// Each page is parsed together with the layout so pages can share the
// header/footer blocks without colliding on template names.
func parseTemplates() map[string]*template.Template {
	m := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		m[page] = template.Must(template.ParseFS(web.Templates,
			"templates/layout.html", "templates/"+page))
	}
	return m
}

type viewData struct {
	Title    string
	Locale   string
	Tr       i18n.Catalog
	Flashes  []session.Flash
	LoggedIn bool
	Data     any
}

// render executes a page template with the shared view chrome: popped flash
// messages, locale strings, and the authenticated flag.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, page, titleKey string, data any) {
	sess := middleware.Session(r)
	ctx := r.Context()

	locale, err := sess.Locale(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if locale == "" {
		locale = h.config.Locale.Default
	}
	tag := i18n.Match(locale)
	catalog := i18n.Strings(tag)

	flashes, err := sess.Flashes(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	userID, err := sess.UserID(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	tmpl, ok := h.templates[page]
	if !ok {
		logger.ErrorContext(ctx, "Unknown template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, page, viewData{
		Title:    catalog.T(titleKey),
		Locale:   tag.String(),
		Tr:       catalog,
		Flashes:  flashes,
		LoggedIn: userID != 0,
		Data:     data,
	}); err != nil {
		logger.ErrorContext(ctx, "Template execution failed", "page", page, "error", err)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	logger.ErrorContext(r.Context(), "Request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// flash queues a one-shot message, logging rather than failing the request
// when the session write does not stick.
func (h *Handlers) flash(r *http.Request, level, message string) {
	if err := middleware.Session(r).Flash(r.Context(), level, message); err != nil {
		logger.ErrorContext(r.Context(), "Failed to queue flash", "error", err)
	}
}
