package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/venuetix/bookings/internal/domain"
	"github.com/venuetix/bookings/internal/http/middleware"
	"github.com/venuetix/bookings/internal/i18n"
	"github.com/venuetix/bookings/internal/service"
	"github.com/venuetix/bookings/pkg/logger"
)

func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", "title.register", nil)
}

// Register stages the registration and dispatches the verification code.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	req := &domain.RegisterRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Mobile:   r.PostFormValue("mobile"),
	}

	err := h.registration.Begin(r.Context(), middleware.Session(r), req)
	switch {
	case errors.Is(err, service.ErrDispatchFailed):
		// The staged code survives the failed dispatch; the visitor can
		// resubmit to restage with a fresh one.
		h.flash(r, "danger", "Error sending OTP. Please try again.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	case err != nil:
		h.flash(r, "danger", err.Error())
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	default:
		h.flash(r, "info", "OTP sent to your mobile number.")
		http.Redirect(w, r, "/verify_otp", http.StatusSeeOther)
	}
}

func (h *Handlers) VerifyOTPForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "verify_otp.html", "title.verify", nil)
}

// VerifyOTP commits the staged registration when the submitted code matches.
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/verify_otp", http.StatusSeeOther)
		return
	}

	_, err := h.registration.Verify(r.Context(), middleware.Session(r), r.PostFormValue("otp"))
	switch {
	case errors.Is(err, service.ErrCodeMismatch):
		h.flash(r, "danger", "Invalid OTP. Please try again.")
		http.Redirect(w, r, "/verify_otp", http.StatusSeeOther)
	case errors.Is(err, service.ErrNothingPending):
		h.flash(r, "warning", "No registration in progress. Please register first.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	case errors.Is(err, domain.ErrUsernameTaken):
		h.flash(r, "danger", "That username is already taken.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
	case err != nil:
		h.renderError(w, r, err)
	default:
		h.flash(r, "success", "Registration successful! You can now log in.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", "title.login", nil)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flash(r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	req := &domain.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	_, err := h.auth.Login(r.Context(), middleware.Session(r), req)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.flash(r, "danger", "Invalid username or password.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case err != nil:
		h.flash(r, "danger", err.Error())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/book_ticket", http.StatusSeeOther)
	}
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.Session(r)); err != nil {
		logger.ErrorContext(r.Context(), "Failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SetLocale stores the locale preference and bounces back to the referring
// page.
func (h *Handlers) SetLocale(w http.ResponseWriter, r *http.Request) {
	tag := i18n.Match(chi.URLParam(r, "locale"))
	if err := middleware.Session(r).SetLocale(r.Context(), tag.String()); err != nil {
		h.renderError(w, r, err)
		return
	}

	target := r.Referer()
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
