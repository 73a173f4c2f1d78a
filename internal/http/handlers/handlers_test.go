package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/venuetix/bookings/internal/chat"
	"github.com/venuetix/bookings/internal/domain"
	appmw "github.com/venuetix/bookings/internal/http/middleware"
	"github.com/venuetix/bookings/internal/payments"
	"github.com/venuetix/bookings/internal/service"
	"github.com/venuetix/bookings/internal/session"
	"github.com/venuetix/bookings/pkg/config"
)

// ---------- Stub collaborators ----------

type stubUsers struct {
	nextID int64
	byName map[string]*domain.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{nextID: 1, byName: make(map[string]*domain.User)}
}

func (s *stubUsers) Create(_ context.Context, username, passwordHash, mobile string) (*domain.User, error) {
	if _, exists := s.byName[username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	u := &domain.User{ID: s.nextID, Username: username, PasswordHash: passwordHash, Mobile: mobile, CreatedAt: time.Now()}
	s.nextID++
	s.byName[username] = u
	return u, nil
}

func (s *stubUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.byName[username], nil
}

func (s *stubUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range s.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type stubTickets struct {
	tickets map[string]*domain.Ticket
}

func newStubTickets() *stubTickets {
	return &stubTickets{tickets: make(map[string]*domain.Ticket)}
}

func (s *stubTickets) Create(_ context.Context, t *domain.Ticket) error {
	t.CreatedAt = time.Now()
	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *stubTickets) ListByUser(_ context.Context, userID int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range s.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *stubTickets) Delete(_ context.Context, id string, userID int64) error {
	if t, ok := s.tickets[id]; ok && t.UserID == userID {
		delete(s.tickets, id)
	}
	return nil
}

type stubSender struct {
	sent []string
}

func (s *stubSender) Send(_ context.Context, _, body string) error {
	s.sent = append(s.sent, body)
	return nil
}

type stubBus struct {
	subjects []string
}

func (s *stubBus) Publish(_ context.Context, subject string, _ interface{}) error {
	s.subjects = append(s.subjects, subject)
	return nil
}

func (s *stubBus) Close() error { return nil }

type stubGateway struct {
	err error
}

func (s *stubGateway) Charge(_ context.Context, _ string) (*payments.Receipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &payments.Receipt{IntentID: "pi_test", Amount: 1000, Currency: "usd"}, nil
}

type stubMailer struct {
	contacts []string
}

func (s *stubMailer) Send(_, _, _, _, _ string) (string, error) { return "msg-id", nil }

func (s *stubMailer) SendContactMessage(fromName, _, _ string) error {
	s.contacts = append(s.contacts, fromName)
	return nil
}

// ---------- Harness ----------

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	users   *stubUsers
	tickets *stubTickets
	sender  *stubSender
	gateway *stubGateway
	mail    *stubMailer
	bus     *stubBus
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		Session: config.SessionConfig{Secret: "test-secret", TTL: time.Hour, CookieName: "venuetix_session"},
		Stripe:  config.StripeConfig{PublicKey: "pk_test", TicketAmount: 1000, Currency: "usd"},
		Twilio:  config.TwilioConfig{DefaultCountryCode: "+91"},
		Locale:  config.LocaleConfig{Default: "en"},
	}

	app := &testApp{
		users:   newStubUsers(),
		tickets: newStubTickets(),
		sender:  &stubSender{},
		gateway: &stubGateway{},
		mail:    &stubMailer{},
		bus:     &stubBus{},
	}

	h := New(cfg,
		service.NewRegistrationService(app.users, app.sender, app.bus, cfg.Twilio.DefaultCountryCode),
		service.NewAuthService(app.users),
		service.NewBookingService(app.tickets, app.bus),
		app.gateway, chat.NewScripted(), app.mail, app.bus)

	sessions := session.NewManager(rdb, cfg.Session.Secret, cfg.Session.TTL, cfg.Session.CookieName)

	r := chi.NewRouter()
	r.Use(appmw.WithSession(sessions))

	r.Get("/", h.Home)
	r.Get("/contact", h.ContactForm)
	r.Post("/contact", h.Contact)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/verify_otp", h.VerifyOTPForm)
	r.Post("/verify_otp", h.VerifyOTP)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/set_locale/{locale}", h.SetLocale)
	r.Get("/chatbot", h.ChatbotPage)
	r.Post("/chatbot", h.Chatbot)
	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireUser)
		r.Get("/book_ticket", h.BookTicketForm)
		r.Post("/book_ticket", h.BookTicket)
		r.Get("/my_tickets", h.MyTickets)
		r.Post("/delete_ticket/{ticket_id}", h.DeleteTicket)
		r.Get("/payment", h.PaymentForm)
		r.Post("/payment", h.Payment)
	})

	app.server = httptest.NewServer(r)
	t.Cleanup(app.server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	app.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return app
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func wantRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("redirect to %q, want %q", got, location)
	}
}

func (a *testApp) seedUser(t *testing.T, username, password string) *domain.User {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := a.users.Create(context.Background(), username, hash, "+911111111111")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (a *testApp) login(t *testing.T, username, password string) {
	t.Helper()
	resp := a.postForm(t, "/login", url.Values{"username": {username}, "password": {password}})
	wantRedirect(t, resp, "/book_ticket")
}

var otpRegex = regexp.MustCompile(`\d{6}`)

// ---------- Tests ----------

func TestRegisterVerifyLoginFlow(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/register", url.Values{
		"username": {"alice"},
		"password": {"pw1"},
		"mobile":   {"9876543210"},
	})
	wantRedirect(t, resp, "/verify_otp")

	if len(app.sender.sent) != 1 {
		t.Fatalf("expected one SMS, got %d", len(app.sender.sent))
	}
	code := otpRegex.FindString(app.sender.sent[0])
	if code == "" {
		t.Fatalf("no code in dispatched SMS %q", app.sender.sent[0])
	}

	page := body(t, app.get(t, "/verify_otp"))
	if !strings.Contains(page, "OTP sent to your mobile number.") {
		t.Error("verify page missing the dispatch flash")
	}

	resp = app.postForm(t, "/verify_otp", url.Values{"otp": {"000000"}})
	wantRedirect(t, resp, "/verify_otp")
	page = body(t, app.get(t, "/verify_otp"))
	if !strings.Contains(page, "Invalid OTP. Please try again.") {
		t.Error("mismatch flash not shown")
	}

	resp = app.postForm(t, "/verify_otp", url.Values{"otp": {code}})
	wantRedirect(t, resp, "/login")
	page = body(t, app.get(t, "/login"))
	if !strings.Contains(page, "Registration successful! You can now log in.") {
		t.Error("success flash not shown on the login page")
	}

	app.login(t, "alice", "pw1")

	if app.users.byName["alice"] == nil {
		t.Fatal("registered user missing from the store")
	}
}

func TestVerifyWithoutPendingRegistration(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/verify_otp", url.Values{"otp": {"123456"}})
	wantRedirect(t, resp, "/register")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "alice", "pw1")

	resp := app.postForm(t, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	wantRedirect(t, resp, "/login")

	page := body(t, app.get(t, "/login"))
	if !strings.Contains(page, "Invalid username or password.") {
		t.Error("credential flash not shown")
	}
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/book_ticket", "/my_tickets", "/payment"} {
		resp := app.get(t, path)
		wantRedirect(t, resp, "/login")
	}

	page := body(t, app.get(t, "/login"))
	if !strings.Contains(page, "Please log in first.") {
		t.Error("login-required flash not shown")
	}
}

func TestBookTicketFlow(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "alice", "pw1")
	app.login(t, "alice", "pw1")

	resp := app.postForm(t, "/book_ticket", url.Values{"group_size": {"abc"}})
	wantRedirect(t, resp, "/book_ticket")
	page := body(t, app.get(t, "/book_ticket"))
	if !strings.Contains(page, "Please enter a valid number of visitors.") {
		t.Error("invalid group size flash not shown")
	}

	resp = app.postForm(t, "/book_ticket", url.Values{"group_size": {"3"}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/payment?ticket_id=") {
		t.Fatalf("redirect to %q, want the payment page", location)
	}
	ticketID := strings.TrimPrefix(location, "/payment?ticket_id=")

	page = body(t, app.get(t, "/my_tickets"))
	if !strings.Contains(page, ticketID) {
		t.Error("booked ticket not listed")
	}

	resp = app.postForm(t, "/delete_ticket/"+ticketID, nil)
	wantRedirect(t, resp, "/my_tickets")
	page = body(t, app.get(t, "/my_tickets"))
	if strings.Contains(page, ticketID) {
		t.Error("canceled ticket still listed")
	}
}

func TestDeleteTicketMalformedIDIsNoOp(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "alice", "pw1")
	app.login(t, "alice", "pw1")

	resp := app.postForm(t, "/delete_ticket/abc", nil)
	wantRedirect(t, resp, "/my_tickets")
}

func TestTicketsAreScopedToTheirOwner(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "alice", "pw1")
	bob := app.seedUser(t, "bob", "pw2")
	app.login(t, "alice", "pw1")

	resp := app.postForm(t, "/book_ticket", url.Values{"group_size": {"2"}})
	resp.Body.Close()

	// Bob has his own ticket; Alice must not see it.
	app.tickets.Create(context.Background(), &domain.Ticket{ID: "bobs-ticket", UserID: bob.ID, GroupSize: 1})

	page := body(t, app.get(t, "/my_tickets"))
	if strings.Contains(page, "bobs-ticket") {
		t.Error("listing leaks another user's ticket")
	}
}

func TestPaymentSuccess(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "alice", "pw1")
	app.login(t, "alice", "pw1")

	resp := app.postForm(t, "/payment", url.Values{
		"payment_method_id": {"pm_card_visa"},
		"ticket_id":         {"some-ticket"},
	})
	page := body(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(page, "Payment") {
		t.Error("success page not rendered")
	}

	var captured bool
	for _, s := range app.bus.subjects {
		if s == "payment.captured" {
			captured = true
		}
	}
	if !captured {
		t.Error("payment.captured event not published")
	}
}

func TestPaymentFailureFlashesAndRetries(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "alice", "pw1")
	app.login(t, "alice", "pw1")
	app.gateway.err = context.DeadlineExceeded

	resp := app.postForm(t, "/payment", url.Values{
		"payment_method_id": {"pm_card_visa"},
		"ticket_id":         {"some-ticket"},
	})
	wantRedirect(t, resp, "/payment?ticket_id=some-ticket")

	page := body(t, app.get(t, "/payment?ticket_id=some-ticket"))
	if !strings.Contains(page, "An error occurred:") {
		t.Error("failure flash not shown")
	}
}

func TestChatbot(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.client.Post(app.server.URL+"/chatbot", "application/json",
		strings.NewReader(`{"message": "hello"}`))
	if err != nil {
		t.Fatalf("POST /chatbot: %v", err)
	}
	page := body(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(page, `"response"`) || !strings.Contains(page, "Hello!") {
		t.Errorf("unexpected chat reply: %s", page)
	}

	resp, err = app.client.Post(app.server.URL+"/chatbot", "application/json",
		strings.NewReader(`{"message": ""}`))
	if err != nil {
		t.Fatalf("POST /chatbot: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty message: status = %d, want 400", resp.StatusCode)
	}

	resp, err = app.client.Post(app.server.URL+"/chatbot", "application/json",
		strings.NewReader(`not json`))
	if err != nil {
		t.Fatalf("POST /chatbot: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed JSON: status = %d, want 400", resp.StatusCode)
	}
}

func TestSetLocalePersists(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest("GET", app.server.URL+"/set_locale/hi", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Referer", "/about")
	resp, err := app.client.Do(req)
	if err != nil {
		t.Fatalf("GET /set_locale/hi: %v", err)
	}
	wantRedirect(t, resp, "/about")

	page := body(t, app.get(t, "/"))
	if !strings.Contains(page, "होम") {
		t.Error("home page not rendered in Hindi after the locale switch")
	}
}

func TestSetLocaleWithoutRefererGoesHome(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, "/set_locale/en")
	wantRedirect(t, resp, "/")
}

func TestContactRelaysMessage(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, "/contact", url.Values{
		"name":    {"Dana"},
		"email":   {"dana@example.com"},
		"message": {"Do you have group discounts?"},
	})
	page := body(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(page, "Thank") {
		t.Errorf("thanks page not rendered: %.200s", page)
	}

	if len(app.mail.contacts) != 1 || app.mail.contacts[0] != "Dana" {
		t.Errorf("contact message not relayed: %+v", app.mail.contacts)
	}
}

func TestLogoutEndsTheSession(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "alice", "pw1")
	app.login(t, "alice", "pw1")

	resp := app.get(t, "/logout")
	wantRedirect(t, resp, "/login")

	resp = app.get(t, "/my_tickets")
	wantRedirect(t, resp, "/login")
}
