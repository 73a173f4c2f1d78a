package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/venuetix/bookings/internal/chat"
	"github.com/venuetix/bookings/internal/http/handlers"
	appmw "github.com/venuetix/bookings/internal/http/middleware"
	"github.com/venuetix/bookings/internal/mailer"
	"github.com/venuetix/bookings/internal/payments"
	"github.com/venuetix/bookings/internal/repo/postgres"
	"github.com/venuetix/bookings/internal/service"
	"github.com/venuetix/bookings/internal/session"
	"github.com/venuetix/bookings/internal/sms"
	"github.com/venuetix/bookings/pkg/config"
	"github.com/venuetix/bookings/pkg/database"
	"github.com/venuetix/bookings/pkg/events"
	"github.com/venuetix/bookings/pkg/logger"
	mw "github.com/venuetix/bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		logger.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Connect to Redis for sessions
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// External collaborators
	var smsSender sms.Sender
	if cfg.Twilio.DevMode {
		smsSender = sms.NewDevSender()
	} else {
		smsSender = sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	}

	var gateway payments.Gateway
	if cfg.Stripe.SecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.TicketAmount, cfg.Stripe.Currency)
	} else {
		gateway = payments.NewDevGateway(cfg.Stripe.TicketAmount, cfg.Stripe.Currency)
	}

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail, cfg.Email.ContactInbox)
	}

	// Initialize repositories and services
	usersRepo := postgres.NewUsersRepo(pool)
	ticketsRepo := postgres.NewTicketsRepo(pool)

	registrationService := service.NewRegistrationService(usersRepo, smsSender, eventBus, cfg.Twilio.DefaultCountryCode)
	authService := service.NewAuthService(usersRepo)
	bookingService := service.NewBookingService(ticketsRepo, eventBus)

	sessions := session.NewManager(rdb, cfg.Session.Secret, cfg.Session.TTL, cfg.Session.CookieName)

	h := handlers.New(cfg, registrationService, authService, bookingService,
		gateway, chat.NewScripted(), mail, eventBus)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appmw.WithSession(sessions))

	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/services", h.Services)
	r.Get("/view", h.View)

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

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireUser)
		r.Get("/book_ticket", h.BookTicketForm)
		r.Post("/book_ticket", h.BookTicket)
		r.Get("/my_tickets", h.MyTickets)
		r.Post("/delete_ticket/{ticket_id}", h.DeleteTicket)
		r.Get("/payment", h.PaymentForm)
		r.Post("/payment", h.Payment)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
