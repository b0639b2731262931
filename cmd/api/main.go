package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrovia/farmstead/internal/cache"
	"github.com/agrovia/farmstead/internal/http/handlers"
	mw "github.com/agrovia/farmstead/internal/http/middleware"
	"github.com/agrovia/farmstead/internal/jobs"
	"github.com/agrovia/farmstead/internal/mailer"
	"github.com/agrovia/farmstead/internal/migrate"
	"github.com/agrovia/farmstead/internal/repo/postgres"
	"github.com/agrovia/farmstead/internal/service"
	"github.com/agrovia/farmstead/pkg/config"
	"github.com/agrovia/farmstead/pkg/database"
	"github.com/agrovia/farmstead/pkg/events"
	"github.com/agrovia/farmstead/pkg/logger"
	pkgmw "github.com/agrovia/farmstead/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrate.Up(ctx, cfg.Database.URL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", "error", err)
		} else {
			publisher = natsPub
			defer natsPub.Close()
		}
	}

	var redisClient *redis.Client
	if opts, err := redis.ParseURL(cfg.Redis.URL); err != nil {
		logger.Warn("invalid Redis URL, login rate limiting disabled", "error", err)
	} else {
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	resetRepo := postgres.NewResetRepository(pool)

	// OTP codes live in process memory only; a restart simply forces a
	// fresh code.
	otpStore := cache.NewTTLCache(cfg.Auth.OTPTTL, 5*time.Minute)
	defer otpStore.Close()

	mailSvc := buildMailer(cfg)

	// Services
	creds := service.NewCredentialService(userRepo, adminRepo, sessionRepo, publisher, cfg)
	resets := service.NewResetService(userRepo, resetRepo, mailSvc, publisher, cfg)
	otp := service.NewOTPService(otpStore, mailSvc)

	h := handlers.New(creds, resets, otp, cfg)

	loginLimiter := mw.NewRateLimiter(redisClient, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)

	r := chi.NewRouter()
	r.Use(pkgmw.RequestID)
	r.Use(pkgmw.Logging)
	r.Use(pkgmw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.Origin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.With(loginLimiter.Middleware()).Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
			r.Post("/otp/send", h.SendOTP)
			r.Post("/otp/verify", h.VerifyOTP)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireSession(creds))
				r.Post("/logout", h.Logout)
				r.Get("/me", h.Me)
				r.Patch("/me", h.UpdateMe)
				r.Delete("/account", h.DeleteAccount)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(loginLimiter.Middleware()).Post("/login", h.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAdmin(cfg.Auth.JWTSecret))
				r.Get("/users", h.ListUsers)
				r.Get("/users/{id}", h.GetUser)
				r.Delete("/users/{id}", h.DeleteUser)
			})
		})
	})

	// Hourly sweep of expired sessions and reset tokens.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	sweeper := jobs.NewSweeper(sessionRepo, resetRepo, time.Hour)
	go sweeper.Run(sweepCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		stopSweep()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting farmstead API", "port", cfg.Server.Port, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, "Farmstead", cfg.Email.SMTPFrom)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS,
	)
}
