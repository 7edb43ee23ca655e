package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinichq/clinic/internal/config"
	"github.com/clinichq/clinic/internal/domain/appointment"
	"github.com/clinichq/clinic/internal/domain/approval"
	"github.com/clinichq/clinic/internal/domain/billing"
	"github.com/clinichq/clinic/internal/domain/booking"
	"github.com/clinichq/clinic/internal/domain/patient"
	"github.com/clinichq/clinic/internal/domain/staff"
	"github.com/clinichq/clinic/internal/platform/auth"
	"github.com/clinichq/clinic/internal/platform/db"
	"github.com/clinichq/clinic/internal/platform/middleware"
	"github.com/clinichq/clinic/internal/platform/notification"
)

var migrationsDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic appointment booking and billing server",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateUp(cmd.Context())
		},
	}
	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateStatus(cmd.Context())
		},
	}
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)

	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	// Platform
	notifier := notification.NewManager(
		logEmailSender{logger},
		logSMSSender{logger},
		notification.NewTemplateEngine(),
	)
	txRunner := db.NewTxRunner(pool)

	// Repositories
	staffRepo := staff.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	bookingRepo := booking.NewRepoPG(pool)
	apptRepo := appointment.NewRepoPG(pool)
	visitRepo := appointment.NewVisitRepoPG(pool)
	billingRepo := billing.NewRepoPG(pool)

	// Services
	resolver := staff.NewAttendingResolver(staffRepo)
	staffSvc := staff.NewService(staffRepo)
	patientSvc := patient.NewService(patientRepo)
	bookingSvc := booking.NewService(bookingRepo, staffRepo, notifier, logger)
	apptSvc := appointment.NewService(apptRepo, visitRepo)
	billingSvc := billing.NewService(billingRepo)
	approvalSvc := approval.NewService(txRunner, bookingRepo, patientRepo, staffRepo,
		resolver, apptRepo, visitRepo, billingRepo, notifier, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "clinic": cfg.ClinicName})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	public := e.Group("/api/v1")
	api := e.Group("/api/v1")
	if cfg.JWTSecret != "" {
		api.Use(auth.JWTMiddleware(cfg.JWTSecret))
	} else {
		logger.Warn().Msg("JWT_SECRET not set, using development auth")
		api.Use(auth.DevAuthMiddleware())
	}

	booking.NewHandler(bookingSvc).RegisterRoutes(public, api)
	approval.NewHandler(approvalSvc).RegisterRoutes(api)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	staff.NewHandler(staffSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func migrateUp(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, 2, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	count, err := db.NewMigrator(pool, migrationsDir).Up(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("applied", count).Msg("migrations complete")
	return nil
}

func migrateStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, 2, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	statuses, err := db.NewMigrator(pool, migrationsDir).Status(ctx)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied " + s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
	}
	return nil
}

// logSMSSender and logEmailSender stand in for a real gateway; messages land
// in the server log until an SMS/mail provider is configured.
type logSMSSender struct{ logger zerolog.Logger }

func (s logSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info().Str("to", to).Str("body", body).Msg("sms")
	return nil
}

type logEmailSender struct{ logger zerolog.Logger }

func (s logEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Msg("email")
	return nil
}
