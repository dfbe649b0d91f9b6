package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-operations-backend/internal/config"
	"hospital-operations-backend/internal/database"
	"hospital-operations-backend/internal/handler"
	"hospital-operations-backend/internal/logger"
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"
	"hospital-operations-backend/internal/riskscorer"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "hospital-operations-backend"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-ops",
		Short: "Hospital operations backend: admissions, billing and staff scheduling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(lockSchedulesCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info("database migrated")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the procedure catalog, sample rooms and an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return database.Seed(db, log)
		},
	}
}

func lockSchedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock-schedules",
		Short: "Lock shifts dated before today; with --every, keep running on an interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			locker := service.NewScheduleLockService(repository.NewScheduleRepo(db), log)
			every, _ := cmd.Flags().GetDuration("every")
			if !cmd.Flags().Changed("every") {
				n, err := locker.LockPast(cmd.Context(), time.Now())
				if err != nil {
					return err
				}
				log.Info("locked past shifts", zap.Int64("count", n))
				return nil
			}
			if every <= 0 {
				every = cfg.Scheduling.LockInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			locker.Run(ctx, every)
			return nil
		},
	}
	cmd.Flags().Duration("every", 0, "Repeat at this interval until interrupted (0 uses SCHEDULE_LOCK_INTERVAL)")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			utils.InitJWT(cfg.JWT.AccessSecret, cfg.JWT.AccessTokenExpiry)

			staffID, _ := cmd.Flags().GetUint("staff-id")
			role, _ := cmd.Flags().GetString("role")
			if !models.Role(role).Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := utils.GenerateAccessToken(staffID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Uint("staff-id", 0, "Staff member id carried by the token")
	cmd.Flags().String("role", string(models.RoleAdmin), "Role carried by the token")
	_ = cmd.MarkFlagRequired("staff-id")
	return cmd
}

// bootstrap loads configuration, the logger and the database shared by every command
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Error("database unavailable", zap.Error(err))
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func runServer() error {
	// 1. Load configuration, logger and database
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("configuration loaded", zap.String("db_driver", cfg.Database.Driver))

	// 2. Initialize JWT utilities with config
	utils.InitJWT(cfg.JWT.AccessSecret, cfg.JWT.AccessTokenExpiry)

	// 3. Ensure schema
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// 4. Initialize repositories
	staffRepo := repository.NewStaffRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	procedureRepo := repository.NewProcedureRepo(db)
	admissionRepo := repository.NewAdmissionRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	swapRepo := repository.NewSwapRepo(db)
	unavailabilityRepo := repository.NewUnavailabilityRepo(db)
	predictionRepo := repository.NewPredictionRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// 5. Initialize services
	roomService := service.NewRoomService(roomRepo, auditRepo, log)
	billingService := service.NewBillingService(db, service.NewCalculator(cfg.Billing), cfg.Billing.DefaultMethod,
		admissionRepo, patientRepo, procedureRepo, paymentRepo, auditRepo, log)
	scheduleService := service.NewScheduleService(scheduleRepo, staffRepo, auditRepo, log)
	admissionService := service.NewAdmissionService(db, admissionRepo, patientRepo, staffRepo, roomRepo, procedureRepo,
		auditRepo, billingService, scheduleService, cfg.Scheduling.RequireOnShift, log)
	swapService := service.NewSwapService(db, swapRepo, scheduleRepo, staffRepo, auditRepo, log)
	unavailabilityService := service.NewUnavailabilityService(db, unavailabilityRepo, scheduleRepo, auditRepo, log)
	patientService := service.NewPatientService(db, patientRepo, admissionRepo, auditRepo, log)
	staffService := service.NewStaffService(staffRepo, auditRepo)
	scorer := riskscorer.NewClient(cfg.RiskScorer.URL, cfg.RiskScorer.Timeout, cfg.RiskScorer.Retries, log)
	riskService := service.NewRiskService(scorer, patientRepo, predictionRepo, auditRepo, log)
	dashboardService := service.NewDashboardService(patientRepo, admissionRepo, roomRepo, paymentRepo, swapRepo, predictionRepo)

	// 6. Setup Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// 7. Register handlers and routes
	router := handler.NewRouter(cfg, log, handler.Handlers{
		Admission:      handler.NewAdmissionHandler(admissionService, billingService),
		Billing:        handler.NewBillingHandler(billingService, dashboardService),
		Patient:        handler.NewPatientHandler(patientService, riskService),
		Room:           handler.NewRoomHandler(roomService),
		Schedule:       handler.NewScheduleHandler(scheduleService),
		Staff:          handler.NewStaffHandler(staffService),
		Swap:           handler.NewSwapHandler(swapService),
		Unavailability: handler.NewUnavailabilityHandler(unavailabilityService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 8. Start server and wait for shutdown
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server exited")
	return nil
}
