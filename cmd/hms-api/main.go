package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/careops/hms-api/internal/config"
	"github.com/careops/hms-api/internal/handler/v1"
	"github.com/careops/hms-api/internal/repository"
	"github.com/careops/hms-api/internal/service"
	"github.com/careops/hms-api/pkg/auth"
	"github.com/careops/hms-api/pkg/database"
	"github.com/careops/hms-api/pkg/logger"
	"github.com/careops/hms-api/pkg/metrics"
	"github.com/careops/hms-api/pkg/storage"
	"github.com/careops/hms-api/pkg/tracer"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(db, log); err != nil {
		return err
	}
	if err := database.Seed(db, cfg.Auth, log); err != nil {
		return err
	}

	meter := metrics.NewCollector("hms")
	poolGaugeDone := make(chan struct{})
	defer close(poolGaugeDone)
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-poolGaugeDone:
				return
			case <-ticker.C:
				meter.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
			}
		}
	}()

	blobs, err := storage.NewDiskStore(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)

	userRepo := repository.NewUserRepo(db)
	apptRepo := repository.NewAppointmentRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	doctorRepo := repository.NewDoctorRepo(db)
	deptRepo := repository.NewDepartmentRepo(db)
	recordRepo := repository.NewMedicalRecordRepo(db)
	notifRepo := repository.NewNotificationRepo(db)
	attachRepo := repository.NewAttachmentRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	auditSvc := service.NewAuditService(auditRepo, log)
	notifSvc := service.NewNotificationService(notifRepo, userRepo, meter, log)

	deps := v1.Dependencies{
		Config: cfg,
		Log:    log,
		JWT:    jwtManager,
		Meter:  meter,

		Auth:          service.NewAuthService(userRepo, jwtManager, auditSvc, log),
		Users:         service.NewUserService(userRepo, doctorRepo, patientRepo, auditSvc, log),
		Appointments:  service.NewAppointmentService(apptRepo, doctorRepo, notifSvc, auditSvc, meter, log),
		Patients:      service.NewPatientService(patientRepo, auditSvc, meter, log),
		Doctors:       service.NewDoctorService(doctorRepo, auditSvc, log),
		Departments:   service.NewDepartmentService(deptRepo, auditSvc, log),
		Records:       service.NewMedicalRecordService(recordRepo, auditSvc, log),
		Notifications: notifSvc,
		Attachments:   service.NewAttachmentService(attachRepo, patientRepo, blobs, cfg.Storage.MaxUploadBytes, auditSvc, meter, log),
		Dashboard:     service.NewDashboardService(patientRepo, doctorRepo, apptRepo),
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      v1.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	// Drain the async writers after in-flight requests finish.
	notifSvc.Shutdown()
	auditSvc.Shutdown()

	log.Info("server stopped")
	return nil
}
