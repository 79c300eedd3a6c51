package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/careops/hms-api/internal/config"
	"github.com/careops/hms-api/internal/domain"
	"github.com/careops/hms-api/internal/domain/appointment"
	"github.com/careops/hms-api/internal/domain/department"
	"github.com/careops/hms-api/internal/domain/doctor"
	mr "github.com/careops/hms-api/internal/domain/medicalrecord"
	"github.com/careops/hms-api/internal/domain/notification"
	"github.com/careops/hms-api/internal/domain/patient"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:    true,
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&department.Department{},
		&doctor.Doctor{},
		&patient.Patient{},
		&patient.Attachment{},
		&appointment.Appointment{},
		&mr.MedicalRecord{},
		&notification.Notification{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// createIndexes adds the indexes AutoMigrate cannot express. The partial
// unique slot index is the arbiter for double bookings: two concurrent
// booking requests can both pass the pre-insert checks, but only one insert
// commits. Cancelled rows are excluded so a cancelled slot can be rebooked.
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot
			ON appointments (doctor_id, appointment_date, start_time)
			WHERE status <> 'cancelled' AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_patient_doctor_date
			ON appointments (patient_id, doctor_id, appointment_date)
			WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread
			ON notifications (user_id, created_at)
			WHERE is_read = false`,
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

// Seed creates the bootstrap administrative account from configuration when
// it does not already exist. In development an empty password skips seeding
// rather than creating an account nobody can safely use.
func Seed(db *gorm.DB, cfg config.AuthConfig, log *zap.Logger) error {
	if cfg.AdminPassword == "" {
		log.Warn("admin seed skipped: AUTH_ADMIN_PASSWORD not set")
		return nil
	}

	var existing domain.User
	err := db.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &domain.User{
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	log.Info("admin account seeded", zap.String("username", cfg.AdminUsername))
	return nil
}
