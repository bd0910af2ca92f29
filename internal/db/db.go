package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

// Connect opens the postgres pool. Driver errors are translated to gorm
// sentinels (ErrDuplicatedKey) so repositories can match on them.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("database connected")
	return gdb, nil
}

// Migrate creates the tables and the indexes AutoMigrate cannot express.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.ClientProfile{},
		&models.FreelancerProfile{},
		&models.Project{},
		&models.Proposal{},
		&models.Review{},
		&models.Notification{},
	); err != nil {
		return err
	}

	// One pending or accepted proposal per freelancer per project.
	return gdb.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_proposals_active_per_freelancer
		ON proposals (project_id, freelancer_id)
		WHERE status IN ('pending', 'accepted')`).Error
}
