// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veritrace/veritrace-backend/internal/config"
	"github.com/veritrace/veritrace-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.CustodianBinding{},
		&models.Product{},
		&models.CustodyEvent{},
		&models.CounterfeitReport{},
		&models.LedgerEvent{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_wallet ON users(wallet_address)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_owner ON products(current_owner)",
		"CREATE INDEX IF NOT EXISTS idx_products_manufacturer ON products(manufacturer_identity)",
		"CREATE INDEX IF NOT EXISTS idx_products_authentic ON products(is_authentic)",

		// Custody event indexes
		"CREATE INDEX IF NOT EXISTS idx_custody_events_product_time ON custody_events(product_id, timestamp)",

		// Report indexes
		"CREATE INDEX IF NOT EXISTS idx_counterfeit_reports_product ON counterfeit_reports(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_counterfeit_reports_manufacturer ON counterfeit_reports(manufacturer_name)",

		// Ledger event feed index
		"CREATE INDEX IF NOT EXISTS idx_ledger_events_kind ON ledger_events(event_kind, id)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Demo custodian identities, stable across restarts so the scan demo works
// against a fresh database.
const (
	demoManufacturerIdentity = "0x1111111111111111111111111111111111111111"
	demoDistributorIdentity  = "0x2222222222222222222222222222222222222222"
	demoConsumerIdentity     = "0x3333333333333333333333333333333333333333"
	demoReporterIdentity     = "0x4444444444444444444444444444444444444444"
)

// SeedDemoData creates the demo accounts and the two well-known scan
// targets: PRD-DEMO-AUTHENTIC and PRD-DEMO-COUNTERFEIT. Idempotent.
func SeedDemoData(db *gorm.DB) error {
	log.Println("Seeding demo data...")

	demoUsers := []struct {
		email    string
		name     string
		role     models.UserRole
		company  string
		identity string
	}{
		{"manufacturer@veritrace.demo", "Demo Manufacturer", models.RoleManufacturer, "Acme Goods Ltd", demoManufacturerIdentity},
		{"distributor@veritrace.demo", "Demo Distributor", models.RoleDistributor, "Fast Freight Co", demoDistributorIdentity},
		{"consumer@veritrace.demo", "Demo Consumer", models.RoleConsumer, "", demoConsumerIdentity},
		{"regulator@veritrace.demo", "Demo Regulator", models.RoleRegulator, "Market Authority", demoReporterIdentity},
	}

	for _, seed := range demoUsers {
		var count int64
		db.Model(&models.User{}).Where("email = ?", seed.email).Count(&count)
		if count > 0 {
			continue
		}

		user := &models.User{
			Email:         seed.email,
			Name:          seed.name,
			Role:          seed.role,
			Company:       seed.company,
			Status:        models.UserStatusActive,
			WalletAddress: seed.identity,
		}
		if err := user.SetPassword("Demo1234"); err != nil {
			return fmt.Errorf("failed to set demo password: %w", err)
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", seed.email, err)
		}

		binding := &models.CustodianBinding{
			UserID:            user.ID,
			CustodianIdentity: seed.identity,
			BoundAt:           time.Now(),
		}
		if err := db.Create(binding).Error; err != nil {
			return fmt.Errorf("failed to bind demo identity for %s: %w", seed.email, err)
		}
	}

	if err := seedDemoProduct(db, "PRD-DEMO-AUTHENTIC", "Premium Leather Handbag", true, ""); err != nil {
		return err
	}
	if err := seedDemoProduct(db, "PRD-DEMO-COUNTERFEIT", "Premium Leather Handbag", false, "Stitching and logo do not match the genuine article"); err != nil {
		return err
	}

	log.Println("Demo data seeding completed")
	return nil
}

func seedDemoProduct(db *gorm.DB, identifier, name string, authentic bool, reportReason string) error {
	var count int64
	db.Model(&models.Product{}).Where("identifier = ?", identifier).Count(&count)
	if count > 0 {
		return nil
	}

	now := time.Now()
	product := &models.Product{
		Identifier:           identifier,
		ProductName:          name,
		ManufacturerName:     "Acme Goods Ltd",
		ProductType:          "Accessories",
		Description:          "Demo product for verification walkthroughs",
		Price:                199.99,
		ManufacturerIdentity: demoManufacturerIdentity,
		CurrentOwner:         demoManufacturerIdentity,
		IsAuthentic:          authentic,
		RegisteredAt:         now,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to seed demo product %s: %w", identifier, err)
		}

		event := &models.CustodyEvent{
			ProductID:    product.ProductID,
			FromIdentity: models.GenesisIdentity,
			ToIdentity:   demoManufacturerIdentity,
			EventType:    models.EventManufactured,
			Location:     "Factory",
			Timestamp:    now,
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to seed demo custody event: %w", err)
		}

		if reportReason != "" {
			report := &models.CounterfeitReport{
				ProductID:        product.ProductID,
				Reason:           reportReason,
				ReporterIdentity: demoReporterIdentity,
				ProductName:      product.ProductName,
				ManufacturerName: product.ManufacturerName,
			}
			if err := tx.Create(report).Error; err != nil {
				return fmt.Errorf("failed to seed demo report: %w", err)
			}
		}
		return nil
	})
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
