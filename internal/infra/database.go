package infra

import (
	"fmt"

	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and sizes the pool.
// Every sale or void holds one connection for its whole DB transaction.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// Models lists every table owned or touched by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Terminal{},
		&model.User{},
		&model.Customer{},
		&model.StoreCreditAccount{},
		&model.Product{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.Payment{},
		&model.GiftCard{},
		&model.GiftCardTransaction{},
		&model.StockMovement{},
		&model.Receipt{},
	}
}

// RunMigrations creates / updates all tables with AutoMigrate, then applies
// the idempotent SQL patches GORM cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs Postgres-only DDL (partial indexes, triggers).
// Each statement is guarded so re-running is a no-op. Other dialects
// (SQLite in tests) skip them.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	patches := []struct{ descr, sql string }{
		{"partial index for the receipt retry cron", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_receipts_pending_retry') THEN
    CREATE INDEX idx_receipts_pending_retry
        ON receipts (next_retry_at)
        WHERE status = 'pending' AND next_retry_at IS NOT NULL;
  END IF;
END $$`},
		{"composite index for transaction listing", `
CREATE INDEX IF NOT EXISTS idx_transactions_status_date
    ON transactions (status, transaction_date DESC)`},
		{"gift card audit rows are append-only", `
CREATE OR REPLACE FUNCTION gift_card_transactions_immutable() RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION 'gift_card_transactions is append-only';
END;
$$ LANGUAGE plpgsql`},
		{"attach append-only trigger", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_gift_card_transactions_immutable') THEN
    CREATE TRIGGER trg_gift_card_transactions_immutable
      BEFORE UPDATE OR DELETE ON gift_card_transactions
      FOR EACH ROW EXECUTE FUNCTION gift_card_transactions_immutable();
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
