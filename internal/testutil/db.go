// Package testutil builds throwaway databases and seed rows for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/agastya71/mysl-pos-project-sub006/internal/infra"
	"github.com/agastya71/mysl-pos-project-sub006/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
// A single connection serializes DB transactions the way row locks do on
// Postgres.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.RunMigrations(db))
	return db
}

func Terminal(t *testing.T, db *gorm.DB, code string) *model.Terminal {
	t.Helper()
	term := &model.Terminal{Code: code, Name: "Register " + code, IsActive: true}
	require.NoError(t, db.WithContext(context.Background()).Create(term).Error)
	return term
}

// User creates an active user whose password is "secret123".
// bcrypt.MinCost keeps the suite fast.
func User(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Product creates an active product. price and taxRate are decimal strings.
func Product(t *testing.T, db *gorm.DB, sku, price, taxRate string, stock int) *model.Product {
	t.Helper()
	barcode := "BC-" + sku
	p := &model.Product{
		SKU:             sku,
		Barcode:         &barcode,
		Name:            "Product " + sku,
		BasePrice:       decimal.RequireFromString(price),
		TaxRate:         decimal.RequireFromString(taxRate),
		QuantityInStock: stock,
		IsActive:        true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func Customer(t *testing.T, db *gorm.DB, name string, email *string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name, Email: email}
	require.NoError(t, db.Create(c).Error)
	return c
}

func StoreCredit(t *testing.T, db *gorm.DB, customerID uuid.UUID, balance string, active bool) *model.StoreCreditAccount {
	t.Helper()
	a := &model.StoreCreditAccount{CustomerID: customerID, Balance: decimal.RequireFromString(balance), IsActive: true}
	require.NoError(t, db.Create(a).Error)
	if !active {
		require.NoError(t, db.Model(a).Update("is_active", false).Error)
		a.IsActive = false
	}
	return a
}

// Stock reads a product's current stock counter.
func Stock(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", productID).Error)
	return p.QuantityInStock
}

// Count returns the number of rows of m matching the optional condition.
func Count(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	stmt := db.Model(m)
	if query != "" {
		stmt = stmt.Where(query, args...)
	}
	require.NoError(t, stmt.Count(&n).Error)
	return n
}
