// Package integration exercises the full payment cycle against a real
// database. It uses in-memory SQLite so the suite runs without external
// services; the SQL the repositories emit is the same either way.
package integration

import (
	"fmt"
	"testing"

	"github.com/financeiro/backend/internal/infrastructure/persistence"
	"github.com/financeiro/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestDB wraps a migrated in-memory database for one test
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB opens a fresh in-memory SQLite database and migrates the schema
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	// A named in-memory database with a shared cache, so every pooled
	// connection sees the same data. The name keeps tests isolated.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := persistence.NewSQLiteDatabase(dsn)
	require.NoError(t, err, "Failed to open test database")

	err = db.DB.AutoMigrate(
		&models.SupplierModel{},
		&models.SettlementAccountModel{},
		&models.PurchaseModel{},
		&models.PaymentModel{},
	)
	require.NoError(t, err, "Failed to migrate test schema")

	t.Cleanup(func() {
		_ = db.Close()
	})

	return &TestDB{DB: db.DB}
}
