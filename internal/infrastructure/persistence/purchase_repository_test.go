package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPurchaseRepository creates a GormPurchaseRepository with a mocked SQL connection
func newMockPurchaseRepository(t *testing.T) (*GormPurchaseRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPurchaseRepository(gormDB), mock, mockDB
}

func TestGormPurchaseRepository_FindByID(t *testing.T) {
	t.Run("finds existing purchase", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		purchaseID := uuid.New()
		supplierID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "supplier_id", "description", "total_amount",
			"paid_amount", "open_amount", "status", "purchased_at", "version",
		}).AddRow(
			purchaseID, supplierID, "office chairs", decimal.NewFromInt(1000),
			decimal.NewFromInt(400), decimal.NewFromInt(600), "PARTIAL", time.Now(), 2,
		)

		mock.ExpectQuery(`SELECT \* FROM "purchases" WHERE id = \$1`).
			WithArgs(purchaseID, 1).
			WillReturnRows(rows)

		purchase, err := repo.FindByID(context.Background(), purchaseID)

		assert.NoError(t, err)
		assert.NotNil(t, purchase)
		assert.Equal(t, purchaseID, purchase.ID)
		assert.Equal(t, supplierID, purchase.SupplierID)
		assert.Equal(t, ledger.PurchaseStatusPartial, purchase.Status)
		assert.True(t, purchase.OpenAmount.Equal(decimal.NewFromInt(600)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent purchase", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		purchaseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "purchases" WHERE id = \$1`).
			WithArgs(purchaseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		purchase, err := repo.FindByID(context.Background(), purchaseID)

		assert.Error(t, err)
		assert.Nil(t, purchase)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_FindPayableBySupplier(t *testing.T) {
	t.Run("returns open purchases oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		older := uuid.New()
		newer := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "supplier_id", "description", "total_amount",
			"paid_amount", "open_amount", "status", "purchased_at", "version",
		}).
			AddRow(older, supplierID, "january invoice", decimal.NewFromInt(200),
				decimal.Zero, decimal.NewFromInt(200), "OPEN", time.Now().Add(-48*time.Hour), 1).
			AddRow(newer, supplierID, "february invoice", decimal.NewFromInt(150),
				decimal.NewFromInt(50), decimal.NewFromInt(100), "PARTIAL", time.Now().Add(-24*time.Hour), 2)

		mock.ExpectQuery(`SELECT \* FROM "purchases" WHERE supplier_id = \$1 AND status IN \(\$2,\$3\) ORDER BY purchased_at ASC`).
			WithArgs(supplierID, ledger.PurchaseStatusOpen, ledger.PurchaseStatusPartial).
			WillReturnRows(rows)

		purchases, err := repo.FindPayableBySupplier(context.Background(), supplierID)

		assert.NoError(t, err)
		assert.Len(t, purchases, 2)
		assert.Equal(t, older, purchases[0].ID)
		assert.Equal(t, newer, purchases[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when supplier has no open purchases", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "supplier_id", "description", "total_amount",
			"paid_amount", "open_amount", "status", "purchased_at", "version",
		})

		mock.ExpectQuery(`SELECT \* FROM "purchases" WHERE supplier_id = \$1 AND status IN \(\$2,\$3\)`).
			WithArgs(supplierID, ledger.PurchaseStatusOpen, ledger.PurchaseStatusPartial).
			WillReturnRows(rows)

		purchases, err := repo.FindPayableBySupplier(context.Background(), supplierID)

		assert.NoError(t, err)
		assert.Empty(t, purchases)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_SaveWithLock(t *testing.T) {
	t.Run("updates row at expected version", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		purchase, err := ledger.NewPurchase(uuid.New(), "desks", decimal.NewFromInt(500), time.Now(), uuid.New())
		require.NoError(t, err)
		_, err = purchase.ApplyPayment(uuid.New(), decimal.NewFromInt(200), uuid.New(), "")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "purchases" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithLock(context.Background(), purchase)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version moved", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		purchase, err := ledger.NewPurchase(uuid.New(), "desks", decimal.NewFromInt(500), time.Now(), uuid.New())
		require.NoError(t, err)
		_, err = purchase.ApplyPayment(uuid.New(), decimal.NewFromInt(200), uuid.New(), "")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "purchases" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), purchase)

		assert.Error(t, err)
		domainErr, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.ErrConcurrencyConflict.Code, domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_Count(t *testing.T) {
	t.Run("counts purchases for supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "purchases" WHERE supplier_id = \$1`).
			WithArgs(supplierID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		filter := shared.Filter{Filters: map[string]interface{}{"supplier_id": supplierID}}
		count, err := repo.Count(context.Background(), filter)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements PurchaseRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockPurchaseRepository(t)
		defer mockDB.Close()

		var _ ledger.PurchaseRepository = repo
	})
}
