package persistence

import (
	"context"
	"database/sql"
	"testing"

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

func newMockAccountRepository(t *testing.T) (*GormAccountRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormAccountRepository(gormDB), mock, mockDB
}

func TestGormAccountRepository_FindByID(t *testing.T) {
	t.Run("finds existing account", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "name", "current_balance", "version",
		}).AddRow(
			accountID, "operations", decimal.NewFromFloat(2500.75), 3,
		)

		mock.ExpectQuery(`SELECT \* FROM "settlement_accounts" WHERE id = \$1`).
			WithArgs(accountID, 1).
			WillReturnRows(rows)

		account, err := repo.FindByID(context.Background(), accountID)

		assert.NoError(t, err)
		assert.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, 3, account.Version)
		assert.True(t, account.CurrentBalance.Equal(decimal.NewFromFloat(2500.75)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent account", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "settlement_accounts" WHERE id = \$1`).
			WithArgs(accountID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		account, err := repo.FindByID(context.Background(), accountID)

		assert.Error(t, err)
		assert.Nil(t, account)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_SaveWithLock(t *testing.T) {
	t.Run("debits balance at expected version", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		account, err := ledger.NewSettlementAccount("operations", decimal.NewFromInt(1000))
		require.NoError(t, err)
		require.NoError(t, account.Debit(decimal.NewFromInt(300)))

		mock.ExpectExec(`UPDATE "settlement_accounts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithLock(context.Background(), account)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when another debit won the race", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		account, err := ledger.NewSettlementAccount("operations", decimal.NewFromInt(1000))
		require.NoError(t, err)
		require.NoError(t, account.Debit(decimal.NewFromInt(300)))

		mock.ExpectExec(`UPDATE "settlement_accounts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), account)

		assert.Error(t, err)
		domainErr, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.ErrConcurrencyConflict.Code, domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements AccountRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		var _ ledger.AccountRepository = repo
	})
}
