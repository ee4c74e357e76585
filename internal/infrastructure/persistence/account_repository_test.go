package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockAccountRepo(t *testing.T) (*GormAccountRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

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

func accountRows(id uuid.UUID, code string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "name", "code", "password_hash",
		"role", "status", "available_balance", "commission_balance",
		"total_volume_moved", "referral_slots_granted", "referral_slots_used",
		"fee_percent", "fee_fixed",
	}).AddRow(id, now, now, "Maria Souza", code, "hash",
		"partner", "active", "150.00", "12.50",
		"1200.00", 1, 0, "2.0", "0.99")
}

func TestAccountFindByCode(t *testing.T) {
	t.Run("returns the account", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepo(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("AB12CD", 1).
			WillReturnRows(accountRows(id, "AB12CD"))

		acc, err := repo.FindByCode(context.Background(), "AB12CD")

		require.NoError(t, err)
		assert.Equal(t, id, acc.ID)
		assert.Equal(t, account.RolePartner, acc.Role)
		assert.True(t, acc.AvailableBalance.Amount().Equal(decimal.NewFromFloat(150.00)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown code", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepo(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByCode(context.Background(), "ZZZZZZ")

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConsumeReferralSlot(t *testing.T) {
	t.Run("claims a free slot", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepo(t)
		defer mockDB.Close()

		referrerID := uuid.New()
		mock.ExpectExec(`UPDATE "accounts" SET "referral_slots_used"=referral_slots_used \+ 1`).
			WithArgs(referrerID, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ConsumeReferralSlot(context.Background(), referrerID, 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when every slot is taken", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepo(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "accounts" SET "referral_slots_used"=referral_slots_used \+ 1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ConsumeReferralSlot(context.Background(), uuid.New(), 1)

		assert.ErrorIs(t, err, shared.ErrNoReferralSlots)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountExistsByCode(t *testing.T) {
	t.Run("reports an existing code", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepo(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "accounts" WHERE code = \$1`).
			WithArgs("AB12CD").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByCode(context.Background(), "AB12CD")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
