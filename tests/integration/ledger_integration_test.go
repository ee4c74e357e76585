package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func createAccount(t *testing.T, repo *persistence.GormAccountRepository, name, code string, referrerID *uuid.UUID) *account.Account {
	t.Helper()

	acc, err := account.NewAccount(name, code, "$2a$10$testhash", referrerID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), acc))
	return acc
}

func createPendingDeposit(t *testing.T, repo *persistence.GormTransactionRepository, acc *account.Account, gross float64) *ledger.Transaction {
	t.Helper()

	txn, err := ledger.NewTransaction(
		acc.ID,
		valueobject.NewMoneyBRLFromFloat(gross),
		acc.Fees.DepositPercent,
		acc.Fees.DepositFixed,
	)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), txn))
	return txn
}

func TestSettleDeposit_CreditsBalanceExactlyOnce(t *testing.T) {
	skipWithoutDocker(t)

	db := NewSharedTestDB(t)
	db.CleanTables()
	ctx := context.Background()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)

	acc := createAccount(t, accountRepo, "Ana Souza", "ana", nil)
	txn := createPendingDeposit(t, txRepo, acc, 100.00)

	settlement := ledger.Settlement{
		TransactionID: txn.ID,
		AccountID:     acc.ID,
		GrossAmount:   txn.GrossAmount,
		NetAmount:     txn.NetAmount,
		PaidAt:        time.Now(),
		SlotThreshold: valueobject.NewMoneyBRLFromFloat(1000.00),
	}

	settled, err := txRepo.SettleDeposit(ctx, settlement)
	require.NoError(t, err)
	require.True(t, settled)

	// Redelivery of the same confirmation must be a no-op
	settled, err = txRepo.SettleDeposit(ctx, settlement)
	require.NoError(t, err)
	require.False(t, settled)

	reloaded, err := accountRepo.FindByID(ctx, acc.ID)
	require.NoError(t, err)

	// 100.00 gross at 2% + 0.99 fixed leaves 97.01 net
	require.Equal(t, "97.01", reloaded.AvailableBalance.StringFixed(2))
	require.Equal(t, "100.00", reloaded.TotalVolumeMoved.StringFixed(2))
	require.Equal(t, "0.00", reloaded.CommissionBalance.StringFixed(2))

	paid, err := txRepo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	require.Equal(t, ledger.TransactionPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
}

func TestSettleDeposit_CreditsReferrerCommission(t *testing.T) {
	skipWithoutDocker(t)

	db := NewSharedTestDB(t)
	db.CleanTables()
	ctx := context.Background()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)

	referrer := createAccount(t, accountRepo, "Bruno Lima", "bruno", nil)
	referee := createAccount(t, accountRepo, "Carla Dias", "carla", &referrer.ID)

	txn := createPendingDeposit(t, txRepo, referee, 200.00)

	commission, err := ledger.NewCommission(txn.ID, referrer.ID, referee.ID, txn.GrossAmount, decimal.NewFromFloat(1.0))
	require.NoError(t, err)

	settled, err := txRepo.SettleDeposit(ctx, ledger.Settlement{
		TransactionID: txn.ID,
		AccountID:     referee.ID,
		GrossAmount:   txn.GrossAmount,
		NetAmount:     txn.NetAmount,
		PaidAt:        time.Now(),
		Commission:    commission,
		SlotThreshold: valueobject.NewMoneyBRLFromFloat(1000.00),
	})
	require.NoError(t, err)
	require.True(t, settled)

	// 1% of 200.00
	reloadedReferrer, err := accountRepo.FindByID(ctx, referrer.ID)
	require.NoError(t, err)
	require.Equal(t, "2.00", reloadedReferrer.CommissionBalance.StringFixed(2))
	require.Equal(t, "0.00", reloadedReferrer.AvailableBalance.StringFixed(2))

	stored, err := commissionRepo.FindByTransactionID(ctx, txn.ID)
	require.NoError(t, err)
	require.Equal(t, referrer.ID, stored.ReferrerID)
	require.Equal(t, referee.ID, stored.RefereeID)
	require.Equal(t, "2.00", stored.Amount.StringFixed(2))
	require.Equal(t, ledger.CommissionCredited, stored.Status)
}

func TestSettleDeposit_GrantsReferralSlotOnce(t *testing.T) {
	skipWithoutDocker(t)

	db := NewSharedTestDB(t)
	db.CleanTables()
	ctx := context.Background()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)

	acc := createAccount(t, accountRepo, "Diego Rocha", "diego", nil)
	threshold := valueobject.NewMoneyBRLFromFloat(1000.00)

	// First deposit crosses the cumulative volume threshold
	first := createPendingDeposit(t, txRepo, acc, 1000.00)
	settled, err := txRepo.SettleDeposit(ctx, ledger.Settlement{
		TransactionID: first.ID,
		AccountID:     acc.ID,
		GrossAmount:   first.GrossAmount,
		NetAmount:     first.NetAmount,
		PaidAt:        time.Now(),
		SlotThreshold: threshold,
	})
	require.NoError(t, err)
	require.True(t, settled)

	reloaded, err := accountRepo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.ReferralSlotsGranted)

	// Consume the slot, then settle a second deposit above the
	// threshold: the grant must not repeat
	require.NoError(t, accountRepo.ConsumeReferralSlot(ctx, acc.ID, 1))

	second := createPendingDeposit(t, txRepo, acc, 500.00)
	settled, err = txRepo.SettleDeposit(ctx, ledger.Settlement{
		TransactionID: second.ID,
		AccountID:     acc.ID,
		GrossAmount:   second.GrossAmount,
		NetAmount:     second.NetAmount,
		PaidAt:        time.Now(),
		SlotThreshold: threshold,
	})
	require.NoError(t, err)
	require.True(t, settled)

	reloaded, err = accountRepo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.ReferralSlotsGranted)
	require.Equal(t, 1, reloaded.ReferralSlotsUsed)
	require.Equal(t, "1500.00", reloaded.TotalVolumeMoved.StringFixed(2))
}

func TestMarkExpired_RejectsSettledTransaction(t *testing.T) {
	skipWithoutDocker(t)

	db := NewSharedTestDB(t)
	db.CleanTables()
	ctx := context.Background()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)

	acc := createAccount(t, accountRepo, "Elena Prado", "elena", nil)

	pending := createPendingDeposit(t, txRepo, acc, 50.00)
	require.NoError(t, txRepo.MarkExpired(ctx, pending.ID))

	expired, err := txRepo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, ledger.TransactionExpired, expired.Status)

	paid := createPendingDeposit(t, txRepo, acc, 50.00)
	settled, err := txRepo.SettleDeposit(ctx, ledger.Settlement{
		TransactionID: paid.ID,
		AccountID:     acc.ID,
		GrossAmount:   paid.GrossAmount,
		NetAmount:     paid.NetAmount,
		PaidAt:        time.Now(),
		SlotThreshold: valueobject.NewMoneyBRLFromFloat(1000.00),
	})
	require.NoError(t, err)
	require.True(t, settled)

	err = txRepo.MarkExpired(ctx, paid.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestConsumeReferralSlot_Exhaustion(t *testing.T) {
	skipWithoutDocker(t)

	db := NewSharedTestDB(t)
	db.CleanTables()
	ctx := context.Background()

	accountRepo := persistence.NewGormAccountRepository(db.DB)

	acc := createAccount(t, accountRepo, "Fabio Neri", "fabio", nil)

	// No grant yet
	err := accountRepo.ConsumeReferralSlot(ctx, acc.ID, 1)
	require.ErrorIs(t, err, shared.ErrNoReferralSlots)

	acc.ReferralSlotsGranted = 1
	require.NoError(t, accountRepo.Update(ctx, acc))

	require.NoError(t, accountRepo.ConsumeReferralSlot(ctx, acc.ID, 1))
	err = accountRepo.ConsumeReferralSlot(ctx, acc.ID, 1)
	require.ErrorIs(t, err, shared.ErrNoReferralSlots)

	// A larger grant multiplier frees more slots
	err = accountRepo.ConsumeReferralSlot(ctx, acc.ID, 3)
	require.NoError(t, err)

	// Admins are never exhausted
	admin := createAccount(t, accountRepo, "Gina Alves", "gina", nil)
	admin.Role = account.RoleAdmin
	require.NoError(t, accountRepo.Update(ctx, admin))

	for i := 0; i < 5; i++ {
		require.NoError(t, accountRepo.ConsumeReferralSlot(ctx, admin.ID, 1))
	}
}

func TestSettingsRepository_SaveLoadRoundTrip(t *testing.T) {
	skipWithoutDocker(t)

	db := NewSharedTestDB(t)
	db.CleanTables()
	ctx := context.Background()

	settingsRepo := persistence.NewGormSettingsRepository(db.DB)

	// Empty table falls back to defaults
	loaded, err := settingsRepo.Load(ctx)
	require.NoError(t, err)
	defaults := platform.DefaultSettings()
	require.True(t, loaded.CommissionPercent.Equal(defaults.CommissionPercent))
	require.Equal(t, defaults.MinWithdrawal.StringFixed(2), loaded.MinWithdrawal.StringFixed(2))

	updated := platform.Settings{
		CommissionPercent:       decimal.NewFromFloat(2.5),
		ReferralVolumeThreshold: valueobject.NewMoneyBRLFromFloat(5000.00),
		ReferralSlotsPerGrant:   3,
		MinWithdrawal:           valueobject.NewMoneyBRLFromFloat(25.00),
		MinTransfer:             valueobject.NewMoneyBRLFromFloat(5.00),
	}
	require.NoError(t, settingsRepo.Save(ctx, updated))

	loaded, err = settingsRepo.Load(ctx)
	require.NoError(t, err)
	require.True(t, loaded.CommissionPercent.Equal(updated.CommissionPercent))
	require.Equal(t, "5000.00", loaded.ReferralVolumeThreshold.StringFixed(2))
	require.Equal(t, 3, loaded.ReferralSlotsPerGrant)
	require.Equal(t, "25.00", loaded.MinWithdrawal.StringFixed(2))
	require.Equal(t, "5.00", loaded.MinTransfer.StringFixed(2))
}
