package repository

import (
	"context"
	"testing"
	"time"

	"casino/models"
	"casino/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("record assigns id", func(t *testing.T) {
		tx := &models.Transaction{
			UserID:       100,
			Type:         models.TransactionTypeBet,
			ChangeAmount: -50,
			WalletBefore: 1000,
			WalletAfter:  950,
			Game:         "roulette",
			Metadata:     map[string]any{"spec": "red"},
			CreatedAt:    now,
		}
		require.NoError(t, repo.Record(ctx, tx))
		assert.NotZero(t, tx.ID)
	})

	t.Run("recent returns newest first", func(t *testing.T) {
		counterparty := int64(200)
		transfers := []*models.Transaction{
			{UserID: 100, Type: models.TransactionTypeWin, ChangeAmount: 100, WalletBefore: 950, WalletAfter: 1050, Game: "roulette", CreatedAt: now},
			{UserID: 100, Type: models.TransactionTypeTransferOut, ChangeAmount: -25, WalletBefore: 1050, WalletAfter: 1025, CounterpartyID: &counterparty, CreatedAt: now},
		}
		for _, tx := range transfers {
			require.NoError(t, repo.Record(ctx, tx))
		}

		recent, err := repo.GetRecentByUser(ctx, 100, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)

		assert.Equal(t, models.TransactionTypeTransferOut, recent[0].Type)
		require.NotNil(t, recent[0].CounterpartyID)
		assert.Equal(t, int64(200), *recent[0].CounterpartyID)
		assert.Empty(t, recent[0].Game)

		assert.Equal(t, models.TransactionTypeWin, recent[1].Type)
		assert.Nil(t, recent[1].CounterpartyID)
		assert.Equal(t, "roulette", recent[1].Game)
	})

	t.Run("metadata round trips", func(t *testing.T) {
		recent, err := repo.GetRecentByUser(ctx, 100, 10)
		require.NoError(t, err)
		oldest := recent[len(recent)-1]
		assert.Equal(t, map[string]any{"spec": "red"}, oldest.Metadata)
	})

	t.Run("limit respected", func(t *testing.T) {
		recent, err := repo.GetRecentByUser(ctx, 100, 1)
		require.NoError(t, err)
		assert.Len(t, recent, 1)
	})

	t.Run("unknown user yields empty", func(t *testing.T) {
		recent, err := repo.GetRecentByUser(ctx, 404, 10)
		require.NoError(t, err)
		assert.Empty(t, recent)
	})
}
