package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino/models"
	"casino/repository/memory"
)

func newTestLedger(starting int64) (*Ledger, *memory.AccountStore) {
	store := memory.NewAccountStore()
	return New(store, starting), store
}

func TestAccountCreatedLazily(t *testing.T) {
	ledger, store := newTestLedger(100)
	ctx := context.Background()

	account, err := ledger.Account(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Wallet)
	assert.Equal(t, int64(0), account.Bank)

	stored, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, stored, "first read persists the account")
}

func TestCreditAndDebit(t *testing.T) {
	ledger, _ := newTestLedger(0)
	ctx := context.Background()

	account, err := ledger.Credit(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.Wallet)

	account, err = ledger.Debit(ctx, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), account.Wallet)
}

func TestDebitInsufficientFundsLeavesBalance(t *testing.T) {
	ledger, _ := newTestLedger(50)
	ctx := context.Background()

	_, err := ledger.Debit(ctx, 1, 51)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	account, err := ledger.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), account.Wallet)
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	ledger, _ := newTestLedger(100)
	ctx := context.Background()

	for _, amount := range []int64{0, -1} {
		_, err := ledger.Credit(ctx, 1, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = ledger.Debit(ctx, 1, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = ledger.Transfer(ctx, 1, 2, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestConcurrentDebitsNeverOversell(t *testing.T) {
	ledger, _ := newTestLedger(50)
	ctx := context.Background()

	_, err := ledger.Account(ctx, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Debit(ctx, 1, 1); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, successes, "exactly the covered debits succeed")
	account, err := ledger.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Wallet)
}

func TestDepositAndWithdraw(t *testing.T) {
	ledger, _ := newTestLedger(1000)
	ctx := context.Background()

	account, err := ledger.Deposit(ctx, 1, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(400), account.Wallet)
	assert.Equal(t, int64(600), account.Bank)
	assert.Equal(t, int64(1000), account.Total(), "moving between wallet and bank conserves total")

	account, err = ledger.Withdraw(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.Wallet)
	assert.Equal(t, int64(500), account.Bank)

	_, err = ledger.Withdraw(ctx, 1, 501)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = ledger.Deposit(ctx, 1, 501)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestTransferMovesFunds(t *testing.T) {
	ledger, _ := newTestLedger(100)
	ctx := context.Background()

	result, err := ledger.Transfer(ctx, 1, 2, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.From.Wallet)
	assert.Equal(t, int64(140), result.To.Wallet)
}

func TestTransferInsufficientFunds(t *testing.T) {
	ledger, _ := newTestLedger(10)
	ctx := context.Background()

	_, err := ledger.Transfer(ctx, 1, 2, 11)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	a, err := ledger.Account(ctx, 1)
	require.NoError(t, err)
	b, err := ledger.Account(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(10), a.Wallet)
	assert.Equal(t, int64(10), b.Wallet)
}

func TestTransferToSelfRejected(t *testing.T) {
	ledger, _ := newTestLedger(100)
	_, err := ledger.Transfer(context.Background(), 7, 7, 10)
	assert.ErrorIs(t, err, ErrSameAccount)
}

func TestOpposingTransfersDoNotDeadlock(t *testing.T) {
	ledger, _ := newTestLedger(1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ledger.Transfer(ctx, 1, 2, 1) //nolint:errcheck
		}()
		go func() {
			defer wg.Done()
			ledger.Transfer(ctx, 2, 1, 1) //nolint:errcheck
		}()
	}
	wg.Wait()

	a, err := ledger.Account(ctx, 1)
	require.NoError(t, err)
	b, err := ledger.Account(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), a.Wallet+b.Wallet, "transfers conserve total currency")
}

func TestLeaderboardOrdering(t *testing.T) {
	ledger, _ := newTestLedger(0)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, 3, 500)
	require.NoError(t, err)
	_, err = ledger.Credit(ctx, 1, 500)
	require.NoError(t, err)
	_, err = ledger.Credit(ctx, 2, 900)
	require.NoError(t, err)
	// User 4 splits the same total across wallet and bank.
	_, err = ledger.Credit(ctx, 4, 500)
	require.NoError(t, err)
	_, err = ledger.Deposit(ctx, 4, 300)
	require.NoError(t, err)

	entries, err := ledger.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, int64(2), entries[0].UserID)
	// Equal totals rank by user ID ascending.
	assert.Equal(t, int64(1), entries[1].UserID)
	assert.Equal(t, int64(3), entries[2].UserID)
	assert.Equal(t, int64(4), entries[3].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(500), entries[3].Total)
}

func TestLeaderboardLimit(t *testing.T) {
	ledger, _ := newTestLedger(0)
	ctx := context.Background()
	for i := int64(1); i <= 5; i++ {
		_, err := ledger.Credit(ctx, i, i*10)
		require.NoError(t, err)
	}

	entries, err := ledger.Leaderboard(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(5), entries[0].UserID)
}

func TestLeaderboardIdempotent(t *testing.T) {
	ledger, _ := newTestLedger(0)
	ctx := context.Background()
	for i := int64(1); i <= 4; i++ {
		_, err := ledger.Credit(ctx, i, 100)
		require.NoError(t, err)
	}

	first, err := ledger.Leaderboard(ctx, 0)
	require.NoError(t, err)
	second, err := ledger.Leaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// failingStore wraps a real store and fails saves for one account, for
// exercising the transfer rollback path.
type failingStore struct {
	AccountStore
	failUserID int64
	armed      bool
}

func (f *failingStore) Save(ctx context.Context, account *models.Account) error {
	if f.armed && account.UserID == f.failUserID {
		return fmt.Errorf("disk on fire")
	}
	return f.AccountStore.Save(ctx, account)
}

func TestTransferRollsBackOnCreditFailure(t *testing.T) {
	inner := memory.NewAccountStore()
	store := &failingStore{AccountStore: inner, failUserID: 2}
	ledger := New(store, 100)
	ctx := context.Background()

	// Create both accounts before arming the failure.
	_, err := ledger.Account(ctx, 1)
	require.NoError(t, err)
	_, err = ledger.Account(ctx, 2)
	require.NoError(t, err)
	store.armed = true

	_, err = ledger.Transfer(ctx, 1, 2, 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))

	store.armed = false
	a, err := ledger.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), a.Wallet, "debited side restored")
}

func TestUpdateErrorLeavesAccountUntouched(t *testing.T) {
	ledger, _ := newTestLedger(100)
	ctx := context.Background()

	boom := errors.New("rule violated")
	_, err := ledger.Update(ctx, 1, func(a *models.Account) error {
		a.Wallet = 0
		return boom
	})
	assert.ErrorIs(t, err, boom)

	account, err := ledger.Account(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Wallet)
}
