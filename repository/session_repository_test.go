package repository

import (
	"context"
	"testing"
	"time"

	"casino/games"
	"casino/random"
	"casino/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(userID int64, lastAction time.Time) *games.BlackjackSession {
	deck := games.NewDeck(random.NewSequence())
	session := &games.BlackjackSession{
		ID:           uuid.New(),
		UserID:       userID,
		Wager:        100,
		State:        games.SessionInProgress,
		StartedAt:    lastAction,
		LastActionAt: lastAction,
	}
	session.Player = append(session.Player, deck.Draw(), deck.Draw())
	session.Dealer = append(session.Dealer, deck.Draw(), deck.Draw())
	session.Deck = deck
	return session
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSessionRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("get absent returns nil", func(t *testing.T) {
		session, err := repo.Get(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("save and get round trips state", func(t *testing.T) {
		saved := testSession(100, now)
		require.NoError(t, repo.Save(ctx, saved))

		loaded, err := repo.Get(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, saved.ID, loaded.ID)
		assert.Equal(t, saved.Wager, loaded.Wager)
		assert.Equal(t, saved.Player, loaded.Player)
		assert.Equal(t, saved.Dealer, loaded.Dealer)
		assert.Len(t, loaded.Deck.Cards, 48)
		assert.Equal(t, games.SessionInProgress, loaded.State)
		assert.True(t, saved.LastActionAt.Equal(loaded.LastActionAt))
	})

	t.Run("save upserts on second write", func(t *testing.T) {
		updated := testSession(100, now.Add(time.Minute))
		require.NoError(t, repo.Save(ctx, updated))

		loaded, err := repo.Get(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, updated.ID, loaded.ID)
	})

	t.Run("list idle honors cutoff", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, testSession(200, now.Add(-time.Hour))))

		idle, err := repo.ListIdle(ctx, now.Add(-10*time.Minute))
		require.NoError(t, err)
		require.Len(t, idle, 1)
		assert.Equal(t, int64(200), idle[0].UserID)

		idle, err = repo.ListIdle(ctx, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Len(t, idle, 2)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, 200))
		require.NoError(t, repo.Delete(ctx, 200))

		session, err := repo.Get(ctx, 200)
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}
