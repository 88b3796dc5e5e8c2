package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"casino/games"
	"casino/models"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			select {
			case eventReceived <- balanceEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: models.TransactionTypeWin,
		ChangeAmount:    500,
	}

	// Publish to the transactional bus as the coordinator would mid-operation.
	transactionalBus.Publish(testEvent)

	// Flush simulates the operation committing.
	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent, receivedEvent)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan WagerSettledEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeWagerSettled, func(ctx context.Context, event Event) {
		defer wg.Done()
		if settled, ok := event.(WagerSettledEvent); ok {
			eventsReceived <- settled
		}
	})

	sent := []WagerSettledEvent{
		{UserID: 1, Game: games.KindRoulette, Amount: 100, Outcome: games.OutcomeWin, Payout: 200},
		{UserID: 2, Game: games.KindSlots, Amount: 50, Outcome: games.OutcomeLose, Payout: 0},
		{UserID: 3, Game: games.KindBowling, Amount: 25, Outcome: games.OutcomePush, Payout: 25},
	}

	for _, event := range sent {
		transactionalBus.Publish(event)
	}

	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	wg.Wait()

	receivedEvents := make([]WagerSettledEvent, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			receivedEvents = append(receivedEvents, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(receivedEvents))
		}
	}

	assert.Len(t, receivedEvents, 3)

	// Handlers run concurrently, so order may vary.
	userIDs := make(map[int64]bool)
	for _, received := range receivedEvents {
		userIDs[received.UserID] = true
	}

	assert.True(t, userIDs[1])
	assert.True(t, userIDs[2])
	assert.True(t, userIDs[3])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      1000,
		NewBalance:      500,
		TransactionType: models.TransactionTypeBet,
		ChangeAmount:    -500,
	})

	// Discard instead of flush, as after a failed operation.
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
		// Expected - no event should be received
	}
}
