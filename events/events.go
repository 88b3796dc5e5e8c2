package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"casino/games"
	"casino/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeWagerSettled   EventType = "wager_settled"
	EventTypeSessionStarted EventType = "session_started"
	EventTypeRewardClaimed  EventType = "reward_claimed"
	EventTypeFraudFlagged   EventType = "fraud_flagged"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a wallet change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a lazily created account
type AccountCreatedEvent struct {
	UserID         int64
	InitialBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// WagerSettledEvent represents a wager that reached a terminal outcome
type WagerSettledEvent struct {
	UserID  int64
	Game    games.Kind
	Amount  int64
	Outcome string
	Payout  int64
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// SessionStartedEvent represents a multi-step game session opening
type SessionStartedEvent struct {
	UserID int64
	Game   games.Kind
	Amount int64
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// RewardClaimedEvent represents a successful periodic reward claim
type RewardClaimedEvent struct {
	UserID int64
	Kind   models.RewardKind
	Amount int64
}

func (e RewardClaimedEvent) Type() EventType {
	return EventTypeRewardClaimed
}

// FraudFlaggedEvent represents an advisory fraud flag being raised
type FraudFlaggedEvent struct {
	UserID   int64
	Reason   models.FraudReason
	Severity models.FraudSeverity
	Detail   string
}

func (e FraudFlaggedEvent) Type() EventType {
	return EventTypeFraudFlagged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events until the operation
// that produced them has committed. Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after the operation commits
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission to avoid issues with the
	// originating context expiring; events are processed independently.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after a rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
