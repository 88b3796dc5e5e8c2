package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"casino/config"
	"casino/cooldown"
	"casino/events"
	"casino/fraud"
	"casino/games"
	"casino/ledger"
	"casino/models"
	"casino/random"
)

var (
	// ErrSessionAlreadyActive means the user already has a live session for
	// the requested game; the new wager is rejected before any debit.
	ErrSessionAlreadyActive = errors.New("a game session is already active")
	// ErrNoActiveSession means an action arrived with no session to apply
	// it to.
	ErrNoActiveSession = errors.New("no active game session")
	// ErrInternalInconsistency marks faults after currency moved; the
	// operation was repaired (refund) or needs operator attention.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// CoordinatorConfig carries the tunables for the transaction coordinator.
type CoordinatorConfig struct {
	StartingBalance    int64
	MinBet             int64
	MaxBet             int64
	DailyWagerLimit    int64
	SessionIdleTimeout time.Duration
	Rewards            cooldown.Config
	Fraud              fraud.Config
}

// DefaultCoordinatorConfig is the house rule set.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		StartingBalance:    0,
		MinBet:             10,
		MaxBet:             10000,
		DailyWagerLimit:    50000,
		SessionIdleTimeout: 10 * time.Minute,
		Rewards:            cooldown.DefaultConfig(),
		Fraud:              fraud.DefaultConfig(),
	}
}

// CoordinatorConfigFrom maps the application config onto coordinator
// tunables.
func CoordinatorConfigFrom(cfg *config.Config) CoordinatorConfig {
	out := DefaultCoordinatorConfig()
	out.StartingBalance = cfg.StartingBalance
	out.MinBet = cfg.MinBet
	out.MaxBet = cfg.MaxBet
	out.DailyWagerLimit = cfg.DailyWagerLimit
	out.SessionIdleTimeout = cfg.SessionIdleTimeout
	out.Rewards = cooldown.Config{
		WorkWindow:   cfg.WorkCooldown,
		WorkAmount:   cfg.WorkReward,
		DailyWindow:  cfg.DailyCooldown,
		DailyAmount:  cfg.DailyReward,
		WeeklyWindow: cfg.WeeklyCooldown,
		WeeklyAmount: cfg.WeeklyReward,
	}
	return out
}

// Coordinator sequences every operation that moves currency: it validates,
// debits, runs the game, credits the settlement and records the paper
// trail. It is the only component allowed to call the ledger.
type Coordinator struct {
	ledger       *ledger.Ledger
	validator    *WagerValidator
	cooldowns    *cooldown.Store
	registry     *games.Registry
	monitor      *fraud.Monitor
	sessions     SessionRepository
	transactions TransactionRepository
	bets         BetRepository
	flags        FraudFlagRepository
	bus          *events.Bus
	src          random.Source
	idleTimeout  time.Duration
	now          func() time.Time
	log          *logrus.Entry

	mu           sync.Mutex
	sessionLocks map[int64]*sync.Mutex
}

// NewCoordinator wires the coordinator. The account store is wrapped in a
// fresh ledger so all balance access is serialized through one place.
func NewCoordinator(
	cfg CoordinatorConfig,
	accounts ledger.AccountStore,
	sessions SessionRepository,
	transactions TransactionRepository,
	bets BetRepository,
	flags FraudFlagRepository,
	bus *events.Bus,
	src random.Source,
) *Coordinator {
	c := &Coordinator{
		ledger:       ledger.New(accounts, cfg.StartingBalance),
		validator:    NewWagerValidator(cfg.MinBet, cfg.MaxBet, cfg.DailyWagerLimit),
		cooldowns:    cooldown.New(cfg.Rewards),
		registry:     games.NewRegistry(),
		monitor:      fraud.NewMonitor(cfg.Fraud, flags),
		sessions:     sessions,
		transactions: transactions,
		bets:         bets,
		flags:        flags,
		bus:          bus,
		src:          src,
		idleTimeout:  cfg.SessionIdleTimeout,
		now:          func() time.Time { return time.Now().UTC() },
		log:          logrus.WithField("component", "coordinator"),
		sessionLocks: make(map[int64]*sync.Mutex),
	}
	c.ledger.OnAccountCreate(func(account *models.Account) {
		bus.Emit(context.Background(), events.AccountCreatedEvent{
			UserID:         account.UserID,
			InitialBalance: account.Wallet,
		})
	})
	return c
}

// sessionLock serializes session operations per user, independent of the
// ledger's account locks.
func (c *Coordinator) sessionLock(userID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.sessionLocks[userID]
	if !ok {
		m = &sync.Mutex{}
		c.sessionLocks[userID] = m
	}
	return m
}

// record appends a transaction and queues the matching balance event. A
// failed history write is logged, never propagated: the balance change it
// describes has already committed.
func (c *Coordinator) record(ctx context.Context, bus *events.TransactionalBus, tx *models.Transaction) {
	tx.CreatedAt = c.now()
	if err := c.transactions.Record(ctx, tx); err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"user_id": tx.UserID,
			"type":    tx.Type,
		}).Error("failed to record transaction")
	}
	bus.Publish(events.BalanceChangeEvent{
		UserID:          tx.UserID,
		OldBalance:      tx.WalletBefore,
		NewBalance:      tx.WalletAfter,
		TransactionType: tx.Type,
		ChangeAmount:    tx.ChangeAmount,
	})
}

// refund returns a debited stake after a fault downstream of the debit.
func (c *Coordinator) refund(ctx context.Context, bus *events.TransactionalBus, userID, amount int64, game string) {
	account, err := c.ledger.Credit(ctx, userID, amount)
	if err != nil {
		// Nothing left to do automatically; the transaction log shows the
		// unmatched debit.
		c.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  amount,
		}).Error("refund failed, manual reconciliation required")
		return
	}
	c.record(ctx, bus, &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionTypeRefund,
		ChangeAmount: amount,
		WalletBefore: account.Wallet - amount,
		WalletAfter:  account.Wallet,
		Game:         game,
	})
}

// PlaceWager validates and plays one round. The debit, limit bookkeeping
// and validation happen atomically under the account lock; only then does
// the engine run.
func (c *Coordinator) PlaceWager(ctx context.Context, userID int64, kind games.Kind, spec string, amount int64) (*WagerResult, error) {
	engine, err := c.registry.Engine(kind)
	if err != nil {
		return nil, err
	}
	// Malformed specs and unimplemented games are rejected before any
	// currency is reserved.
	if err := engine.ValidateSpec(spec); err != nil {
		return nil, err
	}
	now := c.now()
	if err := c.monitor.AllowWager(userID, now); err != nil {
		return nil, err
	}

	if kind == games.KindBlackjack {
		lock := c.sessionLock(userID)
		lock.Lock()
		defer lock.Unlock()

		existing, err := c.sessions.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: user %d", ErrSessionAlreadyActive, userID)
		}
	}

	bus := events.NewTransactionalBus(c.bus)
	var before, after int64
	account, err := c.ledger.Update(ctx, userID, func(a *models.Account) error {
		if err := c.validator.Validate(a, amount, now); err != nil {
			return err
		}
		before = a.Wallet
		a.Wallet -= amount
		c.validator.RecordWager(a, amount, now)
		after = a.Wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.record(ctx, bus, &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionTypeBet,
		ChangeAmount: -amount,
		WalletBefore: before,
		WalletAfter:  after,
		Game:         string(kind),
	})

	round, err := engine.Start(amount, spec, c.src)
	if err != nil {
		// The spec was validated, so a start failure is an engine fault:
		// give the stake back.
		c.refund(ctx, bus, userID, amount, string(kind))
		_ = bus.Flush(ctx)
		return nil, fmt.Errorf("%w: %s engine: %v", ErrInternalInconsistency, kind, err)
	}

	if round.Session != nil {
		round.Session.UserID = userID
		if err := c.sessions.Save(ctx, round.Session); err != nil {
			c.refund(ctx, bus, userID, amount, string(kind))
			_ = bus.Flush(ctx)
			return nil, fmt.Errorf("save session: %w", err)
		}
		bus.Publish(events.SessionStartedEvent{UserID: userID, Game: kind, Amount: amount})
		_ = bus.Flush(ctx)

		view := round.Session.View()
		return &WagerResult{Session: &view, Account: account}, nil
	}

	result, err := c.settle(ctx, bus, userID, amount, *round.Settlement, now)
	if err != nil {
		return nil, err
	}
	_ = bus.Flush(ctx)
	return result, nil
}

// settle credits the payout, writes the bet record and runs the fraud
// checks. The round is already decided when this runs.
func (c *Coordinator) settle(ctx context.Context, bus *events.TransactionalBus, userID, amount int64, settlement games.Settlement, now time.Time) (*WagerResult, error) {
	total := settlement.TotalPayout()
	var account *models.Account
	var err error
	if total > 0 {
		txType := models.TransactionTypeWin
		if settlement.Outcome == games.OutcomePush {
			txType = models.TransactionTypePush
		}
		var before, after int64
		account, err = c.ledger.Update(ctx, userID, func(a *models.Account) error {
			before = a.Wallet
			a.Wallet += total
			after = a.Wallet
			return nil
		})
		if err != nil {
			// The stake is gone and the payout is not: this needs operator
			// attention, not silent continuation.
			return nil, fmt.Errorf("%w: credit settlement for user %d: %v", ErrInternalInconsistency, userID, err)
		}
		c.record(ctx, bus, &models.Transaction{
			UserID:       userID,
			Type:         txType,
			ChangeAmount: total,
			WalletBefore: before,
			WalletAfter:  after,
			Game:         string(settlement.Kind),
		})
	} else {
		account, err = c.ledger.Account(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	bet := &models.Bet{
		UserID:     userID,
		Game:       string(settlement.Kind),
		Amount:     amount,
		BetSpec:    settlement.BetSpec,
		Outcome:    models.BetOutcome(settlement.Outcome),
		Multiplier: settlement.Multiplier,
		Payout:     total,
		Detail:     settlement.Detail,
		CreatedAt:  now,
	}
	if err := c.bets.Record(ctx, bet); err != nil {
		c.log.WithError(err).WithField("user_id", userID).Error("failed to record bet")
	}

	for _, flag := range c.monitor.ObserveBet(ctx, bet, now) {
		bus.Publish(events.FraudFlaggedEvent{
			UserID:   flag.UserID,
			Reason:   flag.Reason,
			Severity: flag.Severity,
			Detail:   flag.Detail,
		})
	}
	bus.Publish(events.WagerSettledEvent{
		UserID:  userID,
		Game:    settlement.Kind,
		Amount:  amount,
		Outcome: settlement.Outcome,
		Payout:  total,
	})

	settled := settlement
	return &WagerResult{Settlement: &settled, Account: account}, nil
}

// ApplyAction advances the user's blackjack session.
func (c *Coordinator) ApplyAction(ctx context.Context, userID int64, action games.Action) (*WagerResult, error) {
	now := c.now()
	lock := c.sessionLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNoActiveSession, userID)
	}

	bus := events.NewTransactionalBus(c.bus)

	if action == games.ActionInsurance {
		result, err := c.takeInsurance(ctx, bus, session, now)
		if err != nil {
			return nil, err
		}
		_ = bus.Flush(ctx)
		return result, nil
	}

	settlement, err := session.Apply(action, c.src, now)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		if err := c.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		view := session.View()
		account, err := c.ledger.Account(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &WagerResult{Session: &view, Account: account}, nil
	}

	// Remove the stored session before crediting: if the delete fails the
	// store still holds the pre-action state and the action can simply be
	// retried.
	if err := c.sessions.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	result, err := c.settle(ctx, bus, userID, session.Wager, *settlement, now)
	if err != nil {
		return nil, err
	}
	_ = bus.Flush(ctx)
	return result, nil
}

// takeInsurance debits the side bet and marks the session. Callers hold the
// session lock.
func (c *Coordinator) takeInsurance(ctx context.Context, bus *events.TransactionalBus, session *games.BlackjackSession, now time.Time) (*WagerResult, error) {
	if !session.CanInsure() {
		return nil, fmt.Errorf("%w: insurance not available", games.ErrInvalidAction)
	}
	stake := session.InsuranceStake()
	account, err := c.ledger.Debit(ctx, session.UserID, stake)
	if err != nil {
		return nil, err
	}
	if err := session.TakeInsurance(now); err != nil {
		c.refund(ctx, bus, session.UserID, stake, string(games.KindBlackjack))
		return nil, err
	}
	if err := c.sessions.Save(ctx, session); err != nil {
		c.refund(ctx, bus, session.UserID, stake, string(games.KindBlackjack))
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.record(ctx, bus, &models.Transaction{
		UserID:       session.UserID,
		Type:         models.TransactionTypeInsurance,
		ChangeAmount: -stake,
		WalletBefore: account.Wallet + stake,
		WalletAfter:  account.Wallet,
		Game:         string(games.KindBlackjack),
	})
	view := session.View()
	return &WagerResult{Session: &view, Account: account}, nil
}

// ActiveSession returns the live session view or nil.
func (c *Coordinator) ActiveSession(ctx context.Context, userID int64) (*games.SessionView, error) {
	session, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	view := session.View()
	return &view, nil
}

// SettleIdleSessions force-stands sessions that have sat idle past the
// timeout, so abandoned rounds cannot hold stakes forever. Each session is
// settled exactly once even if a player action races the sweep.
func (c *Coordinator) SettleIdleSessions(ctx context.Context) (int, error) {
	now := c.now()
	idle, err := c.sessions.ListIdle(ctx, now.Add(-c.idleTimeout))
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}

	settled := 0
	for _, stale := range idle {
		ok, err := c.settleIdleSession(ctx, stale.UserID, now)
		if err != nil {
			c.log.WithError(err).WithField("user_id", stale.UserID).Error("failed to settle idle session")
			continue
		}
		if ok {
			settled++
		}
	}
	return settled, nil
}

func (c *Coordinator) settleIdleSession(ctx context.Context, userID int64, now time.Time) (bool, error) {
	lock := c.sessionLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// Reload under the lock: the player may have acted, or another sweep
	// may have settled it already.
	session, err := c.sessions.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if session == nil || session.LastActionAt.After(now.Add(-c.idleTimeout)) {
		return false, nil
	}

	settlement, err := session.Apply(games.ActionStand, c.src, now)
	if err != nil {
		return false, err
	}
	if err := c.sessions.Delete(ctx, userID); err != nil {
		return false, err
	}

	bus := events.NewTransactionalBus(c.bus)
	if _, err := c.settle(ctx, bus, userID, session.Wager, *settlement, now); err != nil {
		return false, err
	}
	_ = bus.Flush(ctx)

	c.log.WithFields(logrus.Fields{
		"user_id": userID,
		"outcome": settlement.Outcome,
	}).Info("idle session force-stood")
	return true, nil
}

// ClaimReward pays a periodic reward. The cooldown check and the credit
// share one account update, so a double claim can never double-pay.
func (c *Coordinator) ClaimReward(ctx context.Context, userID int64, kind models.RewardKind) (int64, *models.Account, error) {
	now := c.now()
	bus := events.NewTransactionalBus(c.bus)

	var amount, before, after int64
	account, err := c.ledger.Update(ctx, userID, func(a *models.Account) error {
		claimed, err := c.cooldowns.Claim(a, kind, now)
		if err != nil {
			return err
		}
		amount = claimed
		before = a.Wallet
		a.Wallet += amount
		after = a.Wallet
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	c.record(ctx, bus, &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionType(kind),
		ChangeAmount: amount,
		WalletBefore: before,
		WalletAfter:  after,
	})
	bus.Publish(events.RewardClaimedEvent{UserID: userID, Kind: kind, Amount: amount})
	_ = bus.Flush(ctx)
	return amount, account, nil
}

// Transfer moves wallet funds between users, subject to the transfer rate
// cap.
func (c *Coordinator) Transfer(ctx context.Context, fromID, toID, amount int64) error {
	now := c.now()
	if err := c.monitor.CheckTransfer(ctx, fromID, now); err != nil {
		return err
	}

	result, err := c.ledger.Transfer(ctx, fromID, toID, amount)
	if err != nil {
		return err
	}

	bus := events.NewTransactionalBus(c.bus)
	c.record(ctx, bus, &models.Transaction{
		UserID:         fromID,
		Type:           models.TransactionTypeTransferOut,
		ChangeAmount:   -amount,
		WalletBefore:   result.From.Wallet + amount,
		WalletAfter:    result.From.Wallet,
		CounterpartyID: &toID,
	})
	c.record(ctx, bus, &models.Transaction{
		UserID:         toID,
		Type:           models.TransactionTypeTransferIn,
		ChangeAmount:   amount,
		WalletBefore:   result.To.Wallet - amount,
		WalletAfter:    result.To.Wallet,
		CounterpartyID: &fromID,
	})
	_ = bus.Flush(ctx)
	return nil
}

// Deposit moves wallet funds into the bank.
func (c *Coordinator) Deposit(ctx context.Context, userID, amount int64) (*models.Account, error) {
	account, err := c.ledger.Deposit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	bus := events.NewTransactionalBus(c.bus)
	c.record(ctx, bus, &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionTypeDeposit,
		ChangeAmount: -amount,
		WalletBefore: account.Wallet + amount,
		WalletAfter:  account.Wallet,
	})
	_ = bus.Flush(ctx)
	return account, nil
}

// Withdraw moves bank funds back into the wallet.
func (c *Coordinator) Withdraw(ctx context.Context, userID, amount int64) (*models.Account, error) {
	account, err := c.ledger.Withdraw(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	bus := events.NewTransactionalBus(c.bus)
	c.record(ctx, bus, &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionTypeWithdraw,
		ChangeAmount: amount,
		WalletBefore: account.Wallet - amount,
		WalletAfter:  account.Wallet,
	})
	_ = bus.Flush(ctx)
	return account, nil
}

// Balance returns the account, creating it on first interaction.
func (c *Coordinator) Balance(ctx context.Context, userID int64) (*models.Account, error) {
	return c.ledger.Account(ctx, userID)
}

// Leaderboard ranks accounts by combined wallet and bank balance.
func (c *Coordinator) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	return c.ledger.Leaderboard(ctx, limit)
}

// History returns recent transactions, newest first.
func (c *Coordinator) History(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	return c.transactions.GetRecentByUser(ctx, userID, limit)
}

// BetHistory returns recent settled bets, newest first.
func (c *Coordinator) BetHistory(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	return c.bets.GetRecentByUser(ctx, userID, limit)
}

// Flags returns the advisory fraud flags on an account.
func (c *Coordinator) Flags(ctx context.Context, userID int64) ([]*models.FraudFlag, error) {
	return c.flags.GetByUser(ctx, userID)
}
