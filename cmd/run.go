package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"casino/config"
	"casino/database"
	"casino/events"
	"casino/random"
	"casino/repository"
	"casino/service"
)

// Run wires the casino engine together and keeps it alive until the context
// is cancelled. The chat frontend lives in a separate process and talks to
// the Casino service; this process owns the database and the idle-session
// sweep.
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	logrus.Info("starting casino engine")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	logrus.Info("database connection established")

	eventBus := events.NewBus()

	src := random.New()
	if cfg.FairServerSeed != "" {
		fair := random.NewFair(cfg.FairServerSeed, "house")
		logrus.WithField("seed_hash", fair.SeedHash()).Info("provably fair source armed")
		go rotateFairSeed(ctx, fair)
		src = fair
	}

	casino := service.NewCoordinator(
		service.CoordinatorConfigFrom(cfg),
		repository.NewAccountRepository(db),
		repository.NewSessionRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewBetRepository(db),
		repository.NewFraudFlagRepository(db),
		eventBus,
		src,
	)

	logrus.WithField("environment", cfg.Environment).Info("casino engine running")
	sweepIdleSessions(ctx, casino, cfg.SessionIdleTimeout)

	logrus.Info("shutdown complete")
	return nil
}

// sweepIdleSessions periodically force-stands abandoned blackjack rounds so
// their wagers settle instead of sitting in limbo. Blocks until ctx ends.
func sweepIdleSessions(ctx context.Context, casino service.Casino, idleTimeout time.Duration) {
	interval := idleTimeout / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			settled, err := casino.SettleIdleSessions(ctx)
			if err != nil {
				logrus.WithError(err).Warn("idle session sweep failed")
				continue
			}
			if settled > 0 {
				logrus.WithField("settled", settled).Info("settled idle blackjack sessions")
			}
		}
	}
}

// rotateFairSeed retires the server seed daily. The retired seed is logged
// so players can verify the rounds played under it against the hash
// commitment published when it was armed.
func rotateFairSeed(ctx context.Context, fair *random.FairSource) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			retired := fair.Rotate(random.NewServerSeed())
			logrus.WithFields(logrus.Fields{
				"disclosed_seed": retired,
				"next_seed_hash": fair.SeedHash(),
			}).Info("rotated provably fair server seed")
		}
	}
}

func configureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
