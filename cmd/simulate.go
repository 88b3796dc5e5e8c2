package cmd

import (
	"flag"
	"fmt"
	"time"

	"casino/games"
	"casino/random"
)

// Simulate runs a Monte Carlo return-to-player analysis over the game
// engines. It exists to sanity-check paytables after any rules change:
// every game should sit below 100% RTP but not egregiously so.
func Simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	trials := fs.Int("trials", 100000, "rounds per game")
	wager := fs.Int64("wager", 100, "wager per round")
	seed := fs.Int64("seed", time.Now().UnixNano(), "rng seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src := random.NewSeeded(*seed)
	registry := games.NewRegistry()

	fmt.Printf("casino RTP simulation: %d trials per game, wager %d, seed %d\n\n", *trials, *wager, *seed)

	specs := []struct {
		kind games.Kind
		spec string
	}{
		{games.KindRoulette, "red"},
		{games.KindRoulette, "single:17"},
		{games.KindRoulette, "dozen:2"},
		{games.KindSlots, ""},
		{games.KindBowling, ""},
		{games.KindBlackjack, ""},
	}

	for _, s := range specs {
		engine, err := registry.Engine(s.kind)
		if err != nil {
			return err
		}
		if err := simulateGame(engine, s.spec, *trials, *wager, src); err != nil {
			return fmt.Errorf("%s: %w", s.kind, err)
		}
	}
	return nil
}

func simulateGame(engine games.Engine, spec string, trials int, wager int64, src random.Source) error {
	var wagered, returned int64
	outcomes := map[string]int{}

	for i := 0; i < trials; i++ {
		round, err := engine.Start(wager, spec, src)
		if err != nil {
			return err
		}

		settlement := round.Settlement
		if round.Session != nil {
			settlement, err = playBasic(round.Session, src)
			if err != nil {
				return err
			}
		}

		wagered += wager
		returned += settlement.TotalPayout()
		outcomes[settlement.Outcome]++
	}

	rtp := float64(returned) / float64(wagered) * 100
	label := string(engine.Kind())
	if spec != "" {
		label += " " + spec
	}
	fmt.Printf("%-20s RTP %6.2f%%  win %5.2f%%  push %5.2f%%\n",
		label, rtp,
		float64(outcomes[games.OutcomeWin])/float64(trials)*100,
		float64(outcomes[games.OutcomePush])/float64(trials)*100)
	return nil
}

// playBasic finishes a blackjack session with the simplest viable policy,
// hit below 17 then stand. Good enough for a paytable smoke test; it is
// not basic strategy.
func playBasic(session *games.BlackjackSession, src random.Source) (*games.Settlement, error) {
	now := time.Now()
	for games.HandValue(session.Player) < 17 {
		settlement, err := session.Apply(games.ActionHit, src, now)
		if err != nil {
			return nil, err
		}
		if settlement != nil {
			return settlement, nil
		}
	}
	return session.Apply(games.ActionStand, src, now)
}
