package models

import (
	"fmt"
	"time"
)

// RewardKind identifies a periodic reward claim.
type RewardKind string

const (
	RewardWork   RewardKind = "work"
	RewardDaily  RewardKind = "daily"
	RewardWeekly RewardKind = "weekly"
)

// ParseRewardKind validates a reward name coming from the chat layer.
func ParseRewardKind(s string) (RewardKind, error) {
	switch RewardKind(s) {
	case RewardWork, RewardDaily, RewardWeekly:
		return RewardKind(s), nil
	default:
		return "", fmt.Errorf("unknown reward kind: %q", s)
	}
}

// CooldownState tracks the last successful claim per reward kind. A zero
// timestamp means the reward has never been claimed.
type CooldownState struct {
	LastWork   time.Time
	LastDaily  time.Time
	LastWeekly time.Time
}

// Last returns the last claim time for the given kind.
func (c *CooldownState) Last(kind RewardKind) time.Time {
	switch kind {
	case RewardWork:
		return c.LastWork
	case RewardDaily:
		return c.LastDaily
	case RewardWeekly:
		return c.LastWeekly
	}
	return time.Time{}
}

// SetLast records a successful claim for the given kind.
func (c *CooldownState) SetLast(kind RewardKind, t time.Time) {
	switch kind {
	case RewardWork:
		c.LastWork = t
	case RewardDaily:
		c.LastDaily = t
	case RewardWeekly:
		c.LastWeekly = t
	}
}
