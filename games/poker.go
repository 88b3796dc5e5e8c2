package games

import (
	"fmt"

	"casino/random"
)

type pokerEngine struct{}

// NewPoker returns the poker placeholder. The variant is registered so the
// kind parses, but every wager is rejected before any currency moves until
// the rules land.
func NewPoker() Engine {
	return &pokerEngine{}
}

func (e *pokerEngine) Kind() Kind {
	return KindPoker
}

func (e *pokerEngine) ValidateSpec(spec string) error {
	return fmt.Errorf("%w: poker", ErrNotImplemented)
}

func (e *pokerEngine) Start(wager int64, spec string, src random.Source) (*Round, error) {
	return nil, fmt.Errorf("%w: poker", ErrNotImplemented)
}
