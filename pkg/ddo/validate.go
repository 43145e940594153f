package ddo

import (
	"github.com/pkg/errors"
)

// ValidateTransition re-applies d to state and checks that the problem
// yields next again. It has no side effect and is only called when
// DebugBasic is enabled.
func ValidateTransition[T comparable](p Problem[T], state T, d Decision, next T) error {
	if again := p.Transition(state, d); again != next {
		return errors.Wrapf(ErrNonDeterministicTransition, "%v on %v gave %v then %v", d, state, next, again)
	}
	return nil
}

func transitionCheck[T comparable](level DebugLevel, p Problem[T]) func(T, Decision, T) error {
	if level < DebugBasic {
		return nil
	}
	return func(state T, d Decision, next T) error {
		return ValidateTransition(p, state, d, next)
	}
}
