package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrForeignTransition = errors.New("transition belongs to another workflow")
	ErrInvalidTransition = errors.New("transition is not allowed")
	ErrUnknownState      = errors.New("unknown workflow state")
	ErrUnknownTransition = errors.New("unknown transition")
)

// A ConfigurationError is returned by New if the Config is inconsistent.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "workflow configuration: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{
		Reason: fmt.Sprintf(format, args...),
	}
}

// An InvalidTransitionError is returned if an object is neither in the source nor in the target state of a transition.
// It signals a programming error in the caller, who chose the wrong transition.
type InvalidTransitionError struct {
	Transition string
	State      string // current state of the object
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%v: %s from state %s", ErrInvalidTransition, e.Transition, e.State)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
