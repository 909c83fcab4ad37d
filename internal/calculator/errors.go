package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientHistory is returned when a series is shorter than an indicator's window.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrInvalidPeriod is returned for non-positive periods.
	ErrInvalidPeriod = errors.New("period must be positive")
)

func insufficient(name string, have, need int) error {
	return fmt.Errorf("%s: %w: have %d bars, need %d", name, ErrInsufficientHistory, have, need)
}
