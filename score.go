package keyplayer

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidScore wraps every score validation failure.
	ErrInvalidScore = errors.New("invalid score")
	// ErrInvalidConfig wraps every playback configuration validation failure.
	ErrInvalidConfig = errors.New("invalid playback config")
)

// Note is one symbol held for Duration seconds.
type Note struct {
	Symbol   string  `json:"note" yaml:"note"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Score is played in order. An empty score is valid.
type Score []Note

// Validate checks that every note has a positive duration.
func (s Score) Validate() error {
	for i, n := range s {
		if !(n.Duration > 0) {
			return fmt.Errorf("%w: note %d (%q) has non-positive duration %v", ErrInvalidScore, i, n.Symbol, n.Duration)
		}
	}
	return nil
}

// Total returns the unscaled length of one pass in seconds, without delays.
func (s Score) Total() float64 {
	var total float64
	for _, n := range s {
		total += n.Duration
	}
	return total
}

const (
	DefaultSpeed = 1.0
	DefaultDelay = 0.05
)

// Config controls a run.
type Config struct {
	// Speed divides every note duration; 2 plays twice as fast.
	Speed float64 `json:"speed" yaml:"speed"`
	// Delay is the gap in seconds after every note, rests and skipped notes included.
	Delay float64 `json:"delay" yaml:"delay"`
	// Loop repeats the score until stopped.
	Loop bool `json:"loop" yaml:"loop"`
}

// DefaultConfig returns speed 1, delay 50ms, no looping.
func DefaultConfig() Config {
	return Config{Speed: DefaultSpeed, Delay: DefaultDelay}
}

// Validate checks Speed > 0 and Delay >= 0.
func (c Config) Validate() error {
	if !(c.Speed > 0) {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, c.Speed)
	}
	if !(c.Delay >= 0) {
		return fmt.Errorf("%w: delay must not be negative, got %v", ErrInvalidConfig, c.Delay)
	}
	return nil
}

// hold is how long a note of d seconds lasts at this speed.
func (c Config) hold(d float64) time.Duration {
	return seconds(d / c.Speed)
}

func (c Config) gap() time.Duration {
	return seconds(c.Delay)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
