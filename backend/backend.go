// Package backend turns key identifiers into real key-down and key-up events.
//
// A Backend resolves a key identifier into a platform key code on Press and
// releases that same code on Release. Backends report failures as errors;
// Guard wraps a Backend so that no failure ever reaches the playback loop.
package backend

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/denizsincar29/keyplayer/keys"
)

// KeyCode is a resolved platform key code, returned by Press and consumed by Release.
type KeyCode = keys.Info

// Backend issues key events to the host.
type Backend interface {
	// Name identifies the backend in logs and configuration.
	Name() string
	// Press resolves key and issues a key-down event.
	Press(key string) (KeyCode, error)
	// Release issues a key-up event for a code returned by Press.
	Release(code KeyCode) error
}

// ErrUnavailable is returned by constructors of backends the current platform cannot run.
var ErrUnavailable = errors.New("backend not available on this platform")

// UnsupportedKeyError is returned by Press when the key has no key code.
type UnsupportedKeyError struct {
	Key string
}

func (e *UnsupportedKeyError) Error() string {
	return fmt.Sprintf("unsupported key %q: no virtual-key code", e.Key)
}

// resolve looks key up in the shared key table.
func resolve(key string) (KeyCode, error) {
	info, err := keys.Lookup(key)
	if err != nil || info.VKCode == 0 {
		return KeyCode{}, &UnsupportedKeyError{Key: key}
	}
	return info, nil
}

// Log is a dry-run backend: it resolves codes like a real backend and logs
// the events instead of injecting them.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a dry-run backend. A nil logger means slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Press(key string) (KeyCode, error) {
	code, err := resolve(key)
	if err != nil {
		return KeyCode{}, err
	}
	l.logger.Info("Key down", "key", key, "vk_code", code.VKCode, "scan_code", code.ScanCode)
	return code, nil
}

func (l *Log) Release(code KeyCode) error {
	l.logger.Info("Key up", "vk_code", code.VKCode, "scan_code", code.ScanCode)
	return nil
}
