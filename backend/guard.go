package backend

import (
	"errors"
	"fmt"
	"log/slog"
)

// Guarded absorbs every failure of the wrapped Backend, including panics,
// and logs it. Callers only learn whether a press went through.
type Guarded struct {
	b      Backend
	logger *slog.Logger
}

// Guard wraps b. A nil logger means slog.Default().
func Guard(b Backend, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{b: b, logger: logger.With("backend", b.Name())}
}

// Name returns the wrapped backend's name.
func (g *Guarded) Name() string { return g.b.Name() }

// Press presses key and reports whether it is now held down.
func (g *Guarded) Press(key string) (code KeyCode, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Key press panicked", "key", key, "panic", fmt.Sprint(r))
			code, ok = KeyCode{}, false
		}
	}()
	code, err := g.b.Press(key)
	if err != nil {
		var uke *UnsupportedKeyError
		if errors.As(err, &uke) {
			g.logger.Warn("Key not supported, press skipped", "key", key, "error", err)
		} else {
			g.logger.Error("Key press failed", "key", key, "error", err)
		}
		return KeyCode{}, false
	}
	return code, true
}

// Release releases a code obtained from Press.
func (g *Guarded) Release(code KeyCode) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Key release panicked", "vk_code", code.VKCode, "panic", fmt.Sprint(r))
		}
	}()
	if err := g.b.Release(code); err != nil {
		g.logger.Error("Key release failed", "vk_code", code.VKCode, "error", err)
	}
}
