package keyplayer

import (
	"errors"
	"log/slog"
	"time"

	"github.com/denizsincar29/keyplayer/backend"
	"github.com/denizsincar29/keyplayer/keymap"
)

type PlayerBuilder struct {
	KeyMap  *keymap.Table
	Backend backend.Backend
	Logger  *slog.Logger
	sleep   func(time.Duration)
}

// NewPlayerBuilder starts from the default key map, the dry-run backend and slog.Default().
func NewPlayerBuilder() *PlayerBuilder {
	return &PlayerBuilder{
		KeyMap: keymap.Default(),
		Logger: slog.Default(),
	}
}

func (pb *PlayerBuilder) WithKeyMap(table *keymap.Table) *PlayerBuilder {
	pb.KeyMap = table
	return pb
}

func (pb *PlayerBuilder) WithBackend(b backend.Backend) *PlayerBuilder {
	pb.Backend = b
	return pb
}

func (pb *PlayerBuilder) WithLogger(logger *slog.Logger) *PlayerBuilder {
	pb.Logger = logger
	return pb
}

// WithSleep replaces time.Sleep for every wait the player makes.
func (pb *PlayerBuilder) WithSleep(sleep func(time.Duration)) *PlayerBuilder {
	pb.sleep = sleep
	return pb
}

func (pb *PlayerBuilder) Build() (*Player, error) {
	if pb.KeyMap == nil {
		return nil, errors.New("player needs a key map")
	}
	b := pb.Backend
	if b == nil {
		b = backend.NewLog(pb.Logger)
	}
	p := NewPlayer(pb.KeyMap, b, pb.Logger)
	if pb.sleep != nil {
		p.sleep = pb.sleep
	}
	return p, nil
}
