// Package keyplayer plays a score inside a game by pressing and releasing the
// keyboard keys its notes are mapped to, one note at a time.
//
// A Player runs at most one score at a time on its own goroutine. Timing is
// plain sleeping: each note holds its key for duration/speed, then waits the
// inter-note delay. Drift accumulates over long loops.
package keyplayer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/denizsincar29/keyplayer/backend"
	"github.com/denizsincar29/keyplayer/keymap"
)

// ErrAlreadyPlaying is returned by Start while a run is active.
var ErrAlreadyPlaying = errors.New("already playing")

// run is one Start call's goroutine.
type run struct {
	id     uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// Player drives a Backend from a score.
type Player struct {
	mu      sync.Mutex
	state   State
	current *run // the active run, or a stopped run that has not exited yet
	nextID  uint64

	table  *keymap.Table
	keys   *backend.Guarded
	sleep  func(time.Duration)
	logger *slog.Logger
}

// NewPlayer creates an idle player. A nil logger means slog.Default().
func NewPlayer(table *keymap.Table, b backend.Backend, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		table:  table,
		keys:   backend.Guard(b, logger),
		sleep:  time.Sleep,
		logger: logger,
	}
}

// KeyMap returns the table the player resolves symbols with.
func (p *Player) KeyMap() *keymap.Table {
	return p.table
}

// Start begins playing score in the background and returns immediately.
// It fails with ErrAlreadyPlaying while another run is active, and with an
// error wrapping ErrInvalidScore or ErrInvalidConfig for bad input; neither
// failure changes any state.
func (p *Player) Start(score Score, cfg Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.IsPlaying() {
		return ErrAlreadyPlaying
	}
	if err := score.Validate(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.nextID++
	r := &run{id: p.nextID, cancel: cancel, done: make(chan struct{})}
	prev := p.current
	p.current = r
	p.state = StatePlaying

	go p.play(ctx, r, prev, slices.Clone(score), cfg)
	return nil
}

// Stop asks the active run to end and returns without waiting for it.
// The run exits at its next note or pass boundary. Stop while idle is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.IsPlaying() {
		return
	}
	p.state = StateIdle
	p.current.cancel()
	p.logger.Info("Playback stop requested", "run", p.current.id)
}

// Status reports whether a run is active.
func (p *Player) Status() bool {
	return p.State().IsPlaying()
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until the latest run has exited or ctx is done.
func (p *Player) Wait(ctx context.Context) error {
	p.mu.Lock()
	r := p.current
	p.mu.Unlock()
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish returns the player to idle unless a newer run has replaced r.
func (p *Player) finish(r *run) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r.cancel()
	if p.current == r {
		p.current = nil
		p.state = StateIdle
	}
}

func (p *Player) play(ctx context.Context, r *run, prev *run, score Score, cfg Config) {
	defer close(r.done)
	defer p.finish(r)
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("Playback aborted", "run", r.id, "panic", fmt.Sprint(rec))
		}
	}()

	// a stopped run may still be holding a key
	if prev != nil {
		<-prev.done
	}

	logger := p.logger.With("run", r.id)
	logger.Info("Playback started", "notes", len(score), "speed", cfg.Speed, "delay", cfg.Delay, "loop", cfg.Loop)
	start := time.Now()
	passes := 0
	defer func() {
		logger.Info("Playback finished", "passes", passes, "elapsed", time.Since(start))
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		passes++
		logger.Debug("Pass started", "pass", passes)
		if !p.playPass(ctx, logger, score, cfg) || !cfg.Loop {
			return
		}
		if len(score) == 0 {
			// nothing to loop over
			return
		}
	}
}

// playPass plays every note once. It returns false if the run was stopped mid-pass.
func (p *Player) playPass(ctx context.Context, logger *slog.Logger, score Score, cfg Config) bool {
	for i, n := range score {
		if ctx.Err() != nil {
			logger.Debug("Pass interrupted", "note", i)
			return false
		}
		p.playNote(logger, n, cfg)
	}
	return true
}

func (p *Player) playNote(logger *slog.Logger, n Note, cfg Config) {
	hold := cfg.hold(n.Duration)
	key, mapped := p.table.Lookup(n.Symbol)
	switch {
	case keymap.IsRest(n.Symbol):
		p.sleep(hold)
	case !mapped:
		logger.Warn("No key mapped for note, keeping its time", "note", n.Symbol)
		p.sleep(hold)
	case !keymap.ValidKey(key):
		logger.Warn("Mapped key is not a single character, keeping its time", "note", n.Symbol, "key", key)
		p.sleep(hold)
	default:
		// a failed press gives up the note's time slot
		if code, ok := p.keys.Press(key); ok {
			p.sleep(hold)
			p.keys.Release(code)
		}
	}
	p.sleep(cfg.gap())
}
