// keyplayer serves the playback control API and presses keys in the focused window.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denizsincar29/goerror"

	"github.com/denizsincar29/keyplayer"
	"github.com/denizsincar29/keyplayer/backend"
	"github.com/denizsincar29/keyplayer/config"
	"github.com/denizsincar29/keyplayer/httpapi"
	"github.com/denizsincar29/keyplayer/keymap"
	"github.com/denizsincar29/keyplayer/nvdaremote"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	listen := flag.String("listen", "", "control API address (overrides config)")
	backendName := flag.String("backend", "", "key backend: auto, log, windows or nvda (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	flag.Parse()

	// goerror needs a logger before the config is known.
	e := goerror.NewError(NewLogger(os.Stderr, slog.LevelInfo, *debug))
	cfg, err := config.Load(*configPath)
	e.Must(err, "Failed to load config")
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *backendName != "" {
		cfg.Backend = *backendName
	}
	e.Must(cfg.Validate(), "Invalid config")
	level, _ := cfg.Level()
	logger := NewLogger(os.Stderr, level, *debug)
	e = goerror.NewError(logger)

	table := keymap.Default()
	if cfg.KeyMapFile != "" {
		table, err = keymap.Load(cfg.KeyMapFile)
		e.Must(err, "Failed to load key map")
	}

	b, closeBackend, err := openBackend(cfg, logger)
	e.Must(err, "Failed to open key backend")
	defer closeBackend()

	player, err := keyplayer.NewPlayerBuilder().
		WithKeyMap(table).
		WithBackend(b).
		WithLogger(logger).
		Build()
	e.Must(err, "Failed to create player")

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.New(player, cfg.AllowedOrigin, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Control API listening", "addr", cfg.Listen, "backend", b.Name(), "keys", table.Len())
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			e.Must(err, "Control API failed")
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Control API shutdown", "error", err)
	}
	player.Stop()
	if err := player.Wait(shutdownCtx); err != nil {
		logger.Warn("Playback did not finish before shutdown", "error", err)
	}
}

// openBackend builds the configured key backend. The returned func releases it.
func openBackend(cfg config.Config, logger *slog.Logger) (backend.Backend, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case config.BackendLog:
		return backend.NewLog(logger), noop, nil
	case config.BackendWindows:
		b, err := backend.NewWindows()
		return b, noop, err
	case config.BackendNVDA:
		client, err := nvdaremote.Dial(nvdaremote.Options{
			Host:        cfg.NVDA.Host,
			Port:        cfg.NVDA.Port,
			Channel:     cfg.NVDA.Channel,
			ConnType:    cfg.NVDA.ConnType,
			Fingerprint: cfg.NVDA.Fingerprint,
			Logger:      logger,
		})
		if err != nil {
			return nil, noop, err
		}
		go logRelayEvents(client, logger)
		return backend.NewNVDA(client), func() { client.Close() }, nil
	default:
		b, err := backend.NewWindows()
		if errors.Is(err, backend.ErrUnavailable) {
			logger.Warn("Windows input unavailable, keys will only be logged")
			return backend.NewLog(logger), noop, nil
		}
		return b, noop, err
	}
}

func logRelayEvents(client *nvdaremote.Client, logger *slog.Logger) {
	for event := range client.Events() {
		switch event.(type) {
		case nvdaremote.ClientJoinedPacket, nvdaremote.ClientLeftPacket, nvdaremote.ChannelJoinedPacket:
			logger.Info("Relay event", "event", event)
		default:
			logger.Debug("Relay event", "event", event)
		}
	}
}
