package main

import (
	"io"
	"log/slog"
	"net"
	"runtime"
	"strconv"
	"testing"

	"github.com/denizsincar29/keyplayer/config"
)

func TestOpenBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.Backend = config.BackendLog
	b, closeFn, err := openBackend(cfg, logger)
	if err != nil {
		t.Fatalf("log backend: error = %v", err)
	}
	closeFn()
	if b.Name() != "log" {
		t.Errorf("log backend: Name() = %q", b.Name())
	}

	cfg.Backend = config.BackendAuto
	b, _, err = openBackend(cfg, logger)
	if err != nil {
		t.Fatalf("auto backend: error = %v", err)
	}
	want := "log"
	if runtime.GOOS == "windows" {
		want = "windows"
	}
	if b.Name() != want {
		t.Errorf("auto backend: Name() = %q, want %q", b.Name(), want)
	}
}

func TestOpenBackendNVDAUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	cfg := config.Default()
	cfg.Backend = config.BackendNVDA
	cfg.NVDA.Host = "127.0.0.1"
	cfg.NVDA.Port = strconv.Itoa(addr.Port)
	cfg.NVDA.Channel = "piano"
	if _, _, err := openBackend(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("openBackend(nvda) error = nil for a closed port")
	}
}
