// devlaunch starts the keyplayer backend and the frontend dev server
// together and opens the frontend in a browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/denizsincar29/goerror"
	"github.com/pkg/browser"
)

func main() {
	frontendDir := flag.String("frontend", "music-player-frontend", "frontend project directory")
	frontendURL := flag.String("url", "http://localhost:5173", "frontend dev server URL")
	backendWarmup := flag.Duration("backend-warmup", 3*time.Second, "wait after starting the backend")
	frontendWarmup := flag.Duration("frontend-warmup", 5*time.Second, "wait after starting the frontend before opening the browser")
	noBrowser := flag.Bool("no-browser", false, "do not open a browser")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	e := goerror.NewError(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("keyplayer dev launcher")
	fmt.Println(strings.Repeat("=", 40))

	node, npm, err := findNode(nodeDirs())
	e.Must(err, "Node.js check failed")
	nodeVersion, err := toolVersion(ctx, node)
	e.Must(err, "Node.js check failed")
	npmVersion, err := toolVersion(ctx, npm)
	e.Must(err, "npm check failed")
	logger.Info("Node.js available", "node", nodeVersion, "npm", npmVersion)
	e.Must(checkFrontend(*frontendDir), "Frontend check failed")

	out := &console{w: os.Stdout}
	backendProc, err := startChild(ctx, "backend", "", backendCommand(flag.Args()), out, logger)
	e.Must(err, "Failed to start backend")

	logger.Info("Waiting for backend", "warmup", *backendWarmup)
	if !sleepCtx(ctx, *backendWarmup) {
		shutdown(logger, backendProc)
		return
	}

	frontendProc, err := startChild(ctx, "frontend", *frontendDir, []string{npm, "run", "dev"}, out, logger)
	if err != nil {
		logger.Error("Failed to start frontend", "error", err)
		stop()
		shutdown(logger, backendProc)
		os.Exit(1)
	}

	if sleepCtx(ctx, *frontendWarmup) && !*noBrowser {
		if err := browser.OpenURL(*frontendURL); err != nil {
			logger.Warn("Failed to open browser, open the frontend manually", "url", *frontendURL, "error", err)
		}
	}

	fmt.Println(strings.Repeat("=", 40))
	fmt.Println("Backend API:  http://localhost:8000")
	fmt.Println("Frontend:    ", *frontendURL)
	fmt.Println("Press Ctrl+C to stop both")
	fmt.Println(strings.Repeat("=", 40))

	select {
	case <-ctx.Done():
	case err := <-backendProc.done:
		logger.Error("Backend exited", "error", err)
		backendProc.done <- err
	case err := <-frontendProc.done:
		logger.Error("Frontend exited", "error", err)
		frontendProc.done <- err
	}
	stop()
	shutdown(logger, backendProc, frontendProc)
}

// shutdown waits for children that the cancelled context is killing.
func shutdown(logger *slog.Logger, children ...*child) {
	logger.Info("Stopping all services")
	for _, c := range children {
		err := <-c.done
		logger.Debug("Process exited", "name", c.name, "error", err)
	}
	logger.Info("Dev environment closed")
}

// sleepCtx waits d and reports whether ctx is still live.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
