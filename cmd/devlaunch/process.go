package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

// console serialises prefixed output lines from several children.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) copyLines(prefix string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		c.mu.Lock()
		fmt.Fprintf(c.w, "[%s] %s\n", prefix, scanner.Text())
		c.mu.Unlock()
	}
}

// child is a supervised subprocess whose combined output is prefixed.
type child struct {
	name string
	cmd  *exec.Cmd
	done chan error
}

// startChild runs argv in dir. The process is killed when ctx is done.
func startChild(ctx context.Context, name, dir string, argv []string, out *console, logger *slog.Logger) (*child, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = 5 * time.Second
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	logger.Info("Started process", "name", name, "pid", cmd.Process.Pid, "cmd", argv)

	c := &child{name: name, cmd: cmd, done: make(chan error, 1)}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out.copyLines(name, pr)
	}()
	go func() {
		err := cmd.Wait()
		pw.Close()
		wg.Wait()
		c.done <- err
	}()
	return c, nil
}
