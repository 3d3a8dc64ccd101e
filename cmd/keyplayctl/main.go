// keyplayctl is an interactive client for the keyplayer control API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/denizsincar29/goerror"
)

func main() {
	addr := flag.String("addr", "http://localhost:8000", "keyplayer server URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	e := goerror.NewError(logger)

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "keyplayer> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("play", readline.PcItemDynamic(listScores)),
			readline.PcItem("stop"),
			readline.PcItem("status"),
			readline.PcItem("keys"),
			readline.PcItem("quit"),
		),
	})
	e.Must(err, "Failed to start prompt")
	defer rl.Close()

	api := newAPIClient(*addr)
	fmt.Println("Connected to", *addr, "- type play, stop, status, keys or quit")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return
		}
		e.Must(err, "Failed to read command")

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		out, err := runCommand(api, fields[0], fields[1:])
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(out)
	}
}

func runCommand(api *apiClient, cmd string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cmd {
	case "play":
		req, err := playRequest(args)
		if err != nil {
			return "", err
		}
		return api.Play(ctx, req)
	case "stop":
		return api.Stop(ctx)
	case "status":
		playing, err := api.Status(ctx)
		if err != nil {
			return "", err
		}
		if playing {
			return "playing", nil
		}
		return "idle", nil
	case "keys":
		mapping, err := api.KeyMapping(ctx)
		if err != nil {
			return "", err
		}
		return formatMapping(mapping), nil
	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

func formatMapping(mapping map[string]string) string {
	symbols := make([]string, 0, len(mapping))
	for s := range mapping {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	var b strings.Builder
	for _, s := range symbols {
		fmt.Fprintf(&b, "%-3s -> %q\n", s, mapping[s])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// listScores completes score files in the current directory.
func listScores(string) []string {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, _ := filepath.Glob(pattern)
		names = append(names, matches...)
	}
	return names
}
