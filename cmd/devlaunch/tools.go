package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

var ErrNodeNotFound = errors.New("node.js not found, install it or add it to PATH")

// exeName adds the platform suffix for an executable. npm is a batch file on Windows.
func exeName(name string) string {
	if runtime.GOOS != "windows" {
		return name
	}
	if name == "npm" {
		return "npm.cmd"
	}
	return name + ".exe"
}

// nodeDirs lists the usual Node.js install locations for the current platform.
func nodeDirs() []string {
	if runtime.GOOS == "windows" {
		dirs := []string{`C:\Program Files\nodejs`, `C:\Program Files (x86)\nodejs`}
		if appData := os.Getenv("APPDATA"); appData != "" {
			dirs = append(dirs, filepath.Join(appData, "npm"))
		}
		return dirs
	}
	dirs := []string{"/usr/local/bin", "/opt/homebrew/bin", "/usr/bin"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".volta", "bin"))
	}
	return dirs
}

// findNode locates node and npm, first on PATH and then in dirs.
func findNode(dirs []string) (node, npm string, err error) {
	if node, err := exec.LookPath(exeName("node")); err == nil {
		if npm, err := exec.LookPath(exeName("npm")); err == nil {
			return node, npm, nil
		}
	}
	for _, dir := range dirs {
		node := filepath.Join(dir, exeName("node"))
		if !isFile(node) {
			continue
		}
		npm := filepath.Join(dir, exeName("npm"))
		if !isFile(npm) {
			npm = exeName("npm")
		}
		return node, npm, nil
	}
	return "", "", ErrNodeNotFound
}

// toolVersion runs "<tool> --version".
func toolVersion(ctx context.Context, tool string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, tool, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", tool, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// checkFrontend makes sure dir is an npm project.
func checkFrontend(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("frontend directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("frontend path %q is not a directory", dir)
	}
	if !isFile(filepath.Join(dir, "package.json")) {
		return fmt.Errorf("frontend directory %q has no package.json", dir)
	}
	return nil
}

// backendCommand prefers a keyplayer binary next to this one and falls
// back to building it from source.
func backendCommand(args []string) []string {
	if self, err := os.Executable(); err == nil {
		bin := filepath.Join(filepath.Dir(self), exeName("keyplayer"))
		if isFile(bin) {
			return append([]string{bin}, args...)
		}
	}
	if bin, err := exec.LookPath(exeName("keyplayer")); err == nil {
		return append([]string{bin}, args...)
	}
	return append([]string{"go", "run", "./cmd/keyplayer"}, args...)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
