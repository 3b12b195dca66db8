// Package pidfile manages lxhkd's PID file (spec.md §6, "Persisted
// state"): the running daemon's process id as decimal ASCII,
// newline-terminated, mode 0600. It is also how "-k" (kill running
// daemon) and the already-running-daemon fatal check (spec.md §7) find
// the process to signal or refuse to start alongside.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// DefaultPath returns the default PID file location, mirroring
// config.DefaultPath's ~/.config layout.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "lxhkd", "lxhkd.pid")
}

// Write writes pid's decimal ASCII representation to path,
// newline-terminated, mode 0600, creating parent directories as needed.
func Write(path string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create pid file directory: %w", err)
	}
	content := strconv.Itoa(pid) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write pid file %s: %w", path, err)
	}
	return nil
}

// Read parses the pid stored at path.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read pid file %s: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file %s: %w", path, err)
	}
	return pid, nil
}

// Remove deletes the PID file, ignoring a not-exist error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file %s: %w", path, err)
	}
	return nil
}

// Running reports whether the process named in path's PID file still
// exists, by probing it with signal 0 (no-op delivery, existence check
// only). A stale PID file (process gone) reports false and is not
// treated as an error.
func Running(path string) (bool, int, error) {
	pid, err := Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false, pid, nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return false, pid, nil
	}
	return true, pid, nil
}

// Kill sends SIGTERM to the process named in path's PID file (spec.md
// §6's "-k" flag: "kill running daemon").
func Kill(path string) error {
	running, pid, err := Running(path)
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("no running daemon found at %s", path)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal process %d: %w", pid, err)
	}
	return nil
}
