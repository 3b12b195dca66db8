// Package xlog provides the component-prefixed loggers used throughout
// lxhkd. Every subsystem (keyboard, parser, bind, xcape) gets its own named
// logger so -v/-vv can be traced back to the part of the daemon that
// produced a line, the same way palaver hands each internal package its
// own *log.Logger instead of reaching for a global.
package xlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
)

// Level controls verbosity. Higher is noisier.
type Level int32

const (
	// LevelError only logs fatal-adjacent and per-request errors.
	LevelError Level = iota
	// LevelWarn additionally logs recoverable per-binding problems.
	LevelWarn
	// LevelDebug additionally logs state transitions, matches, and grabs.
	LevelDebug
)

// threshold is process-wide: every Logger reads it on each call so that
// -v/-vv (applied once at startup) is visible to loggers constructed
// before or after the flag is parsed.
var threshold atomic.Int32

// SetLevel sets the process-wide verbosity threshold.
func SetLevel(l Level) {
	threshold.Store(int32(l))
}

func enabled(l Level) bool {
	return int32(l) <= threshold.Load()
}

// Logger is a named, leveled, optionally colored wrapper around the
// standard library's *log.Logger.
type Logger struct {
	name   string
	std    *log.Logger
	color  *color.Color
	errCol *color.Color
	warn   *color.Color
}

// New creates a Logger prefixed with name, writing to stderr.
func New(name string) *Logger {
	return NewWithOutput(name, os.Stderr)
}

// NewWithOutput creates a Logger prefixed with name, writing to w.
func NewWithOutput(name string, w io.Writer) *Logger {
	return &Logger{
		name:   name,
		std:    log.New(w, "", log.Ltime|log.Lmicroseconds),
		color:  color.New(color.FgCyan),
		errCol: color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow),
	}
}

// SetColorEnabled toggles ANSI coloring for every Logger process-wide,
// driven by -C {auto,always,never} and NO_COLOR.
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

func (l *Logger) prefix() string {
	return l.color.Sprintf("[%s]", l.name)
}

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...any) {
	if !enabled(LevelDebug) {
		return
	}
	l.std.Printf("%s %s", l.prefix(), fmt.Sprintf(format, args...))
}

// Warnf logs at LevelWarn.
func (l *Logger) Warnf(format string, args ...any) {
	if !enabled(LevelWarn) {
		return
	}
	l.std.Printf("%s %s", l.warn.Sprint(l.prefix()), fmt.Sprintf(format, args...))
}

// Errorf logs at LevelError. Error-level logs are always emitted.
func (l *Logger) Errorf(format string, args ...any) {
	l.std.Printf("%s %s", l.errCol.Sprint(l.prefix()), fmt.Sprintf(format, args...))
}

// Fatalf logs at LevelError and exits the process with status 1. Reserved
// for the "Fatal environmental" taxonomy in spec.md §7 (cannot open
// display, Xkb/XTest/Record missing, etc.).
func (l *Logger) Fatalf(format string, args ...any) {
	l.Errorf(format, args...)
	os.Exit(1)
}
