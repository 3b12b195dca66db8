// Package parser implements the Chord Parser (spec.md §4.2): turning
// configuration text such as "super + shift + a" or "super+x ; q" into
// canonical keys.Chord/keys.Chain values, resolved against a
// keys.Table, plus the XcapeSource entries for the Tap-Hold Engine.
//
// original_source/src/parser.rs and src/keys/chord.rs show the abandoned
// first cut of this (the commented-out Chord::from_string /
// Chain::from_string methods); this package is the completed version of
// that idea, generalized to lxhkd's YAML config.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lmburns/lxhkd/internal/config"
	"github.com/lmburns/lxhkd/internal/keys"
	"github.com/lmburns/lxhkd/internal/xlog"
)

// Error describes a single malformed binding. Per spec.md §7 ("Per-binding
// errors... Reported with the offending line, that binding is dropped,
// daemon continues"), callers collect these rather than aborting the
// whole parse.
type Error struct {
	Line string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%q: %v", e.Line, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Binding pairs a parsed Chain with its Action, preserving config order.
type Binding struct {
	Chain  keys.Chain
	Action keys.Action
}

// Result is everything the Chord Parser produces from a config.Config:
// the ordered binding table and the Tap-Hold entries.
type Result struct {
	Bindings []Binding
	Xcape    []XcapeSource
}

// XcapeSource is the parser's output for one "xcape:" entry: the
// physical key to watch and the chain of replacement chords to
// synthesize on tap-release. Each one becomes an xcape.Entry, which adds
// the live pressed/used-as-modifier bookkeeping.
type XcapeSource struct {
	From keys.CharacterMap
	To   []keys.CharacterMap
}

// mouseButtons maps the fixed "mouseN" symbol tokens (spec.md §4.2
// grammar) to their X button index. They never appear in the Character
// Table, since they are pointer buttons, not keycodes.
var mouseButtons = map[string]uint8{
	"mouse1": 1, "mouse2": 2, "mouse3": 3, "mouse4": 4, "mouse5": 5,
}

// Parse resolves every binding, remap, and xcape entry in cfg against
// table, in declared order. Malformed entries are collected in errs and
// skipped rather than aborting the parse (spec.md §7).
func Parse(cfg *config.Config, table *keys.Table, log *xlog.Logger) (*Result, []error) {
	var (
		res  Result
		errs []error
	)

	cfg.Bindings.Pairs(func(chainExpr, shellCmd string) {
		chain, err := ParseChain(chainExpr, table, keys.KeyPress, log)
		if err != nil {
			log.Warnf("dropping binding %q: %v", chainExpr, err)
			errs = append(errs, &Error{Line: chainExpr, Err: err})
			return
		}
		res.Bindings = append(res.Bindings, Binding{
			Chain:  chain,
			Action: keys.Action{Kind: keys.ActionShell, Shell: shellCmd},
		})
	})

	cfg.Remaps.Pairs(func(fromExpr, toExpr string) {
		from, err := ParseChain(fromExpr, table, keys.KeyPress, log)
		if err != nil {
			log.Warnf("dropping remap %q: %v", fromExpr, err)
			errs = append(errs, &Error{Line: fromExpr, Err: err})
			return
		}
		to, err := ParseChain(toExpr, table, keys.KeyPress, log)
		if err != nil {
			log.Warnf("dropping remap target %q: %v", toExpr, err)
			errs = append(errs, &Error{Line: toExpr, Err: err})
			return
		}
		res.Bindings = append(res.Bindings, Binding{
			Chain:  from,
			Action: keys.Action{Kind: keys.ActionRemap, Remap: to},
		})
	})

	cfg.Xcape.Pairs(func(fromName, toExpr string) {
		fromRow, ok := table.Lookup(fromName)
		if !ok {
			log.Warnf("dropping xcape entry: unknown key name %q", fromName)
			errs = append(errs, &Error{Line: fromName, Err: fmt.Errorf("unknown symbol name")})
			return
		}
		toChain, err := ParseChain(toExpr, table, keys.KeyPress, log)
		if err != nil {
			log.Warnf("dropping xcape target %q: %v", toExpr, err)
			errs = append(errs, &Error{Line: toExpr, Err: err})
			return
		}
		toKeys := make([]keys.CharacterMap, 0, len(toChain.Chords))
		for _, ch := range toChain.Chords {
			toKeys = append(toKeys, ch.Char)
		}
		res.Xcape = append(res.Xcape, XcapeSource{From: fromRow, To: toKeys})
	})

	return &res, errs
}

// ParseChain parses a "chord ( ; chord )*" expression (spec.md §4.2) into
// a Chain. Every chord in the chain shares the same event kind (press or
// release), matching how a single config entry binds one physical
// action. log receives a warning for each chord in expr that repeats a
// modifier token (spec.md §4.2, "Duplicate modifier → warn; same
// effect").
func ParseChain(expr string, table *keys.Table, kind keys.EventKind, log *xlog.Logger) (keys.Chain, error) {
	parts := strings.Split(expr, ";")
	chords := make([]keys.Chord, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return keys.Chain{}, fmt.Errorf("empty chord in chain %q", expr)
		}
		chord, err := ParseChord(part, table, kind, log)
		if err != nil {
			return keys.Chain{}, fmt.Errorf("chord %q: %w", part, err)
		}
		chords = append(chords, chord)
	}
	if len(chords) == 0 {
		return keys.Chain{}, fmt.Errorf("empty chain")
	}
	return keys.NewChain(chords...), nil
}

// ParseChord parses a single "(modifier +)* symbol" expression into a
// Chord (spec.md §4.2). Modifier and symbol tokens may appear in any
// order; exactly one token must be a non-modifier, and it must resolve
// against table (or be a "mouseN" button token). A modifier token repeated
// within expr is warned about via log and otherwise has no effect
// (spec.md §4.2, "Duplicate modifier → warn; same effect").
func ParseChord(expr string, table *keys.Table, kind keys.EventKind, log *xlog.Logger) (keys.Chord, error) {
	tokens := strings.Split(expr, "+")
	if len(tokens) == 0 {
		return keys.Chord{}, fmt.Errorf("empty chord")
	}

	var (
		mask       keys.ModMask
		sawSymbol  bool
		symbolName string
	)
	seenMods := map[string]bool{}

	for _, raw := range tokens {
		tok := strings.ToLower(strings.TrimSpace(raw))
		if tok == "" {
			continue
		}
		if m, ok := keys.ModifierFromName(tok); ok {
			if seenMods[tok] {
				log.Warnf("chord %q: duplicate modifier %q has no additional effect", expr, tok)
				continue
			}
			seenMods[tok] = true
			mask |= m
			continue
		}
		if sawSymbol {
			return keys.Chord{}, fmt.Errorf("more than one symbol in chord (already have %q, found %q)", symbolName, raw)
		}
		sawSymbol = true
		symbolName = strings.TrimSpace(raw)
	}

	if !sawSymbol {
		return keys.Chord{}, fmt.Errorf("chord has no symbol")
	}

	if btn, ok := mouseButtons[strings.ToLower(symbolName)]; ok {
		buttonKind := keys.ButtonPress
		if kind == keys.KeyRelease {
			buttonKind = keys.ButtonRelease
		}
		return keys.Chord{
			Char:    keys.CharacterMap{Symbol: symbolName, Keycode: btn},
			ModMask: mask,
			Kind:    buttonKind,
		}, nil
	}

	if kc, ok := parseRawKeycode(symbolName); ok {
		return keys.Chord{Char: keys.CharacterMap{Symbol: symbolName, Keycode: kc}, ModMask: mask, Kind: kind}, nil
	}

	row, ok := table.Lookup(symbolName)
	if !ok {
		return keys.Chord{}, fmt.Errorf("unknown symbol name %q", symbolName)
	}
	return keys.Chord{Char: row, ModMask: mask | row.ModMask, Kind: kind}, nil
}

// parseRawKeycode supports escape-hatch chord expressions that name a raw
// keycode directly (e.g. "kc42") instead of a symbol -- useful when a
// keysym has no entry in internal/keysym's table yet.
func parseRawKeycode(tok string) (uint8, bool) {
	if !strings.HasPrefix(tok, "kc") {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(tok, "kc"), 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(n), true
}
