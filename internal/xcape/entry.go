// Package xcape implements the Tap-Hold Engine (spec.md §4.4): watching
// the X Record extension's device-event stream for taps of keys that are
// also real modifiers (the "xcape" trick -- tap Caps_Lock for Escape,
// hold it for Control), and synthesizing a replacement chain via XTest
// when a tap (not a hold-as-modifier) is observed.
//
// Grounded on original_source/src/keys/xcape.rs and xcape_state.rs: the
// per-key pressed/used-as-modifier bookkeeping here is the same shape as
// that file's XcapeKeyState, translated from x11rb's record::ConnectionExt
// iterator style to a callback-driven Go read loop.
package xcape

import "github.com/lmburns/lxhkd/internal/keys"

// Entry is one configured tap-hold mapping: physical key From, and the
// chain of CharacterMap rows to synthesize when From is tapped rather
// than held as a modifier (spec.md §4.4.1, "TapHoldEntry").
type Entry struct {
	From keys.CharacterMap
	To   []keys.CharacterMap

	pressed        bool
	usedAsModifier bool
}
