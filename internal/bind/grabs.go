package bind

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/lmburns/lxhkd/internal/keys"
	"github.com/lmburns/lxhkd/internal/xlog"
)

// Grabber installs and removes the passive key grabs described in
// spec.md §4.3.1, replicating every chord across the four lock-state
// combinations keys.GrabMasks computes. _examples/other_examples' xgbutil
// keybind.Grab does the same replication (over xgbutil.IgnoreMods) for a
// single mask; this generalizes it to a whole chain's worth of root
// chords and makes a refused grab non-fatal.
type Grabber struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	log  *xlog.Logger
}

// NewGrabber returns a Grabber that issues requests against xu's
// connection, grabbing on the given root window.
func NewGrabber(xu *xgbutil.XUtil, root xproto.Window, log *xlog.Logger) *Grabber {
	return &Grabber{xu: xu, root: root, log: log}
}

// InstallRootGrabs grabs every distinct chord that can start a chain, in
// both sync-pointer and sync-keyboard mode, across all four GrabMasks
// variants. A grab the server refuses (most often: another client
// already holds it) is logged and that one (keycode, modmask) pair is
// skipped; the rest proceed (spec.md §7, "per-request transient").
func (g *Grabber) InstallRootGrabs(chords []keys.Chord) {
	for _, gk := range dedupGrabKeys(chords) {
		for _, mask := range keys.GrabMasks(gk.ModMask) {
			err := xproto.GrabKeyChecked(
				g.xu.Conn(),
				false,
				g.root,
				uint16(mask),
				xproto.Keycode(gk.Keycode),
				xproto.GrabModeSync,
				xproto.GrabModeSync,
			).Check()
			if err != nil {
				g.log.Warnf("grab refused for keycode %d mask %#04x: %v", gk.Keycode, mask, err)
			}
		}
	}
}

// UngrabAll releases every grab InstallRootGrabs may have installed for
// chords. Called before a MappingNotify rebuild and during shutdown.
func (g *Grabber) UngrabAll(chords []keys.Chord) {
	for _, gk := range dedupGrabKeys(chords) {
		for _, mask := range keys.GrabMasks(gk.ModMask) {
			xproto.UngrabKeyChecked(g.xu.Conn(), xproto.Keycode(gk.Keycode), g.root, uint16(mask))
		}
	}
}

// dedupGrabKeys collapses chords sharing a (keycode, modmask) grab key --
// several chords in different chains can legitimately start with the
// same physical key.
func dedupGrabKeys(chords []keys.Chord) []keys.GrabKey {
	seen := make(map[keys.GrabKey]bool, len(chords))
	out := make([]keys.GrabKey, 0, len(chords))
	for _, c := range chords {
		gk := c.GrabKey()
		if seen[gk] {
			continue
		}
		seen[gk] = true
		out = append(out, gk)
	}
	return out
}

// GrabKeyboard takes an active keyboard grab for the duration of an
// in-progress chain (spec.md §4.3.1).
func (g *Grabber) GrabKeyboard(now xproto.Timestamp) error {
	reply, err := xproto.GrabKeyboard(
		g.xu.Conn(), false, g.root, now, xproto.GrabModeAsync, xproto.GrabModeAsync,
	).Reply()
	if err != nil {
		return fmt.Errorf("grab keyboard: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab refused: status %d", reply.Status)
	}
	return nil
}

// UngrabKeyboard releases an active keyboard grab. Best-effort: a failure
// here is not actionable beyond logging, since the daemon is either
// tearing the chain down or shutting down entirely.
func (g *Grabber) UngrabKeyboard(now xproto.Timestamp) {
	if err := xproto.UngrabKeyboardChecked(g.xu.Conn(), now).Check(); err != nil {
		g.log.Debugf("ungrab keyboard: %v", err)
	}
}
