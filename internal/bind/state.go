package bind

import (
	"time"

	"github.com/lmburns/lxhkd/internal/keys"
)

// Phase is one of the Match state machine's two states (spec.md §4.3.2).
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInChain
)

func (p Phase) String() string {
	if p == PhaseInChain {
		return "in-chain"
	}
	return "idle"
}

// Dispatch is what Machine.Step asks its caller to do after observing one
// event. Machine itself never touches an X connection; Engine is the one
// that owns the connection and turns a Dispatch into real grab/ungrab and
// fake-input requests.
type Dispatch struct {
	// Action, if non-nil, should be executed (spec.md §4.3.4).
	Action *keys.Action
	// GrabKeyboard requests a keyboard grab for the chain window.
	GrabKeyboard bool
	// UngrabKeyboard requests releasing a previously taken keyboard grab.
	UngrabKeyboard bool
}

// Machine is the Binding Engine's match state machine (spec.md §4.3.2),
// factored out from any X connection so its transitions can be driven and
// asserted on directly in tests (see original_source/src/keys/daemon.rs
// for the BTreeMap<Chain, Action> this trie/machine pair replaces).
type Machine struct {
	trie    *Trie
	timeout time.Duration

	hasEscape     bool
	escapeKeycode uint8

	phase    Phase
	cur      *node
	deadline time.Time
}

// NewMachine returns an Idle Machine over trie with chain timeout t
// (spec.md §4.3.2, "T is the configured chain timeout").
func NewMachine(trie *Trie, t time.Duration) *Machine {
	return &Machine{trie: trie, timeout: t, phase: PhaseIdle}
}

// SetEscapeKeycode configures the keycode that universally cancels an
// in-progress chain (spec.md §4.3.2). Called once per Character Table
// (re)build; a table lacking an Escape row leaves cancellation disabled.
func (m *Machine) SetEscapeKeycode(kc uint8) {
	m.escapeKeycode = kc
	m.hasEscape = true
}

// Phase returns the machine's current phase, for logging and tests.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Step processes one observed (keycode, modmask, kind) event at time now
// and returns what the caller must do in response.
func (m *Machine) Step(keycode uint8, modmask keys.ModMask, kind keys.EventKind, now time.Time) Dispatch {
	if m.phase == PhaseInChain && m.hasEscape && kind == keys.KeyPress && keycode == m.escapeKeycode {
		m.reset()
		return Dispatch{UngrabKeyboard: true}
	}

	if m.phase == PhaseIdle {
		return m.stepIdle(keycode, modmask, kind, now)
	}
	return m.stepInChain(keycode, modmask, kind, now)
}

func (m *Machine) stepIdle(keycode uint8, modmask keys.ModMask, kind keys.EventKind, now time.Time) Dispatch {
	next, ok := m.trie.Root().MatchEvent(keycode, modmask, kind)
	if !ok {
		return Dispatch{}
	}
	if action, isBound := next.Action(); isBound && !next.HasChildren() {
		return Dispatch{Action: &action}
	}
	m.phase = PhaseInChain
	m.cur = next
	m.deadline = now.Add(m.timeout)
	return Dispatch{GrabKeyboard: true}
}

func (m *Machine) stepInChain(keycode uint8, modmask keys.ModMask, kind keys.EventKind, now time.Time) Dispatch {
	if now.After(m.deadline) {
		// spec.md §4.3.2: "release keyboard grab; reset to Idle;
		// re-process e from Idle" -- done inline rather than asking the
		// caller to call Step again, since Machine already has e.
		m.reset()
		d := m.stepIdle(keycode, modmask, kind, now)
		d.UngrabKeyboard = true
		return d
	}

	if next, ok := m.cur.MatchEvent(keycode, modmask, kind); ok {
		if action, isBound := next.Action(); isBound && !next.HasChildren() {
			m.reset()
			return Dispatch{Action: &action, UngrabKeyboard: true}
		}
		m.cur = next
		m.deadline = now.Add(m.timeout)
		return Dispatch{}
	}

	if action, isBound := m.cur.Action(); isBound {
		m.reset()
		return Dispatch{Action: &action, UngrabKeyboard: true}
	}
	m.reset()
	return Dispatch{UngrabKeyboard: true}
}

func (m *Machine) reset() {
	m.phase = PhaseIdle
	m.cur = nil
}
