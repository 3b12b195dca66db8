package bind

import (
	"testing"
	"time"

	"github.com/lmburns/lxhkd/internal/keys"
)

const testTimeout = 300 * time.Millisecond

// TestMachineSingleChordExecutesImmediately covers scenario 1 of spec.md
// §8: binding "super + a" -> "echo hi", pressing Super+a fires the action
// without ever entering InChain.
func TestMachineSingleChordExecutesImmediately(t *testing.T) {
	trie := NewTrie()
	trie.Insert(keys.NewChain(chord(38, keys.Mod4)), keys.Action{Kind: keys.ActionShell, Shell: "echo hi"})
	m := NewMachine(trie, testTimeout)

	t0 := time.Unix(0, 0)
	d := m.Step(38, keys.Mod4, keys.KeyPress, t0)
	if d.Action == nil || d.Action.Shell != "echo hi" {
		t.Fatalf("expected immediate action, got %+v", d)
	}
	if d.GrabKeyboard {
		t.Error("a single-chord binding must never grab the keyboard")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected Idle after a single-chord action, got %v", m.Phase())
	}
}

// TestMachineMultiChordWithinTimeout covers scenario 2: chain
// "super+x ; q" fires when q follows within the timeout window.
func TestMachineMultiChordWithinTimeout(t *testing.T) {
	trie := NewTrie()
	trie.Insert(keys.NewChain(chord(53, keys.Mod4), chord(24, 0)), keys.Action{Kind: keys.ActionShell, Shell: "pkill foo"})
	m := NewMachine(trie, testTimeout)

	t0 := time.Unix(0, 0)
	first := m.Step(53, keys.Mod4, keys.KeyPress, t0)
	if first.Action != nil {
		t.Fatalf("expected no action yet, got %+v", first)
	}
	if !first.GrabKeyboard {
		t.Error("expected a keyboard grab on entering the chain")
	}
	if m.Phase() != PhaseInChain {
		t.Fatalf("expected InChain, got %v", m.Phase())
	}

	second := m.Step(24, 0, keys.KeyPress, t0.Add(100*time.Millisecond))
	if second.Action == nil || second.Action.Shell != "pkill foo" {
		t.Fatalf("expected the chain's action to fire, got %+v", second)
	}
	if !second.UngrabKeyboard {
		t.Error("expected the keyboard grab released after the chain completes")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected Idle after the chain completes, got %v", m.Phase())
	}
}

// TestMachineMultiChordTimeoutExpires covers scenario 3: the same chain,
// but q arrives after the timeout window -- nothing fires, and the
// trailing q is reprocessed from Idle (matching nothing here).
func TestMachineMultiChordTimeoutExpires(t *testing.T) {
	trie := NewTrie()
	trie.Insert(keys.NewChain(chord(53, keys.Mod4), chord(24, 0)), keys.Action{Kind: keys.ActionShell, Shell: "pkill foo"})
	m := NewMachine(trie, testTimeout)

	t0 := time.Unix(0, 0)
	m.Step(53, keys.Mod4, keys.KeyPress, t0)
	if m.Phase() != PhaseInChain {
		t.Fatalf("expected InChain, got %v", m.Phase())
	}

	late := m.Step(24, 0, keys.KeyPress, t0.Add(500*time.Millisecond))
	if late.Action != nil {
		t.Fatalf("expected no action after timeout expiry, got %+v", late)
	}
	if !late.UngrabKeyboard {
		t.Error("expected the stale keyboard grab released on timeout expiry")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected Idle after timeout expiry, got %v", m.Phase())
	}
}

// TestMachineEscapeCancelsChain covers the universal-cancel rule: Escape
// while InChain resets to Idle without executing anything.
func TestMachineEscapeCancelsChain(t *testing.T) {
	trie := NewTrie()
	trie.Insert(keys.NewChain(chord(53, keys.Mod4), chord(24, 0)), keys.Action{Kind: keys.ActionShell, Shell: "pkill foo"})
	m := NewMachine(trie, testTimeout)
	m.SetEscapeKeycode(9)

	t0 := time.Unix(0, 0)
	m.Step(53, keys.Mod4, keys.KeyPress, t0)
	if m.Phase() != PhaseInChain {
		t.Fatalf("expected InChain, got %v", m.Phase())
	}

	d := m.Step(9, 0, keys.KeyPress, t0.Add(50*time.Millisecond))
	if d.Action != nil {
		t.Fatalf("expected Escape to cancel without executing an action, got %+v", d)
	}
	if !d.UngrabKeyboard {
		t.Error("expected Escape to release the keyboard grab")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected Idle after Escape, got %v", m.Phase())
	}
}

// TestMachineInChainNodePrefersLongerChain covers a node that is
// simultaneously bound and has children ("super+x;q" -> A, "super+x;q;r"
// -> B): from inside InChain, matching such a node must not fire A
// immediately -- the matcher stays InChain so a following r within the
// timeout can still complete the longer chain B (spec.md §3, §4.3.2:
// "the matcher prefers the longer match when the timeout has not
// expired").
func TestMachineInChainNodePrefersLongerChain(t *testing.T) {
	trie := NewTrie()
	trie.Insert(
		keys.NewChain(chord(53, keys.Mod4), chord(24, 0)),
		keys.Action{Kind: keys.ActionShell, Shell: "short"},
	)
	trie.Insert(
		keys.NewChain(chord(53, keys.Mod4), chord(24, 0), chord(27, 0)),
		keys.Action{Kind: keys.ActionShell, Shell: "long"},
	)
	m := NewMachine(trie, testTimeout)

	t0 := time.Unix(0, 0)
	m.Step(53, keys.Mod4, keys.KeyPress, t0)
	if m.Phase() != PhaseInChain {
		t.Fatalf("expected InChain after the first chord, got %v", m.Phase())
	}

	second := m.Step(24, 0, keys.KeyPress, t0.Add(50*time.Millisecond))
	if second.Action != nil {
		t.Fatalf("expected the shorter chain's action to be withheld, got %+v", second)
	}
	if m.Phase() != PhaseInChain {
		t.Fatalf("expected to remain InChain awaiting a possible longer match, got %v", m.Phase())
	}

	third := m.Step(27, 0, keys.KeyPress, t0.Add(100*time.Millisecond))
	if third.Action == nil || third.Action.Shell != "long" {
		t.Fatalf("expected the longer chain's action to fire, got %+v", third)
	}
	if !third.UngrabKeyboard {
		t.Error("expected the keyboard grab released once the longer chain completes")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected Idle after the chain completes, got %v", m.Phase())
	}
}

// TestMachineDropsUnmatchedEventInChain exercises the "no child matches,
// and the prefix node has no action of its own" branch: the event is
// dropped and the machine falls back to Idle.
func TestMachineDropsUnmatchedEventInChain(t *testing.T) {
	trie := NewTrie()
	trie.Insert(keys.NewChain(chord(53, keys.Mod4), chord(24, 0)), keys.Action{Kind: keys.ActionShell, Shell: "pkill foo"})
	m := NewMachine(trie, testTimeout)

	t0 := time.Unix(0, 0)
	m.Step(53, keys.Mod4, keys.KeyPress, t0)

	d := m.Step(99, 0, keys.KeyPress, t0.Add(10*time.Millisecond))
	if d.Action != nil {
		t.Fatalf("expected no action for an unrelated event, got %+v", d)
	}
	if !d.UngrabKeyboard {
		t.Error("expected the grab released when the chain is abandoned")
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("expected Idle, got %v", m.Phase())
	}
}
