package xcape

import (
	"testing"

	"github.com/lmburns/lxhkd/internal/keys"
)

const (
	capsLockKeycode = 66
	escapeKeycode   = 9
	aKeycode        = 38
)

func newTestClassifier() *Classifier {
	return NewClassifier([]Entry{
		{
			From: keys.CharacterMap{Symbol: "Caps_Lock", Keycode: capsLockKeycode},
			To:   []keys.CharacterMap{{Symbol: "Escape", Keycode: escapeKeycode}},
		},
	})
}

// TestClassifierTapEmitsSyntheticEscape covers scenario 4 of spec.md §8:
// a bare tap of Caps_Lock synthesizes Escape.
func TestClassifierTapEmitsSyntheticEscape(t *testing.T) {
	c := newTestClassifier()

	if ignore := c.OnKeyPress(capsLockKeycode); ignore {
		t.Fatal("a real press should never be ignored")
	}
	toInject, ignore := c.OnKeyRelease(capsLockKeycode)
	if ignore {
		t.Fatal("a real release should never be ignored")
	}
	if len(toInject) != 1 || toInject[0].Symbol != "Escape" {
		t.Fatalf("expected synthetic Escape, got %+v", toInject)
	}
}

// TestClassifierHeldAsModifierSuppressesSynthesis covers scenario 5:
// pressing another key while Caps_Lock is held marks it used-as-modifier,
// so releasing Caps_Lock afterward synthesizes nothing.
func TestClassifierHeldAsModifierSuppressesSynthesis(t *testing.T) {
	c := newTestClassifier()

	c.OnKeyPress(capsLockKeycode)
	c.OnKeyPress(aKeycode)
	c.OnKeyRelease(aKeycode)

	toInject, ignore := c.OnKeyRelease(capsLockKeycode)
	if ignore {
		t.Fatal("a real release should never be ignored")
	}
	if toInject != nil {
		t.Errorf("expected no synthesis when used as a modifier, got %+v", toInject)
	}
}

// TestClassifierGeneratedByUsConsumedOnce covers invariant 4 of spec.md
// §8 and scenario 6: the synthetic Escape's own press/release are
// ignored by the classifier, but a subsequent *real* Escape press is not
// -- generated_by_us must not leak past the one event it was set for.
func TestClassifierGeneratedByUsConsumedOnce(t *testing.T) {
	c := newTestClassifier()

	c.OnKeyPress(capsLockKeycode)
	toInject, _ := c.OnKeyRelease(capsLockKeycode)
	if len(toInject) != 1 {
		t.Fatalf("expected one synthetic row, got %+v", toInject)
	}
	for _, row := range toInject {
		c.MarkGenerated(row.Keycode)
	}

	if ignore := c.OnKeyPress(escapeKeycode); !ignore {
		t.Error("expected the synthetic Escape press to be recognized as generated_by_us")
	}
	for _, row := range toInject {
		c.MarkGenerated(row.Keycode)
	}
	if _, ignore := c.OnKeyRelease(escapeKeycode); !ignore {
		t.Error("expected the synthetic Escape release to be recognized as generated_by_us")
	}

	// A subsequent REAL Escape press must not be suppressed: generated_by_us
	// was already consumed by the synthetic event above.
	if ignore := c.OnKeyPress(escapeKeycode); ignore {
		t.Error("a real Escape press following the synthetic one must not be ignored")
	}
}

func TestClassifierMousePressMarksHeldKeysAsModifier(t *testing.T) {
	c := newTestClassifier()

	c.OnKeyPress(capsLockKeycode)
	c.OnButtonPress()
	c.OnButtonRelease()

	toInject, _ := c.OnKeyRelease(capsLockKeycode)
	if toInject != nil {
		t.Errorf("expected no synthesis after a mouse click while held, got %+v", toInject)
	}
}

// TestClassifierKeyPressedWhileMouseHeldIsImmediatelyAModifier covers the
// "if mouse is currently held: same" clause of spec.md §4.4.2's
// on-KeyPress pseudocode: a key pressed while a mouse button is already
// down must become used-as-modifier immediately, not just retroactively
// when some other key is pressed afterward.
func TestClassifierKeyPressedWhileMouseHeldIsImmediatelyAModifier(t *testing.T) {
	c := newTestClassifier()

	c.OnButtonPress()
	c.OnKeyPress(capsLockKeycode)
	c.OnButtonRelease()

	toInject, _ := c.OnKeyRelease(capsLockKeycode)
	if toInject != nil {
		t.Errorf("expected no synthesis for a tap-hold key pressed while the mouse was held, got %+v", toInject)
	}
}

func TestClassifierUnknownKeycodeIsANoop(t *testing.T) {
	c := newTestClassifier()

	toInject, ignore := c.OnKeyRelease(200)
	if ignore || toInject != nil {
		t.Errorf("expected a no-op for an untracked keycode, got %+v, %v", toInject, ignore)
	}
}
