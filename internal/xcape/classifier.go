package xcape

import "github.com/lmburns/lxhkd/internal/keys"

// Classifier runs the pure per-event classification described in
// spec.md §4.4.2, independent of any X connection so it can be driven
// directly by tests. Engine (engine.go) is the thin connection-owning
// wrapper that feeds it record-stream events and turns its decisions
// into real XTest fake-input requests.
type Classifier struct {
	entries map[uint8]*Entry

	// generatedByUs tracks, per keycode, whether the last event we
	// should expect for it is one of our own synthetic injections
	// (spec.md §4.4.1, "generated_by_us"). It is consulted and cleared
	// exactly once per injected keycode, per spec.md §8's invariant 4.
	generatedByUs map[uint8]bool

	mouseHeld bool
}

// NewClassifier builds a Classifier with one Entry per entries element,
// keyed by the entry's physical (From) keycode.
func NewClassifier(entries []Entry) *Classifier {
	c := &Classifier{
		entries:       make(map[uint8]*Entry, len(entries)),
		generatedByUs: make(map[uint8]bool),
	}
	for i := range entries {
		e := entries[i]
		c.entries[e.From.Keycode] = &e
	}
	return c
}

// OnKeyPress processes a physical or synthetic KeyPress(keycode).
// ignore is true when this event is the synthetic one this Classifier
// itself generated (in which case the caller should do nothing else with
// it) per spec.md §4.4.2.
func (c *Classifier) OnKeyPress(keycode uint8) (ignore bool) {
	if c.generatedByUs[keycode] {
		delete(c.generatedByUs, keycode)
		return true
	}

	if e, ok := c.entries[keycode]; ok {
		e.pressed = true
		if c.mouseHeld {
			e.usedAsModifier = true
		}
	}
	for kc, e := range c.entries {
		if kc == keycode {
			continue
		}
		if e.pressed {
			e.usedAsModifier = true
		}
	}
	return false
}

// OnKeyRelease processes a physical or synthetic KeyRelease(keycode). If
// keycode names a tap-hold entry that was not used as a modifier while
// held, toInject is the ordered list of rows to synthesize a press then
// release for (spec.md §4.4.2); the caller is responsible for actually
// issuing those FakeInput requests and must call MarkGenerated for each
// injected keycode.
func (c *Classifier) OnKeyRelease(keycode uint8) (toInject []keys.CharacterMap, ignore bool) {
	if c.generatedByUs[keycode] {
		delete(c.generatedByUs, keycode)
		return nil, true
	}

	e, ok := c.entries[keycode]
	if !ok {
		return nil, false
	}

	if !e.usedAsModifier {
		toInject = e.To
	}
	e.pressed = false
	e.usedAsModifier = false
	return toInject, false
}

// MarkGenerated records that keycode's next observed event is one of our
// own synthetic injections, per spec.md §4.4.1. Called once for the
// synthetic press and once for the synthetic release of each to_keys row
// (spec.md §4.4.2's "mark generated_by_us(t)" after each fake event).
func (c *Classifier) MarkGenerated(keycode uint8) {
	c.generatedByUs[keycode] = true
}

// OnButtonPress processes a pointer button press: it marks every
// currently-pressed entry as used-as-modifier, and records that the
// mouse is held so a subsequent key press also counts (spec.md §4.4.2).
func (c *Classifier) OnButtonPress() {
	c.mouseHeld = true
	c.markAllPressedAsModifier()
}

// OnButtonRelease clears the held-mouse flag.
func (c *Classifier) OnButtonRelease() {
	c.mouseHeld = false
}

func (c *Classifier) markAllPressedAsModifier() {
	for _, e := range c.entries {
		if e.pressed {
			e.usedAsModifier = true
		}
	}
}
