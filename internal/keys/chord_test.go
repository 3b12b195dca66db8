package keys

import "testing"

func chordRow(keycode uint8, keysym uint32, symbol string) CharacterMap {
	return CharacterMap{Symbol: symbol, Keycode: keycode, Keysym: keysym}
}

func TestChordMatchesIgnoresLockAndMod2(t *testing.T) {
	c := Chord{Char: chordRow(38, 0x61, "a"), ModMask: Control, Kind: KeyPress}

	if !c.Matches(38, Control|Lock, KeyPress) {
		t.Error("expected a match with Caps-Lock set")
	}
	if !c.Matches(38, Control|Mod2, KeyPress) {
		t.Error("expected a match with Num-Lock set")
	}
	if c.Matches(38, Shift, KeyPress) {
		t.Error("did not expect a match with the wrong modifier")
	}
	if c.Matches(38, Control, KeyRelease) {
		t.Error("did not expect a match with the wrong event kind")
	}
	if c.Matches(39, Control, KeyPress) {
		t.Error("did not expect a match with the wrong keycode")
	}
}

func TestChordGrabKeyStripsIgnoredBits(t *testing.T) {
	c := Chord{Char: chordRow(38, 0x61, "a"), ModMask: Control | Lock | Mod2, Kind: KeyPress}
	gk := c.GrabKey()
	want := GrabKey{Keycode: 38, ModMask: Control}
	if gk != want {
		t.Errorf("GrabKey() = %+v, want %+v", gk, want)
	}
}

func TestChainIsPrefixOf(t *testing.T) {
	a := Chord{Char: chordRow(1, 1, "x"), Kind: KeyPress}
	b := Chord{Char: chordRow(2, 2, "y"), Kind: KeyPress}
	c := Chord{Char: chordRow(3, 3, "z"), Kind: KeyPress}

	chain := NewChain(a, b, c)

	tests := []struct {
		name   string
		prefix Chain
		want   bool
	}{
		{"empty prefix", NewChain(), true},
		{"single chord prefix", NewChain(a), true},
		{"two chord prefix", NewChain(a, b), true},
		{"identical chain", NewChain(a, b, c), true},
		{"wrong first chord", NewChain(b), false},
		{"longer than chain", NewChain(a, b, c, a), false},
		{"diverges mid-way", NewChain(a, c), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prefix.IsPrefixOf(chain); got != tt.want {
				t.Errorf("IsPrefixOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChainLen(t *testing.T) {
	chain := NewChain(
		Chord{Char: chordRow(1, 1, "x")},
		Chord{Char: chordRow(2, 2, "y")},
	)
	if got := chain.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{KeyPress, "press"},
		{KeyRelease, "release"},
		{ButtonPress, "button-press"},
		{ButtonRelease, "button-release"},
		{EventKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
