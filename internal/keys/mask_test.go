package keys

import "testing"

func TestFilterIgnoredStripsLockAndMod2(t *testing.T) {
	tests := []struct {
		name string
		in   ModMask
		want ModMask
	}{
		{"bare shift", Shift, Shift},
		{"shift with caps lock", Shift | Lock, Shift},
		{"control with num lock", Control | Mod2, Control},
		{"both ignored bits", Shift | Lock | Mod2, Shift},
		{"only ignored bits", Lock | Mod2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterIgnored(tt.in); got != tt.want {
				t.Errorf("FilterIgnored(%#04x) = %#04x, want %#04x", tt.in, got, tt.want)
			}
		})
	}
}

func TestGrabMasksCoversAllFourLockCombinations(t *testing.T) {
	got := GrabMasks(Shift | Control)
	want := [4]ModMask{
		Shift | Control,
		Shift | Control | Lock,
		Shift | Control | Mod2,
		Shift | Control | Lock | Mod2,
	}
	if got != want {
		t.Errorf("GrabMasks(Shift|Control) = %#v, want %#v", got, want)
	}
}

func TestGrabMasksStripsIgnoredBitsFromBase(t *testing.T) {
	got := GrabMasks(Shift | Lock)
	want := GrabMasks(Shift)
	if got != want {
		t.Errorf("GrabMasks should ignore Lock in the base mask: got %#v, want %#v", got, want)
	}
}

func TestHasAny(t *testing.T) {
	if !(Shift | Control).HasAny(Control) {
		t.Error("expected Shift|Control to have Control")
	}
	if (Shift).HasAny(Control) {
		t.Error("expected Shift alone to not have Control")
	}
}

func TestModifierFromName(t *testing.T) {
	tests := []struct {
		name     string
		wantMask ModMask
		wantOK   bool
	}{
		{"ctrl", Control, true},
		{"control", Control, true},
		{"alt", Mod1, true},
		{"mod1", Mod1, true},
		{"super", Mod4, true},
		{"any", Any, true},
		{"nonexistent", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask, ok := ModifierFromName(tt.name)
			if ok != tt.wantOK || (ok && mask != tt.wantMask) {
				t.Errorf("ModifierFromName(%q) = (%#04x, %v), want (%#04x, %v)", tt.name, mask, ok, tt.wantMask, tt.wantOK)
			}
		})
	}
}
