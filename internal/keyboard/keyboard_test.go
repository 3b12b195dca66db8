package keyboard

import (
	"testing"

	"github.com/BurntSushi/xgb/xkb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/lmburns/lxhkd/internal/keysym"
	"github.com/lmburns/lxhkd/internal/xlog"
)

func TestBuildCharacterRows(t *testing.T) {
	log := xlog.New("test")

	// One key type with two levels: level 0 unshifted, level 1 requires
	// Shift (ModsMask bit 0).
	keyTypes := []xkb.KeyType{
		{
			NumLevels: 2,
			Map: []xkb.KTMapEntry{
				{Active: true, Level: 0, ModsMask: 0},
				{Active: true, Level: 1, ModsMask: 1},
			},
		},
	}

	aSym := keysym.MustLookup("a")
	ASym := keysym.MustLookup("A")

	symMaps := []xkb.KeySymMap{
		{
			GroupInfo: 1, // one group present
			KtIndex:   [4]byte{0, 0, 0, 0},
			Syms:      []xproto.Keysym{xproto.Keysym(aSym), xproto.Keysym(ASym)},
		},
	}

	rows := buildCharacterRows(38 /* keycode of 'a' on a typical layout */, keyTypes, symMaps, nil, log)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Symbol != "a" || rows[0].Level != 0 {
		t.Errorf("row 0 = %+v, want symbol=a level=0", rows[0])
	}
	if rows[1].Symbol != "A" || rows[1].Level != 1 {
		t.Errorf("row 1 = %+v, want symbol=A level=1", rows[1])
	}
	if rows[1].ModMask == 0 {
		t.Errorf("row 1 modmask should carry the Shift bit from the key type map")
	}
}

func TestBuildCharacterRowsSkipsUnresolvableKeysym(t *testing.T) {
	log := xlog.New("test")
	keyTypes := []xkb.KeyType{
		{NumLevels: 1, Map: []xkb.KTMapEntry{{Active: true, Level: 0, ModsMask: 0}}},
	}
	symMaps := []xkb.KeySymMap{
		{GroupInfo: 1, KtIndex: [4]byte{0, 0, 0, 0}, Syms: []xproto.Keysym{0xdeadbeef}},
	}

	rows := buildCharacterRows(8, keyTypes, symMaps, nil, log)
	if len(rows) != 0 {
		t.Fatalf("expected the unresolvable keysym's row to be skipped, got %d rows", len(rows))
	}
}

func TestModifierTableBit(t *testing.T) {
	// Modifier row layout: 8 modifiers x keycodesPerModifier(=8) slots.
	modMap := make([]xproto.Keycode, 64)
	modMap[2*8+0] = 50 // keycode 50 bound to modifier index 2 (Control)

	if got := modifierTableBit(modMap, 50); got != 1<<2 {
		t.Errorf("modifierTableBit(50) = %#x, want %#x", got, 1<<2)
	}
	if got := modifierTableBit(modMap, 51); got != 0 {
		t.Errorf("modifierTableBit(51) = %#x, want 0", got)
	}
}
