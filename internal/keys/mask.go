// Package keys holds the data model shared by every component of lxhkd:
// the modifier-mask bitset, the flat CharacterMap row, and the Chord/Chain
// types built on top of it (spec.md §3).
package keys

// ModMask is a 16-bit bitset over the X core modifiers, mirroring
// xproto.ModMask (itself a uint16). lxhkd keeps its own named type so the
// ignore/grab-replication logic below reads independently of the xgb wire
// type it is ultimately assigned to.
type ModMask uint16

// The eight X core modifier bits, in the order the server's modifier
// mapping table enumerates them (shift, lock, control, mod1..mod5).
const (
	Shift ModMask = 1 << iota
	Lock
	Control
	Mod1
	Mod2
	Mod3
	Mod4
	Mod5
)

// Any matches xproto.ModMaskAny: "don't care" in a grab request.
const Any ModMask = 1 << 15

// Ignored is the set of bits stripped from incoming event masks before
// comparison and XOR'd across installed grabs, so Caps-Lock/Num-Lock
// state never defeats a binding (spec.md §3, "Modifier Mask").
const Ignored ModMask = Lock | Mod2

// FilterIgnored strips the ignored bits from m.
func FilterIgnored(m ModMask) ModMask {
	return m &^ Ignored
}

// HasAny reports whether m contains any bit of other.
func (m ModMask) HasAny(other ModMask) bool {
	return m&other != 0
}

// lockCombos is the four combinations of {Lock, Mod2} a grab is
// replicated across, per spec.md §4.3.1.
var lockCombos = [4]ModMask{0, Lock, Mod2, Lock | Mod2}

// GrabMasks returns the four (keycode, modmask) variants that must be
// grabbed so Num-Lock/Caps-Lock never prevents a match: base XOR'd with
// each of {0, Lock, Mod2, Lock|Mod2}.
func GrabMasks(base ModMask) [4]ModMask {
	base = FilterIgnored(base)
	var out [4]ModMask
	for i, combo := range lockCombos {
		out[i] = base | combo
	}
	return out
}

// modifierNames maps the lowercase modifier tokens the Chord Parser
// recognizes (spec.md §4.2 grammar) to the bit they OR into a chord's
// mask.
var modifierNames = map[string]ModMask{
	"shift":   Shift,
	"lock":    Lock,
	"ctrl":    Control,
	"control": Control,
	"mod1":    Mod1,
	"alt":     Mod1,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"mod4":    Mod4,
	"super":   Mod4,
	"mod5":    Mod5,
	"any":     Any,
}

// ModifierFromName resolves a single modifier token to its bit. ok is
// false if name is not a recognized modifier token.
func ModifierFromName(name string) (mask ModMask, ok bool) {
	mask, ok = modifierNames[name]
	return mask, ok
}
