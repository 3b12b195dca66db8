package keys

import "fmt"

// CharacterMap is one row of the Character Table: a single (keycode,
// group, shift-level) the server advertises, resolved to a human symbol
// name and a keysym (spec.md §3).
type CharacterMap struct {
	// Symbol is the human symbol name, e.g. "Hyper_L".
	Symbol string
	// Keycode is the 8-bit hardware-proximate key identifier.
	Keycode uint8
	// ModMask is level_modmask | modifier_table_bit(keycode): the real
	// modifiers required to produce Keysym at Level, plus whatever
	// modifier this keycode is itself bound to.
	ModMask ModMask
	// Keysym is the 32-bit symbolic identifier the server computes.
	Keysym uint32
	// Level is the shift-level (0..=3): unshifted, shifted, altgr,
	// shifted-altgr.
	Level uint8
	// Group is the keyboard-layout group (0..=3).
	Group uint8
}

func (c CharacterMap) String() string {
	return fmt.Sprintf("%s(kc=%d mods=%#04x level=%d group=%d)", c.Symbol, c.Keycode, c.ModMask, c.Level, c.Group)
}

// Table is the flat, queryable Character Table the Keymap Builder
// produces. It is built once at startup and rebuilt wholesale on
// MappingNotify (spec.md §4.1); callers never mutate a Table in place.
type Table struct {
	rows []CharacterMap
	// byName indexes the last row seen for a given symbol, used to
	// resolve a config file's symbol tokens (spec.md §4.2).
	//
	// Open question (spec.md §9): when a keysym name maps to several
	// keycodes, the deliberate tie-break is to prefer the *last* such
	// keycode seen while building the table, so later entries in byName
	// overwrite earlier ones.
	byName map[string]CharacterMap
}

// NewTable builds a Table from the rows produced by the Keymap Builder.
// Rows are assumed unique on (Keycode, Level, Group) per the invariant in
// spec.md §3; NewTable does not itself enforce it (the builder does, by
// construction: one row per symm/level/group triple).
func NewTable(rows []CharacterMap) *Table {
	t := &Table{
		rows:   rows,
		byName: make(map[string]CharacterMap, len(rows)),
	}
	for _, r := range rows {
		// Last keycode seen for a given name wins; see the tie-break note
		// on byName above.
		t.byName[r.Symbol] = r
	}
	return t
}

// Lookup resolves a symbol name (e.g. "Hyper_L", "a") to its CharacterMap
// row. ok is false if the name is not present anywhere in the table.
func (t *Table) Lookup(name string) (CharacterMap, bool) {
	row, ok := t.byName[name]
	return row, ok
}

// Rows returns every row in the table, in builder order.
func (t *Table) Rows() []CharacterMap {
	return t.rows
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Equal reports whether two tables contain the same rows in the same
// order. Used to validate the idempotence invariant in spec.md §8.5:
// rebuilding on a MappingNotify with no actual change must yield a table
// that compares equal to the previous one.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.rows) != len(other.rows) {
		return false
	}
	for i, r := range t.rows {
		if r != other.rows[i] {
			return false
		}
	}
	return true
}
