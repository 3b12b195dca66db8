// Package keyboard implements the Keymap Builder (spec.md §4.1): it turns
// the X server's extended keyboard mapping (keycodes × groups ×
// shift-levels × virtual modifiers) into the flat, queryable
// keys.Table every other component reads.
//
// This is a Go-native reading of the same Xkb GetMap walk
// original_source/src/keys/keyboard.rs performs over x11rb/xcb: we issue
// one xkb.GetMap request and, for every keycode in [min, max] and every
// group present in its group-info nibble, pick the key-type via
// kt_index[group&3] and then, for each level below that type's level
// count, the first active map entry at that level.
package keyboard

import (
	"fmt"

	"github.com/BurntSushi/xgb/xkb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/lmburns/lxhkd/internal/keys"
	"github.com/lmburns/lxhkd/internal/keysym"
	"github.com/lmburns/lxhkd/internal/xlog"
)

// Builder owns the connection used to query the keyboard mapping. It does
// not own the Character Table it produces -- that ownership belongs to
// whichever caller holds the returned *keys.Table (spec.md §3,
// "Ownership").
type Builder struct {
	xu  *xgbutil.XUtil
	log *xlog.Logger
}

// New creates a Builder over an already-connected xgbutil.XUtil. It
// verifies the Xkb extension is present and at a supported version,
// matching the fatal-on-missing-extension semantics of spec.md §7.
func New(xu *xgbutil.XUtil, log *xlog.Logger) (*Builder, error) {
	if err := xkb.Init(xu.Conn()); err != nil {
		return nil, fmt.Errorf("xkb extension unavailable: %w", err)
	}
	useExt, err := xkb.UseExtension(xu.Conn(), 1, 0).Reply()
	if err != nil {
		return nil, fmt.Errorf("xkb use-extension request failed: %w", err)
	}
	if !useExt.Supported {
		return nil, fmt.Errorf("xkb extension version unsupported by server")
	}
	return &Builder{xu: xu, log: log}, nil
}

// Build issues one GetMap request and returns the resulting Character
// Table. A missing key-type/syms/modmap sub-reply is fatal (the keyboard
// is unusable without it); a single unresolvable keysym is logged and
// that row skipped, per spec.md §4.1's failure semantics.
func (b *Builder) Build() (*keys.Table, error) {
	reply, err := xkb.GetMap(
		b.xu.Conn(),
		xkb.IDUseCoreKbd,
		xkb.MapPartKeyTypes|xkb.MapPartKeySyms|xkb.MapPartModifierMap|
			xkb.MapPartVirtualMods|xkb.MapPartVirtualModMap,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("xkb get-map request failed: %w", err)
	}

	keyTypes := reply.Map.TypesRtrn
	symMaps := reply.Map.SymsRtrn
	modMap := reply.Map.ModmapRtrn
	if keyTypes == nil {
		return nil, fmt.Errorf("xkb get-map reply missing key types")
	}
	if symMaps == nil {
		return nil, fmt.Errorf("xkb get-map reply missing key syms")
	}
	if modMap == nil {
		return nil, fmt.Errorf("xkb get-map reply missing modifier map")
	}

	rows := buildCharacterRows(reply.MinKeyCode, keyTypes, symMaps, modMap, b.log)
	return keys.NewTable(rows), nil
}

// buildCharacterRows is the pure walk described in spec.md §4.1, factored
// out of Build so it can be exercised without a live X connection.
func buildCharacterRows(minKeycode uint8, keyTypes []xkb.KeyType, symMaps []xkb.KeySymMap, modMap []xproto.Keycode, log *xlog.Logger) []keys.CharacterMap {
	rows := make([]keys.CharacterMap, 0, len(symMaps)*4)

	for idx, symm := range symMaps {
		kc := minKeycode + uint8(idx)
		groupCount := symm.GroupInfo & 0x0f

		for group := uint8(0); group < groupCount; group++ {
			ktIndex := symm.KtIndex[group&0x03]
			if int(ktIndex) >= len(keyTypes) {
				log.Debugf("skipping keycode %d group %d: key-type index %d out of range", kc, group, ktIndex)
				continue
			}
			keyType := keyTypes[ktIndex]

			for level := uint8(0); level < keyType.NumLevels; level++ {
				if int(level) >= len(symm.Syms) {
					continue
				}
				sym := symm.Syms[level]

				var modmask keys.ModMask
				for _, entry := range keyType.Map {
					if entry.Active && entry.Level == level {
						modmask = keys.ModMask(entry.ModsMask)
						break
					}
				}

				name, ok := keysym.Name(sym)
				if !ok {
					log.Debugf("failed to resolve keysym %#x for keycode %d: not in table", sym, kc)
					continue
				}

				rows = append(rows, keys.CharacterMap{
					Symbol:  name,
					Keycode: kc,
					ModMask: modmask | keys.ModMask(modifierTableBit(modMap, kc)),
					Keysym:  sym,
					Level:   level,
					Group:   group,
				})
			}
		}
	}

	return rows
}

// modifierTableBit returns which real modifier (if any) the server has
// this keycode bound to in the modifier mapping table, as the bit it
// contributes to a row's final modmask (spec.md §4.1: "the final row
// modmask is level_modmask | modifier_table_bit(k)").
func modifierTableBit(modMap []xproto.Keycode, kc uint8) uint16 {
	const keycodesPerModifier = 8 // slots per modifier row; the loop walks the 8 real modifiers
	for modIndex := 0; modIndex < 8; modIndex++ {
		base := modIndex * keycodesPerModifier
		if base+keycodesPerModifier > len(modMap) {
			break
		}
		for _, mkc := range modMap[base : base+keycodesPerModifier] {
			if mkc != 0 && uint8(mkc) == kc {
				return 1 << uint(modIndex)
			}
		}
	}
	return 0
}

// OnMappingNotify rebuilds the Character Table idempotently: calling it
// twice with no intervening server-side change yields tables that compare
// equal (spec.md §8.5), because Build is a pure function of the current
// GetMap reply.
func (b *Builder) OnMappingNotify() (*keys.Table, error) {
	return b.Build()
}
