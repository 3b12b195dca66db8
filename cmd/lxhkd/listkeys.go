package main

import (
	"fmt"
	"io"

	"github.com/lmburns/lxhkd/internal/keysym"
)

// listKeysyms writes every keysym name lxhkd recognizes in chord
// expressions, similar output to xmodmap (spec.md §4.2, "-L" flag).
func listKeysyms(w io.Writer) {
	for _, ks := range keysym.All() {
		fmt.Fprintf(w, "%-20s 0x%04x\n", ks.Name, ks.Keysym)
	}
}
