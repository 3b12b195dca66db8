package bind

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xkb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/lmburns/lxhkd/internal/keyboard"
	"github.com/lmburns/lxhkd/internal/keys"
	"github.com/lmburns/lxhkd/internal/parser"
	"github.com/lmburns/lxhkd/internal/xlog"
)

// Engine is the Binding Engine (spec.md §4.3): it owns the control
// connection, the live Character Table, the Chain Trie, and the match
// state machine, and runs the single-threaded event-reception loop
// described in spec.md §4.3.3 and §5.
//
// Grounded on the event-loop shape of internal/hotkey's linuxListener.Start
// (one blocking read loop, fed into a channel, selected against
// ctx.Done()), generalized from evdev reads to xgb events.
type Engine struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	builder *keyboard.Builder
	log     *xlog.Logger

	grabber *Grabber
	runner  *Runner

	table   *keys.Table
	trie    *Trie
	machine *Machine
	timeout time.Duration
}

// New constructs an Engine. res is the parser.Result already
// resolved against the initial Character Table; Run rebuilds the trie in
// place whenever the keyboard mapping changes.
func New(xu *xgbutil.XUtil, builder *keyboard.Builder, table *keys.Table, res *parser.Result, timeout time.Duration, shell string, log *xlog.Logger) *Engine {
	root := xu.RootWin()
	e := &Engine{
		xu:      xu,
		root:    root,
		builder: builder,
		log:     log,
		grabber: NewGrabber(xu, root, log),
		runner:  NewRunner(xu, shell, log),
		table:   table,
		timeout: timeout,
	}
	e.rebuildTrie(res)
	return e
}

func (e *Engine) rebuildTrie(res *parser.Result) {
	trie := NewTrie()
	for _, b := range res.Bindings {
		trie.Insert(b.Chain, b.Action)
	}
	e.trie = trie
	e.machine = NewMachine(trie, e.timeout)
	if row, ok := e.table.Lookup("Escape"); ok {
		e.machine.SetEscapeKeycode(row.Keycode)
	}
}

// InstallGrabs grabs every chord that can start a chain. Call once
// before entering Run, and again after every rebuild.
func (e *Engine) InstallGrabs() {
	e.grabber.InstallRootGrabs(e.trie.RootChords())
}

// Run blocks, processing KeyPress/KeyRelease/MappingNotify events until
// ctx is cancelled or a fatal connection error occurs (spec.md §4.3.3).
// reparse is called again on every MappingNotify, against the freshly
// rebuilt Character Table, to re-resolve the Binding Table's symbol
// names (a symbol may move to a different keycode across a layout
// switch).
func (e *Engine) Run(ctx context.Context, reparse func(table *keys.Table) *parser.Result) error {
	type result struct {
		ev  xgb.Event
		err error
	}
	events := make(chan result, 16)
	go func() {
		for {
			ev, err := e.xu.Conn().WaitForEvent()
			events <- result{ev, err}
			if ev == nil && err == nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return ctx.Err()
		case r := <-events:
			if r.err != nil {
				e.log.Debugf("x protocol error: %v", r.err)
				continue
			}
			if r.ev == nil {
				e.shutdown()
				return fmt.Errorf("x connection closed")
			}
			if err := e.handle(r.ev, reparse); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) handle(ev xgb.Event, reparse func(*keys.Table) *parser.Result) error {
	switch v := ev.(type) {
	case xproto.KeyPressEvent:
		e.dispatch(v.Detail, keys.ModMask(v.State), keys.KeyPress, time.Now())
	case xproto.KeyReleaseEvent:
		e.dispatch(v.Detail, keys.ModMask(v.State), keys.KeyRelease, time.Now())
	case xproto.MappingNotifyEvent:
		e.onMappingNotify(reparse)
	case xkb.NewKeyboardNotifyEvent:
		e.onMappingNotify(reparse)
	case xkb.MapNotifyEvent:
		e.onMappingNotify(reparse)
	}
	return nil
}

func (e *Engine) dispatch(keycode xproto.Keycode, modmask keys.ModMask, kind keys.EventKind, now time.Time) {
	d := e.machine.Step(uint8(keycode), modmask, kind, now)
	if d.GrabKeyboard {
		if err := e.grabber.GrabKeyboard(xproto.TimeCurrentTime); err != nil {
			e.log.Warnf("failed to grab keyboard for chain: %v", err)
		}
	}
	if d.UngrabKeyboard {
		e.grabber.UngrabKeyboard(xproto.TimeCurrentTime)
	}
	if d.Action != nil {
		e.runner.Run(*d.Action)
	}
}

// onMappingNotify rebuilds the Character Table and re-installs every
// grab, matching spec.md §4.3.3 ("MappingNotify triggers a full rebuild
// followed by ungrab-all and re-grab-all") and the idempotence invariant
// in spec.md §8.5.
func (e *Engine) onMappingNotify(reparse func(*keys.Table) *parser.Result) {
	oldChords := e.trie.RootChords()
	e.grabber.UngrabAll(oldChords)

	table, err := e.builder.OnMappingNotify()
	if err != nil {
		e.log.Errorf("failed to rebuild character table after MappingNotify: %v", err)
		e.grabber.InstallRootGrabs(oldChords)
		return
	}
	e.table = table

	res := reparse(table)
	e.rebuildTrie(res)
	e.InstallGrabs()
}

func (e *Engine) shutdown() {
	e.grabber.UngrabAll(e.trie.RootChords())
	e.grabber.UngrabKeyboard(xproto.TimeCurrentTime)
}
