package bind

import (
	"os"
	"os/exec"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"

	"github.com/lmburns/lxhkd/internal/keys"
	"github.com/lmburns/lxhkd/internal/xlog"
)

// Runner executes a terminal Action (spec.md §4.3.4). It holds the
// control connection and configured shell, but no state of its own --
// Shell spawns are fire-and-forget and Remap injections are synchronous
// XTest requests.
type Runner struct {
	xu    *xgbutil.XUtil
	shell string
	log   *xlog.Logger
}

// NewRunner returns a Runner that spawns shell via "$shell -c cmd" and
// injects remaps on xu's connection. shell falls back to $SHELL, then
// "/bin/sh", matching spec.md §6's environment rules.
func NewRunner(xu *xgbutil.XUtil, shell string, log *xlog.Logger) *Runner {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Runner{xu: xu, shell: shell, log: log}
}

// Run executes a, logging but never surfacing failure (spec.md §4.3.4:
// "spawn failure is logged, not surfaced").
func (r *Runner) Run(a keys.Action) {
	switch a.Kind {
	case keys.ActionShell:
		r.runShell(a.Shell)
	case keys.ActionRemap:
		r.runRemap(a.Remap)
	}
}

func (r *Runner) runShell(cmd string) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		r.log.Errorf("spawn %q: open %s: %v", cmd, os.DevNull, err)
		return
	}
	defer devNull.Close()

	c := exec.Command(r.shell, "-c", cmd)
	c.Stdin = nil
	c.Stdout = devNull
	c.Stderr = devNull
	detach(c)

	if err := c.Start(); err != nil {
		r.log.Errorf("spawn %q: %v", cmd, err)
		return
	}
	// Never wait: the daemon does not track spawned children, matching
	// spec.md §4.3.4 ("Never wait").
	go func() {
		_ = c.Wait()
	}()
}

// runRemap synthesizes a press then a release for every chord in chain,
// in order, via the XTest fake-input request. This path does not touch
// the Tap-Hold Engine's generated-by-us bookkeeping: these events are
// delivered to the grabbing client as synthetic input, not observed back
// through the record stream (spec.md §4.3.4).
func (r *Runner) runRemap(chain keys.Chain) {
	for _, chord := range chain.Chords {
		if err := r.fakeInput(xproto.KeyPress, chord.Char.Keycode); err != nil {
			r.log.Errorf("remap: fake press for keycode %d: %v", chord.Char.Keycode, err)
			return
		}
		if err := r.fakeInput(xproto.KeyRelease, chord.Char.Keycode); err != nil {
			r.log.Errorf("remap: fake release for keycode %d: %v", chord.Char.Keycode, err)
			return
		}
	}
}

func (r *Runner) fakeInput(eventType byte, keycode uint8) error {
	return xtest.FakeInputChecked(
		r.xu.Conn(),
		eventType,
		keycode,
		0,
		r.xu.RootWin(),
		0, 0,
		0,
	).Check()
}
