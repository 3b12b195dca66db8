// Command lxhkd is a keyboard chord daemon for X11: it matches
// configured key chains to shell commands and remaps, and separately
// runs a tap-hold ("xcape") engine for keys that double as modifiers.
package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/xgbutil"

	"github.com/lmburns/lxhkd/internal/bind"
	"github.com/lmburns/lxhkd/internal/config"
	"github.com/lmburns/lxhkd/internal/keyboard"
	"github.com/lmburns/lxhkd/internal/keys"
	"github.com/lmburns/lxhkd/internal/parser"
	"github.com/lmburns/lxhkd/internal/pidfile"
	"github.com/lmburns/lxhkd/internal/xcape"
	"github.com/lmburns/lxhkd/internal/xlog"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		verbose   = flag.Bool("v", false, "enable warning-level logging")
		veryVerb  = flag.Bool("vv", false, "enable debug-level logging")
		cfgPath   = flag.String("c", "", "configuration file (default ~/.config/lxhkd/lxhkd.yml)")
		listKeys  = flag.Bool("L", false, "list the available keysyms and exit")
		daemonize = flag.Bool("d", false, "send the process to the background")
		kill      = flag.Bool("k", false, "kill the running daemon and exit")
		pidPath   = flag.String("p", "", "pid file (default ~/.config/lxhkd/lxhkd.pid)")
		temporary = flag.Bool("t", false, "load the config but never persist it; for testing bindings")
		colorWhen = flag.String("C", "auto", "when to colorize output: auto, always, never")
	)
	flag.Parse()

	if *pidPath == "" {
		*pidPath = pidfile.DefaultPath()
	}

	switch *colorWhen {
	case "always":
		xlog.SetColorEnabled(true)
	case "never":
		xlog.SetColorEnabled(false)
	default:
		xlog.SetColorEnabled(os.Getenv("NO_COLOR") == "" && isTerminal(os.Stderr))
	}

	switch {
	case *veryVerb:
		xlog.SetLevel(xlog.LevelDebug)
	case *verbose:
		xlog.SetLevel(xlog.LevelWarn)
	default:
		xlog.SetLevel(levelFromEnv())
	}

	log := xlog.New("lxhkd")

	if *listKeys {
		listKeysyms(os.Stdout)
		return 0
	}

	if *kill {
		if err := pidfile.Kill(*pidPath); err != nil {
			log.Errorf("%v", err)
			return 1
		}
		return 0
	}

	if running, pid, err := pidfile.Running(*pidPath); err != nil {
		log.Errorf("checking pid file: %v", err)
		return 1
	} else if running {
		log.Errorf("lxhkd is already running (pid %d); use -k to stop it", pid)
		return 1
	}

	path := *cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Errorf("load config: %v", err)
		return 1
	}
	config.ApplyEnv(cfg)

	if *daemonize && !*temporary && os.Getenv(daemonizedEnv) == "" {
		if err := reexecDaemonized(); err != nil {
			log.Errorf("daemonize: %v", err)
			return 1
		}
		return 0
	}

	if !*temporary {
		if err := pidfile.Write(*pidPath, os.Getpid()); err != nil {
			log.Errorf("write pid file: %v", err)
			return 1
		}
		defer pidfile.Remove(*pidPath)
	}

	return daemon(cfg, log)
}

// daemonizedEnv marks a re-exec'd child so it doesn't fork again.
const daemonizedEnv = "_LXHKD_DAEMONIZED"

// reexecDaemonized re-executes the current process detached into its own
// session, with stdio redirected away from the controlling terminal, and
// returns once the child has started (spec.md §6, "-d daemonize: Send
// the process to the background").
func reexecDaemonized() error {
	self, err := os.Executable()
	if err != nil {
		return err
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()

	child := exec.Command(self, os.Args[1:]...)
	child.Env = append(os.Environ(), daemonizedEnv+"=1")
	child.Stdin = devNull
	child.Stdout = devNull
	child.Stderr = devNull
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	return child.Start()
}

// daemon wires the Keymap Builder, Chord Parser, Binding Engine, and
// Tap-Hold Engine together and runs them until a termination signal
// arrives (spec.md §4, §5).
func daemon(cfg *config.Config, log *xlog.Logger) int {
	controlXU, err := xgbutil.NewConn()
	if err != nil {
		log.Errorf("open display: %v", err)
		return 1
	}

	kbLog := xlog.New("keyboard")
	builder, err := keyboard.New(controlXU, kbLog)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	table, err := builder.Build()
	if err != nil {
		log.Errorf("build character table: %v", err)
		return 1
	}

	parseLog := xlog.New("parser")
	res, parseErrs := parser.Parse(cfg, table, parseLog)
	for _, e := range parseErrs {
		parseLog.Warnf("%v", e)
	}

	timeout := time.Duration(cfg.Timeout()) * time.Millisecond

	bindLog := xlog.New("bind")
	engine := bind.New(controlXU, builder, table, res, timeout, cfg.Shell, bindLog)
	engine.InstallGrabs()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	reparse := func(t *keys.Table) *parser.Result {
		r, errs := parser.Parse(cfg, t, parseLog)
		for _, e := range errs {
			parseLog.Warnf("%v", e)
		}
		return r
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- engine.Run(ctx, reparse)
	}()

	if len(res.Xcape) > 0 {
		dataXU, err := xgbutil.NewConn()
		if err != nil {
			log.Errorf("open second display connection for tap-hold engine: %v", err)
			cancel()
			return 1
		}
		entries := make([]xcape.Entry, 0, len(res.Xcape))
		for _, x := range res.Xcape {
			entries = append(entries, xcape.Entry{From: x.From, To: x.To})
		}
		xcapeLog := xlog.New("xcape")
		xcapeTimeout := time.Duration(cfg.XcapeTimeoutSec) * time.Second
		xe, err := xcape.New(controlXU, dataXU, entries, xcapeTimeout, xcapeLog)
		if err != nil {
			log.Errorf("start tap-hold engine: %v", err)
			cancel()
			return 1
		}
		go func() {
			errCh <- xe.Run(ctx)
		}()
	}

	// A nil result is the tap-hold engine stopping on its idle timeout;
	// the Binding Engine keeps running until a signal or an error.
	for {
		err = <-errCh
		if err != nil || ctx.Err() != nil {
			break
		}
	}
	cancel()
	if err != nil && ctx.Err() == nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}

func levelFromEnv() xlog.Level {
	switch os.Getenv("LXHKD_LOG") {
	case "debug", "trace":
		return xlog.LevelDebug
	case "warn":
		return xlog.LevelWarn
	default:
		return xlog.LevelError
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
