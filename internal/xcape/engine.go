package xcape

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/record"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"

	"github.com/lmburns/lxhkd/internal/keys"
	"github.com/lmburns/lxhkd/internal/xlog"
)

// Engine is the Tap-Hold Engine (spec.md §4.4): it owns the control
// connection (fake-input and ungrab requests) and a second, dedicated
// data connection used only to drain the Record extension's device-event
// stream, and drives a Classifier from what it reads.
//
// original_source/src/keys/xcape.rs holds the equivalent x11rb struct;
// that crate's record::ConnectionExt::enable_context iterator becomes,
// in xgb's request/reply model, a loop of repeated EnableContext.Reply()
// calls on the dedicated data connection (the Record extension is
// specified so every such call after the first returns the next queued
// packet rather than erroring).
type Engine struct {
	control    *xgbutil.XUtil
	data       *xgbutil.XUtil
	classifier *Classifier
	log        *xlog.Logger

	ctx     record.Context
	timeout time.Duration // spec.md §4.4.3; zero means no timeout
}

// New creates a Tap-Hold Engine. control issues fake-input requests;
// data is a second, independently-opened connection dedicated to the
// record stream (spec.md §4.4, "Two X connections").
func New(control, data *xgbutil.XUtil, entries []Entry, timeout time.Duration, log *xlog.Logger) (*Engine, error) {
	if err := record.Init(data.Conn()); err != nil {
		return nil, fmt.Errorf("record extension unavailable: %w", err)
	}

	ctxID, err := data.Conn().NewId()
	if err != nil {
		return nil, fmt.Errorf("allocate record context id: %w", err)
	}

	clientSpec := []record.ClientSpec{record.ClientSpec(record.CSAllClients)}
	ranges := []record.Range{
		{
			DeviceEvents: record.Range8{
				First: byte(xproto.KeyPress),
				Last:  byte(xproto.MotionNotify),
			},
		},
	}
	if err := record.CreateContextChecked(
		data.Conn(), record.Context(ctxID), record.ElementHeader(0),
		clientSpec, ranges,
	).Check(); err != nil {
		return nil, fmt.Errorf("create record context: %w", err)
	}

	return &Engine{
		control:    control,
		data:       data,
		classifier: NewClassifier(entries),
		log:        log,
		ctx:        record.Context(ctxID),
		timeout:    timeout,
	}, nil
}

// Run enables the record context and processes its data stream until ctx
// is cancelled, a disconnect occurs (fatal, spec.md §4.4.4), or the
// optional tap-window timeout elapses with no real activity (spec.md
// §4.4.3).
func (e *Engine) Run(ctx context.Context) error {
	packets := make(chan recordPacket, 16)
	go e.readLoop(packets)

	var idleTimer *time.Timer
	var idleCh <-chan time.Time
	if e.timeout > 0 {
		idleTimer = time.NewTimer(e.timeout)
		idleCh = idleTimer.C
		defer idleTimer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			e.disable()
			return ctx.Err()
		case <-idleCh:
			e.log.Debugf("tap-hold idle timeout elapsed, disabling record context")
			e.disable()
			return nil
		case p := <-packets:
			if p.err != nil {
				return fmt.Errorf("record stream disconnected: %w", p.err)
			}
			if idleTimer != nil {
				if !idleTimer.Stop() {
					<-idleTimer.C
				}
				idleTimer.Reset(e.timeout)
			}
			e.handlePacket(p.data)
		}
	}
}

type recordPacket struct {
	data []byte
	err  error
}

// readLoop issues repeated EnableContext replies on the data connection,
// each carrying one queued record-stream packet, and forwards the raw
// bytes for decoding. A malformed packet length is logged and the bytes
// skipped to the next 32-byte boundary (spec.md §7, "Runtime internal").
func (e *Engine) readLoop(out chan<- recordPacket) {
	for {
		reply, err := record.EnableContext(e.data.Conn(), e.ctx).Reply()
		if err != nil {
			out <- recordPacket{err: err}
			return
		}
		if reply == nil {
			out <- recordPacket{err: fmt.Errorf("nil enable-context reply")}
			return
		}
		if n := len(reply.Data) % 32; n != 0 {
			e.log.Warnf("malformed record packet: length %d not a multiple of 32, skipping %d trailing bytes", len(reply.Data), n)
			reply.Data = reply.Data[:len(reply.Data)-n]
		}
		out <- recordPacket{data: reply.Data}
	}
}

// handlePacket decodes one or more 32-byte device-event records out of
// data and feeds each to the classifier, issuing fake-input requests for
// anything it decides to synthesize.
func (e *Engine) handlePacket(data []byte) {
	for off := 0; off+32 <= len(data); off += 32 {
		rec := data[off : off+32]
		code := rec[0]
		detail := rec[1]

		switch code {
		case byte(xproto.KeyPress):
			e.classifier.OnKeyPress(detail)
		case byte(xproto.KeyRelease):
			toInject, ignore := e.classifier.OnKeyRelease(detail)
			if ignore {
				continue
			}
			e.inject(toInject)
		case byte(xproto.ButtonPress):
			e.classifier.OnButtonPress()
		case byte(xproto.ButtonRelease):
			e.classifier.OnButtonRelease()
		}
	}
}

func (e *Engine) inject(rows []keys.CharacterMap) {
	for _, row := range rows {
		if err := e.fakeInput(xproto.KeyPress, row.Keycode); err != nil {
			e.log.Errorf("xcape: fake press for keycode %d: %v", row.Keycode, err)
			return
		}
		e.classifier.MarkGenerated(row.Keycode)
		if err := e.fakeInput(xproto.KeyRelease, row.Keycode); err != nil {
			e.log.Errorf("xcape: fake release for keycode %d: %v", row.Keycode, err)
			return
		}
		e.classifier.MarkGenerated(row.Keycode)
	}
	// Flush the control connection so both synthetic events reach the
	// server before the next real event is processed (spec.md §4.4.2,
	// "flush control connection").
	e.control.Conn().Sync()
}

func (e *Engine) fakeInput(eventType byte, keycode uint8) error {
	return xtest.FakeInputChecked(
		e.control.Conn(), eventType, keycode, 0, e.control.RootWin(), 0, 0, 0,
	).Check()
}

func (e *Engine) disable() {
	if err := record.DisableContextChecked(e.data.Conn(), e.ctx).Check(); err != nil {
		e.log.Debugf("disable record context: %v", err)
	}
}
