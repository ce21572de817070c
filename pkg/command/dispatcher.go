package command

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/keylight/pkg/l0/proto"
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/profile"
)

// Power switches the LED matrix.
type Power interface {
	// Enable turns lighting fully on.
	Enable() error
	// EnableStickyOnly powers the matrix showing only sticky keys.
	EnableStickyOnly() error
	// Disable turns the matrix off.
	Disable() error
	// Powered indicates the matrix is refreshed.
	Powered() bool
	// StickyOnly indicates the matrix was powered for sticky keys only.
	StickyOnly() bool
}

// Counter counts protocol errors.
type Counter interface {
	Inc()
	Errors() uint8
}

// Resetter reboots into the firmware update mode.
type Resetter interface {
	Reset() error
}

// StatusListener is notified of every status reply.
type StatusListener interface {
	StatusChanged(StatusReport)
}

// StatusChangedFunc is func type of StatusListener.
type StatusChangedFunc func(StatusReport)

// StatusChanged implements StatusListener.
func (f StatusChangedFunc) StatusChanged(s StatusReport) {
	f(s)
}

// Options configures a Dispatcher.
type Options struct {
	Scheduler *profile.Scheduler
	Power     Power
	Sender    proto.Sender
	Errors    Counter
	Resetter  Resetter
	Listener  StatusListener
}

// Dispatcher executes messages. It is safe for use by multiple ingresses.
type Dispatcher struct {
	sched    *profile.Scheduler
	layers   *led.Layers
	power    Power
	sender   proto.Sender
	errors   Counter
	resetter Resetter
	listener StatusListener
	blinkers *Blinkers

	lock sync.Mutex
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	layers := opts.Scheduler.Layers()
	return &Dispatcher{
		sched:    opts.Scheduler,
		layers:   layers,
		power:    opts.Power,
		sender:   opts.Sender,
		errors:   opts.Errors,
		resetter: opts.Resetter,
		listener: opts.Listener,
		blinkers: NewBlinkers(layers.Mask),
	}
}

// Blinkers returns the key blink tasks.
func (d *Dispatcher) Blinkers() *Blinkers {
	return d.blinkers
}

// Close stops all blink tasks.
func (d *Dispatcher) Close() error {
	d.blinkers.StopAll()
	return nil
}

// HandleMessage implements proto.MessageHandler.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg *proto.Message) {
	if err := d.Dispatch(ctx, Code(msg.Command), msg.Payload); err != nil {
		glog.V(2).Infof("message %d %s dropped: %v", msg.ID, Code(msg.Command), err)
		return
	}
	glog.V(4).Infof("message %d %s %x", msg.ID, Code(msg.Command), msg.Payload)
}

// Status reports the current state.
func (d *Dispatcher) Status() StatusReport {
	s := StatusReport{
		Profiles:  uint8(d.sched.Count()),
		Current:   uint8(d.sched.Index()),
		Enabled:   d.power.Powered(),
		Reactive:  d.sched.IsReactive(),
		Intensity: d.sched.Intensity(),
	}
	if d.errors != nil {
		s.Errors = d.errors.Errors()
	}
	return s
}

// SendStatus sends a status reply.
func (d *Dispatcher) SendStatus() {
	s := d.Status()
	if d.sender != nil {
		if err := d.sender.Send(byte(Status), s.Bytes(), StatusRetries); err != nil {
			glog.Warningf("send status: %v", err)
		}
	}
	if d.listener != nil {
		d.listener.StatusChanged(s)
	}
}

// SendDebug sends a debug text reply, truncated to the payload limit.
func (d *Dispatcher) SendDebug(text string) error {
	p := []byte(text)
	if len(p) > proto.MaxPayloadSize {
		p = p[:proto.MaxPayloadSize]
	}
	if d.sender == nil {
		return nil
	}
	return d.sender.Send(byte(Debug), p, 1)
}

// Dispatch executes one command. Unknown codes are counted as protocol
// errors. A malformed or out of range payload leaves the state untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, code Code, payload []byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	switch code {
	case LedOn:
		if err := d.power.Enable(); err != nil {
			glog.Errorf("enable: %v", err)
		}
		d.SendStatus()
	case LedOff:
		if err := d.power.Disable(); err != nil {
			glog.Errorf("disable: %v", err)
		}
		d.SendStatus()
	case SetProfile:
		if len(payload) < 1 {
			return ErrShortPayload
		}
		if !d.sched.Select(int(payload[0])) {
			return ErrOutOfRange
		}
		d.SendStatus()
	case NextProfile:
		d.sched.Next()
		d.SendStatus()
	case PrevProfile:
		d.sched.Prev()
		d.SendStatus()
	case NextIntensity:
		d.sched.NextIntensity()
		d.SendStatus()
	case NextAnimationSpeed:
		d.sched.NextSpeed()
		d.SendStatus()
	case ResetIntensity:
		d.sched.ResetIntensity()
		d.SendStatus()
	case ResetAnimSpeed:
		d.sched.ResetSpeed()
		d.SendStatus()
	case SetForeground:
		if len(payload) < 3 {
			return ErrShortPayload
		}
		d.sched.SetForeground(led.RGB(payload[0], payload[1], payload[2]))
	case ClearForeground:
		d.sched.ClearForeground()
		d.SendStatus()

	case MaskSetKey:
		return d.setKey(d.layers.Mask, payload)
	case MaskSetRow:
		return d.setRow(d.layers.Mask, payload)
	case MaskSetMono:
		return d.setMono(d.layers.Mask, payload)
	case MaskClear:
		d.sched.Do(func(l *led.Layers) { l.Mask.Clear() })

	case GetStatus:
		d.SendStatus()
	case KeyBlink:
		return d.blink(ctx, payload)
	case KeyDown:
		if len(payload) < 1 {
			return ErrShortPayload
		}
		row, col := DecodeKeyDown(payload[0])
		if _, err := d.keyIndex(byte(row), byte(col)); err != nil {
			return err
		}
		d.sched.KeyDown(row, col)
	case ResetToBootloader:
		if d.resetter == nil {
			return ErrNoResetter
		}
		glog.Warning("resetting to bootloader")
		return d.resetter.Reset()

	case ColorSetKey:
		return d.setKey(d.layers.Base, payload)
	case ColorSetRow:
		return d.setRow(d.layers.Base, payload)
	case ColorSetMono:
		return d.setMono(d.layers.Base, payload)
	case SetManual:
		if len(payload) < 1 {
			return ErrShortPayload
		}
		d.sched.SetManual(payload[0] != 0)

	case StickySetKey:
		return d.stickySet(d.setKey(d.layers.Sticky, payload))
	case StickySetRow:
		return d.stickySet(d.setRow(d.layers.Sticky, payload))
	case StickySetMono:
		return d.stickySet(d.setMono(d.layers.Sticky, payload))
	case StickyUnsetKey:
		return d.stickyUnset(d.unsetStickyKey(payload))
	case StickyUnsetRow:
		return d.stickyUnset(d.unsetStickyRow(payload))
	case StickyUnsetAll:
		d.sched.Do(func(l *led.Layers) { l.Sticky.Clear() })
		return d.stickyUnset(nil)

	default:
		if d.errors != nil {
			d.errors.Inc()
		}
		return &UnknownCodeError{Code: code}
	}
	return nil
}

func (d *Dispatcher) keyIndex(row, col byte) (int, error) {
	i, ok := d.layers.Base.Index(int(row), int(col))
	if !ok {
		return 0, ErrOutOfRange
	}
	return i, nil
}

func (d *Dispatcher) setKey(buf *led.Buffer, p []byte) error {
	if len(p) < 2+led.WireSize {
		return ErrShortPayload
	}
	i, err := d.keyIndex(p[0], p[1])
	if err != nil {
		return err
	}
	buf.Set(i, led.DecodeBGRA(p[2:]))
	return nil
}

func (d *Dispatcher) setRow(buf *led.Buffer, p []byte) error {
	cols := buf.Cols()
	if len(p) < 1+cols*led.WireSize {
		return ErrShortPayload
	}
	row := int(p[0])
	if row >= buf.Rows() {
		return ErrOutOfRange
	}
	d.sched.Do(func(*led.Layers) {
		for col := 0; col < cols; col++ {
			off := 1 + col*led.WireSize
			buf.SetAt(row, col, led.DecodeBGRA(p[off:]))
		}
	})
	return nil
}

func (d *Dispatcher) setMono(buf *led.Buffer, p []byte) error {
	if len(p) < led.WireSize {
		return ErrShortPayload
	}
	c := led.DecodeBGRA(p)
	d.sched.Do(func(*led.Layers) { buf.Fill(c) })
	return nil
}

func (d *Dispatcher) blink(ctx context.Context, p []byte) error {
	if len(p) < 2+led.WireSize+2 {
		return ErrShortPayload
	}
	i, err := d.keyIndex(p[0], p[1])
	if err != nil {
		return err
	}
	d.blinkers.Start(ctx, Blink{
		Key:     i,
		Color:   led.DecodeBGRA(p[2:]),
		Toggles: int(p[6]) * 2,
		Steps:   int(p[7]),
	})
	return nil
}

func (d *Dispatcher) unsetStickyKey(p []byte) error {
	if len(p) < 2 {
		return ErrShortPayload
	}
	i, err := d.keyIndex(p[0], p[1])
	if err != nil {
		return err
	}
	d.layers.Sticky.Set(i, led.Transparent)
	return nil
}

func (d *Dispatcher) unsetStickyRow(p []byte) error {
	if len(p) < 1 {
		return ErrShortPayload
	}
	row := int(p[0])
	if row >= d.layers.Sticky.Rows() {
		return ErrOutOfRange
	}
	d.sched.Do(func(l *led.Layers) { l.Sticky.FillRow(row, led.Transparent) })
	return nil
}

// stickySet powers the matrix for sticky keys when lighting is off.
func (d *Dispatcher) stickySet(err error) error {
	if err != nil {
		return err
	}
	if !d.power.Powered() {
		if err := d.power.EnableStickyOnly(); err != nil {
			glog.Errorf("enable sticky: %v", err)
		}
		d.SendStatus()
	}
	return nil
}

// stickyUnset turns the matrix off again once the last sticky key is gone,
// if it was only powered for sticky keys.
func (d *Dispatcher) stickyUnset(err error) error {
	if err != nil {
		return err
	}
	if d.power.StickyOnly() && !d.layers.HasSticky() {
		if err := d.power.Disable(); err != nil {
			glog.Errorf("disable: %v", err)
		}
		d.SendStatus()
	}
	return nil
}
