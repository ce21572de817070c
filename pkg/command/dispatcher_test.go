package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/keylight/pkg/l0/proto"
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/profile"
)

type sentFrame struct {
	cmd     Code
	payload []byte
	retries int
}

type testSender struct {
	lock   sync.Mutex
	frames []sentFrame
}

func (s *testSender) Send(cmd byte, payload []byte, retries int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.frames = append(s.frames, sentFrame{cmd: Code(cmd), payload: append([]byte{}, payload...), retries: retries})
	return nil
}

func (s *testSender) take() []sentFrame {
	s.lock.Lock()
	defer s.lock.Unlock()
	frames := s.frames
	s.frames = nil
	return frames
}

type testPower struct {
	powered    bool
	stickyOnly bool
	calls      []string
}

func (p *testPower) Enable() error {
	p.powered, p.stickyOnly = true, false
	p.calls = append(p.calls, "enable")
	return nil
}

func (p *testPower) EnableStickyOnly() error {
	p.powered, p.stickyOnly = true, true
	p.calls = append(p.calls, "sticky")
	return nil
}

func (p *testPower) Disable() error {
	p.powered, p.stickyOnly = false, false
	p.calls = append(p.calls, "disable")
	return nil
}

func (p *testPower) Powered() bool    { return p.powered }
func (p *testPower) StickyOnly() bool { return p.stickyOnly }

type testResetter struct {
	resets int
}

func (r *testResetter) Reset() error {
	r.resets++
	return nil
}

type reactiveEffect struct {
	keys [][2]int
}

func (e *reactiveEffect) Render(buf *led.Buffer) bool { return true }

func (e *reactiveEffect) KeyDown(buf *led.Buffer, row, col int) {
	e.keys = append(e.keys, [2]int{row, col})
}

type dispatcherTestCtx struct {
	t        *testing.T
	layers   *led.Layers
	sched    *profile.Scheduler
	power    *testPower
	sender   *testSender
	parser   proto.Parser
	resetter *testResetter
	reactive *reactiveEffect
	statuses []StatusReport
	d        *Dispatcher
}

func newDispatcherTestCtx(t *testing.T) *dispatcherTestCtx {
	c := &dispatcherTestCtx{
		t:        t,
		layers:   led.NewLayers(led.DefaultRows, led.DefaultCols),
		power:    &testPower{},
		sender:   &testSender{},
		resetter: &testResetter{},
		reactive: &reactiveEffect{},
	}
	solid := profile.RenderFunc(func(buf *led.Buffer) bool {
		buf.Fill(led.RGB(1, 2, 3))
		return true
	})
	c.sched = profile.NewScheduler(profile.NewRegistry(
		profile.Profile{Name: "a", Effect: solid},
		profile.Profile{Name: "b", Effect: solid},
		profile.Profile{Name: "c", Effect: solid, Speeds: profile.Speeds{3, 2, 1, 1}},
		profile.Profile{Name: "reactive", Effect: c.reactive, Speeds: profile.Speeds{1, 1, 1, 1}},
	), c.layers, &sync.Mutex{})
	c.d = New(Options{
		Scheduler: c.sched,
		Power:     c.power,
		Sender:    c.sender,
		Errors:    &c.parser,
		Resetter:  c.resetter,
		Listener: StatusChangedFunc(func(s StatusReport) {
			c.statuses = append(c.statuses, s)
		}),
	})
	c.d.Blinkers().Step = time.Millisecond
	return c
}

func (c *dispatcherTestCtx) dispatch(code Code, payload ...byte) error {
	return c.d.Dispatch(context.Background(), code, payload)
}

func (c *dispatcherTestCtx) mustDispatch(code Code, payload ...byte) *dispatcherTestCtx {
	require.NoError(c.t, c.dispatch(code, payload...))
	return c
}

func (c *dispatcherTestCtx) expectStatus() StatusReport {
	frames := c.sender.take()
	require.Len(c.t, frames, 1)
	require.Equal(c.t, Status, frames[0].cmd)
	require.Equal(c.t, StatusRetries, frames[0].retries)
	s, err := ParseStatus(frames[0].payload)
	require.NoError(c.t, err)
	require.Equal(c.t, s, c.statuses[len(c.statuses)-1])
	return s
}

func (c *dispatcherTestCtx) expectNoReply() {
	require.Empty(c.t, c.sender.take())
}

func TestDispatchUnknown(t *testing.T) {
	c := newDispatcherTestCtx(t)
	err := c.dispatch(Code(0x7f))
	require.Equal(t, &UnknownCodeError{Code: 0x7f}, err)
	require.Equal(t, uint8(1), c.parser.Errors())
	require.Error(t, c.dispatch(Status))
	require.Equal(t, uint8(2), c.parser.Errors())
	c.expectNoReply()
}

func TestDispatchPower(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(LedOn)
	require.True(t, c.expectStatus().Enabled)
	c.mustDispatch(LedOff)
	require.False(t, c.expectStatus().Enabled)
	require.Equal(t, []string{"enable", "disable"}, c.power.calls)
}

func TestDispatchProfiles(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(SetProfile, 2)
	s := c.expectStatus()
	require.Equal(t, StatusReport{Profiles: 4, Current: 2}, s)

	require.Equal(t, ErrOutOfRange, c.dispatch(SetProfile, 4))
	require.Equal(t, ErrShortPayload, c.dispatch(SetProfile))
	c.expectNoReply()
	require.Equal(t, 2, c.sched.Index())

	c.mustDispatch(NextProfile)
	s = c.expectStatus()
	require.Equal(t, uint8(3), s.Current)
	require.True(t, s.Reactive)
	c.mustDispatch(NextProfile)
	require.Equal(t, uint8(0), c.expectStatus().Current)
	c.mustDispatch(PrevProfile)
	require.Equal(t, uint8(3), c.expectStatus().Current)
}

func TestDispatchIntensityAndSpeed(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(NextIntensity)
	require.Equal(t, uint8(1), c.expectStatus().Intensity)
	c.mustDispatch(ResetIntensity)
	require.Zero(t, c.expectStatus().Intensity)
	c.mustDispatch(SetProfile, 2)
	c.expectStatus()
	c.mustDispatch(NextAnimationSpeed)
	c.expectStatus()
	require.Equal(t, uint16(2), c.sched.Cadence().Skip)
	c.mustDispatch(ResetAnimSpeed)
	c.expectStatus()
	require.Equal(t, uint16(3), c.sched.Cadence().Skip)
}

func TestDispatchForeground(t *testing.T) {
	c := newDispatcherTestCtx(t)
	require.Equal(t, ErrShortPayload, c.dispatch(SetForeground, 1, 2))
	c.mustDispatch(SetForeground, 10, 20, 30)
	c.expectNoReply()
	fg, ok := c.layers.Foreground()
	require.True(t, ok)
	require.Equal(t, led.RGB(10, 20, 30), fg)
	c.mustDispatch(ClearForeground)
	c.expectStatus()
	_, ok = c.layers.Foreground()
	require.False(t, ok)
}

func TestDispatchLayers(t *testing.T) {
	testCases := []struct {
		name string
		set  [3]Code
		buf  func(*led.Layers) *led.Buffer
	}{
		{"mask", [3]Code{MaskSetKey, MaskSetRow, MaskSetMono}, func(l *led.Layers) *led.Buffer { return l.Mask }},
		{"color", [3]Code{ColorSetKey, ColorSetRow, ColorSetMono}, func(l *led.Layers) *led.Buffer { return l.Base }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newDispatcherTestCtx(t)
			buf := tc.buf(c.layers)

			c.mustDispatch(tc.set[0], 1, 2, 0x30, 0x20, 0x10, 0xff)
			require.Equal(t, led.Color{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, buf.At(1, 2))
			require.Equal(t, ErrOutOfRange, c.dispatch(tc.set[0], 5, 0, 1, 1, 1, 1))
			require.Equal(t, ErrOutOfRange, c.dispatch(tc.set[0], 0, 14, 1, 1, 1, 1))
			require.Equal(t, ErrShortPayload, c.dispatch(tc.set[0], 0, 0, 1, 1, 1))

			row := []byte{4}
			for col := 0; col < led.DefaultCols; col++ {
				row = append(row, byte(col), 0, 0, 0xff)
			}
			c.mustDispatch(tc.set[1], row...)
			require.Equal(t, led.Color{B: 13, A: 0xff}, buf.At(4, 13))
			row[0] = 5
			require.Equal(t, ErrOutOfRange, c.dispatch(tc.set[1], row...))
			require.Equal(t, ErrShortPayload, c.dispatch(tc.set[1], row[:len(row)-1]...))

			c.mustDispatch(tc.set[2], 1, 2, 3, 4)
			for i := 0; i < buf.Len(); i++ {
				require.Equal(t, led.Color{B: 1, G: 2, R: 3, A: 4}, buf.Get(i))
			}
			c.expectNoReply()
		})
	}
}

func TestDispatchMaskClear(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(MaskSetMono, 1, 2, 3, 4)
	c.mustDispatch(MaskClear)
	require.False(t, c.layers.Mask.Any(led.Color.IsSet))
}

func TestDispatchKeyDown(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(KeyDown, EncodeKeyDown(1, 2))
	require.Empty(t, c.reactive.keys)
	c.mustDispatch(SetProfile, 3)
	c.mustDispatch(KeyDown, EncodeKeyDown(4, 13))
	require.Equal(t, ErrOutOfRange, c.dispatch(KeyDown, EncodeKeyDown(5, 0)))
	require.Equal(t, ErrOutOfRange, c.dispatch(KeyDown, EncodeKeyDown(0, 14)))
	require.Equal(t, [][2]int{{4, 13}}, c.reactive.keys)
}

func TestKeyDownEncoding(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 16; col++ {
			b := EncodeKeyDown(row, col)
			require.NotZero(t, b&0x80)
			r, c := DecodeKeyDown(b)
			require.Equal(t, row, r)
			require.Equal(t, col, c)
		}
	}
}

func TestDispatchBlink(t *testing.T) {
	c := newDispatcherTestCtx(t)
	require.Equal(t, ErrShortPayload, c.dispatch(KeyBlink, 0, 0, 1, 2, 3, 4, 1))
	require.Equal(t, ErrOutOfRange, c.dispatch(KeyBlink, 9, 0, 1, 2, 3, 4, 1, 1))

	c.mustDispatch(KeyBlink, 0, 1, 0, 0, 0xff, 0xff, 100, 100)
	require.Eventually(t, func() bool {
		return c.layers.Mask.At(0, 1) == led.RGB(0xff, 0, 0)
	}, time.Second, time.Millisecond)
	c.mustDispatch(KeyBlink, 0, 1, 0xff, 0, 0, 0xff, 1, 1)
	require.Eventually(t, func() bool {
		return c.d.Blinkers().Running() == 0
	}, time.Second, time.Millisecond)
	require.Equal(t, led.Transparent, c.layers.Mask.At(0, 1))
}

func TestBlinkersJoin(t *testing.T) {
	buf := led.NewBuffer(1, 2)
	b := NewBlinkers(buf)
	b.Step = time.Hour
	b.Start(context.Background(), Blink{Key: 0, Color: led.RGB(1, 1, 1), Toggles: 4, Steps: 1})
	b.Start(context.Background(), Blink{Key: 1, Color: led.RGB(2, 2, 2), Toggles: 4, Steps: 1})
	require.Eventually(t, func() bool { return buf.Get(1).IsSet() }, time.Second, time.Millisecond)
	require.Equal(t, 2, b.Running())
	b.Start(context.Background(), Blink{Key: 0, Color: led.RGB(3, 3, 3), Toggles: 4, Steps: 1})
	require.Equal(t, 2, b.Running())
	require.Eventually(t, func() bool { return buf.Get(0) == led.RGB(3, 3, 3) }, time.Second, time.Millisecond)
	b.Stop(1)
	require.Equal(t, led.Transparent, buf.Get(1))
	b.StopAll()
	require.Zero(t, b.Running())
	require.Equal(t, led.Transparent, buf.Get(0))
}

func TestDispatchSticky(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(StickySetKey, 0, 0, 1, 1, 1, 0xff)
	require.True(t, c.expectStatus().Enabled)
	require.True(t, c.power.StickyOnly())
	c.mustDispatch(StickySetKey, 0, 1, 1, 1, 1, 0xff)
	c.expectNoReply()

	c.mustDispatch(StickyUnsetKey, 0, 0)
	c.expectNoReply()
	require.Equal(t, ErrOutOfRange, c.dispatch(StickyUnsetRow, 5))
	c.mustDispatch(StickyUnsetRow, 0)
	require.False(t, c.expectStatus().Enabled)
	require.Equal(t, []string{"sticky", "disable"}, c.power.calls)

	c.mustDispatch(LedOn)
	c.expectStatus()
	c.mustDispatch(StickySetMono, 1, 1, 1, 0xff)
	c.mustDispatch(StickyUnsetAll)
	c.expectNoReply()
	require.True(t, c.power.Powered())
	require.False(t, c.layers.HasSticky())
}

func TestDispatchManual(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(SetManual, 1)
	require.True(t, c.sched.Manual())
	c.mustDispatch(SetManual, 0)
	require.False(t, c.sched.Manual())
}

func TestDispatchReset(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.mustDispatch(ResetToBootloader)
	require.Equal(t, 1, c.resetter.resets)
	c.d.resetter = nil
	require.Equal(t, ErrNoResetter, c.dispatch(ResetToBootloader))
}

func TestSendDebug(t *testing.T) {
	c := newDispatcherTestCtx(t)
	require.NoError(t, c.d.SendDebug("hello"))
	frames := c.sender.take()
	require.Equal(t, []sentFrame{{cmd: Debug, payload: []byte("hello"), retries: 1}}, frames)
	long := make([]byte, 300)
	require.NoError(t, c.d.SendDebug(string(long)))
	require.Len(t, c.sender.take()[0].payload, proto.MaxPayloadSize)
}

func TestHandleMessage(t *testing.T) {
	c := newDispatcherTestCtx(t)
	c.d.HandleMessage(context.Background(), &proto.Message{Command: byte(SetProfile), ID: 1, Payload: []byte{1}})
	require.Equal(t, 1, c.sched.Index())
	c.d.HandleMessage(context.Background(), &proto.Message{Command: 0x99, ID: 2})
	require.Equal(t, uint8(1), c.parser.Errors())
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "set-profile", SetProfile.String())
	require.Equal(t, "code-99", Code(0x99).String())
	code, ok := ParseCode("key-blink")
	require.True(t, ok)
	require.Equal(t, KeyBlink, code)
	_, ok = ParseCode("nope")
	require.False(t, ok)
}

func TestStatusReport(t *testing.T) {
	s := StatusReport{Profiles: 15, Current: 2, Enabled: true, Intensity: 3, Errors: 9}
	require.Equal(t, []byte{15, 2, 1, 0, 3, 9}, s.Bytes())
	_, err := ParseStatus([]byte{1, 2})
	require.Equal(t, ErrShortPayload, err)
}
