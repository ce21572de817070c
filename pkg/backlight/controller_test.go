package backlight

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/keylight/pkg/command"
	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/l0/proto"
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/matrix"
	"github.com/robotalks/keylight/pkg/profile"
)

type solidProfile struct {
	color   led.Color
	actives int
}

func (p *solidProfile) Render(buf *led.Buffer) bool {
	buf.Fill(p.color)
	return true
}

func (p *solidProfile) Activate(buf *led.Buffer) {
	p.actives++
}

type failingTimer struct{}

func (failingTimer) Start(int, func()) error { return errors.New("no timer") }
func (failingTimer) Stop()                   {}

type controllerTestCtx struct {
	t        *testing.T
	layout   *hal.Layout
	gpio     *hal.VirtualGPIO
	timer    *hal.StepTimer
	profiles []*solidProfile
	ctl      *Controller
}

func newControllerTestCtx(t *testing.T) *controllerTestCtx {
	c := &controllerTestCtx{
		t:      t,
		layout: hal.DefaultLayout(5, 14),
		timer:  &hal.StepTimer{},
		profiles: []*solidProfile{
			{color: led.RGB(0xff, 0, 0)},
			{color: led.RGB(0, 0xff, 0)},
			{color: led.RGB(0, 0, 0xff)},
		},
	}
	c.gpio = hal.NewVirtualGPIOFor(c.layout)
	var profiles []profile.Profile
	for n, p := range c.profiles {
		profiles = append(profiles, profile.Profile{Name: string(rune('a' + n)), Effect: p, Speeds: profile.Static})
	}
	ctl, err := New(Options{
		Layout:   c.layout,
		GPIO:     c.gpio,
		Timer:    c.timer,
		Registry: profile.NewRegistry(profiles...),
	})
	require.NoError(t, err)
	c.ctl = ctl
	return c
}

func (c *controllerTestCtx) powerLine() bool {
	return c.gpio.Level(*c.layout.Power)
}

func TestNewValidation(t *testing.T) {
	layout := hal.DefaultLayout(5, 14)
	gpio := hal.NewVirtualGPIOFor(layout)
	registry := profile.NewRegistry(profile.Profile{Name: "a", Effect: &solidProfile{}, Speeds: profile.Static})

	_, err := New(Options{GPIO: gpio, Timer: &hal.StepTimer{}, Registry: registry})
	require.Error(t, err)
	_, err = New(Options{Layout: layout, GPIO: gpio, Timer: &hal.StepTimer{}})
	require.Error(t, err)
	_, err = New(Options{Layout: &hal.Layout{}, GPIO: gpio, Timer: &hal.StepTimer{}, Registry: registry})
	require.Error(t, err)
	shift := uint8(matrix.MaxResolutionShift + 1)
	_, err = New(Options{Layout: layout, GPIO: gpio, Timer: &hal.StepTimer{}, Registry: registry, ResolutionShift: &shift})
	require.Error(t, err)
}

func TestResolutionShiftOption(t *testing.T) {
	layout := hal.DefaultLayout(5, 14)
	gpio := hal.NewVirtualGPIOFor(layout)
	registry := profile.NewRegistry(profile.Profile{Name: "a", Effect: &solidProfile{}, Speeds: profile.Static})

	ctl, err := New(Options{Layout: layout, GPIO: gpio, Timer: &hal.StepTimer{}, Registry: registry})
	require.NoError(t, err)
	require.Equal(t, uint8(matrix.DefaultResolutionShift), ctl.Engine().ResolutionShift())

	var zero uint8
	ctl, err = New(Options{Layout: layout, GPIO: gpio, Timer: &hal.StepTimer{}, Registry: registry, ResolutionShift: &zero})
	require.NoError(t, err)
	require.Zero(t, ctl.Engine().ResolutionShift())
	require.Equal(t, uint16(1), ctl.Engine().OnTime(1, 0))
}

func TestPowerGating(t *testing.T) {
	c := newControllerTestCtx(t)
	require.False(t, c.ctl.Powered())
	require.False(t, c.timer.Running())
	require.False(t, c.powerLine())

	require.NoError(t, c.ctl.Enable())
	require.True(t, c.ctl.Powered())
	require.False(t, c.ctl.StickyOnly())
	require.True(t, c.timer.Running())
	require.Equal(t, 80000, c.timer.Frequency())
	require.True(t, c.powerLine())
	require.Equal(t, 1, c.profiles[0].actives)

	c.timer.Step(1)
	require.True(t, c.gpio.Level(c.layout.Columns[0]))
	require.True(t, c.gpio.Level(c.layout.Rows[0].R))
	require.False(t, c.gpio.Level(c.layout.Rows[0].G))

	require.NoError(t, c.ctl.Enable())
	require.Equal(t, 2, c.profiles[0].actives)

	require.NoError(t, c.ctl.Disable())
	require.False(t, c.ctl.Powered())
	require.False(t, c.timer.Running())
	require.False(t, c.gpio.AnyHigh())
	require.Zero(t, c.timer.Step(10))

	require.NoError(t, c.ctl.Disable())
	require.NoError(t, c.ctl.Close())
}

func TestStickyOnly(t *testing.T) {
	c := newControllerTestCtx(t)
	require.NoError(t, c.ctl.EnableStickyOnly())
	require.True(t, c.ctl.Powered())
	require.True(t, c.ctl.StickyOnly())
	require.Zero(t, c.profiles[0].actives)

	c.ctl.Layers().Sticky.SetAt(0, 0, led.RGB(0, 0xff, 0))
	c.timer.Step(1)
	require.True(t, c.gpio.Level(c.layout.Rows[0].G))
	require.False(t, c.gpio.Level(c.layout.Rows[0].R))
	require.False(t, c.gpio.Level(c.layout.Rows[1].R))

	require.NoError(t, c.ctl.Enable())
	require.False(t, c.ctl.StickyOnly())
	require.Equal(t, 1, c.profiles[0].actives)

	require.NoError(t, c.ctl.EnableStickyOnly())
	require.False(t, c.ctl.StickyOnly())

	require.NoError(t, c.ctl.Disable())
	require.False(t, c.ctl.StickyOnly())
}

func TestTimerFailure(t *testing.T) {
	layout := hal.DefaultLayout(5, 14)
	gpio := hal.NewVirtualGPIOFor(layout)
	ctl, err := New(Options{
		Layout:   layout,
		GPIO:     gpio,
		Timer:    failingTimer{},
		Registry: profile.NewRegistry(profile.Profile{Name: "a", Effect: &solidProfile{}, Speeds: profile.Static}),
	})
	require.NoError(t, err)
	require.Error(t, ctl.Enable())
	require.False(t, ctl.Powered())
	require.False(t, gpio.Level(*layout.Power))
}

func TestSetProfileEndToEnd(t *testing.T) {
	c := newControllerTestCtx(t)
	var reply bytes.Buffer
	var link proto.Parser
	d := command.New(command.Options{
		Scheduler: c.ctl.Scheduler(),
		Power:     c.ctl,
		Sender:    &proto.Transmitter{Writer: &reply},
		Errors:    &link,
	})
	defer d.Close()

	var wire bytes.Buffer
	host := proto.Transmitter{Writer: &wire}
	feed := func() {
		for _, b := range wire.Bytes() {
			if msg := link.Parse(b); msg != nil {
				d.HandleMessage(context.Background(), msg)
			}
		}
		wire.Reset()
	}

	require.NoError(t, host.Send(byte(command.LedOn), nil, 1))
	feed()
	require.True(t, c.ctl.Powered())
	reply.Reset()

	require.NoError(t, host.Send(byte(command.SetProfile), []byte{2}, 1))
	feed()
	require.Equal(t, 2, c.ctl.Scheduler().Index())
	require.Equal(t, 1, c.profiles[2].actives)

	var replies []command.StatusReport
	var hostParser proto.Parser
	for _, b := range reply.Bytes() {
		if msg := hostParser.Parse(b); msg != nil {
			require.Equal(t, byte(command.Status), msg.Command)
			s, err := command.ParseStatus(msg.Payload)
			require.NoError(t, err)
			replies = append(replies, s)
		}
	}
	require.Equal(t, []command.StatusReport{{Profiles: 3, Current: 2, Enabled: true}}, replies)

	c.timer.Step(int(c.ctl.Engine().Limit())*13 + 1)
	for row := range c.layout.Rows {
		require.Equal(t, led.RGB(0, 0, 0xff), c.ctl.Layers().Base.At(row, 13))
	}
	require.True(t, c.gpio.Level(c.layout.Columns[13]))
	require.True(t, c.gpio.Level(c.layout.Rows[4].B))
	require.False(t, c.gpio.Level(c.layout.Rows[4].R))
}
