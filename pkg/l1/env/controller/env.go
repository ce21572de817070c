// Package controller assembles a backlight controller from configuration.
package controller

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/keylight/pkg/backlight"
	"github.com/robotalks/keylight/pkg/command"
	"github.com/robotalks/keylight/pkg/effects"
	fx "github.com/robotalks/keylight/pkg/framework"
	"github.com/robotalks/keylight/pkg/hal"
	"github.com/robotalks/keylight/pkg/l0/proto"
	"github.com/robotalks/keylight/pkg/l0/serial"
	"github.com/robotalks/keylight/pkg/l1/bridge"
	"github.com/robotalks/keylight/pkg/l1/env"
	"github.com/robotalks/keylight/pkg/matrix"
)

// Config provides common options to setup a backlight controller.
type Config struct {
	// ID names the controller in MQTT topics.
	ID string
	// SerialPort is the UART to the host, used on hardware.
	SerialPort string
	Baud       int
	// BoardFile is the YAML pin layout. Empty selects the default layout
	// of Rows x Columns.
	BoardFile string
	Rows      int
	Columns   int

	// MQTTBrokerURL enables the MQTT bridge when not empty.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	Frequency       int
	Limit           uint
	ResolutionShift uint
	// PowerOn switches lighting on at startup.
	PowerOn bool
}

// Defaults of the board geometry.
const (
	DefaultRows    = 5
	DefaultColumns = 14
)

// ExitCodeReset is the exit code requesting the supervisor to start the
// firmware update.
const ExitCodeReset = 3

var defaultConfig = Config{
	SerialPort:      "/dev/ttyS0",
	Baud:            serial.DefaultBaud,
	Rows:            DefaultRows,
	Columns:         DefaultColumns,
	Frequency:       matrix.DefaultFrequency,
	Limit:           matrix.DefaultLimit,
	ResolutionShift: matrix.DefaultResolutionShift,
	PowerOn:         true,
}

func init() {
	if val := os.Getenv("KEYLIGHT_SERIAL"); val != "" {
		defaultConfig.SerialPort = val
	}
	if val := os.Getenv("KEYLIGHT_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("KEYLIGHT_BOARD"); val != "" {
		defaultConfig.BoardFile = val
	}
	defaultConfig.ID = env.ControllerID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Controller ID")
	flag.StringVar(&defaultConfig.SerialPort, "serial", defaultConfig.SerialPort, "Serial port to the host")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate")
	flag.StringVar(&defaultConfig.BoardFile, "board", defaultConfig.BoardFile, "Board layout file (YAML)")
	flag.IntVar(&defaultConfig.Rows, "rows", defaultConfig.Rows, "Rows of the default layout")
	flag.IntVar(&defaultConfig.Columns, "cols", defaultConfig.Columns, "Columns of the default layout")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.IntVar(&defaultConfig.Frequency, "freq", defaultConfig.Frequency, "Refresh timer frequency (Hz)")
	flag.UintVar(&defaultConfig.Limit, "pwm-limit", defaultConfig.Limit, "Timer ticks per column")
	flag.UintVar(&defaultConfig.ResolutionShift, "pwm-shift", defaultConfig.ResolutionShift, "Color resolution reduction (bits)")
	flag.BoolVar(&defaultConfig.PowerOn, "power-on", defaultConfig.PowerOn, "Switch lighting on at startup")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadLayout loads the board file or creates the default layout.
func (c *Config) LoadLayout() (*hal.Layout, error) {
	if c.BoardFile == "" {
		return hal.DefaultLayout(c.Rows, c.Columns), nil
	}
	layout, err := hal.LoadLayout(c.BoardFile)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %v", c.BoardFile, err)
	}
	return layout, nil
}

// MustLoadLayout loads the layout and fails on error.
func (c *Config) MustLoadLayout() *hal.Layout {
	layout, err := c.LoadLayout()
	if err != nil {
		log.Fatalln(err)
	}
	return layout
}

// SerialConfig returns the UART configuration.
func (c *Config) SerialConfig() serial.Config {
	return serial.Config{Name: c.SerialPort, Baud: c.Baud}
}

// HostLink is the transport to the host. Its message handler must be set
// to Env.Dispatcher.
type HostLink interface {
	proto.Sender
	command.Counter
	fx.Runnable
}

// Hardware provides the matrix lines and the refresh timer.
type Hardware struct {
	Layout *hal.Layout
	GPIO   hal.GPIO
	Timer  hal.Timer
}

// Env is the env of a backlight controller.
type Env struct {
	Config     *Config
	Hardware   Hardware
	Controller *backlight.Controller
	Dispatcher *command.Dispatcher
	Link       HostLink
	Bridge     *bridge.Bridge
}

// Validate checks the PWM options fit the refresh engine.
func (c *Config) Validate() error {
	if c.Limit > math.MaxUint16 {
		return fmt.Errorf("pwm-limit %d exceeds %d", c.Limit, math.MaxUint16)
	}
	if c.ResolutionShift > matrix.MaxResolutionShift {
		return fmt.Errorf("pwm-shift %d exceeds %d", c.ResolutionShift, matrix.MaxResolutionShift)
	}
	return nil
}

// NewEnv creates Env from config.
func (c *Config) NewEnv(hw Hardware, link HostLink) (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	registry := effects.Default()
	shift := uint8(c.ResolutionShift)
	ctl, err := backlight.New(backlight.Options{
		Layout:          hw.Layout,
		GPIO:            hw.GPIO,
		Timer:           hw.Timer,
		Registry:        registry,
		Frequency:       c.Frequency,
		Limit:           uint16(c.Limit),
		ResolutionShift: &shift,
	})
	if err != nil {
		return nil, fmt.Errorf("create backlight controller error: %v", err)
	}
	e := &Env{Config: c, Hardware: hw, Controller: ctl, Link: link}
	opts := command.Options{
		Scheduler: ctl.Scheduler(),
		Power:     ctl,
		Sender:    link,
		Errors:    link,
		Resetter:  exitResetter{},
	}
	if c.MQTTBrokerURL != "" {
		// MQTT commands reach the dispatcher through Env.Dispatch.
		e.Bridge, err = bridge.NewFromURL(c.MQTTBrokerURL, c.ID, e, registry.Names())
		if err != nil {
			return nil, err
		}
		opts.Listener = e.Bridge
	}
	e.Dispatcher = command.New(opts)
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(hw Hardware, link HostLink) *Env {
	e, err := c.NewEnv(hw, link)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// Dispatch implements bridge.Dispatcher.
func (e *Env) Dispatch(ctx context.Context, code command.Code, payload []byte) error {
	return e.Dispatcher.Dispatch(ctx, code, payload)
}

// Status reports the controller state.
func (e *Env) Status() command.StatusReport {
	return e.Dispatcher.Status()
}

// ProfileNames lists the profiles in selection order.
func (e *Env) ProfileNames() []string {
	return e.Controller.Scheduler().Registry().Names()
}

// Runnables returns the runners of the env.
func (e *Env) Runnables() []fx.Runnable {
	runners := []fx.Runnable{fx.NamedRun("link", e.Link)}
	if e.Bridge != nil {
		runners = append(runners, fx.NamedRun("mqtt", e.Bridge))
	}
	return runners
}

// Start switches lighting on when configured.
func (e *Env) Start() error {
	if !e.Config.PowerOn {
		return nil
	}
	return e.Controller.Enable()
}

// Run starts the env and runs until ctx is done.
func (e *Env) Run(ctx context.Context) error {
	if err := e.Start(); err != nil {
		return err
	}
	defer e.Close()
	return fx.NewRunnerWith(ctx).Go(e.Runnables()...).Wait()
}

// Close stops blinking and switches lighting off.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	errs.AddNamed("dispatcher", e.Dispatcher.Close())
	errs.AddNamed("controller", e.Controller.Close())
	return errs.Aggregate()
}

type exitResetter struct{}

func (exitResetter) Reset() error {
	glog.Warning("reset to bootloader requested")
	glog.Flush()
	os.Exit(ExitCodeReset)
	return nil
}
