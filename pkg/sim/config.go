package sim

import (
	"flag"
	"os"
)

// Config defines the configuration of the simulator.
type Config struct {
	// Listen is the address of the websocket host link.
	Listen string
	// Scale is the size of a key in pixels.
	Scale int
	// Window is the number of column sweeps averaged per frame.
	Window int
	// Console runs the bench console on stdin.
	Console bool
}

// Defaults
const (
	DefaultListen = "localhost:8181"
	DefaultScale  = 48
)

var defaultConfig = Config{
	Listen:  DefaultListen,
	Scale:   DefaultScale,
	Window:  DefaultWindow,
	Console: true,
}

func init() {
	if val := os.Getenv("KEYLIGHT_SIM_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Websocket address of the host link")
	flag.IntVar(&defaultConfig.Scale, "key-size", defaultConfig.Scale, "Size (pixels) of a key in the window")
	flag.IntVar(&defaultConfig.Window, "sweeps", defaultConfig.Window, "Column sweeps averaged per displayed frame")
	flag.BoolVar(&defaultConfig.Console, "console", defaultConfig.Console, "Run the bench console")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
