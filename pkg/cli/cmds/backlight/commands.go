// Package backlight adds lighting commands to the console.
package backlight

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/keylight/pkg/cli/sh"
	"github.com/robotalks/keylight/pkg/command"
	"github.com/robotalks/keylight/pkg/led"
)

// LayerCodes are the key, row and mono set commands of a layer.
type LayerCodes struct {
	Key, Row, Mono command.Code
}

// Layers maps console layer names to commands.
var Layers = map[string]LayerCodes{
	"color":  {Key: command.ColorSetKey, Row: command.ColorSetRow, Mono: command.ColorSetMono},
	"mask":   {Key: command.MaskSetKey, Row: command.MaskSetRow, Mono: command.MaskSetMono},
	"sticky": {Key: command.StickySetKey, Row: command.StickySetRow, Mono: command.StickySetMono},
}

// KeyPayload encodes a key color payload.
func KeyPayload(row, col byte, c led.Color) []byte {
	return c.EncodeBGRA([]byte{row, col})
}

// RowPayload encodes a row payload.
func RowPayload(row byte, colors []led.Color) []byte {
	p := []byte{row}
	for _, c := range colors {
		p = c.EncodeBGRA(p)
	}
	return p
}

// BlinkPayload encodes a key blink payload.
func BlinkPayload(row, col byte, c led.Color, times, steps byte) []byte {
	return append(KeyPayload(row, col, c), times, steps)
}

// ProfileIndex resolves a profile number or name.
func ProfileIndex(arg string, names []string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 || n >= len(names) {
			return 0, fmt.Errorf("profile %d out of range", n)
		}
		return n, nil
	}
	for n, name := range names {
		if name == arg {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown profile %q", arg)
}

func parseColors(args []string) ([]led.Color, error) {
	colors := make([]led.Color, len(args))
	for n, arg := range args {
		c, err := sh.ParseColor(arg)
		if err != nil {
			return nil, err
		}
		colors[n] = c
	}
	return colors, nil
}

func layerCmds(name string, codes LayerCodes) []*ishell.Cmd {
	return []*ishell.Cmd{
		{
			Name: name + ".key",
			Help: "ROW COL RRGGBB",
			Func: func(c *ishell.Context) {
				row, col, err := sh.ParseKey(c.Args)
				if err != nil {
					c.Err(err)
					return
				}
				if len(c.Args) < 3 {
					c.Err(fmt.Errorf("RRGGBB required"))
					return
				}
				color, err := sh.ParseColor(c.Args[2])
				if err != nil {
					c.Err(err)
					return
				}
				sh.DoCommand(c, codes.Key, KeyPayload(row, col, color))
			},
		},
		{
			Name: name + ".row",
			Help: "ROW RRGGBB...",
			Func: func(c *ishell.Context) {
				if len(c.Args) < 2 {
					c.Err(fmt.Errorf("ROW RRGGBB... required"))
					return
				}
				row, err := sh.ParseByte("ROW", c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				colors, err := parseColors(c.Args[1:])
				if err != nil {
					c.Err(err)
					return
				}
				sh.DoCommand(c, codes.Row, RowPayload(row, colors))
			},
		},
		{
			Name: name + ".mono",
			Help: "RRGGBB",
			Func: func(c *ishell.Context) {
				if len(c.Args) < 1 {
					c.Err(fmt.Errorf("RRGGBB required"))
					return
				}
				color, err := sh.ParseColor(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				sh.DoCommand(c, codes.Mono, color.EncodeBGRA(nil))
			},
		},
	}
}

var (
	// ProfileCmd selects a profile.
	ProfileCmd = ishell.Cmd{
		Name:    "profile",
		Aliases: []string{"pr"},
		Help:    "INDEX|NAME",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("INDEX or NAME required"))
				return
			}
			n, err := ProfileIndex(c.Args[0], sh.ShellFrom(c).Target.ProfileNames())
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, command.SetProfile, []byte{byte(n)})
		},
	}

	// ForegroundCmd sets or clears the foreground color.
	ForegroundCmd = ishell.Cmd{
		Name: "fg",
		Help: "RRGGBB|clear",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 || c.Args[0] == "clear" {
				sh.DoCommand(c, command.ClearForeground, nil)
				return
			}
			color, err := sh.ParseColor(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, command.SetForeground, []byte{color.R, color.G, color.B})
		},
	}

	// BlinkCmd blinks a key.
	BlinkCmd = ishell.Cmd{
		Name:    "blink",
		Aliases: []string{"b"},
		Help:    "ROW COL RRGGBB [TIMES] [STEPS]",
		Func: func(c *ishell.Context) {
			row, col, err := sh.ParseKey(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("RRGGBB required"))
				return
			}
			color, err := sh.ParseColor(c.Args[2])
			if err != nil {
				c.Err(err)
				return
			}
			times, steps := byte(3), byte(20)
			if len(c.Args) > 3 {
				if times, err = sh.ParseByte("TIMES", c.Args[3]); err != nil {
					c.Err(err)
					return
				}
			}
			if len(c.Args) > 4 {
				if steps, err = sh.ParseByte("STEPS", c.Args[4]); err != nil {
					c.Err(err)
					return
				}
			}
			sh.DoCommand(c, command.KeyBlink, BlinkPayload(row, col, color, times, steps))
		},
	}

	// UnstickCmd removes sticky keys.
	UnstickCmd = ishell.Cmd{
		Name: "sticky.unset",
		Help: "[ROW [COL]]",
		Func: func(c *ishell.Context) {
			switch len(c.Args) {
			case 0:
				sh.DoCommand(c, command.StickyUnsetAll, nil)
			case 1:
				row, err := sh.ParseByte("ROW", c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				sh.DoCommand(c, command.StickyUnsetRow, []byte{row})
			default:
				row, col, err := sh.ParseKey(c.Args)
				if err != nil {
					c.Err(err)
					return
				}
				sh.DoCommand(c, command.StickyUnsetKey, []byte{row, col})
			}
		},
	}
)

func init() {
	sh.AddCmds(&ProfileCmd, &ForegroundCmd, &BlinkCmd, &UnstickCmd)
	for _, name := range []string{"color", "mask", "sticky"} {
		sh.AddCmds(layerCmds(name, Layers[name])...)
	}
}
