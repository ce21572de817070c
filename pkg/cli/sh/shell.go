// Package sh provides the bench console of a backlight controller.
package sh

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/keylight/pkg/command"
	fx "github.com/robotalks/keylight/pkg/framework"
	"github.com/robotalks/keylight/pkg/led"
)

// Target is the controller driven by the console.
type Target interface {
	Dispatch(ctx context.Context, code command.Code, payload []byte) error
	Status() command.StatusReport
	ProfileNames() []string
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	OutputJSON bool

	Shell  *ishell.Shell
	Target Target
	// Frame optionally returns the perceived key colors.
	Frame func() []led.Color
	// Columns is the row width used to print frames.
	Columns int

	ctx context.Context
}

const (
	shellKey = "$shell"
	prompt   = "keylight > "
)

var (
	outputJSON bool

	commands = []*ishell.Cmd{
		&SendCmd,
		&CodesCmd,
		&StatusCmd,
		&ProfilesCmd,
		&KeyCmd,
		&FrameCmd,
	}
)

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print console output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(target Target) *Shell {
	s := &Shell{
		OutputJSON: outputJSON,
		Shell:      ishell.New(),
		Target:     target,
		ctx:        context.Background(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Run implements framework.Runnable. It returns nil when the user exits.
func (s *Shell) Run(ctx context.Context) error {
	s.ctx = ctx
	return fx.RunWithContextCancel(ctx, s.Shell.Close, func() error {
		s.Shell.Run()
		return nil
	})
}

// Send dispatches a command to the target.
func (s *Shell) Send(code command.Code, payload []byte) error {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Target.Dispatch(ctx, code, payload)
}

// Print writes v in JSON or in its default format.
func (s *Shell) Print(c *ishell.Context, v interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(v)
}

// DoCommand dispatches a command and reports the result.
func DoCommand(c *ishell.Context, code command.Code, payload []byte) error {
	s := ShellFrom(c)
	if err := s.Send(code, payload); err != nil {
		c.Err(err)
		return err
	}
	if !s.OutputJSON {
		c.Println("OK")
	}
	return nil
}

// ParseCode accepts a command name or a numeric code.
func ParseCode(arg string) (command.Code, error) {
	if code, ok := command.ParseCode(arg); ok {
		return code, nil
	}
	val, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid command %q", arg)
	}
	return command.Code(val), nil
}

// ParseHex decodes payload bytes from hex arguments, spaces and colons
// are ignored.
func ParseHex(args ...string) ([]byte, error) {
	str := strings.NewReplacer(":", "", " ", "").Replace(strings.Join(args, ""))
	p, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("invalid payload: %v", err)
	}
	return p, nil
}

// ParseColor decodes RRGGBB, with an optional leading #.
func ParseColor(arg string) (led.Color, error) {
	val, err := strconv.ParseUint(strings.TrimPrefix(arg, "#"), 16, 24)
	if err != nil {
		return led.Color{}, fmt.Errorf("invalid color %q", arg)
	}
	return led.Hex(uint32(val)), nil
}

// ParseByte parses a decimal byte argument.
func ParseByte(name, arg string) (byte, error) {
	val, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return byte(val), nil
}

// ParseKey parses ROW COL arguments.
func ParseKey(args []string) (row, col byte, err error) {
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("ROW COL required")
	}
	if row, err = ParseByte("ROW", args[0]); err != nil {
		return
	}
	col, err = ParseByte("COL", args[1])
	return
}

// FormatStatus formats a status report for display.
func FormatStatus(s command.StatusReport, names []string) string {
	name := "?"
	if int(s.Current) < len(names) {
		name = names[s.Current]
	}
	return fmt.Sprintf("enabled=%v profile=%d/%d(%s) reactive=%v intensity=%d errors=%d",
		s.Enabled, s.Current, s.Profiles, name, s.Reactive, s.Intensity, s.Errors)
}

// FormatFrame prints key colors as rows of RRGGBB.
func FormatFrame(frame []led.Color, cols int) string {
	var sb strings.Builder
	for n, c := range frame {
		if n > 0 {
			if n%cols == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, "%02x%02x%02x", c.R, c.G, c.B)
	}
	return sb.String()
}

var (
	// SendCmd sends a raw command.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "CODE [PAYLOAD-HEX...]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CODE required"))
				return
			}
			code, err := ParseCode(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			payload, err := ParseHex(c.Args[1:]...)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, code, payload)
		},
	}

	// CodesCmd lists command names.
	CodesCmd = ishell.Cmd{
		Name: "codes",
		Help: "",
		Func: func(c *ishell.Context) {
			for n := 0; n < 0x100; n++ {
				if _, ok := command.ParseCode(command.Code(n).String()); ok {
					c.Printf("0x%02x %s\n", n, command.Code(n))
				}
			}
		},
	}

	// StatusCmd shows the controller status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			status := s.Target.Status()
			if s.OutputJSON {
				s.Print(c, status)
				return
			}
			c.Println(FormatStatus(status, s.Target.ProfileNames()))
		},
	}

	// ProfilesCmd lists the profiles.
	ProfilesCmd = ishell.Cmd{
		Name:    "profiles",
		Aliases: []string{"p"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			names := s.Target.ProfileNames()
			if s.OutputJSON {
				s.Print(c, names)
				return
			}
			current := int(s.Target.Status().Current)
			for n, name := range names {
				mark := " "
				if n == current {
					mark = "*"
				}
				c.Printf("%s %2d %s\n", mark, n, name)
			}
		},
	}

	// KeyCmd simulates a key press.
	KeyCmd = ishell.Cmd{
		Name:    "key",
		Aliases: []string{"k"},
		Help:    "ROW COL",
		Func: func(c *ishell.Context) {
			row, col, err := ParseKey(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, command.KeyDown, []byte{command.EncodeKeyDown(int(row), int(col))})
		},
	}

	// FrameCmd shows the perceived key colors.
	FrameCmd = ishell.Cmd{
		Name:    "frame",
		Aliases: []string{"f"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.Frame == nil {
				c.Err(fmt.Errorf("frame not available"))
				return
			}
			frame := s.Frame()
			if s.OutputJSON {
				s.Print(c, frame)
				return
			}
			cols := s.Columns
			if cols <= 0 {
				cols = len(frame)
			}
			c.Println(FormatFrame(frame, cols))
		},
	}
)

