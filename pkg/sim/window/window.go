// Package window shows a simulated board in a desktop window.
package window

import (
	"context"
	"image"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/robotalks/keylight/pkg/command"
	"github.com/robotalks/keylight/pkg/led"
	"github.com/robotalks/keylight/pkg/sim"
)

// Dispatcher executes commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, code command.Code, payload []byte) error
}

// KeyBindings maps keyboard keys to commands.
var KeyBindings = map[ebiten.Key]command.Code{
	ebiten.KeyArrowRight: command.NextProfile,
	ebiten.KeyArrowLeft:  command.PrevProfile,
	ebiten.KeyArrowUp:    command.NextIntensity,
	ebiten.KeyArrowDown:  command.NextAnimationSpeed,
	ebiten.KeyO:          command.LedOn,
	ebiten.KeyF:          command.LedOff,
	ebiten.KeyBackspace:  command.ClearForeground,
	ebiten.KeyS:          command.GetStatus,
}

var (
	background = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	unlit      = led.RGB(0x20, 0x20, 0x20)
)

// Window renders the perceived key colors of a Board. Clicking a key sends
// a key down event.
type Window struct {
	Board      *sim.Board
	Dispatcher Dispatcher
	Scale      int
	// Title returns the window title, refreshed every update.
	Title func() string

	rows, cols int
	img        *image.RGBA
	tex        *ebiten.Image
	title      string
	keys       []ebiten.Key
	ctx        context.Context
}

// New creates a Window.
func New(board *sim.Board, d Dispatcher, scale int) *Window {
	if scale <= 0 {
		scale = sim.DefaultScale
	}
	w := &Window{
		Board:      board,
		Dispatcher: d,
		Scale:      scale,
		rows:       len(board.Layout().Rows),
		cols:       len(board.Layout().Columns),
	}
	for key := range KeyBindings {
		w.keys = append(w.keys, key)
	}
	sort.Slice(w.keys, func(i, j int) bool { return w.keys[i] < w.keys[j] })
	return w
}

// Run implements framework.Runnable. It must be called from the main
// goroutine and returns when the window is closed or ctx is done.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx
	ebiten.SetWindowTitle("keylight")
	ebiten.SetWindowSize(w.cols*w.Scale, w.rows*w.Scale)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(w)
	if err == ebiten.Termination {
		return ctx.Err()
	}
	return err
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	if w.Title != nil {
		if title := w.Title(); title != w.title {
			w.title = title
			ebiten.SetWindowTitle(title)
		}
	}
	for _, key := range w.keys {
		if inpututil.IsKeyJustPressed(key) {
			w.Dispatcher.Dispatch(w.ctx, KeyBindings[key], nil)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if row, col, ok := w.KeyAt(ebiten.CursorPosition()); ok {
			w.Dispatcher.Dispatch(w.ctx, command.KeyDown, []byte{command.EncodeKeyDown(row, col)})
		}
	}
	return nil
}

// KeyAt maps a window position to a key.
func (w *Window) KeyAt(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	row, col = y/w.Scale, x/w.Scale
	return row, col, row < w.rows && col < w.cols
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	width, height := w.Layout(0, 0)
	if w.img == nil {
		w.img = image.NewRGBA(image.Rect(0, 0, width, height))
		w.tex = ebiten.NewImage(width, height)
	}
	w.Render(w.Board.Frame())
	w.tex.WritePixels(w.img.Pix)
	screen.DrawImage(w.tex, nil)
}

// Render paints key colors into the window image.
func (w *Window) Render(frame []led.Color) *image.RGBA {
	if w.img == nil {
		width, height := w.Layout(0, 0)
		w.img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	bounds := w.img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			w.img.SetRGBA(x, y, background)
		}
	}
	gap := w.Scale / 8
	for n, c := range frame {
		row, col := n/w.cols, n%w.cols
		if row >= w.rows {
			break
		}
		if c.R|c.G|c.B == 0 {
			c = unlit
		}
		fill := color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
		x0, y0 := col*w.Scale+gap, row*w.Scale+gap
		for y := y0; y < y0+w.Scale-2*gap; y++ {
			for x := x0; x < x0+w.Scale-2*gap; x++ {
				w.img.SetRGBA(x, y, fill)
			}
		}
	}
	return w.img
}

// Layout implements ebiten.Game.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.cols * w.Scale, w.rows * w.Scale
}
