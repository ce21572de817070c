package led

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorWord(t *testing.T) {
	c := Color{R: 1, G: 2, B: 3, A: 4}
	require.Equal(t, uint32(0x04010203), c.Word())
	require.Equal(t, c, FromWord(c.Word()))
	require.Equal(t, RGB(0x12, 0x34, 0x56), Hex(0x123456))
	require.False(t, Transparent.IsSet())
	require.True(t, Off.IsSet())
}

func TestColorWire(t *testing.T) {
	c := DecodeBGRA([]byte{3, 2, 1, 0xff})
	require.Equal(t, RGB(1, 2, 3), c)
	require.Equal(t, []byte{3, 2, 1, 0xff}, c.EncodeBGRA(nil))
}

func TestBufferBounds(t *testing.T) {
	b := NewBuffer(DefaultRows, DefaultCols)
	require.Equal(t, 70, b.Len())
	i, ok := b.Index(4, 13)
	require.True(t, ok)
	require.Equal(t, 69, i)
	_, ok = b.Index(5, 0)
	require.False(t, ok)
	_, ok = b.Index(0, 14)
	require.False(t, ok)
	require.False(t, b.SetAt(-1, 0, Off))
	require.True(t, b.SetAt(1, 2, Off))
	require.Equal(t, Off, b.At(1, 2))
	require.Equal(t, Transparent, b.At(9, 9))
}

func TestLayersComposite(t *testing.T) {
	l := NewLayers(1, 2)
	base, mask, sticky, fg := Hex(0x010101), Hex(0x020202), Hex(0x030303), Hex(0x040404)
	l.Base.Fill(base)
	require.Equal(t, base, l.Composite(0))
	l.Mask.Set(0, mask)
	require.Equal(t, mask, l.Composite(0))
	l.Sticky.Set(0, sticky)
	require.Equal(t, sticky, l.Composite(0))
	require.Equal(t, base, l.Composite(1))
	l.SetForeground(fg)
	require.Equal(t, fg, l.Composite(0))
	require.Equal(t, fg, l.Composite(1))
	l.ClearForeground()
	require.Equal(t, sticky, l.Composite(0))

	l.SetStickyOnly(true)
	require.Equal(t, sticky, l.Composite(0))
	require.Equal(t, Transparent, l.Composite(1))
	require.True(t, l.HasSticky())
	l.Sticky.Clear()
	require.False(t, l.HasSticky())
}

func TestBufferNoTornReads(t *testing.T) {
	b := NewBuffer(1, 1)
	a, c := Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Color{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := 0; n < 10000; n++ {
			if n%2 == 0 {
				b.Set(0, a)
			} else {
				b.Set(0, c)
			}
		}
	}()
	for n := 0; n < 10000; n++ {
		got := b.Get(0)
		require.True(t, got == a || got == c, "torn read %v", got)
	}
	wg.Wait()
}
