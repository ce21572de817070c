package led

import "sync/atomic"

// Default matrix geometry.
const (
	DefaultRows = 5
	DefaultCols = 14
)

// Buffer holds one color word per key. Every entry is a single atomic word,
// so a concurrent reader never observes a partially written color.
type Buffer struct {
	rows, cols int
	keys       []atomic.Uint32
}

// NewBuffer creates a zeroed buffer.
func NewBuffer(rows, cols int) *Buffer {
	return &Buffer{rows: rows, cols: cols, keys: make([]atomic.Uint32, rows*cols)}
}

// Rows returns the number of rows.
func (b *Buffer) Rows() int { return b.rows }

// Cols returns the number of columns.
func (b *Buffer) Cols() int { return b.cols }

// Len returns the number of keys.
func (b *Buffer) Len() int { return len(b.keys) }

// Index maps row/col into a key index.
func (b *Buffer) Index(row, col int) (int, bool) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return 0, false
	}
	return row*b.cols + col, true
}

// Get reads a key.
func (b *Buffer) Get(i int) Color {
	return FromWord(b.keys[i].Load())
}

// Set writes a key.
func (b *Buffer) Set(i int, c Color) {
	b.keys[i].Store(c.Word())
}

// At reads the key at row/col, Transparent if out of range.
func (b *Buffer) At(row, col int) Color {
	if i, ok := b.Index(row, col); ok {
		return b.Get(i)
	}
	return Transparent
}

// SetAt writes the key at row/col. It reports false if out of range.
func (b *Buffer) SetAt(row, col int, c Color) bool {
	i, ok := b.Index(row, col)
	if ok {
		b.Set(i, c)
	}
	return ok
}

// Fill writes all keys.
func (b *Buffer) Fill(c Color) {
	w := c.Word()
	for i := range b.keys {
		b.keys[i].Store(w)
	}
}

// FillRow writes all keys of a row.
func (b *Buffer) FillRow(row int, c Color) {
	for col := 0; col < b.cols; col++ {
		b.SetAt(row, col, c)
	}
}

// FillColumn writes all keys of a column.
func (b *Buffer) FillColumn(col int, c Color) {
	for row := 0; row < b.rows; row++ {
		b.SetAt(row, col, c)
	}
}

// Clear zeroes all keys.
func (b *Buffer) Clear() {
	b.Fill(Transparent)
}

// Any reports whether any key satisfies fn.
func (b *Buffer) Any(fn func(Color) bool) bool {
	for i := range b.keys {
		if fn(FromWord(b.keys[i].Load())) {
			return true
		}
	}
	return false
}

// Snapshot copies all keys.
func (b *Buffer) Snapshot() []Color {
	out := make([]Color, len(b.keys))
	for i := range b.keys {
		out[i] = FromWord(b.keys[i].Load())
	}
	return out
}
