package led

// Color is a per-key color. A is an override marker for mask and sticky
// layers: an entry with A == 0 is transparent. The base layer ignores A.
type Color struct {
	R, G, B, A uint8
}

// Predefined colors.
var (
	Transparent = Color{}
	// Off is an opaque black override, which forces a key dark.
	Off = Color{A: 0xff}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// Hex creates an opaque color from 0xRRGGBB.
func Hex(rgb uint32) Color {
	return RGB(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb))
}

// FromWord unpacks a color stored by Word.
func FromWord(w uint32) Color {
	return Color{R: uint8(w >> 16), G: uint8(w >> 8), B: uint8(w), A: uint8(w >> 24)}
}

// Word packs the color into a single machine word.
func (c Color) Word() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// IsSet indicates the color overrides lower layers.
func (c Color) IsSet() bool {
	return c.A != 0
}

// Channel returns the value of channel n in R, G, B order.
func (c Color) Channel(n int) uint8 {
	switch n {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// WireSize is the encoded size of a color in command payloads.
const WireSize = 4

// DecodeBGRA decodes a color in the wire byte order B, G, R, A.
// p must contain at least WireSize bytes.
func DecodeBGRA(p []byte) Color {
	return Color{B: p[0], G: p[1], R: p[2], A: p[3]}
}

// EncodeBGRA appends the wire encoding of c to p.
func (c Color) EncodeBGRA(p []byte) []byte {
	return append(p, c.B, c.G, c.R, c.A)
}
