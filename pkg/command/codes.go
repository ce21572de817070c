// Package command executes protocol messages against the backlight state.
package command

import (
	"fmt"
)

// Code is a command code carried in the message header.
type Code byte

// Command codes.
const (
	LedOn              Code = 0x01
	LedOff             Code = 0x02
	SetProfile         Code = 0x03
	NextProfile        Code = 0x04
	PrevProfile        Code = 0x05
	NextIntensity      Code = 0x06
	NextAnimationSpeed Code = 0x07
	ResetIntensity     Code = 0x08
	ResetAnimSpeed     Code = 0x09
	SetForeground      Code = 0x0A
	ClearForeground    Code = 0x0B

	MaskSetKey  Code = 0x10
	MaskSetRow  Code = 0x11
	MaskSetMono Code = 0x12
	MaskClear   Code = 0x13

	GetStatus         Code = 0x20
	KeyBlink          Code = 0x21
	KeyDown           Code = 0x22
	ResetToBootloader Code = 0x24

	ColorSetKey  Code = 0x30
	ColorSetRow  Code = 0x31
	ColorSetMono Code = 0x32
	SetManual    Code = 0x33

	Debug  Code = 0x40
	Status Code = 0x41

	StickySetKey   Code = 0x50
	StickySetRow   Code = 0x51
	StickySetMono  Code = 0x52
	StickyUnsetKey Code = 0x53
	StickyUnsetRow Code = 0x54
	StickyUnsetAll Code = 0x55
)

var codeNames = map[Code]string{
	LedOn:              "led-on",
	LedOff:             "led-off",
	SetProfile:         "set-profile",
	NextProfile:        "next-profile",
	PrevProfile:        "prev-profile",
	NextIntensity:      "next-intensity",
	NextAnimationSpeed: "next-speed",
	ResetIntensity:     "reset-intensity",
	ResetAnimSpeed:     "reset-speed",
	SetForeground:      "set-foreground",
	ClearForeground:    "clear-foreground",
	MaskSetKey:         "mask-set-key",
	MaskSetRow:         "mask-set-row",
	MaskSetMono:        "mask-set-mono",
	MaskClear:          "mask-clear",
	GetStatus:          "get-status",
	KeyBlink:           "key-blink",
	KeyDown:            "key-down",
	ResetToBootloader:  "reset-to-bootloader",
	ColorSetKey:        "color-set-key",
	ColorSetRow:        "color-set-row",
	ColorSetMono:       "color-set-mono",
	SetManual:          "set-manual",
	Debug:              "debug",
	Status:             "status",
	StickySetKey:       "sticky-set-key",
	StickySetRow:       "sticky-set-row",
	StickySetMono:      "sticky-set-mono",
	StickyUnsetKey:     "sticky-unset-key",
	StickyUnsetRow:     "sticky-unset-row",
	StickyUnsetAll:     "sticky-unset-all",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code-%02x", byte(c))
}

// ParseCode looks up a code by name.
func ParseCode(name string) (Code, bool) {
	for c, n := range codeNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// EncodeKeyDown packs a key position into the KeyDown payload byte:
// a flag bit, 3 bits of row and 4 bits of column.
func EncodeKeyDown(row, col int) byte {
	return 0x80 | byte(row&7)<<4 | byte(col&0xf)
}

// DecodeKeyDown unpacks the KeyDown payload byte.
func DecodeKeyDown(b byte) (row, col int) {
	return int(b>>4) & 7, int(b & 0xf)
}
