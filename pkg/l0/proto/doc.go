// Package proto provides the framed serial protocol between the keyboard
// main controller and the backlight controller.
package proto

// Every frame starts with two marker bytes, followed by the command code,
// a message id, the payload size and the payload:
//
//	0x7A 0x1D <cmd> <id> <size> <payload...>
//
// There is no checksum and no acknowledgement. The sender repeats important
// frames and the receiver drops a frame carrying the same id as the previous
// one. A stretch of silence in the middle of a frame resynchronizes the
// receiver to the start marker.
//
// Producer: keyboard main controller
// Consumer: backlight controller
