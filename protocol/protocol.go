// Package protocol frames accelerometer samples for the diagnostics link.
//
// Frames use the Klipper message block layout:
//
//	<len> <0x10|seq> <payload> <crc16 hi> <crc16 lo> <0x7E>
//
// len counts the whole block. The payload is a sequence of VLQ integers.
package protocol

const (
	HeaderSize  = 2
	TrailerSize = 3
	FrameMin    = HeaderSize + TrailerSize
	FrameMax    = 64

	SyncByte = 0x7E
	SeqDest  = 0x10 // High nibble of every sequence byte
	SeqMask  = 0x0F

	posLen = 0
	posSeq = 1
)

// scratchSize bounds a ScratchOutput. It holds several frames so a batch can
// be written with one call.
const scratchSize = 512
