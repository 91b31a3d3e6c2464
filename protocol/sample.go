package protocol

import "errors"

var (
	ErrFrameLength = errors.New("protocol: bad frame length")
	ErrFrameSeq    = errors.New("protocol: bad sequence byte")
	ErrFrameSync   = errors.New("protocol: missing sync byte")
	ErrFrameCRC    = errors.New("protocol: crc mismatch")
	ErrPayload     = errors.New("protocol: malformed sample payload")
)

// Status reports how the bus read behind a sample ended.
type Status uint8

const (
	StatusOK      Status = iota
	StatusAborted        // Slave NACK or rejected request
	StatusTimeout        // Controller did not respond within the spin limit
	StatusError          // Any other failure
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAborted:
		return "aborted"
	case StatusTimeout:
		return "timeout"
	}
	return "error"
}

// Sample is one accelerometer reading as carried on the diagnostics link.
// The axes are raw counts; with Status other than StatusOK they are zero.
type Sample struct {
	Seq     uint8 // Low four bits only
	Status  Status
	X, Y, Z int16
}

// EncodeSample appends s as one frame.
func EncodeSample(out OutputBuffer, s Sample) {
	start := out.CurPosition()
	out.Output([]byte{0, SeqDest | s.Seq&SeqMask})

	EncodeVLQUint(out, uint32(s.Status))
	EncodeVLQInt(out, int32(s.X))
	EncodeVLQInt(out, int32(s.Y))
	EncodeVLQInt(out, int32(s.Z))

	out.Update(start, uint8(len(out.DataSince(start))+TrailerSize))
	crc := CRC16(out.DataSince(start))
	out.Output([]byte{byte(crc >> 8), byte(crc), SyncByte})
}

// DecodeSample parses a single complete frame.
func DecodeSample(frame []byte) (Sample, error) {
	if len(frame) < FrameMin || len(frame) > FrameMax || int(frame[posLen]) != len(frame) {
		return Sample{}, ErrFrameLength
	}
	seq := frame[posSeq]
	if seq&^SeqMask != SeqDest {
		return Sample{}, ErrFrameSeq
	}
	n := len(frame)
	if frame[n-1] != SyncByte {
		return Sample{}, ErrFrameSync
	}
	if crc := uint16(frame[n-3])<<8 | uint16(frame[n-2]); crc != CRC16(frame[:n-TrailerSize]) {
		return Sample{}, ErrFrameCRC
	}

	payload := frame[HeaderSize : n-TrailerSize]
	var vals [4]int32
	for i := range vals {
		v, err := DecodeVLQInt(&payload)
		if err != nil {
			return Sample{}, ErrPayload
		}
		vals[i] = v
	}
	if len(payload) != 0 || vals[0] < 0 || vals[0] > int32(StatusError) {
		return Sample{}, ErrPayload
	}
	for _, v := range vals[1:] {
		if v < -32768 || v > 32767 {
			return Sample{}, ErrPayload
		}
	}

	return Sample{
		Seq:    seq & SeqMask,
		Status: Status(vals[0]),
		X:      int16(vals[1]),
		Y:      int16(vals[2]),
		Z:      int16(vals[3]),
	}, nil
}
