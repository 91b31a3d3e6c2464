package protocol

import "bytes"

// Scanner extracts sample frames from a byte stream. After a corrupt frame
// it discards input up to the next sync byte.
type Scanner struct {
	fifo    *FifoBuffer
	synced  bool
	dropped int
}

// NewScanner returns a Scanner buffering up to capacity-1 bytes of
// unparsed input.
func NewScanner(capacity int) *Scanner {
	if capacity < FrameMax+1 {
		capacity = FrameMax + 1
	}
	return &Scanner{fifo: NewFifoBuffer(capacity), synced: true}
}

// Feed buffers data and returns how much of it was accepted. Call Next
// until it reports false to make room.
func (s *Scanner) Feed(data []byte) int {
	return s.fifo.Write(data)
}

// Free returns how many bytes Feed can accept.
func (s *Scanner) Free() int {
	return s.fifo.Free()
}

// Dropped returns the number of corrupt frames discarded so far.
func (s *Scanner) Dropped() int {
	return s.dropped
}

// Next returns the next complete sample, or false if more input is needed.
func (s *Scanner) Next() (Sample, bool) {
	for {
		data := s.fifo.Data()
		if len(data) == 0 {
			return Sample{}, false
		}

		if !s.synced {
			i := bytes.IndexByte(data, SyncByte)
			if i < 0 {
				s.fifo.Pop(len(data))
				return Sample{}, false
			}
			s.fifo.Pop(i + 1)
			s.synced = true
			continue
		}

		if data[0] == SyncByte {
			s.fifo.Pop(1)
			continue
		}
		if len(data) < FrameMin {
			return Sample{}, false
		}
		n := int(data[posLen])
		if n < FrameMin || n > FrameMax {
			s.desync()
			continue
		}
		if len(data) < n {
			return Sample{}, false
		}

		smp, err := DecodeSample(data[:n])
		if err != nil {
			s.desync()
			continue
		}
		s.fifo.Pop(n)
		return smp, true
	}
}

func (s *Scanner) desync() {
	s.synced = false
	s.dropped++
}
