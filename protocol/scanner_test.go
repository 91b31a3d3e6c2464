package protocol

import "testing"

func frames(samples ...Sample) []byte {
	out := NewScratchOutput()
	for _, s := range samples {
		EncodeSample(out, s)
	}
	return append([]byte(nil), out.Result()...)
}

func TestScannerStream(t *testing.T) {
	s := NewScanner(256)
	in := []Sample{
		{Seq: 0, X: 1, Y: 2, Z: 3},
		{Seq: 1, X: -1, Y: -2, Z: -3},
		{Seq: 2, Status: StatusAborted},
	}
	stream := frames(in...)

	// Deliver one byte at a time.
	var got []Sample
	for _, b := range stream {
		s.Feed([]byte{b})
		for {
			smp, ok := s.Next()
			if !ok {
				break
			}
			got = append(got, smp)
		}
	}

	if len(got) != len(in) {
		t.Fatalf("Expected %d samples, got %d", len(in), len(got))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("Sample %d: expected %+v, got %+v", i, in[i], got[i])
		}
	}
	if s.Dropped() != 0 {
		t.Errorf("Expected no dropped frames, got %d", s.Dropped())
	}
}

func TestScannerResync(t *testing.T) {
	s := NewScanner(256)
	bad := frames(Sample{Seq: 4, X: 9})
	bad[3] ^= 0xFF

	stream := append([]byte{0x42, 0x01}, bad...)
	stream = append(stream, frames(Sample{Seq: 5, X: 10})...)
	s.Feed(stream)

	smp, ok := s.Next()
	if !ok {
		t.Fatalf("Expected a sample after resync")
	}
	if smp.Seq != 5 || smp.X != 10 {
		t.Errorf("Expected sample 5, got %+v", smp)
	}
	if s.Dropped() == 0 {
		t.Errorf("Expected dropped frames to be counted")
	}
	if _, ok := s.Next(); ok {
		t.Errorf("Expected no further samples")
	}
}
