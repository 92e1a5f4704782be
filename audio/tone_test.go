package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestTone_Length(t *testing.T) {
	// 2 s at 8000 Hz, 16-bit mono: 32000 bytes.
	buf := Tone(440, 8000, 2*time.Second, -6)
	if len(buf) != 32000 {
		t.Fatalf("len = %d, want 32000", len(buf))
	}
}

func TestTone_Amplitude(t *testing.T) {
	buf := Tone(440, 8000, time.Second, -6)

	var peak int16
	for i := 0; i < len(buf); i += 2 {
		s := int16(binary.LittleEndian.Uint16(buf[i:]))
		if s > peak {
			peak = s
		}
	}

	// -6 dBFS is ~0.5012 of full scale.
	want := math.Pow(10, -6.0/20) * float64(math.MaxInt16)
	if math.Abs(float64(peak)-want) > want*0.01 {
		t.Errorf("peak = %d, want ≈ %.0f", peak, want)
	}
}

func TestTone_StartsAtZeroCrossing(t *testing.T) {
	buf := Tone(440, 8000, 100*time.Millisecond, 0)
	if s := int16(binary.LittleEndian.Uint16(buf)); s != 0 {
		t.Errorf("first sample = %d, want 0", s)
	}
}
