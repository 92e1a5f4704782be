package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Tone synthesizes a sine wave as 16-bit little-endian mono PCM.
// gainDB is relative to full scale, so 0 produces a full-amplitude
// tone and -6 roughly half amplitude.
func Tone(freq float64, sampleRate int, d time.Duration, gainDB float64) []byte {
	n := int(float64(sampleRate) * d.Seconds())
	amp := math.Pow(10, gainDB/20) * float64(math.MaxInt16)
	step := 2 * math.Pi * freq / float64(sampleRate)

	buf := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		sample := int16(amp * math.Sin(step*float64(i)))
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(sample))
	}
	return buf
}
