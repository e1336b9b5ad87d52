// Package audio defines the capture and playback collaborators and the
// fixed PCM format recordings use: 44.1 kHz, 16-bit signed, mono.
package audio

const (
	SampleRate    = 44100
	BitsPerSample = 16
	Channels      = 1
	FrameSize     = BitsPerSample / 8 * Channels
	BytesPerSec   = SampleRate * FrameSize
)

// DurationSeconds is the whole-second length of n bytes of PCM.
func DurationSeconds(n int) int {
	return n / BytesPerSec
}

// Silence returns a zeroed PCM buffer lasting seconds.
func Silence(seconds int) []byte {
	if seconds <= 0 {
		return []byte{}
	}
	return make([]byte, seconds*BytesPerSec)
}
