// ABOUTME: WAV container encoding for synthesized speech.
// ABOUTME: The TTS providers return raw PCM; players need a RIFF header.

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire format produced by the speech providers: PCM, mono, 24 kHz, 16-bit.
const (
	Channels    = 1
	SampleRate  = 24000
	SampleWidth = 2 // bytes per sample
)

var ErrNotWAV = errors.New("not a RIFF/WAVE stream")

// EncodeWAV wraps raw little-endian PCM samples in a WAV container using
// the provider wire format (mono, 24000 Hz, 16-bit).
func EncodeWAV(pcm []byte) []byte {
	return EncodeWAVFormat(pcm, Channels, SampleRate, SampleWidth)
}

// EncodeWAVFormat wraps raw PCM in a WAV container with explicit format
// parameters.
func EncodeWAVFormat(pcm []byte, channels, rate, sampleWidth int) []byte {
	byteRate := rate * channels * sampleWidth
	blockAlign := channels * sampleWidth

	buf := make([]byte, 0, 44+len(pcm))
	le := binary.LittleEndian

	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		le.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		le.PutUint16(b, v)
		return b
	}

	buf = append(buf, "RIFF"...)
	buf = append(buf, u32(uint32(36+len(pcm)))...)
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = append(buf, u32(16)...)                     // fmt chunk size
	buf = append(buf, u16(1)...)                      // PCM
	buf = append(buf, u16(uint16(channels))...)       // channels
	buf = append(buf, u32(uint32(rate))...)           // sample rate
	buf = append(buf, u32(uint32(byteRate))...)       // byte rate
	buf = append(buf, u16(uint16(blockAlign))...)     // block align
	buf = append(buf, u16(uint16(sampleWidth*8))...)  // bits per sample

	buf = append(buf, "data"...)
	buf = append(buf, u32(uint32(len(pcm)))...)
	buf = append(buf, pcm...)

	return buf
}

// Info describes the format of an encoded WAV stream.
type Info struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataLen       int
}

// DecodeInfo parses the header of a WAV stream produced by EncodeWAV.
// It exists for verification; playback goes straight to the browser.
func DecodeInfo(data []byte) (*Info, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotWAV, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}
	le := binary.LittleEndian
	if string(data[12:16]) != "fmt " {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrNotWAV)
	}
	info := &Info{
		Channels:      int(le.Uint16(data[22:24])),
		SampleRate:    int(le.Uint32(data[24:28])),
		BitsPerSample: int(le.Uint16(data[34:36])),
	}
	if string(data[36:40]) != "data" {
		return nil, fmt.Errorf("%w: missing data chunk", ErrNotWAV)
	}
	info.DataLen = int(le.Uint32(data[40:44]))
	return info, nil
}
