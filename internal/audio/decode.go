// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// ErrInvalidInput is wrapped by every input error in this package.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// MaxDecodedBytes caps the decoded 16-bit stereo stream, about 50 minutes
// at 44.1 kHz.
const MaxDecodedBytes = 512 << 20

// =============================================================================
// SOURCE FORMATS
// =============================================================================

// SourceFormat is a decodable container.
type SourceFormat string

const (
	FormatWAV SourceFormat = "wav"
	FormatMP3 SourceFormat = "mp3"
	FormatOgg SourceFormat = "ogg"
)

// Sniff identifies the container from magic bytes, falling back to the
// file extension for headerless MP3 streams.
func Sniff(data []byte, name string) (SourceFormat, error) {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return FormatOgg, nil
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	case ".ogg", ".oga":
		return FormatOgg, nil
	}
	return "", invalid("unrecognized audio format (expected wav, mp3 or ogg)")
}

// =============================================================================
// PCM
// =============================================================================

// PCM holds interleaved samples. Samples are always stored at 16-bit
// precision; BitDepth controls how EncodeWAV writes them.
type PCM struct {
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	Channels   int     `json:"channels" yaml:"channels"`
	BitDepth   int     `json:"bit_depth" yaml:"bit_depth"`
	Samples    []int16 `json:"-" yaml:"-"`
}

// Frames returns the number of sample frames (samples per channel).
func (p *PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the playing time in seconds.
func (p *PCM) Duration() float64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return float64(p.Frames()) / float64(p.SampleRate)
}

// DataSize is the byte length of the WAV data chunk.
func (p *PCM) DataSize() int {
	return len(p.Samples) * p.BitDepth / 8
}

// =============================================================================
// DECODING
// =============================================================================

// Decode decodes data to 16-bit stereo PCM at sampleRate.
func Decode(data []byte, name string, sampleRate int) (*PCM, SourceFormat, error) {
	if len(data) == 0 {
		return nil, "", invalid("empty audio data")
	}
	if err := checkSampleRate(sampleRate); err != nil {
		return nil, "", err
	}
	format, err := Sniff(data, name)
	if err != nil {
		return nil, "", err
	}

	src := bytes.NewReader(data)
	var stream io.Reader
	switch format {
	case FormatWAV:
		stream, err = wav.DecodeWithSampleRate(sampleRate, src)
	case FormatMP3:
		stream, err = mp3.DecodeWithSampleRate(sampleRate, src)
	case FormatOgg:
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, src)
	}
	if err != nil {
		return nil, "", invalid("failed to decode %s: %v", format, err)
	}

	raw, err := io.ReadAll(io.LimitReader(stream, MaxDecodedBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading decoded %s stream: %w", format, err)
	}
	if len(raw) > MaxDecodedBytes {
		return nil, "", invalid("decoded audio exceeds %d MiB", MaxDecodedBytes>>20)
	}

	// Drop a trailing partial frame (2 channels x 2 bytes).
	raw = raw[:len(raw)-len(raw)%4]
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return &PCM{SampleRate: sampleRate, Channels: 2, BitDepth: 16, Samples: samples}, format, nil
}

func checkSampleRate(rate int) error {
	if rate < MinSampleRate || rate > MaxSampleRate {
		return invalid("sample rate must be between %d and %d Hz, got %d", MinSampleRate, MaxSampleRate, rate)
	}
	return nil
}
