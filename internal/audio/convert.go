// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"github.com/jeranaias/toolverse/internal/util"
)

const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultBitDepth   = 16

	MinSampleRate = 8000
	MaxSampleRate = 192000
)

// CommonSampleRates are offered by the interactive form.
var CommonSampleRates = []int{8000, 11025, 16000, 22050, 32000, 44100, 48000, 96000}

// ConvertOptions describes the WAV to produce. Zero fields take the
// defaults: 44100 Hz, stereo, 16-bit.
type ConvertOptions struct {
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`
	Channels   int `json:"channels" yaml:"channels"`
	BitDepth   int `json:"bit_depth" yaml:"bit_depth"`
}

// DefaultConvertOptions returns 44.1 kHz 16-bit stereo.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{SampleRate: DefaultSampleRate, Channels: DefaultChannels, BitDepth: DefaultBitDepth}
}

func (o ConvertOptions) withDefaults() ConvertOptions {
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Channels == 0 {
		o.Channels = DefaultChannels
	}
	if o.BitDepth == 0 {
		o.BitDepth = DefaultBitDepth
	}
	return o
}

// Validate checks ranges after defaults are applied.
func (o ConvertOptions) Validate() error {
	o = o.withDefaults()
	if err := checkSampleRate(o.SampleRate); err != nil {
		return err
	}
	if o.Channels != 1 && o.Channels != 2 {
		return invalid("channels must be 1 or 2, got %d", o.Channels)
	}
	if o.BitDepth != 8 && o.BitDepth != 16 {
		return invalid("bit depth must be 8 or 16, got %d", o.BitDepth)
	}
	return nil
}

// Convert decodes data and reshapes it to opts.
func Convert(data []byte, name string, opts ConvertOptions) (*PCM, SourceFormat, error) {
	if err := opts.Validate(); err != nil {
		return nil, "", err
	}
	opts = opts.withDefaults()

	pcm, format, err := Decode(data, name, opts.SampleRate)
	if err != nil {
		return nil, "", err
	}
	if opts.Channels == 1 {
		pcm = Downmix(pcm)
	}
	pcm.BitDepth = opts.BitDepth
	return pcm, format, nil
}

// Downmix averages interleaved stereo frames into mono. Mono input is
// returned unchanged.
func Downmix(p *PCM) *PCM {
	if p.Channels != 2 {
		return p
	}
	mono := make([]int16, p.Frames())
	for i := range mono {
		l, r := int32(p.Samples[2*i]), int32(p.Samples[2*i+1])
		mono[i] = int16((l + r) / 2)
	}
	return &PCM{SampleRate: p.SampleRate, Channels: 1, BitDepth: p.BitDepth, Samples: mono}
}

// OutputName returns the artifact name for a converted file:
// OutputName("song.mp3") == "song.wav".
func OutputName(inputName string) string {
	return util.DerivedName(inputName, "", "wav", "audio")
}

// Info summarises a converted clip.
type Info struct {
	Source     SourceFormat `json:"source_format" yaml:"source_format"`
	SampleRate int          `json:"sample_rate" yaml:"sample_rate"`
	Channels   int          `json:"channels" yaml:"channels"`
	BitDepth   int          `json:"bit_depth" yaml:"bit_depth"`
	Seconds    float64      `json:"duration_seconds" yaml:"duration_seconds"`
	Bytes      int          `json:"bytes" yaml:"bytes"`
}

// Describe builds an Info for p.
func Describe(p *PCM, source SourceFormat) Info {
	return Info{
		Source:     source,
		SampleRate: p.SampleRate,
		Channels:   p.Channels,
		BitDepth:   p.BitDepth,
		Seconds:    p.Duration(),
		Bytes:      WAVHeaderSize + p.DataSize(),
	}
}
