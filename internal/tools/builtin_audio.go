// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"

	"github.com/jeranaias/toolverse/internal/audio"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// AUDIO TOOLS
// =============================================================================

const contentTypeWAV = "audio/wav"

func audioTools(s Settings) []*Tool {
	return []*Tool{
		{
			Name:        "audio-to-wav",
			Aliases:     []string{"wav", "audio-convert"},
			Category:    CategoryAudio,
			Description: "Convert WAV, MP3 or Ogg Vorbis audio to PCM WAV",
			Usage:       "toolverse run audio-to-wav --audio song.mp3 --sample_rate 22050 --channels 1",
			Schema: Schema{Parameters: []Parameter{
				{Name: "audio", Type: TypeFile, Required: true, Description: "Input audio (wav, mp3 or ogg)"},
				{Name: "sample_rate", Type: TypeInteger, Description: "Output sample rate in Hz", Default: s.Audio.SampleRate, Min: bound(audio.MinSampleRate), Max: bound(audio.MaxSampleRate)},
				{Name: "channels", Type: TypeInteger, Description: "1 for mono, 2 for stereo", Default: s.Audio.Channels, Min: bound(1), Max: bound(2)},
				{Name: "bit_depth", Type: TypeInteger, Description: "8 or 16 bits per sample", Default: s.Audio.BitDepth, Min: bound(8), Max: bound(16)},
			}},
			Executor: &audioExecutor{settings: s},
		},
		{
			Name:        "audio-info",
			Category:    CategoryAudio,
			Description: "Show an audio file's format and duration",
			Schema: Schema{Parameters: []Parameter{
				{Name: "audio", Type: TypeFile, Required: true, Description: "Input audio"},
			}},
			Executor: &audioExecutor{settings: s, infoOnly: true},
		},
	}
}

type audioExecutor struct {
	settings Settings
	infoOnly bool
}

func (e *audioExecutor) Execute(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("audio")
	opts := audio.ConvertOptions{
		SampleRate: call.GetInt("sample_rate", e.settings.Audio.SampleRate),
		Channels:   call.GetInt("channels", e.settings.Audio.Channels),
		BitDepth:   call.GetInt("bit_depth", e.settings.Audio.BitDepth),
	}

	pcm, source, err := audio.Convert(f.Data, f.Name, opts)
	if err != nil {
		return Result{}, err
	}
	info := audio.Describe(pcm, source)

	if e.infoOnly {
		out := table{
			{"Format", string(source)},
			{"Duration", fmt.Sprintf("%.2fs", info.Seconds)},
			{"File size", util.FormatBytes(int64(len(f.Data)))},
		}
		return Result{Output: out.String(), Data: info}, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	data, err := audio.EncodeWAVBytes(pcm)
	if err != nil {
		return Result{}, err
	}

	output := fmt.Sprintf("%s -> WAV %d Hz, %s, %d-bit, %.2fs (%s)",
		source, info.SampleRate, channelName(info.Channels), info.BitDepth, info.Seconds,
		util.FormatBytes(int64(len(data))))
	return Result{
		Output: output,
		Data:   info,
		Artifacts: []Artifact{{
			Name:        audio.OutputName(f.Name),
			ContentType: contentTypeWAV,
			Data:        data,
		}},
	}, nil
}

func channelName(n int) string {
	if n == 1 {
		return "mono"
	}
	return "stereo"
}
