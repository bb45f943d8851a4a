// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio converts WAV, MP3 and Ogg Vorbis input to PCM WAV.
//
// Decoding goes through the ebiten audio decoders, which always yield
// interleaved 16-bit little-endian stereo resampled to the requested rate.
// The result is then down-mixed and re-quantized as asked and written with
// a canonical 44-byte RIFF header.
//
// # Key Types
//
//   - SourceFormat: wav, mp3 or ogg, sniffed from the data
//   - PCM: decoded samples with rate, channel count and bit depth
//   - ConvertOptions: output sample rate, channels and bit depth
//
// # Usage
//
//	pcm, err := audio.Convert(data, "song.mp3", audio.ConvertOptions{SampleRate: 22050, Channels: 1, BitDepth: 16})
//	err = audio.EncodeWAV(w, pcm)
package audio
