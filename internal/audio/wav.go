// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// WAVHeaderSize is the size of the canonical RIFF/WAVE PCM header.
const WAVHeaderSize = 44

// EncodeWAV writes p as an uncompressed PCM WAV file. 16-bit samples are
// signed little-endian; 8-bit samples are unsigned with 128 as silence.
func EncodeWAV(w io.Writer, p *PCM) error {
	if p.Channels != 1 && p.Channels != 2 {
		return invalid("channels must be 1 or 2, got %d", p.Channels)
	}
	if p.BitDepth != 8 && p.BitDepth != 16 {
		return invalid("bit depth must be 8 or 16, got %d", p.BitDepth)
	}
	if p.SampleRate <= 0 {
		return invalid("sample rate must be positive")
	}

	dataSize := p.DataSize()
	blockAlign := p.Channels * p.BitDepth / 8
	byteRate := p.SampleRate * blockAlign

	bw := bufio.NewWriter(w)
	header := []interface{}{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + dataSize),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16), // fmt chunk size
		uint16(1),  // PCM
		uint16(p.Channels),
		uint32(p.SampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(p.BitDepth),
		[4]byte{'d', 'a', 't', 'a'},
		uint32(dataSize),
	}
	for _, v := range header {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("writing wav header: %w", err)
		}
	}

	if p.BitDepth == 16 {
		var buf [2]byte
		for _, s := range p.Samples {
			binary.LittleEndian.PutUint16(buf[:], uint16(s))
			if _, err := bw.Write(buf[:]); err != nil {
				return fmt.Errorf("writing wav data: %w", err)
			}
		}
	} else {
		for _, s := range p.Samples {
			if err := bw.WriteByte(byte(int(s)>>8 + 128)); err != nil {
				return fmt.Errorf("writing wav data: %w", err)
			}
		}
	}
	return bw.Flush()
}

// EncodeWAVBytes is EncodeWAV into a new buffer.
func EncodeWAVBytes(p *PCM) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(WAVHeaderSize + p.DataSize())
	if err := EncodeWAV(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
