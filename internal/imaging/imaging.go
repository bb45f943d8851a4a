// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	// Decoders register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidInput is wrapped by every input error in this package.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// MaxSide is the largest width or height any operation will produce.
const MaxSide = 16384

// MaxDecodePixels bounds the images Decode will expand into memory.
const MaxDecodePixels = 100_000_000

// =============================================================================
// FORMATS
// =============================================================================

// Format names an image container format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp"
)

// EncodableFormats lists the formats Encode can write.
var EncodableFormats = []Format{PNG, JPEG, GIF, BMP, TIFF}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "webp":
		return WebP, nil
	}
	return "", invalid("unsupported image format %q", s)
}

// Ext returns the conventional file extension, without the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Encodable reports whether Encode supports f.
func (f Format) Encodable() bool {
	for _, e := range EncodableFormats {
		if e == f {
			return true
		}
	}
	return false
}

// =============================================================================
// DECODING
// =============================================================================

// Decode sniffs and decodes an image. The dimensions are checked before
// the pixel data is expanded.
func Decode(data []byte) (image.Image, Format, error) {
	if len(data) == 0 {
		return nil, "", invalid("empty image data")
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", invalid("unrecognized image format")
		}
		return nil, "", invalid("corrupt %s header: %v", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", invalid("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		return nil, "", invalid("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, MaxDecodePixels)
	}

	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", invalid("failed to decode %s: %v", name, err)
	}
	format, err := ParseFormat(name)
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

// Info is a short description of a decoded image.
type Info struct {
	Format Format `json:"format" yaml:"format"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Describe returns the format and dimensions of img.
func Describe(img image.Image, format Format) Info {
	b := img.Bounds()
	return Info{Format: format, Width: b.Dx(), Height: b.Dy()}
}
