// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/jeranaias/toolverse/internal/util"
)

// DefaultJPEGQuality is used when EncodeOptions.Quality is zero.
const DefaultJPEGQuality = 90

// EncodeOptions selects the output format. Quality only applies to JPEG.
type EncodeOptions struct {
	Format  Format `json:"format" yaml:"format"`
	Quality int    `json:"quality" yaml:"quality"`
}

// Encode writes img to w in the requested format.
func Encode(w io.Writer, img image.Image, opts EncodeOptions) error {
	if opts.Quality < 0 || opts.Quality > 100 {
		return invalid("jpeg quality must be between 1 and 100")
	}

	var err error
	switch opts.Format {
	case PNG, "":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case JPEG:
		q := opts.Quality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case GIF:
		err = gif.Encode(w, img, &gif.Options{NumColors: 256})
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case WebP:
		return invalid("webp output is not supported; choose png, jpeg, gif, bmp or tiff")
	default:
		return invalid("unsupported output format %q", opts.Format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", opts.Format, err)
	}
	return nil
}

// EncodeBytes is Encode into a new buffer.
func EncodeBytes(img image.Image, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OutputName derives the artifact name for a transformed image:
// OutputName("photo.jpg", "resized", PNG) == "photo_resized.png".
func OutputName(inputName, suffix string, format Format) string {
	return util.DerivedName(inputName, suffix, format.Ext(), "image")
}
