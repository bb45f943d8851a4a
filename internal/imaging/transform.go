// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package imaging

import (
	"image"
	stddraw "image/draw"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// =============================================================================
// FILTERS
// =============================================================================

// Filter names a resampling kernel.
type Filter string

const (
	Nearest    Filter = "nearest"
	Bilinear   Filter = "bilinear"
	CatmullRom Filter = "catmullrom"
)

// ParseFilter accepts a filter name; empty means CatmullRom.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "catmullrom", "catmull-rom", "bicubic":
		return CatmullRom, nil
	case "bilinear", "linear":
		return Bilinear, nil
	case "nearest", "nearestneighbor", "pixelated":
		return Nearest, nil
	}
	return "", invalid("unknown filter %q (use nearest, bilinear or catmullrom)", s)
}

func (f Filter) scaler() xdraw.Scaler {
	switch f {
	case Nearest:
		return xdraw.NearestNeighbor
	case Bilinear:
		return xdraw.BiLinear
	default:
		return xdraw.CatmullRom
	}
}

// =============================================================================
// RESIZE
// =============================================================================

// ResizeOptions describes the target size. With KeepAspect either side may
// be zero and is derived from the other; when both are set the image is
// fitted inside the box.
type ResizeOptions struct {
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	KeepAspect bool   `json:"keep_aspect" yaml:"keep_aspect"`
	Filter     Filter `json:"filter" yaml:"filter"`
}

// TargetSize resolves opts against a source size without touching pixels.
func TargetSize(srcW, srcH int, opts ResizeOptions) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, invalid("source image is empty")
	}
	w, h := opts.Width, opts.Height
	if w < 0 || h < 0 {
		return 0, 0, invalid("width and height must not be negative")
	}
	if w == 0 && h == 0 {
		return 0, 0, invalid("width or height is required")
	}

	if opts.KeepAspect {
		ratio := float64(srcW) / float64(srcH)
		switch {
		case w == 0:
			w = roundSide(float64(h) * ratio)
		case h == 0:
			h = roundSide(float64(w) / ratio)
		default:
			scale := math.Min(float64(w)/float64(srcW), float64(h)/float64(srcH))
			w = roundSide(float64(srcW) * scale)
			h = roundSide(float64(srcH) * scale)
		}
	} else if w == 0 || h == 0 {
		return 0, 0, invalid("both width and height are required unless keep_aspect is set")
	}

	if w > MaxSide || h > MaxSide {
		return 0, 0, invalid("target %dx%d exceeds the %d pixel limit", w, h, MaxSide)
	}
	return w, h, nil
}

func roundSide(v float64) int {
	if v < 1 {
		return 1
	}
	return int(math.Round(v))
}

// Resize resamples img to the size described by opts.
func Resize(img image.Image, opts ResizeOptions) (image.Image, error) {
	b := img.Bounds()
	w, h, err := TargetSize(b.Dx(), b.Dy(), opts)
	if err != nil {
		return nil, err
	}
	return scale(img, w, h, opts.Filter.scaler()), nil
}

func scale(img image.Image, w, h int, s xdraw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	s.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// =============================================================================
// CROP
// =============================================================================

// Rect is a crop rectangle with its origin at the image's top-left corner.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Crop copies the sub-rectangle r out of img. r must be non-empty and lie
// inside the image.
func Crop(img image.Image, r Rect) (image.Image, error) {
	b := img.Bounds()
	if r.Width <= 0 || r.Height <= 0 {
		return nil, invalid("crop width and height must be positive")
	}
	if r.X < 0 || r.Y < 0 || r.X+r.Width > b.Dx() || r.Y+r.Height > b.Dy() {
		return nil, invalid("crop %dx%d at (%d,%d) is outside the %dx%d image", r.Width, r.Height, r.X, r.Y, b.Dx(), b.Dy())
	}

	src := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Add(b.Min)
	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	stddraw.Draw(dst, dst.Bounds(), img, src.Min, stddraw.Src)
	return dst, nil
}

// =============================================================================
// UPSCALE
// =============================================================================

// MaxUpscale is the largest factor Upscale accepts.
const MaxUpscale = 8.0

// Upscale enlarges img by factor, in (1, MaxUpscale]. It doubles at most
// once per pass with CatmullRom, which keeps edges sharper than a single
// large interpolation.
func Upscale(img image.Image, factor float64) (image.Image, error) {
	if math.IsNaN(factor) || factor <= 1 || factor > MaxUpscale {
		return nil, invalid("upscale factor must be greater than 1 and at most %g", MaxUpscale)
	}
	b := img.Bounds()
	targetW := int(math.Round(float64(b.Dx()) * factor))
	targetH := int(math.Round(float64(b.Dy()) * factor))
	if targetW > MaxSide || targetH > MaxSide {
		return nil, invalid("upscaled size %dx%d exceeds the %d pixel limit", targetW, targetH, MaxSide)
	}

	cur := img
	w, h := b.Dx(), b.Dy()
	for w < targetW || h < targetH {
		w = min(w*2, targetW)
		h = min(h*2, targetH)
		cur = scale(cur, w, h, xdraw.CatmullRom)
	}
	return cur, nil
}

// UpscaleSteps reports the intermediate sizes Upscale passes through.
func UpscaleSteps(w, h int, factor float64) [][2]int {
	targetW := int(math.Round(float64(w) * factor))
	targetH := int(math.Round(float64(h) * factor))
	var steps [][2]int
	for w < targetW || h < targetH {
		w = min(w*2, targetW)
		h = min(h*2, targetH)
		steps = append(steps, [2]int{w, h})
	}
	return steps
}
