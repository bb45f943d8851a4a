// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package imaging implements the raster image tools: resize, crop and
// multi-step upscale, plus decoding and re-encoding between formats.
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding supports
// every format except WebP, which golang.org/x/image can only read.
//
// # Key Types
//
//   - Format: an image container format name
//   - ResizeOptions: target box, aspect handling and resampling filter
//   - Rect: a crop rectangle relative to the image origin
//   - EncodeOptions: output format and JPEG quality
//
// # Usage
//
//	img, format, err := imaging.Decode(data)
//	small, err := imaging.Resize(img, imaging.ResizeOptions{Width: 800, KeepAspect: true})
//	err = imaging.Encode(w, small, imaging.EncodeOptions{Format: format})
//	name := imaging.OutputName("cat.jpg", "resized", format)
package imaging
