// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"image"

	"github.com/jeranaias/toolverse/internal/imaging"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// IMAGE TOOLS
// =============================================================================

func imageFormatNames() []string {
	names := make([]string, len(imaging.EncodableFormats))
	for i, f := range imaging.EncodableFormats {
		names[i] = string(f)
	}
	return append(names, "jpg", "tif")
}

func imageParams(s Settings, params ...Parameter) []Parameter {
	out := []Parameter{
		{Name: "image", Type: TypeFile, Required: true, Description: "Input image (png, jpeg, gif, bmp, tiff or webp)"},
	}
	out = append(out, params...)
	return append(out,
		Parameter{Name: "format", Type: TypeString, Description: "Output format; defaults to the input format when it can be written", Enum: imageFormatNames()},
		Parameter{Name: "quality", Type: TypeInteger, Description: "JPEG quality", Default: s.JPEGQuality, Min: bound(1), Max: bound(100)},
	)
}

func imageTools(s Settings) []*Tool {
	return []*Tool{
		{
			Name:        "image-resize",
			Aliases:     []string{"resize"},
			Category:    CategoryImage,
			Description: "Resize an image by resampling",
			Usage:       "toolverse run image-resize --image photo.jpg --width 800 --output out/",
			Schema: Schema{Parameters: imageParams(s,
				Parameter{Name: "width", Type: TypeInteger, Description: "Target width in pixels", Default: 0, Min: bound(0), Max: bound(imaging.MaxSide)},
				Parameter{Name: "height", Type: TypeInteger, Description: "Target height in pixels", Default: 0, Min: bound(0), Max: bound(imaging.MaxSide)},
				Parameter{Name: "keep_aspect", Type: TypeBoolean, Description: "Preserve the aspect ratio", Default: true},
				Parameter{Name: "filter", Type: TypeString, Description: "Resampling filter", Default: string(s.Filter), Enum: []string{"nearest", "bilinear", "catmullrom"}},
			)},
			Executor: &imageExecutor{settings: s, suffix: "resized", op: resizeOp},
		},
		{
			Name:        "image-crop",
			Aliases:     []string{"crop"},
			Category:    CategoryImage,
			Description: "Cut a rectangle out of an image",
			Usage:       "toolverse run image-crop --image photo.png --x 10 --y 10 --width 200 --height 100",
			Schema: Schema{Parameters: imageParams(s,
				Parameter{Name: "x", Type: TypeInteger, Description: "Left edge", Default: 0, Min: bound(0)},
				Parameter{Name: "y", Type: TypeInteger, Description: "Top edge", Default: 0, Min: bound(0)},
				Parameter{Name: "width", Type: TypeInteger, Required: true, Description: "Crop width", Min: bound(1)},
				Parameter{Name: "height", Type: TypeInteger, Required: true, Description: "Crop height", Min: bound(1)},
			)},
			Executor: &imageExecutor{settings: s, suffix: "cropped", op: cropOp},
		},
		{
			Name:        "image-upscale",
			Aliases:     []string{"upscale"},
			Category:    CategoryImage,
			Description: "Enlarge an image in smooth 2x steps",
			Usage:       "toolverse run image-upscale --image icon.png --factor 4",
			Schema: Schema{Parameters: imageParams(s,
				Parameter{Name: "factor", Type: TypeNumber, Description: "Scale factor, above 1 and at most 8", Default: 2.0, Min: bound(1), Max: bound(imaging.MaxUpscale)},
			)},
			Executor: &imageExecutor{settings: s, suffix: "upscaled", op: upscaleOp},
		},
		{
			Name:        "image-convert",
			Category:    CategoryImage,
			Description: "Re-encode an image in another format",
			Usage:       "toolverse run image-convert --image photo.webp --format png",
			Schema:      Schema{Parameters: imageParams(s)},
			Executor:    &imageExecutor{settings: s, suffix: "", op: convertOp},
		},
		{
			Name:        "image-info",
			Category:    CategoryImage,
			Description: "Show an image's format and dimensions",
			Schema: Schema{Parameters: []Parameter{
				{Name: "image", Type: TypeFile, Required: true, Description: "Input image"},
			}},
			Executor: ExecutorFunc(runImageInfo),
		},
	}
}

// =============================================================================
// EXECUTOR
// =============================================================================

type imageOp func(img image.Image, call Call) (image.Image, error)

// imageExecutor decodes the input, applies op and encodes the artifact.
type imageExecutor struct {
	settings Settings
	suffix   string
	op       imageOp
}

func (e *imageExecutor) Execute(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("image")
	src, srcFormat, err := imaging.Decode(f.Data)
	if err != nil {
		return Result{}, err
	}

	format, err := e.outputFormat(call, srcFormat)
	if err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	out, err := e.op(src, call)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := imaging.EncodeBytes(out, imaging.EncodeOptions{Format: format, Quality: call.GetInt("quality", e.settings.JPEGQuality)})
	if err != nil {
		return Result{}, err
	}

	before := imaging.Describe(src, srcFormat)
	after := imaging.Describe(out, format)
	art := Artifact{
		Name:        imaging.OutputName(f.Name, e.suffix, format),
		ContentType: format.ContentType(),
		Data:        data,
	}
	output := fmt.Sprintf("%s %dx%d -> %s %dx%d (%s)",
		before.Format, before.Width, before.Height,
		after.Format, after.Width, after.Height,
		util.FormatBytes(int64(len(data))))

	return Result{
		Output:    output,
		Data:      map[string]imaging.Info{"input": before, "output": after},
		Artifacts: []Artifact{art},
	}, nil
}

// outputFormat picks the requested format, else the source format when it
// can be encoded, else the configured default.
func (e *imageExecutor) outputFormat(call Call, src imaging.Format) (imaging.Format, error) {
	if name := call.GetString("format", ""); name != "" {
		return imaging.ParseFormat(name)
	}
	if src.Encodable() {
		return src, nil
	}
	if e.settings.ImageFormat != "" {
		return e.settings.ImageFormat, nil
	}
	return imaging.PNG, nil
}

func resizeOp(img image.Image, call Call) (image.Image, error) {
	filter, err := imaging.ParseFilter(call.GetString("filter", ""))
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, imaging.ResizeOptions{
		Width:      call.GetInt("width", 0),
		Height:     call.GetInt("height", 0),
		KeepAspect: call.GetBool("keep_aspect", true),
		Filter:     filter,
	})
}

func cropOp(img image.Image, call Call) (image.Image, error) {
	return imaging.Crop(img, imaging.Rect{
		X:      call.GetInt("x", 0),
		Y:      call.GetInt("y", 0),
		Width:  call.GetInt("width", 0),
		Height: call.GetInt("height", 0),
	})
}

func upscaleOp(img image.Image, call Call) (image.Image, error) {
	return imaging.Upscale(img, call.GetFloat("factor", 2))
}

func convertOp(img image.Image, call Call) (image.Image, error) {
	return img, nil
}

func runImageInfo(ctx context.Context, call Call) (Result, error) {
	f, _ := call.GetFile("image")
	img, format, err := imaging.Decode(f.Data)
	if err != nil {
		return Result{}, err
	}
	info := imaging.Describe(img, format)
	out := table{
		{"Format", string(info.Format)},
		{"Size", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"File size", util.FormatBytes(int64(len(f.Data)))},
	}
	return Result{Output: out.String(), Data: info}, nil
}
