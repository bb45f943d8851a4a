// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"strings"

	"github.com/jeranaias/toolverse/internal/audio"
	"github.com/jeranaias/toolverse/internal/finance"
	"github.com/jeranaias/toolverse/internal/imaging"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings carries configured defaults into the built-in tools.
type Settings struct {
	// Rates are units per USD, merged over finance.DefaultRates
	Rates           map[string]float64
	DefaultCurrency string

	ImageFormat imaging.Format
	JPEGQuality int
	Filter      imaging.Filter

	Audio audio.ConvertOptions
}

// DefaultSettings returns the settings used when no configuration exists.
func DefaultSettings() Settings {
	return Settings{
		DefaultCurrency: finance.BaseCurrency,
		ImageFormat:     imaging.PNG,
		JPEGQuality:     imaging.DefaultJPEGQuality,
		Filter:          imaging.CatmullRom,
		Audio:           audio.DefaultConvertOptions(),
	}
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// table renders label/value rows with aligned values.
type table [][2]string

func (t table) String() string {
	width := 0
	for _, row := range t {
		if w := util.StringWidth(row[0]); w > width {
			width = w
		}
	}
	var b strings.Builder
	for i, row := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		if row[0] == "" {
			b.WriteString(row[1])
			continue
		}
		b.WriteString(util.PadRight(row[0]+":", width+1))
		b.WriteString("  ")
		b.WriteString(row[1])
	}
	return b.String()
}

func textResult(output string, data interface{}) Result {
	return Result{Output: output, Data: data}
}
