// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.WarnLevel,
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_ConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Out: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug().Msg("hidden")
	logger.Info().Str("tool", "tip").Msg("ran tool")
	logger.Error().Msg("broke")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ran tool")
	assert.Contains(t, out, "tool=tip")
	assert.Contains(t, out, "broke")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "debug", JSON: true, Out: &buf})
	require.NoError(t, err)

	logger.Debug().Int("status", 200).Msg("request")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "debug", event["level"])
	assert.Equal(t, "request", event["message"])
	assert.Equal(t, float64(200), event["status"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolverse.log")
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Out: &buf, File: path})
	require.NoError(t, err)

	logger.Info().Msg("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to both"`)
	assert.Contains(t, buf.String(), "to both")
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestGlobalLogger(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	_, err := Setup(Options{Level: "debug", JSON: true, Out: &buf})
	require.NoError(t, err)

	Debugf("value %d", 7)
	l := With("server")
	l.Info().Msg("tagged")

	out := buf.String()
	assert.Contains(t, out, "value 7")
	assert.Contains(t, out, `"component":"server"`)
}

func TestSpecificLevelWriter(t *testing.T) {
	var buf bytes.Buffer
	w := SpecificLevelWriter{Writer: &buf, Levels: []zerolog.Level{zerolog.ErrorLevel}}

	n, err := w.WriteLevel(zerolog.InfoLevel, []byte("skip"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Empty(t, buf.String())

	_, err = w.WriteLevel(zerolog.ErrorLevel, []byte("keep"))
	require.NoError(t, err)
	assert.Equal(t, "keep", buf.String())
}
