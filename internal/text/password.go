// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?/~"
	ambiguous   = "Il1O0o|`'\""

	MinPasswordLength = 4
	MaxPasswordLength = 256
)

// PasswordOptions configures GeneratePassword.
type PasswordOptions struct {
	Length           int  `json:"length" yaml:"length"`
	Upper            bool `json:"upper" yaml:"upper"`
	Lower            bool `json:"lower" yaml:"lower"`
	Digits           bool `json:"digits" yaml:"digits"`
	Symbols          bool `json:"symbols" yaml:"symbols"`
	ExcludeAmbiguous bool `json:"exclude_ambiguous" yaml:"exclude_ambiguous"`
}

// DefaultPasswordOptions returns a 16 character password using every class.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{Length: 16, Upper: true, Lower: true, Digits: true, Symbols: true}
}

// GeneratePassword builds a random password from crypto/rand that contains
// at least one character from every selected class.
func GeneratePassword(opts PasswordOptions) (string, error) {
	if opts.Length < MinPasswordLength || opts.Length > MaxPasswordLength {
		return "", invalid("length must be between %d and %d, got %d", MinPasswordLength, MaxPasswordLength, opts.Length)
	}

	var classes []string
	for _, c := range []struct {
		on  bool
		set string
	}{
		{opts.Upper, upperChars},
		{opts.Lower, lowerChars},
		{opts.Digits, digitChars},
		{opts.Symbols, symbolChars},
	} {
		if !c.on {
			continue
		}
		set := c.set
		if opts.ExcludeAmbiguous {
			set = stripChars(set, ambiguous)
		}
		classes = append(classes, set)
	}
	if len(classes) == 0 {
		return "", invalid("select at least one character class")
	}
	if len(classes) > opts.Length {
		return "", invalid("length %d is too short for %d character classes", opts.Length, len(classes))
	}

	all := strings.Join(classes, "")
	out := make([]byte, opts.Length)
	for i, set := range classes {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	for i := len(classes); i < opts.Length; i++ {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		out[i] = c
	}

	// Fisher-Yates so the guaranteed characters are not always in front.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func stripChars(set, remove string) string {
	var b strings.Builder
	for _, r := range set {
		if !strings.ContainsRune(remove, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func randomChar(set string) (byte, error) {
	i, err := randomInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return int(v.Int64()), nil
}

// PasswordStrength is an entropy estimate for a password.
type PasswordStrength struct {
	Entropy float64 `json:"entropy_bits" yaml:"entropy_bits"`
	Label   string  `json:"label" yaml:"label"`
}

// Strength estimates entropy as length * log2(pool size), where the pool is
// the union of character classes present in pw.
func Strength(pw string) PasswordStrength {
	pool := 0
	if strings.ContainsAny(pw, lowerChars) {
		pool += len(lowerChars)
	}
	if strings.ContainsAny(pw, upperChars) {
		pool += len(upperChars)
	}
	if strings.ContainsAny(pw, digitChars) {
		pool += len(digitChars)
	}
	for _, r := range pw {
		if !strings.ContainsRune(lowerChars+upperChars+digitChars, r) {
			pool += 33
			break
		}
	}

	var bits float64
	if pool > 0 {
		bits = float64(len([]rune(pw))) * math.Log2(float64(pool))
	}

	label := "very weak"
	switch {
	case bits >= 128:
		label = "very strong"
	case bits >= 80:
		label = "strong"
	case bits >= 60:
		label = "good"
	case bits >= 40:
		label = "weak"
	}
	return PasswordStrength{Entropy: bits, Label: label}
}
