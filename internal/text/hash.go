// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

var hashers = map[string]func() hash.Hash{
	"md5":      md5.New,
	"sha1":     sha1.New,
	"sha256":   sha256.New,
	"sha512":   sha512.New,
	"sha3-256": sha3.New256,
	"sha3-512": sha3.New512,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
}

// HashAlgorithms lists the digest names Hash accepts.
func HashAlgorithms() []string {
	names := make([]string, 0, len(hashers))
	for name := range hashers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hash returns the lowercase hex digest of s.
func Hash(s, algo string) (string, error) {
	newHash, ok := hashers[strings.ToLower(algo)]
	if !ok {
		return "", invalid("unknown hash algorithm %q (use one of %s)", algo, strings.Join(HashAlgorithms(), ", "))
	}
	h := newHash()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MaxBcryptCost caps the work factor. bcrypt cannot be interrupted and
// every step doubles the time, so cost 31 runs for days.
const MaxBcryptCost = 14

// BcryptHash hashes a password with the given cost (bcrypt.DefaultCost
// when zero), at most MaxBcryptCost.
func BcryptHash(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > MaxBcryptCost {
		return "", invalid("bcrypt cost must be between %d and %d", bcrypt.MinCost, MaxBcryptCost)
	}
	if len(password) > 72 {
		return "", invalid("bcrypt input is limited to 72 bytes")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// BcryptCompare reports whether password matches a bcrypt hash. Hashes
// above MaxBcryptCost are rejected without comparing.
func BcryptCompare(hashed, password string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return false, invalid("malformed bcrypt hash: %v", err)
	}
	if cost > MaxBcryptCost {
		return false, invalid("bcrypt hash cost %d is above the limit of %d", cost, MaxBcryptCost)
	}
	err = bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, invalid("malformed bcrypt hash: %v", err)
	}
}
