// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DEDUP TESTS
// =============================================================================

func TestDedup_CaseInsensitiveKeepOrder(t *testing.T) {
	res := Dedup("a\nA\nb\na", DedupOptions{CaseSensitive: false, KeepOrder: true})
	assert.Equal(t, "a\nb", res.Text)
	assert.Equal(t, 2, res.DuplicatesRemoved)
	assert.Equal(t, 4, res.OriginalCount)
	assert.Equal(t, 2, res.UniqueCount)
}

func TestDedup_CaseSensitive(t *testing.T) {
	res := Dedup("Apple\napple\nApple", DedupOptions{CaseSensitive: true, KeepOrder: true})
	assert.Equal(t, "Apple\napple", res.Text)
	assert.Equal(t, 1, res.DuplicatesRemoved)

	folded := Dedup("Apple\napple", DedupOptions{KeepOrder: true})
	assert.Equal(t, "Apple", folded.Text)
}

func TestDedup_SortWhenNotKeepingOrder(t *testing.T) {
	res := Dedup("pear\napple\npear\nfig", DedupOptions{CaseSensitive: true})
	assert.Equal(t, []string{"apple", "fig", "pear"}, res.Lines)
}

func TestDedup_TrimAndEmpty(t *testing.T) {
	res := Dedup("  x \nx\n\n   \ny", DedupOptions{CaseSensitive: true, KeepOrder: true, TrimLines: true, RemoveEmpty: true})
	assert.Equal(t, "x\ny", res.Text)
	assert.Equal(t, 1, res.DuplicatesRemoved)
	assert.Equal(t, 2, res.EmptyRemoved)

	kept := Dedup("a\n\n\nb", DedupOptions{CaseSensitive: true, KeepOrder: true})
	assert.Equal(t, "a\n\nb", kept.Text)
	assert.Equal(t, 1, kept.DuplicatesRemoved)
}

func TestDedup_Properties(t *testing.T) {
	inputs := []string{
		"",
		"one",
		"b\na\nb\nc\na\nB\nA",
		"x\r\ny\r\nx\r\n",
		"same\nsame\nsame\nsame",
	}
	for _, in := range inputs {
		for _, opts := range []DedupOptions{
			{CaseSensitive: true, KeepOrder: true},
			{CaseSensitive: false, KeepOrder: true},
			{CaseSensitive: true, KeepOrder: false},
			{CaseSensitive: false, KeepOrder: false, TrimLines: true},
		} {
			lines := SplitLines(in)
			res := Dedup(in, opts)

			require.LessOrEqual(t, len(res.Lines), len(lines))
			assert.Equal(t, len(lines), res.UniqueCount+res.DuplicatesRemoved+res.EmptyRemoved)

			seen := map[string]bool{}
			for _, out := range res.Lines {
				key := out
				if !opts.CaseSensitive {
					key = strings.ToLower(out)
				}
				assert.False(t, seen[key], "line %q repeated", out)
				seen[key] = true
				assert.Contains(t, lines, out)
			}

			if opts.KeepOrder {
				assert.True(t, isSubsequence(res.Lines, lines), "output not a subsequence for %q", in)
			}
		}
	}
}

func isSubsequence(sub, full []string) bool {
	i := 0
	for _, s := range full {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	return i == len(sub)
}

func TestSplitLines(t *testing.T) {
	assert.Empty(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\r\nb\rc"))
	assert.Equal(t, []string{""}, SplitLines("\n"))
}

// =============================================================================
// REVERSE TESTS
// =============================================================================

func TestReverse(t *testing.T) {
	tests := []struct {
		mode ReverseMode
		in   string
		want string
	}{
		{ReverseChars, "hello", "olleh"},
		{ReverseChars, "héllo wörld", "dlröw olléh"},
		{ReverseChars, "e\u0301a", "a\u00e9"},
		{ReverseWords, "the quick  fox\nhello world", "fox quick the\nworld hello"},
		{ReverseWords, "  padded words ", "  words padded "},
		{ReverseLines, "1\n2\n3", "3\n2\n1"},
	}
	for _, tt := range tests {
		got, err := Reverse(tt.in, tt.mode)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "mode %s input %q", tt.mode, tt.in)
	}

	_, err := Reverse("x", ReverseMode("sideways"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseReverseMode(t *testing.T) {
	m, err := ParseReverseMode("Word")
	require.NoError(t, err)
	assert.Equal(t, ReverseWords, m)

	m, err = ParseReverseMode("")
	require.NoError(t, err)
	assert.Equal(t, ReverseChars, m)

	_, err = ParseReverseMode("bytes")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// =============================================================================
// CODEC TESTS
// =============================================================================

func TestHTMLCodec(t *testing.T) {
	enc := HTMLEncode(`<a href="x">Tom & Jerry's</a>`, false)
	assert.Equal(t, "&lt;a href=&quot;x&quot;&gt;Tom &amp; Jerry&#39;s&lt;/a&gt;", enc)
	assert.Equal(t, `<a href="x">Tom & Jerry's</a>`, HTMLDecode(enc))

	assert.Equal(t, "caf&#233; &amp; &#8364;", HTMLEncode("café & €", true))
	assert.Equal(t, "café & €", HTMLDecode("caf&eacute; &amp; &#8364;"))
}

func TestURLCodec(t *testing.T) {
	assert.Equal(t, "a%20b%26c%3Dd%2Fe", URLEncode("a b&c=d/e", true))
	assert.Equal(t, "a%20b&c=d/e", URLEncode("a b&c=d/e", false))
	assert.Equal(t, "%E2%82%AC", URLEncode("€", true))
	assert.Equal(t, "it's-(ok)!", URLEncode("it's-(ok)!", true))

	dec, err := URLDecode("a%20b+c", true)
	require.NoError(t, err)
	assert.Equal(t, "a b+c", dec)

	dec, err = URLDecode("a%2Fb%26c", true)
	require.NoError(t, err)
	assert.Equal(t, "a/b&c", dec)

	dec, err = URLDecode("a+b", false)
	require.NoError(t, err)
	assert.Equal(t, "a+b", dec)

	dec, err = URLDecode("a%20b%2Fc%3f%E2%82%AC", false)
	require.NoError(t, err)
	assert.Equal(t, "a b%2Fc%3f€", dec)

	_, err = URLDecode("%zz", false)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = URLDecode("%zz", true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBase64Codec(t *testing.T) {
	assert.Equal(t, "aGk/Pz4+", Base64Encode("hi??>>", false))
	assert.Equal(t, "aGk_Pz4-", Base64Encode("hi??>>", true))

	for _, in := range []string{"aGk/Pz4+", "aGk_Pz4-", "aGk/\nPz4+", "aGVsbG8", "aGVsbG8="} {
		out, err := Base64Decode(in)
		require.NoError(t, err, in)
		assert.NotEmpty(t, out)
	}

	out, err := Base64Decode("aGVsbG8")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = Base64Decode("@@@")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestFormatAndMinifyJSON(t *testing.T) {
	in := `{"b":1, "a":[1,2,{"c":null}]}`

	pretty, err := FormatJSON(in, "", false)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    1,\n    2,\n    {\n      \"c\": null\n    }\n  ]\n}", pretty)

	sorted, err := FormatJSON(in, "\t", true)
	require.NoError(t, err)
	assert.True(t, strings.Index(sorted, `"a"`) < strings.Index(sorted, `"b"`))

	min, err := MinifyJSON(pretty)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[1,2,{"c":null}]}`, min)

	big, err := FormatJSON(`{"n":12345678901234567890}`, "", true)
	require.NoError(t, err)
	assert.Contains(t, big, "12345678901234567890")
}

func TestValidateJSON(t *testing.T) {
	assert.True(t, ValidateJSON(`{"ok": true}`).Valid)
	assert.True(t, ValidateJSON("  [1, 2]\n").Valid)

	v := ValidateJSON("{\n  \"a\": 1,\n  \"b\" 2\n}")
	assert.False(t, v.Valid)
	assert.Equal(t, 3, v.Line)
	assert.Greater(t, v.Column, 0)
	assert.NotEmpty(t, v.Message)

	assert.False(t, ValidateJSON("").Valid)
	assert.False(t, ValidateJSON(`{"a":1} trailing`).Valid)
	assert.False(t, ValidateJSON(`{"a":1`).Valid)

	_, err := FormatJSON("{bad", "", false)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = MinifyJSON("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// =============================================================================
// PASSWORD TESTS
// =============================================================================

func TestGeneratePassword(t *testing.T) {
	opts := DefaultPasswordOptions()
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword(opts)
		require.NoError(t, err)
		require.Len(t, pw, 16)
		assert.True(t, strings.ContainsAny(pw, upperChars))
		assert.True(t, strings.ContainsAny(pw, lowerChars))
		assert.True(t, strings.ContainsAny(pw, digitChars))
		assert.True(t, strings.ContainsAny(pw, symbolChars))
	}
}

func TestGeneratePassword_ExcludeAmbiguous(t *testing.T) {
	opts := PasswordOptions{Length: 64, Upper: true, Lower: true, Digits: true, ExcludeAmbiguous: true}
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword(opts)
		require.NoError(t, err)
		assert.False(t, strings.ContainsAny(pw, ambiguous), pw)
		for _, r := range pw {
			assert.True(t, unicode.IsLetter(r) || unicode.IsDigit(r))
		}
	}
}

func TestGeneratePassword_Rejects(t *testing.T) {
	_, err := GeneratePassword(PasswordOptions{Length: 3, Lower: true})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = GeneratePassword(PasswordOptions{Length: 12})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = GeneratePassword(PasswordOptions{Length: 1000, Lower: true})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStrength(t *testing.T) {
	assert.Equal(t, "very weak", Strength("abc").Label)
	assert.Equal(t, 0.0, Strength("").Entropy)
	strong := Strength("Xk9!mP2#qL7$wR4&zT8*")
	assert.Greater(t, strong.Entropy, 120.0)
	assert.Contains(t, []string{"strong", "very strong"}, strong.Label)
}

// =============================================================================
// CASE / HASH / STATS TESTS
// =============================================================================

func TestConvertCase(t *testing.T) {
	tests := []struct {
		style, in, want string
	}{
		{"upper", "hello world", "HELLO WORLD"},
		{"lower", "Hello World", "hello world"},
		{"title", "hello world", "Hello World"},
		{"sentence", "HELLO. how ARE you? fine", "Hello. How are you? Fine"},
		{"camel", "hello big world", "helloBigWorld"},
		{"pascal", "hello_big-world", "HelloBigWorld"},
		{"snake", "helloBigWorld", "hello_big_world"},
		{"kebab", "HTTPServer error", "http-server-error"},
		{"constant", "max retry count", "MAX_RETRY_COUNT"},
	}
	for _, tt := range tests {
		got, err := ConvertCase(tt.in, tt.style)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.style)
	}

	_, err := ConvertCase("x", "zigzag")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHash(t *testing.T) {
	tests := map[string]string{
		"md5":      "5d41402abc4b2a76b9719d911017c592",
		"sha1":     "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
		"sha256":   "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		"sha3-256": "3338be694f50c5f338814986cdf0686453a888b84f424d792af4b9202398f392",
	}
	for algo, want := range tests {
		got, err := Hash("hello", algo)
		require.NoError(t, err)
		assert.Equal(t, want, got, algo)
	}

	b2, err := Hash("hello", "BLAKE2B-256")
	require.NoError(t, err)
	assert.Len(t, b2, 64)

	_, err = Hash("hello", "crc32")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBcrypt(t *testing.T) {
	h, err := BcryptHash("secret", 4)
	require.NoError(t, err)

	ok, err := BcryptCompare(h, "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = BcryptCompare(h, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = BcryptCompare("not-a-hash", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = BcryptHash("x", 99)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBcrypt_CostLimit(t *testing.T) {
	_, err := BcryptHash("x", MaxBcryptCost+1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = BcryptHash("x", 31)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// A well-formed hash claiming cost 31 must be refused before comparing.
	expensive := "$2a$31$" + strings.Repeat("a", 53)
	_, err = BcryptCompare(expensive, "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStats(t *testing.T) {
	st := Stats("Hello world. How are you?\n\nSecond paragraph here!")
	assert.Equal(t, 8, st.Words)
	assert.Equal(t, 3, st.Lines)
	assert.Equal(t, 2, st.Paragraphs)
	assert.Equal(t, 3, st.Sentences)
	assert.Equal(t, 0.1, st.ReadingMinutes)

	wide := Stats("日本語")
	assert.Equal(t, 3, wide.Characters)
	assert.Equal(t, 9, wide.Bytes)
	assert.Equal(t, 6, wide.MaxLineWidth)

	empty := Stats("")
	assert.Zero(t, empty.Words)
	assert.Zero(t, empty.Sentences)
}

func TestHighlight(t *testing.T) {
	out := Highlight(`{"a": 1}`, "json", "monokai")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, `"a"`)
}
