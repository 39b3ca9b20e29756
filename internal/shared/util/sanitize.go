package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFileNameLen caps sanitized names, counted in runes.
const MaxFileNameLen = 120

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName makes an uploaded name safe to use as one storage path
// segment. Separators become underscores, control characters are dropped and
// whitespace runs collapse to a single space. Long names are cut from the stem
// so the extension survives.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}

	var b strings.Builder
	space := false
	for _, r := range strings.ToValidUTF8(strings.TrimSpace(name), "") {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
			space = false
		case unicode.IsSpace(r):
			if !space {
				b.WriteRune(' ')
			}
			space = true
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
			space = false
		}
	}

	s := strings.TrimSpace(b.String())
	if s == "" || s == "." {
		return "", ErrInvalidFileName
	}
	return truncateName(s, MaxFileNameLen), nil
}

func truncateName(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	ext := filepath.Ext(s)
	if utf8.RuneCountInString(ext) >= max/2 {
		ext = ""
	}
	stem := []rune(strings.TrimSuffix(s, ext))
	keep := max - utf8.RuneCountInString(ext)
	return strings.TrimSpace(string(stem[:keep])) + ext
}
