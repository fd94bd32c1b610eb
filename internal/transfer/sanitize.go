package transfer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxFileNameLength = 200

// SanitizeFileName normalizes a source-provided file name into something safe
// for staging paths and object keys: NFC-normalized, no path separators or
// control characters, bounded length, never empty.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			b.WriteByte('_')
		case r < 0x20 || r == 0x7f:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.Trim(b.String(), " .")
	if cleaned == "" {
		return "file"
	}
	if len(cleaned) > maxFileNameLength {
		cleaned = truncateName(cleaned, maxFileNameLength)
	}
	return cleaned
}

// truncateName cuts the base name while keeping the extension, respecting
// rune boundaries.
func truncateName(name string, limit int) string {
	ext := ""
	if idx := strings.LastIndexByte(name, '.'); idx > 0 && len(name)-idx <= 16 {
		ext = name[idx:]
	}
	base := strings.TrimSuffix(name, ext)
	budget := limit - len(ext)
	if budget < 1 {
		budget = 1
	}
	for len(base) > budget {
		_, size := utf8.DecodeLastRuneInString(base)
		base = base[:len(base)-size]
	}
	if base == "" {
		base = "file"
	}
	return base + ext
}
