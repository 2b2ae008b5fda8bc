// Package security holds helpers for putting user-supplied names into
// places where they could be misread, such as download file names.
package security

import "strings"

// maxFilenameLen bounds the sanitised name.
const maxFilenameLen = 128

// SanitizeFilename turns a source label into a safe file name stem. Runs of
// characters other than ASCII letters, digits, '.', '_' and '-' become a
// single underscore, leading and trailing dots and underscores are
// trimmed, and an empty result becomes "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		if isFilenameRune(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}
