package memory

import "strings"

// cleanTitle extracts a printable cartridge title from the raw header
// bytes: stops at the first NUL, replaces non-printable bytes with '?',
// trims leading and trailing whitespace, and falls back to a placeholder
// when empty.
func cleanTitle(titleBytes []byte) string {
	var b strings.Builder
	for _, c := range titleBytes {
		if c == 0 {
			break
		}
		if c < 0x20 || c > 0x7E {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(c)
	}

	title := strings.TrimSpace(b.String())
	if title == "" {
		return "(Untitled)"
	}
	return title
}
