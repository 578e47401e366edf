package pdf

import (
	"strings"
	"unicode"
)

// Sanitize reduces text to what the core PDF fonts can show. Pictographs are
// dropped, General Punctuation becomes a space, line and paragraph separators
// become newlines, and whitespace is collapsed. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	mapped := strings.Map(func(r rune) rune {
		switch {
		case isPictograph(r):
			return -1
		case r == '\u2028' || r == '\u2029' || r == '\n':
			return '\n'
		case r >= 0x2000 && r <= 0x206F:
			return ' '
		case r == '\r', unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)

	lines := strings.Split(mapped, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isPictograph(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // emoji, symbols, flags
		return true
	case r >= 0x2300 && r <= 0x23FF, r >= 0x2600 && r <= 0x27BF, r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0000 && r <= 0xE007F:
		return true
	}
	return false
}
