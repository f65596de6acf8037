package emit

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks text into lines of at most width characters. Every run of whitespace,
// newlines included, separates words; words longer than width are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var (
		lines []string
		line  strings.Builder
		n     int
	)
	flush := func() {
		if n > 0 {
			lines = append(lines, line.String())
			line.Reset()
			n = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wn := utf8.RuneCountInString(word)
		if n > 0 && n+1+wn <= width {
			line.WriteByte(' ')
			line.WriteString(word)
			n += 1 + wn
			continue
		}
		flush()

		for wn > width {
			head, rest := splitRunes(word, width)
			lines = append(lines, head)
			word, wn = rest, wn-width
		}
		line.WriteString(word)
		n = wn
	}
	flush()

	return lines
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for range n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
