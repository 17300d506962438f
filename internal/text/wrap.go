package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Wrap splits text into lines of at most maxChars runes, breaking only on
// whitespace. Every hard line break in text starts a new line and blank
// lines are dropped. Spacing between words on the same line is kept. A word
// longer than maxChars is emitted alone on its own line. The result always
// holds at least one line.
func Wrap(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 1
	}
	return wrapLines(text, func(line string) bool {
		return utf8.RuneCountInString(line) <= maxChars
	})
}

// WrapMeasured is Wrap with a width budget in points, using measure to size
// candidate lines.
func WrapMeasured(text string, maxWidth float64, measure func(string) float64) []string {
	if measure == nil {
		return wrapLines(text, func(string) bool { return true })
	}
	return wrapLines(text, func(line string) bool {
		return measure(line) <= maxWidth
	})
}

func wrapLines(text string, fits func(string) bool) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, pack(splitIntoWords(para), fits)...)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// word is a run of non-space runes and the spacing that preceded it
type word struct {
	gap  string
	text string
}

// pack greedily fills lines with whole words while fits accepts them
func pack(words []word, fits func(string) bool) []string {
	var lines []string
	var currentLine string

	for _, w := range words {
		if currentLine == "" {
			currentLine = w.text
			continue
		}
		candidate := currentLine + w.gap + w.text
		if fits(candidate) {
			currentLine = candidate
			continue
		}
		lines = append(lines, currentLine)
		currentLine = w.text
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

// splitIntoWords splits one line of text into words. Each whitespace rune
// between words becomes a single space in the gap.
func splitIntoWords(text string) []word {
	var words []word
	var gap, currentWord strings.Builder

	flush := func() {
		if currentWord.Len() > 0 {
			words = append(words, word{gap: gap.String(), text: currentWord.String()})
			gap.Reset()
			currentWord.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsSpace(r) {
			flush()
			if r != '\r' {
				gap.WriteByte(' ')
			}
			continue
		}
		currentWord.WriteRune(r)
	}
	flush()

	return words
}

// Truncate returns the first n runes of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
