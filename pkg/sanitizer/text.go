package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	spaceRunRegex   = regexp.MustCompile(`[ \t]+`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemoveControlChars drops control characters except newlines and tabs.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// StripHTML removes tags and unescapes entities.
func StripHTML(s string) string {
	return html.UnescapeString(tagRegex.ReplaceAllString(s, ""))
}

// SingleLine folds every whitespace run, line breaks included, into one space.
func SingleLine(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// CollapseSpaces folds runs of spaces and tabs and keeps at most one empty
// line between paragraphs.
func CollapseSpaces(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRunRegex.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(s, "\n\n"))
}

// Address normalises a delivery address: markup and control characters are
// removed and the result is a single line.
var Address = Compose(StripHTML, RemoveControlChars, SingleLine)

// Note normalises multi-line free text such as allergy notes or testimonials.
var Note = Compose(StripHTML, RemoveControlChars, CollapseSpaces)
