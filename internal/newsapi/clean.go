package newsapi

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	truncationOpen  = "[+"
	truncationClose = "chars]"
	promotedMarker  = "PROMOTED"

	// minKeptPrefix is the length a prefix must exceed to survive a marker cut.
	minKeptPrefix = 50
	// minContentLength is the shortest body worth showing.
	minContentLength = 100
	shortWordLength  = 2
)

// footerMarkers start copyright and contact boilerplate appended by some
// publishers. They are checked in order.
var footerMarkers = []string{
	"E-mail :",
	"[email protected]",
	"+380 95 641 22 07",
	"R40-02280",
	"R40-02162",
	"01032,",
	"© 2014-2025",
}

// Clean filters and truncates the raw content snippet of an upstream article.
// It returns "" when too little readable text survives.
func Clean(content string) string {
	if content == "" {
		return ""
	}

	if i := strings.Index(content, truncationOpen); i >= 0 &&
		strings.Contains(content[i+len(truncationOpen):], truncationClose) {
		content = strings.TrimSpace(content[:i])
	}

	var ok bool
	if content, ok = cutAt(content, promotedMarker); !ok {
		return ""
	}

	for _, marker := range footerMarkers {
		if content, ok = cutAt(content, marker); !ok {
			return ""
		}
	}

	content = strings.TrimLeftFunc(content, func(r rune) bool {
		return r == '(' || r == ')' || r == '-' || unicode.IsSpace(r)
	})
	content = strings.TrimSpace(content)

	if utf8.RuneCountInString(content) < minContentLength {
		return ""
	}

	words := strings.Fields(content)
	if len(words) == 0 {
		return ""
	}
	short := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) <= shortWordLength {
			short++
		}
	}
	// more than 60% short words
	if short*5 > len(words)*3 {
		return ""
	}

	return content
}

// cutAt keeps the text before the first occurrence of marker. ok is false when
// the marker is present but the kept prefix is too short to be worth showing.
func cutAt(content, marker string) (string, bool) {
	before, _, found := strings.Cut(content, marker)
	if !found {
		return content, true
	}
	before = strings.TrimSpace(before)
	if utf8.RuneCountInString(before) > minKeptPrefix {
		return before, true
	}
	return "", false
}
