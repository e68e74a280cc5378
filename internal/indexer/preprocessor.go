package indexer

import (
	"regexp"
	"strings"
	"unicode"
)

// lineBreakHyphen matches a word broken across lines by PDF layout ("hyphen-\nated").
var lineBreakHyphen = regexp.MustCompile(`(\p{L})-[ \t]*\r?\n[ \t]*(\p{Ll})`)

// Preprocess normalizes extracted text for indexing: rejoins hyphenated line breaks,
// trims, and collapses whitespace.
func Preprocess(text string) string {
	text = lineBreakHyphen.ReplaceAllString(text, "$1$2")
	text = strings.TrimSpace(text)
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
