package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const defaultMinTokenLen = 3

var urlPattern = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)

// Stopwords is a lower-cased word set.
type Stopwords map[string]struct{}

// Contains reports whether word (already lower-cased) is a stop-word.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Cleaner turns raw message bodies into the normalized token string used by
// every downstream stage. A Cleaner is read-only after construction and safe for
// concurrent use.
type Cleaner struct {
	stopwords   Stopwords
	minTokenLen int
}

// NewCleaner builds a cleaner over the given stop-word set. A nil set disables
// stop-word removal.
func NewCleaner(stopwords Stopwords) *Cleaner {
	if stopwords == nil {
		stopwords = Stopwords{}
	}
	return &Cleaner{stopwords: stopwords, minTokenLen: defaultMinTokenLen}
}

// Clean runs the pipeline: links, emoji and format marks are stripped, the text is
// split on whitespace, each token is trimmed of surrounding punctuation and
// lower-cased, and stop-words and short tokens are dropped.
//
// An empty result means the message carries nothing analyzable.
func (c *Cleaner) Clean(raw string) string {
	text := norm.NFC.String(raw)
	text = StripLinks(text)
	text = StripEmoji(text)
	text = StripMarks(text)
	// Removing emoji or marks can splice a link back together.
	text = StripLinks(text)

	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := normalizeToken(f)
		if utf8.RuneCountInString(tok) < c.minTokenLen {
			continue
		}
		if c.stopwords.Contains(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// StripLinks removes http(s) and www. links.
func StripLinks(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}

// StripMarks removes bidi, zero-width and other invisible format characters.
func StripMarks(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, text)
}

func normalizeToken(tok string) string {
	tok = strings.TrimFunc(tok, func(r rune) bool {
		return unicode.IsPunct(r) || (unicode.IsSymbol(r) && r < utf8.RuneSelf)
	})
	return norm.NFC.String(strings.ToLower(tok))
}
