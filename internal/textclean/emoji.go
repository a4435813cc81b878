package textclean

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// emojiTable covers the pictographic blocks chat exports actually contain.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2300, Hi: 0x23ff, Stride: 1}, // misc technical (watch, hourglass, media keys)
		{Lo: 0x2600, Hi: 0x26ff, Stride: 1}, // misc symbols
		{Lo: 0x2700, Hi: 0x27bf, Stride: 1}, // dingbats
		{Lo: 0x2b00, Hi: 0x2bff, Stride: 1}, // arrows, stars
		{Lo: 0xfe00, Hi: 0xfe0f, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1f02f, Stride: 1}, // mahjong
		{Lo: 0x1f0a0, Hi: 0x1f0ff, Stride: 1}, // playing cards
		{Lo: 0x1f100, Hi: 0x1f1ff, Stride: 1}, // enclosed alphanumerics, flags
		{Lo: 0x1f200, Hi: 0x1f2ff, Stride: 1},
		{Lo: 0x1f300, Hi: 0x1f5ff, Stride: 1}, // symbols & pictographs
		{Lo: 0x1f600, Hi: 0x1f64f, Stride: 1}, // emoticons
		{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1}, // transport & map
		{Lo: 0x1f700, Hi: 0x1f7ff, Stride: 1},
		{Lo: 0x1f900, Hi: 0x1f9ff, Stride: 1}, // supplemental symbols
		{Lo: 0x1fa70, Hi: 0x1faff, Stride: 1}, // symbols & pictographs ext-A
	},
}

const (
	zwj             = '\u200d'
	variationSelect = '\ufe0f'
)

// IsEmoji reports whether r falls in one of the emoji ranges.
func IsEmoji(r rune) bool {
	return unicode.Is(emojiTable, r)
}

// StripEmoji removes every emoji code point, plus the joiners that only make
// sense between them.
func StripEmoji(text string) string {
	return strings.Map(func(r rune) rune {
		if IsEmoji(r) || r == zwj {
			return -1
		}
		return r
	}, text)
}

// Emojis returns the emoji in text in order of appearance. Each grapheme cluster
// that starts with an emoji counts once, so "👍🏽" and family ZWJ sequences are
// kept whole. A trailing variation selector is dropped so "❤" and "❤️" count
// as the same emoji.
func Emojis(text string) []string {
	var out []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		if len(runes) == 0 || !IsEmoji(runes[0]) || runes[0] == variationSelect {
			continue
		}
		if runes[len(runes)-1] == variationSelect {
			runes = runes[:len(runes)-1]
		}
		out = append(out, string(runes))
	}
	return out
}
