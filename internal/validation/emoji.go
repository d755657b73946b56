package validation

import (
	"fmt"
	"unicode"
)

// emojiRanges covers the pictographic blocks plus the joiners and selectors
// used to compose emoji sequences.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero width joiner
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2b50, Hi: 0x2b55, Stride: 1},
		{Lo: 0xfe0f, Hi: 0xfe0f, Stride: 1}, // emoji presentation selector
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
}

// ContainsEmoji reports whether s has any emoji code point.
func ContainsEmoji(s string) bool {
	for _, r := range s {
		if unicode.Is(emojiRanges, r) {
			return true
		}
	}
	return false
}

// NoEmoji rejects values containing emoji.
func NoEmoji(field, value string) error {
	if ContainsEmoji(value) {
		return fmt.Errorf("%s must not contain emoji", field)
	}
	return nil
}
