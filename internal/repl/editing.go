package repl

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// deleteLastRuneAndWidth truncates s by one rune and returns the new string
// plus the number of terminal cells the backspace must erase.
func deleteLastRuneAndWidth(s string) (string, int) {
	if len(s) == 0 {
		return s, 0
	}
	r, size := utf8.DecodeLastRuneInString(s)
	if size <= 0 {
		return s, 0
	}
	next := s[:len(s)-size]
	width := runewidth.RuneWidth(r)
	if width < 1 {
		// Combining runes may report 0; still erase one cell.
		width = 1
	}
	return next, width
}
