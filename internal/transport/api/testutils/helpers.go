package testutils

import "strings"

// GenerateOverBytesUnderRunes returns count 4-byte runes, its byte length is always above the rune count.
func GenerateOverBytesUnderRunes(count int) string {
	symbol := "😁"
	return strings.Repeat(symbol, count)
}
