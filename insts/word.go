package insts

import (
	"errors"
	"fmt"
	"strconv"
)

// WordChars is the number of hex digits in a textual instruction word.
const WordChars = 8

// ErrInvalidWord is returned when a textual word is not exactly eight hex
// digits.
var ErrInvalidWord = errors.New("invalid instruction word")

// ParseWord parses an instruction word written as exactly eight hex digits,
// without prefix. Both upper and lower case digits are accepted.
func ParseWord(s string) (uint32, error) {
	if len(s) != WordChars {
		return 0, fmt.Errorf("%w: %q must be %d hex digits", ErrInvalidWord, s, WordChars)
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return 0, fmt.Errorf("%w: %q has non-hex character %q", ErrInvalidWord, s, s[i])
		}
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWord, err)
	}
	return uint32(v), nil
}

// FormatWord renders a word as eight lower-case hex digits.
func FormatWord(word uint32) string {
	return fmt.Sprintf("%08x", word)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
