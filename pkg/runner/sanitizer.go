package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxInputSize is 4KB, far above any plausible answer.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize when set to a positive integer.
	EnvMaxInputSize = "ELIGIBILITY_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput validates and cleans one user answer.
// Oversized input and invalid UTF-8 are rejected, never truncated or repaired.
// Whitespace controls become spaces and every other control rune is dropped, so a
// stored turn is a single line without terminal escapes.
func SanitizeInput(input string) (string, error) {
	if limit := maxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	return strings.Map(cleanRune, input), nil
}

func cleanRune(r rune) rune {
	switch {
	case r == '\n', r == '\t', r == '\r':
		return ' '
	case unicode.IsControl(r):
		return -1
	}
	return r
}

func maxInputSize() int {
	if size, err := strconv.Atoi(os.Getenv(EnvMaxInputSize)); err == nil && size > 0 {
		return size
	}
	return DefaultMaxInputSize
}
