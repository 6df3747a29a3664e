package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type multiplier int

const (
	multNone multiplier = iota
	multThousand
	// multUnsupported is a magnitude word the extractor does not scale by.
	multUnsupported
)

var magnitudeWords = map[string]bool{
	"millón": true, "millon": true, "millones": true,
	"thousand": true, "thousands": true,
	"million": true, "millions": true,
	"mm": true, "m": true,
}

var mileUnits = map[string]bool{
	"mi": true, "milla": true, "millas": true,
	"mile": true, "miles": true,
}

// token is an integer-like run of digits found in free text.
type token struct {
	groups   []string
	sep      byte
	negative bool
	mult     multiplier
	// miles marks a mile unit after the number.
	miles bool
	// malformed marks separator usage that cannot be read as thousands grouping.
	malformed bool
}

func (t token) digits() string {
	return strings.Join(t.groups, "")
}

func (t token) grouped() bool {
	return len(t.groups) > 1
}

// scan finds integer-like tokens in text. Digit runs glued to a preceding
// letter (model names such as "cx5") are skipped.
func scan(text string) []token {
	var out []token
	i := 0
	for i < len(text) {
		if !isDigit(text[i]) {
			i++
			continue
		}
		start := i
		if start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:start])
			if unicode.IsLetter(prev) {
				for i < len(text) && isDigit(text[i]) {
					i++
				}
				continue
			}
		}

		var tok token
		for {
			j := i
			for j < len(text) && isDigit(text[j]) {
				j++
			}
			tok.groups = append(tok.groups, text[i:j])
			i = j
			if i+1 < len(text) && (text[i] == '.' || text[i] == ',') && isDigit(text[i+1]) {
				if tok.sep != 0 && tok.sep != text[i] {
					tok.malformed = true
				}
				tok.sep = text[i]
				i++
				continue
			}
			break
		}

		if start > 0 && text[start-1] == '-' {
			if start == 1 || !isWordByte(text[start-2]) {
				tok.negative = true
			}
		}
		tok.mult, tok.miles = suffix(text[i:])
		if !validGroups(tok.groups) {
			tok.malformed = true
		}
		out = append(out, tok)
	}
	return out
}

func validGroups(groups []string) bool {
	if len(groups) == 1 {
		return true
	}
	if len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// suffix reads the words right after a token: a thousands multiplier ("45k",
// "45 mil", "45mil"), any other magnitude word, and a mile unit ("45 mil millas").
func suffix(rest string) (multiplier, bool) {
	word, rest := nextWord(rest)
	mult := multNone
	switch {
	case word == "k" || word == "mil":
		mult = multThousand
		word, _ = nextWord(rest)
	case magnitudeWords[word]:
		return multUnsupported, false
	}
	if magnitudeWords[word] || word == "mil" {
		return multUnsupported, false
	}
	return mult, mileUnits[word]
}

// nextWord skips spaces and returns the run of letters that follows.
func nextWord(s string) (string, string) {
	s = strings.TrimLeft(s, " ")
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsLetter(r) {
			break
		}
		end += size
	}
	return s[:end], s[end:]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWordByte(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || b >= utf8.RuneSelf
}
