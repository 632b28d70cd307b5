package tweet

import (
	"strings"
	"unicode"
)

// abbreviations that end with a period without ending a sentence
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true, "approx": true, "dept": true, "est": true,
	"fig": true, "gen": true, "gov": true, "inc": true, "jan": true,
	"feb": true, "mar": true, "apr": true, "jun": true, "jul": true,
	"aug": true, "sep": true, "sept": true, "oct": true, "nov": true,
	"dec": true, "no": true, "u.s": true, "u.k": true, "u.n": true,
}

// SplitSentences segments a text into sentences. The splitter is rule
// based: it breaks after sentence-final punctuation followed by space and
// an upper-case or digit start, keeps common abbreviations and initials
// together, and never breaks inside URLs.
func SplitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// consume runs like "?!" or "..."
		end := i
		for end+1 < len(runes) && isSentenceFinal(runes[end+1]) {
			end++
		}
		if !boundaryAfter(runes, end) {
			i = end
			continue
		}
		if r == '.' && !breaksAfterPeriod(runes, start, i) {
			i = end
			continue
		}
		if s := strings.TrimSpace(string(runes[start : end+1])); s != "" {
			sentences = append(sentences, s)
		}
		i = end
		start = end + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceFinal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '"' || r == '\'' || r == ')'
}

// boundaryAfter reports whether position i can end a sentence: the text
// ends there, or whitespace follows and the next word starts a sentence.
func boundaryAfter(runes []rune, i int) bool {
	j := i + 1
	if j >= len(runes) {
		return true
	}
	if !unicode.IsSpace(runes[j]) {
		return false
	}
	for j < len(runes) && unicode.IsSpace(runes[j]) {
		j++
	}
	if j >= len(runes) {
		return true
	}
	next := runes[j]
	return unicode.IsUpper(next) || unicode.IsDigit(next) ||
		next == '"' || next == '\'' || next == '@' || next == '#'
}

// breaksAfterPeriod reports whether the period at position i ends a
// sentence, ruling out abbreviations, single-letter initials and URLs.
func breaksAfterPeriod(runes []rune, start, i int) bool {
	// word preceding the period
	w := i
	for w > start && !unicode.IsSpace(runes[w-1]) {
		w--
	}
	word := strings.ToLower(string(runes[w:i]))
	if abbreviations[strings.TrimLeft(word, "(\"'")] {
		return false
	}
	// single-letter initials like "J." in "J. Smith"
	if len([]rune(word)) == 1 && unicode.IsLetter(runes[i-1]) {
		return false
	}
	if strings.Contains(word, "://") || strings.HasPrefix(word, "www.") {
		return false
	}
	return true
}
