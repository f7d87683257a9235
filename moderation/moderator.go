// Package moderation cleans message text before it is stored:
// censoring of listed words and language tagging.
package moderation

import (
	"chat-hub/errors"
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator censors listed words, matching case-insensitively through
// punctuation, spacing and common leet substitutions.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

// textMapping keeps, for each searchable rune, its index in the original text.
type textMapping struct {
	searchable []rune
	origIdx    []int
}

// NewModerator builds the automaton from words. Words made only of noise are ignored.
func NewModerator(words []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	var patterns [][]rune
	for _, word := range words {
		pattern := fold([]rune(word))
		if len(pattern) == 0 {
			log.Debug("Ignoring censored word without letters", "word", word)
			continue
		}
		patterns = append(patterns, pattern)
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	log.Debug("Moderation dictionary loaded", "words", len(patterns))
	return &Moderator{matcher: machine, censoredChar: censoredChar, log: log}, nil
}

// Censor replaces every matched original rune, noise included, by the censored char.
// It returns the censored text and the matched words in order of appearance.
func (m *Moderator) Censor(original string) (string, []string) {
	mapping := index(original)
	if len(mapping.searchable) == 0 {
		return original, nil
	}

	terms := m.matcher.MultiPatternSearch(mapping.searchable, false)
	if len(terms) == 0 {
		return original, nil
	}

	runes := []rune(original)
	var found []string
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			runes[i] = m.censoredChar
		}
		found = append(found, string(term.Word))
	}
	return string(runes), found
}

func index(input string) textMapping {
	runes := []rune(input)
	mapping := textMapping{
		searchable: make([]rune, 0, len(runes)),
		origIdx:    make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		folded, ok := foldRune(r)
		if !ok {
			continue
		}
		mapping.searchable = append(mapping.searchable, folded)
		mapping.origIdx = append(mapping.origIdx, i)
	}
	return mapping
}

func fold(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if folded, ok := foldRune(r); ok {
			out = append(out, folded)
		}
	}
	return out
}

// foldRune lowercases r after undoing leet substitutions. ok is false for noise.
func foldRune(r rune) (rune, bool) {
	switch r {
	case '4', '@':
		r = 'a'
	case '3', '€':
		r = 'e'
	case '1', '!', '|':
		r = 'i'
	case '0':
		r = 'o'
	case '5', '$':
		r = 's'
	}
	if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
		return 0, false
	}
	return unicode.ToLower(r), true
}
