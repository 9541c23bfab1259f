// Package nlp matches text against a fixed phrase vocabulary.
package nlp

import "strings"

// PhraseIndex resolves single and multi-word phrases to canonical tags.
// Matching is exact after upper-casing; punctuation is never folded away.
type PhraseIndex struct {
	phrases  map[string]struct{}
	maxWords int
}

// NewPhraseIndex indexes the canonical tags as given, upper-cased.
func NewPhraseIndex(canonical []string) *PhraseIndex {
	idx := &PhraseIndex{phrases: make(map[string]struct{}, len(canonical))}
	for _, c := range canonical {
		words := strings.Fields(strings.ToUpper(c))
		if len(words) == 0 {
			continue
		}
		idx.phrases[strings.Join(words, " ")] = struct{}{}
		if len(words) > idx.maxWords {
			idx.maxWords = len(words)
		}
	}
	return idx
}

// Lookup reports whether phrase, upper-cased and trimmed, is a canonical tag.
func (p *PhraseIndex) Lookup(phrase string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(phrase))
	_, ok := p.phrases[c]
	return c, ok
}

// Segment splits whitespace-separated text into canonical tags using greedy
// longest match. Words that start no known phrase are returned in unknown, in
// order. Canonical tags are de-duplicated, first occurrence wins.
func (p *PhraseIndex) Segment(text string) (tags []string, unknown []string) {
	words := strings.Fields(strings.ToUpper(text))
	seen := make(map[string]struct{})
	for i := 0; i < len(words); {
		matched := 0
		for n := min(p.maxWords, len(words)-i); n > 0; n-- {
			c := strings.Join(words[i:i+n], " ")
			if _, ok := p.phrases[c]; !ok {
				continue
			}
			if _, dup := seen[c]; !dup {
				seen[c] = struct{}{}
				tags = append(tags, c)
			}
			matched = n
			break
		}
		if matched == 0 {
			unknown = append(unknown, words[i])
			i++
			continue
		}
		i += matched
	}
	return tags, unknown
}
