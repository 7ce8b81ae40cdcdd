// CourseRank - Hybrid Course Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/courserank

package corpus

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer turns free text into index terms.
//
// Text is case folded and split on every rune that is neither a letter nor
// a digit. Tokens shorter than MinLength runes and stop words are dropped.
type Tokenizer struct {
	MinLength int
	stopWords map[string]struct{}
}

// NewTokenizer creates a tokenizer using the English stop-word list.
// minLength values below 1 are treated as 1.
func NewTokenizer(minLength int) *Tokenizer {
	if minLength < 1 {
		minLength = 1
	}
	stop := make(map[string]struct{}, len(englishStopWords))
	for _, w := range englishStopWords {
		stop[w] = struct{}{}
	}
	return &Tokenizer{MinLength: minLength, stopWords: stop}
}

// Tokenize returns the terms of text in order of appearance, duplicates kept.
func (t *Tokenizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < t.MinLength {
			continue
		}
		if _, stop := t.stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopWord reports whether term is on the stop-word list.
func (t *Tokenizer) IsStopWord(term string) bool {
	_, ok := t.stopWords[strings.ToLower(term)]
	return ok
}
