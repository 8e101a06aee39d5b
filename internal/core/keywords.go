package core

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/portuguese"
)

// extraStopwords complements the Snowball list with forms common in
// Brazilian email that it leaves out
var extraStopwords = toSet(`
é à às contudo perante pois porém porque quais qualquer quanto tanto
sim tá vai vão ser estar ter haver ir per
`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether word is a Portuguese stopword
func IsStopword(word string) bool {
	w := strings.ToLower(word)
	if portuguese.IsStopWord(w) {
		return true
	}
	_, ok := extraStopwords[w]
	return ok
}

// Stem reduces a word to its Portuguese Snowball stem
func Stem(word string) string {
	return portuguese.Stem(strings.ToLower(word), false)
}

// tokenize splits text into words with surrounding punctuation removed.
// Tokens made only of punctuation or symbols are dropped.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// RemoveStopwords drops stopwords and punctuation while keeping the remaining
// words in their original order and case
func RemoveStopwords(text string) string {
	tokens := tokenize(text)
	kept := tokens[:0]
	for _, t := range tokens {
		if !IsStopword(t) {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// TopKeywords returns the n most frequent non-stopword terms in lower case.
// Inflections sharing a stem count as one term, reported in the form first
// seen. Terms with the same frequency keep the order in which they first
// appear.
func TopKeywords(text string, n int) []string {
	if n <= 0 {
		return []string{}
	}

	counts := make(map[string]int)
	surface := make(map[string]string)
	var order []string
	for _, t := range tokenize(text) {
		term := strings.ToLower(t)
		if IsStopword(term) {
			continue
		}
		stem := Stem(term)
		if _, seen := counts[stem]; !seen {
			order = append(order, stem)
			surface[stem] = term
		}
		counts[stem]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	keywords := make([]string, 0, len(order))
	for _, stem := range order {
		keywords = append(keywords, surface[stem])
	}
	return keywords
}
