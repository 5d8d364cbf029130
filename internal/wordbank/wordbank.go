package wordbank

import (
	"sort"
	"strings"
)

// Bank is the static category -> word-list lookup. The data never changes at
// runtime, so a Bank is safe to share across sessions.
type Bank struct {
	categories map[string][]string
	names      []string
}

func New() *Bank {
	names := make([]string, 0, len(wordCategories))
	for name := range wordCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Bank{categories: wordCategories, names: names}
}

// Categories returns every category name in a stable order.
func (b *Bank) Categories() []string {
	return b.names
}

// Words returns the word list for a category, or false if the category is
// unknown. Category matching is case-insensitive.
func (b *Bank) Words(category string) ([]string, bool) {
	for name, words := range b.categories {
		if strings.EqualFold(name, category) {
			return words, true
		}
	}
	return nil, false
}

// Contains reports whether word is part of the named category.
func (b *Bank) Contains(category, word string) bool {
	words, ok := b.Words(category)
	if !ok {
		return false
	}
	for _, w := range words {
		if strings.EqualFold(w, word) {
			return true
		}
	}
	return false
}
