// Package search dims scene items whose label does not contain the search
// term. It only writes a presentation channel.
package search

import "strings"

// DimOpacity is applied to non-matching items.
const DimOpacity = 0.2

// Item is a scene element with a searchable label.
type Item interface {
	SearchLabel() string
	SetSearchOpacity(o float64)
}

// Filter holds the current search term.
type Filter struct {
	term string
}

// Set replaces the term. Surrounding space is ignored.
func (f *Filter) Set(term string) {
	f.term = strings.ToLower(strings.TrimSpace(term))
}

// Term returns the normalized term.
func (f *Filter) Term() string { return f.term }

// Active reports whether a term is set.
func (f *Filter) Active() bool { return f.term != "" }

// Match reports whether label contains the term, ignoring case.
func (f *Filter) Match(label string) bool {
	return f.term == "" || strings.Contains(strings.ToLower(label), f.term)
}

// Opacity is the search channel for label.
func (f *Filter) Opacity(label string) float64 {
	if f.Match(label) {
		return 1
	}
	return DimOpacity
}

// Apply writes the search channel of every item.
func Apply[T Item](f *Filter, items []T) {
	for _, it := range items {
		it.SetSearchOpacity(f.Opacity(it.SearchLabel()))
	}
}

// Matches returns the labels that match, in input order.
func (f *Filter) Matches(labels []string) []string {
	var out []string
	for _, l := range labels {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}
