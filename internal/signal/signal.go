// Package signal collects typed facts about a target project and task
// request. The collected Signals drive trigger matching in the engine.
package signal

import "sort"

// Signals is the fact set for one resolution call. It is constructed
// once by the Collector and immutable afterwards; resolution calls never
// share a Signals value.
type Signals struct {
	// Markers maps marker names to their observed value. A marker that
	// could not be checked (unreadable path) is present with value false.
	Markers map[string]bool

	// Keywords is the deduplicated set of normalized tokens extracted
	// from the task request.
	Keywords map[string]bool

	// Mode is the caller-supplied explicit mode, empty if none. It
	// takes precedence over anything inferred from keywords.
	Mode string
}

// HasMarker reports whether the named marker was observed true.
func (s *Signals) HasMarker(name string) bool {
	return s.Markers[name]
}

// HasKeyword reports whether the normalized token was present in the
// task request.
func (s *Signals) HasKeyword(token string) bool {
	return s.Keywords[token]
}

// ActiveMarkers returns the names of all true markers, sorted.
func (s *Signals) ActiveMarkers() []string {
	var names []string
	for name, present := range s.Markers {
		if present {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// KeywordList returns all keywords, sorted.
func (s *Signals) KeywordList() []string {
	tokens := make([]string, 0, len(s.Keywords))
	for token := range s.Keywords {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
