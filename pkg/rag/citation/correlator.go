package citation

import (
	"casechat-be/pkg/store"
)

// Correlator binds retrieved passages to stable citation handles within one
// answer. Deterministic: identical input yields identical ordinals.
type Correlator struct{}

// NewCorrelator creates a new citation correlator
func NewCorrelator() *Correlator {
	return &Correlator{}
}

// Correlate assigns ordinals 1..N in input order (already relevance-sorted).
// Ordinals are not deduplicated across documents: each passage occurrence
// gets its own handle, since one document can ground different parts of the
// same answer.
func (c *Correlator) Correlate(passages []store.Passage) []store.Citation {
	citations := make([]store.Citation, len(passages))
	for i, p := range passages {
		citations[i] = store.Citation{
			Ordinal: i + 1,
			Passage: p,
		}
	}
	return citations
}
