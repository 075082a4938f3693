package reconcile

import (
	"sort"
)

// Diff compares two keyed states and returns one result per key present in
// either, sorted by key.
func Diff[T any](adapter Adapter[T], before, after map[string]T) []Result {
	unionKeys := buildUnion(before, after)

	results := make([]Result, 0, len(unionKeys))
	for key := range unionKeys {
		results = append(results, buildResult(key, before, after, adapter))
	}

	// Sort results by key for deterministic output
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})

	return results
}

// buildUnion creates a union of the keys of both states.
func buildUnion[T any](before, after map[string]T) map[string]struct{} {
	union := make(map[string]struct{}, len(before)+len(after))
	for key := range before {
		union[key] = struct{}{}
	}
	for key := range after {
		union[key] = struct{}{}
	}
	return union
}

// buildResult creates a Result for a single key.
func buildResult[T any](key string, before, after map[string]T, adapter Adapter[T]) Result {
	b, beforePresent := before[key]
	a, afterPresent := after[key]

	result := Result{
		ID:            key,
		BeforePresent: beforePresent,
		AfterPresent:  afterPresent,
		Mismatch:      []string{},
	}

	if beforePresent || afterPresent {
		result.Name = adapter.ResolveName(b, beforePresent, a, afterPresent)
	}

	// Compare fields if both present
	if beforePresent && afterPresent {
		if mismatch := adapter.CompareFields(b, a); len(mismatch) > 0 {
			result.Mismatch = mismatch
		}
	}

	return result
}
