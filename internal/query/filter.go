// Package query provides the predicate composition and ordering used by the
// registry when answering meeting and contact lookups.
package query

import "slices"

// Predicate reports whether an item should be kept.
type Predicate[T any] func(T) bool

// Comparator orders two items, returning a negative number when a sorts before b.
type Comparator[T any] func(a, b T) int

// Always returns a predicate that accepts every item. It fills the unused slot
// when a lookup only needs one condition.
func Always[T any]() Predicate[T] {
	return func(T) bool { return true }
}

// And combines predicates so that an item must satisfy all of them. Nil
// predicates are ignored.
func And[T any](predicates ...Predicate[T]) Predicate[T] {
	return func(item T) bool {
		for _, p := range predicates {
			if p != nil && !p(item) {
				return false
			}
		}
		return true
	}
}

// Filter keeps the items accepted by both a and b and orders the result with
// cmp. The sort is stable, so items comparing equal keep their input order.
// A nil predicate accepts everything and a nil comparator preserves input order.
func Filter[T any](items []T, a, b Predicate[T], cmp Comparator[T]) []T {
	keep := And(a, b)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// Select keeps the items accepted by predicate in input order.
func Select[T any](items []T, predicate Predicate[T]) []T {
	return Filter(items, predicate, nil, nil)
}

// First returns the first item accepted by predicate.
func First[T any](items []T, predicate Predicate[T]) (T, int, bool) {
	for i, item := range items {
		if predicate == nil || predicate(item) {
			return item, i, true
		}
	}
	var zero T
	return zero, -1, false
}
