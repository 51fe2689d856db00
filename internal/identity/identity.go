// Package identity allocates integer identifiers for registry entities.
package identity

// Identifiable is implemented by any stored entity exposing an integer id.
type Identifiable interface {
	ID() int
}

// GenerateID returns the smallest non-negative integer not present in existing.
// An empty or nil set yields 0.
func GenerateID(existing map[int]struct{}) int {
	id := 0
	for {
		if _, taken := existing[id]; !taken {
			return id
		}
		id++
	}
}

// IDs collects the identifiers of the provided items into a set.
func IDs[T Identifiable](items []T) map[int]struct{} {
	set := make(map[int]struct{}, len(items))
	for _, item := range items {
		set[item.ID()] = struct{}{}
	}
	return set
}

// Next returns the smallest identifier not used by any of the provided items.
func Next[T Identifiable](items []T) int {
	return GenerateID(IDs(items))
}
