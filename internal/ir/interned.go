package ir

// Interned is an append-only, deduplicating store (spec.md §4.1). A value
// is deduplicated against its canonical string key rather than Go's
// `comparable` constraint, because Expr/Prop variants (Fn's argument list,
// in particular) contain slices and so are not themselves comparable; a
// canonical key is the idiomatic way to hash-cons a recursive tree whose
// node shape isn't a fixed-size comparable struct.
type Interned[T any, V any] struct {
	values []V
	index  map[string]Idx[T]
}

// NewInterned creates an empty interned store.
func NewInterned[T any, V any]() *Interned[T, V] {
	return &Interned[T, V]{index: make(map[string]Idx[T])}
}

// Intern returns the handle for an existing value sharing key, or appends v
// as a new entry and returns its fresh handle. Callers must run whatever
// on-insert simplification applies *before* calling Intern, and derive key
// from the already-simplified value, so that simplified forms share
// handles (spec.md §4.1).
func (in *Interned[T, V]) Intern(key string, v V) Idx[T] {
	if idx, ok := in.index[key]; ok {
		return idx
	}
	in.values = append(in.values, v)
	idx := Idx[T](len(in.values) - 1)
	in.index[key] = idx
	return idx
}

// Get dereferences a handle. Panics on an out-of-range handle — handles
// from this store are only ever minted by Intern, so an invalid one is a
// programmer error, not user input.
func (in *Interned[T, V]) Get(i Idx[T]) V {
	return in.values[i]
}

// Len is the number of distinct interned values.
func (in *Interned[T, V]) Len() int { return len(in.values) }

// Each calls f for every (handle, value) pair in insertion order.
func (in *Interned[T, V]) Each(f func(Idx[T], V)) {
	for i, v := range in.values {
		f(Idx[T](i), v)
	}
}
