package gms

import "iter"

// Seq is the result of a list operation.
//
// It is backed by a response that has already been read in full: a single
// request with a large page size is issued and the items are then iterated
// locally. Nothing is streamed from the server.
type Seq[T any] struct {
	items []T
	total int
}

func newSeq[T any](items []T, total int) *Seq[T] {
	return &Seq[T]{items: items, total: total}
}

// All yields the items in server order.
func (s *Seq[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s == nil {
			return
		}
		for _, item := range s.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Slice returns a copy of the items.
func (s *Seq[T]) Slice() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len is the number of items actually returned.
func (s *Seq[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Total is the count the server reported, which may differ from Len.
func (s *Seq[T]) Total() int {
	if s == nil {
		return 0
	}
	return s.total
}
