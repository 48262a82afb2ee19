// Package arena stores shared engine objects behind typed, generation-checked
// handles.
package arena

import (
	"errors"
	"iter"
)

// ErrStaleHandle is returned for handles that were never issued or whose
// slot has been removed.
var ErrStaleHandle = errors.New("stale handle")

// Handle refers to a value in an Arena[T]. The zero Handle is invalid.
type Handle[T any] struct {
	index      uint32 // slot index + 1
	generation uint32
}

// Valid reports whether h was issued by an arena. It may still be stale.
func (h Handle[T]) Valid() bool { return h.index != 0 }

type slot[T any] struct {
	value      *T
	generation uint32
}

// Arena is a slot allocator. Removed slots are reused with a new generation
// so old handles fail lookup.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Insert stores v and returns its handle. A nil v is not stored and gets
// the zero Handle.
func (a *Arena[T]) Insert(v *T) Handle[T] {
	if v == nil {
		return Handle[T]{}
	}
	var i uint32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		i = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{generation: 1})
	}
	a.slots[i].value = v
	a.count++
	return Handle[T]{index: i + 1, generation: a.slots[i].generation}
}

// Get returns the value for h.
func (a *Arena[T]) Get(h Handle[T]) (*T, error) {
	s, err := a.slot(h)
	if err != nil {
		return nil, err
	}
	return s.value, nil
}

// Remove deletes the value for h and returns it.
func (a *Arena[T]) Remove(h Handle[T]) (*T, error) {
	s, err := a.slot(h)
	if err != nil {
		return nil, err
	}
	v := s.value
	s.value = nil
	s.generation++
	a.free = append(a.free, h.index-1)
	a.count--
	return v, nil
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int { return a.count }

// All yields live handles and values in slot order.
func (a *Arena[T]) All() iter.Seq2[Handle[T], *T] {
	return func(yield func(Handle[T], *T) bool) {
		for i := range a.slots {
			s := &a.slots[i]
			if s.value == nil {
				continue
			}
			if !yield(Handle[T]{index: uint32(i) + 1, generation: s.generation}, s.value) {
				return
			}
		}
	}
}

func (a *Arena[T]) slot(h Handle[T]) (*slot[T], error) {
	if h.index == 0 || int(h.index) > len(a.slots) {
		return nil, ErrStaleHandle
	}
	s := &a.slots[h.index-1]
	if s.value == nil || s.generation != h.generation {
		return nil, ErrStaleHandle
	}
	return s, nil
}
