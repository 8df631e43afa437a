package converter

import "container/list"

// Cursor iterates a container front to back.
type Cursor[T any] interface {
	Next() (T, bool)
}

// Container is the only capability array converters need from a local
// collection: forward iteration and tail insertion.
type Container[T any] interface {
	Cursor() Cursor[T]
	PushBack(v T)
}

type sliceContainer[T any] struct {
	s *[]T
}

// SliceOf adapts a slice. PushBack appends to *s.
func SliceOf[T any](s *[]T) Container[T] {
	return sliceContainer[T]{s: s}
}

func (c sliceContainer[T]) Cursor() Cursor[T] {
	return &sliceCursor[T]{s: *c.s}
}

func (c sliceContainer[T]) PushBack(v T) {
	*c.s = append(*c.s, v)
}

type sliceCursor[T any] struct {
	s []T
	i int
}

func (c *sliceCursor[T]) Next() (T, bool) {
	if c.i >= len(c.s) {
		var zero T
		return zero, false
	}
	v := c.s[c.i]
	c.i++
	return v, true
}

type listContainer[T any] struct {
	l *list.List
}

// ListOf adapts a linked list whose element values all hold a T.
func ListOf[T any](l *list.List) Container[T] {
	return listContainer[T]{l: l}
}

func (c listContainer[T]) Cursor() Cursor[T] {
	return &listCursor[T]{e: c.l.Front()}
}

func (c listContainer[T]) PushBack(v T) {
	c.l.PushBack(v)
}

type listCursor[T any] struct {
	e *list.Element
}

func (c *listCursor[T]) Next() (T, bool) {
	if c.e == nil {
		var zero T
		return zero, false
	}
	v := c.e.Value.(T)
	c.e = c.e.Next()
	return v, true
}
