package pagination

// Source is a lazy, forward-only sequence of elements.
//
// Next returns the next element and true, or the zero value and false once
// the sequence is exhausted. A non-nil error ends the sequence.
type Source[T any] interface {
	Next() (T, bool, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func() (T, bool, error)

// Next implements Source.
func (f SourceFunc[T]) Next() (T, bool, error) {
	return f()
}

// FromSlice returns a Source yielding the items in order.
func FromSlice[T any](items []T) Source[T] {
	i := 0
	return SourceFunc[T](func() (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		item := items[i]
		i++
		return item, true, nil
	})
}

// Skip returns a Source that drops the first n elements of src.
// Elements are discarded on the first pull, not when Skip is called.
func Skip[T any](src Source[T], n int) Source[T] {
	if n <= 0 {
		return src
	}
	skipped := false
	return SourceFunc[T](func() (T, bool, error) {
		if !skipped {
			skipped = true
			for i := 0; i < n; i++ {
				v, ok, err := src.Next()
				if err != nil || !ok {
					return v, ok, err
				}
			}
		}
		return src.Next()
	})
}

// Limit returns a Source that yields at most n elements of src.
// A non-positive n yields nothing.
func Limit[T any](src Source[T], n int) Source[T] {
	left := n
	return SourceFunc[T](func() (T, bool, error) {
		if left <= 0 {
			var zero T
			return zero, false, nil
		}
		v, ok, err := src.Next()
		if ok && err == nil {
			left--
		}
		return v, ok, err
	})
}

// Slice skips offset elements of src and yields at most limit of the rest.
// A limit of zero means no limit.
func Slice[T any](src Source[T], offset, limit int) Source[T] {
	src = Skip(src, offset)
	if limit > 0 {
		src = Limit(src, limit)
	}
	return src
}

// Drain reads src to the end.
func Drain[T any](src Source[T]) ([]T, error) {
	var out []T
	for {
		v, ok, err := src.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// pushback is a Source with room for one element in front of the remaining
// sequence. It is either exhausted, or it has a pending element followed by
// whatever src still holds.
type pushback[T any] struct {
	src     Source[T]
	pending T
	held    bool
	done    bool
}

func newPushback[T any](src Source[T]) *pushback[T] {
	if pb, ok := src.(*pushback[T]); ok {
		return pb
	}
	return &pushback[T]{src: src}
}

func (p *pushback[T]) Next() (T, bool, error) {
	var zero T
	if p.held {
		v := p.pending
		p.pending, p.held = zero, false
		return v, true, nil
	}
	if p.done {
		return zero, false, nil
	}
	v, ok, err := p.src.Next()
	if err != nil || !ok {
		p.done = true
		p.src = nil
	}
	return v, ok, err
}

// unread puts v back in front of the sequence. Only one element may be held.
func (p *pushback[T]) unread(v T) {
	if p.held {
		panic("pagination: pushback already holds an element")
	}
	p.pending, p.held = v, true
}
