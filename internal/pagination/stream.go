package pagination

// Stream is a forward-only cursor over a page chain.
//
// It holds a reference to the current page only. The following page is
// requested when Next is called again, after the caller is done with the
// current one. A Stream is single pass and cannot be restarted.
type Stream[T any] struct {
	first Page[T]
	page  Page[T]
	err   error
}

// NewStream returns a Stream starting at first. A nil first page gives a
// stream that ends immediately.
func NewStream[T any](first Page[T]) *Stream[T] {
	return &Stream[T]{first: first}
}

// Next advances to the next page and reports whether there is one.
func (s *Stream[T]) Next() bool {
	if s.err != nil {
		return false
	}

	if s.first != nil {
		s.page, s.first = s.first, nil
		return true
	}

	prev := s.page
	s.page = nil
	if prev == nil || !prev.HasNext() {
		return false
	}

	next, err := prev.GetNext()
	if err != nil {
		s.err = err
		return false
	}
	s.page = next
	return true
}

// Page returns the page reached by the last successful call to Next.
func (s *Stream[T]) Page() Page[T] {
	return s.page
}

// Err returns the error that stopped the stream, if any.
func (s *Stream[T]) Err() error {
	return s.err
}

// ForEach calls fn with every page of the chain starting at first.
// It stops at the first error returned by fn or by the chain.
func ForEach[T any](first Page[T], fn func(Page[T]) error) error {
	s := NewStream(first)
	for s.Next() {
		if err := fn(s.Page()); err != nil {
			return err
		}
	}
	return s.Err()
}

// Collect materialises every page of the chain into one slice.
func Collect[T any](first Page[T]) ([]T, error) {
	var out []T
	err := ForEach(first, func(p Page[T]) error {
		out = append(out, p.Results()...)
		return nil
	})
	return out, err
}

// Flatten turns a page chain back into an element Source. Pages are built
// only when the previous one has been read through.
func Flatten[T any](first Page[T]) Source[T] {
	s := NewStream(first)
	var block []T
	return SourceFunc[T](func() (T, bool, error) {
		for len(block) == 0 {
			if !s.Next() {
				var zero T
				return zero, false, s.Err()
			}
			block = s.Page().Results()
		}
		v := block[0]
		block = block[1:]
		return v, true, nil
	})
}
