package pagination

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPagesAhead is returned by GetNext on the last page of a chain.
	ErrNoPagesAhead = errors.New("there are no pages ahead")

	// ErrNotSupported is returned by navigation a page type does not implement.
	ErrNotSupported = errors.New("page navigation not supported")

	// ErrInvalidPageSize is returned when a page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// Page is one block of a larger result set plus the link to the next block.
type Page[T any] interface {
	// Number is the 0-based position of the page in its chain.
	Number() int

	// Results is the block held by the page. It must not be modified.
	Results() []T

	// HasNext reports whether GetNext will return a page.
	// Once false it stays false.
	HasNext() bool

	// GetNext returns the following page. Repeated calls return the same page.
	GetNext() (Page[T], error)
}

// Navigator is a Page that can also move backwards or report the chain length.
type Navigator[T any] interface {
	Page[T]
	HasPrev() (bool, error)
	GetPrev() (Page[T], error)
	PagesNum() (int, error)
}

// IterPage is a Page built lazily from a Source.
type IterPage[T any] struct {
	number  int
	size    int
	results []T
	hasNext bool

	// rest feeds the next page. It is dropped once the next page is built.
	rest *pushback[T]

	computed bool
	next     Page[T]
	nextErr  error
}

// NewIterPage builds the first page (number 0) of a chain over src.
func NewIterPage[T any](src Source[T], size int) (*IterPage[T], error) {
	return NewIterPageAt(src, size, 0)
}

// NewIterPageAt builds a page numbered number over src.
//
// It pulls up to size elements and then one more to decide HasNext. The extra
// element is not lost: it becomes the first element of the next page.
func NewIterPageAt[T any](src Source[T], size, number int) (*IterPage[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	if number < 0 {
		return nil, fmt.Errorf("page number must be non-negative: got %d", number)
	}

	rest := newPushback(src)
	results := make([]T, 0, min(size, 1024))

	for len(results) < size {
		v, ok, err := rest.Next()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", number, err)
		}
		if !ok {
			break
		}
		results = append(results, v)
	}

	p := &IterPage[T]{
		number:  number,
		size:    size,
		results: results,
	}

	if len(results) == size {
		v, ok, err := rest.Next()
		if err != nil {
			return nil, fmt.Errorf("page %d: lookahead: %w", number, err)
		}
		if ok {
			rest.unread(v)
			p.hasNext = true
			p.rest = rest
		}
	}

	return p, nil
}

// Number implements Page.
func (p *IterPage[T]) Number() int { return p.number }

// Results implements Page.
func (p *IterPage[T]) Results() []T { return p.results }

// HasNext implements Page.
func (p *IterPage[T]) HasNext() bool { return p.hasNext }

// GetNext implements Page. The next page, or the error building it, is
// computed on the first call and returned by every later call.
func (p *IterPage[T]) GetNext() (Page[T], error) {
	if !p.hasNext {
		return nil, ErrNoPagesAhead
	}
	if !p.computed {
		next, err := NewIterPageAt[T](p.rest, p.size, p.number+1)
		if err != nil {
			p.nextErr = err
		} else {
			p.next = next
		}
		p.rest = nil
		p.computed = true
	}
	return p.next, p.nextErr
}

// HasPrev implements Navigator. Iterator-backed chains only move forward.
func (p *IterPage[T]) HasPrev() (bool, error) { return false, ErrNotSupported }

// GetPrev implements Navigator.
func (p *IterPage[T]) GetPrev() (Page[T], error) { return nil, ErrNotSupported }

// PagesNum implements Navigator.
func (p *IterPage[T]) PagesNum() (int, error) { return 0, ErrNotSupported }

// Paginate builds a page chain over src. A pageSize of zero reads src to the
// end and returns everything as a single page.
func Paginate[T any](src Source[T], pageSize int) (Page[T], error) {
	if pageSize == 0 {
		all, err := Drain(src)
		if err != nil {
			return nil, err
		}
		return Single(all), nil
	}
	page, err := NewIterPage(src, pageSize)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Single wraps already materialised results into a one-page chain.
func Single[T any](results []T) Page[T] {
	return singlePage[T]{results: results}
}

type singlePage[T any] struct {
	results []T
}

func (s singlePage[T]) Number() int               { return 0 }
func (s singlePage[T]) Results() []T              { return s.results }
func (s singlePage[T]) HasNext() bool             { return false }
func (s singlePage[T]) GetNext() (Page[T], error) { return nil, ErrNoPagesAhead }
