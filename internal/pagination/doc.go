// Package pagination provides lazy, forward-only paging over result sets.
//
// Every producer in wwweather (the CSV loader, the database queries) hands
// its results out through the same protocol, so consumers never need to know
// where the records come from or how many of them there are.
//
// # Pages
//
// A [Page] holds one materialised block of results and knows how to build the
// page after it. [IterPage] builds a chain of pages from any [Source]: each
// page pulls up to its size from the source and peeks one element further to
// learn whether another page exists. The peeked element is held back for the
// next page, so a source whose length is an exact multiple of the page size
// still ends on the right page.
//
//	first, err := pagination.NewIterPage(src, 100)
//	if err != nil {
//	    return err
//	}
//	var page pagination.Page[Record] = first
//	for {
//	    handle(page.Results())
//	    if !page.HasNext() {
//	        break
//	    }
//	    if page, err = page.GetNext(); err != nil {
//	        return err
//	    }
//	}
//
// The next page is computed once and memoized. Calling [Page.GetNext] on the
// last page returns [ErrNoPagesAhead].
//
// # Streams
//
// A [Stream] walks a page chain and keeps a reference to one page only, so a
// traversal uses O(page size) memory no matter how long the chain is:
//
//	s := pagination.NewStream(page)
//	for s.Next() {
//	    handle(s.Page().Results())
//	}
//	if err := s.Err(); err != nil {
//	    return err
//	}
//
// Results that were materialised at once are wrapped with [Single] so they can
// be consumed the same way.
package pagination
