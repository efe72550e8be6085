// Package csvio reads and writes weather records as CSV.
//
// A Loader streams records out of a feed: the header row is read up front,
// every later row is parsed only when it is asked for, so a page chain
// built with Load holds at most one page and a single record of lookahead
// in memory. A Dumper writes records back out in the column order of
// Columns.
//
// Both ends support any charset known to golang.org/x/text by its WHATWG
// label, with UTF-8 as the default.
package csvio
