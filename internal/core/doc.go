// Package core runs the weather records operations on top of a storage
// backend and the CSV reader and writer.
//
// Every operation opens exactly one repository session through
// [storage.WithRepository] and releases it on every exit path. Results move
// through the operation as a page chain, so memory use is bounded by the
// page size rather than the size of the data set:
//
//   - [Import] reads a CSV feed in blocks and stores each block.
//   - [Export] writes every stored record to a CSV feed.
//   - [Search] streams matching records to a display callback and,
//     optionally, to a CSV feed.
//   - [FindOne] returns the first match of a search.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code for support reference:
//
//   - VAL001: validation
//   - DUP001, UNS001, IMP001: import conflicts and throttling
//   - DB001-DB005: database faults
//   - CSV001-CSV006: feed errors
//   - PAG001-PAG002: pagination
//   - REQ001-REQ002: cancellation and timeouts
//
// # Concurrency
//
// Operations are safe to run concurrently as long as each has its own
// session. [ImportLimiter] caps the number of imports a server runs at once.
package core
