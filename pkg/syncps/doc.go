// Package syncps implements a lightweight publish/subscribe synchronization
// engine over a named-data overlay. Peers hold a lifetime-bounded set of
// signed publications and continuously reconcile that set with their peers
// using an Invertible Bloom Lookup Table (pkg/iblt) carried inside sync
// request names. When a peer's IBLT reveals the other side is missing
// something it has, it answers with a data packet containing a subset of
// those publications.
//
// The engine is single-threaded: all exported methods are meant to be
// called from, and all callbacks fire on, the same goroutine that drives
// the configured Transport's event loop. There is no internal locking.
package syncps
