// Package ledger tracks which vertex copies each server holds.
//
// Every server keeps three roaring bitmaps, one per replica role. A vertex
// has at most one record per server, so the role of a resident is the
// bitmap it appears in. A server's load is the number of PRIMARY plus
// VIRTUAL_PRIMARY records; NON_PRIMARY caches are free.
//
// The Ledger orders servers by (load, id) ascending in an indexed heap
// that is updated inside every load-changing call, so least-loaded
// selection never observes a stale order.
package ledger
