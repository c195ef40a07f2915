// Package mmap maps edge-list files read-only into memory.
//
//	m, err := mmap.Open("facebook_combined.txt")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	g, err := graph.Load(bytes.NewReader(m.Bytes()))
//
// Unix systems use mmap(2) and madvise(2). Other platforms read the file
// into memory and ignore access hints.
package mmap
