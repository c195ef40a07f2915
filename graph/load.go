package graph

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxLineSize bounds a single edge-list line.
const maxLineSize = 1 << 20

// Load reads an edge list from r and builds the graph.
func Load(r io.Reader) (*Graph, error) {
	b := NewBuilder()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || text[0] == '%' {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, errors.Newf("graph: line %d: expected two vertex ids, got %q", line, text)
		}
		u, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "graph: line %d", line)
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "graph: line %d", line)
		}
		b.AddEdge(u, v)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "graph: read edge list")
	}
	return b.Build(), nil
}

// LoadNamed loads an edge list, choosing a decompressor from the
// extension of name.
func LoadNamed(name string, r io.Reader) (*Graph, error) {
	rc, err := Decompress(name, r)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Load(rc)
}

// Decompress wraps r according to the extension of name:
// ".gz" (gzip), ".zst"/".zstd" (zstd), ".lz4" (lz4 frame). Any other
// name is passed through unchanged.
func Decompress(name string, r io.Reader) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "graph: gzip")
		}
		return zr, nil
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "graph: zstd")
		}
		return dec.IOReadCloser(), nil
	case strings.HasSuffix(name, ".lz4"):
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}
