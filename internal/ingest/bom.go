package ingest

import (
	"bufio"
	"io"
)

const bom = "\uFEFF"

// newBOMSkipper drops a leading UTF-8 byte order mark.
func newBOMSkipper(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		_, _ = br.Discard(len(bom))
	}
	return br
}
