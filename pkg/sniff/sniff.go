package sniff

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

// A Descriptor associates a signature to the format it identifies.
type Descriptor struct {
	Signature []byte
	Format    Format
}

// A Table is a list of descriptors sorted by decreasing signature length.
// Use NewTable to build one.
type Table struct {
	descs  []Descriptor
	maxlen int
}

// NewTable returns a Table matching descs. Descriptors are checked longest
// signature first; descriptors with signatures of the same length keep the
// order in which they're given. Empty signatures are not allowed.
func NewTable(descs ...Descriptor) (*Table, error) {
	t := &Table{descs: make([]Descriptor, len(descs))}
	copy(t.descs, descs)

	for i, d := range t.descs {
		if len(d.Signature) == 0 {
			return nil, fmt.Errorf("sniff: descriptor %d (%s) has an empty signature", i, d.Format)
		}
		if len(d.Signature) > t.maxlen {
			t.maxlen = len(d.Signature)
		}
	}

	sort.SliceStable(t.descs, func(i, j int) bool {
		return len(t.descs[i].Signature) > len(t.descs[j].Signature)
	})
	return t, nil
}

func mustTable(descs ...Descriptor) *Table {
	t, err := NewTable(descs...)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable holds the signatures of all supported compressed formats.
var DefaultTable = mustTable(
	Descriptor{Signature: []byte{0x1f, 0x8b}, Format: Gzip},
	Descriptor{Signature: []byte("BZh"), Format: Bzip2},
	Descriptor{Signature: []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, Format: Xz},
	// lzma_alone has no magic number. 5D is the properties byte written by
	// every common encoder (lc=3, lp=0, pb=2), followed by the little-endian
	// dictionary size whose two low bytes are 0 for any multiple of 64KiB.
	Descriptor{Signature: []byte{0x5d, 0x00, 0x00}, Format: Lzma},
	Descriptor{Signature: []byte{0x28, 0xb5, 0x2f, 0xfd}, Format: Zstd},
	Descriptor{Signature: []byte{0x04, 0x22, 0x4d, 0x18}, Format: Lz4},
)

// MaxSignatureLen is the length of the longest signature in DefaultTable.
var MaxSignatureLen = DefaultTable.MaxLen()

// MaxLen returns the length of the longest signature in t, that is the
// number of bytes Detect needs to take a decision.
func (t *Table) MaxLen() int { return t.maxlen }

// Descriptors returns the descriptors of t, in matching order.
func (t *Table) Descriptors() []Descriptor {
	descs := make([]Descriptor, len(t.descs))
	copy(descs, t.descs)
	return descs
}

// Detect returns the format of the first descriptor whose signature is a
// prefix of prefix, or PassThrough if none matches. A prefix shorter than a
// signature never matches it.
func (t *Table) Detect(prefix []byte) Format {
	for _, d := range t.descs {
		if bytes.HasPrefix(prefix, d.Signature) {
			return d.Format
		}
	}
	return PassThrough
}

// Peek detects the format of the data buffered in br, without consuming it.
// The buffer of br must be at least t.MaxLen() bytes. Reaching the end of
// the stream before t.MaxLen() bytes isn't an error, the detection is then
// performed on the available bytes.
func (t *Table) Peek(br *bufio.Reader) (Format, error) {
	if br.Size() < t.maxlen {
		return PassThrough, fmt.Errorf("sniff: reader buffer too small (%d < %d)", br.Size(), t.maxlen)
	}

	buf, err := br.Peek(t.maxlen)
	if err != nil && !errors.Is(err, io.EOF) {
		return PassThrough, fmt.Errorf("sniff: can't peek: %w", err)
	}
	return t.Detect(buf), nil
}

// Detect returns the format detected by DefaultTable.
func Detect(prefix []byte) Format {
	return DefaultTable.Detect(prefix)
}

// Peek detects the format of br with DefaultTable, without consuming any byte.
func Peek(br *bufio.Reader) (Format, error) {
	return DefaultTable.Peek(br)
}
