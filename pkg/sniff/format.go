package sniff

import (
	"fmt"
	"strings"
)

// Format identifies the encoding of a byte stream.
type Format int

// List of formats recognized by this package.
const (
	PassThrough Format = iota
	Gzip
	Bzip2
	Xz
	Lzma
	Zstd
	Lz4
)

var formatNames = [...]string{
	PassThrough: "none",
	Gzip:        "gzip",
	Bzip2:       "bzip2",
	Xz:          "xz",
	Lzma:        "lzma",
	Zstd:        "zstd",
	Lz4:         "lz4",
}

// Formats returns all known formats, PassThrough included.
func Formats() []Format {
	return []Format{PassThrough, Gzip, Bzip2, Xz, Lzma, Zstd, Lz4}
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// IsCompressed reports whether f designates a compressed format.
func (f Format) IsCompressed() bool {
	return f != PassThrough
}

// ParseFormat returns the format whose name is s. Matching is case
// insensitive. "passthrough" and "" are accepted as synonyms of "none", as
// well as a few common file extensions ("gz", "bz2", "zst").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "passthrough":
		return PassThrough, nil
	case "gzip", "gz":
		return Gzip, nil
	case "bzip2", "bz2":
		return Bzip2, nil
	case "xz":
		return Xz, nil
	case "lzma":
		return Lzma, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return Lz4, nil
	}
	return PassThrough, fmt.Errorf("sniff: unknown format %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
