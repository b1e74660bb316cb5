package zcat

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// SizeBytes is a size in bytes. In TOML it's either a number of bytes, or a
// string holding a number and an optional SI or IEC unit, like "128KiB" or
// "1 MB".
type SizeBytes uint64

// UnmarshalTOML implements toml.Unmarshaler.
func (b *SizeBytes) UnmarshalTOML(p interface{}) error {
	n, err := parseSize(p)
	if err != nil {
		return fmt.Errorf("invalid size in bytes (%v): %v", p, err)
	}
	*b = SizeBytes(n)
	return nil
}

func parseSize(p interface{}) (uint64, error) {
	switch v := p.(type) {
	case int64:
		if v < 0 {
			return 0, errors.New("value must be >= 0")
		}
		return uint64(v), nil
	case float64:
		if v < 0 || v >= math.MaxUint64 {
			return 0, fmt.Errorf("value must be in [0, %d]", uint64(math.MaxUint64))
		}
		return uint64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		return humanize.ParseBytes(v)
	}
	return 0, fmt.Errorf("unexpected value type %T", p)
}

// String formats b with IEC units.
func (b SizeBytes) String() string {
	return humanize.IBytes(uint64(b))
}
