package zcat

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/zcat/pkg/sniff"
)

// Stats holds the statistics of a Stream.
type Stats struct {
	Format       sniff.Format
	Resolved     bool  // Resolved is true once the format has been detected
	Lines        int64 // Lines is the number of lines read
	RawBytes     int64 // RawBytes is the number of bytes read from the source
	DecodedBytes int64 // DecodedBytes is the number of decoded bytes consumed as lines
	Duration     time.Duration
}

// Ratio returns the compression ratio, decoded bytes over raw bytes, or 0
// if nothing has been read.
func (s Stats) Ratio() float64 {
	if s.RawBytes == 0 {
		return 0
	}
	return float64(s.DecodedBytes) / float64(s.RawBytes)
}

func (s Stats) formatTag() string {
	if !s.Resolved {
		return "format:unresolved"
	}
	return "format:" + s.Format.String()
}

// report pushes stats to the metrics client. errKind is the kind of the
// terminal error the stream had, if any.
func (s Stats) report(m MetricsClient, errKind string) {
	tags := []string{s.formatTag()}

	m.DeltaCountWithTags("stream.opened", 1, tags)
	m.DeltaCountWithTags("stream.lines", s.Lines, tags)
	m.DeltaCountWithTags("stream.bytes.raw", s.RawBytes, tags)
	m.DeltaCountWithTags("stream.bytes.decoded", s.DecodedBytes, tags)
	if s.Format.IsCompressed() && s.RawBytes > 0 {
		m.HistogramWithTags("stream.ratio", s.Ratio(), tags)
	}
	if errKind != "" {
		m.DeltaCountWithTags("stream.errors", 1, append(tags, "kind:"+errKind))
	}
	m.DurationWithTags("stream.duration", s.Duration, tags)
}

func (s Stats) logFields() log.Fields {
	return log.Fields{
		"format":  s.Format.String(),
		"lines":   s.Lines,
		"raw":     humanize.Bytes(uint64(s.RawBytes)),
		"decoded": humanize.Bytes(uint64(s.DecodedBytes)),
		"elapsed": s.Duration,
	}
}

// countingReader counts the bytes read from the raw source.
type countingReader struct {
	r io.ReadCloser
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) Close() error {
	return c.r.Close()
}
