package zcat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/zcat/pkg/linereader"
	"github.com/AdRoll/zcat/pkg/sniff"
	"github.com/AdRoll/zcat/pkg/zip_agnostic"
)

type streamState int

const (
	stateOpen     streamState = iota // source acquired, format unknown
	stateResolved                    // format detected, decoder ready (or failed)
	stateClosed
)

// A Stream reads the lines of a source, decoding it if it's compressed.
//
// The format of the source is detected on the first call to NextLine,
// NextBytes or Format, and never changes after that.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	name string
	cfg  *Config

	raw   *countingReader
	dec   zip_agnostic.Decoder
	lines *linereader.Reader

	state  streamState
	format sniff.Format
	err    error // sticky *FormatError or *DecodeError
	begin  time.Time
	stats  Stats
}

// Open opens the file at path, with the default configuration.
func Open(path string) (*Stream, error) {
	return OpenWithConfig(path, nil)
}

// OpenWithConfig opens the file at path. A nil cfg is the same as
// DefaultConfig(). The returned error, if any, is an *OpenError.
func OpenWithConfig(path string, cfg *Config) (*Stream, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else if !cfg.filled {
		if err := cfg.fillDefaults(); err != nil {
			return nil, fmt.Errorf("zcat: invalid configuration: %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	fi, err := f.Stat()
	if err == nil && fi.IsDir() {
		err = errIsDir
	}
	if err != nil {
		f.Close()
		return nil, &OpenError{Path: path, Err: err}
	}

	return newStream(path, f, cfg), nil
}

// NewStream returns a Stream reading from rc. name identifies the stream in
// errors and logs. Closing the Stream closes rc. A nil cfg is the same as
// DefaultConfig().
func NewStream(name string, rc io.ReadCloser, cfg *Config) (*Stream, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else if !cfg.filled {
		if err := cfg.fillDefaults(); err != nil {
			return nil, fmt.Errorf("zcat: invalid configuration: %v", err)
		}
	}
	return newStream(name, rc, cfg), nil
}

func newStream(name string, rc io.ReadCloser, cfg *Config) *Stream {
	s := &Stream{
		name:  name,
		cfg:   cfg,
		raw:   &countingReader{r: rc},
		state: stateOpen,
		begin: time.Now(),
	}
	log.WithFields(log.Fields{"f": "zcat.Open", "fn": name}).Debug("stream opened")
	return s
}

// Name returns the name of the stream, the file path for streams created
// with Open.
func (s *Stream) Name() string { return s.name }

// IsOpen reports whether s hasn't been closed yet.
func (s *Stream) IsOpen() bool { return s.state != stateClosed }

// Format returns the format of the stream, detecting it if it's not known
// yet.
func (s *Stream) Format() (sniff.Format, error) {
	if s.state == stateClosed {
		return s.format, ErrClosed
	}
	err := s.resolve()
	return s.format, err
}

// resolve detects the stream format and creates the decoder, the first time
// it's called. Later calls return the sticky error, if any.
func (s *Stream) resolve() error {
	if s.state != stateOpen {
		return s.err
	}
	s.state = stateResolved

	ctx := log.WithFields(log.Fields{"f": "Stream.resolve", "fn": s.name})

	chunk := int(s.cfg.Stream.ChunkSize)
	br := bufio.NewReaderSize(s.raw, chunk)

	f, err := sniff.Peek(br)
	if err != nil {
		s.err = &FormatError{Name: s.name, Format: sniff.PassThrough, Err: err}
		ctx.WithError(err).Debug("can't detect format")
		return s.err
	}
	if s.cfg.Disabled(f) {
		ctx.WithField("format", f).Debug("format disabled, reading as is")
		f = sniff.PassThrough
	}
	s.format = f

	opts := &zip_agnostic.Options{ZstdMaxWindow: uint64(s.cfg.Stream.ZstdMaxWindow)}
	dec, err := zip_agnostic.NewDecoder(f, br, opts)
	if err != nil {
		s.err = &FormatError{Name: s.name, Format: f, Err: err}
		ctx.WithError(err).Debug("can't create decoder")
		return s.err
	}

	s.dec = dec
	s.lines = linereader.New(dec, chunk)
	s.lines.SetMaxLineLength(int(s.cfg.Stream.MaxLineLength))

	ctx.WithField("format", f).Debug("format resolved")
	return nil
}

// NextLine returns the next line of the stream, without its '\n'
// terminator. The last line is returned even if it's not terminated.
//
// NextLine returns io.EOF after the last line and on all subsequent calls.
// If the stream can't be read, it returns a *FormatError or a *DecodeError,
// and keeps returning it. ErrClosed is returned after Close.
func (s *Stream) NextLine() (string, error) {
	line, err := s.NextBytes()
	if err != nil {
		return "", err
	}
	return string(line), nil
}

// NextBytes is like NextLine but returns the line as a byte slice, only
// valid until the next call to NextBytes or NextLine.
func (s *Stream) NextBytes() ([]byte, error) {
	if s.state == stateClosed {
		return nil, ErrClosed
	}
	if err := s.resolve(); err != nil {
		return nil, err
	}

	line, err := s.lines.Next()
	switch err {
	case nil:
		return line, nil
	case io.EOF:
		return nil, io.EOF
	}

	s.err = &DecodeError{
		Name:   s.name,
		Format: s.format,
		Line:   s.lines.Lines(),
		Offset: s.lines.Bytes(),
		Err:    err,
	}
	return nil, s.err
}

// Stats returns the statistics of the stream so far.
func (s *Stream) Stats() Stats {
	if s.state == stateClosed {
		return s.stats
	}

	st := Stats{
		Format:   s.format,
		Resolved: s.state == stateResolved,
		RawBytes: s.raw.n,
		Duration: time.Since(s.begin),
	}
	if s.lines != nil {
		st.Lines = s.lines.Lines()
		st.DecodedBytes = s.lines.Bytes()
	}
	return st
}

// Close releases the decoder and closes the underlying source. Close can be
// called in any state, only the first call has an effect; subsequent calls
// return nil.
func (s *Stream) Close() error {
	if s.state == stateClosed {
		return nil
	}
	s.stats = s.Stats()
	s.state = stateClosed

	ctx := log.WithFields(log.Fields{"f": "Stream.Close", "fn": s.name})

	var err error
	if s.dec != nil {
		err = s.dec.Close()
	}
	if cerr := s.raw.Close(); cerr != nil && err == nil {
		err = cerr
	}
	s.dec, s.lines = nil, nil

	var errKind string
	switch s.err.(type) {
	case *FormatError:
		errKind = "format"
	case *DecodeError:
		errKind = "decode"
	}
	s.stats.report(s.cfg.MetricsClient(), errKind)

	if err != nil {
		ctx.WithError(err).Warn("error closing stream")
		return fmt.Errorf("zcat: close %s: %w", s.name, err)
	}
	ctx.WithFields(s.stats.logFields()).Debug("stream closed")
	return nil
}
