package zcat

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rasky/toml"

	"github.com/AdRoll/zcat/pkg/sniff"
)

// The configuration is parsed from TOML format, for example:
//
//  [stream]
//  chunksize = "256KiB"
//  maxlinelength = "1MiB"
//  disable = ["lz4"]
//
//  [metrics]
//  name = "datadog"
//
//  [metrics.config]
//  host = "127.0.0.1:8125"
//
// The [metrics.config] section depends on the backend chosen in [metrics],
// so it's captured as toml.Primitive and decoded in a second step, once the
// backend, and thus its configuration struct, is known.

const (
	defaultChunkSize = 128 * 1024
	minChunkSize     = 64
	maxChunkSize     = 1 << 30

	// largest window the zstd decoder accepts, about 3.75TB.
	maxZstdWindow = (1 << 41) + 7*(1<<38)
)

// ConfigStream specifies how streams are read.
type ConfigStream struct {
	// ChunkSize is the size of the buffer holding decoded data. It's also
	// the size of the buffer holding raw data ahead of the decoder.
	// The default value is 128KiB.
	ChunkSize SizeBytes
	// MaxLineLength makes reading a longer line fail. 0, the default,
	// means no limit.
	MaxLineLength SizeBytes
	// ZstdMaxWindow limits the memory used by the zstd decoder. 0 means
	// the decoder default.
	ZstdMaxWindow SizeBytes
	// Disable lists formats that are not decoded: files in these formats
	// are read as is.
	Disable []string
}

// ConfigMetrics specifies the metrics backend.
type ConfigMetrics struct {
	Name          string
	DecodedConfig interface{}

	Config *toml.Primitive
	desc   *MetricsDesc
}

// A Config configures how streams are opened and read. The zero value is
// not ready for use, use DefaultConfig or NewConfigFromToml.
type Config struct {
	Stream  ConfigStream
	Metrics ConfigMetrics

	metrics  MetricsClient
	disabled map[sniff.Format]bool
	filled   bool
}

// DefaultConfig returns a Config with all default values, where all formats
// are enabled and no metrics are exported.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := cfg.fillDefaults(); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{ChunkSize:%s MaxLineLength:%s ZstdMaxWindow:%s Disable:%v Metrics:%q}",
		c.Stream.ChunkSize, c.Stream.MaxLineLength, c.Stream.ZstdMaxWindow, c.Stream.Disable, c.Metrics.Name)
}

// SetMetricsClient sets the client receiving the streams statistics,
// overriding the one created from the [metrics] section.
func (c *Config) SetMetricsClient(m MetricsClient) {
	c.metrics = m
}

// MetricsClient returns the client receiving the streams statistics.
func (c *Config) MetricsClient() MetricsClient {
	if c.metrics == nil {
		return NopMetrics{}
	}
	return c.metrics
}

// Close closes the metrics client, if it implements io.Closer, so that
// buffered metrics are sent. Streams using c shouldn't be closed after that.
func (c *Config) Close() error {
	if cl, ok := c.metrics.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// Disabled reports whether format f is configured to be read as is.
func (c *Config) Disabled(f sniff.Format) bool {
	return c.disabled[f]
}

func (c *Config) fillDefaults() error {
	if c.Stream.ChunkSize == 0 {
		c.Stream.ChunkSize = defaultChunkSize
	}
	if c.Stream.ChunkSize < minChunkSize || c.Stream.ChunkSize > maxChunkSize {
		return fmt.Errorf("stream: chunksize must be between %s and %s, got %s",
			SizeBytes(minChunkSize), SizeBytes(maxChunkSize), c.Stream.ChunkSize)
	}
	if c.Stream.MaxLineLength > math.MaxInt32 {
		return fmt.Errorf("stream: maxlinelength must be at most %s, got %s", SizeBytes(math.MaxInt32), c.Stream.MaxLineLength)
	}
	if w := c.Stream.ZstdMaxWindow; w != 0 && (w < zstd.MinWindowSize || w > maxZstdWindow) {
		return fmt.Errorf("stream: zstdmaxwindow must be between %s and %s, got %s",
			SizeBytes(zstd.MinWindowSize), SizeBytes(maxZstdWindow), w)
	}

	c.disabled = make(map[sniff.Format]bool)
	for _, name := range c.Stream.Disable {
		f, err := sniff.ParseFormat(name)
		if err != nil {
			return fmt.Errorf("stream: disable: %v", err)
		}
		if !f.IsCompressed() {
			return fmt.Errorf("stream: disable: %q is not a compressed format", name)
		}
		c.disabled[f] = true
	}

	if c.metrics == nil {
		c.metrics = NopMetrics{}
	}
	c.filled = true
	return nil
}

// replaceEnvVars replaces any string in the format ${VALUE} or $VALUE with the corresponding
// $VALUE environment variable
func replaceEnvVars(f io.Reader, mapper func(string) string) (io.Reader, error) {
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("Error reading input: %v", err)
	}

	return strings.NewReader(os.Expand(buf.String(), mapper)), nil
}

// cloneConfig clones a configuration object.
func cloneConfig(i interface{}) interface{} {
	return reflect.New(reflect.ValueOf(i).Elem().Type()).Interface()
}

// NewConfigFromToml creates a Config from a reader reading from a TOML
// configuration. metrics describes the available metrics backends.
func NewConfigFromToml(f io.Reader, metrics []MetricsDesc) (*Config, error) {
	f, err := replaceEnvVars(f, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("Can't replace config with env vars: %v", err)
	}

	cfg := Config{}
	md, err := toml.DecodeReader(f, &cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing configuration: %v", err)
	}

	if cfg.Metrics.Name != "" {
		for i := range metrics {
			if strings.EqualFold(metrics[i].Name, cfg.Metrics.Name) {
				cfg.Metrics.desc = &metrics[i]
				break
			}
		}
		if cfg.Metrics.desc == nil {
			return nil, fmt.Errorf("metrics does not exist: %q", cfg.Metrics.Name)
		}

		cfg.Metrics.DecodedConfig = cloneConfig(cfg.Metrics.desc.Config)
		if cfg.Metrics.Config != nil {
			if err := md.PrimitiveDecode(*cfg.Metrics.Config, cfg.Metrics.DecodedConfig); err != nil {
				return nil, fmt.Errorf("metrics %q: error parsing config: %v", cfg.Metrics.Name, err)
			}
		}
	}

	// Abort if there's any unknown key in the configuration file
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("invalid keys in configuration file: %v", keys)
	}

	if err := cfg.fillDefaults(); err != nil {
		return nil, err
	}

	if cfg.Metrics.desc != nil {
		client, err := cfg.Metrics.desc.New(cfg.Metrics.DecodedConfig)
		if err != nil {
			return nil, fmt.Errorf("metrics %q: %v", cfg.Metrics.Name, err)
		}
		cfg.metrics = client
	}

	return &cfg, nil
}
