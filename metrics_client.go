package zcat

import (
	"time"
)

// A MetricsClient receives the statistics of every Stream when it's closed.
//
// New metrics backends must implement this interface and be described by a
// MetricsDesc, so that they can be selected in the TOML configuration.
type MetricsClient interface {

	// DeltaCountWithTags increments the value of a metric or type counter and
	// associates that value with a set of tags.
	DeltaCountWithTags(name string, delta int64, tags []string)

	// HistogramWithTags adds a sample to an histogram and associates that
	// sample with a set of tags.
	HistogramWithTags(name string, value float64, tags []string)

	// DurationWithTags adds a duration to an histogram and associates that
	// duration with a set of tags.
	DurationWithTags(name string, value time.Duration, tags []string)
}

// MetricsDesc describes a metrics backend.
type MetricsDesc struct {
	// Name of the backend, as used in the [metrics] TOML section.
	Name string
	// Config is a pointer to the backend configuration struct.
	Config interface{}
	// New creates a client from the decoded configuration.
	New func(cfg interface{}) (MetricsClient, error)
}
