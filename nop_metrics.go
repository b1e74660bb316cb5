package zcat

import "time"

var _ MetricsClient = NopMetrics{}

// NopMetrics implements a MetricsClient that does nothing.
type NopMetrics struct{}

func (NopMetrics) DeltaCountWithTags(name string, delta int64, tags []string)       {}
func (NopMetrics) HistogramWithTags(name string, value float64, tags []string)      {}
func (NopMetrics) DurationWithTags(name string, value time.Duration, tags []string) {}
