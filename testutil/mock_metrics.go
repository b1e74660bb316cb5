package testutil

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AdRoll/zcat"
)

// MockMetricsDesc describes the MockMetrics metrics client.
var MockMetricsDesc = zcat.MetricsDesc{
	Name:   "MockMetrics",
	Config: &struct{}{},
	New:    newMockMetrics,
}

// MockMetrics is a metrics client to be used in tests only, which stores single
// calls made to the set of methods implementing the zcat.MetricsClient
// interface, and sort them so that they're easy to compare mechanically, in
// tests.
type MockMetrics struct {
	buf bytes.Buffer

	Closed bool // Closed is set by Close
}

func newMockMetrics(_ interface{}) (zcat.MetricsClient, error) { return &MockMetrics{}, nil }

// PublishedMetrics returns a list of strings, each of which represent arguments
// and method of calls to methods of the zcat.MetricsClient interface. Prefix
// can be used to select a subset of calls, or all of them (with "").
func (m *MockMetrics) PublishedMetrics(prefix string) []string {
	keep := make([]string, 0)
	for _, s := range strings.Split(m.buf.String(), "\n") {
		if len(strings.TrimSpace(s)) != 0 {
			if len(prefix) == 0 || strings.HasPrefix(s, prefix) {
				keep = append(keep, s)
			}
		}
	}

	sort.Strings(keep)
	return keep
}

func (m *MockMetrics) DeltaCountWithTags(name string, delta int64, tags []string) {
	fmt.Fprintf(&m.buf, "delta|name=%s|value=%v|tags=%s\n", name, delta, strings.Join(tags, ","))
}
func (m *MockMetrics) HistogramWithTags(name string, value float64, tags []string) {
	fmt.Fprintf(&m.buf, "hist|name=%s|value=%v|tags=%s\n", name, value, strings.Join(tags, ","))
}
func (m *MockMetrics) DurationWithTags(name string, value time.Duration, tags []string) {
	// Durations aren't deterministic, only record the call.
	fmt.Fprintf(&m.buf, "duration|name=%s|tags=%s\n", name, strings.Join(tags, ","))
}
func (m *MockMetrics) Close() error {
	m.Closed = true
	return nil
}
