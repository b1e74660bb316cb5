// Package datadog provides types and functions to export stream metrics
// and logs to Datadog via a statds client.
package datadog

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	log "github.com/sirupsen/logrus"

	"github.com/AdRoll/zcat"
)

// Desc describes the Datadog metrics client inteface.
var Desc = zcat.MetricsDesc{
	Name:   "Datadog",
	Config: &Config{},
	New:    newDatadogClient,
}

// Config is the configuration of the Datadog metrics client.
type Config struct {
	Prefix   string   // Prefix is the prefix of all metric names. defaults to zcat.
	Host     string   // Host is the address of the statsd host to send log to (in UDP). defaults to 127.0.0.1:8125.
	Tags     []string // Tags is the list of tags to attach to all metrics.
	SendLogs bool     // SendLogs indicates whether log entries of level warning or higher are sent as statsd events.
}

// Client allows to instrument code and export the metrics to a dogstatds client.
type Client struct {
	dog      *statsd.Client
	basetags []string
}

func newDatadogClient(icfg interface{}) (zcat.MetricsClient, error) {
	return newClient(icfg.(*Config))
}

// newClient creates a Client that pushes to the datadog server using
// the dogstatsd format. All exported metrics will have a name prepended with
// the given prefix and will be tagged with the provided set of tags.
func newClient(cfg *Config) (*Client, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "zcat."
	}

	if cfg.Host == "" {
		cfg.Host = "127.0.0.1:8125"
	}

	dog, err := statsd.New(cfg.Host,
		statsd.WithNamespace(cfg.Prefix),
		statsd.WithoutTelemetry(),
	)
	if err != nil {
		return nil, fmt.Errorf("can't create datadog metrics client: %s", err)
	}

	if cfg.SendLogs {
		log.AddHook(NewHook(log.WarnLevel, dog, cfg.Host, cfg.Tags))
	}

	dd := &Client{
		dog:      dog,
		basetags: cfg.Tags,
	}
	return dd, nil
}

// DeltaCountWithTags increments the value of a metric or type counter and
// associates that value with a set of tags.
func (c *Client) DeltaCountWithTags(name string, delta int64, tags []string) {
	if c.dog != nil {
		c.dog.Count(name, delta, c.tags(tags), 1)
	}
}

// HistogramWithTags adds a sample to an histogram and associates that
// sample with a set of tags.
//
// In Datadog, this is shown as an 'Histogram', a DogStatsd metric type on
// which percentiles, mean and other info are calculated.
// see https://docs.datadoghq.com/developers/dogstatsd/data_types/#histograms
func (c *Client) HistogramWithTags(name string, value float64, tags []string) {
	if c.dog != nil {
		c.dog.Histogram(name, value, c.tags(tags), 1)
	}
}

// DurationWithTags adds a duration to an histogram and associates that
// duration with a set of tags.
//
// In Datadog, this is shown as a 'Timer', an implementation of an 'Histogram'
// DogStatsd  metric type, on which percentiles, mean and other info are calculated.
// see https://docs.datadoghq.com/developers/dogstatsd/data_types/#timers
func (c *Client) DurationWithTags(name string, value time.Duration, tags []string) {
	if c.dog != nil {
		c.dog.TimeInMilliseconds(name, float64(value/time.Millisecond), c.tags(tags), 1)
	}
}

// Close flushes the metrics buffered by the client and closes it.
func (c *Client) Close() error {
	if c.dog == nil {
		return nil
	}
	return c.dog.Close()
}

// tags returns the base tags followed by tags, without modifying basetags.
func (c *Client) tags(tags []string) []string {
	all := make([]string, 0, len(c.basetags)+len(tags))
	all = append(all, c.basetags...)
	return append(all, tags...)
}
