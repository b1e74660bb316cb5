package datadog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DataDog/datadog-go/v5/statsd"
	log "github.com/sirupsen/logrus"
)

// Log fields turned into event tags, so that events of a given stream, or
// of a given format, can be filtered.
var tagFields = []string{"fn", "format"}

type hook struct {
	levels []log.Level
	client *statsd.Client
	tags   []string
	host   string
}

// NewHook returns a Logrus hook that forwards log entries as events to a
// statsd client, such as the datadog-agent.
//
// Log entries with a level higher than level are discarded.
// host is used to fill the Hostname field of statsd events, it doesn't
// configure the connection (the client must already be configured).
// tags is a list of tags to include with all events.
func NewHook(level log.Level, client *statsd.Client, host string, tags []string) log.Hook {
	levels := make([]log.Level, level+1)
	copy(levels[:level+1], log.AllLevels)

	return &hook{
		client: client,
		levels: levels,
		tags:   tags,
		host:   host,
	}
}

func (h *hook) Levels() []log.Level {
	return h.levels
}

func (h *hook) Fire(ent *log.Entry) error {
	return h.client.Event(newEvent(ent, h.host, h.tags))
}

// newEvent converts a log entry into a statsd event. The event title is the
// log message, prefixed with the "f" field; the stream name ("fn") and the
// format become tags, and the stream name groups events together. The text
// lists the remaining fields as k=v, sorted by key.
func newEvent(ent *log.Entry, host string, basetags []string) *statsd.Event {
	tags := make([]string, len(basetags), len(basetags)+len(tagFields))
	copy(tags, basetags)

	keys := make([]string, 0, len(ent.Data))
	for k := range ent.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	text := strings.Builder{}
	text.WriteString(ent.Message)
	for _, k := range keys {
		if k == "f" || isTagField(k) {
			continue
		}
		fmt.Fprintf(&text, " %s=%v", k, ent.Data[k])
	}
	for _, k := range tagFields {
		if v, ok := ent.Data[k]; ok {
			tags = append(tags, fmt.Sprintf("%s:%v", k, v))
		}
	}

	title := ent.Message
	if f, ok := ent.Data["f"]; ok {
		title = fmt.Sprintf("%v: %s", f, ent.Message)
	}

	evt := &statsd.Event{
		Title:          title,
		Text:           text.String(),
		Tags:           tags,
		Timestamp:      ent.Time,
		SourceTypeName: "zcat",
		AlertType:      levelToAlertType(ent.Level),
		Hostname:       host,
	}
	if fn, ok := ent.Data["fn"]; ok {
		evt.AggregationKey = fmt.Sprint(fn)
	}
	return evt
}

func isTagField(k string) bool {
	for _, f := range tagFields {
		if f == k {
			return true
		}
	}
	return false
}

func levelToAlertType(level log.Level) statsd.EventAlertType {
	switch level {
	case log.PanicLevel, log.FatalLevel, log.ErrorLevel:
		return statsd.Error
	case log.WarnLevel:
		return statsd.Warning
	}
	return statsd.Info
}
