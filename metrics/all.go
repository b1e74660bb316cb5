// Package metrics lists the metrics backends available to zcat streams.
package metrics

import (
	"github.com/AdRoll/zcat"
	"github.com/AdRoll/zcat/metrics/datadog"
)

// All is the list of all metrics client supported by zcat.
var All = []zcat.MetricsDesc{
	datadog.Desc,
}
