package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/buidl-labs/muxsync/metrics"
)

func TestEventsSkippedByReason(t *testing.T) {
	before := testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues("duplicate"))
	metrics.EventsSkipped.WithLabelValues("duplicate").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsSkipped.WithLabelValues("duplicate")))
}

func TestEventsDispatchedLabels(t *testing.T) {
	c := metrics.EventsDispatched.WithLabelValues("asset", "upsert")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
