package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)

	// Idempotent: a second init returns the same registry.
	assert.Same(t, registry, InitRegistry())
}

func TestRecordHelpers(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCrawlRequest("get_player")
		RecordCrawlRetry()
		RecordCrawl(12.5)
		RecordCalibration(0.25)
		RecordSimulation()
		RecordExport()
	})
}

func TestAddDroppedRows(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(DroppedRowsTotal)
	AddDroppedRows(3)
	AddDroppedRows(0)
	AddDroppedRows(-1)
	assert.Equal(t, before+3, testutil.ToFloat64(DroppedRowsTotal))
}

func TestGauges(t *testing.T) {
	InitRegistry()

	SetActiveSessions(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(ActiveSessions))

	SetLastFitError(0.42)
	assert.Equal(t, 0.42, testutil.ToFloat64(LastFitError))
}

func TestHandler(t *testing.T) {
	assert.NotNil(t, Handler())
}
