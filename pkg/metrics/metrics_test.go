package metrics

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primaryrutabaga/braze-bridge/pkg/tagbridge"
)

func TestRecorder(t *testing.T) {
	r := Recorder{}

	before := testutil.ToFloat64(Invocations.WithLabelValues("logEvent"))
	r.Routed(tagbridge.ActionLogEvent)
	assert.Equal(t, before+1, testutil.ToFloat64(Invocations.WithLabelValues("logEvent")))

	before = testutil.ToFloat64(Discards.WithLabelValues("none", "unclassified"))
	r.Discarded("", "unclassified")
	assert.Equal(t, before+1, testutil.ToFloat64(Discards.WithLabelValues("none", "unclassified")))

	before = testutil.ToFloat64(Warnings.WithLabelValues("format_invalid"))
	r.Warned("format_invalid")
	assert.Equal(t, before+1, testutil.ToFloat64(Warnings.WithLabelValues("format_invalid")))
}

func TestCallCounter(t *testing.T) {
	sink := CallCounter()

	before := testutil.ToFloat64(Calls.WithLabelValues("log_purchase"))
	sink.LogPurchase("A", "USD", 1, 1, nil)
	sink.LogPurchase("B", "USD", 1, 1, nil)
	assert.Equal(t, before+2, testutil.ToFloat64(Calls.WithLabelValues("log_purchase")))
}

func TestHandlerExposesCounters(t *testing.T) {
	RegisterDefault()
	RegisterDefault() // idempotent

	Recorder{}.Routed(tagbridge.ActionChangeUser)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `bridge_invocations_total{action="changeUser"}`))
}

func TestUnknownActionsShareOneSeries(t *testing.T) {
	b := tagbridge.New(tagbridge.CallSink(func(tagbridge.Call) {}), nil,
		tagbridge.WithLogger(log.New(io.Discard, "", 0)),
		tagbridge.WithRecorder(Recorder{}),
	)

	before := testutil.ToFloat64(Discards.WithLabelValues("none", "unknown_action"))
	series := testutil.CollectAndCount(Discards)

	b.Execute(context.Background(), tagbridge.Bag{"actionType": "junk_1"})
	b.Execute(context.Background(), tagbridge.Bag{"actionType": "junk_2"})

	assert.Equal(t, series, testutil.CollectAndCount(Discards))
	assert.Equal(t, before+2, testutil.ToFloat64(Discards.WithLabelValues("none", "unknown_action")))
}
