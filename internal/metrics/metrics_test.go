package metrics

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-softlimit/pkg/dom/memdom"
	"github.com/goliatone/go-softlimit/pkg/engine"
	"github.com/goliatone/go-softlimit/pkg/eventloop"
	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

func TestEngineObserver(t *testing.T) {
	m := New(nil)
	doc, err := memdom.ParseString(`<body>
<input id="title" value="hello world">
<span data-soft-limit data-soft-limit-target="title" data-soft-limit-max="10">0/10</span>
<span data-soft-limit data-soft-limit-target="ghost" data-soft-limit-max="10">0/10</span>
</body>`)
	require.NoError(t, err)

	clock := eventloop.NewManual(time.Time{})
	eng, err := engine.New(doc, clock,
		engine.WithLogger(slog.New(slog.DiscardHandler)),
		engine.WithObserver(m),
		engine.WithConfig(engine.Config{MaxRetries: 2, RetryDelay: 100 * time.Millisecond}),
	)
	require.NoError(t, err)
	eng.Start()
	clock.Advance(time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BindingsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterUpdates.WithLabelValues("exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BindingsAbandoned))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ResolveAttempts))

	eng.Stop()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BindingsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BindingTransitions.WithLabelValues("bound", "released")))
}

func TestSaveReporterAndClampHook(t *testing.T) {
	m := New(nil)
	v := validation.New(validation.WithReporter(m), validation.WithLogger(slog.New(slog.DiscardHandler)))

	v.Check("[soft-limit:10]")
	_ = v.BeforeSave(t.Context(), validFieldWith("[soft-limit:10]"))
	_ = v.BeforeSave(t.Context(), validFieldWith("[soft-limit:0]"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveChecks.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveChecks.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SaveIssues.WithLabelValues(validation.FieldInstructions, string(marker.CodeOutOfRange))))

	_, ok := marker.ValidateForRender("[soft-limit:500000w]",
		marker.WithLogger(slog.New(slog.DiscardHandler)),
		marker.WithClampHook(m.Clamped),
	)
	require.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderClamps.WithLabelValues("words")))
}

func TestHandlerAndInstrument(t *testing.T) {
	m := New(nil)
	h := m.Instrument("strip", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/strip", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("strip", "post", "418")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "softlimit_http_requests_total"))
}

func validFieldWith(instructions string) fields.Field {
	return fields.Field{Handle: "title", Label: "Title", Instructions: instructions}
}
