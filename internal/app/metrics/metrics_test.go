package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutedHandler() http.Handler {
	r := mux.NewRouter()
	r.Use(RouteLabel)
	r.HandleFunc("/api/solution/{id:[0-9]+}/view", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodPost)
	return InstrumentHandler(r)
}

func TestInstrumentHandlerLabelsRouteTemplate(t *testing.T) {
	handler := newRoutedHandler()
	counter := httpRequests.WithLabelValues("POST", "/api/solution/{id:[0-9]+}/view", "418")

	before := testutil.ToFloat64(counter)
	for _, id := range []string{"1", "42", "99999999999999999999"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/solution/"+id+"/view", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestInstrumentHandlerCollapsesUnmatchedPaths(t *testing.T) {
	handler := newRoutedHandler()

	// warm up the series so the count below only reflects growth
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan-0", nil))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/solution/1/view", nil))

	series := testutil.CollectAndCount(httpRequests)
	notFound := testutil.ToFloat64(httpRequests.WithLabelValues("GET", UnmatchedRoute, "404"))
	for i := 0; i < 200; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scan-%x", i+1), nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/solution/7/view", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Equal(t, series, testutil.CollectAndCount(httpRequests))
	assert.Equal(t, notFound+200, testutil.ToFloat64(httpRequests.WithLabelValues("GET", UnmatchedRoute, "404")))
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	RecordListingCreated("solution")
	RecordSolutionActivity("view")
	RecordRegistration("ok")
	RecordRateLimited()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"innovators_catalog_listings_created_total",
		"innovators_catalog_solution_activity_total",
		"innovators_events_registrations_total",
		"innovators_http_rate_limited_total",
	} {
		assert.True(t, strings.Contains(body, name), name)
	}
}
