package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", Handler())

	// Generate a request
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ping returned %d", w.Code)
	}

	// Scrape and check the counter appeared
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "awareai_http_requests_total") {
		t.Error("expected awareai_http_requests_total in scrape output")
	}
	if !strings.Contains(body, `path="/ping"`) {
		t.Error("expected /ping route pattern label in scrape output")
	}
}

func TestStatusBucket(t *testing.T) {
	cases := map[int]string{
		102: "1xx",
		200: "2xx",
		204: "2xx",
		301: "3xx",
		404: "4xx",
		500: "5xx",
		503: "5xx",
	}
	for code, want := range cases {
		if got := statusBucket(code); got != want {
			t.Errorf("statusBucket(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestDomainCountersRegistered(t *testing.T) {
	// Incrementing must not panic (panics mean a registration conflict).
	RiskCalculationsTotal.WithLabelValues("low").Inc()
	QuizSubmissionsTotal.WithLabelValues("pass").Inc()
	ChatRequestsTotal.WithLabelValues("phishing").Inc()
	BadgesAwardedTotal.WithLabelValues("first-training").Inc()
	PhishingEventsTotal.WithLabelValues("clicked").Inc()
}

func TestStartDBStatsCollector_SamplesAndStops(t *testing.T) {
	// sql.Open does not dial, so pool stats are readable without a server.
	db, err := sql.Open("postgres", "postgres://localhost/none?sslmode=disable")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		StartDBStatsCollector(ctx, db, time.Millisecond)
		close(done)
	}()

	// Let it sample at least once, then check the goroutine gauge moved.
	deadline := time.After(time.Second)
	for testutil.ToFloat64(GoroutineCount) == 0 {
		select {
		case <-deadline:
			t.Fatal("collector never sampled")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on context cancel")
	}
}
