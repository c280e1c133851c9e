package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.EntriesRecorded("tally", "Byproduct", 3)
	m.EntriesRecorded("tally", "Byproduct", 0)
	m.ConfirmationRequired("WARN_OVER_ALLOCATION")
	m.SubmissionRejected("INVALID_WEIGHT")
	m.SubmissionRejected("")
	m.PagesBuilt(2)

	if got := testutil.ToFloat64(m.entriesRecorded.WithLabelValues("tally", "Byproduct")); got != 3 {
		t.Errorf("entries recorded = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.confirmations.WithLabelValues("WARN_OVER_ALLOCATION")); got != 1 {
		t.Errorf("confirmations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.submissionRejections.WithLabelValues("UNKNOWN")); got != 1 {
		t.Errorf("unknown rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.pagesBuilt); got != 2 {
		t.Errorf("pages built = %v, want 2", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.EntriesRecorded("tally", "Dressed", 1)
	m.ConfirmationRequired("WARN_NO_REQUIREMENT")
	m.SubmissionRejected("INVALID_HEADS")
	m.PagesBuilt(1)
	m.ObserveRPC("/tally.v1.TallyService/SubmitEntry", time.Millisecond)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRPC("/tally.v1.TallyService/SubmitEntry", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `tally_rpc_duration_seconds_count{procedure="/tally.v1.TallyService/SubmitEntry"} 1`) {
		t.Errorf("metrics output missing rpc histogram:\n%s", body)
	}
}
