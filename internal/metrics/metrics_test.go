package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestRecorder_ObserveBuild(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveBuild(BuildStats{Pages: 4, Written: 6, Copied: 1, Omitted: 1, Duration: 150 * time.Millisecond})
	r.ObserveFailure(20 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range mfs {
		found[mf.GetName()] = true
		if mf.GetName() == "raido_pages" {
			if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 4 {
				t.Errorf("raido_pages = %v, want 4", got)
			}
		}
		if mf.GetName() == "raido_build_outcomes_total" && len(mf.GetMetric()) != 2 {
			t.Errorf("outcomes = %d series, want 2", len(mf.GetMetric()))
		}
	}
	for _, name := range []string{"raido_build_duration_seconds", "raido_build_outcomes_total", "raido_pages", "raido_output_files", "raido_omitted_documents"} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveBuild(BuildStats{Pages: 1})
	r.ObserveFailure(time.Second)
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder(nil)
	r.ObserveBuild(BuildStats{Pages: 2})

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "raido_pages 2") {
		t.Errorf("exposition missing raido_pages:\n%s", body)
	}
}
