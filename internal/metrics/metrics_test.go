package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("New() returned nil")
	}

	if m.Registry() == nil {
		t.Error("Registry() returned nil")
	}
	if m.APIRequestsTotal == nil {
		t.Error("APIRequestsTotal is nil")
	}
	if m.APIRequestDurationSeconds == nil {
		t.Error("APIRequestDurationSeconds is nil")
	}
	if m.StoreFetchesTotal == nil {
		t.Error("StoreFetchesTotal is nil")
	}
	if m.CSVRowsTotal == nil {
		t.Error("CSVRowsTotal is nil")
	}
}

func TestGlobalMetrics(t *testing.T) {
	if Global() != nil {
		t.Error("Global() should be nil before SetGlobal")
	}

	m := New()
	SetGlobal(m)

	if Global() != m {
		t.Error("Global() did not return the set metrics")
	}

	SetGlobal(nil)
}

func TestObserveAPIRequest(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	ObserveAPIRequest("DELETE", "/campaign/delete/12", "200", 10*time.Millisecond)
	ObserveAPIRequest("DELETE", "/campaign/delete/13", "200", 20*time.Millisecond)
	ObserveAPIRequest("POST", "/campaign/list", "500", time.Millisecond)

	counter, err := m.APIRequestsTotal.GetMetricWithLabelValues("DELETE", "/campaign/delete/{id}", "200")
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	if got := counterValue(t, counter); got != 2 {
		t.Errorf("Expected 2 delete requests, got %f", got)
	}

	counter, _ = m.APIRequestsTotal.GetMetricWithLabelValues("POST", "/campaign/list", "500")
	if got := counterValue(t, counter); got != 1 {
		t.Errorf("Expected 1 list request, got %f", got)
	}
}

func TestStoreAndCSVCounters(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	IncStoreFetch("campaigns", "success")
	IncStoreFetch("campaigns", "superseded")
	IncStoreFetch("campaigns", "superseded")
	IncStoreMutation("lists", "add", "success")
	AddCSVRows("valid", 3)
	AddCSVRows("invalid", 0)
	IncCSVImport("no_valid_rows")
	IncLogin("failure")
	IncAPIErrors("network")

	counter, _ := m.StoreFetchesTotal.GetMetricWithLabelValues("campaigns", "superseded")
	if got := counterValue(t, counter); got != 2 {
		t.Errorf("Expected 2 superseded fetches, got %f", got)
	}

	counter, _ = m.CSVRowsTotal.GetMetricWithLabelValues("valid")
	if got := counterValue(t, counter); got != 3 {
		t.Errorf("Expected 3 valid rows, got %f", got)
	}

	counter, _ = m.StoreMutationsTotal.GetMetricWithLabelValues("lists", "add", "success")
	if got := counterValue(t, counter); got != 1 {
		t.Errorf("Expected 1 list add, got %f", got)
	}
}

func TestGlobalNilSafe(t *testing.T) {
	SetGlobal(nil)

	// None of these should panic
	ObserveAPIRequest("GET", "/list/1", "200", time.Second)
	IncAPIErrors("server")
	IncStoreFetch("users", "error")
	IncStoreMutation("users", "remove", "error")
	AddCSVRows("duplicate", 1)
	IncCSVImport("submitted")
	IncLogin("success")
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/campaign/list", "/campaign/list"},
		{"/campaign/copy/42", "/campaign/copy/{id}"},
		{"/list/7", "/list/{id}"},
		{"/list/item/filter?list_id=3", "/list/item/filter"},
		{"/template/v2", "/template/v2"},
		{"/user/7c9e6679-7425-40de-944b-e07fc1f90ae7", "/user/{id}"},
		{"/user/7c9e6679-7425-40de-944b-e07fc1f90aeZ", "/user/7c9e6679-7425-40de-944b-e07fc1f90aeZ"},
	}

	for _, tc := range tests {
		if got := NormalizeRoute(tc.path); got != tc.expected {
			t.Errorf("NormalizeRoute(%q) = %q, want %q", tc.path, got, tc.expected)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.LoginsTotal.WithLabelValues("success").Inc()

	path := filepath.Join(t.TempDir(), "console.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `console_logins_total{result="success"} 1`) {
		t.Errorf("textfile missing login counter:\n%s", data)
	}
}
