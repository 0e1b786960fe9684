package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestIngestionMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestionMetrics(reg)
	m.ObserveExtraction("listing", OutcomeSuccess, 250*time.Millisecond)
	m.ObserveExtraction("listing", OutcomeFailure, 100*time.Millisecond)
	m.IncUpload(OutcomeSuccess)
	m.IncUpload(OutcomeSuccess)
	m.IncCompensation()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "ai_extractions_total", map[string]string{"kind": "listing", "outcome": OutcomeSuccess}); err != nil {
		t.Fatalf("fetch extractions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "listing_image_uploads_total", map[string]string{"outcome": OutcomeSuccess}); err != nil {
		t.Fatalf("fetch uploads: %v", err)
	} else if got != 2 {
		t.Fatalf("expected uploads=2, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "ai_extraction_duration_seconds", map[string]string{"kind": "listing"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if findMetricFamily(mfs, "listing_upload_compensations_total") == nil {
		t.Fatalf("expected compensation counter to be exported")
	}
}

func TestCacheMetricsLabelsUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCacheMetrics(reg)
	m.IncLookup("", "hit")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "view_cache_lookups_total", map[string]string{"view": "unknown", "result": "hit"}); err != nil {
		t.Fatalf("fetch lookups: %v", err)
	} else if got != 1 {
		t.Fatalf("expected lookups=1, got %f", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var ingestion *IngestionMetrics
	ingestion.ObserveExtraction("listing", OutcomeSuccess, time.Second)
	ingestion.IncUpload(OutcomeFailure)
	ingestion.IncCompensation()

	var cache *CacheMetrics
	cache.IncLookup("saved_cars", "miss")

	NewIngestionMetrics(nil).IncUpload(OutcomeSuccess)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
