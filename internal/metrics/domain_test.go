// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestPromhttpExposure(t *testing.T) {
	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestIncBusDrop(t *testing.T) {
	before := testutil.ToFloat64(BusDroppedTotal.WithLabelValues("sessions"))
	IncBusDrop("sessions")
	IncBusDrop("")

	metric := &dto.Metric{}
	if err := BusDroppedTotal.WithLabelValues("sessions").Write(metric); err != nil {
		t.Fatal(err)
	}
	if got := metric.GetCounter().GetValue(); got != before+1 {
		t.Fatalf("drops = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(BusDroppedTotal.WithLabelValues("unknown")); got < 1 {
		t.Fatalf("unknown topic drops = %v, want >= 1", got)
	}
}

func TestRecordSessionSaveOutcome(t *testing.T) {
	ok := sessionsSavedTotal.WithLabelValues(SourceRelay, "success")
	fail := sessionsSavedTotal.WithLabelValues(SourceRelay, "failure")
	okBefore, failBefore := testutil.ToFloat64(ok), testutil.ToFloat64(fail)

	RecordSessionSave(SourceRelay, nil)
	RecordSessionSave(SourceRelay, errors.New("boom"))

	if got := testutil.ToFloat64(ok); got != okBefore+1 {
		t.Fatalf("success = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(fail); got != failBefore+1 {
		t.Fatalf("failure = %v, want %v", got, failBefore+1)
	}
}

func TestSetBlockerActive(t *testing.T) {
	SetBlockerActive(true)
	if got := testutil.ToFloat64(blockerActive); got != 1 {
		t.Fatalf("blocker gauge = %v, want 1", got)
	}
	SetBlockerActive(false)
	if got := testutil.ToFloat64(blockerActive); got != 0 {
		t.Fatalf("blocker gauge = %v, want 0", got)
	}
}
