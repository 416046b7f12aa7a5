package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/verdict"
	"rarscale/internal/testkit"
)

func serverWithRun(t *testing.T) (*Server, analysis.RunRecord) {
	t.Helper()
	store := testkit.NewInMemoryResultStore()
	record := analysis.RunRecord{
		ID:          core.RunID(core.NewID()),
		CreatedAt:   core.Now(),
		Seed:        42,
		QualityTier: "RELAXED",
		Fingerprint: "cafe",
		Galaxies: []analysis.GalaxyRadialResult{
			{Galaxy: "NGC0300", Morphology: "spiral", Ratio: 1.05, RatioErr: 0.04, Z: 1.25},
		},
		Ensemble: analysis.EnsembleResult{
			TotalCount: 1, ValidCount: 1, MeanRatio: 1.05,
			Verdict: verdict.LabelInsufficientSample, InsufficientSample: true,
			Reason: "1 valid galaxies, need at least 2",
		},
	}
	if err := store.StoreRun(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	return NewServer(store), record
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := serverWithRun(t)
	rec := doRequest(t, s, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListRuns(t *testing.T) {
	s, record := serverWithRun(t)
	rec := doRequest(t, s, "/api/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var runs []analysis.RunRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != record.ID {
		t.Errorf("runs = %+v, want the one stored run", runs)
	}
}

func TestListRuns_BadLimit(t *testing.T) {
	s, _ := serverWithRun(t)
	if rec := doRequest(t, s, "/api/runs?limit=zero"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetRun(t *testing.T) {
	s, record := serverWithRun(t)
	rec := doRequest(t, s, "/api/runs/"+string(record.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var got analysis.RunRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Fingerprint != record.Fingerprint {
		t.Errorf("fingerprint = %q, want %q", got.Fingerprint, record.Fingerprint)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	s, _ := serverWithRun(t)
	if rec := doRequest(t, s, "/api/runs/"+core.NewID().String()); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetGalaxies(t *testing.T) {
	s, record := serverWithRun(t)
	rec := doRequest(t, s, "/api/runs/"+string(record.ID)+"/galaxies")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var galaxies []analysis.GalaxyRadialResult
	if err := json.Unmarshal(rec.Body.Bytes(), &galaxies); err != nil {
		t.Fatal(err)
	}
	if len(galaxies) != 1 || galaxies[0].Galaxy != "NGC0300" {
		t.Errorf("galaxies = %+v", galaxies)
	}
}

func TestGetReport(t *testing.T) {
	s, record := serverWithRun(t)
	rec := doRequest(t, s, "/api/runs/"+string(record.ID)+"/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "markdown") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "NGC0300") {
		t.Error("report should list the galaxy")
	}
}
