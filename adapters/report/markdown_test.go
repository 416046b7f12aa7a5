package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/verdict"
)

func sampleRecord() analysis.RunRecord {
	return analysis.RunRecord{
		ID:          "0198f1b2-run",
		CreatedAt:   core.Now(),
		Seed:        7,
		QualityTier: "STRICT",
		Fingerprint: "deadbeef",
		Galaxies: []analysis.GalaxyRadialResult{
			{
				Galaxy: "NGC2403", Morphology: "spiral",
				Inner: analysis.FitResult{A0: 1.3e-10, A0Err: 6e-12, Converged: true},
				Outer: analysis.FitResult{A0: 1.2e-10, A0Err: 5e-12, Converged: true},
				Ratio: 1.083, RatioErr: 0.067, Z: 1.24,
			},
			{Galaxy: "UGCA444", Morphology: "dwarf", Excluded: true, Reason: "too few points (1 < 3) in outer bin"},
		},
		Ensemble: analysis.EnsembleResult{
			TotalCount: 2, ValidCount: 1, MeanRatio: 1.083, RatioStd: 0,
			CombinedZ: 1.24, PValue: 0.215, Verdict: verdict.LabelInconclusive,
			Reason: "no significant deviation (z=1.24) and mean ratio 1.083 outside the universal-a0 range",
		},
	}
}

func TestRender_ContainsVerdictAndGalaxies(t *testing.T) {
	md := Render(sampleRecord())

	for _, want := range []string{
		"INCONCLUSIVE",
		"NGC2403",
		"UGCA444",
		"excluded: too few points (1 < 3) in outer bin",
		"Mean ratio (weighted) | 1.0830",
		"deadbeef",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRender_InsufficientSample(t *testing.T) {
	record := sampleRecord()
	record.Ensemble = analysis.EnsembleResult{
		TotalCount: 1, ValidCount: 1, InsufficientSample: true,
		Verdict: verdict.LabelInsufficientSample,
		Reason:  "1 valid galaxies, need at least 2",
	}

	md := Render(record)
	if !strings.Contains(md, "INSUFFICIENT_SAMPLE") {
		t.Error("report should name the insufficient-sample condition")
	}
	if strings.Contains(md, "Combined z") {
		t.Error("no combined statistics should be reported without a verdict")
	}
}

func TestRenderHTML_ProducesTables(t *testing.T) {
	out := string(RenderHTML(sampleRecord()))
	if !strings.Contains(out, "<table>") {
		t.Error("HTML rendering should contain the results table")
	}
	if !strings.Contains(out, "NGC2403") {
		t.Error("HTML rendering should contain galaxy rows")
	}
}

func TestMarkdownWriter_WritesBothFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	writer := NewMarkdownWriter(dir)

	record := sampleRecord()
	if err := writer.WriteReport(context.Background(), record); err != nil {
		t.Fatal(err)
	}

	for _, ext := range []string{".md", ".html"} {
		path := filepath.Join(dir, "run-"+string(record.ID)+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("missing %s: %v", path, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}
