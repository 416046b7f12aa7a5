package excel

import (
	"context"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"rarscale/domain/analysis"
	"rarscale/internal/errors"
	"rarscale/ports"
)

// Workbook sheet names.
const (
	summarySheet  = "Summary"
	galaxiesSheet = "Galaxies"
)

// WorkbookWriter exports a completed run as an Excel workbook: a summary
// sheet with the ensemble statistics and a per-galaxy sheet mirroring the
// result table.
type WorkbookWriter struct {
	path string
}

var _ ports.ReportSinkPort = (*WorkbookWriter)(nil)

func NewWorkbookWriter(path string) *WorkbookWriter {
	return &WorkbookWriter{path: path}
}

func (w *WorkbookWriter) WriteReport(_ context.Context, record analysis.RunRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if err := w.writeSummary(f, record); err != nil {
		return errors.ExportError("workbook", err)
	}
	if _, err := f.NewSheet(galaxiesSheet); err != nil {
		return errors.ExportError("workbook", err)
	}
	if err := w.writeGalaxies(f, record.Galaxies); err != nil {
		return errors.ExportError("workbook", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return errors.ExportError("workbook", err)
	}
	log.Printf("[excel] wrote run %s to %s", record.ID, w.path)
	return nil
}

func (w *WorkbookWriter) writeSummary(f *excelize.File, record analysis.RunRecord) error {
	e := record.Ensemble
	rows := [][]interface{}{
		{"Run ID", string(record.ID)},
		{"Created", record.CreatedAt.String()},
		{"Seed", record.Seed},
		{"Quality tier", record.QualityTier},
		{"Fingerprint", string(record.Fingerprint)},
		{},
		{"Galaxies analyzed", e.TotalCount},
		{"Galaxies valid", e.ValidCount},
		{"Mean ratio (weighted)", e.MeanRatio},
		{"Ratio std", e.RatioStd},
		{"Combined z", e.CombinedZ},
		{"p-value (two-sided)", e.PValue},
		{"Verdict", string(e.Verdict)},
		{"Confidence", string(e.Confidence)},
	}
	if e.Reason != "" {
		rows = append(rows, []interface{}{"Reason", e.Reason})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeGalaxies(f *excelize.File, galaxies []analysis.GalaxyRadialResult) error {
	header := []interface{}{
		"Galaxy", "Morphology",
		"Inner a0", "Inner a0 err", "Inner chi2/dof", "Inner points",
		"Outer a0", "Outer a0 err", "Outer chi2/dof", "Outer points",
		"Ratio", "Ratio err", "z", "Excluded", "Reason",
	}
	if err := f.SetSheetRow(galaxiesSheet, "A1", &header); err != nil {
		return err
	}
	for i, g := range galaxies {
		row := []interface{}{
			string(g.Galaxy), string(g.Morphology),
			g.Inner.A0, g.Inner.A0Err, g.Inner.Chi2Reduced, g.Inner.NPoints,
			g.Outer.A0, g.Outer.A0Err, g.Outer.Chi2Reduced, g.Outer.NPoints,
			g.Ratio, g.RatioErr, g.Z, g.Excluded, g.Reason,
		}
		if err := f.SetSheetRow(galaxiesSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}
