package ports

import (
	"context"

	"rarscale/domain/analysis"
)

// ReportSinkPort receives a completed run for export (workbooks, reports).
// Sinks must treat the record as immutable.
type ReportSinkPort interface {
	WriteReport(ctx context.Context, record analysis.RunRecord) error
}
