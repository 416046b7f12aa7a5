package report

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"rarscale/domain/analysis"
	"rarscale/internal/errors"
	"rarscale/ports"
)

// MarkdownWriter renders a completed run as a Markdown report plus an HTML
// rendering of the same document, one pair of files per run.
type MarkdownWriter struct {
	dir string
}

var _ ports.ReportSinkPort = (*MarkdownWriter)(nil)

func NewMarkdownWriter(dir string) *MarkdownWriter {
	return &MarkdownWriter{dir: dir}
}

func (w *MarkdownWriter) WriteReport(_ context.Context, record analysis.RunRecord) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.ExportError("report", err)
	}

	md := Render(record)
	base := filepath.Join(w.dir, "run-"+string(record.ID))

	if err := os.WriteFile(base+".md", []byte(md), 0o644); err != nil {
		return errors.ExportError("report", err)
	}
	if err := os.WriteFile(base+".html", RenderHTML(record), 0o644); err != nil {
		return errors.ExportError("report", err)
	}
	log.Printf("[report] wrote run %s to %s.{md,html}", record.ID, base)
	return nil
}

// Render produces the Markdown report document for a run.
func Render(record analysis.RunRecord) string {
	var b strings.Builder
	e := record.Ensemble

	fmt.Fprintf(&b, "# Radial Acceleration-Scale Analysis\n\n")
	fmt.Fprintf(&b, "- **Run**: %s\n", record.ID)
	fmt.Fprintf(&b, "- **Created**: %s\n", record.CreatedAt)
	fmt.Fprintf(&b, "- **Seed**: %d\n", record.Seed)
	fmt.Fprintf(&b, "- **Quality tier**: %s\n", record.QualityTier)
	fmt.Fprintf(&b, "- **Fingerprint**: `%s`\n\n", record.Fingerprint)

	fmt.Fprintf(&b, "## Verdict\n\n")
	if e.InsufficientSample {
		fmt.Fprintf(&b, "**%s**: %s\n\n", e.Verdict, e.Reason)
	} else {
		fmt.Fprintf(&b, "**%s**", e.Verdict)
		if e.Confidence != "" {
			fmt.Fprintf(&b, " (confidence: %s)", e.Confidence)
		}
		b.WriteString("\n\n")
		if e.Reason != "" {
			fmt.Fprintf(&b, "%s\n\n", e.Reason)
		}
		fmt.Fprintf(&b, "| Statistic | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Galaxies analyzed | %d |\n", e.TotalCount)
		fmt.Fprintf(&b, "| Galaxies valid | %d |\n", e.ValidCount)
		fmt.Fprintf(&b, "| Mean ratio (weighted) | %.4f |\n", e.MeanRatio)
		fmt.Fprintf(&b, "| Ratio std | %.4f |\n", e.RatioStd)
		fmt.Fprintf(&b, "| Combined z | %.3f |\n", e.CombinedZ)
		fmt.Fprintf(&b, "| p-value (two-sided) | %.3g |\n\n", e.PValue)
	}

	fmt.Fprintf(&b, "## Per-galaxy results\n\n")
	fmt.Fprintf(&b, "| Galaxy | Type | Inner a0 | Outer a0 | Ratio | σ(ratio) | z | Status |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|---|---|\n")
	for _, g := range record.Galaxies {
		if g.Excluded {
			fmt.Fprintf(&b, "| %s | %s | - | - | - | - | - | excluded: %s |\n",
				g.Galaxy, g.Morphology, g.Reason)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %.3e ± %.1e | %.3e ± %.1e | %.3f | %.3f | %.2f | ok |\n",
			g.Galaxy, g.Morphology,
			g.Inner.A0, g.Inner.A0Err, g.Outer.A0, g.Outer.A0Err,
			g.Ratio, g.RatioErr, g.Z)
	}
	return b.String()
}

// RenderHTML renders the run report to standalone HTML.
func RenderHTML(record analysis.RunRecord) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Run " + string(record.ID),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Render(record)), p, renderer)
}
