package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"rarscale/adapters/excel"
	"rarscale/adapters/postgres"
	"rarscale/adapters/report"
	"rarscale/adapters/sparc"
	"rarscale/app"
	"rarscale/domain/curve"
	"rarscale/internal/config"
	"rarscale/internal/migration"
	"rarscale/internal/testkit"
	"rarscale/ports"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration invalid: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := buildProvider(cfg)
	writer := buildWriter(ctx, cfg)
	sinks := []ports.ReportSinkPort{
		excel.NewWorkbookWriter(cfg.Export.WorkbookPath),
		report.NewMarkdownWriter(cfg.Export.ReportDir),
	}

	service, err := app.NewAnalysisService(cfg, provider, writer, sinks...)
	if err != nil {
		log.Fatalf("Failed to assemble analysis pipeline: %v", err)
	}

	record, err := service.Run(ctx)
	if err != nil {
		log.Fatalf("Analysis run failed: %v", err)
	}

	e := record.Ensemble
	log.Printf("Run %s complete: verdict=%s confidence=%s (n=%d/%d, mean ratio %.4f, z=%.2f, p=%.3g)",
		record.ID, e.Verdict, e.Confidence, e.ValidCount, e.TotalCount, e.MeanRatio, e.CombinedZ, e.PValue)

	// Morphology sub-ensembles are informational; only meaningful on an
	// unfiltered run.
	if cfg.Run.Morphology == "" && !e.InsufficientSample {
		for _, m := range []curve.Morphology{curve.MorphologyDwarf, curve.MorphologySpiral} {
			sub := service.SubEnsemble(record, m)
			if sub.InsufficientSample {
				continue
			}
			log.Printf("  %s sub-ensemble: verdict=%s (n=%d, mean ratio %.4f, z=%.2f)",
				m, sub.Verdict, sub.ValidCount, sub.MeanRatio, sub.CombinedZ)
		}
	}
}

// buildProvider selects the rotation-curve source: a data directory when
// configured, otherwise the synthetic demo sample.
func buildProvider(cfg *config.Config) ports.DataProviderPort {
	if cfg.Run.DataDir != "" {
		loader, err := sparc.NewLoader(cfg.Run.DataDir)
		if err != nil {
			log.Fatalf("Failed to load rotation curves: %v", err)
		}
		return loader
	}
	log.Println("DATA_DIR not set; running on the synthetic demo sample")
	return testkit.NewInMemoryProvider(testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Profiles())
}

// buildWriter connects the result store when DATABASE_URL is configured.
// Without it the run still executes and exports, it just isn't persisted.
func buildWriter(ctx context.Context, cfg *config.Config) ports.ResultWriterPort {
	if cfg.Database.URL == "" {
		log.Println("DATABASE_URL not set; results will not be persisted")
		return nil
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return postgres.NewRunRepository(db)
}
