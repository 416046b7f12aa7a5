package sparc

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"rarscale/domain/core"
	"rarscale/domain/curve"
)

func writeTable(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const ngcTable = `# Distance = 13.8 Mpc
# R Vobs e_Vobs Vgas Vdisk Vbul SBdisk SBbul
1.0   100.0  5.0   30.0  80.0  0.0   120.0  0.0
3.0   120.0  4.0   40.0  90.0  10.0  80.0   0.0
6.0   130.0  6.0   45.0  85.0  5.0   40.0   0.0
10.0  128.0  5.0   50.0  70.0  0.0   10.0   0.0
`

func TestNewLoader_ParsesAndConverts(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "NGC0300.txt", ngcTable)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatal(err)
	}

	profile, err := loader.Profile(context.Background(), "NGC0300")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Len() != 4 {
		t.Fatalf("parsed %d points, want 4", profile.Len())
	}

	p := profile.Points[0]
	wantGObs := 100.0 * 100.0 / 1.0 * kmsSqPerKpcToSI
	wantGBar := (30.0*30.0 + upsilonDisk*80.0*80.0) / 1.0 * kmsSqPerKpcToSI
	wantErr := 2 * 100.0 * 5.0 / 1.0 * kmsSqPerKpcToSI

	if math.Abs(p.GObs-wantGObs)/wantGObs > 1e-12 {
		t.Errorf("GObs = %g, want %g", p.GObs, wantGObs)
	}
	if math.Abs(p.GBar-wantGBar)/wantGBar > 1e-12 {
		t.Errorf("GBar = %g, want %g", p.GBar, wantGBar)
	}
	if math.Abs(p.GObsErr-wantErr)/wantErr > 1e-12 {
		t.Errorf("GObsErr = %g, want %g", p.GObsErr, wantErr)
	}
}

func TestNewLoader_PointsOrderedByRadius(t *testing.T) {
	dir := t.TempDir()
	// Rows deliberately out of order.
	writeTable(t, dir, "UGC00128.dat", `
6.0  90.0  3.0  20.0  60.0  0.0
1.0  70.0  4.0  25.0  40.0  0.0
3.0  85.0  3.0  22.0  55.0  0.0
`)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatal(err)
	}
	profile, err := loader.Profile(context.Background(), "UGC00128")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < profile.Len(); i++ {
		if profile.Points[i].Radius <= profile.Points[i-1].Radius {
			t.Fatalf("points not sorted by radius: %v before %v", profile.Points[i-1].Radius, profile.Points[i].Radius)
		}
	}
}

func TestNewLoader_DropsUnphysicalRows(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "DDO154.txt", `
0.0   50.0  2.0  10.0  20.0  0.0
1.0   -5.0  2.0  10.0  20.0  0.0
1.5   48.0  2.0  10.0  20.0  0.0
2.5   52.0  2.0  12.0  22.0  0.0
4.0   55.0  2.0  14.0  24.0  0.0
`)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatal(err)
	}
	profile, err := loader.Profile(context.Background(), "DDO154")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Len() != 3 {
		t.Errorf("kept %d points, want 3 after dropping r<=0 and v<=0 rows", profile.Len())
	}
}

func TestNewLoader_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "NGC2403.txt", ngcTable)
	writeTable(t, dir, "NGC0000.txt", "not a number at all\n")
	writeTable(t, dir, "README.md", "docs, not data")

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatal(err)
	}
	profiles, err := loader.Profiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 {
		t.Errorf("loaded %d galaxies, want only the valid one", len(profiles))
	}
}

func TestNewLoader_EmptyDirFails(t *testing.T) {
	if _, err := NewLoader(t.TempDir()); err == nil {
		t.Error("expected error for a directory with no tables")
	}
}

func TestLoader_QualityGalaxiesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "UGC01281.txt", ngcTable)
	writeTable(t, dir, "NGC0024.txt", ngcTable)
	// Too few points to pass any tier above MAXIMAL.
	writeTable(t, dir, "NGC9999.txt", `
1.0  100.0  5.0  30.0  80.0  0.0
3.0  120.0  4.0  40.0  90.0  0.0
6.0  130.0  6.0  45.0  85.0  0.0
`)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatal(err)
	}

	ids, err := loader.QualityGalaxies(context.Background(), curve.QualityThresholds{
		Name: "TEST", MinPoints: 4, MinRadialSpanKpc: 5, MaxInnerRadiusKpc: 2,
		MinOuterRadiusKpc: 8, MaxVelErrorFraction: 0.25,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("passed %d galaxies, want 2", len(ids))
	}
	if ids[0] != "NGC0024" || ids[1] != "UGC01281" {
		t.Errorf("ids not sorted: %v", ids)
	}
}

func TestLoader_ProfileNotFound(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "NGC0300.txt", ngcTable)

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatal(err)
	}
	_, err = loader.Profile(context.Background(), "NGC7331")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !core.IsNotFoundError(err) {
		t.Errorf("missing galaxy must match the not-found sentinel, got %v", err)
	}
}
