package sparc

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/internal/errors"
	"rarscale/ports"
)

// Unit conversion from (km/s)^2 / kpc to m/s^2.
const kmsSqPerKpcToSI = 3.24078e-14

// Stellar mass-to-light ratios at 3.6um (McGaugh 2016 reference values).
const (
	upsilonDisk  = 0.5
	upsilonBulge = 0.7
)

// Loader reads SPARC mass-model rotation-curve tables from a directory, one
// whitespace-separated file per galaxy named <galaxy>.txt or <galaxy>.dat
// with columns R Vobs e_Vobs Vgas Vdisk Vbul [SBdisk SBbul] in kpc and km/s.
// Lines starting with '#' are headers.
type Loader struct {
	dir      string
	profiles map[core.GalaxyID]curve.GalaxyProfile
}

var _ ports.DataProviderPort = (*Loader)(nil)

// NewLoader eagerly loads every table under dir. Files that cannot be parsed
// are logged and skipped rather than failing the whole directory.
func NewLoader(dir string) (*Loader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.DataInvalid(fmt.Sprintf("rotation-curve directory %s: %v", dir, err))
	}

	l := &Loader{dir: dir, profiles: make(map[core.GalaxyID]curve.GalaxyProfile)}
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".txt" && ext != ".dat" {
			continue
		}
		id, err := core.ParseGalaxyID(strings.TrimSuffix(entry.Name(), ext))
		if err != nil {
			skipped++
			continue
		}
		profile, err := loadTable(filepath.Join(dir, entry.Name()), id)
		if err != nil {
			log.Printf("[sparc] skipping %s: %v", entry.Name(), err)
			skipped++
			continue
		}
		l.profiles[id] = profile
	}
	if len(l.profiles) == 0 {
		return nil, errors.DataInvalid(fmt.Sprintf("no usable rotation-curve tables under %s", dir))
	}
	log.Printf("[sparc] loaded %d galaxies from %s (%d files skipped)", len(l.profiles), dir, skipped)
	return l, nil
}

func (l *Loader) Profiles(_ context.Context) (map[core.GalaxyID]curve.GalaxyProfile, error) {
	out := make(map[core.GalaxyID]curve.GalaxyProfile, len(l.profiles))
	for id, p := range l.profiles {
		out[id] = p
	}
	return out, nil
}

func (l *Loader) Profile(_ context.Context, id core.GalaxyID) (curve.GalaxyProfile, error) {
	p, ok := l.profiles[id]
	if !ok {
		return curve.GalaxyProfile{}, errors.NotFoundFrom(core.NewNotFoundError("galaxy", string(id)))
	}
	return p, nil
}

func (l *Loader) QualityGalaxies(_ context.Context, thresholds curve.QualityThresholds) ([]core.GalaxyID, error) {
	var ids []core.GalaxyID
	for id, p := range l.profiles {
		if curve.EvaluateQuality(p, thresholds).Passed {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// loadTable parses one galaxy's table and converts velocities to
// accelerations. Rows with non-finite or unphysical values are dropped;
// whole-file failure is reserved for tables with fewer than three usable
// rows.
func loadTable(path string, id core.GalaxyID) (curve.GalaxyProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return curve.GalaxyProfile{}, err
	}
	defer f.Close()

	var points []curve.RotationCurvePoint
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		point, ok, err := parseRow(text, id)
		if err != nil {
			return curve.GalaxyProfile{}, fmt.Errorf("line %d: %w", line, err)
		}
		if ok {
			points = append(points, point)
		}
	}
	if err := scanner.Err(); err != nil {
		return curve.GalaxyProfile{}, err
	}
	if len(points) < 3 {
		return curve.GalaxyProfile{}, fmt.Errorf("only %d usable rows", len(points))
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Radius < points[j].Radius })
	return curve.GalaxyProfile{ID: id, Points: points}, nil
}

// parseRow converts one data row to a rotation-curve point. The boolean is
// false for rows that parse but fail the physical validity cuts (r > 0,
// v_obs > 0, finite accelerations).
func parseRow(text string, id core.GalaxyID) (curve.RotationCurvePoint, bool, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return curve.RotationCurvePoint{}, false, fmt.Errorf("expected at least 3 columns, got %d", len(fields))
	}

	// Columns beyond e_Vobs default to zero when absent.
	vals := make([]float64, 6)
	for i := 0; i < 6 && i < len(fields); i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return curve.RotationCurvePoint{}, false, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}
	r, vObs, vErr, vGas, vDisk, vBul := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	if r <= 0 || vObs <= 0 || vErr < 0 {
		return curve.RotationCurvePoint{}, false, nil
	}

	vBarSq := vGas*vGas + upsilonDisk*vDisk*vDisk + upsilonBulge*vBul*vBul

	point := curve.RotationCurvePoint{
		Galaxy:  id,
		Radius:  r,
		GBar:    vBarSq / r * kmsSqPerKpcToSI,
		GObs:    vObs * vObs / r * kmsSqPerKpcToSI,
		GObsErr: 2 * vObs * vErr / r * kmsSqPerKpcToSI,
	}
	return point, point.IsFinite(), nil
}
