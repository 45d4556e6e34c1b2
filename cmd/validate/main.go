// Command validate performs integrity checks on a dataset payload before it
// is served to the animator: matrix shapes, feature id alignment between the
// geometry and series sources, value sanity, resampling consistency, and
// snapshot construction.
//
// Usage:
//
//	go run ./cmd/validate -payload data/fixture/pulse.json -resample 2,3,6,24
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
)

// maxReported caps how many offending values a phase lists per check.
const maxReported = 10

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	payload := flag.String("payload", "", "path to a dataset payload JSON file")
	resample := flag.String("resample", "2,3,6,24", "comma-separated resample intervals to check")
	flag.Parse()

	if *payload == "" {
		flag.Usage()
		os.Exit(1)
	}

	intervals, err := parseIntervals(*resample)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(*payload, intervals); code != 0 {
		os.Exit(code)
	}
}

func run(path string, intervals []int) int {
	// Fixed clock so the reported load time is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Streamflow Dataset Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read payload: %v\n", err)
		return 1
	}
	ds, err := domain.ParseDatasetPayload(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse payload: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateShape(ds),
		validateFeatureIDs(ds),
		validateValues(ds),
		validateResampling(ds, intervals),
		validateSnapshot(ds),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Dataset: %d geometry features, %d series features, %d timesteps\n",
		len(ds.GeometryIDs), len(ds.SeriesIDs), len(ds.Times))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func parseIntervals(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid resample interval %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// ── Phase 1: shape ──

func validateShape(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 1: Matrix shape"}
	if err := ds.Validate(); err != nil {
		p.errorf("%v", err)
	}
	if len(ds.Times) == 0 {
		p.errorf("time axis is empty")
	}
	for i := 1; i < len(ds.Times); i++ {
		prev, err1 := time.Parse("2006-01-02T15:04:05", ds.Times[i-1])
		cur, err2 := time.Parse("2006-01-02T15:04:05", ds.Times[i])
		if err1 != nil || err2 != nil {
			continue
		}
		if !cur.After(prev) {
			p.errorf("time axis not increasing at index %d: %s after %s", i, ds.Times[i], ds.Times[i-1])
			if len(p.errors) >= maxReported {
				break
			}
		}
	}
	return p
}

// ── Phase 2: feature ids ──

func validateFeatureIDs(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 2: Feature id alignment"}

	r := domain.ReconcileFeatureIDs(ds)
	if r.Matched == 0 && len(ds.GeometryIDs) > 0 {
		p.errorf("no geometry feature matches a series feature")
	}
	for i, id := range r.GeometryOnly {
		if i == maxReported {
			p.errorf("... and %d more geometry-only features", len(r.GeometryOnly)-maxReported)
			break
		}
		p.errorf("geometry feature %s has no series", id)
	}
	for i, id := range r.SeriesOnly {
		if i == maxReported {
			p.errorf("... and %d more series-only features", len(r.SeriesOnly)-maxReported)
			break
		}
		p.errorf("series feature %s has no geometry", id)
	}

	checkDuplicates(p, "geometry", ds.GeometryIDs)
	checkDuplicates(p, "series", ds.SeriesIDs)
	return p
}

func checkDuplicates(p *phase, source string, raw []string) {
	seen := make(map[domain.FeatureID]string, len(raw))
	for _, r := range raw {
		id := domain.NormalizeFeatureID(r)
		if first, dup := seen[id]; dup {
			p.errorf("%s ids %q and %q both normalize to %s", source, first, r, id)
			continue
		}
		seen[id] = r
	}
}

// ── Phase 3: values ──

func validateValues(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 3: Value sanity"}
	for _, v := range domain.Variables {
		m := ds.Matrix(v)
		reported := 0
		for t, row := range m {
			for f, x := range row {
				if reported >= maxReported {
					break
				}
				switch {
				case math.IsNaN(x) || math.IsInf(x, 0):
					p.errorf("%s[%d][%d] is not finite", v, t, f)
					reported++
				case x < 0 && v != domain.Velocity:
					p.errorf("%s[%d][%d] is negative: %v", v, t, f, x)
					reported++
				}
			}
		}
	}
	return p
}

// ── Phase 4: resampling ──

// validateResampling checks that block means preserve each series' overall
// mean once weighted by block length.
func validateResampling(ds domain.Dataset, intervals []int) *phase {
	p := &phase{name: "Phase 4: Resampling consistency"}
	if ds.Validate() != nil || len(ds.Times) == 0 {
		p.errorf("skipped: dataset shape is invalid")
		return p
	}

	n := len(ds.Times)
	for _, interval := range intervals {
		rs := domain.ResampleDataset(ds, interval)
		want := (n + interval - 1) / interval
		if len(rs.Times) != want {
			p.errorf("interval %d: %d timesteps, want %d", interval, len(rs.Times), want)
			continue
		}
		if rs.ResampleHours != max(ds.ResampleHours, 1)*interval {
			p.errorf("interval %d: resample_hours %d, want %d", interval, rs.ResampleHours, max(ds.ResampleHours, 1)*interval)
		}

		weights := make([]float64, want)
		for b := range weights {
			weights[b] = float64(min(interval, n-b*interval))
		}

		reported := 0
		for f := range ds.Flow[0] {
			orig := column(ds.Flow, f)
			blocks := column(rs.Flow, f)
			if !scalar.EqualWithinAbsOrRel(stat.Mean(orig, nil), stat.Mean(blocks, weights), 1e-9, 1e-9) {
				p.errorf("interval %d: feature column %d mean not preserved", interval, f)
				reported++
				if reported >= maxReported {
					break
				}
			}
		}
	}
	return p
}

func column(m [][]float64, f int) []float64 {
	out := make([]float64, len(m))
	for t, row := range m {
		out[t] = row[f]
	}
	return out
}

// ── Phase 5: snapshot ──

func validateSnapshot(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 5: Snapshot construction"}
	snap, err := domain.BuildSnapshot(ds)
	if err != nil {
		p.errorf("build snapshot: %v", err)
		return p
	}

	if snap.Range.Empty() {
		p.errorf("flow range is empty: every channel is dry")
		return p
	}
	if snap.Range.Min <= 0 || snap.Range.Min > snap.Range.Max {
		p.errorf("flow range invalid: min=%v max=%v", snap.Range.Min, snap.Range.Max)
	}

	lo := domain.StyleFor(snap.Range.Min, snap.Range)
	hi := domain.StyleFor(snap.Range.Max, snap.Range)
	if snap.Range.Min < snap.Range.Max && lo.Width != domain.MinWidth {
		p.errorf("style at range min has width %v, want %v", lo.Width, domain.MinWidth)
	}
	if hi.Width != domain.MaxWidth {
		p.errorf("style at range max has width %v, want %v", hi.Width, domain.MaxWidth)
	}

	fmt.Printf("Snapshot %s: flow range [%g, %g], loaded at %s\n",
		snap.ID, snap.Range.Min, snap.Range.Max, snap.LoadedAt.Format(time.RFC3339))
	return p
}
