// Command genfixture writes a synthetic dataset payload in the dataset
// service's wire shape. Each channel carries a flood pulse whose peak arrives
// later the further downstream the channel sits, which makes the animation
// easy to eyeball.
//
// Usage:
//
//	go run ./cmd/genfixture -features 200 -hours 72 -out data/fixture/pulse.json
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
)

var baseTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const timeLayout = "2006-01-02T15:04:05"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	features := flag.Int("features", 100, "number of channel features")
	hours := flag.Int("hours", 48, "number of hourly timesteps")
	seed := flag.Uint64("seed", 1, "random seed for per-channel variation")
	prefixed := flag.Bool("prefixed", false, "emit series ids with the wb- prefix")
	out := flag.String("out", "", "output path for the payload JSON")
	flag.Parse()

	if *out == "" || *features < 1 || *hours < 1 {
		flag.Usage()
		return fmt.Errorf("missing or invalid flags: -out, -features, -hours")
	}

	ds := generate(*features, *hours, *seed, *prefixed)
	data, err := domain.EncodeDatasetPayload(ds)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d features x %d timesteps to %s", *features, *hours, *out)
	return nil
}

func generate(numFeatures, numTimes int, seed uint64, prefixed bool) domain.Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // fixture data, not security sensitive

	geometry := make([]string, numFeatures)
	series := make([]string, numFeatures)
	for f := range numFeatures {
		raw := strconv.Itoa(1000 + f)
		geometry[f] = raw
		series[f] = raw
		if prefixed {
			series[f] = string(domain.NormalizeFeatureID(raw))
		}
	}

	times := make([]string, numTimes)
	for t := range numTimes {
		times[t] = baseTime.Add(time.Duration(t) * time.Hour).Format(timeLayout)
	}

	type channel struct{ base, peak, arrival, spread float64 }
	channels := make([]channel, numFeatures)
	for f := range channels {
		reach := float64(f) / float64(numFeatures)
		channels[f] = channel{
			base:    0.5 + rng.Float64()*2,
			peak:    20 + 180*reach + rng.Float64()*20,
			arrival: float64(numTimes) * (0.2 + 0.6*reach),
			spread:  2 + rng.Float64()*4,
		}
	}

	flow := make([][]float64, numTimes)
	velocity := make([][]float64, numTimes)
	depth := make([][]float64, numTimes)
	for t := range numTimes {
		flow[t] = make([]float64, numFeatures)
		velocity[t] = make([]float64, numFeatures)
		depth[t] = make([]float64, numFeatures)
		for f, c := range channels {
			d := (float64(t) - c.arrival) / c.spread
			q := c.base + c.peak*math.Exp(-d*d/2)
			flow[t][f] = round(q, 3)
			velocity[t][f] = round(0.3*math.Pow(q, 0.34), 3)
			depth[t][f] = round(0.25*math.Pow(q, 0.4), 3)
		}
	}

	return domain.Dataset{
		GeometryIDs:   geometry,
		Bounds:        [4]float64{-97.9, 30.0, -97.4, 30.5},
		Times:         times,
		SeriesIDs:     series,
		Flow:          flow,
		Velocity:      velocity,
		Depth:         depth,
		ResampleHours: 1,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
