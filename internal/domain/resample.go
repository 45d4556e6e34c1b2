package domain

import "gonum.org/v1/gonum/stat"

// Resample averages consecutive blocks of interval values. The final block may
// be shorter. An interval of 1 or less returns series unchanged.
func Resample(series []float64, interval int) []float64 {
	if interval <= 1 {
		return series
	}
	out := make([]float64, 0, blocks(len(series), interval))
	for start := 0; start < len(series); start += interval {
		end := min(start+interval, len(series))
		out = append(out, stat.Mean(series[start:end], nil))
	}
	return out
}

// ResampleTimes labels each block of interval timestamps with its first entry.
func ResampleTimes(times []string, interval int) []string {
	if interval <= 1 {
		return times
	}
	out := make([]string, 0, blocks(len(times), interval))
	for start := 0; start < len(times); start += interval {
		out = append(out, times[start])
	}
	return out
}

// ResampleMatrix block-averages a row-major time×feature matrix along time.
// Missing cells in short rows count as 0. A nil matrix stays nil.
func ResampleMatrix(matrix [][]float64, interval int) [][]float64 {
	if matrix == nil || interval <= 1 {
		return matrix
	}
	width := 0
	for _, row := range matrix {
		width = max(width, len(row))
	}

	out := make([][]float64, 0, blocks(len(matrix), interval))
	column := make([]float64, 0, interval)
	for start := 0; start < len(matrix); start += interval {
		block := matrix[start:min(start+interval, len(matrix))]
		row := make([]float64, width)
		for f := range width {
			column = column[:0]
			for _, src := range block {
				if f < len(src) {
					column = append(column, src[f])
				} else {
					column = append(column, 0)
				}
			}
			row[f] = stat.Mean(column, nil)
		}
		out = append(out, row)
	}
	return out
}

// ResampleDataset reduces the time axis and every matrix of ds by interval.
// This is the authoritative path: the result replaces the whole time axis.
func ResampleDataset(ds Dataset, interval int) Dataset {
	if interval <= 1 {
		return ds
	}
	ds.Times = ResampleTimes(ds.Times, interval)
	ds.Flow = ResampleMatrix(ds.Flow, interval)
	ds.Velocity = ResampleMatrix(ds.Velocity, interval)
	ds.Depth = ResampleMatrix(ds.Depth, interval)
	ds.ResampleHours = max(ds.ResampleHours, 1) * interval
	return ds
}

func blocks(n, interval int) int {
	return (n + interval - 1) / interval
}
