package report

import (
	"github.com/cockroachdb/errors"
	"github.com/montanaflynn/stats"
)

// LoadSummary describes the distribution of server loads.
type LoadSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Spread int     `json:"spread"`
}

// SummarizeLoads computes a LoadSummary. An empty input yields the zero
// summary.
func SummarizeLoads(loads []int) (LoadSummary, error) {
	if len(loads) == 0 {
		return LoadSummary{}, nil
	}
	data := stats.LoadRawData(loads)

	mean, err := stats.Mean(data)
	if err != nil {
		return LoadSummary{}, errors.Wrap(err, "mean load")
	}
	stddev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return LoadSummary{}, errors.Wrap(err, "load stddev")
	}
	lo, err := stats.Min(data)
	if err != nil {
		return LoadSummary{}, errors.Wrap(err, "min load")
	}
	hi, err := stats.Max(data)
	if err != nil {
		return LoadSummary{}, errors.Wrap(err, "max load")
	}

	return LoadSummary{
		Mean:   mean,
		StdDev: stddev,
		Min:    int(lo),
		Max:    int(hi),
		Spread: int(hi - lo),
	}, nil
}
