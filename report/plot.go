package report

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Plot renders the sampled cost trajectories of the given reports as one
// ASCII chart. Reports with fewer than two samples are skipped. It
// returns "" when nothing is left to draw.
func Plot(reports []*Report, width, height int) string {
	var (
		series [][]float64
		names  []string
	)
	for _, r := range reports {
		if len(r.Samples) < 2 {
			continue
		}
		ys := make([]float64, len(r.Samples))
		for i, s := range r.Samples {
			ys[i] = float64(s.Cost)
		}
		series = append(series, ys)
		names = append(names, r.Algorithm)
	}
	if len(series) == 0 {
		return ""
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("inter-server cost: " + strings.Join(names, ", ")),
	}
	if len(series) == 1 {
		return asciigraph.Plot(series[0], opts...)
	}
	return asciigraph.PlotMany(series, opts...)
}
