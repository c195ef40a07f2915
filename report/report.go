package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Header is the CSV header of run summaries.
var Header = []string{"data", "algorithm", "server", "replica", "node", "cost", "time"}

// Phase is the state after one stage of a run.
type Phase struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
	// Spread is the largest minus the smallest server load.
	Spread  int           `json:"spread"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Sample is the inter-server cost after a number of ingested vertices.
type Sample struct {
	Vertices int `json:"vertices"`
	Cost     int `json:"cost"`
}

// Report describes one simulation run.
type Report struct {
	Dataset        string        `json:"data"`
	Algorithm      string        `json:"algorithm"`
	Servers        int           `json:"server"`
	Replicas       int           `json:"replica"`
	LoadConstraint int           `json:"load_constraint"`
	Nodes          int           `json:"node"`
	Edges          int           `json:"edges"`
	Seed           int64         `json:"seed"`
	Cost           int           `json:"cost"`
	Elapsed        time.Duration `json:"elapsed_ns"`
	Phases         []Phase       `json:"phases,omitempty"`
	Samples        []Sample      `json:"samples,omitempty"`
	Loads          LoadSummary   `json:"loads"`
}

// Name returns the run name <data>-<algorithm>-<server>-<replica>-<node>.
func (r *Report) Name() string {
	return fmt.Sprintf("%s-%s-%d-%d-%d", r.Dataset, r.Algorithm, r.Servers, r.Replicas, r.Nodes)
}

// Line returns the result line "cost,elapsed_ms".
func (r *Report) Line() string {
	return fmt.Sprintf("%d,%d", r.Cost, r.Elapsed.Milliseconds())
}

// Record returns the CSV row matching Header.
func (r *Report) Record() []string {
	return []string{
		r.Dataset,
		r.Algorithm,
		strconv.Itoa(r.Servers),
		strconv.Itoa(r.Replicas),
		strconv.Itoa(r.Nodes),
		strconv.Itoa(r.Cost),
		strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
	}
}

// AddPhase appends a phase record.
func (r *Report) AddPhase(name string, cost, spread int, elapsed time.Duration) {
	r.Phases = append(r.Phases, Phase{Name: name, Cost: cost, Spread: spread, Elapsed: elapsed})
}

// AddSample appends a cost sample.
func (r *Report) AddSample(vertices, cost int) {
	r.Samples = append(r.Samples, Sample{Vertices: vertices, Cost: cost})
}

// WriteCSV writes Header followed by one row per report.
func WriteCSV(w io.Writer, reports ...*Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, r := range reports {
		if err := cw.Write(r.Record()); err != nil {
			return errors.Wrapf(err, "write csv row %s", r.Name())
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a summary written by WriteCSV. Only the columns in
// Header are restored.
func ReadCSV(rd io.Reader) ([]*Report, error) {
	records, err := csv.NewReader(rd).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records[0]) != len(Header) || records[0][0] != Header[0] {
		return nil, errors.Newf("unexpected csv header %v", records[0])
	}

	reports := make([]*Report, 0, len(records)-1)
	for i, rec := range records[1:] {
		ints := make([]int, 5)
		for j, col := range rec[2:] {
			n, err := strconv.Atoi(col)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %s", i+2, Header[j+2])
			}
			ints[j] = n
		}
		reports = append(reports, &Report{
			Dataset:   rec[0],
			Algorithm: rec[1],
			Servers:   ints[0],
			Replicas:  ints[1],
			Nodes:     ints[2],
			Cost:      ints[3],
			Elapsed:   time.Duration(ints[4]) * time.Millisecond,
		})
	}
	return reports, nil
}
