package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/rickersim/internal/analysis"
	"github.com/san-kum/rickersim/internal/automation"
	"github.com/san-kum/rickersim/internal/dynamo"
)

var collectionHeader = []string{"set", "r", "k", "n0", "step", "n"}

var ErrMalformedTable = errors.New("storage: malformed trajectory table")

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCollectionCSV writes one row per (set, step) with the header
// set,r,k,n0,step,n. Values round-trip exactly; non-finite values are
// written as NaN, +Inf and -Inf.
func WriteCollectionCSV(w io.Writer, coll *dynamo.Collection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(collectionHeader); err != nil {
		return err
	}

	for _, row := range coll.Rows() {
		rec := []string{
			strconv.Itoa(row.Set),
			formatFloat(row.Params.R),
			formatFloat(row.Params.K),
			formatFloat(row.Params.N0),
			strconv.Itoa(row.Step),
			formatFloat(row.N),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCollectionCSV parses a table written by WriteCollectionCSV. Sets must
// appear in index order with consecutive steps starting at 1.
func ReadCollectionCSV(r io.Reader) (*dynamo.Collection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(collectionHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return dynamo.NewCollection(0), nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range collectionHeader {
		if header[i] != h {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrMalformedTable, i+1, header[i], h)
		}
	}

	coll := dynamo.NewCollection(0)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}

		switch {
		case row.Set == coll.Len() && row.Step == 1:
			coll.Entries = append(coll.Entries, dynamo.Trajectory{Params: row.Params})
		case row.Set != coll.Len()-1:
			return nil, fmt.Errorf("%w: line %d: set %d out of order", ErrMalformedTable, line, row.Set)
		}

		tr := &coll.Entries[row.Set]
		if row.Step != len(tr.Values)+1 {
			return nil, fmt.Errorf("%w: line %d: step %d, want %d", ErrMalformedTable, line, row.Step, len(tr.Values)+1)
		}
		tr.Values = append(tr.Values, row.N)
	}

	for i := range coll.Entries {
		coll.Entries[i].Params.Steps = len(coll.Entries[i].Values)
	}
	return coll, nil
}

func parseRow(rec []string) (dynamo.Row, error) {
	var row dynamo.Row
	var err error

	if row.Set, err = strconv.Atoi(rec[0]); err != nil {
		return row, err
	}
	if row.Params.R, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return row, err
	}
	if row.Params.K, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return row, err
	}
	if row.Params.N0, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return row, err
	}
	if row.Step, err = strconv.Atoi(rec[4]); err != nil {
		return row, err
	}
	if row.N, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return row, err
	}
	return row, nil
}

// Value is a float64 that encodes NaN and infinities as JSON strings.
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte(strconv.Quote(formatFloat(f))), nil
	}
	return []byte(formatFloat(f)), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

func values(src []float64) []Value {
	out := make([]Value, len(src))
	for i, v := range src {
		out[i] = Value(v)
	}
	return out
}

type TrajectoryExport struct {
	Set    int             `json:"set"`
	Params dynamo.ParamSet `json:"params"`
	Values []Value         `json:"values"`
}

type CollectionExport struct {
	Generator    string             `json:"generator,omitempty"`
	Trajectories []TrajectoryExport `json:"trajectories"`
}

func NewCollectionExport(generator string, coll *dynamo.Collection) CollectionExport {
	out := CollectionExport{
		Generator:    generator,
		Trajectories: make([]TrajectoryExport, coll.Len()),
	}
	for i, tr := range coll.Entries {
		out.Trajectories[i] = TrajectoryExport{Set: i, Params: tr.Params, Values: values(tr.Values)}
	}
	return out
}

// Collection converts the export back into trajectories.
func (e CollectionExport) Collection() *dynamo.Collection {
	coll := dynamo.NewCollection(len(e.Trajectories))
	for i, t := range e.Trajectories {
		vals := make([]float64, len(t.Values))
		for j, v := range t.Values {
			vals[j] = float64(v)
		}
		coll.Entries[i] = dynamo.Trajectory{Params: t.Params, Values: vals}
	}
	return coll
}

type StabilityExport struct {
	R        float64 `json:"r"`
	N0       float64 `json:"n0"`
	Steps    int     `json:"steps"`
	Exponent Value   `json:"exponent"`
}

func NewStabilityExport(results []dynamo.Stability) []StabilityExport {
	out := make([]StabilityExport, len(results))
	for i, s := range results {
		out[i] = StabilityExport{R: s.R, N0: s.N0, Steps: s.Steps, Exponent: Value(s.Exponent)}
	}
	return out
}

type PairExport struct {
	R float64 `json:"r"`
	N Value   `json:"n"`
}

func NewPairsExport(pairs []analysis.Pair) []PairExport {
	out := make([]PairExport, len(pairs))
	for i, p := range pairs {
		out[i] = PairExport{R: p.R, N: Value(p.N)}
	}
	return out
}

type TrialExport struct {
	Trial   int   `json:"trial"`
	N0      Value `json:"n0"`
	Final   Value `json:"final"`
	Bounded bool  `json:"bounded"`
}

func NewTrialsExport(results []automation.MonteCarloResult) []TrialExport {
	out := make([]TrialExport, len(results))
	for i, r := range results {
		out[i] = TrialExport{Trial: r.Trial, N0: Value(r.N0), Final: Value(r.Final), Bounded: r.Bounded}
	}
	return out
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePairsCSV writes (r, n) points of a bifurcation diagram.
func WritePairsCSV(w io.Writer, pairs []analysis.Pair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"r", "n"}); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := cw.Write([]string{formatFloat(p.R), formatFloat(p.N)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStabilityCSV writes (r, lambda) pairs.
func WriteStabilityCSV(w io.Writer, results []dynamo.Stability) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"r", "n0", "steps", "lambda"}); err != nil {
		return err
	}
	for _, s := range results {
		rec := []string{formatFloat(s.R), formatFloat(s.N0), strconv.Itoa(s.Steps), formatFloat(s.Exponent)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
