// Package perftable implements the motor-performance table (C1): a sorted,
// deduplicated calibration table that maps signed thrust <-> signed current
// <-> raw signal via interpolated lookup, with an O(1)-amortized bucketed
// index. New code (the teacher has no calibration-table component); the
// bucketing idiom follows the numeric-tolerance conventions used throughout
// pkg/allocation/matops.
package perftable

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/chewxy/math32"

	"github.com/itohio/rovctl/pkg/roverrors"
)

// Record is one calibration sample. RPM, Voltage, Power, and Efficiency are
// optional CSV columns; a column absent from the file leaves its field 0.
type Record struct {
	Force      float32
	Current    float32
	RawSignal  float32
	RPM        float32
	Voltage    float32
	Power      float32
	Efficiency float32
}

// InterpMode selects how lookups interpolate between bracketing records.
type InterpMode int

const (
	// Lerp linearly interpolates all fields between the bracket points.
	Lerp InterpMode = iota
	// LerpDirection lerps, then mirrors RawSignal for CounterClockwise
	// spin: rawCCW = centerSpan - raw, where centerSpan = 2*center.
	LerpDirection
	// Direction takes the nearest bracket point, then mirrors as above.
	Direction
	// OriginalData takes the nearest bracket point unmodified.
	OriginalData
)

type bucket struct {
	lo, hi int // indices into the sorted slice bracketing this cell
}

// Table is a read-only (after Build), process-wide calibration table.
type Table struct {
	byForce   []Record
	byCurrent []Record // Current field here holds signed current (sign copied from force)

	forceBuckets   []bucket
	forceMin       float32
	forceMax       float32
	currentBuckets []bucket
	currentMin     float32
	currentMax     float32

	center float32 // neutral raw signal, used for LerpDirection/Direction mirroring
}

// LoadCSV parses a calibration CSV with at minimum force, current, pwm
// columns, and optional rpm, voltage, power, efficiency columns.
func LoadCSV(r io.Reader, centerRaw float32) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmtConfigError(err)
	}
	if len(rows) < 2 {
		return nil, roverrors.ErrConfig
	}

	header := rows[0]
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	need := []string{"force", "current", "pwm"}
	for _, n := range need {
		if _, ok := col[n]; !ok {
			return nil, roverrors.ErrConfig
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{}
		var perr error
		rec.Force, perr = parseFloat(row, col, "force")
		if perr != nil {
			return nil, fmtConfigError(perr)
		}
		rec.Current, perr = parseFloat(row, col, "current")
		if perr != nil {
			return nil, fmtConfigError(perr)
		}
		rec.RawSignal, perr = parseFloat(row, col, "pwm")
		if perr != nil {
			return nil, fmtConfigError(perr)
		}
		if i, ok := col["rpm"]; ok && i < len(row) {
			rec.RPM = parseFloatOptional(row[i])
		}
		if i, ok := col["voltage"]; ok && i < len(row) {
			rec.Voltage = parseFloatOptional(row[i])
		}
		if i, ok := col["power"]; ok && i < len(row) {
			rec.Power = parseFloatOptional(row[i])
		}
		if i, ok := col["efficiency"]; ok && i < len(row) {
			rec.Efficiency = parseFloatOptional(row[i])
		}
		if !isFinite(rec.Force) || !isFinite(rec.Current) || !isFinite(rec.RawSignal) {
			return nil, roverrors.ErrConfig
		}
		records = append(records, rec)
	}

	return Build(records, centerRaw)
}

// Build constructs a Table from in-memory records (exported for tests and
// for configs that embed calibration data directly).
func Build(records []Record, centerRaw float32) (*Table, error) {
	if len(records) < 2 {
		return nil, roverrors.ErrConfig
	}

	byForce := dedupeSortBy(records, func(r Record) float32 { return r.Force })

	withSignedCurrent := make([]Record, len(records))
	copy(withSignedCurrent, records)
	for i := range withSignedCurrent {
		if withSignedCurrent[i].Force < 0 {
			withSignedCurrent[i].Current = -math32.Abs(withSignedCurrent[i].Current)
		} else {
			withSignedCurrent[i].Current = math32.Abs(withSignedCurrent[i].Current)
		}
	}
	byCurrent := dedupeSortBy(withSignedCurrent, func(r Record) float32 { return r.Current })

	t := &Table{
		byForce:   byForce,
		byCurrent: byCurrent,
		center:    centerRaw,
	}
	t.forceBuckets, t.forceMin, t.forceMax = buildIndex(byForce, func(r Record) float32 { return r.Force })
	t.currentBuckets, t.currentMin, t.currentMax = buildIndex(byCurrent, func(r Record) float32 { return r.Current })
	return t, nil
}

func dedupeSortBy(in []Record, key func(Record) float32) []Record {
	out := make([]Record, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	result := out[:0]
	first := true
	var last float32
	for _, r := range out {
		k := key(r)
		if !first && k == last {
			continue
		}
		result = append(result, r)
		last = k
		first = false
	}
	return result
}

// buildIndex computes the smallest adjacent key gap, buckets the key range
// uniformly, and records the bracketing pair of indices for each cell —
// spec.md §4.1's "Index build".
func buildIndex(sorted []Record, key func(Record) float32) ([]bucket, float32, float32) {
	n := len(sorted)
	if n < 2 {
		return nil, 0, 0
	}
	minK, maxK := key(sorted[0]), key(sorted[n-1])
	deltaMin := maxK - minK
	for i := 1; i < n; i++ {
		gap := key(sorted[i]) - key(sorted[i-1])
		if gap > 0 && gap < deltaMin {
			deltaMin = gap
		}
	}
	if deltaMin <= 0 {
		deltaMin = (maxK - minK)
		if deltaMin <= 0 {
			deltaMin = 1
		}
	}
	cells := int(math32.Ceil((maxK-minK)/deltaMin)) + 1
	if cells < 1 {
		cells = 1
	}
	buckets := make([]bucket, cells)
	span := maxK - minK
	for c := 0; c < cells; c++ {
		var cellKey float32
		if span == 0 {
			cellKey = minK
		} else {
			cellKey = minK + span*float32(c)/float32(cells-1)
		}
		idx := bracketIndex(sorted, key, cellKey)
		buckets[c] = bucket{lo: idx, hi: idx + 1}
	}
	return buckets, minK, maxK
}

// bracketIndex finds i such that key(sorted[i]) <= k <= key(sorted[i+1]),
// via binary search (the per-cell index above makes lookups O(1); this
// search only runs while the index is built, once per cell boundary).
func bracketIndex(sorted []Record, key func(Record) float32, k float32) int {
	n := len(sorted)
	i := sort.Search(n, func(i int) bool { return key(sorted[i]) >= k })
	if i == 0 {
		return 0
	}
	if i >= n {
		return n - 2
	}
	return i - 1
}

// cellIndex computes the O(1) cell index for a query key, per spec.md
// §4.1: floor((key-min)/(max-min)*(N-1)), clamped.
func cellIndex(buckets []bucket, minK, maxK, key float32) int {
	n := len(buckets)
	if n == 0 {
		return 0
	}
	span := maxK - minK
	var frac float32
	if span > 0 {
		frac = (key - minK) / span
	}
	idx := int(frac * float32(n-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func parseFloat(row []string, col map[string]int, name string) (float32, error) {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return 0, roverrors.ErrConfig
	}
	v, err := strconv.ParseFloat(row[i], 32)
	if err != nil {
		return 0, roverrors.ErrConfig
	}
	return float32(v), nil
}

func parseFloatOptional(s string) float32 {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0
	}
	return float32(v)
}

func fmtConfigError(err error) error {
	return roverrors.ErrConfig
}
