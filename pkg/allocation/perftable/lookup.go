package perftable

import "github.com/itohio/rovctl/pkg/allocation/types"

// LookupByForce returns the interpolated record bracketing f (which may be
// negative for reverse thrust).
func (t *Table) LookupByForce(f float32, mode InterpMode, extrapolate bool) Record {
	return t.lookup(t.byForce, t.forceBuckets, t.forceMin, t.forceMax, f, func(r Record) float32 { return r.Force }, mode, extrapolate)
}

// LookupByCurrent returns the interpolated record bracketing signedCurrent
// (current signed by the sign of its corresponding force, so the lookup is
// monotone across zero).
func (t *Table) LookupByCurrent(signedCurrent float32, mode InterpMode, extrapolate bool) Record {
	return t.lookup(t.byCurrent, t.currentBuckets, t.currentMin, t.currentMax, signedCurrent, func(r Record) float32 { return r.Current }, mode, extrapolate)
}

func (t *Table) lookup(sorted []Record, buckets []bucket, minK, maxK, key float32, keyOf func(Record) float32, mode InterpMode, extrapolate bool) Record {
	if len(sorted) == 1 {
		return sorted[0]
	}
	cell := cellIndex(buckets, minK, maxK, key)
	b := buckets[cell]
	lo, hi := b.lo, b.hi
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo >= hi {
		if lo > 0 {
			lo = hi - 1
		} else {
			hi = lo + 1
		}
	}
	// The bucket brackets its cell's lower boundary; step to the
	// neighbouring pair when the key lies past a sample inside the cell.
	for hi < len(sorted)-1 && key > keyOf(sorted[hi]) {
		lo, hi = hi, hi+1
	}
	for lo > 0 && key < keyOf(sorted[lo]) {
		lo, hi = lo-1, lo
	}
	a, c := sorted[lo], sorted[hi]
	ka, kc := keyOf(a), keyOf(c)

	var frac float32
	if kc != ka {
		frac = (key - ka) / (kc - ka)
	}
	if !extrapolate {
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
	}

	switch mode {
	case Lerp:
		return lerpRecord(a, c, frac)
	case LerpDirection:
		r := lerpRecord(a, c, frac)
		r.RawSignal = t.mirror(r.RawSignal)
		return r
	case Direction:
		r := nearest(a, c, frac)
		r.RawSignal = t.mirror(r.RawSignal)
		return r
	default: // OriginalData
		return nearest(a, c, frac)
	}
}

// mirror remaps a raw signal for counter-clockwise spin:
// rawCCW = centerSpan - raw, where centerSpan = 2*center.
func (t *Table) mirror(raw float32) float32 {
	return 2*t.center - raw
}

// LookupForDirection applies the spec's C3 "forces -> commands" rule:
// interpolate by force using LerpDirection when the thruster spins
// counter-clockwise, or Lerp when it spins clockwise (clockwise needs no
// mirroring since the calibration table's own sign convention already
// matches it).
func (t *Table) LookupForDirection(force float32, dir types.SpinDirection, extrapolate bool) Record {
	if dir == types.CounterClockwise {
		return t.LookupByForce(force, LerpDirection, extrapolate)
	}
	return t.LookupByForce(force, Lerp, extrapolate)
}

func lerpRecord(a, c Record, frac float32) Record {
	return Record{
		Force:      lerp(a.Force, c.Force, frac),
		Current:    lerp(a.Current, c.Current, frac),
		RawSignal:  lerp(a.RawSignal, c.RawSignal, frac),
		RPM:        lerp(a.RPM, c.RPM, frac),
		Voltage:    lerp(a.Voltage, c.Voltage, frac),
		Power:      lerp(a.Power, c.Power, frac),
		Efficiency: lerp(a.Efficiency, c.Efficiency, frac),
	}
}

func nearest(a, c Record, frac float32) Record {
	if frac < 0.5 {
		return a
	}
	return c
}

func lerp(a, b, frac float32) float32 {
	return a + (b-a)*frac
}
