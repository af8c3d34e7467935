// Package telemetry provides the in-process lifetime/tick statistics
// collector. It is the core's half of the lifetime-statistics contract:
// spec.md's Non-goals exclude *persisting* these (an external collaborator's
// job), but the core still accumulates the data that collaborator would
// serialize. The tracked fields are generalized from
// original_source/robot/src/plugins/core/stats.rs's LifetimeStatistics
// field list (PowerOnTime, DriveTime, MaximumDepth, BrownOutCounter,
// BrownOutTime, MaximumVoltage, MinimumVoltage, MaximumCurrent).
package telemetry

import (
	"sync"
	"time"
)

// Stats accumulates lifetime and per-session counters. Safe for concurrent
// use by the tick loop and both hardware bridges.
type Stats struct {
	mu sync.Mutex

	powerOnTime time.Duration
	driveTime   time.Duration

	maxDepth    float32
	haveDepth   bool
	maxVoltage  float32
	minVoltage  float32
	haveVoltage bool
	maxCurrent  float32

	brownOutCount int
	brownOutTime  time.Duration

	deadManTrips int

	tickCount    uint64
	tickTotal    time.Duration
	tickMax      time.Duration
}

func New() *Stats { return &Stats{} }

// ObserveTick records one tick loop iteration's wall-clock duration.
func (s *Stats) ObserveTick(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickCount++
	s.tickTotal += d
	if d > s.tickMax {
		s.tickMax = d
	}
}

// AddPowerOnTime accumulates elapsed wall-clock time the vehicle has been
// powered, regardless of whether actuators are driving.
func (s *Stats) AddPowerOnTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.powerOnTime += d
}

// AddDriveTime accumulates elapsed time with at least one actuator armed.
func (s *Stats) AddDriveTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driveTime += d
}

// ObserveDepth records a depth sample (meters, positive down) against the
// running maximum.
func (s *Stats) ObserveDepth(depth float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveDepth || depth > s.maxDepth {
		s.maxDepth = depth
		s.haveDepth = true
	}
}

// ObserveVoltage records a voltage sample against the running min/max.
func (s *Stats) ObserveVoltage(v float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.haveVoltage {
		s.maxVoltage, s.minVoltage, s.haveVoltage = v, v, true
		return
	}
	if v > s.maxVoltage {
		s.maxVoltage = v
	}
	if v < s.minVoltage {
		s.minVoltage = v
	}
}

// ObserveCurrent records a current draw sample against the running maximum.
func (s *Stats) ObserveCurrent(a float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a > s.maxCurrent {
		s.maxCurrent = a
	}
}

// RecordBrownOut records one brownout episode of the given duration, per
// pkg/safety/voltage's BrownedOut transition.
func (s *Stats) RecordBrownOut(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brownOutCount++
	s.brownOutTime += d
}

// RecordDeadManTrip records one dead-man disarm event from either hardware
// bridge.
func (s *Stats) RecordDeadManTrip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadManTrips++
}

// Snapshot is a point-in-time copy of all counters, for an external
// collaborator to poll (e.g. for persistence or display) without holding
// the collector's lock.
type Snapshot struct {
	PowerOnTime   time.Duration
	DriveTime     time.Duration
	MaximumDepth  float32
	MaximumVoltage float32
	MinimumVoltage float32
	MaximumCurrent float32
	BrownOutCount int
	BrownOutTime  time.Duration
	DeadManTrips  int
	TickCount     uint64
	TickAvg       time.Duration
	TickMax       time.Duration
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var avg time.Duration
	if s.tickCount > 0 {
		avg = s.tickTotal / time.Duration(s.tickCount)
	}
	return Snapshot{
		PowerOnTime:    s.powerOnTime,
		DriveTime:      s.driveTime,
		MaximumDepth:   s.maxDepth,
		MaximumVoltage: s.maxVoltage,
		MinimumVoltage: s.minVoltage,
		MaximumCurrent: s.maxCurrent,
		BrownOutCount:  s.brownOutCount,
		BrownOutTime:   s.brownOutTime,
		DeadManTrips:   s.deadManTrips,
		TickCount:      s.tickCount,
		TickAvg:        avg,
		TickMax:        s.tickMax,
	}
}
