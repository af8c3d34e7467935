// Package voltage implements the safety/brownout monitor (C11), translated
// from original_source/robot/src/plugins/monitor/voltage.rs's check_voltage
// into the teacher's component-update idiom.
package voltage

import "github.com/itohio/rovctl/pkg/logger"

// Thresholds per spec.md §4.11. The lower gate suppresses zero-reading
// startup transients.
const (
	lowGate      = 1.0
	warnGate     = 10.0
	brownoutGate = 7.0
)

// Monitor tracks the advisory BrownedOut flag derived from measured
// voltage; the current draw passed to Update is only logged.
type Monitor struct {
	BrownedOut bool
}

// Update applies the threshold rules on a MeasuredVoltage reading. The flag
// is advisory to downstream actuation and to the lifetime-statistics
// collaborator (pkg/telemetry).
func (m *Monitor) Update(measuredVoltage, currentDraw float32) {
	if measuredVoltage > lowGate && measuredVoltage < warnGate {
		logger.Log.Warn().Float32("voltage", measuredVoltage).Float32("current", currentDraw).Msg("low voltage")
	}
	if measuredVoltage > lowGate && measuredVoltage < brownoutGate {
		m.BrownedOut = true
	} else {
		m.BrownedOut = false
	}
}
