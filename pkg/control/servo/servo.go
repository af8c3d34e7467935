// Package servo implements the servo accumulator (C8): zeroth- and
// first-order integration of per-servo contributions, slew limiting, and
// reset events. Generalized from the per-channel angle/position mapping in
// x/devices/servo/{array.go,types.go}.
package servo

import "github.com/chewxy/math32"

// Mode selects a servo's integration behavior.
type Mode int

const (
	ZerothOrder Mode = iota
	FirstOrder
)

// ServoID identifies a configured servo channel.
type ServoID string

// Config is a single servo's accumulation configuration.
type Config struct {
	ID       ServoID
	Mode     Mode
	SlewRate float32 // 0 disables slew limiting
}

// Accumulator holds per-servo last-tick position state.
type Accumulator struct {
	configs  map[ServoID]Config
	position map[ServoID]float32
}

func New(configs []Config) *Accumulator {
	a := &Accumulator{
		configs:  make(map[ServoID]Config, len(configs)),
		position: make(map[ServoID]float32, len(configs)),
	}
	for _, c := range configs {
		a.configs[c.ID] = c
	}
	return a
}

// Events carries the tick's reset requests: ResetIDs for individual
// ResetServo(id) events, ResetAll for a ResetServos broadcast.
type Events struct {
	ResetIDs []ServoID
	ResetAll bool
}

// Tick sums contributions addressed to each servo id, applies the
// configured integration mode and slew limit, and returns the new
// per-servo positions (fraction in [-1, 1]) to emit as
// MotorSignal::Percent.
func (a *Accumulator) Tick(contributions map[ServoID]float32, dt float32, ev Events) map[ServoID]float32 {
	resetSet := make(map[ServoID]bool, len(ev.ResetIDs))
	for _, id := range ev.ResetIDs {
		resetSet[id] = true
	}

	out := make(map[ServoID]float32, len(a.configs))
	for id, cfg := range a.configs {
		last := a.position[id]

		if ev.ResetAll || resetSet[id] {
			a.position[id] = 0
			out[id] = 0
			continue
		}

		input := contributions[id]
		var next float32
		switch cfg.Mode {
		case ZerothOrder:
			next = clamp(input, -1, 1)
		case FirstOrder:
			next = clamp(last+input*dt, -1, 1)
		}

		if cfg.SlewRate > 0 {
			maxDelta := cfg.SlewRate * dt
			delta := next - last
			if math32.Abs(delta) > maxDelta {
				if delta > 0 {
					next = last + maxDelta
				} else {
					next = last - maxDelta
				}
			}
		}

		a.position[id] = next
		out[id] = next
	}
	return out
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
