// Package pid implements the scalar PID controller (C6), generalizing the
// teacher's PID1D (pkg/core/math/filter/pid/pid1d.go) with the i_zone-gated
// integral reset and d_alpha-filtered derivative confirmed against
// original_source/common/src/components/pid.rs's PidController::update —
// the deployed variant per SPEC_FULL.md's resolution of spec.md §9 Open
// Question (i).
package pid

import "github.com/chewxy/math32"

// Config mirrors spec.md §3's PidConfig: {kp, ki, kd, d_alpha, i_zone,
// max_integral, max_output}.
type Config struct {
	KP, KI, KD float32
	DAlpha     float32 // [0,1], low-pass coefficient for the derivative term
	IZone      float32 // integral action active only while |error| < IZone
	MaxI       float32 // >= 0
	MaxOutput  float32 // >= 0
}

// Result is the PID trace recorded for telemetry: {error, p, i, d,
// correction}.
type Result struct {
	Error      float32
	P, I, D    float32
	Correction float32
}

// Controller holds the per-tick PID state: {last_error: optional, integral:
// scalar}.
type Controller struct {
	hasLast   bool
	lastError float32
	integral  float32
}

// New returns a fresh controller with no prior error (first tick's
// derivative is 0).
func New() *Controller {
	return &Controller{}
}

// Reset clears the integrator and forgets the last error, matching the
// PidController::reset behavior (and the arming-gate requirement in
// spec.md §4.6: "When gating off, integrator state is reset.").
func (c *Controller) Reset() {
	*c = Controller{}
}

func (c *Controller) Integral() float32 { return c.integral }

// Update runs one tick of the controller for the given error (meters for
// depth; degrees for rotational axes) and sample interval dt.
func (c *Controller) Update(errVal float32, dt float32, cfg Config) Result {
	c.integral += errVal * dt
	c.integral = clamp(c.integral, -cfg.MaxI, cfg.MaxI)

	var derivative float32
	if c.hasLast {
		filtered := cfg.DAlpha*errVal + (1-cfg.DAlpha)*c.lastError
		derivative = (filtered - c.lastError) / dt
	} else {
		c.hasLast = true
	}
	c.lastError = errVal

	p := cfg.KP * errVal
	integralTerm := cfg.KI * c.integral
	d := cfg.KD * derivative

	var i float32
	if math32.Abs(errVal) < cfg.IZone {
		i = integralTerm
	} else {
		c.integral = 0
		i = 0
	}

	correction := clamp(p+i+d, -cfg.MaxOutput, cfg.MaxOutput)

	return Result{Error: errVal, P: p, I: i, D: d, Correction: correction}
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
