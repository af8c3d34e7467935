// Command rovctld is the ROV control-core process entrypoint: it loads the
// vehicle configuration and motor calibration table, builds the allocation
// matrix, runs the C6-C8 tick loop, and drives the C9/C10 hardware bridges
// as cooperative worker tasks, shutting down cleanly on SIGINT/SIGTERM.
// The signal.NotifyContext shutdown path generalizes cmd/manipulator/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/rovctl/pkg/allocation/axismax"
	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/perftable"
	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
	"github.com/itohio/rovctl/pkg/control/movement"
	"github.com/itohio/rovctl/pkg/control/pid"
	"github.com/itohio/rovctl/pkg/control/servo"
	"github.com/itohio/rovctl/pkg/control/twist"
	"github.com/itohio/rovctl/pkg/hardware/motorbridge"
	"github.com/itohio/rovctl/pkg/hardware/pwmbridge"
	"github.com/itohio/rovctl/pkg/logger"
	"github.com/itohio/rovctl/pkg/pipeline"
	"github.com/itohio/rovctl/pkg/rovconfig"
	"github.com/itohio/rovctl/pkg/rovctl"
	"github.com/itohio/rovctl/pkg/safety/voltage"
	"github.com/itohio/rovctl/pkg/telemetry"
	"github.com/itohio/rovctl/x/devices"
	"github.com/itohio/rovctl/x/devices/pca9685"
)

func main() {
	configPath := flag.String("config", "rovctl.yaml", "vehicle configuration file")
	calibPath := flag.String("calibration", "motors.csv", "motor calibration CSV")
	i2cBus := flag.String("i2c", "/dev/i2c-1", "PWM chip I2C bus device")
	dcSerial := flag.String("dc-serial", "", "DC motor controller serial device (required if any motor_config entry uses bus: dc)")
	flag.Parse()

	if err := run(*configPath, *calibPath, *i2cBus, *dcSerial); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, calibPath, i2cBus, dcSerialPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	thrusters, err := cfg.Thrusters()
	if err != nil {
		return fmt.Errorf("rovctld: resolving geometry: %w", err)
	}

	com := vecmath.New(cfg.CenterOfMass[0], cfg.CenterOfMass[1], cfg.CenterOfMass[2])
	alloc, err := matrix.Build(thrusters, com)
	if err != nil {
		return fmt.Errorf("rovctld: building allocation matrix: %w", err)
	}

	table, err := loadCalibration(calibPath)
	if err != nil {
		return err
	}

	channelMap, err := cfg.ChannelMap()
	if err != nil {
		return fmt.Errorf("rovctld: building channel map: %w", err)
	}

	stats := telemetry.New()
	voltMon := &voltage.Monitor{}

	robot := rovctl.NewRobot(thrusters, cfg.MotorAmperageBudget, cfg.JerkLimit)
	robot.MovementAxisMaximums = axismax.Compute(alloc, table, cfg.MotorAmperageBudget, 0.01)

	acc := &movement.Accumulator{
		Allocation: alloc,
		Table:      table,
		CapAmps:    cfg.MotorAmperageBudget,
		JerkLimit:  cfg.JerkLimit,
		OnClampIterationCapExceeded: func() {
			logger.Log.Warn().Msg("rovctld: current clamp hit iteration cap")
		},
	}

	servos := buildServoAccumulator(cfg)
	pids := buildPIDs(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chip, err := openPWMChip(i2cBus)
	if err != nil {
		return fmt.Errorf("rovctld: opening PWM chip: %w", err)
	}
	pwmBr, err := pwmbridge.New(chip, 50)
	if err != nil {
		return fmt.Errorf("rovctld: configuring PWM bridge: %w", err)
	}
	pwmIn := pipeline.StepMakeChan(pipeline.Options{BufferSize: 16})
	pwmBr.In(pwmIn)
	go pwmBr.Run(ctx)

	var dcIn chan pipeline.Data
	if channelMapHasDC(channelMap) {
		dcBr, err := openMotorBridge(dcSerialPath)
		if err != nil {
			return fmt.Errorf("rovctld: opening DC motor bridge: %w", err)
		}
		if err := dcBr.Connect(); err != nil {
			return fmt.Errorf("rovctld: DC motor bridge handshake: %w", err)
		}
		dcIn = pipeline.StepMakeChan(pipeline.Options{BufferSize: 16})
		dcBr.In(dcIn)
		go dcBr.Run(ctx)
	}

	runTickLoop(ctx, cfg, acc, servos, pids, voltMon, stats, robot, channelMap, pwmIn, dcIn)

	logger.Log.Info().Msg("rovctld: shutdown complete")
	return nil
}

func loadConfig(path string) (*rovconfig.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rovctld: opening config: %w", err)
	}
	defer f.Close()
	return rovconfig.Load(f)
}

func loadCalibration(path string) (*perftable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rovctld: opening calibration CSV: %w", err)
	}
	defer f.Close()
	// centerRaw 1500us is the PWM bridge's neutral signal; a DC channel's
	// commanded force is carried through the same allocation-matrix force
	// curve and only its RawSignal is reinterpreted (clamped, truncated)
	// for the signed-fraction DC wire format at dispatch time.
	return perftable.LoadCSV(f, float32(pwmbridge.NeutralUs))
}

func openPWMChip(i2cBus string) (*pca9685.Device, error) {
	bus, err := devices.NewI2C(i2cBus)
	if err != nil {
		return nil, err
	}
	return pca9685.New(bus, pca9685.DefaultAddress), nil
}

func openMotorBridge(dcSerialPath string) (*motorbridge.Bridge, error) {
	if dcSerialPath == "" {
		return nil, fmt.Errorf("rovctld: motor_config has a bus: dc channel but -dc-serial was not set")
	}
	rw, err := devices.NewSerial(dcSerialPath)
	if err != nil {
		return nil, err
	}
	return motorbridge.New(rw), nil
}

func channelMapHasDC(m rovconfig.ChannelMap) bool {
	for _, ch := range m {
		if ch.Kind == rovconfig.DCChannel {
			return true
		}
	}
	return false
}

func buildServoAccumulator(cfg *rovconfig.Config) *servo.Accumulator {
	configs := make([]servo.Config, 0, len(cfg.ServoConfig.Servos))
	for name, entry := range cfg.ServoConfig.Servos {
		mode := servo.ZerothOrder
		if entry.ControlMode == "first_order" {
			mode = servo.FirstOrder
		}
		configs = append(configs, servo.Config{
			ID:       servo.ServoID(name),
			Mode:     mode,
			SlewRate: entry.SlewRate,
		})
	}
	return servo.New(configs)
}

// pidSet holds one controller per stabilized axis, plus the configured
// gains keyed by the name used in the vehicle config's pid_configs map
// (conventionally "depth", "yaw", "pitch", "roll").
type pidSet struct {
	depth, yaw, pitch, roll *pid.Controller
	cfg                     map[string]pid.Config
}

func buildPIDs(cfg *rovconfig.Config) *pidSet {
	s := &pidSet{
		depth: pid.New(), yaw: pid.New(), pitch: pid.New(), roll: pid.New(),
		cfg: make(map[string]pid.Config, len(cfg.PIDConfigs)),
	}
	for name, c := range cfg.PIDConfigs {
		s.cfg[name] = pid.Config{
			KP: c.KP, KI: c.KI, KD: c.KD,
			DAlpha: c.DAlpha, IZone: c.IZone,
			MaxI: c.MaxI, MaxOutput: c.MaxOutput,
		}
	}
	return s
}

// Body-frame unit axes used to turn a PID correction scalar into a
// MovementContribution, per spec.md §4.6: "depth -> negative local-Z
// force; yaw/pitch/roll -> a unit torque along the body axis".
var (
	depthAxis = vecmath.New(0, 0, -1)
	rollAxis  = vecmath.New(0, 1, 0)
	pitchAxis = vecmath.New(1, 0, 0)
	yawAxis   = vecmath.New(0, 0, 1)
)

// stabilizationContributions runs the arming-gated PID pass (C6): each
// axis produces a MovementContribution only while the robot is armed and
// its target/measurement pair is present, and its integrator is reset the
// instant either condition is false, per spec.md §4.6's arming gate.
func stabilizationContributions(robot *rovctl.Robot, pids *pidSet, dt float32) []types.Movement {
	var out []types.Movement

	if robot.Armed && robot.DepthTarget != nil && robot.DepthMeasurement != nil {
		res := pids.depth.Update(*robot.DepthTarget-*robot.DepthMeasurement, dt, pids.cfg["depth"])
		out = append(out, types.Movement{Force: depthAxis.MulC(res.Correction)})
	} else {
		pids.depth.Reset()
	}

	if robot.Armed && robot.OrientationTarget != nil && robot.Orientation != nil {
		target, current := *robot.OrientationTarget, *robot.Orientation

		rollErr := twist.ErrorDegrees(target, current, rollAxis)
		res := pids.roll.Update(rollErr, dt, pids.cfg["roll"])
		out = append(out, types.Movement{Torque: rollAxis.MulC(res.Correction)})

		pitchErr := twist.ErrorDegrees(target, current, pitchAxis)
		res = pids.pitch.Update(pitchErr, dt, pids.cfg["pitch"])
		out = append(out, types.Movement{Torque: pitchAxis.MulC(res.Correction)})

		yawErr := twist.ErrorDegrees(target, current, yawAxis)
		res = pids.yaw.Update(yawErr, dt, pids.cfg["yaw"])
		out = append(out, types.Movement{Torque: yawAxis.MulC(res.Correction)})
	} else {
		pids.roll.Reset()
		pids.pitch.Reset()
		pids.yaw.Reset()
	}

	return out
}

// runTickLoop drives the single-threaded cooperative control loop (C6-C8)
// at cfg.TickHz, dispatching each tick's per-thruster and per-servo
// commands to the hardware bridges' inbound channels without blocking on
// them.
func runTickLoop(
	ctx context.Context,
	cfg *rovconfig.Config,
	acc *movement.Accumulator,
	servos *servo.Accumulator,
	pids *pidSet,
	voltMon *voltage.Monitor,
	stats *telemetry.Stats,
	robot *rovctl.Robot,
	channelMap rovconfig.ChannelMap,
	pwmIn chan pipeline.Data,
	dcIn chan pipeline.Data,
) {
	interval := time.Second / time.Duration(cfg.TickHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := float32(interval.Seconds())
	lastTick := time.Now()
	var brownOutSince time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			start := time.Now()
			stats.AddPowerOnTime(now.Sub(lastTick))
			if robot.Armed {
				stats.AddDriveTime(now.Sub(lastTick))
			}
			lastTick = now

			if robot.MeasuredVoltage != nil && robot.CurrentDraw != nil {
				wasBrownedOut := voltMon.BrownedOut
				voltMon.Update(*robot.MeasuredVoltage, *robot.CurrentDraw)
				stats.ObserveVoltage(*robot.MeasuredVoltage)
				stats.ObserveCurrent(*robot.CurrentDraw)
				if voltMon.BrownedOut && !wasBrownedOut {
					brownOutSince = now
				} else if !voltMon.BrownedOut && wasBrownedOut {
					stats.RecordBrownOut(now.Sub(brownOutSince))
				}
			}
			if robot.DepthMeasurement != nil {
				stats.ObserveDepth(*robot.DepthMeasurement)
			}

			// Both hardware bridges require a fresh Arm(Armed) every tick
			// to satisfy their own max_inactive dead-man window, separate
			// from whether this tick's batch is actually dispatched.
			dispatch(pwmIn, pipeline.Data(pwmbridge.Message{Kind: pwmbridge.MsgArm, Armed: robot.Armed}))
			if dcIn != nil {
				dispatch(dcIn, pipeline.Data(motorbridge.Message{Kind: motorbridge.MsgArm, Armed: robot.Armed}))
			}

			contributions := stabilizationContributions(robot, pids, dt)
			result := acc.Tick(contributions, dt)
			robot.TargetMovement = result.TargetMovement
			robot.ActualMovement = result.ActualMovement

			// Pilot-input servo contributions are wired by the pilot-input
			// collaborator (spec.md's network-sync Non-goal); the
			// accumulator still runs every tick, with no contributions and
			// no reset events, so ZerothOrder servos settle toward 0 and
			// FirstOrder servos hold their position, under slew limiting.
			robot.MotorTargets = servos.Tick(map[servo.ServoID]float32{}, dt, servo.Events{})

			if voltMon.BrownedOut {
				logger.Log.Warn().Msg("rovctld: brownout active, inhibiting thruster/servo actuation")
				dispatchNeutral(pwmIn, dcIn, channelMap)
			} else {
				pwmMsg, dcMsg := buildBridgeMessages(result, robot.MotorTargets, cfg, channelMap)
				dispatch(pwmIn, pipeline.Data(pwmMsg))
				if dcIn != nil {
					dispatch(dcIn, pipeline.Data(dcMsg))
				}
			}

			stats.ObserveTick(time.Since(start))
		}
	}
}

// buildBridgeMessages routes each thruster's commanded output onto the bus
// its motor_config entry names (pkg/rovconfig.ChannelMap), rather than
// assuming every thruster lives on the PWM bus. Servo positions always go
// to the PWM bus, at their servo_config channel.
func buildBridgeMessages(result movement.Result, motorTargets map[servo.ServoID]float32, cfg *rovconfig.Config, channelMap rovconfig.ChannelMap) (pwmbridge.Message, motorbridge.Message) {
	pwmMsg := pwmbridge.Message{Kind: pwmbridge.MsgBatch}
	for i := range pwmMsg.Signals {
		pwmMsg.Signals[i] = pwmbridge.NeutralUs
	}
	dcMsg := motorbridge.Message{Kind: motorbridge.MsgBatch}

	for _, out := range result.Outputs {
		ch, ok := channelMap[out.ID]
		if !ok {
			logger.Log.Warn().Str("thruster", string(out.ID)).Msg("rovctld: no channel mapping for thruster, dropping output")
			continue
		}
		switch ch.Kind {
		case rovconfig.PWMChannel:
			if int(ch.ID) < len(pwmMsg.Signals) {
				pwmMsg.Signals[ch.ID] = clampUint16(out.RawSignal)
			}
		case rovconfig.DCChannel:
			if int(ch.ID) < len(dcMsg.Speeds) {
				dcMsg.Speeds[ch.ID] = clampInt16(out.RawSignal)
				dcMsg.Mask |= 1 << ch.ID
			}
		}
	}

	for name, entry := range cfg.ServoConfig.Servos {
		position, ok := motorTargets[servo.ServoID(name)]
		if !ok || int(entry.Channel) >= len(pwmMsg.Signals) {
			continue
		}
		raw := rovconfig.Channel{Kind: rovconfig.PWMChannel}.DefaultSignalRange().RawFromPercent(position)
		pwmMsg.Signals[entry.Channel] = clampUint16(float32(raw))
	}

	return pwmMsg, dcMsg
}

// dispatchNeutral sends an all-neutral/all-zero batch to whichever bridges
// are wired, used while a brownout is active to inhibit actuation without
// tearing down the hardware bridges' arm state.
func dispatchNeutral(pwmIn, dcIn chan pipeline.Data, channelMap rovconfig.ChannelMap) {
	neutral := pwmbridge.Message{Kind: pwmbridge.MsgBatch}
	for i := range neutral.Signals {
		neutral.Signals[i] = pwmbridge.NeutralUs
	}
	dispatch(pwmIn, pipeline.Data(neutral))
	if dcIn != nil {
		dispatch(dcIn, pipeline.Data(motorbridge.Message{Kind: motorbridge.MsgBatch}))
	}
}

func dispatch(ch chan pipeline.Data, data pipeline.Data) {
	select {
	case ch <- data:
	default:
		logger.Log.Warn().Msg("rovctld: bridge inbound channel full, dropping batch")
	}
}

func clampUint16(v float32) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

func clampInt16(v float32) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}
