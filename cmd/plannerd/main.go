// plannerd runs the motion-planning core against a simulated stepper layer.
// It loads a machine configuration, wires the planner to the executor and
// kinematics, and either feeds a scripted demo queue or idles waiting for an
// embedding to drive it. Intended for bring-up and soak testing without
// motor hardware.
//
// Usage:
//
//	plannerd -config machine.json [options]
//
// Options:
//
//	-config string  Machine configuration file (JSON; built-in default if empty)
//	-demo           Queue a scripted exercise and exit when it drains
//	-realtime       Run the executor with SCHED_FIFO scheduling
//	-trace          Enable debug tracing
//	-metrics        Dump metrics on exit
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leadgtr7/bbctrl-firmware/pkg/axis"
	"github.com/leadgtr7/bbctrl-firmware/pkg/config"
	"github.com/leadgtr7/bbctrl-firmware/pkg/executor"
	"github.com/leadgtr7/bbctrl-firmware/pkg/kinematics"
	"github.com/leadgtr7/bbctrl-firmware/pkg/log"
	"github.com/leadgtr7/bbctrl-firmware/pkg/metrics"
	"github.com/leadgtr7/bbctrl-firmware/pkg/planner"
	"github.com/leadgtr7/bbctrl-firmware/pkg/reactor"
	"github.com/leadgtr7/bbctrl-firmware/pkg/rt"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

// controller is the upstream machine the planner reports into. It tracks
// motion state and ends the process on a fatal alarm.
type controller struct {
	log     *log.Logger
	drained chan struct{}
}

func (c *controller) HardAlarm(code status.Code) {
	c.log.Error("hard alarm", log.Fields{"code": string(code)})
	os.Exit(2)
}

func (c *controller) SetMotionStopped() {
	c.log.Info("motion stopped")
}

func (c *controller) CycleEnd() {
	c.log.Info("cycle end")
	select {
	case c.drained <- struct{}{}:
	default:
	}
}

func (c *controller) AbortArc() {}

// nullEncoder stands in for encoder hardware.
type nullEncoder struct{}

func (nullEncoder) SetEncoderSteps(motor int, steps float64) {}

func main() {
	configFile := flag.String("config", "", "Machine configuration file (JSON)")
	demo := flag.Bool("demo", false, "Queue a scripted exercise and exit when it drains")
	realtime := flag.Bool("realtime", false, "Run the executor with SCHED_FIFO scheduling")
	trace := flag.Bool("trace", false, "Enable debug tracing")
	dumpMetrics := flag.Bool("metrics", false, "Dump metrics on exit")
	flag.Parse()

	logger := log.New("plannerd")
	if *trace {
		logger.SetLevel(log.DEBUG)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			logger.Errorf("config: %v", err)
			os.Exit(1)
		}
	}

	amap := cfg.AxisMap()
	kin, err := kinematics.New(cfg.Kinematics, amap, cfg.StepsPerUnit())
	if err != nil {
		logger.Errorf("kinematics: %v", err)
		os.Exit(1)
	}
	logger.Info("machine configured", log.Fields{
		"kinematics": kin.Type(),
		"buffers":    cfg.PlanBuffers,
	})

	registry := metrics.NewRegistry()
	r := reactor.New()
	r.Run()
	defer func() {
		r.End()
		r.Wait()
	}()

	ctrl := &controller{log: logger.Component("machine"), drained: make(chan struct{}, 1)}
	exec := executor.New(r, &executor.LogSink{Log: logger.Component("stepper")}, logger.Component("exec"))

	p := planner.New(cfg.PlanBuffers, cfg.SegmentTime, planner.Deps{
		Kinematics: kin,
		Stepper:    exec,
		Encoder:    nullEncoder{},
		Machine:    ctrl,
		Log:        logger.Component("planner"),
		Metrics:    metrics.NewPlannerMetrics(registry),
	})
	exec.Attach(p)

	if *realtime {
		if err := rt.LockMemory(); err != nil {
			logger.Warnf("mlockall: %v", err)
		}
		exec.StartRealtime(rt.DefaultPriority)
	} else {
		exec.Start()
	}
	defer exec.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	if *demo {
		runDemo(p, logger)
		select {
		case <-ctrl.drained:
			logger.Info("demo queue drained")
		case s := <-sig:
			logger.Infof("signal %v, shutting down", s)
		}
	} else {
		logger.Info("idle; waiting for signal")
		s := <-sig
		logger.Infof("signal %v, shutting down", s)
	}

	if *dumpMetrics {
		fmt.Print(registry.Render())
	}
}

// runDemo queues a small exercise: a square in XY, a spindle command and a
// dwell between legs.
func runDemo(p *planner.Planner, logger *log.Logger) {
	spindle := func(values, flags [axis.Axes]float64) {
		logger.Info("spindle speed", log.Fields{"rpm": values[axis.X]})
	}

	var rpm [axis.Axes]float64
	var rpmFlags [axis.Axes]float64
	rpm[axis.X] = 12000
	rpmFlags[axis.X] = 1
	p.QueueCommand(spindle, rpm, rpmFlags)

	corners := [][2]float64{{10, 0}, {10, 10}, {0, 10}, {0, 0}}
	var from [axis.Axes]float64
	for i, c := range corners {
		var target [axis.Axes]float64
		target[axis.X], target[axis.Y] = c[0], c[1]

		length := planner.VectorDistance(from, target)
		var unit [axis.Axes]float64
		for a := 0; a < axis.Axes; a++ {
			unit[a] = (target[a] - from[a]) / length
		}

		p.QueueMove(planner.MovePayload{
			Target:         target,
			Unit:           unit,
			Length:         length,
			CruiseVelocity: 50,
			MoveTime:       length / 50,
		}, int32(i+1))

		p.Dwell(0.05)
		from = target
	}
}
