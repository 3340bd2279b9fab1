package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ericogr/staticfire/pkg/analysis"
	"github.com/ericogr/staticfire/pkg/calib"
	"github.com/ericogr/staticfire/pkg/config"
	"github.com/ericogr/staticfire/pkg/daq"
	"github.com/ericogr/staticfire/pkg/firing"
	"github.com/ericogr/staticfire/pkg/output"
	"github.com/ericogr/staticfire/pkg/output/console"
	"github.com/ericogr/staticfire/pkg/output/mqtt"
	"github.com/ericogr/staticfire/pkg/storage"
)

const defaultPublishIntervalMs = 100

type outputEntry struct {
	Out        output.Output
	IntervalMs int
	last       time.Time
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatal(err)
	}

	dev, err := daq.New(cfg)
	if err != nil {
		log.Fatalf("device connect: %v", err)
	}
	defer dev.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cfg.Mode {
	case config.ModeMonitor:
		err = runMonitor(ctx, cfg, dev)
	default:
		err = runFire(ctx, cfg, dev)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runFire drives a full test: wait for ignition, record the burn, then
// analyze, report, and save.
func runFire(ctx context.Context, cfg config.Config, dev daq.Device) error {
	thr := cfg.Thresholds()
	det, err := firing.NewDetector(thr)
	if err != nil {
		return err
	}
	conv := cfg.Converter(cfg.ZeroClampEnabled)

	entries, err := initOutputs(&cfg, false)
	if err != nil {
		return err
	}
	defer closeOutputs(entries)

	fmt.Printf("\n--- READY FOR FIRE ---\n")
	fmt.Printf("Waiting for Thrust > %.1f N...\n", thr.IgnitionTrigger)
	fmt.Printf("(Press Ctrl+C to stop the test manually)\n")

	period := time.Duration(float64(time.Second) / thr.SampleRateHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	start := time.Now()
	ignitionAt := 0.0
	for det.State() != firing.Finished {
		select {
		case <-ctx.Done():
			fmt.Printf("\n\nTest aborted manually, analyzing collected data...\n")
			det.Cancel()
			continue
		case <-ticker.C:
		}

		volts, err := readWithRetry(dev, cfg.ReadRetries)
		if err != nil {
			return fmt.Errorf("sensor read: %w", err)
		}
		r := conv.Convert(time.Since(start).Seconds(), volts)

		prev := det.State()
		state, err := det.Tick(r)
		if err != nil {
			return err
		}
		if prev == firing.Waiting && state == firing.Burning {
			ignitionAt = r.T
			fmt.Printf("\n\n*** IGNITION DETECTED! LOGGING STARTED ***\n")
		}
		if prev == firing.Burning && state == firing.Finished {
			fmt.Printf("\n\n*** BURNOUT DETECTED! STOPPING... ***\n")
		}

		t := r.T
		if state != firing.Waiting {
			t = r.T - ignitionAt
		}
		publishLive(entries, output.Live{
			State:    state,
			T:        t,
			Thrust:   r.Thrust,
			Pressure: r.Pressure,
			Temp:     r.Temp,
		})
	}

	samples := det.Buffer().Snapshot()
	rep, err := analysis.Analyze(samples, thr.BurnoutTrigger)
	if errors.Is(err, analysis.ErrNoData) {
		fmt.Printf("\nNo data collected.\n")
		return nil
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		if perr := e.Out.PublishReport(rep); perr != nil {
			log.Printf("report publish: %v", perr)
		}
	}

	path, err := storage.WriteSeries(cfg.CSVDir, samples)
	if err != nil {
		return fmt.Errorf("save csv: %w", err)
	}
	fmt.Printf("Data saved to: %s\n", path)
	return nil
}

// runMonitor is the calibration sanity check: the same read/convert path with
// clamping disabled, at a slow fixed rate, so drift and offset errors stay
// visible.
func runMonitor(ctx context.Context, cfg config.Config, dev daq.Device) error {
	conv := cfg.Converter(false)

	entries, err := initOutputs(&cfg, true)
	if err != nil {
		return err
	}
	defer closeOutputs(entries)

	fmt.Printf("\n--- LIVE SENSOR MONITOR ---\n")
	fmt.Printf("Verify that readings make sense before firing.\n")
	fmt.Printf("Press CTRL+C to quit.\n\n")
	fmt.Printf("%-15s | %-15s | %-15s\n", "THRUST (N)", "PRESSURE (PSI)", "TEMP (C)")
	fmt.Println("--------------------------------------------------")

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\n\nCheck complete.\n")
			return nil
		case <-ticker.C:
		}
		volts, err := readWithRetry(dev, cfg.ReadRetries)
		if err != nil {
			return fmt.Errorf("sensor read: %w", err)
		}
		r := conv.Convert(time.Since(start).Seconds(), volts)
		publishLive(entries, output.Live{
			State:    firing.Waiting,
			T:        r.T,
			Thrust:   r.Thrust,
			Pressure: r.Pressure,
			Temp:     r.Temp,
		})
	}
}

// readWithRetry reads the device, retrying up to retries times. With
// retries=0 any read failure aborts the run.
func readWithRetry(dev daq.Device, retries int) (calib.Volts, error) {
	v, err := dev.ReadChannels()
	for i := 0; err != nil && i < retries; i++ {
		v, err = dev.ReadChannels()
	}
	return v, err
}

// initOutputs builds the configured outputs, defaulting publish intervals.
func initOutputs(cfg *config.Config, monitor bool) ([]*outputEntry, error) {
	entries := make([]*outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		if oc.IntervalMs <= 0 {
			oc.IntervalMs = defaultPublishIntervalMs
		}
		var (
			out output.Output
			err error
		)
		switch oc.Type {
		case "console":
			out = console.NewConsole(monitor)
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			out, err = mqtt.NewMQTT(mc)
		default:
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("init output %s: %w", oc.Type, err)
		}
		entries = append(entries, &outputEntry{Out: out, IntervalMs: oc.IntervalMs})
	}
	return entries, nil
}

// publishLive fans a live sample out to every output, honoring each output's
// publish interval so a 200 Hz loop doesn't flood slow consumers.
func publishLive(entries []*outputEntry, l output.Live) {
	now := time.Now()
	for _, e := range entries {
		if !e.last.IsZero() && now.Sub(e.last) < time.Duration(e.IntervalMs)*time.Millisecond {
			continue
		}
		e.last = now
		if err := e.Out.PublishLive(l); err != nil {
			log.Printf("live publish: %v", err)
		}
	}
}

func closeOutputs(entries []*outputEntry) {
	for _, e := range entries {
		if err := e.Out.Close(); err != nil {
			log.Printf("output close: %v", err)
		}
	}
}
