package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ericogr/staticfire/pkg/calib"
	"github.com/ericogr/staticfire/pkg/firing"
)

// Run modes.
const (
	ModeFire    = "fire"    // full acquisition + analysis pipeline
	ModeMonitor = "monitor" // raw live readout for calibration sanity checks
)

// Device types.
const (
	DeviceADS1115 = "ads1115"
	DeviceSim     = "sim"
)

type MQTTConfig struct {
	Server      string `json:"server"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ClientID    string `json:"client_id"`
	LiveTopic   string `json:"live_topic"`
	ReportTopic string `json:"report_topic"`
}

type OutputConfig struct {
	Type       string      `json:"type"`
	IntervalMs int         `json:"interval_ms,omitempty"`
	MQTT       *MQTTConfig `json:"mqtt,omitempty"`
}

// SimConfig parameterizes the simulated device's firing profile, expressed at
// the voltage level so the full calibration path is exercised.
type SimConfig struct {
	StartDelayS       float64 `json:"start_delay_s"`
	BurnS             float64 `json:"burn_s"`
	ThrustRestVolts   float64 `json:"thrust_rest_volts"`
	ThrustPeakVolts   float64 `json:"thrust_peak_volts"`
	PressureRestVolts float64 `json:"pressure_rest_volts"`
	PressurePeakVolts float64 `json:"pressure_peak_volts"`
	TempVolts         float64 `json:"temp_volts"`
	NoiseVolts        float64 `json:"noise_volts"`
}

type DeviceConfig struct {
	Type            string     `json:"type"`
	I2CBus          string     `json:"i2c_bus"`
	I2CAddress      int        `json:"i2c_address"`
	ThrustChannel   int        `json:"thrust_channel"`
	PressureChannel int        `json:"pressure_channel"`
	TempChannel     int        `json:"temp_channel"`
	Sim             *SimConfig `json:"sim,omitempty"`
}

type Config struct {
	Mode   string       `json:"mode"`
	Device DeviceConfig `json:"device"`

	ThrustCalibration   calib.Params `json:"thrust_calibration"`
	PressureCalibration calib.Params `json:"pressure_calibration"`
	TempCalibration     calib.Params `json:"temp_calibration"`

	IgnitionTrigger  float64 `json:"ignition_trigger"`
	BurnoutTrigger   float64 `json:"burnout_trigger"`
	SampleRateHz     float64 `json:"sample_rate_hz"`
	DebounceSeconds  float64 `json:"debounce_seconds"`
	ZeroClampEnabled bool    `json:"zero_clamp_enabled"`

	// ReadRetries bounds per-sample read retries during acquisition. 0 keeps
	// the default posture: an unreadable sensor mid-burn aborts the run.
	ReadRetries int `json:"read_retries"`

	Outputs []OutputConfig `json:"outputs"`
	CSVDir  string         `json:"csv_dir"`
}

func DefaultConfig() Config {
	return Config{
		Mode: ModeFire,
		Device: DeviceConfig{
			Type:            DeviceADS1115,
			I2CBus:          "2",
			I2CAddress:      0x48,
			ThrustChannel:   0,
			PressureChannel: 1,
			TempChannel:     2,
		},
		// Load cell + amp (gain 201) and 2500 PSI transducer slopes; update
		// after running -mode monitor against known loads.
		ThrustCalibration:   calib.Params{ZeroOffsetVolts: 1.2648, Slope: 9659.0769},
		PressureCalibration: calib.Params{ZeroOffsetVolts: 0.0243, Slope: 625.0},
		TempCalibration:     calib.Params{ZeroOffsetVolts: 0, Slope: 100.0},
		IgnitionTrigger:     20.0,
		BurnoutTrigger:      10.0,
		SampleRateHz:        200,
		DebounceSeconds:     0.5,
		ZeroClampEnabled:    true,
		Outputs:             []OutputConfig{{Type: "console", IntervalMs: 100}},
		CSVDir:              ".",
	}
}

// DefaultSimConfig is the profile used when device.type is "sim" and no sim
// section is given: ~100 N constant thrust for 2 s under default calibration.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		StartDelayS:       1.0,
		BurnS:             2.0,
		ThrustRestVolts:   1.2648, // default thrust zero offset
		ThrustPeakVolts:   1.2752, // ~100 N over the default zero offset
		PressureRestVolts: 0.0243,
		PressurePeakVolts: 0.8243, // ~500 PSI
		TempVolts:         0.25,   // 25 C
		NoiseVolts:        0.0005,
	}
}

// LoadFromFlags loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagMode := flag.String("mode", "", "Run mode: fire|monitor")
	flagDeviceType := flag.String("device-type", "", "Device type: ads1115|sim")
	flagI2CBus := flag.String("i2c-bus", "", "I2C bus (e.g., '2' -> /dev/i2c-2)")
	flagI2CAddStr := flag.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	flagSampleRate := flag.Float64("sample-rate", math.NaN(), "Acquisition rate (Hz)")
	flagIgnition := flag.Float64("ignition-trigger", math.NaN(), "Ignition trigger (N)")
	flagBurnout := flag.Float64("burnout-trigger", math.NaN(), "Burnout trigger (N)")
	flagDebounce := flag.Float64("debounce", math.NaN(), "Burnout debounce window (s)")
	flagZeroClamp := flag.String("zero-clamp", "", "Floor negative thrust/pressure to 0 (true|false)")
	flagReadRetries := flag.Int("read-retries", -1, "Per-sample read retries before aborting")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (console,mqtt)")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagCSVDir := flag.String("csv-dir", "", "Directory for Motor_Data CSV files")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagMode != "" {
		cfg.Mode = *flagMode
	}
	if *flagDeviceType != "" {
		cfg.Device.Type = *flagDeviceType
	}
	if *flagI2CBus != "" {
		cfg.Device.I2CBus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.Device.I2CAddress = v
	}
	if !math.IsNaN(*flagSampleRate) {
		cfg.SampleRateHz = *flagSampleRate
	}
	if !math.IsNaN(*flagIgnition) {
		cfg.IgnitionTrigger = *flagIgnition
	}
	if !math.IsNaN(*flagBurnout) {
		cfg.BurnoutTrigger = *flagBurnout
	}
	if !math.IsNaN(*flagDebounce) {
		cfg.DebounceSeconds = *flagDebounce
	}
	if *flagZeroClamp != "" {
		v, err := strconv.ParseBool(*flagZeroClamp)
		if err != nil {
			return cfg, fmt.Errorf("zero-clamp: %w", err)
		}
		cfg.ZeroClampEnabled = v
	}
	if *flagReadRetries != -1 {
		cfg.ReadRetries = *flagReadRetries
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p, IntervalMs: 100})
		}
		cfg.Outputs = outs
	}
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" {
		// Apply MQTT flags to all mqtt outputs; if none exist, create one.
		applied := false
		for i := range cfg.Outputs {
			if strings.ToLower(cfg.Outputs[i].Type) == "mqtt" {
				if cfg.Outputs[i].MQTT == nil {
					cfg.Outputs[i].MQTT = &MQTTConfig{}
				}
				applyMQTTFlags(cfg.Outputs[i].MQTT, *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID)
				applied = true
			}
		}
		if !applied {
			out := OutputConfig{Type: "mqtt", IntervalMs: 100, MQTT: &MQTTConfig{}}
			applyMQTTFlags(out.MQTT, *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID)
			cfg.Outputs = append(cfg.Outputs, out)
		}
	}
	if *flagCSVDir != "" {
		cfg.CSVDir = *flagCSVDir
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyMQTTFlags(m *MQTTConfig, server, user, pass, clientID string) {
	if server != "" {
		m.Server = server
	}
	if user != "" {
		m.Username = user
	}
	if pass != "" {
		m.Password = pass
	}
	if clientID != "" {
		m.ClientID = clientID
	}
}

// Validate checks the cross-field invariants before any hardware is touched.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeFire, ModeMonitor:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Device.Type {
	case DeviceADS1115, DeviceSim:
	default:
		return fmt.Errorf("unknown device type %q", c.Device.Type)
	}
	if c.ReadRetries < 0 {
		return errors.New("read_retries must be >= 0")
	}
	return c.Thresholds().Validate()
}

// Thresholds extracts the detector settings.
func (c Config) Thresholds() firing.Thresholds {
	return firing.Thresholds{
		IgnitionTrigger: c.IgnitionTrigger,
		BurnoutTrigger:  c.BurnoutTrigger,
		SampleRateHz:    c.SampleRateHz,
		DebounceSeconds: c.DebounceSeconds,
	}
}

// Converter builds the calibration converter for the given clamp policy.
func (c Config) Converter(zeroClamp bool) calib.Converter {
	return calib.Converter{
		Thrust:    c.ThrustCalibration,
		Pressure:  c.PressureCalibration,
		Temp:      c.TempCalibration,
		ZeroClamp: zeroClamp,
	}
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
