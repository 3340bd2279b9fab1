package daq

import (
	"fmt"
	"time"

	"github.com/ericogr/staticfire/pkg/calib"
	"github.com/ericogr/staticfire/pkg/config"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01

	pgaFullScale = 4.096 // volts, PGA setting ±4.096V
)

// standard ADS1115 data rates (SPS) and their config bits
var dataRates = []struct {
	sps  int
	bits byte
}{
	{8, 0x0}, {16, 0x1}, {32, 0x2}, {64, 0x3},
	{128, 0x4}, {250, 0x5}, {475, 0x6}, {860, 0x7},
}

// ADS1115 reads thrust, pressure and temperature channels from an ADS1115 ADC
// over I2C, one single-shot conversion per channel per tick.
type ADS1115 struct {
	dev      *i2c.Dev
	bus      i2c.BusCloser
	channels [3]int // thrust, pressure, temp mux inputs
	dataRate int
}

// NewADS1115 opens the I2C bus and prepares per-channel configuration. The
// ADC data rate is chosen as the smallest standard rate that leaves headroom
// for three conversions per acquisition period.
func NewADS1115(dc config.DeviceConfig, sampleRateHz float64) (*ADS1115, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(dc.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	dev := &i2c.Dev{Addr: uint16(dc.I2CAddress), Bus: bus}
	return &ADS1115{
		dev:      dev,
		bus:      bus,
		channels: [3]int{dc.ThrustChannel, dc.PressureChannel, dc.TempChannel},
		dataRate: pickDataRate(sampleRateHz),
	}, nil
}

func (s *ADS1115) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

// ReadChannels performs one single-shot conversion per channel and returns
// the voltages.
func (s *ADS1115) ReadChannels() (calib.Volts, error) {
	var volts [3]float64
	for i, ch := range s.channels {
		v, err := s.readChannel(ch)
		if err != nil {
			return calib.Volts{}, err
		}
		volts[i] = v
	}
	return calib.Volts{Thrust: volts[0], Pressure: volts[1], Temp: volts[2]}, nil
}

func (s *ADS1115) readChannel(channel int) (float64, error) {
	msb, lsb, err := configForChannel(channel, s.dataRate)
	if err != nil {
		return 0, err
	}
	if err := s.dev.Tx([]byte{pointerConfig, msb, lsb}, nil); err != nil {
		return 0, fmt.Errorf("write config: %w", err)
	}
	// wait for conversion (simple sleep)
	delayMs := 1000/s.dataRate + 2
	time.Sleep(time.Duration(delayMs) * time.Millisecond)
	readBuf := make([]byte, 2)
	if err := s.dev.Tx([]byte{pointerConv}, readBuf); err != nil {
		return 0, fmt.Errorf("read conv: %w", err)
	}
	raw := int16(readBuf[0])<<8 | int16(readBuf[1])
	return float64(raw) * pgaFullScale / 32768.0, nil
}

// pickDataRate returns the smallest standard ADS1115 rate that can complete
// three conversions per acquisition period, falling back to the fastest.
func pickDataRate(sampleRateHz float64) int {
	want := 3 * sampleRateHz
	for _, dr := range dataRates {
		if float64(dr.sps) >= want {
			return dr.sps
		}
	}
	return dataRates[len(dataRates)-1].sps
}

func configForChannel(channel, dataRate int) (byte, byte, error) {
	var mux byte
	switch channel {
	case 0:
		mux = 0x4
	case 1:
		mux = 0x5
	case 2:
		mux = 0x6
	case 3:
		mux = 0x7
	default:
		return 0, 0, fmt.Errorf("invalid channel %d", channel)
	}
	// PGA: ±4.096V -> bits 001
	pga := byte(0x1)
	dr := byte(0x4)
	for _, d := range dataRates {
		if d.sps == dataRate {
			dr = d.bits
		}
	}
	var cfg uint16 = 0x8000 // OS = 1 (start single conversion)
	cfg |= uint16(mux) << 12
	cfg |= uint16(pga) << 9
	cfg |= 1 << 8 // single-shot mode
	cfg |= uint16(dr) << 5
	// comparator disabled (bits 1:0 = 11)
	cfg |= 0x3
	return byte(cfg >> 8), byte(cfg & 0xFF), nil
}
