package output

import (
	"github.com/ericogr/staticfire/pkg/analysis"
	"github.com/ericogr/staticfire/pkg/firing"
)

// Live is one converted reading tagged with the detector state at that
// instant. T is seconds since ignition while burning, otherwise seconds since
// the loop started.
type Live struct {
	State    firing.State
	T        float64
	Thrust   float64
	Pressure float64
	Temp     float64
}

// Output consumes the live sample stream during acquisition and the final
// report after the run. Implementations live in subpackages.
type Output interface {
	PublishLive(l Live) error
	PublishReport(rep analysis.Report) error
	Close() error
}
