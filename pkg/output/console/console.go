package console

import (
	"fmt"
	"io"
	"os"

	"github.com/ericogr/staticfire/pkg/analysis"
	"github.com/ericogr/staticfire/pkg/firing"
	"github.com/ericogr/staticfire/pkg/output"
)

// ConsoleOutput renders the operator's live status line and the final report.
// In monitor mode it shows all three channels unclamped so calibration drift
// stays visible.
type ConsoleOutput struct {
	w       io.Writer
	monitor bool
}

func NewConsole(monitor bool) output.Output {
	return &ConsoleOutput{w: os.Stdout, monitor: monitor}
}

func (c *ConsoleOutput) PublishLive(l output.Live) error {
	if c.monitor {
		fmt.Fprintf(c.w, "\r%-15.2f | %-15.2f | %-15.1f", l.Thrust, l.Pressure, l.Temp)
		return nil
	}
	switch l.State {
	case firing.Waiting:
		fmt.Fprintf(c.w, "\rWAIT | Thrust: %6.1f N | Press: %6.1f PSI", l.Thrust, l.Pressure)
	case firing.Burning:
		fmt.Fprintf(c.w, "\rREC  | T+%5.2fs | Thrust: %6.1f N | Press: %6.1f PSI", l.T, l.Thrust, l.Pressure)
	}
	return nil
}

func (c *ConsoleOutput) PublishReport(rep analysis.Report) error {
	line := "========================================"
	fmt.Fprintf(c.w, "\n%s\n", line)
	fmt.Fprintf(c.w, "  STATIC FIRE REPORT\n")
	fmt.Fprintf(c.w, "%s\n", line)
	fmt.Fprintf(c.w, "Total Impulse  : %.2f Ns\n", rep.TotalImpulseNs)
	fmt.Fprintf(c.w, "Motor Class    : %s\n", rep.MotorClass)
	fmt.Fprintf(c.w, "Burn Time      : %.3f s\n", rep.BurnTimeS)
	fmt.Fprintf(c.w, "Avg Thrust     : %.2f N\n", rep.AvgThrust)
	fmt.Fprintf(c.w, "Max Thrust     : %.2f N\n", rep.MaxThrust)
	fmt.Fprintf(c.w, "Max Pressure   : %.2f PSI\n", rep.MaxPressure)
	fmt.Fprintf(c.w, "Max Temp       : %.2f C\n", rep.MaxTemp)
	fmt.Fprintf(c.w, "%s\n", line)
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
