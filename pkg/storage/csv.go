package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ericogr/staticfire/pkg/firing"
)

var header = []string{"Time(s)", "Thrust(N)", "Pressure(PSI)", "Temp(C)"}

// WriteSeries writes the frozen series to Motor_Data_<timestamp>.csv inside
// dir and returns the full path.
func WriteSeries(dir string, samples []firing.Sample) (string, error) {
	name := fmt.Sprintf("Motor_Data_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("csv write header: %w", err)
	}
	row := make([]string, 4)
	for _, s := range samples {
		row[0] = formatFloat(s.T)
		row[1] = formatFloat(s.Thrust)
		row[2] = formatFloat(s.Pressure)
		row[3] = formatFloat(s.Temp)
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("csv write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv flush: %w", err)
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
