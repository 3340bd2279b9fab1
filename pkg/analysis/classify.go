package analysis

import "fmt"

// classBands is the standard rocketry impulse table: each band doubles the
// previous one, half-open [low, high).
var classBands = []struct {
	low, high float64
	letter    string
}{
	{160, 320, "H"},
	{320, 640, "I"},
	{640, 1280, "J"},
	{1280, 2560, "K"},
	{2560, 5120, "L"},
	{5120, 10240, "M"},
	{10240, 20480, "N"},
	{20480, 40960, "O"},
	{40960, 81920, "P"},
}

// Classify maps a total impulse in Newton-seconds to a motor class label like
// "K 50%", where the percentage is how far into the band the impulse sits.
// Impulse outside every band yields "Unknown".
func Classify(impulseNs float64) string {
	for _, b := range classBands {
		if impulseNs >= b.low && impulseNs < b.high {
			pct := int((impulseNs - b.low) / (b.high - b.low) * 100)
			return fmt.Sprintf("%s %d%%", b.letter, pct)
		}
	}
	return "Unknown"
}
