package firing

// Reading is one converted acquisition tick as seen by the detector. T is
// seconds on the acquisition loop's monotonic clock; the detector rebases it
// to the ignition instant when it stores a Sample.
type Reading struct {
	T        float64
	Thrust   float64
	Pressure float64
	Temp     float64
}

// Sample is one stored point of the firing time series. T is seconds relative
// to ignition and is strictly non-decreasing across the buffer.
type Sample struct {
	T        float64 `json:"t"`
	Thrust   float64 `json:"thrust"`
	Pressure float64 `json:"pressure"`
	Temp     float64 `json:"temp"`
}
