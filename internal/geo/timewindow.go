package geo

import "fmt"

// TimeWindow is a closed time interval [Start, End].
type TimeWindow struct {
	Start, End float64
}

// NewTimeWindow builds a time window, rejecting inverted bounds.
func NewTimeWindow(start, end float64) (TimeWindow, error) {
	if start > end {
		return TimeWindow{}, fmt.Errorf("time window: start %g after end %g", start, end)
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Contains reports whether t lies within the window.
func (tw TimeWindow) Contains(t float64) bool {
	return tw.Start <= t && t <= tw.End
}

// ContainsWindow reports whether other lies entirely within the window.
func (tw TimeWindow) ContainsWindow(other TimeWindow) bool {
	return tw.Start <= other.Start && other.End <= tw.End
}

// Duration returns the window length.
func (tw TimeWindow) Duration() float64 {
	return tw.End - tw.Start
}
