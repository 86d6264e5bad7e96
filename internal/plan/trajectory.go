// Package plan holds the mutable planning state: per-vehicle trajectories
// built from immutable configurations, and the Plan that scores them
// against the fire-front model.
package plan

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/uav"
)

// TrajectoryConfig fixes the capability and mission envelope of one
// vehicle. It is immutable once a Trajectory has been built from it.
type TrajectoryConfig struct {
	UAV           uav.UAV
	StartTime     float64
	MaxFlightTime float64
	// Optional fixed launch and recovery waypoints. When set they become
	// permanent zero-length boundary segments of the trajectory.
	Start, End *uav.Waypoint
}

// Trajectory is one vehicle's ordered path: a sequence of observation
// segments with derived per-segment start times. Segments before the
// modifiable boundary are frozen and rejected by every edit. A Trajectory
// is owned exclusively by the Plan holding it.
type Trajectory struct {
	conf       TrajectoryConfig
	segments   []uav.Segment
	startTimes []float64
	// firstModifiable is the index of the first editable segment; raised
	// by FreezeBefore and by a fixed launch waypoint.
	firstModifiable int
	// fixedEnd counts permanent trailing segments (the recovery waypoint).
	fixedEnd int
}

// NewTrajectory builds the initial trajectory for a configuration,
// containing only the fixed boundary segments, if any.
func NewTrajectory(conf TrajectoryConfig) *Trajectory {
	t := &Trajectory{conf: conf}
	if conf.Start != nil {
		t.segments = append(t.segments, uav.NewSegment(*conf.Start, 0))
		t.firstModifiable = 1
	}
	if conf.End != nil {
		t.segments = append(t.segments, uav.NewSegment(*conf.End, 0))
		t.fixedEnd = 1
	}
	t.recomputeTimes()
	return t
}

// Config returns the trajectory's immutable configuration.
func (t *Trajectory) Config() TrajectoryConfig { return t.conf }

// Size returns the number of segments.
func (t *Trajectory) Size() int { return len(t.segments) }

// Segment returns the segment at index i.
func (t *Trajectory) Segment(i int) uav.Segment { return t.segments[i] }

// Segments returns a copy of the segment sequence.
func (t *Trajectory) Segments() []uav.Segment {
	out := make([]uav.Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// StartTime returns the scheduled start time of segment i.
func (t *Trajectory) StartTime(i int) float64 { return t.startTimes[i] }

// EndTime returns the time the vehicle finishes traversing segment i.
func (t *Trajectory) EndTime(i int) float64 {
	return t.startTimes[i] + t.segmentTravelTime(i)
}

// Duration returns the total flight time from the configured start until
// the end of the last segment.
func (t *Trajectory) Duration() float64 {
	if len(t.segments) == 0 {
		return 0
	}
	return t.EndTime(len(t.segments)-1) - t.conf.StartTime
}

// Length returns the total path length, including transit between segments.
func (t *Trajectory) Length() float64 {
	total := 0.0
	for i, seg := range t.segments {
		if i > 0 {
			total += t.conf.UAV.TravelDistance(t.segments[i-1].End, seg.Start)
		}
		total += seg.Length
	}
	return total
}

// IsValid reports whether the trajectory respects its flight-time budget.
func (t *Trajectory) IsValid() bool {
	return t.Duration() <= t.conf.MaxFlightTime
}

// Modifiable returns the index range [first, last) of editable segments.
func (t *Trajectory) Modifiable() (first, last int) {
	return t.firstModifiable, len(t.segments) - t.fixedEnd
}

// CanModify reports whether the segment at index i may be edited.
func (t *Trajectory) CanModify(i int) bool {
	first, last := t.Modifiable()
	return i >= first && i < last
}

// FreezeBefore marks every segment starting before cutoff as
// non-modifiable, preserving an already-flown or committed prefix.
func (t *Trajectory) FreezeBefore(cutoff float64) {
	for i := t.firstModifiable; i < len(t.segments); i++ {
		if t.startTimes[i] >= cutoff {
			break
		}
		t.firstModifiable = i + 1
	}
}

// InsertSegment inserts seg at index at, recomputing downstream start
// times. The edit is rejected, leaving the trajectory untouched, when the
// index is frozen or the flight-time budget would be exceeded.
func (t *Trajectory) InsertSegment(seg uav.Segment, at int) error {
	first, last := t.Modifiable()
	if at < first || at > last {
		return fmt.Errorf("trajectory: insert at %d outside modifiable range [%d, %d]", at, first, last)
	}
	t.insertAt(seg, at)
	if !t.IsValid() {
		t.eraseAt(at)
		return fmt.Errorf("trajectory: insert at %d exceeds flight time budget %gs", at, t.conf.MaxFlightTime)
	}
	return nil
}

// EraseSegment removes the segment at index at.
func (t *Trajectory) EraseSegment(at int) error {
	if !t.CanModify(at) {
		return fmt.Errorf("trajectory: segment %d is not modifiable", at)
	}
	t.eraseAt(at)
	return nil
}

// ReplaceSegment substitutes the segment at index at, rejecting the edit
// if the budget would be exceeded.
func (t *Trajectory) ReplaceSegment(at int, seg uav.Segment) error {
	if !t.CanModify(at) {
		return fmt.Errorf("trajectory: segment %d is not modifiable", at)
	}
	old := t.segments[at]
	t.segments[at] = seg
	t.recomputeTimes()
	if !t.IsValid() {
		t.segments[at] = old
		t.recomputeTimes()
		return fmt.Errorf("trajectory: replace at %d exceeds flight time budget %gs", at, t.conf.MaxFlightTime)
	}
	return nil
}

// insertAt and eraseAt are the unchecked structural edits used by the
// repair pass, which must be able to drop and re-project segments even
// while the budget is transiently violated.
func (t *Trajectory) insertAt(seg uav.Segment, at int) {
	t.segments = append(t.segments, uav.Segment{})
	copy(t.segments[at+1:], t.segments[at:])
	t.segments[at] = seg
	t.recomputeTimes()
}

func (t *Trajectory) eraseAt(at int) {
	t.segments = append(t.segments[:at], t.segments[at+1:]...)
	t.recomputeTimes()
}

// recomputeTimes rebuilds the derived per-segment start times.
func (t *Trajectory) recomputeTimes() {
	t.startTimes = t.startTimes[:0]
	now := t.conf.StartTime
	for i, seg := range t.segments {
		if i > 0 {
			now += t.conf.UAV.TravelTime(t.segments[i-1].End, seg.Start)
		}
		t.startTimes = append(t.startTimes, now)
		now += t.segmentTravelTime(i)
	}
}

func (t *Trajectory) segmentTravelTime(i int) float64 {
	if t.conf.UAV.MaxAirSpeed <= 0 {
		return 0
	}
	return t.segments[i].Length / t.conf.UAV.MaxAirSpeed
}

// Slice returns a new trajectory containing only the portion of this one
// scheduled within tw. The slice is detached: it has no fixed boundary
// waypoints and starts at the first kept segment's time.
func (t *Trajectory) Slice(tw geo.TimeWindow) *Trajectory {
	out := &Trajectory{conf: t.conf}
	out.conf.Start, out.conf.End = nil, nil
	for i, seg := range t.segments {
		if tw.Contains(t.startTimes[i]) && tw.Contains(t.EndTime(i)) {
			if len(out.segments) == 0 {
				out.conf.StartTime = t.startTimes[i]
			}
			out.segments = append(out.segments, seg)
		}
	}
	out.recomputeTimes()
	return out
}

// Sampled returns waypoints approximating the flown path at the given
// spatial step, covering both transit curves and observation legs.
func (t *Trajectory) Sampled(step float64) []uav.Waypoint {
	var out []uav.Waypoint
	for i, seg := range t.segments {
		if i > 0 {
			transit := t.conf.UAV.PathSampling(t.segments[i-1].End, seg.Start, step)
			out = append(out, transit.Collect()...)
		} else {
			out = append(out, seg.Start)
		}
		if seg.Length > 0 {
			leg := t.conf.UAV.PathSampling(seg.Start, seg.End, step)
			out = append(out, leg.Collect()...)
		}
	}
	return out
}

// SampledWithTime returns time-stamped waypoints for the portion of the
// path scheduled within tw.
func (t *Trajectory) SampledWithTime(tw geo.TimeWindow, step float64) []TimedWaypoint {
	var out []TimedWaypoint
	speed := t.conf.UAV.MaxAirSpeed
	for i, seg := range t.segments {
		if i > 0 {
			prev := t.segments[i-1]
			depart := t.EndTime(i - 1)
			transit := t.conf.UAV.PathSampling(prev.End, seg.Start, step)
			dist := 0.0
			for {
				wp, ok := transit.Next()
				if !ok {
					break
				}
				ts := depart
				if speed > 0 {
					ts += math.Min(dist, transit.Length()) / speed
				}
				if tw.Contains(ts) {
					out = append(out, TimedWaypoint{Waypoint: wp, Time: ts})
				}
				dist += step
			}
		} else if tw.Contains(t.startTimes[i]) {
			out = append(out, TimedWaypoint{Waypoint: seg.Start, Time: t.startTimes[i]})
		}
		if seg.Length > 0 {
			leg := t.conf.UAV.PathSampling(seg.Start, seg.End, step)
			dist := 0.0
			for {
				wp, ok := leg.Next()
				if !ok {
					break
				}
				ts := t.startTimes[i]
				if speed > 0 {
					ts += math.Min(dist, leg.Length()) / speed
				}
				if tw.Contains(ts) {
					out = append(out, TimedWaypoint{Waypoint: wp, Time: ts})
				}
				dist += step
			}
		}
	}
	return out
}

// TimedWaypoint is a sampled waypoint with its scheduled flyover time.
type TimedWaypoint struct {
	Waypoint uav.Waypoint
	Time     float64
}

// Clone returns an independent deep copy.
func (t *Trajectory) Clone() *Trajectory {
	out := &Trajectory{
		conf:            t.conf,
		segments:        make([]uav.Segment, len(t.segments)),
		startTimes:      make([]float64, len(t.startTimes)),
		firstModifiable: t.firstModifiable,
		fixedEnd:        t.fixedEnd,
	}
	copy(out.segments, t.segments)
	copy(out.startTimes, t.startTimes)
	return out
}
