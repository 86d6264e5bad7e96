// Package vns implements the variable neighborhood search engine that
// mutates observation plans under a wall-clock budget.
package vns

import (
	"math"
	"math/rand"

	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/plan"
	"github.com/elektrokombinacija/firefront-research/internal/uav"
)

// Neighborhood proposes one structural move on a working copy of a plan.
type Neighborhood interface {
	// Apply mutates p in place. It returns false when no move was
	// available (nothing to remove, every insertion rejected, ...), in
	// which case p may still have been repaired but carries no new move.
	Apply(p *plan.Plan, rng *rand.Rand) bool

	// Name returns the operator name used in configurations.
	Name() string
}

// segmentInsert adds an observation segment over a poorly covered possible
// observation, at the insertion index with the smallest duration increase.
type segmentInsert struct {
	// SegmentLength of inserted observation legs, metres.
	SegmentLength float64 `json:"segment_length"`
	// MaxTrials bounds the candidate cells examined per application.
	MaxTrials int `json:"max_trials"`
}

func (n *segmentInsert) Name() string { return "segment-insert" }

func (n *segmentInsert) Apply(p *plan.Plan, rng *rand.Rand) bool {
	possible := p.PossibleObservations()
	if len(possible) == 0 {
		return false
	}
	realized := p.Observations()

	trials := n.MaxTrials
	if trials <= 0 {
		trials = 10
	}
	length := n.SegmentLength
	if length <= 0 {
		length = 50
	}
	for trial := 0; trial < trials; trial++ {
		target := possible[rng.Intn(len(possible))]

		// Skip cells already observed closely enough.
		covered := false
		for _, obs := range realized {
			if obs.Pt.Dist(target.Pt) <= plan.RedundantObsDist+1 {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		trajID := rng.Intn(p.NumTrajectories())
		traj := p.Trajectory(trajID)
		dir := frontHeading(p, target.Pt)
		start := uav.Waypoint{
			X:   target.Pt.X - math.Cos(dir)*length/2,
			Y:   target.Pt.Y - math.Sin(dir)*length/2,
			Dir: dir,
		}
		seg := uav.NewSegment(start, length)

		at, ok := cheapestInsertion(traj, seg)
		if !ok {
			continue
		}
		if err := p.InsertSegment(trajID, seg, at); err != nil {
			continue
		}
		return true
	}
	return false
}

// segmentRemoval drops a random modifiable segment.
type segmentRemoval struct{}

func (n *segmentRemoval) Name() string { return "segment-removal" }

func (n *segmentRemoval) Apply(p *plan.Plan, rng *rand.Rand) bool {
	trajID, at, ok := randomModifiable(p, rng)
	if !ok {
		return false
	}
	return p.EraseSegment(trajID, at) == nil
}

// segmentReplace nudges a random modifiable segment by a random offset;
// the repair pass snaps the moved segment back onto the front.
type segmentReplace struct {
	// Radius of the translation applied to the segment, metres.
	Radius float64 `json:"radius"`
}

func (n *segmentReplace) Name() string { return "segment-replace" }

func (n *segmentReplace) Apply(p *plan.Plan, rng *rand.Rand) bool {
	trajID, at, ok := randomModifiable(p, rng)
	if !ok {
		return false
	}
	radius := n.Radius
	if radius <= 0 {
		radius = 100
	}

	seg := p.Trajectory(trajID).Segment(at)
	angle := rng.Float64() * 2 * math.Pi
	dist := rng.Float64() * radius
	start := seg.Start
	start.X += math.Cos(angle) * dist
	start.Y += math.Sin(angle) * dist
	return p.ReplaceSegment(trajID, at, uav.NewSegment(start, seg.Length)) == nil
}

// segmentSwap moves a segment from one vehicle's trajectory to another's.
type segmentSwap struct{}

func (n *segmentSwap) Name() string { return "segment-swap" }

func (n *segmentSwap) Apply(p *plan.Plan, rng *rand.Rand) bool {
	if p.NumTrajectories() < 2 {
		return false
	}
	fromID, at, ok := randomModifiable(p, rng)
	if !ok {
		return false
	}
	toID := rng.Intn(p.NumTrajectories() - 1)
	if toID >= fromID {
		toID++
	}

	seg := p.Trajectory(fromID).Segment(at)
	if err := p.EraseSegment(fromID, at); err != nil {
		return false
	}
	insertAt, ok := cheapestInsertion(p.Trajectory(toID), seg)
	if !ok {
		return false
	}
	// Failing the insert still counts as a move: the erase stands and the
	// evaluation decides whether the smaller plan is worth keeping.
	_ = p.InsertSegment(toID, seg, insertAt)
	return true
}

// randomModifiable picks a uniformly random modifiable segment across all
// trajectories.
func randomModifiable(p *plan.Plan, rng *rand.Rand) (trajID, at int, ok bool) {
	type slot struct{ traj, idx int }
	var slots []slot
	for id := 0; id < p.NumTrajectories(); id++ {
		first, last := p.Trajectory(id).Modifiable()
		for i := first; i < last; i++ {
			slots = append(slots, slot{id, i})
		}
	}
	if len(slots) == 0 {
		return 0, 0, false
	}
	s := slots[rng.Intn(len(slots))]
	return s.traj, s.idx, true
}

// cheapestInsertion returns the modifiable index at which inserting seg
// increases the trajectory duration the least.
func cheapestInsertion(t *plan.Trajectory, seg uav.Segment) (int, bool) {
	first, last := t.Modifiable()
	if first > last {
		return 0, false
	}
	u := t.Config().UAV
	bestAt, bestCost := first, math.Inf(1)
	for at := first; at <= last; at++ {
		cost := 0.0
		if at > 0 {
			cost += u.TravelTime(t.Segment(at-1).End, seg.Start)
		}
		if at < t.Size() {
			cost += u.TravelTime(seg.End, t.Segment(at).Start)
		}
		if at > 0 && at < t.Size() {
			cost -= u.TravelTime(t.Segment(at-1).End, t.Segment(at).Start)
		}
		if cost < bestCost {
			bestCost = cost
			bestAt = at
		}
	}
	return bestAt, true
}

// frontHeading returns a heading along the local front (perpendicular to
// the propagation direction) at pt, so inserted legs sweep the isochrone.
func frontHeading(p *plan.Plan, pt geo.Point) float64 {
	cell, ok := p.Front().Grid().CellOf(pt)
	if !ok {
		return 0
	}
	return p.Front().Direction(cell) + math.Pi/2
}
