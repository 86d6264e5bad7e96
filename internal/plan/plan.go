package plan

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/firefront-research/internal/front"
	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/uav"
)

const (
	// MaxInformativeDistance caps the distance from a possible observation
	// to its nearest realized observation: at or beyond it the point
	// contributes a full unit of cost.
	MaxInformativeDistance = 500.0

	// RedundantObsDist is the radius below which a second observation of
	// the same area adds nothing: within it the point costs zero.
	RedundantObsDist = 0.0

	// nearDuplicateDist is the spacing under which a re-projected segment
	// is dropped instead of reinserted next to an existing neighbor.
	nearDuplicateDist = 49.0

	// noNeighborDist stands in for the distance to a neighbor segment that
	// does not exist.
	noNeighborDist = 999999.0

	// segmentEqualEps is the tolerance for treating a projected segment as
	// unchanged.
	segmentEqualEps = 1e-6

	// maxRepairSweeps bounds the fixpoint iteration of the repair pass.
	maxRepairSweeps = 8
)

// Plan is the unit of mutation for the search engine: one time window, a
// shared read-only front model, one trajectory per vehicle, and the set of
// possible observations the plan is scored against. Copies made with Clone
// are fully independent except for the front model.
type Plan struct {
	timeWindow   geo.TimeWindow
	fire         *front.Data
	trajectories []*Trajectory
	possible     []geo.PointTimeWindow
}

// New builds the initial plan: empty trajectories plus the possible
// observations, i.e. every cell whose arrival time falls inside the plan's
// time window, each with its own informative window.
func New(configs []TrajectoryConfig, fire *front.Data, tw geo.TimeWindow) (*Plan, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("plan: at least one trajectory config is required")
	}
	p := &Plan{timeWindow: tw, fire: fire}
	for i, conf := range configs {
		if !tw.Contains(conf.StartTime) {
			return nil, fmt.Errorf("plan: trajectory %d start time %g outside window [%g, %g]",
				i, conf.StartTime, tw.Start, tw.End)
		}
		p.trajectories = append(p.trajectories, NewTrajectory(conf))
	}
	p.collectPossibleObservations()
	return p, nil
}

func (p *Plan) collectPossibleObservations() {
	g := p.fire.Grid()
	p.possible = nil
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := geo.Cell{X: x, Y: y}
			t := p.fire.Arrival(c)
			if p.timeWindow.Contains(t) {
				p.possible = append(p.possible, geo.PointTimeWindow{
					Pt: g.Center(c),
					TW: p.fire.Window(c),
				})
			}
		}
	}
}

// TimeWindow returns the plan's overall time window.
func (p *Plan) TimeWindow() geo.TimeWindow { return p.timeWindow }

// Front returns the shared front model.
func (p *Plan) Front() *front.Data { return p.fire }

// NumTrajectories returns the number of vehicles in the plan.
func (p *Plan) NumTrajectories() int { return len(p.trajectories) }

// Trajectory returns the trajectory of vehicle id.
func (p *Plan) Trajectory(id int) *Trajectory { return p.trajectories[id] }

// PossibleObservations returns the candidate cells the plan is scored
// against. The slice is shared; callers must not mutate it.
func (p *Plan) PossibleObservations() []geo.PointTimeWindow { return p.possible }

// NumSegments returns the total segment count across all trajectories.
func (p *Plan) NumSegments() int {
	total := 0
	for _, t := range p.trajectories {
		total += t.Size()
	}
	return total
}

// IsValid reports whether every trajectory respects its configuration.
func (p *Plan) IsValid() bool {
	for _, t := range p.trajectories {
		if !t.IsValid() {
			return false
		}
	}
	return true
}

// Duration returns the summed duration of all trajectories.
func (p *Plan) Duration() float64 {
	total := 0.0
	for _, t := range p.trajectories {
		total += t.Duration()
	}
	return total
}

// Observations returns the realized observations: for every segment, the
// sensor footprint center tagged with the segment's scheduled time, kept
// only when that time falls within the informative window of the cell
// containing the point.
func (p *Plan) Observations() []geo.PointTime {
	var obs []geo.PointTime
	g := p.fire.Grid()
	for _, traj := range p.trajectories {
		u := traj.Config().UAV
		for i := 0; i < traj.Size(); i++ {
			wp := u.VisibilityCenter(traj.Segment(i))
			t := traj.StartTime(i)
			c, ok := u.ObservedCell(traj.Segment(i), g)
			if !ok {
				continue
			}
			if p.fire.Arrival(c) <= t && t <= p.fire.Departure(c) {
				obs = append(obs, geo.PointTime{Pt: wp.Point(), Time: t})
			}
		}
	}
	return obs
}

// Cost sums, over every possible observation, the normalized distance to
// its closest realized observation: 0 at or inside the redundancy radius,
// 1 at or beyond the maximum informative distance, linear in between.
func (p *Plan) Cost() float64 {
	realized := p.Observations()
	total := 0.0
	for _, possible := range p.possible {
		minDist := MaxInformativeDistance
		for _, obs := range realized {
			minDist = math.Min(minDist, possible.Pt.Dist(obs.Pt))
		}
		total += (math.Max(minDist, RedundantObsDist) - RedundantObsDist) /
			(MaxInformativeDistance - RedundantObsDist)
	}
	return total
}

// Utility is the objective the search engine maximizes: the negated cost,
// so that better coverage means strictly higher utility.
func (p *Plan) Utility() float64 {
	return -p.Cost()
}

// InsertSegment inserts seg into trajectory trajID at index at. Any
// structural edit can change which points remain informative for every
// vehicle sharing the front model, so the repair pass runs globally
// afterwards.
func (p *Plan) InsertSegment(trajID int, seg uav.Segment, at int) error {
	if err := p.checkTraj(trajID); err != nil {
		return err
	}
	if err := p.trajectories[trajID].InsertSegment(seg, at); err != nil {
		return err
	}
	p.ProjectOnFirefront()
	return nil
}

// EraseSegment removes segment at from trajectory trajID and repairs.
func (p *Plan) EraseSegment(trajID, at int) error {
	if err := p.checkTraj(trajID); err != nil {
		return err
	}
	if err := p.trajectories[trajID].EraseSegment(at); err != nil {
		return err
	}
	p.ProjectOnFirefront()
	return nil
}

// ReplaceSegment substitutes segment at in trajectory trajID and repairs.
func (p *Plan) ReplaceSegment(trajID, at int, seg uav.Segment) error {
	if err := p.checkTraj(trajID); err != nil {
		return err
	}
	if err := p.trajectories[trajID].ReplaceSegment(at, seg); err != nil {
		return err
	}
	p.ProjectOnFirefront()
	return nil
}

func (p *Plan) checkTraj(trajID int) error {
	if trajID < 0 || trajID >= len(p.trajectories) {
		return fmt.Errorf("plan: no trajectory %d", trajID)
	}
	return nil
}

// ProjectOnFirefront is the repair pass: every modifiable segment is
// re-projected onto the front at its scheduled time. Segments with no
// projection are dropped; projections that land too close to a neighboring
// observation stay dropped; the rest replace the original in place. Sweeps
// repeat until stable so the pass is idempotent.
func (p *Plan) ProjectOnFirefront() {
	for sweep := 0; sweep < maxRepairSweeps; sweep++ {
		if !p.repairSweep() {
			return
		}
	}
}

// repairSweep runs one pass over all trajectories and reports whether it
// changed anything.
func (p *Plan) repairSweep() bool {
	changed := false
	for _, traj := range p.trajectories {
		u := traj.Config().UAV
		i, _ := traj.Modifiable()
		for i < traj.Size()-traj.fixedEnd {
			seg := traj.Segment(i)
			t := traj.StartTime(i)
			projected, ok := p.fire.ProjectOnFront(seg, u, t)
			if !ok {
				// Front has moved past or not yet reached this location.
				traj.eraseAt(i)
				changed = true
				continue
			}
			if projected.Equal(seg, segmentEqualEps) {
				i++
				continue
			}

			// The projection moved: drop the original, and reinsert the
			// projected segment only when it is not redundant with the
			// observation of an adjacent segment.
			curr := u.VisibilityCenter(projected).Point()
			prevDist := noNeighborDist
			if i > 0 {
				prevDist = curr.Dist(u.VisibilityCenter(traj.Segment(i - 1)).Point())
			}
			nextDist := noNeighborDist
			if i < traj.Size()-1 {
				nextDist = curr.Dist(u.VisibilityCenter(traj.Segment(i + 1)).Point())
			}
			traj.eraseAt(i)
			changed = true
			if prevDist > nearDuplicateDist && nextDist > nearDuplicateDist {
				traj.insertAt(projected, i)
				i++
			}
		}
	}
	return changed
}

// FreezeBefore freezes every trajectory's prefix scheduled before cutoff.
func (p *Plan) FreezeBefore(cutoff float64) {
	for _, t := range p.trajectories {
		t.FreezeBefore(cutoff)
	}
}

// SetFront swaps in an updated front model and rebuilds the possible
// observations. Used by replanning; the previous model is untouched.
func (p *Plan) SetFront(fire *front.Data) {
	p.fire = fire
	p.collectPossibleObservations()
}

// Clone returns an independent deep copy sharing only the front model.
func (p *Plan) Clone() *Plan {
	out := &Plan{
		timeWindow: p.timeWindow,
		fire:       p.fire,
		possible:   p.possible,
	}
	out.trajectories = make([]*Trajectory, len(p.trajectories))
	for i, t := range p.trajectories {
		out.trajectories[i] = t.Clone()
	}
	return out
}
