package uav

import "math"

// Dubins shortest paths between oriented waypoints for a vehicle with a
// minimum turn radius. Each candidate path is one of the six words
// LSL, RSR, LSR, RSL, RLR, LRL; lengths below are in turn-radius units.

type dubinsWord int

const (
	wordLSL dubinsWord = iota
	wordRSR
	wordLSR
	wordRSL
	wordRLR
	wordLRL
)

var wordSegments = [6][3]byte{
	{'L', 'S', 'L'},
	{'R', 'S', 'R'},
	{'L', 'S', 'R'},
	{'R', 'S', 'L'},
	{'R', 'L', 'R'},
	{'L', 'R', 'L'},
}

// dubinsPath is a solved path from origin pose qi, expressed as three
// normalized segment lengths and the word identifying the segment types.
type dubinsPath struct {
	qi   [3]float64 // x, y, heading of the origin
	seg  [3]float64 // normalized segment lengths
	rho  float64
	word dubinsWord
}

// length returns the world-unit length of the path.
func (p *dubinsPath) length() float64 {
	return (p.seg[0] + p.seg[1] + p.seg[2]) * p.rho
}

// shortestDubins solves the minimum-length path between two poses.
// ok is false only when rho is not positive.
func shortestDubins(a, b Waypoint, rho float64) (dubinsPath, bool) {
	if rho <= 0 {
		return dubinsPath{}, false
	}

	dx := b.X - a.X
	dy := b.Y - a.Y
	d := math.Hypot(dx, dy) / rho
	theta := 0.0
	if d > 0 {
		theta = mod2pi(math.Atan2(dy, dx))
	}
	alpha := mod2pi(a.Dir - theta)
	beta := mod2pi(b.Dir - theta)

	best := dubinsPath{qi: [3]float64{a.X, a.Y, a.Dir}, rho: rho}
	bestLen := math.Inf(1)
	for w := wordLSL; w <= wordLRL; w++ {
		seg, ok := solveWord(w, d, alpha, beta)
		if !ok {
			continue
		}
		l := seg[0] + seg[1] + seg[2]
		if l < bestLen {
			bestLen = l
			best.seg = seg
			best.word = w
		}
	}
	return best, !math.IsInf(bestLen, 1)
}

func solveWord(w dubinsWord, d, alpha, beta float64) ([3]float64, bool) {
	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)
	cab := math.Cos(alpha - beta)

	switch w {
	case wordLSL:
		p2 := 2 + d*d - 2*cab + 2*d*(sa-sb)
		if p2 < 0 {
			return [3]float64{}, false
		}
		tmp := math.Atan2(cb-ca, d+sa-sb)
		return [3]float64{mod2pi(tmp - alpha), math.Sqrt(p2), mod2pi(beta - tmp)}, true
	case wordRSR:
		p2 := 2 + d*d - 2*cab + 2*d*(sb-sa)
		if p2 < 0 {
			return [3]float64{}, false
		}
		tmp := math.Atan2(ca-cb, d-sa+sb)
		return [3]float64{mod2pi(alpha - tmp), math.Sqrt(p2), mod2pi(tmp - beta)}, true
	case wordLSR:
		p2 := -2 + d*d + 2*cab + 2*d*(sa+sb)
		if p2 < 0 {
			return [3]float64{}, false
		}
		p := math.Sqrt(p2)
		tmp := math.Atan2(-ca-cb, d+sa+sb) - math.Atan2(-2, p)
		return [3]float64{mod2pi(tmp - alpha), p, mod2pi(tmp - mod2pi(beta))}, true
	case wordRSL:
		p2 := -2 + d*d + 2*cab - 2*d*(sa+sb)
		if p2 < 0 {
			return [3]float64{}, false
		}
		p := math.Sqrt(p2)
		tmp := math.Atan2(ca+cb, d-sa-sb) - math.Atan2(2, p)
		return [3]float64{mod2pi(alpha - tmp), p, mod2pi(beta - tmp)}, true
	case wordRLR:
		tmp := (6 - d*d + 2*cab + 2*d*(sa-sb)) / 8
		if math.Abs(tmp) > 1 {
			return [3]float64{}, false
		}
		p := mod2pi(2*math.Pi - math.Acos(tmp))
		t := mod2pi(alpha - math.Atan2(ca-cb, d-sa+sb) + p/2)
		return [3]float64{t, p, mod2pi(alpha - beta - t + p)}, true
	case wordLRL:
		tmp := (6 - d*d + 2*cab + 2*d*(sb-sa)) / 8
		if math.Abs(tmp) > 1 {
			return [3]float64{}, false
		}
		p := mod2pi(2*math.Pi - math.Acos(tmp))
		t := mod2pi(-alpha + math.Atan2(cb-ca, d+sa-sb) + p/2)
		return [3]float64{t, p, mod2pi(mod2pi(beta) - alpha - t + p)}, true
	}
	return [3]float64{}, false
}

// at returns the pose after travelling world distance s along the path.
func (p *dubinsPath) at(s float64) [3]float64 {
	t := s / p.rho
	q := [3]float64{0, 0, p.qi[2]}
	types := wordSegments[p.word]
	for i := 0; i < 3 && t > 0; i++ {
		seg := math.Min(t, p.seg[i])
		q = advance(q, seg, types[i])
		t -= seg
	}
	q[0] = q[0]*p.rho + p.qi[0]
	q[1] = q[1]*p.rho + p.qi[1]
	q[2] = mod2pi(q[2])
	return q
}

// advance moves a normalized pose by arc parameter t along one segment type.
func advance(q [3]float64, t float64, typ byte) [3]float64 {
	st, ct := math.Sincos(q[2])
	switch typ {
	case 'L':
		return [3]float64{
			q[0] + math.Sin(q[2]+t) - st,
			q[1] - math.Cos(q[2]+t) + ct,
			q[2] + t,
		}
	case 'R':
		return [3]float64{
			q[0] - math.Sin(q[2]-t) + st,
			q[1] + math.Cos(q[2]-t) - ct,
			q[2] - t,
		}
	default: // 'S'
		return [3]float64{q[0] + ct*t, q[1] + st*t, q[2]}
	}
}
