package geom

// Point is a position on the map plane.
type Point struct {
	X, Y float64
}

// Vec is a displacement or velocity on the map plane.
type Vec struct {
	X, Y float64
}

func (p Point) Add(v Vec) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

func (p Point) Sub(o Point) Vec {
	return Vec{X: p.X - o.X, Y: p.Y - o.Y}
}

func (v Vec) Scale(k float64) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec) SqLen() float64 {
	return v.Dot(v)
}

func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// ClosestApproach describes the nearest point of a moving gatherer's
// segment a→b to a stationary item at c.
type ClosestApproach struct {
	SqDistance float64 // squared distance at the closest point
	Ratio      float64 // fractional position along a→b, clamped to [0,1]
}

// Reached reports whether the approach came within the given radius.
func (r ClosestApproach) Reached(radius float64) bool {
	return r.Ratio >= 0 && r.Ratio <= 1 && r.SqDistance <= radius*radius
}

// Approach computes the closest approach of the segment a→b to point c.
// A zero-length segment degenerates to the plain point distance with
// ratio 0, so stationary gatherers are still tested against item disks.
func Approach(a, b, c Point) ClosestApproach {
	ab := b.Sub(a)
	if ab.IsZero() {
		return ClosestApproach{SqDistance: c.Sub(a).SqLen(), Ratio: 0}
	}
	t := c.Sub(a).Dot(ab) / ab.SqLen()
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Add(ab.Scale(t))
	return ClosestApproach{SqDistance: c.Sub(closest).SqLen(), Ratio: t}
}
