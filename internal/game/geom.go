package game

import "math"

// Vec2 is a world-space vector. X grows right, Y grows down, one unit is
// one map tile.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2   { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64           { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64    { return v.Sub(o).Len() }
func (v Vec2) Angle() float64         { return math.Atan2(v.Y, v.X) }
func (v Vec2) Perp() Vec2             { return Vec2{-v.Y, v.X} }
func fromAngle(a float64) Vec2        { return Vec2{math.Cos(a), math.Sin(a)} }
func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

// Norm returns the unit vector, or zero for a zero vector.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rect is an axis-aligned box given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// overlapsCircle reports whether a circle of radius rad at c touches r.
func (r Rect) overlapsCircle(c Vec2, rad float64) bool {
	dx := c.X - clamp(c.X, r.X, r.X+r.W)
	dy := c.Y - clamp(c.Y, r.Y, r.Y+r.H)
	return dx*dx+dy*dy < rad*rad
}

// lerpAngle rotates a toward b by at most maxStep radians.
func lerpAngle(a, b, maxStep float64) float64 {
	d := math.Remainder(b-a, 2*math.Pi)
	if math.Abs(d) <= maxStep {
		return b
	}
	if d > 0 {
		return a + maxStep
	}
	return a - maxStep
}
