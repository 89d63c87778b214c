package game

import "math"

const toxicDamageInset = 0.5

// ToxicConfig configures the closing cloud of a map.
type ToxicConfig struct {
	Delay     float64 // seconds before closing starts
	Duration  float64 // seconds to reach the final size
	SafeRatio float64 // final safe zone as a fraction of the smaller map side
}

// ToxicCloud shrinks a rounded-rectangle safe zone toward the map centre.
// Everything outside the boundary is toxic.
type ToxicCloud struct {
	cfg      ToxicConfig
	mapW     float64
	mapH     float64
	center   Vec2
	elapsed  float64
	progress float64

	Left, Right  float64
	Top, Bottom  float64
	CornerRadius float64
}

// NewToxicCloud returns a cloud covering nothing yet.
func NewToxicCloud(cfg ToxicConfig, mapW, mapH float64) *ToxicCloud {
	c := &ToxicCloud{cfg: cfg, mapW: mapW, mapH: mapH, center: Vec2{mapW / 2, mapH / 2}}
	c.updateBoundary()
	return c
}

// Progress is 0 before closing starts and 1 once the safe zone is final.
func (c *ToxicCloud) Progress() float64 {
	if c == nil {
		return 0
	}
	return c.progress
}

// Center is the point the cloud closes toward.
func (c *ToxicCloud) Center() Vec2 {
	return c.center
}

// Update advances the cloud by dt seconds.
func (c *ToxicCloud) Update(dt float64) {
	if c == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}
	c.elapsed += dt
	switch {
	case c.elapsed < c.cfg.Delay:
		c.progress = 0
	case c.cfg.Duration <= 0:
		c.progress = 1
	default:
		c.progress = clamp((c.elapsed-c.cfg.Delay)/c.cfg.Duration, 0, 1)
	}
	c.updateBoundary()
}

func (c *ToxicCloud) updateBoundary() {
	ratio := clamp(c.cfg.SafeRatio, 0.01, 1)
	safe := math.Min(c.mapW, c.mapH) * ratio * 0.5

	lerp := func(a, b float64) float64 { return a + (b-a)*c.progress }
	c.Left = lerp(0, clamp(c.center.X-safe, 0, c.mapW))
	c.Right = lerp(c.mapW, clamp(c.center.X+safe, 0, c.mapW))
	c.Top = lerp(0, clamp(c.center.Y-safe, 0, c.mapH))
	c.Bottom = lerp(c.mapH, clamp(c.center.Y+safe, 0, c.mapH))

	maxR := math.Min(c.Right-c.Left, c.Bottom-c.Top) * 0.5
	c.CornerRadius = clamp(c.progress*maxR, 0, maxR)
}

func (c *ToxicCloud) safe(p Vec2, inset float64) bool {
	left, right := c.Left-inset, c.Right+inset
	top, bottom := c.Top-inset, c.Bottom+inset
	r := math.Min(c.CornerRadius+inset, math.Min(right-left, bottom-top)*0.5)
	if r <= 0 {
		return p.X >= left && p.X <= right && p.Y >= top && p.Y <= bottom
	}
	cx := clamp(p.X, left+r, right-r)
	cy := clamp(p.Y, top+r, bottom-r)
	dx, dy := p.X-cx, p.Y-cy
	return dx*dx+dy*dy <= r*r
}

// Inside reports whether p is in the toxic area. A nil cloud is never toxic.
func (c *ToxicCloud) Inside(p Vec2) bool {
	return c != nil && !c.safe(p, 0)
}

// Damaging reports whether p is deep enough inside the cloud to hurt.
func (c *ToxicCloud) Damaging(p Vec2) bool {
	return c.Inside(p) && !c.safe(p, toxicDamageInset)
}

// WillBeInside predicts Inside at a future progress value, ignoring corner
// rounding.
func (c *ToxicCloud) WillBeInside(p Vec2, progress float64) bool {
	if c == nil {
		return false
	}
	saved := *c
	c.progress = clamp(progress, 0, 1)
	c.updateBoundary()
	c.CornerRadius = 0
	inside := !c.safe(p, 0)
	*c = saved
	return inside
}

// SafeOutline returns the safe-zone boundary as a closed polygon.
func (c *ToxicCloud) SafeOutline() []Vec2 {
	return roundedRect(c.Left, c.Top, c.Right, c.Bottom, c.CornerRadius)
}
