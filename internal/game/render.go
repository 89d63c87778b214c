package game

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

var (
	colBackground = color.RGBA{0x2b, 0x2d, 0x24, 0xff}
	colWall       = color.RGBA{0x6b, 0x5e, 0x4a, 0xff}
	colBarrier    = color.RGBA{0x9c, 0x7b, 0x4f, 0xff}
	colToxic      = color.RGBA{0x33, 0x99, 0x44, 0x80}
	colPlayer     = color.RGBA{0x3c, 0x8d, 0xde, 0xff}
	colEnemy      = color.RGBA{0xd9, 0x4a, 0x3a, 0xff}
	colDead       = color.RGBA{0x44, 0x44, 0x44, 0xff}
	colTurret     = color.RGBA{0x20, 0x20, 0x20, 0xff}
	colShot       = color.RGBA{0xff, 0xee, 0x88, 0xff}
	colPowerup    = color.RGBA{0xf0, 0xc0, 0x30, 0xff}
	colMine       = color.RGBA{0xe0, 0x60, 0x20, 0xff}
	colCursor     = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// canvas maps world units onto an RGBA image.
type canvas struct {
	img   *image.RGBA
	scale float64
	ox    float64
	oy    float64
}

func (c *canvas) pt(p Vec2) (float32, float32) {
	return float32(c.ox + p.X*c.scale), float32(c.oy + p.Y*c.scale)
}

func (c *canvas) fill(col color.Color, path func(z *vector.Rasterizer)) {
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	path(z)
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

func (c *canvas) rect(r Rect, col color.Color) {
	c.fill(col, func(z *vector.Rasterizer) { c.rectPath(z, r, false) })
}

func (c *canvas) rectPath(z *vector.Rasterizer, r Rect, reverse bool) {
	pts := []Vec2{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}}
	if reverse {
		pts[1], pts[3] = pts[3], pts[1]
	}
	c.poly(z, pts)
}

func (c *canvas) poly(z *vector.Rasterizer, pts []Vec2) {
	x, y := c.pt(pts[0])
	z.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y = c.pt(p)
		z.LineTo(x, y)
	}
	z.ClosePath()
}

func circlePoints(center Vec2, r float64, n int) []Vec2 {
	pts := make([]Vec2, n)
	for i := range pts {
		a := float64(i) / float64(n) * 2 * math.Pi
		pts[i] = center.Add(fromAngle(a).Scale(r))
	}
	return pts
}

func (c *canvas) circle(center Vec2, r float64, col color.Color) {
	c.fill(col, func(z *vector.Rasterizer) { c.poly(z, circlePoints(center, r, 20)) })
}

// line draws a segment of world width wdt as a thin quad.
func (c *canvas) line(a, b Vec2, wdt float64, col color.Color) {
	n := b.Sub(a).Norm().Perp().Scale(wdt / 2)
	c.fill(col, func(z *vector.Rasterizer) {
		c.poly(z, []Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
	})
}

// roundedRect returns the outline of a rounded rectangle, counter-clockwise
// on screen.
func roundedRect(l, t, r, b, rad float64) []Vec2 {
	if rad <= 0 {
		return []Vec2{{l, t}, {l, b}, {r, b}, {r, t}}
	}
	const seg = 6
	corners := []struct {
		c     Vec2
		start float64
	}{
		{Vec2{l + rad, t + rad}, math.Pi * 1.5},
		{Vec2{l + rad, b - rad}, math.Pi},
		{Vec2{r - rad, b - rad}, math.Pi * 0.5},
		{Vec2{r - rad, t + rad}, 0},
	}
	var pts []Vec2
	for _, k := range corners {
		for i := 0; i <= seg; i++ {
			a := k.start - float64(i)/seg*math.Pi/2
			pts = append(pts, k.c.Add(fromAngle(a).Scale(rad)))
		}
	}
	return pts
}

// Render draws a top-down view of w into a width x height image. It is the
// screenshot source when no window exists. cursor, when non-nil, is drawn as
// a crosshair.
func Render(w *World, width, height int, cursor *Vec2) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colBackground), image.Point{}, draw.Src)
	if w == nil || w.Width <= 0 || w.Height <= 0 {
		return img
	}

	scale := math.Min(float64(width)/w.Width, float64(height)/w.Height)
	c := &canvas{
		img:   img,
		scale: scale,
		ox:    (float64(width) - w.Width*scale) / 2,
		oy:    (float64(height) - w.Height*scale) / 2,
	}

	for _, r := range w.Walls {
		c.rect(r, colWall)
	}
	for _, b := range w.Barriers {
		c.rect(b.Rect(), colBarrier)
	}
	for _, p := range w.Powerups {
		d := 0.3
		c.fill(colPowerup, func(z *vector.Rasterizer) {
			c.poly(z, []Vec2{{p.Pos.X, p.Pos.Y - d}, {p.Pos.X + d, p.Pos.Y}, {p.Pos.X, p.Pos.Y + d}, {p.Pos.X - d, p.Pos.Y}})
		})
	}
	for _, m := range w.Mines {
		c.circle(m.Pos, 0.2, colMine)
	}
	for _, t := range w.Tanks {
		if !t.Is(FlagActive) {
			continue
		}
		col := colEnemy
		switch {
		case t.Is(FlagDead):
			col = colDead
		case t.Is(FlagPlayer):
			col = colPlayer
		}
		c.circle(t.Pos, tankRadius, col)
		if !t.Is(FlagDead) {
			c.line(t.Pos, t.Pos.Add(fromAngle(t.TurretAngle).Scale(tankRadius*1.4)), 0.15, colTurret)
		}
	}
	for _, p := range w.Projectiles {
		c.circle(p.Pos, projRadius*1.5, colShot)
	}

	if cl := w.Cloud; cl != nil && cl.Progress() > 0 {
		// Outer map clockwise, safe zone counter-clockwise: the safe zone is
		// left as a hole.
		c.fill(colToxic, func(z *vector.Rasterizer) {
			c.rectPath(z, Rect{0, 0, w.Width, w.Height}, false)
			c.poly(z, cl.SafeOutline())
		})
	}

	if cursor != nil {
		const arm = 0.4
		c.line(cursor.Add(Vec2{-arm, 0}), cursor.Add(Vec2{arm, 0}), 0.06, colCursor)
		c.line(cursor.Add(Vec2{0, -arm}), cursor.Add(Vec2{0, arm}), 0.06, colCursor)
	}
	return img
}
