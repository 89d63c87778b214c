package app

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/goofansu/tankgame/internal/game"
)

// controls is the slice of ebiten's input API the host reads.
type controls interface {
	pressed(k ebiten.Key) bool
	button(b ebiten.MouseButton) bool
	cursor() (int, int)
}

type ebitenControls struct{}

func (ebitenControls) pressed(k ebiten.Key) bool { return ebiten.IsKeyPressed(k) }
func (ebitenControls) button(b ebiten.MouseButton) bool { return ebiten.IsMouseButtonPressed(b) }
func (ebitenControls) cursor() (int, int) { return ebiten.CursorPosition() }

// justPressed reports a key that went down since the previous tick.
func (g *Game) justPressed(k ebiten.Key) bool {
	down := g.in.pressed(k)
	g.curKeys[k] = down
	return down && !g.prevKeys[k]
}

var moveKeys = []struct {
	keys [2]ebiten.Key
	dir  game.Vec2
}{
	{[2]ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}, game.Vec2{X: 0, Y: -1}},
	{[2]ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}, game.Vec2{X: 0, Y: 1}},
	{[2]ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}, game.Vec2{X: -1, Y: 0}},
	{[2]ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}, game.Vec2{X: 1, Y: 0}},
}

// frameInput samples the physical controls. The session ignores them while
// a script is driving the player.
func (g *Game) frameInput() game.FrameInput {
	var move game.Vec2
	for _, mk := range moveKeys {
		if g.in.pressed(mk.keys[0]) || g.in.pressed(mk.keys[1]) {
			move = move.Add(mk.dir)
		}
	}

	tin := game.TankInput{
		Move: move,
		Fire: g.in.pressed(ebiten.KeySpace) || g.in.button(ebiten.MouseButtonLeft),
	}
	if p := g.sess.World().Player; p != nil {
		aim := g.view.toWorld(g.in.cursor())
		tin.Turret = math.Atan2(aim.Y-p.Pos.Y, aim.X-p.Pos.X)
		tin.HasTurret = true
	}
	right := g.in.button(ebiten.MouseButtonRight)
	tin.LayMine = right && !g.prevRight
	g.prevRight = right

	cycle := 0
	if g.justPressed(ebiten.KeyE) {
		cycle++
	}
	if g.justPressed(ebiten.KeyQ) {
		cycle--
	}
	return game.FrameInput{Tank: tin, WeaponCycle: cycle, Dt: 1 / float64(ebiten.TPS())}
}

// view maps world units to screen pixels, letterboxed and centred.
type view struct {
	scale  float64
	ox, oy float64
}

func fit(w *game.World, width, height int) view {
	if w == nil || w.Width <= 0 || w.Height <= 0 {
		return view{scale: 1}
	}
	s := math.Min(float64(width)/w.Width, float64(height)/w.Height)
	return view{
		scale: s,
		ox:    (float64(width) - w.Width*s) / 2,
		oy:    (float64(height) - w.Height*s) / 2,
	}
}

func (v view) toScreen(p game.Vec2) (float32, float32) {
	return float32(v.ox + p.X*v.scale), float32(v.oy + p.Y*v.scale)
}

func (v view) length(d float64) float32 {
	return float32(d * v.scale)
}

func (v view) toWorld(x, y int) game.Vec2 {
	if v.scale == 0 {
		return game.Vec2{}
	}
	return game.Vec2{X: (float64(x) - v.ox) / v.scale, Y: (float64(y) - v.oy) / v.scale}
}
