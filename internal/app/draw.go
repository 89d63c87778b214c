package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/goofansu/tankgame/internal/game"
)

var (
	colWindow   = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	colGround   = color.RGBA{R: 43, G: 45, B: 36, A: 255}
	colBorder   = color.RGBA{R: 65, G: 90, B: 65, A: 255}
	colWall     = color.RGBA{R: 107, G: 94, B: 74, A: 255}
	colBarrier  = color.RGBA{R: 156, G: 123, B: 79, A: 255}
	colPowerup  = color.RGBA{R: 240, G: 192, B: 48, A: 255}
	colMine     = color.RGBA{R: 224, G: 96, B: 32, A: 255}
	colPlayer   = color.RGBA{R: 60, G: 141, B: 222, A: 255}
	colEnemy    = color.RGBA{R: 217, G: 74, B: 58, A: 255}
	colDead     = color.RGBA{R: 68, G: 68, B: 68, A: 255}
	colTurret   = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	colShot     = color.RGBA{R: 255, G: 238, B: 136, A: 255}
	colToxic    = color.RGBA{R: 51, G: 153, B: 68, A: 128}
	colCursor   = color.RGBA{R: 255, G: 255, B: 255, A: 220}
	colMouse    = color.RGBA{R: 255, G: 80, B: 200, A: 220}
	colPanelBg  = color.RGBA{R: 6, G: 10, B: 6, A: 210}
	colPanelRim = color.RGBA{R: 60, G: 100, B: 60, A: 180}
)

func (g *Game) drawWorld(screen *ebiten.Image, w *game.World) {
	if w == nil {
		return
	}
	v := g.view
	x0, y0 := v.toScreen(game.Vec2{})
	vector.FillRect(screen, x0, y0, v.length(w.Width), v.length(w.Height), colGround, false)
	vector.StrokeRect(screen, x0-1, y0-1, v.length(w.Width)+2, v.length(w.Height)+2, 2, colBorder, false)

	for _, r := range w.Walls {
		g.fillRect(screen, r, colWall)
	}
	for _, b := range w.Barriers {
		g.fillRect(screen, b.Rect(), colBarrier)
	}
	for _, p := range w.Powerups {
		x, y := v.toScreen(p.Pos)
		vector.FillCircle(screen, x, y, v.length(0.3), colPowerup, true)
		ebitenutil.DebugPrintAt(screen, p.Type.String(), int(x)+int(v.length(0.35)), int(y)-8)
	}
	for _, m := range w.Mines {
		x, y := v.toScreen(m.Pos)
		vector.FillCircle(screen, x, y, v.length(0.2), colMine, true)
	}
	for _, t := range w.Tanks {
		g.drawTank(screen, t)
	}
	for _, p := range w.Projectiles {
		x, y := v.toScreen(p.Pos)
		vector.FillCircle(screen, x, y, v.length(0.15), colShot, true)
	}
	g.drawToxic(screen, w)

	if c, ok := g.sess.Cursor(); ok {
		x, y := v.toScreen(c)
		arm := v.length(0.4)
		vector.StrokeLine(screen, x-arm, y, x+arm, y, 1.5, colCursor, true)
		vector.StrokeLine(screen, x, y-arm, x, y+arm, 1.5, colCursor, true)
	}
	if m, ok := g.sess.MouseScreen(); ok {
		vector.StrokeCircle(screen, float32(m.X), float32(m.Y), 6, 1.5, colMouse, true)
	}
}

func (g *Game) fillRect(screen *ebiten.Image, r game.Rect, col color.Color) {
	x, y := g.view.toScreen(game.Vec2{X: r.X, Y: r.Y})
	vector.FillRect(screen, x, y, g.view.length(r.W), g.view.length(r.H), col, false)
}

func (g *Game) drawTank(screen *ebiten.Image, t *game.Tank) {
	if !t.Is(game.FlagActive) {
		return
	}
	col := colEnemy
	switch {
	case t.Is(game.FlagDead):
		col = colDead
	case t.Is(game.FlagPlayer):
		col = colPlayer
	}
	v := g.view
	x, y := v.toScreen(t.Pos)
	vector.FillCircle(screen, x, y, v.length(t.Radius()), col, true)
	if t.Is(game.FlagDead) {
		return
	}
	dir := game.Vec2{X: math.Cos(t.TurretAngle), Y: math.Sin(t.TurretAngle)}
	tip := t.Pos.Add(dir.Scale(t.Radius() * 1.4))
	tx, ty := v.toScreen(tip)
	vector.StrokeLine(screen, x, y, tx, ty, v.length(0.15), colTurret, true)
	if t.Is(game.FlagInvincible) {
		vector.StrokeCircle(screen, x, y, v.length(t.Radius())+3, 1, colCursor, true)
	}
}

// drawToxic fills the map minus the safe zone using the even-odd rule.
func (g *Game) drawToxic(screen *ebiten.Image, w *game.World) {
	cl := w.Cloud
	if cl == nil || cl.Progress() <= 0 {
		return
	}
	v := g.view
	var path vector.Path
	x0, y0 := v.toScreen(game.Vec2{})
	x1, y1 := v.toScreen(game.Vec2{X: w.Width, Y: w.Height})
	path.MoveTo(x0, y0)
	path.LineTo(x1, y0)
	path.LineTo(x1, y1)
	path.LineTo(x0, y1)
	path.Close()
	for i, p := range cl.SafeOutline() {
		x, y := v.toScreen(p)
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}
	path.Close()

	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(colToxic)
	vector.FillPath(screen, &path, &vector.FillOptions{FillRule: vector.FillRuleEvenOdd}, op)
}

// hudLines is the text of the bottom-left status panel.
func (g *Game) hudLines() []string {
	s := g.sess
	w := s.World()
	lines := []string{
		fmt.Sprintf("F=%05d T=%05d hash=%08x seed=%d", s.FrameNumber(), s.Sim().Tick(), s.Sim().LastHash(), s.Sim().Seed()),
		fmt.Sprintf("map: %s  enemies: %d/%d", w.Name, w.EnemiesAlive(), len(w.AI)),
	}
	if p := w.Player; p != nil {
		lines = append(lines, fmt.Sprintf("hp %d/%d  weapon %s  mines %d", p.Health, p.MaxHealth, p.Weapon(), p.Mines))
	}
	if sc := s.Script(); sc != nil {
		state := "running"
		if sc.Done() {
			state = "done"
		}
		lines = append(lines, fmt.Sprintf("script %s %d/%d  wait %d  turbo=%t render=%t",
			state, sc.Cursor(), sc.Len(), sc.FramesLeft(), s.Turbo(), s.Render()))
	}
	return append(lines,
		"WASD move  mouse aim  space/LMB fire  RMB mine",
		"Q/E weapon  F9 copy dump  F12 shot  H hud  Esc quit")
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	const lineH, charW, pad = 16, 6, 5
	lines := g.hudLines()
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + pad*2)
	boxH := float32(len(lines)*lineH + pad*2)
	bx := float32(4)
	by := float32(screen.Bounds().Dy()) - boxH - 4

	vector.FillRect(screen, bx, by, boxW, boxH, colPanelBg, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1, colPanelRim, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, int(bx)+pad, int(by)+pad+i*lineH)
	}
}
