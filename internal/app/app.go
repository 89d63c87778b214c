// Package app is the windowed host: it adapts a game.Session to ebiten's
// Update/Draw loop, turns keyboard and mouse into frame input, draws the
// world and writes screenshots from the real framebuffer.
package app

import (
	"fmt"
	"image"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/game"
	"github.com/goofansu/tankgame/internal/logging"
	"github.com/goofansu/tankgame/internal/screenshot"
)

// DefaultTurboFrames is how many session frames one ebiten tick runs while a
// script has turbo on.
const DefaultTurboFrames = 8

// Game implements ebiten.Game over a session.
type Game struct {
	sess *game.Session
	log  logrus.FieldLogger

	width, height int
	turboFrames   int

	in        controls
	prevKeys  map[ebiten.Key]bool
	curKeys   map[ebiten.Key]bool
	prevRight bool

	view    view
	shots   []string
	showHUD bool
	events  *EventPanel
	copy    func(string) error
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Game) { g.log = l }
}

// WithSize sets the logical screen size.
func WithSize(w, h int) Option {
	return func(g *Game) {
		if w > 0 && h > 0 {
			g.width, g.height = w, h
		}
	}
}

// WithTurboFrames sets how many frames run per tick in turbo mode.
func WithTurboFrames(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.turboFrames = n
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(g *Game) { g.copy = fn }
}

func withControls(c controls) Option {
	return func(g *Game) { g.in = c }
}

// New wraps sess. Screenshots requested by the session are taken from the
// next drawn frame.
func New(sess *game.Session, opts ...Option) *Game {
	w, h := sess.RenderSize()
	g := &Game{
		sess:        sess,
		width:       w,
		height:      h,
		turboFrames: DefaultTurboFrames,
		in:          ebitenControls{},
		prevKeys:    map[ebiten.Key]bool{},
		curKeys:     map[ebiten.Key]bool{},
		showHUD:     true,
		events:      NewEventPanel(),
		copy:        clipboard.WriteAll,
	}
	for _, o := range opts {
		o(g)
	}
	g.log = logging.Or(g.log, logging.CatRender)
	sess.SetCapture(g.queueShot)
	return g
}

// Update runs one ebiten tick: one session frame, or several in turbo.
func (g *Game) Update() error {
	if g.sess.Quit() {
		return ebiten.Termination
	}
	g.handleHotkeys()

	n := 1
	if g.sess.Turbo() {
		n = g.turboFrames
	}
	g.runFrames(g.frameInput(), n)
	g.events.Sync(g.sess.FrameLog())

	g.prevKeys, g.curKeys = g.curKeys, map[ebiten.Key]bool{}
	if g.sess.Quit() && len(g.shots) == 0 {
		return ebiten.Termination
	}
	return nil
}

// runFrames runs up to n session frames. It stops early on quit or when a
// screenshot is waiting for the next Draw, so the capture shows the frame
// that asked for it.
func (g *Game) runFrames(in game.FrameInput, n int) int {
	for i := 0; i < n; i++ {
		res := g.sess.Frame(in)
		in.WeaponCycle = 0
		in.Tank.LayMine = false
		if res.Quit || len(g.shots) > 0 {
			return i + 1
		}
	}
	return n
}

// Draw renders the world, saves pending screenshots, then overlays the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colWindow)
	w := g.sess.World()
	b := screen.Bounds()
	g.view = fit(w, b.Dx(), b.Dy())

	if g.sess.Render() || len(g.shots) > 0 {
		g.drawWorld(screen, w)
	}
	if len(g.shots) > 0 {
		g.saveShots(screen)
	}
	if g.showHUD {
		g.events.Draw(screen, b.Dx()-eventPanelWidth, b.Dy())
		g.drawHUD(screen)
	}
}

// Layout keeps a fixed logical resolution.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func (g *Game) queueShot(path string) error {
	g.shots = append(g.shots, path)
	return nil
}

func (g *Game) saveShots(screen *ebiten.Image) {
	img := readScreen(screen)
	for _, p := range g.shots {
		if err := screenshot.Save(p, img); err != nil {
			g.log.WithError(err).Errorf("Screenshot failed: %s", p)
			continue
		}
		g.log.Infof("Screenshot written: %s", p)
	}
	g.shots = g.shots[:0]
}

func readScreen(screen *ebiten.Image) *image.RGBA {
	b := screen.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	screen.ReadPixels(img.Pix)
	return img
}

func (g *Game) handleHotkeys() {
	if g.justPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.justPressed(ebiten.KeyF9) {
		g.copyDump()
	}
	if g.justPressed(ebiten.KeyF12) {
		g.queueShot(fmt.Sprintf("tankgame_%05d.png", g.sess.FrameNumber()))
	}
	if g.justPressed(ebiten.KeyEscape) {
		g.log.Info("Quit requested from keyboard")
		g.sess.RequestQuit()
	}
}

// copyDump puts the most recent state dump on the clipboard.
func (g *Game) copyDump() {
	text := g.sess.LastDump()
	if text == "" {
		g.log.Warn("No state dump to copy yet")
		return
	}
	if err := g.copy(text); err != nil {
		g.log.WithError(err).Error("Clipboard copy failed")
		return
	}
	g.log.Infof("Copied %d bytes of state dump to clipboard", len(text))
}
