package game

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/debugcmd"
	"github.com/goofansu/tankgame/internal/debugscript"
	"github.com/goofansu/tankgame/internal/dump"
	"github.com/goofansu/tankgame/internal/logging"
	"github.com/goofansu/tankgame/internal/screenshot"
	"github.com/goofansu/tankgame/internal/sim"
)

// Default screenshot size for the software renderer.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// CaptureFunc saves the current frame to path.
type CaptureFunc func(path string) error

// FrameInput is what the host feeds into one frame.
type FrameInput struct {
	Tank        TankInput // physical controls, used when no script drives the player
	WeaponCycle int
	Dt          float64 // wall-clock seconds since the previous frame
}

// FrameResult reports what a frame did.
type FrameResult struct {
	Ticks int
	Quit  bool
}

// Session is the frame host: it polls command sources, runs the debug
// script, steps the simulation and carries out the script's actions.
type Session struct {
	log      logrus.FieldLogger
	sim      *sim.Sim
	world    *World
	mapPath  string
	script   *debugscript.Script
	source   debugcmd.Source
	adhoc    bool
	capture  CaptureFunc
	frameLog *FrameLog

	width, height int
	quitOnEnd     bool
	publish       bool

	frame     int
	quit      bool
	completed bool

	cursor         Vec2
	hasCursor      bool
	mouseScreen    Vec2
	hasMouseScreen bool

	lastDump  atomic.Pointer[string]
	published atomic.Pointer[dump.State]

	outDir        string
	pendingMap    string
	pendingScript string
	scriptPath    string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logrus.FieldLogger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithSessionSeed seeds the simulation RNG.
func WithSessionSeed(seed uint32) SessionOption {
	return func(s *Session) { s.sim.Reset(seed) }
}

// WithMapFile loads the initial map from path.
func WithMapFile(path string) SessionOption {
	return func(s *Session) { s.pendingMap = path }
}

// WithMap starts from an already parsed map.
func WithMap(m *Map) SessionOption {
	return func(s *Session) { s.world = NewWorld(m, s.sim.Rng(), s.log) }
}

// WithScriptText runs an inline debug script from the first frame.
func WithScriptText(text string) SessionOption {
	return func(s *Session) { s.pendingScript = text }
}

// WithScriptFile runs a debug script file from the first frame.
func WithScriptFile(path string) SessionOption {
	return func(s *Session) { s.scriptPath = path }
}

// WithSource adds a command source polled once per frame.
func WithSource(src debugcmd.Source) SessionOption {
	return func(s *Session) {
		if src == nil {
			return
		}
		if s.source == nil {
			s.source = src
			return
		}
		s.source = debugcmd.Sources{s.source, src}
	}
}

// WithAdhocCommands makes polled text use the simple screenshot/quit
// protocol instead of being injected into the script.
func WithAdhocCommands(on bool) SessionOption {
	return func(s *Session) { s.adhoc = on }
}

// WithCapture replaces the software renderer as screenshot source.
func WithCapture(fn CaptureFunc) SessionOption {
	return func(s *Session) { s.capture = fn }
}

// WithRenderSize sets the software screenshot size.
func WithRenderSize(w, h int) SessionOption {
	return func(s *Session) {
		if w > 0 && h > 0 {
			s.width, s.height = w, h
		}
	}
}

// WithQuitOnScriptEnd controls whether running out of script commands ends
// the session. It defaults to true.
func WithQuitOnScriptEnd(on bool) SessionOption {
	return func(s *Session) { s.quitOnEnd = on }
}

// WithOutputDir resolves relative screenshot and dump paths against dir.
func WithOutputDir(dir string) SessionOption {
	return func(s *Session) { s.outDir = dir }
}

// WithFrameLog records session events into fl.
func WithFrameLog(fl *FrameLog) SessionOption {
	return func(s *Session) { s.frameLog = fl }
}

// WithStatePublishing makes every frame publish a snapshot readable from
// other goroutines through PublishedState.
func WithStatePublishing(on bool) SessionOption {
	return func(s *Session) { s.publish = on }
}

// NewSession builds a session. Map and script load failures are returned.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		sim:       sim.New(0),
		width:     DefaultWidth,
		height:    DefaultHeight,
		quitOnEnd: true,
		frameLog:  NewFrameLog(false),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = logging.Or(s.log, logging.CatCore)
	if s.capture == nil {
		s.capture = s.renderToFile
	}

	switch {
	case s.pendingMap != "":
		m, err := LoadMap(s.pendingMap, s.log)
		if err != nil {
			return nil, err
		}
		s.mapPath = s.pendingMap
		s.world = NewWorld(m, s.sim.Rng(), s.log)
	case s.world == nil:
		m, err := ParseMap(strings.NewReader(DefaultMapText), s.log)
		if err != nil {
			return nil, err
		}
		s.world = NewWorld(m, s.sim.Rng(), s.log)
	}

	var err error
	switch {
	case s.scriptPath != "":
		s.script, err = debugscript.Load(s.scriptPath, debugscript.WithLogger(s.log))
	case s.pendingScript != "":
		s.script, err = debugscript.FromString(s.pendingScript, debugscript.WithLogger(s.log))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) World() *World { return s.world }
func (s *Session) Sim() *sim.Sim { return s.sim }
func (s *Session) Script() *debugscript.Script { return s.script }
func (s *Session) FrameLog() *FrameLog { return s.frameLog }
func (s *Session) FrameNumber() int { return s.frame }
func (s *Session) Quit() bool { return s.quit }
func (s *Session) Logger() logrus.FieldLogger { return s.log }
func (s *Session) RenderSize() (w int, h int) { return s.width, s.height }
func (s *Session) Cursor() (Vec2, bool) { return s.cursor, s.hasCursor }
func (s *Session) MouseScreen() (Vec2, bool) { return s.mouseScreen, s.hasMouseScreen }
func (s *Session) SetCapture(fn CaptureFunc) { s.capture = fn }
func (s *Session) scripted() bool { return s.script.BlocksInput() }
func (s *Session) note(cat, key, value string) { s.frameLog.Add(s.frame, s.sim.Tick(), cat, key, value, 0) }

// Completed reports whether the session ended because its script ran out.
func (s *Session) Completed() bool { return s.completed }

// RequestQuit ends the session after the current frame.
func (s *Session) RequestQuit() { s.quit = true }

// Turbo reports whether a running script asked for one tick per frame with
// no frame pacing. A finished script hands pacing back to the host.
func (s *Session) Turbo() bool {
	return s.scripted() && s.script.Turbo()
}

// Render reports whether the host should draw the world.
func (s *Session) Render() bool {
	return !s.scripted() || s.script.Render()
}

// LastDump returns the text of the most recent state dump.
func (s *Session) LastDump() string {
	if p := s.lastDump.Load(); p != nil {
		return *p
	}
	return ""
}

// PublishedState returns the snapshot published after the last frame. It is
// safe to call from any goroutine.
func (s *Session) PublishedState() (dump.State, bool) {
	if p := s.published.Load(); p != nil {
		return *p, true
	}
	return dump.State{}, false
}

// Frame runs one host frame.
func (s *Session) Frame(in FrameInput) FrameResult {
	if s.quit {
		return FrameResult{Quit: true}
	}
	s.frame++

	if text, ok := s.pollSource(); ok {
		if s.adhoc {
			s.runAdhoc(text)
		} else {
			s.note("cmd", "inject", firstLine(text))
			s.script = debugscript.Inject(s.script, text, debugscript.WithLogger(s.log))
		}
	}

	var shot, dumpPath string
	if s.scripted() {
	actions:
		for {
			switch a := s.script.Update().(type) {
			case debugscript.Continue:
				break actions
			case debugscript.Quit:
				if !a.Completed || s.quitOnEnd {
					s.note("script", "quit", fmt.Sprintf("completed=%t", a.Completed))
					s.completed = a.Completed
					s.quit = true
					return FrameResult{Quit: true}
				}
				s.note("script", "done", "")
				break actions
			case debugscript.Screenshot:
				shot = a.Path
				break actions
			case debugscript.Dump:
				dumpPath = a.Path
				break actions
			default:
				s.apply(a)
			}
		}
	}

	ticks := s.step(in)

	if shot != "" {
		s.takeScreenshot(shot)
	}
	if dumpPath != "" {
		s.writeDump(dumpPath)
	}
	if s.publish {
		st := s.world.State(s.frame)
		s.published.Store(&st)
	}
	return FrameResult{Ticks: ticks, Quit: s.quit}
}

func (s *Session) pollSource() (string, bool) {
	if s.source == nil {
		return "", false
	}
	return s.source.Poll()
}

func (s *Session) runAdhoc(text string) {
	for _, c := range debugcmd.ParseAdhoc(text) {
		switch c.Kind {
		case debugcmd.AdhocScreenshot:
			s.note("cmd", "screenshot", c.Path)
			s.takeScreenshot(c.Path)
		case debugcmd.AdhocQuit:
			s.note("cmd", "quit", "")
			s.log.Info("Debug command: quit")
			s.quit = true
		}
	}
}

// apply carries out a yielding script action that takes effect immediately.
func (s *Session) apply(a debugscript.Action) {
	w := s.world
	switch a := a.(type) {
	case debugscript.LoadMap:
		s.note("script", "map", a.Path)
		if err := s.LoadMap(a.Path); err != nil {
			s.log.WithError(err).Errorf("Debug script: failed to load map '%s'", a.Path)
		}
	case debugscript.SetSeed:
		s.note("script", "seed", fmt.Sprint(a.Seed))
		s.sim.SetSeed(a.Seed)
	case debugscript.GodMode:
		s.note("script", "god", fmt.Sprint(a.On))
		w.SetGodMode(a.On)
	case debugscript.Teleport:
		s.note("script", "teleport", a.To.String())
		w.Teleport(fromScript(a.To))
	case debugscript.Give:
		s.note("script", "give", a.Item)
		if err := w.Give(a.Item); err != nil {
			s.log.WithError(err).Warnf("Debug script: give '%s' failed", a.Item)
		}
	case debugscript.Cursor:
		s.note("script", "cursor", a.At.String())
		s.cursor, s.hasCursor = fromScript(a.At), true
	case debugscript.MouseScreen:
		s.note("script", "mouse_screen", a.At.String())
		s.mouseScreen, s.hasMouseScreen = fromScript(a.At), true
	case debugscript.SpawnBarrier:
		s.note("script", "spawn_barrier", a.At.String())
		w.AddBarrier(fromScript(a.At))
	case debugscript.SpawnPowerup:
		s.note("script", "spawn_powerup", a.Type+" "+a.At.String())
		if err := w.AddPowerup(fromScript(a.At), a.Type); err != nil {
			s.log.WithError(err).Warn("Debug script: spawn_powerup failed")
		}
	}
}

// LoadMap replaces the world with the map at path. The simulation clock and
// RNG carry on.
func (s *Session) LoadMap(path string) error {
	m, err := LoadMap(path, s.log)
	if err != nil {
		return err
	}
	s.mapPath = path
	s.world = NewWorld(m, s.sim.Rng(), s.log)
	s.log.Infof("Loaded map '%s' from %s", m.Name, path)
	return nil
}

// MapPath is the file the current world came from, or "" for a built-in map.
func (s *Session) MapPath() string { return s.mapPath }

// playerInput picks this frame's controls: script input while a script is
// running, the host's physical input otherwise.
func (s *Session) playerInput(in FrameInput) (TankInput, int) {
	if !s.scripted() {
		return in.Tank, in.WeaponCycle
	}
	si := s.script.Input()
	out := TankInput{
		Move:    fromScript(si.Move),
		Fire:    si.Firing() || si.ClickLeft,
		LayMine: si.ClickRight,
	}
	if p := s.world.Player; si.HasAim && p != nil {
		out.Turret, out.HasTurret = aimAt(p.Pos, fromScript(si.Aim)), true
	}
	return out, si.WeaponCycle + in.WeaponCycle
}

func (s *Session) step(in FrameInput) int {
	tin, cycle := s.playerInput(in)
	if p := s.world.Player; p.Alive() && cycle != 0 {
		p.CycleWeapon(cycle)
	}

	ticks := 1
	if !s.Turbo() {
		ticks = s.sim.Accumulate(in.Dt)
	}
	hold := s.scripted() && s.script.Input().HoldFire
	prev := s.observe()
	for i := 0; i < ticks; i++ {
		s.sim.BeginTick()
		s.world.Step(tin, sim.Dt)
		s.world.Hash(s.sim)
		s.sim.EndTick()
		// Pulses act on the first tick of the frame only.
		tin.LayMine = false
		if !hold && s.scripted() {
			tin.Fire = false
		}
	}
	s.logChanges(prev)
	if ticks > 0 {
		s.frameLog.AddVerbose(s.frame, s.sim.Tick(), "sim", "hash",
			fmt.Sprintf("%08x", s.sim.LastHash()), float64(ticks))
	}
	return ticks
}

type observation struct {
	alive  map[*Tank]bool
	states map[*Controller]AIState
}

func (s *Session) observe() observation {
	o := observation{alive: map[*Tank]bool{}, states: map[*Controller]AIState{}}
	for _, t := range s.world.Tanks {
		o.alive[t] = t.Alive()
	}
	for _, c := range s.world.AI {
		o.states[c] = c.State
	}
	return o
}

// logChanges records AI state transitions and deaths since prev.
func (s *Session) logChanges(prev observation) {
	for _, c := range s.world.AI {
		if was, ok := prev.states[c]; ok && was != c.State {
			s.note("ai", "state_change", fmt.Sprintf("tank %d %s: %s → %s", c.Tank.ID, c.Type, was, c.State))
		}
	}
	for _, t := range s.world.Tanks {
		if prev.alive[t] && !t.Alive() {
			who := "enemy"
			if t.Is(FlagPlayer) {
				who = "player"
			}
			s.note("world", "destroyed", fmt.Sprintf("%s tank %d", who, t.ID))
		}
	}
}

func (s *Session) renderToFile(path string) error {
	var cursor *Vec2
	if s.hasCursor {
		c := s.cursor
		cursor = &c
	}
	return screenshot.Save(path, Render(s.world, s.width, s.height, cursor))
}

func (s *Session) resolve(path string) string {
	if s.outDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.outDir, path)
}

func (s *Session) takeScreenshot(path string) {
	path = s.resolve(path)
	s.note("capture", "screenshot", path)
	if err := s.capture(path); err != nil {
		s.log.WithError(err).Errorf("Screenshot failed: %s", path)
		return
	}
	s.log.Infof("Screenshot saved: %s", path)
}

func (s *Session) writeDump(path string) {
	path = s.resolve(path)
	s.note("capture", "dump", path)
	st := s.world.State(s.frame)
	var b bytes.Buffer
	if err := dump.Format(&b, st); err == nil {
		text := b.String()
		s.lastDump.Store(&text)
	}
	if err := dump.Write(path, st, s.log); err != nil {
		s.note("capture", "dump_failed", err.Error())
	}
}

func fromScript(v debugscript.Vec2) Vec2 { return Vec2{v.X, v.Y} }

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i] + " ..."
	}
	return text
}
