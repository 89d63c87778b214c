package game

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/debugcmd"
	"github.com/goofansu/tankgame/internal/sim"
)

// Harness runs a Session headlessly with deterministic frame timing. It is
// what tests and the headless binary drive.
type Harness struct {
	Session *Session
	Log     *FrameLog
	Input   FrameInput // fed to every frame

	mapText string
	mapPath string
	seed    uint32
	script  string
	outDir  string
	verbose bool
	width   int
	height  int
	logger  logrus.FieldLogger
	sources []debugcmd.Source
	extra   []SessionOption
}

// harnessOptionKind controls the pass in which an option is applied.
type harnessOptionKind int

const (
	harnessOptInfra   harnessOptionKind = iota // map, seed, verbose: applied first
	harnessOptSession                          // session options: appended after infra
)

// HarnessOption is a builder function applied to a Harness during
// construction.
type HarnessOption struct {
	kind harnessOptionKind
	fn   func(*Harness)
}

// WithSeed sets the simulation seed.
func WithSeed(seed uint32) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.seed = seed }}
}

// WithMapText uses inline map text instead of the default map.
func WithMapText(text string) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.mapText = text }}
}

// WithMapPath loads the map from a file.
func WithMapPath(path string) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.mapPath = path }}
}

// WithVerbose records the per-frame state hash in the frame log.
func WithVerbose(v bool) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.verbose = v }}
}

// WithHarnessLogger routes session logging to l.
func WithHarnessLogger(l logrus.FieldLogger) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.logger = l }}
}

// WithScreenSize sets the software render size for screenshots.
func WithScreenSize(w, hgt int) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.width, h.height = w, hgt }}
}

// WithScript runs an inline debug script from the first frame.
func WithScript(text string) HarnessOption {
	return HarnessOption{harnessOptSession, func(h *Harness) { h.script = text }}
}

// WithCommandSource polls src every frame, like the live command file.
func WithCommandSource(src debugcmd.Source) HarnessOption {
	return HarnessOption{harnessOptSession, func(h *Harness) { h.sources = append(h.sources, src) }}
}

// WithScreenshotDir writes relative screenshot and dump paths under dir.
func WithScreenshotDir(dir string) HarnessOption {
	return HarnessOption{harnessOptSession, func(h *Harness) { h.outDir = dir }}
}

// WithSessionOptions passes raw options through to the session.
func WithSessionOptions(opts ...SessionOption) HarnessOption {
	return HarnessOption{harnessOptSession, func(h *Harness) { h.extra = append(h.extra, opts...) }}
}

// NewHarness constructs a Harness in two ordered passes:
//  1. Infrastructure (map, seed, verbose)
//  2. Session wiring (script, command sources, output dir)
func NewHarness(opts ...HarnessOption) (*Harness, error) {
	h := &Harness{
		width:  320,
		height: 240,
		Input:  FrameInput{Dt: sim.Dt},
	}
	for _, o := range opts {
		if o.kind == harnessOptInfra {
			o.fn(h)
		}
	}
	for _, o := range opts {
		if o.kind == harnessOptSession {
			o.fn(h)
		}
	}

	h.Log = NewFrameLog(h.verbose)
	sopts := []SessionOption{
		WithLogger(h.logger),
		WithSessionSeed(h.seed),
		WithFrameLog(h.Log),
		WithRenderSize(h.width, h.height),
		WithOutputDir(h.outDir),
	}
	switch {
	case h.mapPath != "":
		sopts = append(sopts, WithMapFile(h.mapPath))
	case h.mapText != "":
		m, err := ParseMap(strings.NewReader(h.mapText), h.logger)
		if err != nil {
			return nil, err
		}
		sopts = append(sopts, WithMap(m))
	}
	if h.script != "" {
		sopts = append(sopts, WithScriptText(h.script))
	}
	for _, src := range h.sources {
		sopts = append(sopts, WithSource(src))
	}
	sopts = append(sopts, h.extra...)

	s, err := NewSession(sopts...)
	if err != nil {
		return nil, err
	}
	h.Session = s
	return h, nil
}

// World is a shortcut for the session's world.
func (h *Harness) World() *World {
	return h.Session.World()
}

// RunFrames runs up to n frames and returns how many ran before the session
// quit.
func (h *Harness) RunFrames(n int) int {
	for i := 0; i < n; i++ {
		if h.Session.Frame(h.Input).Quit {
			return i + 1
		}
	}
	return n
}

// RunUntil runs frames until predicate returns true or maxFrames pass.
// Returns the frame at which the predicate was satisfied, or -1.
func (h *Harness) RunUntil(predicate func(*Harness) bool, maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		res := h.Session.Frame(h.Input)
		if predicate(h) {
			return h.Session.FrameNumber()
		}
		if res.Quit {
			return -1
		}
	}
	return -1
}

// RunUntilDone runs until the session quits. It returns the number of
// frames run, or -1 if maxFrames passed first.
func (h *Harness) RunUntilDone(maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		if h.Session.Frame(h.Input).Quit {
			return i + 1
		}
	}
	return -1
}

// Snapshot is a lightweight copy of the session state at a frame.
type Snapshot struct {
	Frame int
	Tick  uint64
	Hash  uint32
	Tanks []TankSnapshot
}

// TankSnapshot is a lightweight copy of one tank.
type TankSnapshot struct {
	ID     int
	Pos    Vec2
	Health int
	Flags  TankFlags
}

// Snapshot returns the current state of all tanks.
func (h *Harness) Snapshot() Snapshot {
	s := h.Session
	snap := Snapshot{Frame: s.FrameNumber(), Tick: s.Sim().Tick(), Hash: s.Sim().LastHash()}
	for _, t := range s.World().Tanks {
		snap.Tanks = append(snap.Tanks, TankSnapshot{ID: t.ID, Pos: t.Pos, Health: t.Health, Flags: t.Flags})
	}
	return snap
}
