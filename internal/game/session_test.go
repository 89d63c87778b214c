package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/image/bmp"

	"github.com/goofansu/tankgame/internal/debugcmd"
	"github.com/goofansu/tankgame/internal/sim"
)

func newHarness(t *testing.T, opts ...HarnessOption) *Harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	h, err := NewHarness(append([]HarnessOption{WithHarnessLogger(log)}, opts...)...)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}
	return h
}

func TestScenario_TeleportThenDump(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t,
		WithScreenshotDir(dir),
		WithScript("turbo on\nteleport 5 3\nframes 2\ndump state.txt\nquit"),
	)
	frames := h.RunUntilDone(50)
	t.Log("\n" + h.Log.Format())

	if frames != 4 {
		t.Fatalf("expected quit on frame 4, got %d", frames)
	}
	if h.Session.Completed() {
		t.Fatal("explicit quit is not a completed script")
	}
	data, err := os.ReadFile(filepath.Join(dir, "state.txt"))
	if err != nil {
		t.Fatalf("dump not written: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "frame: 3\n") || !strings.Contains(text, "pos: 5.000 3.000\n") {
		t.Fatalf("unexpected dump:\n%s", text)
	}
	if h.Session.LastDump() != text {
		t.Fatal("LastDump should match the file")
	}
	if !h.Log.HasEntry("script", "teleport", "(5.00, 3.00)") {
		t.Fatal("teleport not logged")
	}
}

func TestScenario_ScriptEndQuits(t *testing.T) {
	h := newHarness(t, WithScript("frames 3"))
	if n := h.RunUntilDone(20); n != 4 {
		t.Fatalf("expected 4 frames, got %d", n)
	}
	if !h.Session.Completed() {
		t.Fatal("expected completed session")
	}
	if !h.Session.Frame(FrameInput{}).Quit {
		t.Fatal("frames after quit must report quit")
	}
}

func TestScenario_TurboStepsOneTickPerFrame(t *testing.T) {
	h := newHarness(t, WithScript("frames 10\nquit"))
	h.Input.Dt = 0.1 // would be 6 ticks per frame without turbo
	h.RunFrames(5)
	if got := h.Session.Sim().Tick(); got != 5 {
		t.Fatalf("expected 5 ticks, got %d", got)
	}

	h2 := newHarness(t, WithScript("turbo off\nframes 10\nquit"))
	h2.Input.Dt = 0.1
	h2.RunFrames(5)
	if got := h2.Session.Sim().Tick(); got != 5*sim.MaxTicksPerFrame {
		t.Fatalf("expected capped accumulation, got %d ticks", got)
	}
}

func TestScenario_ScriptDrivesPlayer(t *testing.T) {
	h := newHarness(t, WithScript("input +right\nframes 30\ninput stop\nframes 10\nquit"))
	start := h.World().Player.Pos
	h.RunFrames(31)
	mid := h.World().Player.Pos
	if mid.X <= start.X {
		t.Fatalf("player did not move right: %v -> %v", start, mid)
	}
	h.RunFrames(5)
	if h.World().Player.Pos != mid || h.World().Player.Vel != (Vec2{}) {
		t.Fatalf("player should stop, pos=%v vel=%v", h.World().Player.Pos, h.World().Player.Vel)
	}
}

func TestScenario_PhysicalInputIgnoredWhileScripted(t *testing.T) {
	h := newHarness(t, WithScript("frames 5\nquit"))
	h.Input.Tank = TankInput{Move: Vec2{1, 0}}
	start := h.World().Player.Pos
	h.RunFrames(3)
	if h.World().Player.Pos != start {
		t.Fatal("physical input leaked into a scripted frame")
	}
}

func TestScenario_InjectFromQueue(t *testing.T) {
	q := debugcmd.NewQueue()
	h := newHarness(t,
		WithCommandSource(q),
		WithSessionOptions(WithQuitOnScriptEnd(false)),
	)
	h.Input.Tank = TankInput{Move: Vec2{0, -1}}

	h.RunFrames(2)
	if h.World().Player.Is(FlagInvincible) {
		t.Fatal("god mode before any command")
	}

	q.Push("god on\ngive machine_gun")
	if n := h.RunFrames(1); n != 1 || h.Session.Quit() {
		t.Fatal("finished injected script must not quit with QuitOnScriptEnd(false)")
	}
	p := h.World().Player
	if !p.Is(FlagInvincible) || p.Weapon() != WeaponMachineGun {
		t.Fatalf("inject not applied: flags=%#x weapon=%s", p.Flags, p.Weapon())
	}

	// Control returns to the physical input once the script is done.
	before := p.Pos
	h.RunFrames(5)
	if p.Pos.Y >= before.Y {
		t.Fatal("physical input should drive the player after the script ends")
	}

	q.Push("quit")
	h.RunFrames(1)
	if !h.Session.Quit() {
		t.Fatal("expected quit")
	}
	if h.Log.Count("cmd", "inject") != 2 {
		t.Fatalf("inject entries=%d", h.Log.Count("cmd", "inject"))
	}
}

func TestScenario_CommandFile(t *testing.T) {
	log, _ := test.NewNullLogger()
	ch, err := debugcmd.Open(filepath.Join(t.TempDir(), "cmd"), log)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	h := newHarness(t, WithCommandSource(ch))
	if err := os.WriteFile(ch.Path(), []byte("teleport 4 4; quit"), 0o644); err != nil {
		t.Fatal(err)
	}
	if n := h.RunUntilDone(10); n != 1 {
		t.Fatalf("expected quit on first frame, got %d", n)
	}
	if h.World().Player.Pos != (Vec2{4, 4}) {
		t.Fatalf("teleport not applied: %v", h.World().Player.Pos)
	}
}

func TestScenario_AdhocCommands(t *testing.T) {
	dir := t.TempDir()
	q := debugcmd.NewQueue()
	h := newHarness(t,
		WithScreenshotDir(dir),
		WithCommandSource(q),
		WithSessionOptions(WithAdhocCommands(true)),
	)
	q.Push("screenshot shot.png\nfire\nquit")
	if n := h.RunFrames(3); n != 1 {
		t.Fatalf("expected quit on first frame, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "shot.png")); err != nil {
		t.Fatalf("screenshot missing: %v", err)
	}
	if h.Session.Script() != nil {
		t.Fatal("ad-hoc commands must bypass the script interpreter")
	}
}

func TestScenario_ScreenshotAfterStep(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t,
		WithScreenSize(160, 120),
		WithScreenshotDir(dir),
		WithScript("cursor 5 5\nscreenshot a.bmp\nquit"),
	)
	h.RunUntilDone(10)

	f, err := os.Open(filepath.Join(dir, "a.bmp"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Fatalf("bounds=%v", b)
	}
	shot, ok := h.Log.LastOf("capture", "screenshot")
	if !ok || shot.Tick != 1 {
		t.Fatalf("screenshot should be taken after the frame's tick, got %+v", shot)
	}
}

func TestScenario_MapLoadAndFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.map")
	if err := os.WriteFile(path, []byte("name small\nsize 8 8\nspawn 1 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, WithScript("map "+path+"\nmap "+filepath.Join(dir, "nope.map")+"\nframes 1\nquit"))
	h.RunFrames(1)
	if h.World().Name != "small" || h.Session.MapPath() != path {
		t.Fatalf("map not loaded: %s", h.World().Name)
	}
	if len(h.World().AI) != 0 {
		t.Fatal("new map should replace enemies")
	}
}

func TestScenario_SameSeedSameHash(t *testing.T) {
	script := "seed 42\nhold_fire on\ninput +down\nframes 90\nquit"
	run := func() Snapshot {
		h := newHarness(t, WithScript(script), WithVerbose(true))
		h.RunUntilDone(200)
		return h.Snapshot()
	}
	a, b := run(), run()
	if a.Hash != b.Hash || a.Tick != b.Tick {
		t.Fatalf("replay diverged: %08x@%d vs %08x@%d", a.Hash, a.Tick, b.Hash, b.Tick)
	}
	if a.Tick != 90 {
		t.Fatalf("expected 90 ticks, got %d", a.Tick)
	}
}

func TestScenario_SpawnAndGive(t *testing.T) {
	h := newHarness(t, WithScript("spawn_barrier 3 3\nspawn_powerup 4 4 machine_gun\nspawn_powerup 5 5 laser\ngive mine\ngive nothing\nquit"))
	barriers := len(h.World().Barriers)
	powerups := len(h.World().Powerups)
	h.RunUntilDone(5)

	w := h.World()
	if len(w.Barriers) != barriers+1 || len(w.Powerups) != powerups+1 {
		t.Fatalf("barriers %d->%d powerups %d->%d", barriers, len(w.Barriers), powerups, len(w.Powerups))
	}
	if w.Player.Mines != 1 {
		t.Fatalf("mines=%d", w.Player.Mines)
	}
}

func TestScenario_PublishedState(t *testing.T) {
	h := newHarness(t, WithSessionOptions(WithStatePublishing(true)))
	if _, ok := h.Session.PublishedState(); ok {
		t.Fatal("nothing published before the first frame")
	}
	h.RunFrames(2)
	st, ok := h.Session.PublishedState()
	if !ok || st.Frame != 2 || st.Player == nil {
		t.Fatalf("published=%v state=%+v", ok, st)
	}
}
