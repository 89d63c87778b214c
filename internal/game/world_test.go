package game

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/goofansu/tankgame/internal/sim"
)

func newTestWorld(t *testing.T, mapText string) *World {
	t.Helper()
	log, _ := test.NewNullLogger()
	m, err := ParseMap(strings.NewReader(mapText), log)
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	return NewWorld(m, sim.NewRng(1), log)
}

func stepN(w *World, in TankInput, n int) {
	for i := 0; i < n; i++ {
		w.Step(in, sim.Dt)
	}
}

func TestWorld_PlayerSpawnAndFlags(t *testing.T) {
	w := newTestWorld(t, "size 10 10\nspawn 2 3 1.5\n")
	p := w.Player
	if p == nil || !p.Alive() {
		t.Fatal("expected a live player")
	}
	if p.Pos != (Vec2{2, 3}) || p.TurretAngle != 1.5 {
		t.Fatalf("unexpected spawn pos=%v turret=%v", p.Pos, p.TurretAngle)
	}
	if !p.Is(FlagPlayer) || !p.Is(FlagActive) || p.Is(FlagDead) {
		t.Fatalf("unexpected flags %#x", p.Flags)
	}
	if p.Health != playerHealth {
		t.Fatalf("health=%d", p.Health)
	}
}

func TestWorld_MovementBlockedByWalls(t *testing.T) {
	w := newTestWorld(t, "size 10 10\nspawn 2 5\nwall 4 0 1 10\n")
	stepN(w, TankInput{Move: Vec2{1, 0}}, 120)
	p := w.Player
	if p.Pos.X > 4-tankRadius+1e-9 {
		t.Fatalf("player passed through wall: x=%.3f", p.Pos.X)
	}
	if p.Pos.X < 3 {
		t.Fatalf("player did not move toward wall: x=%.3f", p.Pos.X)
	}
}

func TestWorld_RicochetCanHitShooter(t *testing.T) {
	w := newTestWorld(t, "size 10 10\nspawn 5 5 0\n")
	w.Step(TankInput{Fire: true, HasTurret: true}, sim.Dt)
	if len(w.Projectiles) != 1 {
		t.Fatalf("expected one projectile, got %d", len(w.Projectiles))
	}

	for i := 0; i < 240 && len(w.Projectiles) > 0; i++ {
		w.Step(TankInput{}, sim.Dt)
	}
	if len(w.Projectiles) != 0 {
		t.Fatal("projectile never expired")
	}
	if w.Player.Health != playerHealth-1 {
		t.Fatalf("expected bounced shot to hit shooter, health=%d", w.Player.Health)
	}
}

func TestWorld_GodModeBlocksDamage(t *testing.T) {
	w := newTestWorld(t, "size 10 10\nspawn 5 5 0\n")
	w.SetGodMode(true)
	if !w.Player.Is(FlagInvincible) {
		t.Fatal("expected invincible flag")
	}
	if w.Player.Damage(100) {
		t.Fatal("invincible tank died")
	}
	w.SetGodMode(false)
	if w.Player.Is(FlagInvincible) {
		t.Fatal("expected invincible flag cleared")
	}
	if !w.Player.Damage(100) || w.Player.Alive() {
		t.Fatal("expected tank to die without god mode")
	}
}

func TestWorld_BarrierDestroyedByShots(t *testing.T) {
	w := newTestWorld(t, "size 12 10\nspawn 2 5 0\nbarrier 6 5\n")
	w.SetGodMode(true)
	for i := 0; i < 240 && len(w.Barriers) > 0; i++ {
		w.Step(TankInput{Fire: true, HasTurret: true}, sim.Dt)
	}
	if len(w.Barriers) != 0 {
		t.Fatalf("expected barrier destroyed, health=%d", w.Barriers[0].Health)
	}
}

func TestWorld_PowerupPickup(t *testing.T) {
	w := newTestWorld(t, "size 10 10\nspawn 2 5\npowerup 4 5 machine_gun\n")
	stepN(w, TankInput{Move: Vec2{1, 0}}, 60)
	if len(w.Powerups) != 0 {
		t.Fatal("powerup not collected")
	}
	if w.Player.Weapon() != WeaponMachineGun {
		t.Fatalf("weapon=%s", w.Player.Weapon())
	}
}

func TestWorld_GiveItems(t *testing.T) {
	w := newTestWorld(t, "size 10 10\n")
	p := w.Player

	if err := w.Give("ricochet"); err != nil {
		t.Fatal(err)
	}
	if p.Weapon() != WeaponRicochet || len(p.Weapons) != 2 {
		t.Fatalf("weapon=%s loadout=%v", p.Weapon(), p.Weapons)
	}
	for i := 0; i < maxMines+2; i++ {
		if err := w.Give("mine"); err != nil {
			t.Fatal(err)
		}
	}
	if p.Mines != maxMines {
		t.Fatalf("mines=%d", p.Mines)
	}
	p.Health = 1
	w.Give("health")
	if p.Health != p.MaxHealth {
		t.Fatalf("health=%d", p.Health)
	}
	if err := w.Give("banana"); err == nil {
		t.Fatal("expected error for unknown item")
	}

	p.CycleWeapon(1)
	if p.Weapon() != WeaponDefault {
		t.Fatalf("expected wrap to default, got %s", p.Weapon())
	}
	p.CycleWeapon(-1)
	if p.Weapon() != WeaponRicochet {
		t.Fatalf("expected wrap back to ricochet, got %s", p.Weapon())
	}
}

func TestWorld_MineDetonatesUnderEnemy(t *testing.T) {
	w := newTestWorld(t, "size 20 10\nspawn 2 5\nenemy 15 5 3.14 1\n")
	w.SetGodMode(true)
	w.Give("mine")
	w.Step(TankInput{LayMine: true}, sim.Dt)
	if len(w.Mines) != 1 || w.Player.Mines != 0 {
		t.Fatalf("mine not laid: mines=%d carried=%d", len(w.Mines), w.Player.Mines)
	}
	minePos := w.Mines[0].Pos
	w.Teleport(Vec2{2, 8})

	enemy := w.AI[0].Tank
	enemy.Pos = minePos
	stepN(w, TankInput{}, 70)

	if enemy.Alive() {
		t.Fatalf("expected sentry killed by mine, health=%d", enemy.Health)
	}
	if len(w.Mines) != 0 {
		t.Fatal("mine should be consumed")
	}
}

func TestWorld_SpawnPowerupValidatesType(t *testing.T) {
	w := newTestWorld(t, "size 10 10\n")
	if err := w.AddPowerup(Vec2{3, 3}, "machine_gun"); err != nil {
		t.Fatal(err)
	}
	if err := w.AddPowerup(Vec2{3, 3}, "default"); err == nil {
		t.Fatal("default weapon is not a powerup")
	}
	if err := w.AddPowerup(Vec2{3, 3}, "laser"); err == nil {
		t.Fatal("expected unknown type error")
	}
	if len(w.Powerups) != 1 {
		t.Fatalf("powerups=%d", len(w.Powerups))
	}
}

func TestWorld_StateSections(t *testing.T) {
	w := newTestWorld(t, DefaultMapText+"toxic 5 10 0.5\n")
	st := w.State(12)
	if st.Frame != 12 || st.Player == nil || st.Tanks == nil || st.Cloud == nil {
		t.Fatalf("missing sections: %+v", st)
	}
	if st.Tanks.Total != 3 || len(st.Tanks.Enemies) != 2 {
		t.Fatalf("tanks total=%d enemies=%d", st.Tanks.Total, len(st.Tanks.Enemies))
	}
	if !st.HasAI || len(st.AI) != 2 || st.AI[0].Type != "sentry" || st.AI[1].Type != "skirmisher" {
		t.Fatalf("unexpected ai section %+v", st.AI)
	}
	if st.Player.Flags != uint32(FlagActive|FlagPlayer) {
		t.Fatalf("player flags %#x", st.Player.Flags)
	}

	noCloud := newTestWorld(t, "size 5 5\n").State(0)
	if noCloud.Cloud != nil {
		t.Fatal("cloud section must be omitted without toxic config")
	}
}
