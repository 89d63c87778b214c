package game

import (
	"fmt"
	"math"
)

// TankFlags is the tank status bitset. The values are part of the state dump
// format.
type TankFlags uint32

const (
	FlagActive       TankFlags = 1 << 0
	FlagDead         TankFlags = 1 << 1
	FlagInvulnerable TankFlags = 1 << 2 // respawn grace
	FlagPlayer       TankFlags = 1 << 3
	FlagInvincible   TankFlags = 1 << 4 // god mode
)

// Weapon identifies a loadout slot.
type Weapon int

const (
	WeaponDefault Weapon = iota
	WeaponMachineGun
	WeaponRicochet
)

var weaponNames = map[Weapon]string{
	WeaponDefault:    "default",
	WeaponMachineGun: "machine_gun",
	WeaponRicochet:   "ricochet",
}

func (w Weapon) String() string {
	if n, ok := weaponNames[w]; ok {
		return n
	}
	return fmt.Sprintf("weapon(%d)", int(w))
}

// WeaponByName resolves a weapon or powerup name.
func WeaponByName(name string) (Weapon, bool) {
	for w, n := range weaponNames {
		if n == name {
			return w, true
		}
	}
	return 0, false
}

type weaponStats struct {
	cooldown float64
	speed    float64
	bounces  int
	damage   int
}

var weaponTable = map[Weapon]weaponStats{
	WeaponDefault:    {cooldown: 0.5, speed: 8, bounces: 1, damage: 1},
	WeaponMachineGun: {cooldown: 0.12, speed: 11, bounces: 0, damage: 1},
	WeaponRicochet:   {cooldown: 0.6, speed: 7, bounces: 3, damage: 1},
}

const (
	tankRadius      = 0.45
	tankSpeed       = 3.0
	bodyTurnRate    = 8.0 // rad/s
	playerHealth    = 10
	maxMines        = 3
	toxicSlowdown   = 0.5
	toxicDamageTick = 1.0
	graceTime       = 1.5
)

// TankInput is one tick's control for a tank. Move is in [-1, 1] per axis.
type TankInput struct {
	Move      Vec2
	Turret    float64
	HasTurret bool
	Fire      bool
	LayMine   bool
}

// Tank is a player or enemy tank.
type Tank struct {
	ID           int
	Pos          Vec2
	Vel          Vec2
	BodyAngle    float64
	TurretAngle  float64
	Health       int
	MaxHealth    int
	Flags        TankFlags
	FireCooldown float64
	Weapons      []Weapon
	WeaponIdx    int
	Mines        int
	Enemy        EnemyType

	speed       float64
	fireScale   float64
	graceTimer  float64
	toxicTimer  float64
	projectiles int
}

func (t *Tank) Is(f TankFlags) bool { return t.Flags&f != 0 }

// Alive reports whether the tank is active and not dead.
func (t *Tank) Alive() bool {
	return t != nil && t.Is(FlagActive) && !t.Is(FlagDead)
}

// Weapon returns the selected weapon.
func (t *Tank) Weapon() Weapon {
	if len(t.Weapons) == 0 {
		return WeaponDefault
	}
	return t.Weapons[t.WeaponIdx%len(t.Weapons)]
}

// CycleWeapon moves the selection by delta, wrapping around.
func (t *Tank) CycleWeapon(delta int) {
	n := len(t.Weapons)
	if n == 0 || delta == 0 {
		return
	}
	t.WeaponIdx = ((t.WeaponIdx+delta)%n + n) % n
}

// AddWeapon adds w to the loadout if missing and selects it.
func (t *Tank) AddWeapon(w Weapon) {
	for i, have := range t.Weapons {
		if have == w {
			t.WeaponIdx = i
			return
		}
	}
	t.Weapons = append(t.Weapons, w)
	t.WeaponIdx = len(t.Weapons) - 1
}

// Damage applies n damage unless the tank is protected. It returns true when
// the hit killed the tank.
func (t *Tank) Damage(n int) bool {
	if !t.Alive() || t.Is(FlagInvincible) || t.Is(FlagInvulnerable) {
		return false
	}
	t.Health -= n
	if t.Health <= 0 {
		t.Health = 0
		t.Flags |= FlagDead
		t.Vel = Vec2{}
		return true
	}
	return false
}

func newTank(id int, pos Vec2, angle float64, health int) *Tank {
	return &Tank{
		ID:          id,
		Pos:         pos,
		BodyAngle:   angle,
		TurretAngle: angle,
		Health:      health,
		MaxHealth:   health,
		Flags:       FlagActive,
		Weapons:     []Weapon{WeaponDefault},
		speed:       tankSpeed,
		fireScale:   1,
	}
}

// drive integrates movement and aiming for one tick. Firing is handled by
// the world since it spawns projectiles.
func (t *Tank) drive(w *World, in TankInput, dt float64) {
	if t.graceTimer > 0 {
		t.graceTimer -= dt
		if t.graceTimer <= 0 {
			t.Flags &^= FlagInvulnerable
		}
	}
	if t.FireCooldown > 0 {
		t.FireCooldown = math.Max(0, t.FireCooldown-dt)
	}

	move := in.Move
	if l := move.Len(); l > 1 {
		move = move.Scale(1 / l)
	}
	speed := t.speed
	if w.Cloud.Inside(t.Pos) {
		speed *= toxicSlowdown
	}
	t.Vel = move.Scale(speed)
	if move.Len() > 0.01 {
		t.BodyAngle = lerpAngle(t.BodyAngle, move.Angle(), bodyTurnRate*dt)
	}
	if in.HasTurret {
		t.TurretAngle = in.Turret
	}

	// Axis-separated so tanks slide along walls.
	next := Vec2{t.Pos.X + t.Vel.X*dt, t.Pos.Y}
	if !w.blocked(next, tankRadius) {
		t.Pos = next
	}
	next = Vec2{t.Pos.X, t.Pos.Y + t.Vel.Y*dt}
	if !w.blocked(next, tankRadius) {
		t.Pos = next
	}
}

// Radius is the collision radius shared by all tanks.
func (t *Tank) Radius() float64 { return tankRadius }
