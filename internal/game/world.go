package game

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/logging"
	"github.com/goofansu/tankgame/internal/sim"
)

const (
	barrierHealth   = 3
	barrierHalf     = 0.5
	pickupRadius    = 0.7
	projRadius      = 0.1
	projLifetime    = 6.0
	mineArmTime     = 1.0
	mineRadius      = 0.6
	mineDamage      = 2
	maxPlayerShots  = 5
	shooterGraceSec = 0.15
)

// Barrier is a destructible 1x1 block.
type Barrier struct {
	Pos    Vec2
	Health int
}

func (b *Barrier) Rect() Rect {
	return Rect{b.Pos.X - barrierHalf, b.Pos.Y - barrierHalf, 2 * barrierHalf, 2 * barrierHalf}
}

// Powerup is a weapon pickup lying on the map.
type Powerup struct {
	Pos  Vec2
	Type Weapon
}

// Projectile is a live shot.
type Projectile struct {
	Pos        Vec2
	Vel        Vec2
	Bounces    int
	MaxBounces int
	Damage     int
	Owner      *Tank
	age        float64
}

// Mine is a placed mine. It arms after a short delay.
type Mine struct {
	Pos   Vec2
	Owner *Tank
	age   float64
}

// World is the simulated battlefield. It is driven one fixed tick at a time
// by Step and never touches the clock or the host.
type World struct {
	Name        string
	Width       float64
	Height      float64
	Walls       []Rect
	Barriers    []*Barrier
	Powerups    []*Powerup
	Tanks       []*Tank
	Player      *Tank
	AI          []*Controller
	Projectiles []*Projectile
	Mines       []*Mine
	Cloud       *ToxicCloud

	rng    *sim.Rng
	log    logrus.FieldLogger
	nextID int
}

// NewWorld builds a world from a parsed map. Randomness is drawn from rng so
// that equal seeds replay equally.
func NewWorld(m *Map, rng *sim.Rng, log logrus.FieldLogger) *World {
	w := &World{
		Name:   m.Name,
		Width:  m.Width,
		Height: m.Height,
		Walls:  append([]Rect(nil), m.Walls...),
		rng:    rng,
		log:    logging.Or(log, logging.CatGame),
	}
	for _, b := range m.Barriers {
		w.AddBarrier(b)
	}
	for _, p := range m.Powerups {
		w.Powerups = append(w.Powerups, &Powerup{Pos: p.Pos, Type: p.Type})
	}
	if m.Toxic != nil {
		w.Cloud = NewToxicCloud(*m.Toxic, m.Width, m.Height)
	}

	w.Player = w.spawnTank(m.Spawn.Pos, m.Spawn.Angle, playerHealth)
	w.Player.Flags |= FlagPlayer
	for _, e := range m.Enemies {
		t := w.spawnTank(e.Pos, e.Angle, e.Type.stats().health)
		t.Enemy = e.Type
		t.speed = e.Type.stats().speed
		t.fireScale = e.Type.stats().fireScale
		w.AI = append(w.AI, newController(t, e.Type))
	}
	return w
}

func (w *World) spawnTank(pos Vec2, angle float64, health int) *Tank {
	w.nextID++
	t := newTank(w.nextID, pos, angle, health)
	w.Tanks = append(w.Tanks, t)
	return t
}

// AddBarrier places a full-health barrier centred on pos.
func (w *World) AddBarrier(pos Vec2) {
	w.Barriers = append(w.Barriers, &Barrier{Pos: pos, Health: barrierHealth})
}

// AddPowerup places a pickup by type name.
func (w *World) AddPowerup(pos Vec2, name string) error {
	typ, ok := WeaponByName(name)
	if !ok || typ == WeaponDefault {
		return fmt.Errorf("unknown powerup type %q", name)
	}
	w.Powerups = append(w.Powerups, &Powerup{Pos: pos, Type: typ})
	return nil
}

// Give hands the player an item: a weapon name, "mine" or "health".
func (w *World) Give(item string) error {
	p := w.Player
	if !p.Alive() {
		return fmt.Errorf("give %s: no live player", item)
	}
	switch item {
	case "mine":
		if p.Mines < maxMines {
			p.Mines++
		}
	case "health":
		p.Health = p.MaxHealth
	default:
		wp, ok := WeaponByName(item)
		if !ok {
			return fmt.Errorf("give: unknown item %q", item)
		}
		p.AddWeapon(wp)
	}
	return nil
}

// Teleport moves the player, dropping any velocity.
func (w *World) Teleport(to Vec2) {
	if w.Player == nil {
		return
	}
	w.Player.Pos = to
	w.Player.Vel = Vec2{}
}

// SetGodMode toggles the player's invincibility flag.
func (w *World) SetGodMode(on bool) {
	if w.Player == nil {
		return
	}
	if on {
		w.Player.Flags |= FlagInvincible
	} else {
		w.Player.Flags &^= FlagInvincible
	}
}

// EnemiesAlive counts live non-player tanks.
func (w *World) EnemiesAlive() int {
	n := 0
	for _, t := range w.Tanks {
		if !t.Is(FlagPlayer) && t.Alive() {
			n++
		}
	}
	return n
}

// blocked reports whether a circle at p would overlap the map edge, a wall
// or a barrier.
func (w *World) blocked(p Vec2, r float64) bool {
	if p.X-r < 0 || p.Y-r < 0 || p.X+r > w.Width || p.Y+r > w.Height {
		return true
	}
	for _, wall := range w.Walls {
		if wall.overlapsCircle(p, r) {
			return true
		}
	}
	for _, b := range w.Barriers {
		if b.Rect().overlapsCircle(p, r) {
			return true
		}
	}
	return false
}

func (w *World) solidAt(p Vec2) bool {
	return w.blocked(p, projRadius)
}

// Step advances the world by one fixed tick. in drives the player.
func (w *World) Step(in TankInput, dt float64) {
	w.Cloud.Update(dt)

	if p := w.Player; p.Alive() {
		p.drive(w, in, dt)
		if in.Fire {
			w.fire(p)
		}
		if in.LayMine {
			w.layMine(p)
		}
		w.collectPowerups(p)
	}

	for _, c := range w.AI {
		if !c.Tank.Alive() {
			continue
		}
		ai := c.think(w, dt)
		c.Tank.drive(w, ai, dt)
		c.observeMovement(dt)
		if ai.Fire {
			w.fire(c.Tank)
		}
	}

	w.stepProjectiles(dt)
	w.stepMines(dt)
	w.applyToxic(dt)
}

func (w *World) fire(t *Tank) {
	if t.FireCooldown > 0 {
		return
	}
	if t.Is(FlagPlayer) && t.projectiles >= maxPlayerShots {
		return
	}
	ws := weaponTable[t.Weapon()]
	dir := fromAngle(t.TurretAngle)
	muzzle := t.Pos.Add(dir.Scale(tankRadius + projRadius + 0.05))
	if w.solidAt(muzzle) {
		return
	}
	w.Projectiles = append(w.Projectiles, &Projectile{
		Pos:        muzzle,
		Vel:        dir.Scale(ws.speed),
		MaxBounces: ws.bounces,
		Damage:     ws.damage,
		Owner:      t,
	})
	t.projectiles++
	t.FireCooldown = ws.cooldown * t.fireScale
}

func (w *World) layMine(t *Tank) {
	if t.Mines <= 0 {
		return
	}
	t.Mines--
	w.Mines = append(w.Mines, &Mine{Pos: t.Pos, Owner: t})
}

func (w *World) collectPowerups(t *Tank) {
	kept := w.Powerups[:0]
	for _, p := range w.Powerups {
		if p.Pos.Dist(t.Pos) <= pickupRadius {
			t.AddWeapon(p.Type)
			w.log.Infof("Player collected: %s", p.Type)
			continue
		}
		kept = append(kept, p)
	}
	w.Powerups = kept
}

func (w *World) stepProjectiles(dt float64) {
	kept := make([]*Projectile, 0, len(w.Projectiles))
	for _, p := range w.Projectiles {
		if w.advanceProjectile(p, dt) {
			kept = append(kept, p)
		} else if p.Owner != nil {
			p.Owner.projectiles--
		}
	}
	w.Projectiles = kept
}

// advanceProjectile moves p and resolves hits. It returns false when the
// projectile is spent.
func (w *World) advanceProjectile(p *Projectile, dt float64) bool {
	p.age += dt
	if p.age > projLifetime {
		return false
	}

	next := p.Pos.Add(p.Vel.Scale(dt))
	if b := w.barrierAt(next); b != nil {
		b.Health--
		if b.Health <= 0 {
			w.removeBarrier(b)
		}
		return false
	}
	if w.solidAt(next) {
		// Reflect on whichever axis is blocked.
		hitX := w.solidAt(Vec2{next.X, p.Pos.Y})
		hitY := w.solidAt(Vec2{p.Pos.X, next.Y})
		if !hitX && !hitY {
			hitX, hitY = true, true
		}
		if p.Bounces >= p.MaxBounces {
			return false
		}
		p.Bounces++
		if hitX {
			p.Vel.X = -p.Vel.X
		}
		if hitY {
			p.Vel.Y = -p.Vel.Y
		}
		return true
	}
	p.Pos = next

	for _, t := range w.Tanks {
		if !t.Alive() {
			continue
		}
		if t == p.Owner && p.age < shooterGraceSec && p.Bounces == 0 {
			continue
		}
		if t.Pos.Dist(p.Pos) <= tankRadius+projRadius {
			if t.Damage(p.Damage) {
				w.log.WithField("tank", t.ID).Info("Tank destroyed")
			}
			return false
		}
	}
	for _, q := range w.Projectiles {
		if q != p && q.Damage > 0 && q.Pos.Dist(p.Pos) <= 2*projRadius {
			q.Damage = 0
			q.age = projLifetime
			return false
		}
	}
	return true
}

func (w *World) barrierAt(p Vec2) *Barrier {
	for _, b := range w.Barriers {
		if b.Rect().overlapsCircle(p, projRadius) {
			return b
		}
	}
	return nil
}

func (w *World) removeBarrier(dead *Barrier) {
	for i, b := range w.Barriers {
		if b == dead {
			w.Barriers = append(w.Barriers[:i], w.Barriers[i+1:]...)
			return
		}
	}
}

func (w *World) stepMines(dt float64) {
	kept := w.Mines[:0]
	for _, m := range w.Mines {
		m.age += dt
		if m.age >= mineArmTime && w.detonate(m) {
			continue
		}
		kept = append(kept, m)
	}
	w.Mines = kept
}

func (w *World) detonate(m *Mine) bool {
	for _, t := range w.Tanks {
		if t == m.Owner || !t.Alive() {
			continue
		}
		if t.Pos.Dist(m.Pos) <= mineRadius+tankRadius {
			t.Damage(mineDamage)
			return true
		}
	}
	return false
}

func (w *World) applyToxic(dt float64) {
	if w.Cloud == nil {
		return
	}
	for _, t := range w.Tanks {
		if !t.Alive() {
			continue
		}
		if !w.Cloud.Damaging(t.Pos) {
			t.toxicTimer = 0
			continue
		}
		t.toxicTimer += dt
		if t.toxicTimer >= toxicDamageTick {
			t.toxicTimer -= toxicDamageTick
			t.Damage(1)
		}
	}
}

// Hash mixes the deterministic world state into the current tick hash.
func (w *World) Hash(s *sim.Sim) {
	for _, t := range w.Tanks {
		s.HashVec2(t.Pos.X, t.Pos.Y)
		s.HashFloat(t.TurretAngle)
		s.HashUint32(uint32(t.Health))
		s.HashUint32(uint32(t.Flags))
	}
	for _, p := range w.Projectiles {
		s.HashVec2(p.Pos.X, p.Pos.Y)
	}
	if w.Cloud != nil {
		s.HashFloat(w.Cloud.Progress())
	}
}

// aimAt returns the turret angle from t toward a world point.
func aimAt(from, to Vec2) float64 {
	d := to.Sub(from)
	if d.Len() < 1e-9 {
		return 0
	}
	return math.Atan2(d.Y, d.X)
}
