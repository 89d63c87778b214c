package game

import (
	"fmt"
	"math"
)

// EnemyType selects an enemy's stats and behaviour. Map files refer to it by
// level number.
type EnemyType int

const (
	EnemySentry EnemyType = iota + 1
	EnemySkirmisher
	EnemyHunter
	EnemySniper
)

func (e EnemyType) String() string {
	switch e {
	case EnemySentry:
		return "sentry"
	case EnemySkirmisher:
		return "skirmisher"
	case EnemyHunter:
		return "hunter"
	case EnemySniper:
		return "sniper"
	}
	return "unknown"
}

type enemyStats struct {
	health    int
	speed     float64
	fireScale float64
	rangeMax  float64
	aimError  float64 // radians, applied symmetrically
	mobile    bool
}

func (e EnemyType) stats() enemyStats {
	switch e {
	case EnemySkirmisher:
		return enemyStats{health: 2, speed: 2.4, fireScale: 2.0, rangeMax: 9, aimError: 0.12, mobile: true}
	case EnemyHunter:
		return enemyStats{health: 3, speed: 2.8, fireScale: 1.6, rangeMax: 8, aimError: 0.08, mobile: true}
	case EnemySniper:
		return enemyStats{health: 2, speed: 0, fireScale: 4.0, rangeMax: 20, aimError: 0.02}
	default:
		return enemyStats{health: 1, speed: 0, fireScale: 3.0, rangeMax: 10, aimError: 0.15}
	}
}

// AIState is what an enemy controller is currently doing.
type AIState int

const (
	AIIdle AIState = iota
	AISeekingCover
	AIInCover
	AIPeeking
	AIFiring
	AIRetreating
	AIChasing
	AIFlanking
	AIEvading
	AIEngaging
)

var aiStateNames = [...]string{
	AIIdle:         "idle",
	AISeekingCover: "seeking_cover",
	AIInCover:      "in_cover",
	AIPeeking:      "peeking",
	AIFiring:       "firing",
	AIRetreating:   "retreating",
	AIChasing:      "chasing",
	AIFlanking:     "flanking",
	AIEvading:      "evading",
	AIEngaging:     "engaging",
}

func (s AIState) String() string {
	if s >= 0 && int(s) < len(aiStateNames) {
		return aiStateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	chaseDistance  = 5.0
	evadeDistance  = 2.5
	strafeFlipSec  = 1.2
	detourAfterSec = 0.5
	detourSec      = 1.0
	toxicLookahead = 0.15
)

// Controller drives one enemy tank.
type Controller struct {
	Tank  *Tank
	Type  EnemyType
	State AIState

	// Toxic escape diagnostics, mirrored into state dumps.
	ToxicEscaping bool
	ToxicUrgency  float64
	InToxic       bool
	ToxicAtEnd    bool
	EscapeTarget  Vec2
	TargetInToxic bool
	Path          PathState
	Detour        DetourState

	strafeDir   float64
	strafeTimer float64
	lastPos     Vec2
}

// PathState is the controller's current movement plan.
type PathState struct {
	Valid    bool
	Count    int
	Current  int
	Complete bool
	Target   Vec2
	Goal     Vec2
	MoveDir  Vec2
}

// DetourState tracks a sidestep around an obstacle.
type DetourState struct {
	Active       bool
	Timer        float64
	BlockedTimer float64
	Target       Vec2
}

func newController(t *Tank, typ EnemyType) *Controller {
	return &Controller{Tank: t, Type: typ, strafeDir: 1, lastPos: t.Pos}
}

// think picks this tick's input. Randomness comes from the world RNG only.
func (c *Controller) think(w *World, dt float64) TankInput {
	t := c.Tank
	st := c.Type.stats()
	var in TankInput

	player := w.Player
	if !player.Alive() {
		c.State = AIIdle
		c.Path = PathState{}
		return in
	}
	toPlayer := player.Pos.Sub(t.Pos)
	dist := toPlayer.Len()

	aim := aimAt(t.Pos, player.Pos)
	if st.aimError > 0 {
		aim += w.rng.Range(-st.aimError, st.aimError)
	}
	in.Turret, in.HasTurret = aim, true
	inRange := dist <= st.rangeMax

	c.updateToxic(w)
	if st.mobile && c.ToxicEscaping {
		c.State = AIRetreating
		in.Move = c.steer(w, c.EscapeTarget, dt)
		in.Fire = inRange
		return in
	}

	if !st.mobile {
		c.Path = PathState{}
		if inRange {
			c.State = AIFiring
			in.Fire = true
		} else {
			c.State = AIIdle
		}
		return in
	}

	if threat := w.incoming(t); threat != nil {
		c.State = AIEvading
		in.Move = threat.Vel.Perp().Norm().Scale(c.strafeDir)
		c.Path = PathState{}
		return in
	}

	switch {
	case c.Type == EnemyHunter && dist > chaseDistance:
		c.State = AIChasing
		in.Move = c.steer(w, player.Pos, dt)
	case inRange:
		c.State = AIEngaging
		c.strafeTimer += dt
		if c.strafeTimer >= strafeFlipSec {
			c.strafeTimer = 0
			if w.rng.Float() < 0.5 {
				c.strafeDir = -c.strafeDir
			}
		}
		in.Move = toPlayer.Norm().Perp().Scale(c.strafeDir)
		in.Fire = true
		c.Path = PathState{}
	default:
		c.State = AIFlanking
		in.Move = c.steer(w, player.Pos.Add(toPlayer.Norm().Perp().Scale(3*c.strafeDir)), dt)
	}
	return in
}

// steer heads for goal, detouring sideways when the tank has been stuck.
func (c *Controller) steer(w *World, goal Vec2, dt float64) Vec2 {
	t := c.Tank
	target := goal
	if c.Detour.Active {
		c.Detour.Timer -= dt
		if c.Detour.Timer <= 0 {
			c.Detour = DetourState{}
		} else {
			target = c.Detour.Target
		}
	} else if c.Detour.BlockedTimer >= detourAfterSec {
		side := goal.Sub(t.Pos).Norm().Perp().Scale(c.strafeDir * 2)
		c.Detour = DetourState{Active: true, Timer: detourSec, Target: t.Pos.Add(side)}
		c.strafeDir = -c.strafeDir
		target = c.Detour.Target
	}

	dir := target.Sub(t.Pos).Norm()
	c.Path = PathState{
		Valid:    true,
		Count:    1,
		Complete: t.Pos.Dist(goal) < tankRadius,
		Target:   target,
		Goal:     goal,
		MoveDir:  dir,
	}
	if c.Path.Complete {
		return Vec2{}
	}
	return dir
}

// observeMovement feeds the stuck detector after the tank has moved.
func (c *Controller) observeMovement(dt float64) {
	t := c.Tank
	moved := t.Pos.Dist(c.lastPos)
	c.lastPos = t.Pos
	want := t.Vel.Len() * dt
	if want > 1e-6 && moved < want*0.1 {
		c.Detour.BlockedTimer += dt
	} else {
		c.Detour.BlockedTimer = 0
	}
}

func (c *Controller) updateToxic(w *World) {
	cloud := w.Cloud
	pos := c.Tank.Pos
	c.InToxic = cloud.Inside(pos)
	c.ToxicAtEnd = cloud.WillBeInside(pos, 1)
	soon := cloud.WillBeInside(pos, cloud.Progress()+toxicLookahead)

	if cloud == nil || (!c.InToxic && !soon) {
		c.ToxicEscaping = false
		c.ToxicUrgency = 0
		c.TargetInToxic = false
		return
	}
	c.ToxicEscaping = true
	c.ToxicUrgency = 0.5
	if c.InToxic {
		c.ToxicUrgency = 1
	}
	center := cloud.Center()
	if c.EscapeTarget == (Vec2{}) || cloud.WillBeInside(c.EscapeTarget, 1) {
		c.EscapeTarget = center
	}
	c.TargetInToxic = cloud.Inside(c.EscapeTarget)
}

// incoming returns an enemy projectile about to hit t, if any.
func (w *World) incoming(t *Tank) *Projectile {
	for _, p := range w.Projectiles {
		if p.Owner == t {
			continue
		}
		rel := t.Pos.Sub(p.Pos)
		d := rel.Len()
		if d > evadeDistance {
			continue
		}
		// Approaching and roughly on line.
		v := p.Vel.Norm()
		along := rel.X*v.X + rel.Y*v.Y
		if along <= 0 {
			continue
		}
		off := math.Abs(rel.X*v.Y - rel.Y*v.X)
		if off < tankRadius*2 {
			return p
		}
	}
	return nil
}
