package game

import "github.com/goofansu/tankgame/internal/dump"

func dv(v Vec2) dump.Vec2 { return dump.Vec2{X: v.X, Y: v.Y} }

func dumpTank(t *Tank) dump.Tank {
	return dump.Tank{
		Pos:          dv(t.Pos),
		Vel:          dv(t.Vel),
		BodyAngle:    t.BodyAngle,
		TurretAngle:  t.TurretAngle,
		Health:       t.Health,
		Flags:        uint32(t.Flags),
		FireCooldown: t.FireCooldown,
		Dead:         t.Is(FlagDead),
	}
}

// State converts the world into a dump snapshot taken at frame.
func (w *World) State(frame int) dump.State {
	st := dump.State{Frame: frame}
	if w == nil {
		return st
	}

	if p := w.Player; p != nil && p.Is(FlagActive) {
		pt := dumpTank(p)
		st.Player = &pt
	}

	roster := &dump.Roster{}
	for _, t := range w.Tanks {
		if !t.Is(FlagActive) {
			continue
		}
		roster.Total++
		if !t.Is(FlagPlayer) {
			roster.Enemies = append(roster.Enemies, dumpTank(t))
		}
	}
	st.Tanks = roster

	st.HasAI = true
	for _, c := range w.AI {
		st.AI = append(st.AI, dump.Controller{
			TankID:        c.Tank.ID,
			Type:          c.Type.String(),
			State:         c.State.String(),
			Pos:           dv(c.Tank.Pos),
			ToxicEscaping: c.ToxicEscaping,
			ToxicUrgency:  c.ToxicUrgency,
			InToxic:       c.InToxic,
			ToxicAtEnd:    c.ToxicAtEnd,
			EscapeTarget:  dv(c.EscapeTarget),
			TargetInToxic: c.TargetInToxic,
			Path: dump.Path{
				Valid:      c.Path.Valid,
				Count:      c.Path.Count,
				Current:    c.Path.Current,
				Complete:   c.Path.Complete,
				Target:     dv(c.Path.Target),
				TargetDist: c.Tank.Pos.Dist(c.Path.Target),
				Goal:       dv(c.Path.Goal),
				GoalDist:   c.Tank.Pos.Dist(c.Path.Goal),
				MoveDir:    dv(c.Path.MoveDir),
			},
			Detour: dump.Detour{
				Active:       c.Detour.Active,
				Timer:        c.Detour.Timer,
				BlockedTimer: c.Detour.BlockedTimer,
				Target:       dv(c.Detour.Target),
			},
		})
	}

	if cl := w.Cloud; cl != nil {
		st.Cloud = &dump.Cloud{
			Progress:     cl.Progress(),
			Left:         cl.Left,
			Right:        cl.Right,
			Top:          cl.Top,
			Bottom:       cl.Bottom,
			CornerRadius: cl.CornerRadius,
		}
	}

	st.HasProj = true
	for _, p := range w.Projectiles {
		st.Projectiles = append(st.Projectiles, dump.Projectile{
			Pos:     dv(p.Pos),
			Vel:     dv(p.Vel),
			Bounces: p.Bounces,
		})
	}
	return st
}
