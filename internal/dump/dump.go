// Package dump writes point-in-time text snapshots of the simulation for
// diffing between runs. The format is sectioned "key: value" text and is not
// meant to be parsed back.
package dump

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/goofansu/tankgame/internal/logging"
)

// Vec2 is a world-space position or velocity.
type Vec2 struct {
	X, Y float64
}

// Tank is the dumped view of one tank.
type Tank struct {
	Pos          Vec2
	Vel          Vec2
	BodyAngle    float64
	TurretAngle  float64
	Health       int
	Flags        uint32
	FireCooldown float64
	Dead         bool
}

// Roster is the non-player tank population.
type Roster struct {
	Total   int // every active tank, player included
	Enemies []Tank
}

// Path describes an AI controller's toxic-escape path.
type Path struct {
	Valid      bool
	Count      int
	Current    int
	Complete   bool
	Target     Vec2
	TargetDist float64
	Goal       Vec2
	GoalDist   float64
	MoveDir    Vec2
}

// Detour describes an AI controller's obstacle detour.
type Detour struct {
	Active       bool
	Timer        float64
	BlockedTimer float64
	Target       Vec2
}

// Controller is the dumped view of one AI controller.
type Controller struct {
	TankID        int
	Type          string
	State         string
	Pos           Vec2
	ToxicEscaping bool
	ToxicUrgency  float64
	InToxic       bool
	ToxicAtEnd    bool
	EscapeTarget  Vec2
	TargetInToxic bool
	Path          Path
	Detour        Detour
}

// Cloud is the toxic cloud boundary.
type Cloud struct {
	Progress     float64
	Left, Right  float64
	Top, Bottom  float64
	CornerRadius float64
}

// Projectile is one live projectile.
type Projectile struct {
	Pos     Vec2
	Vel     Vec2
	Bounces int
}

// State is everything a dump can contain. Nil sections are left out of the
// output; an empty but non-nil section is still written with its header.
type State struct {
	Frame       int
	Player      *Tank
	Tanks       *Roster
	AI          []Controller
	HasAI       bool
	Cloud       *Cloud
	Projectiles []Projectile
	HasProj     bool
}

// Format writes st to w.
func Format(w io.Writer, st State) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Tank Game State Dump\n")
	fmt.Fprintf(&b, "frame: %d\n\n", st.Frame)

	if p := st.Player; p != nil {
		b.WriteString("[player]\n")
		fmt.Fprintf(&b, "pos: %.3f %.3f\n", p.Pos.X, p.Pos.Y)
		fmt.Fprintf(&b, "vel: %.3f %.3f\n", p.Vel.X, p.Vel.Y)
		fmt.Fprintf(&b, "body_angle: %.3f\n", p.BodyAngle)
		fmt.Fprintf(&b, "turret_angle: %.3f\n", p.TurretAngle)
		fmt.Fprintf(&b, "health: %d\n", p.Health)
		fmt.Fprintf(&b, "flags: 0x%08x\n", p.Flags)
		fmt.Fprintf(&b, "fire_cooldown: %.3f\n", p.FireCooldown)
		b.WriteByte('\n')
	}

	if r := st.Tanks; r != nil {
		alive, dead := 0, 0
		for _, t := range r.Enemies {
			if t.Dead {
				dead++
			} else {
				alive++
			}
		}
		b.WriteString("[tanks]\n")
		fmt.Fprintf(&b, "total: %d\n", r.Total)
		fmt.Fprintf(&b, "enemies_alive: %d\n", alive)
		fmt.Fprintf(&b, "enemies_dead: %d\n", dead)
		b.WriteByte('\n')

		b.WriteString("[enemies]\n")
		for i, t := range r.Enemies {
			status := "alive"
			if t.Dead {
				status = "dead"
			}
			fmt.Fprintf(&b, "%d: pos=(%.3f, %.3f) health=%d status=%s\n",
				i, t.Pos.X, t.Pos.Y, t.Health, status)
		}
		b.WriteByte('\n')
	}

	if st.HasAI {
		b.WriteString("[ai]\n")
		for _, c := range st.AI {
			formatController(&b, c)
		}
		b.WriteByte('\n')
	}

	if c := st.Cloud; c != nil {
		b.WriteString("[toxic_cloud]\n")
		fmt.Fprintf(&b, "progress: %.3f\n", c.Progress)
		fmt.Fprintf(&b, "boundary: left=%.3f right=%.3f top=%.3f bottom=%.3f\n",
			c.Left, c.Right, c.Top, c.Bottom)
		fmt.Fprintf(&b, "corner_radius: %.3f\n", c.CornerRadius)
		b.WriteByte('\n')
	}

	if st.HasProj {
		b.WriteString("[projectiles]\n")
		fmt.Fprintf(&b, "active: %d\n", len(st.Projectiles))
		for _, p := range st.Projectiles {
			fmt.Fprintf(&b, "  pos=(%.3f, %.3f) vel=(%.3f, %.3f) bounces=%d\n",
				p.Pos.X, p.Pos.Y, p.Vel.X, p.Vel.Y, p.Bounces)
		}
		b.WriteByte('\n')
	}

	_, err := b.WriteTo(w)
	return err
}

func formatController(b *bytes.Buffer, c Controller) {
	typ := c.Type
	if typ == "" {
		typ = "unknown"
	}
	state := c.State
	if state == "" {
		state = "unknown"
	}
	fmt.Fprintf(b,
		"tank_id=%d type=%s state=%s pos=(%.3f, %.3f) "+
			"toxic_escaping=%d toxic_urgency=%.2f in_toxic=%d "+
			"toxic_at_end=%d target=(%.3f, %.3f) target_in_toxic=%d "+
			"path_valid=%d path_count=%d path_current=%d "+
			"path_complete=%d path_target=(%.3f, %.3f) "+
			"path_target_dist=%.3f path_goal=(%.3f, %.3f) "+
			"path_goal_dist=%.3f move_dir=(%.3f, %.3f) detour=%d "+
			"detour_timer=%.2f detour_blocked=%.2f detour_target=(%.3f, %.3f)\n",
		c.TankID, typ, state, c.Pos.X, c.Pos.Y,
		b2i(c.ToxicEscaping), c.ToxicUrgency, b2i(c.InToxic),
		b2i(c.ToxicAtEnd), c.EscapeTarget.X, c.EscapeTarget.Y, b2i(c.TargetInToxic),
		b2i(c.Path.Valid), c.Path.Count, c.Path.Current,
		b2i(c.Path.Complete), c.Path.Target.X, c.Path.Target.Y,
		c.Path.TargetDist, c.Path.Goal.X, c.Path.Goal.Y,
		c.Path.GoalDist, c.Path.MoveDir.X, c.Path.MoveDir.Y, b2i(c.Detour.Active),
		c.Detour.Timer, c.Detour.BlockedTimer, c.Detour.Target.X, c.Detour.Target.Y,
	)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Write formats st and writes it to path, replacing any previous file. The
// snapshot is rendered in memory first, so a failure never leaves a partial
// dump behind a successful open.
func Write(path string, st State, log logrus.FieldLogger) error {
	log = logging.Or(log, logging.CatCore)

	var b bytes.Buffer
	if err := Format(&b, st); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		log.WithError(err).Errorf("Debug script: failed to open dump file '%s'", path)
		return fmt.Errorf("dump: %w", err)
	}
	if _, err := b.WriteTo(f); err != nil {
		f.Close()
		log.WithError(err).Errorf("Debug script: failed to write dump file '%s'", path)
		return fmt.Errorf("dump: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dump: close %s: %w", path, err)
	}
	log.Infof("Debug script: dumped state to '%s'", path)
	return nil
}
