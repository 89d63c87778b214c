package debugscript

// Input is the synthetic controller state a script drives. The host reads it
// every frame in place of physical input while the script is active.
//
// Fire, WeaponCycle, ClickLeft and ClickRight are pulses: Update clears them
// before running any command, so each is set for at most one call.
type Input struct {
	Move        Vec2 // each axis in [-1, 1]; -Y is up
	Aim         Vec2 // world-space aim point, valid when HasAim
	HasAim      bool
	Fire        bool
	HoldFire    bool
	WeaponCycle int // +1 next, -1 prev, 0 none
	ClickLeft   bool
	ClickRight  bool
}

// Firing reports whether the trigger is down this frame.
func (in Input) Firing() bool {
	return in.Fire || in.HoldFire
}

func (in *Input) clearPulses() {
	in.Fire = false
	in.WeaponCycle = 0
	in.ClickLeft = false
	in.ClickRight = false
}

func (in *Input) apply(m Move) {
	switch m.Mode {
	case MoveStop:
		in.Move = Vec2{}
	case MoveSub:
		in.Move.X -= m.Dir.X
		in.Move.Y -= m.Dir.Y
	default:
		in.Move.X += m.Dir.X
		in.Move.Y += m.Dir.Y
	}
	in.Move.X = clampUnit(in.Move.X)
	in.Move.Y = clampUnit(in.Move.Y)
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
