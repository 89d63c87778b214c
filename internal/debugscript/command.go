package debugscript

import (
	"fmt"
	"strconv"
)

// Vec2 is a 2D position or direction in world (or screen) units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// Command is one parsed script line. Each keyword has its own type carrying
// only its own arguments; commands are never mutated after parsing.
//
// Commands that need the host to do something (load a map, take a
// screenshot, ...) also implement Action and are handed back from Update
// as-is.
type Command interface {
	Keyword() string
}

// MoveMode controls how an input command combines with the current
// movement vector.
type MoveMode int

const (
	MoveAdd MoveMode = iota
	MoveSub
	MoveStop
)

func (m MoveMode) String() string {
	switch m {
	case MoveAdd:
		return "add"
	case MoveSub:
		return "sub"
	case MoveStop:
		return "stop"
	}
	return "MoveMode(" + strconv.Itoa(int(m)) + ")"
}

// MouseButton identifies the button of a mouse_click command.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	}
	return "MouseButton(" + strconv.Itoa(int(b)) + ")"
}

// State commands. They change the script or its input projection and never
// leave the command loop.
type (
	// Turbo toggles fixed-timestep fast simulation.
	Turbo struct{ On bool }
	// Render toggles drawing.
	Render struct{ On bool }
	// Frames suspends the script for N frames, counting the current one.
	Frames struct{ N int }
	// Move accumulates a direction into the movement vector.
	Move struct {
		Dir  Vec2
		Mode MoveMode
	}
	// Aim sets the world-space aim point.
	Aim struct{ At Vec2 }
	// Fire presses fire for a single frame.
	Fire struct{}
	// HoldFire sets or releases a fire level that persists across frames.
	HoldFire struct{ On bool }
	// Weapon cycles the selected weapon for a single frame (+1 next, -1 prev).
	Weapon struct{ Delta int }
	// MouseClick clicks a mouse button for a single frame.
	MouseClick struct{ Button MouseButton }
)

// Yielding commands. Each is returned to the host as the Action of the
// Update call that reached it.
type (
	// LoadMap asks the host to load the map at Path.
	LoadMap struct{ Path string }
	// SetSeed asks the host to reseed the simulation RNG.
	SetSeed struct{ Seed uint32 }
	// Screenshot asks the host to save the next rendered frame to Path.
	Screenshot struct{ Path string }
	// Dump asks the host to write a state dump to Path.
	Dump struct{ Path string }
	// Quit ends the script. Completed is set when the script ran out of
	// commands rather than reaching an explicit quit.
	Quit struct{ Completed bool }
	// GodMode turns player invincibility on or off.
	GodMode struct{ On bool }
	// Teleport moves the player tank.
	Teleport struct{ To Vec2 }
	// Give hands the player an item by name.
	Give struct{ Item string }
	// Cursor places the aim cursor in world space.
	Cursor struct{ At Vec2 }
	// MouseScreen places the mouse cursor in screen pixels.
	MouseScreen struct{ At Vec2 }
	// SpawnBarrier places a barrier.
	SpawnBarrier struct{ At Vec2 }
	// SpawnPowerup places a powerup of the named type.
	SpawnPowerup struct {
		At   Vec2
		Type string
	}
)

func (Turbo) Keyword() string        { return "turbo" }
func (Render) Keyword() string       { return "render" }
func (Frames) Keyword() string       { return "frames" }
func (Move) Keyword() string         { return "input" }
func (Aim) Keyword() string          { return "aim" }
func (Fire) Keyword() string         { return "fire" }
func (HoldFire) Keyword() string     { return "hold_fire" }
func (Weapon) Keyword() string       { return "weapon" }
func (MouseClick) Keyword() string   { return "mouse_click" }
func (LoadMap) Keyword() string      { return "map" }
func (SetSeed) Keyword() string      { return "seed" }
func (Screenshot) Keyword() string   { return "screenshot" }
func (Dump) Keyword() string         { return "dump" }
func (Quit) Keyword() string         { return "quit" }
func (GodMode) Keyword() string      { return "god" }
func (Teleport) Keyword() string     { return "teleport" }
func (Give) Keyword() string         { return "give" }
func (Cursor) Keyword() string       { return "cursor" }
func (MouseScreen) Keyword() string  { return "mouse_screen" }
func (SpawnBarrier) Keyword() string { return "spawn_barrier" }
func (SpawnPowerup) Keyword() string { return "spawn_powerup" }
