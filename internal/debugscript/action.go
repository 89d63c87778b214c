package debugscript

// Action is what Update hands back to the host. Continue means "nothing to
// do this call"; every other action carries its own parameters, so there is
// no accessor to call afterwards and nothing to go stale.
type Action interface {
	action()
}

// Continue is returned while the script is waiting, after a frames command
// and once the script is done.
type Continue struct{}

func (Continue) action()     {}
func (LoadMap) action()      {}
func (SetSeed) action()      {}
func (Screenshot) action()   {}
func (Dump) action()         {}
func (Quit) action()         {}
func (GodMode) action()      {}
func (Teleport) action()     {}
func (Give) action()         {}
func (Cursor) action()       {}
func (MouseScreen) action()  {}
func (SpawnBarrier) action() {}
func (SpawnPowerup) action() {}

// IsContinue reports whether a is the no-op action.
func IsContinue(a Action) bool {
	_, ok := a.(Continue)
	return ok
}
