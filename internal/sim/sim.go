// Package sim provides the fixed-timestep clock, deterministic RNG and
// per-tick state hash that make scripted runs reproducible.
package sim

import "math"

const (
	// TickRate is the number of simulation ticks per second.
	TickRate = 60
	// Dt is the fixed timestep in seconds.
	Dt = 1.0 / TickRate
	// MaxTicksPerFrame bounds catch-up work after a long frame.
	MaxTicksPerFrame = 4
	// maxFrameDt clamps a single frame's wall-clock delta.
	maxFrameDt = 0.25
)

// Rng is a xorshift32 generator. Same seed, same sequence, on every
// platform.
type Rng struct {
	state uint32
}

// NewRng returns a generator seeded with seed.
func NewRng(seed uint32) *Rng {
	r := &Rng{}
	r.Seed(seed)
	return r
}

// Seed resets the generator. Zero is replaced by 1 since xorshift never
// leaves the all-zero state.
func (r *Rng) Seed(seed uint32) {
	if seed == 0 {
		seed = 1
	}
	r.state = seed
}

// Next returns the next raw value.
func (r *Rng) Next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float returns a value in [0, 1) built from the top 24 bits.
func (r *Rng) Float() float64 {
	return float64(r.Next()>>8) / float64(1<<24)
}

// Range returns a value in [min, max).
func (r *Rng) Range(min, max float64) float64 {
	return min + r.Float()*(max-min)
}

// Int returns a value in [min, max] inclusive.
func (r *Rng) Int(min, max int) int {
	if min >= max {
		return min
	}
	span := uint32(max - min + 1)
	return min + int(r.Next()%span)
}

// Angle returns a random angle in [0, 2π).
func (r *Rng) Angle() float64 {
	return r.Float() * 2 * math.Pi
}

const (
	fnvOffset = 0x811c9dc5
	fnvPrime  = 0x01000193
)

// Hash is a 32-bit FNV-1a accumulator over simulation state.
type Hash struct {
	value uint32
}

// NewHash returns an initialised hash.
func NewHash() Hash {
	return Hash{value: fnvOffset}
}

// Reset reinitialises the hash.
func (h *Hash) Reset() {
	h.value = fnvOffset
}

// Bytes mixes raw bytes into the hash.
func (h *Hash) Bytes(data []byte) {
	for _, b := range data {
		h.value ^= uint32(b)
		h.value *= fnvPrime
	}
}

// Uint32 mixes v in little-endian byte order.
func (h *Hash) Uint32(v uint32) {
	h.Bytes([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// Float mixes v quantised to 1/1024 so tiny representation differences do
// not change the hash.
func (h *Hash) Float(v float64) {
	h.Uint32(uint32(int32(v * 1024)))
}

// Vec2 mixes a pair of floats.
func (h *Hash) Vec2(x, y float64) {
	h.Float(x)
	h.Float(y)
}

// Sum returns the current value.
func (h Hash) Sum() uint32 {
	return h.value
}

// Sim is the simulation clock.
type Sim struct {
	accumulator float64
	tick        uint64
	alpha       float64

	rng         *Rng
	initialSeed uint32

	hash     Hash
	lastHash uint32

	ticksThisFrame int
	totalTicks     int
}

// New returns a clock seeded with seed.
func New(seed uint32) *Sim {
	s := &Sim{rng: NewRng(seed)}
	s.Reset(seed)
	return s
}

// Reset rewinds the clock to tick zero and reseeds the RNG.
func (s *Sim) Reset(seed uint32) {
	s.accumulator = 0
	s.tick = 0
	s.alpha = 0
	s.initialSeed = seed
	s.rng.Seed(seed)
	s.hash.Reset()
	s.lastHash = 0
	s.ticksThisFrame = 0
	s.totalTicks = 0
}

// Accumulate adds a frame's wall-clock delta and returns how many fixed
// ticks to run. Long frames are clamped and excess time is dropped once
// MaxTicksPerFrame is reached.
func (s *Sim) Accumulate(dt float64) int {
	if dt > maxFrameDt {
		dt = maxFrameDt
	}
	s.accumulator += dt

	ticks := 0
	for s.accumulator >= Dt {
		s.accumulator -= Dt
		ticks++
		if ticks >= MaxTicksPerFrame {
			s.accumulator = 0
			break
		}
	}
	s.ticksThisFrame = ticks
	s.alpha = s.accumulator / Dt
	return ticks
}

// BeginTick starts a tick's state hash.
func (s *Sim) BeginTick() {
	s.hash.Reset()
	s.hash.Uint32(uint32(s.tick))
}

// EndTick closes the tick: the hash is frozen and the counter advances.
func (s *Sim) EndTick() {
	s.lastHash = s.hash.Sum()
	s.tick++
	s.totalTicks++
}

// HashFloat mixes a value into the current tick's hash.
func (s *Sim) HashFloat(v float64) { s.hash.Float(v) }

// HashVec2 mixes a pair into the current tick's hash.
func (s *Sim) HashVec2(x, y float64) { s.hash.Vec2(x, y) }

// HashUint32 mixes an integer into the current tick's hash.
func (s *Sim) HashUint32(v uint32) { s.hash.Uint32(v) }

// LastHash returns the hash of the last completed tick.
func (s *Sim) LastHash() uint32 { return s.lastHash }

// Tick returns the number of completed ticks.
func (s *Sim) Tick() uint64 { return s.tick }

// Alpha is the interpolation factor between the last two ticks.
func (s *Sim) Alpha() float64 { return s.alpha }

// TicksThisFrame returns the result of the last Accumulate.
func (s *Sim) TicksThisFrame() int { return s.ticksThisFrame }

// Rng returns the simulation RNG. Gameplay randomness must come from here.
func (s *Sim) Rng() *Rng { return s.rng }

// Seed returns the seed of the last Reset or SetSeed.
func (s *Sim) Seed() uint32 { return s.initialSeed }

// SetSeed reseeds the RNG without touching the tick counter.
func (s *Sim) SetSeed(seed uint32) {
	s.initialSeed = seed
	s.rng.Seed(seed)
}
