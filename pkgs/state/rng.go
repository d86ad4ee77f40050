package state

// RNG is the deterministic 64-bit xorshift generator. It is the sole
// source of reality-distortion randomness; every "fresh draw" used by
// the evaluator's sanity check, distortion, and collapse logic goes
// through it, which is what makes the determinism property testable
// at all.
type RNG struct {
	state uint64
}

// CanonicalSeed is the fixed seed rng_state starts from: a 64-bit
// integer seeded to the constant 123456789.
const CanonicalSeed uint64 = 123456789

// NewRNG creates an RNG seeded to the canonical constant.
func NewRNG() *RNG {
	return &RNG{state: CanonicalSeed}
}

// NewRNGSeeded creates an RNG with an explicit seed, used only by
// tests that need to exercise non-canonical sequences.
func NewRNGSeeded(seed uint64) *RNG {
	if seed == 0 {
		seed = CanonicalSeed
	}
	return &RNG{state: seed}
}

func (r *RNG) next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.state = x
	return x
}

// Draw produces a fresh value in [0, 1): (x mod 10000)/10000.
func (r *RNG) Draw() float64 {
	return float64(r.next()%10000) / 10000.0
}

// State returns the raw generator state, exposed for diagnostics and
// tests only; nothing in pkgs/eval resets or forks the stream,
// including during whisper's nested execution.
func (r *RNG) State() uint64 { return r.state }
