// Package state holds the interpreter's environments and side
// channels: the two-tier variable environment (global map plus
// call-stack frames), the side-channel buffers (memory fragments,
// temporal echoes, infections, phantom variables, generated-code
// log), the scalar gauges (sanity, entropy, execution depth, whisper
// count, reality-stable flag), the shared PRNG, and the bounded
// transcript buffer the host-facing RunCode returns.
//
// One State struct is threaded through every statement and expression
// evaluation in pkgs/eval, the same role a shared execution context
// plays in other tree-walking interpreters.
package state

import (
	"sort"
	"strings"

	"github.com/carcosa-lang/yellow/pkgs/config"
	"github.com/carcosa-lang/yellow/pkgs/value"
)

// Frame is a single scope: the global environment, or one call-stack
// entry.
type Frame map[string]*value.Value

// Echo is one recorded assignment, eligible to bleed back into scope
// when sanity is low.
type Echo struct {
	EntropyAtWrite int
	Name           string
	Value          *value.Value
	Stability      float64
}

// Infection is a per-name corruption record created by `infect`.
// SpreadVector lists the names a derived infection was seeded onto
// when this infection spread.
type Infection struct {
	Virulence    float64
	SpreadVector []string
}

// State is the interpreter's complete mutable state. One State is
// created per interpreter lifetime and reused across every RunCode
// call.
type State struct {
	Config *config.Config

	Global Frame
	Stack  []Frame

	MemoryFragments map[string][]*value.Value
	Echoes          []Echo
	Infections      map[string]*Infection
	Phantoms        map[string]*value.Value
	GeneratedCode   []string

	Sanity         float64
	Entropy        int
	ExecutionDepth int
	WhisperCount   int
	RealityStable  bool

	RNG *RNG

	transcript strings.Builder
}

// New creates a fresh State using the given configuration (pass
// config.Default() for the canonical, testable behavior).
func New(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	return &State{
		Config:          cfg,
		Global:          make(Frame),
		MemoryFragments: make(map[string][]*value.Value),
		Infections:      make(map[string]*Infection),
		Phantoms:        make(map[string]*value.Value),
		Sanity:          100,
		RNG:             NewRNG(),
	}
}

// --- Environment ---

// InnermostFrame returns the top-of-stack frame, or nil if the call
// stack is empty (global scope).
func (s *State) InnermostFrame() Frame {
	if len(s.Stack) == 0 {
		return nil
	}
	return s.Stack[len(s.Stack)-1]
}

// PushFrame opens a new scope (used by `scene` blocks and function
// calls).
func (s *State) PushFrame() Frame {
	f := make(Frame)
	s.Stack = append(s.Stack, f)
	return f
}

// PopFrame closes the innermost scope.
func (s *State) PopFrame() {
	if len(s.Stack) > 0 {
		s.Stack = s.Stack[:len(s.Stack)-1]
	}
}

// Lookup resolves a name in order: the phantom map (only when sanity
// is below the configured phantom threshold), then the innermost
// stack frame, then the global environment. ok is false if the name
// is unbound anywhere.
func (s *State) Lookup(name string) (*value.Value, bool) {
	if s.Sanity < s.Config.PhantomLookupThreshold {
		if v, ok := s.Phantoms[name]; ok {
			return v, true
		}
	}
	if f := s.InnermostFrame(); f != nil {
		if v, ok := f[name]; ok {
			return v, true
		}
	}
	if v, ok := s.Global[name]; ok {
		return v, true
	}
	return nil, false
}

// Assign writes to the innermost frame if one exists, else to the
// global environment, and always appends a temporal echo.
func (s *State) Assign(name string, v *value.Value, stability float64) {
	if f := s.InnermostFrame(); f != nil {
		f[name] = v
	} else {
		s.Global[name] = v
	}
	s.appendEcho(name, v, stability)
}

// ScopeNames lists every name bound in the current scope: the
// innermost frame if one exists, else the globals. The list is sorted
// so infection spread visits names in a fixed order, keeping PRNG
// consumption identical across runs. Used by `infect` to pick
// derived-infection targets.
func (s *State) ScopeNames() []string {
	scope := s.Global
	if f := s.InnermostFrame(); f != nil {
		scope = f
	}
	names := make([]string, 0, len(scope))
	for n := range scope {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// --- Temporal echoes ---

func (s *State) appendEcho(name string, v *value.Value, stability float64) {
	s.Echoes = append(s.Echoes, Echo{
		EntropyAtWrite: s.Entropy,
		Name:           name,
		Value:          v,
		Stability:      stability,
	})
	if len(s.Echoes) > s.Config.EchoCapacity {
		drain := s.Config.EchoDrainOnOverflow
		if drain > len(s.Echoes) {
			drain = len(s.Echoes)
		}
		s.Echoes = s.Echoes[drain:]
	}
}

// PopEcho removes and returns the most recent echo, or false if none
// remain.
func (s *State) PopEcho() (Echo, bool) {
	if len(s.Echoes) == 0 {
		return Echo{}, false
	}
	e := s.Echoes[len(s.Echoes)-1]
	s.Echoes = s.Echoes[:len(s.Echoes)-1]
	return e, true
}

// --- Memory fragments ---

// Remember pushes a value onto name's fragment FIFO, evicting the
// oldest entry once the configured capacity is exceeded.
func (s *State) Remember(name string, v *value.Value) {
	q := append(s.MemoryFragments[name], v)
	if len(q) > s.Config.FragmentCapacity {
		q = q[len(q)-s.Config.FragmentCapacity:]
	}
	s.MemoryFragments[name] = q
}

// Manifest pops the newest fragment for name, or returns (nil, false)
// if none exist.
func (s *State) Manifest(name string) (*value.Value, bool) {
	q := s.MemoryFragments[name]
	if len(q) == 0 {
		return nil, false
	}
	v := q[len(q)-1]
	s.MemoryFragments[name] = q[:len(q)-1]
	return v, true
}

// --- Transcript buffer ---

// AppendTranscript appends text to the bounded transcript buffer.
// Once the configured cap is reached, further appends are silently
// dropped.
func (s *State) AppendTranscript(text string) {
	remaining := s.Config.TranscriptCapChars - s.transcript.Len()
	if remaining <= 0 {
		return
	}
	if len(text) > remaining {
		text = text[:remaining]
	}
	s.transcript.WriteString(text)
}

// AppendTranscriptLine appends text followed by a newline, subject to
// the same cap as AppendTranscript.
func (s *State) AppendTranscriptLine(text string) {
	s.AppendTranscript(text + "\n")
}

// Transcript returns everything logged so far.
func (s *State) Transcript() string {
	return s.transcript.String()
}

// ResetTranscript clears the transcript buffer at the start of each
// RunCode call; sanity, echoes, phantoms, and every other side channel
// are untouched - they accumulate across calls, the transcript does
// not.
func (s *State) ResetTranscript() {
	s.transcript.Reset()
}

// --- Sanity accessor ---

// GetSanity normalises the reported sanity: NaN or negative values
// read as 0.
func (s *State) GetSanity() float64 {
	if s.Sanity != s.Sanity { // NaN
		return 0
	}
	if s.Sanity < 0 {
		return 0
	}
	return s.Sanity
}

// AddSanity adds delta to sanity, capping at 100 (used by `anchor`).
func (s *State) AddSanity(delta float64) {
	s.Sanity += delta
	if s.Sanity > 100 {
		s.Sanity = 100
	}
}
