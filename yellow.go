// Package yellow is the host-embedding bridge: three surface
// operations (constructor, run_code, get_sanity) over an interpreter
// whose lexer/parser/evaluator/state packages the host never calls
// directly. An embedding host imports this package, plus pkgs/config
// only when it builds a tuning for NewWithConfig.
package yellow

import (
	"github.com/carcosa-lang/yellow/pkgs/config"
	"github.com/carcosa-lang/yellow/pkgs/eval"
	"github.com/carcosa-lang/yellow/pkgs/state"
)

// Interpreter is a single Yellow interpreter instance. Its state
// (sanity, entropy, echoes, phantoms, infections, memory fragments)
// lives for as long as the Interpreter does and accumulates across
// every RunCode call. An Interpreter is not safe for concurrent or
// re-entrant use: the host must not call RunCode again from inside a
// RunCode call on the same instance.
type Interpreter struct {
	state *state.State
	eval  *eval.Evaluator
}

// New constructs a fresh interpreter using the canonical default
// tuning.
func New() *Interpreter {
	return NewWithConfig(config.Default())
}

// NewWithConfig constructs an interpreter with an explicit tuning
// configuration - load one with config.Load for deployments that want
// to widen or narrow the reality-distortion thresholds without
// touching the language grammar.
func NewWithConfig(cfg *config.Config) *Interpreter {
	s := state.New(cfg)
	return &Interpreter{state: s, eval: eval.New(s)}
}

// RunCode lexes, parses, and executes source against this
// interpreter's persistent state, returning the transcript produced
// by this call: banners, echoed output, and the closing summary box.
func (i *Interpreter) RunCode(source string) string {
	return i.eval.RunProgram(source)
}

// GetSanity reports current sanity, normalised so NaN or negative
// values read as 0.
func (i *Interpreter) GetSanity() float64 {
	return i.state.GetSanity()
}
