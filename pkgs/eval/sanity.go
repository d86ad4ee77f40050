package eval

import (
	"fmt"
	"math"

	"github.com/carcosa-lang/yellow/pkgs/value"
)

// sanityCheck runs the six-rule sequence before every statement, in
// order. Only rule 2 (Yellow Sign) ever returns an error; the rest are
// pure side effects on transcript and state.
func (e *Evaluator) sanityCheck() error {
	s := e.state

	if math.IsNaN(s.Sanity) {
		s.Sanity = 0
		e.logWarn("sanity collapses into incoherence")
	}

	if s.Sanity < 0 {
		e.logCritical("◈ THE YELLOW SIGN ◈")
		return e.runtimeError("sanity depleted")
	}

	if s.Sanity < s.Config.DontTurnLeftThreshold && s.RNG.Draw() > 0.7 {
		e.logWarn("don't turn left")
	}

	if s.Sanity < s.Config.AppendSuffixThreshold {
		s.AppendTranscript(" don't turn left")
	}

	if s.Sanity < s.Config.PhantomSpawnThreshold && s.RNG.Draw() > 0.95 {
		e.spawnPhantom()
	}

	if s.Sanity < s.Config.BleedThroughThreshold && len(s.Echoes) > 0 {
		echo, ok := s.PopEcho()
		if ok && echo.Stability > 0.3 {
			s.Assign(echo.Name, echo.Value, echo.Stability)
			e.logInfo(fmt.Sprintf("a memory bleeds through: %s", echo.Name))
		}
	}

	return nil
}

// spawnPhantom binds a quantum-phantom value under a name drawn
// uniformly from the configured phantom-name pool.
func (e *Evaluator) spawnPhantom() {
	names := e.state.Config.PhantomNames
	if len(names) == 0 {
		return
	}
	idx := int(e.state.RNG.Draw() * float64(len(names)))
	if idx >= len(names) {
		idx = len(names) - 1
	}
	name := names[idx]
	e.state.Phantoms[name] = value.NewPhantom()
	e.logWarn(fmt.Sprintf("a phantom stirs: %s", name))
}
