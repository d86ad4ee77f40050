package eval

import (
	"fmt"
	"math"

	"github.com/carcosa-lang/yellow/pkgs/ast"
	"github.com/carcosa-lang/yellow/pkgs/state"
	"github.com/carcosa-lang/yellow/pkgs/value"
)

// echoStability records the confidence a temporal echo carries at
// write time: writes made while sane are more likely to bleed back
// into scope later.
func (e *Evaluator) echoStability() float64 {
	return e.state.Sanity / 100
}

func (e *Evaluator) execMask(n *ast.Mask) (*value.Value, bool, error) {
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return nil, false, err
	}
	e.state.Assign(n.Name, v, e.echoStability())
	return nil, false, nil
}

func (e *Evaluator) execEcho(n *ast.EchoStmt) (*value.Value, bool, error) {
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return nil, false, err
	}
	text := v.String()
	sanity := e.state.Sanity

	var prefix string
	switch {
	case sanity < e.state.Config.EchoDistortionThreshold:
		text = e.distort(text)
		prefix = "◈"
	case sanity < 60:
		prefix = "~"
	default:
		prefix = ">"
	}
	e.state.AppendTranscriptLine(fmt.Sprintf("%s %s", prefix, text))
	return nil, false, nil
}

func (e *Evaluator) execScene(n *ast.Scene) (*value.Value, bool, error) {
	e.state.PushFrame()
	defer e.state.PopFrame()
	return e.execBlock(n.Body)
}

func (e *Evaluator) execHastur(n *ast.Hastur) (*value.Value, bool, error) {
	if n.IsRift {
		return e.execRiftLoop(n)
	}

	s := e.state
	iterations := 0
	for {
		condVal, err := e.evalExpr(n.Cond)
		if err != nil {
			return nil, false, err
		}
		if !e.plainTruth(condVal) {
			break
		}

		ret, returned, err := e.execBlock(n.Body)
		if err != nil || returned {
			return ret, returned, err
		}

		s.Sanity -= 0.5
		iterations++
		if iterations >= s.Config.MaxLoopIterations {
			e.logWarn("thrice-spoken")
			s.Sanity -= 20
			break
		}
	}
	return nil, false, nil
}

// execRiftLoop implements the `rift(cond) { body }` header variant:
// a fixed count of N = max(1, floor(10*draw)) iterations, each of
// which evaluates cond through the ordinary condition evaluator and
// then overrides whether the body executes this iteration once
// sanity drops below 30.
func (e *Evaluator) execRiftLoop(n *ast.Hastur) (*value.Value, bool, error) {
	s := e.state
	count := int(math.Max(1, math.Floor(10*s.RNG.Draw())))

	for i := 0; i < count; i++ {
		condVal, err := e.evalExpr(n.Cond)
		if err != nil {
			return nil, false, err
		}
		truthy, err := e.conditionTruth(condVal)
		if err != nil {
			return nil, false, err
		}

		execute := truthy
		if s.Sanity < s.Config.CriticalSanityThreshold {
			execute = s.RNG.Draw() > 0.3
		}

		if execute {
			ret, returned, err := e.execBlock(n.Body)
			if err != nil || returned {
				return ret, returned, err
			}
		}
		s.Sanity -= 1
	}
	return nil, false, nil
}

func (e *Evaluator) execCassilda(n *ast.Cassilda) (*value.Value, bool, error) {
	condVal, err := e.evalExpr(n.Cond)
	if err != nil {
		return nil, false, err
	}
	truthy, err := e.conditionTruth(condVal)
	if err != nil {
		return nil, false, err
	}
	if !truthy {
		return nil, false, nil
	}
	return e.execBlock(n.Then)
}

func (e *Evaluator) execCarcosa(n *ast.Carcosa) (*value.Value, bool, error) {
	if n.Value == nil {
		return value.NewNull(), true, nil
	}
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (e *Evaluator) execAct(n *ast.Act) (*value.Value, bool, error) {
	fn := value.NewFunction(&value.Closure{Params: n.Params, Body: n.Body})
	e.state.Assign(n.Name, fn, e.echoStability())
	return nil, false, nil
}

func (e *Evaluator) execRewriteStmt(n *ast.RewriteStmt) (*value.Value, bool, error) {
	v, ok := e.state.Lookup(n.Name)
	if !ok {
		return nil, false, nil
	}
	e.state.Assign(n.Name, e.mutate(v), e.echoStability())

	e.rewriteCount++
	if e.rewriteCount%10 == 0 {
		e.logWarn("reality frays")
		e.state.Sanity -= 2
	}
	return nil, false, nil
}

func (e *Evaluator) execRemember(n *ast.Remember) (*value.Value, bool, error) {
	if v, ok := e.state.Lookup(n.Name); ok {
		e.state.Remember(n.Name, v)
	}
	return nil, false, nil
}

func (e *Evaluator) execForget(n *ast.Forget) (*value.Value, bool, error) {
	if f := e.state.InnermostFrame(); f != nil {
		if _, ok := f[n.Name]; ok {
			delete(f, n.Name)
			e.logInfo(fmt.Sprintf("%s is forgotten", n.Name))
			return nil, false, nil
		}
	}
	if _, ok := e.state.Global[n.Name]; ok {
		delete(e.state.Global, n.Name)
		e.logInfo(fmt.Sprintf("%s is forgotten", n.Name))
	}
	return nil, false, nil
}

func (e *Evaluator) execInfect(n *ast.Infect) (*value.Value, bool, error) {
	s := e.state
	virulence := 0.5 + 0.5*math.Tanh(float64(s.Entropy)/100)*(1-s.Sanity/100)
	inf := &state.Infection{Virulence: virulence}
	s.Infections[n.Name] = inf
	s.Sanity -= 3

	for _, other := range s.ScopeNames() {
		if other == n.Name {
			continue
		}
		if s.RNG.Draw() < 0.3 {
			s.Infections[other] = &state.Infection{Virulence: virulence * 0.7}
			inf.SpreadVector = append(inf.SpreadVector, other)
		}
	}
	return nil, false, nil
}

func (e *Evaluator) execAnchor(n *ast.Anchor) (*value.Value, bool, error) {
	e.state.RealityStable = true
	e.state.AddSanity(10)
	e.logInfo("anchored")
	return nil, false, nil
}
