package eval

import (
	"math"
	"strings"

	"github.com/carcosa-lang/yellow/pkgs/ast"
	"github.com/carcosa-lang/yellow/pkgs/token"
	"github.com/carcosa-lang/yellow/pkgs/value"
)

// drift is the reality-distortion scalar used to perturb numeric
// literals, to shift the condition evaluator's numeric threshold, and
// to corrupt rewritten values in mutate(): tanh(entropy/100)*(1 -
// sanity/100). Multiplication uses its own instability term instead.
func (e *Evaluator) drift() float64 {
	s := e.state
	return math.Tanh(float64(s.Entropy)/100) * (1 - s.Sanity/100)
}

func (e *Evaluator) evalExpr(expr ast.Expr) (*value.Value, error) {
	switch n := expr.(type) {
	case *ast.NumberLit:
		return e.evalNumberLit(n), nil
	case *ast.StringLit:
		return value.NewString(n.Value), nil
	case *ast.BoolLit:
		return value.NewBool(n.Value), nil
	case *ast.Identifier:
		return e.evalIdentifier(n)
	case *ast.Binary:
		return e.evalBinary(n)
	case *ast.Call:
		return e.evalCall(n)
	case *ast.Rewrite:
		v, err := e.evalExpr(n.Target)
		if err != nil {
			return nil, err
		}
		return e.mutate(v), nil
	case *ast.Superpose:
		return e.evalSuperpose(n)
	case *ast.Collapse:
		return e.evalCollapse(n)
	case *ast.Manifest:
		v, ok := e.state.Manifest(n.Name)
		if !ok {
			return value.NewNull(), nil
		}
		return v, nil
	case *ast.Entangle:
		return e.evalEntangle(n)
	case *ast.Rift:
		e.logWarn("the geometry here is wrong")
		e.state.Sanity -= 2
		return e.evalExpr(n.Target)
	default:
		return nil, e.runtimeError("unrecognised expression")
	}
}

// evalNumberLit applies the numeric-literal drift rule: once sanity
// drops below 40 and reality has not been anchored stable, every
// literal reads out perturbed.
func (e *Evaluator) evalNumberLit(n *ast.NumberLit) *value.Value {
	v := n.Value
	if e.state.Sanity < e.state.Config.NumericDriftThreshold && !e.state.RealityStable {
		v += (e.drift() - 0.5) * 4
	}
	return value.NewNumber(v)
}

// evalIdentifier resolves a name by the phantom/frame/global order,
// then resolves one level of quantum-entanglement (an entangled value
// is a symbolic back-reference that resolves at the moment it is
// observed), then applies any infection corruption.
func (e *Evaluator) evalIdentifier(n *ast.Identifier) (*value.Value, error) {
	v, ok := e.state.Lookup(n.Name)
	if !ok {
		return nil, e.runtimeError("undefined identifier %q", n.Name)
	}
	if v.IsEntangled() {
		if resolved, ok := e.state.Lookup(v.Quan.Name); ok {
			v = resolved
		} else {
			v = value.NewNull()
		}
	}
	return e.applyInfection(n.Name, v), nil
}

// applyInfection corrupts a just-read value if its name carries an
// infection record: numbers are multiplied by a virulence-scaled
// jitter, booleans flip above a virulence threshold, everything else
// passes through untouched.
func (e *Evaluator) applyInfection(name string, v *value.Value) *value.Value {
	inf, ok := e.state.Infections[name]
	if !ok {
		return v
	}
	switch {
	case v.IsNumber():
		r := e.state.RNG.Draw()
		return value.NewNumber(v.Num * (1 + (r-0.5)*inf.Virulence))
	case v.IsBool():
		if inf.Virulence > 0.7 {
			return value.NewBool(!v.B)
		}
		return v
	default:
		return v
	}
}

// evalBinary implements the full binary operator table. Both
// operands are evaluated left-first regardless of whether the
// operator ends up type-mismatched.
func (e *Evaluator) evalBinary(n *ast.Binary) (*value.Value, error) {
	left, err := e.evalExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(n.Right)
	if err != nil {
		return nil, err
	}

	switch {
	case left.IsNumber() && right.IsNumber():
		return e.evalNumericBinary(n.Op, left.Num, right.Num)
	case left.IsBool() && right.IsBool():
		switch n.Op {
		case token.WHISPERS:
			return value.NewBool(left.B == right.B), nil
		case token.SCREAMS:
			return value.NewBool(left.B != right.B), nil
		default:
			return nil, e.runtimeError("type mismatch in binary operation")
		}
	case left.IsString() && right.IsString():
		switch n.Op {
		case token.MERGED:
			return value.NewString(left.Str + right.Str), nil
		case token.WHISPERS:
			return value.NewBool(left.Str == right.Str), nil
		case token.SCREAMS:
			return value.NewBool(left.Str != right.Str), nil
		default:
			return nil, e.runtimeError("type mismatch in binary operation")
		}
	default:
		return nil, e.runtimeError("type mismatch in binary operation")
	}
}

func (e *Evaluator) evalNumericBinary(op token.Type, a, b float64) (*value.Value, error) {
	switch op {
	case token.MERGED:
		return value.NewNumber(a + b), nil
	case token.TORN:
		return value.NewNumber(a - b), nil
	case token.REFLECTED:
		product := a * b
		instability := 1 - e.state.Sanity/100
		if instability > 0.3 {
			h := e.state.RNG.Draw()
			product *= 1 + (h-0.5)*instability
		}
		return value.NewNumber(product), nil
	case token.SHATTERED:
		if b == 0 {
			e.state.Sanity -= 10
			return value.NewNumber(math.Inf(1)), nil
		}
		return value.NewNumber(a / b), nil
	case token.WHISPERS:
		return value.NewBool(math.Abs(a-b) < 1e-4), nil
	case token.SCREAMS:
		return value.NewBool(math.Abs(a-b) >= 1e-4), nil
	case token.DESCENDING:
		return value.NewBool(a < b), nil
	case token.ASCENDING:
		return value.NewBool(a > b), nil
	default:
		return nil, e.runtimeError("type mismatch in binary operation")
	}
}

// evalCall looks up a function value, checks callability and arity,
// then runs the body in a freshly pushed frame. Closures are
// dynamic-scoped: the callee's Lookup only ever consults this new
// frame and the globals, never the caller's other stack frames, since
// state.State.Lookup only ever checks the innermost frame.
func (e *Evaluator) evalCall(n *ast.Call) (*value.Value, error) {
	fnVal, ok := e.state.Lookup(n.Name)
	if !ok {
		return nil, e.runtimeError("unknown callable %q", n.Name)
	}
	if !fnVal.IsFunction() {
		return nil, e.runtimeError("non-callable invocation")
	}
	if len(n.Args) != len(fnVal.Fn.Params) {
		return nil, e.runtimeError("arity mismatch")
	}

	args := make([]*value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	frame := e.state.PushFrame()
	for i, p := range fnVal.Fn.Params {
		frame[p] = args[i]
	}
	ret, _, err := e.execBlock(fnVal.Fn.Body)
	e.state.PopFrame()
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return value.NewNull(), nil
	}
	return ret, nil
}

func (e *Evaluator) evalSuperpose(n *ast.Superpose) (*value.Value, error) {
	candidates := make([]*value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		candidates[i] = v
	}
	return value.NewSuperposition(candidates), nil
}

func (e *Evaluator) evalCollapse(n *ast.Collapse) (*value.Value, error) {
	v, err := e.evalExpr(n.Target)
	if err != nil {
		return nil, err
	}
	if !v.IsSuperposition() {
		return v, nil
	}
	candidates := v.Quan.Candidates
	if len(candidates) == 0 {
		return nil, e.runtimeError("collapse of empty superposition")
	}
	return candidates[e.pickIndex(len(candidates))], nil
}

func (e *Evaluator) evalEntangle(n *ast.Entangle) (*value.Value, error) {
	bv, ok := e.state.Lookup(n.B)
	if !ok {
		return value.NewNull(), nil
	}
	e.state.Assign(n.A, value.NewEntangled(n.B), e.echoStability())
	return bv, nil
}

// pickIndex draws a uniform index in [0, n) from a fresh PRNG draw.
func (e *Evaluator) pickIndex(n int) int {
	idx := int(e.state.RNG.Draw() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// mutate shifts numbers by a drift-scaled amount, flips booleans once
// drift crosses 0.7, and returns every other kind unchanged.
func (e *Evaluator) mutate(v *value.Value) *value.Value {
	drift := e.drift()
	switch {
	case v.IsNumber():
		return value.NewNumber(v.Num + drift*15 - 7.5)
	case v.IsBool():
		if drift > 0.7 {
			return value.NewBool(!v.B)
		}
		return v
	default:
		return v
	}
}

// plainTruth is the ordinary truthiness test plain Hastur loops use:
// booleans by value, numbers non-zero, null false, phantoms a
// coin-flip, everything else true. Unlike conditionTruth it never
// inverts a boolean, so a loop condition stays honest however far
// sanity falls.
func (e *Evaluator) plainTruth(v *value.Value) bool {
	if v.IsBool() {
		return v.B
	}
	if v.IsPhantom() {
		return v.IsTrue(e.state.RNG.Draw() < 0.5)
	}
	return v.IsTrue(false)
}

// conditionTruth is the condition evaluator used by Cassilda and the
// rift loop, distinct from plainTruth: booleans can invert under low
// sanity, numbers use a drift-shifted threshold, and superpositions
// collapse-then-recurse.
func (e *Evaluator) conditionTruth(v *value.Value) (bool, error) {
	switch {
	case v.IsBool():
		truthy := v.B
		if e.state.Sanity < e.state.Config.ConditionInvertThreshold && e.state.RNG.Draw() > 0.8 {
			truthy = !truthy
		}
		return truthy, nil
	case v.IsNumber():
		return v.Num > 0.5+0.3*e.drift(), nil
	case v.IsSuperposition():
		candidates := v.Quan.Candidates
		if len(candidates) == 0 {
			return false, nil
		}
		return e.conditionTruth(candidates[e.pickIndex(len(candidates))])
	default:
		return false, nil
	}
}

// distort replaces each rune of text with one of a fixed glyph set at
// roughly 0.3 probability per character, each decision and each glyph
// choice drawn fresh from the shared PRNG.
var distortionGlyphs = []string{" ", "◈", "⚠", "⟨", "⟩", "↯"}

func (e *Evaluator) distort(text string) string {
	var b strings.Builder
	for _, r := range text {
		if e.state.RNG.Draw() < 0.3 {
			b.WriteString(distortionGlyphs[e.pickIndex(len(distortionGlyphs))])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
