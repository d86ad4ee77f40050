// Package value implements Yellow's runtime value domain: a tagged
// union of number, string, boolean, null, function closure, and
// quantum values, backed by an explicit Kind tag because the domain
// is closed, small, and includes states (superposition, entangled,
// phantom) with no single concrete representation of their own.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carcosa-lang/yellow/pkgs/ast"
)

// Kind tags which variant of the union a Value holds.
type Kind int

const (
	Number Kind = iota
	String
	Bool
	Null
	Function
	Quantum
)

// QuantumKind tags which quantum sub-state a Quantum-kinded Value
// holds.
type QuantumKind int

const (
	Collapsed QuantumKind = iota
	Superposition
	Entangled
	Phantom
)

// Closure is a function value: a dynamically-scoped parameter list
// plus body. It deliberately captures no environment at definition
// time.
type Closure struct {
	Params []string
	Body   []ast.Stmt
}

// Q is the payload of a Quantum-kinded Value.
type Q struct {
	Kind QuantumKind

	// Collapsed
	Inner *Value

	// Superposition
	Candidates []*Value

	// Entangled
	Name string
}

// Value is a single Yellow runtime value.
type Value struct {
	Kind Kind

	Num  float64
	Str  string
	B    bool
	Fn   *Closure
	Quan *Q
}

func NewNumber(n float64) *Value     { return &Value{Kind: Number, Num: n} }
func NewString(s string) *Value      { return &Value{Kind: String, Str: s} }
func NewBool(b bool) *Value          { return &Value{Kind: Bool, B: b} }
func NewNull() *Value                { return &Value{Kind: Null} }
func NewFunction(fn *Closure) *Value { return &Value{Kind: Function, Fn: fn} }

func NewCollapsed(inner *Value) *Value {
	return &Value{Kind: Quantum, Quan: &Q{Kind: Collapsed, Inner: inner}}
}

func NewSuperposition(candidates []*Value) *Value {
	return &Value{Kind: Quantum, Quan: &Q{Kind: Superposition, Candidates: candidates}}
}

func NewEntangled(name string) *Value {
	return &Value{Kind: Quantum, Quan: &Q{Kind: Entangled, Name: name}}
}

func NewPhantom() *Value {
	return &Value{Kind: Quantum, Quan: &Q{Kind: Phantom}}
}

func (v *Value) IsNumber() bool   { return v != nil && v.Kind == Number }
func (v *Value) IsString() bool   { return v != nil && v.Kind == String }
func (v *Value) IsBool() bool     { return v != nil && v.Kind == Bool }
func (v *Value) IsNull() bool     { return v == nil || v.Kind == Null }
func (v *Value) IsFunction() bool { return v != nil && v.Kind == Function }
func (v *Value) IsQuantum() bool  { return v != nil && v.Kind == Quantum }

func (v *Value) IsSuperposition() bool {
	return v.IsQuantum() && v.Quan.Kind == Superposition
}

func (v *Value) IsPhantom() bool {
	return v.IsQuantum() && v.Quan.Kind == Phantom
}

func (v *Value) IsEntangled() bool {
	return v.IsQuantum() && v.Quan.Kind == Entangled
}

// IsTrue is the plain truthiness test used outside condition
// evaluation: numbers non-zero, null false, phantom a coin-flip (the
// caller supplies the draw since value has no PRNG of its own),
// everything else true.
func (v *Value) IsTrue(phantomCoin bool) bool {
	if v.IsNull() {
		return false
	}
	if v.IsNumber() {
		return v.Num != 0
	}
	if v.IsPhantom() {
		return phantomCoin
	}
	return true
}

// String formats a value for the echo/transcript surface. pallid is
// the display form of null; booleans read out as true/false, not as
// their literal spellings.
func (v *Value) String() string {
	if v == nil {
		return "pallid"
	}
	switch v.Kind {
	case Number:
		return formatNumber(v.Num)
	case String:
		return v.Str
	case Bool:
		if v.B {
			return "true"
		}
		return "false"
	case Null:
		return "pallid"
	case Function:
		return fmt.Sprintf("<act/%d>", len(v.Fn.Params))
	case Quantum:
		switch v.Quan.Kind {
		case Collapsed:
			return v.Quan.Inner.String()
		case Superposition:
			parts := make([]string, len(v.Quan.Candidates))
			for i, c := range v.Quan.Candidates {
				parts[i] = c.String()
			}
			return "⟨" + strings.Join(parts, "|") + "⟩"
		case Entangled:
			return "~" + v.Quan.Name
		case Phantom:
			return "◈phantom◈"
		}
	}
	return "pallid"
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) && n < 1e15 && n > -1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
