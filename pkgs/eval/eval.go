// Package eval walks the statement list pkgs/parser produces,
// threading every read and write through pkgs/state's sanity/entropy
// gauges. Dispatch is on concrete ast.Stmt/ast.Expr type inside
// execStatement/evalExpr, with *state.State threaded through every
// call the way a shared execution context would be.
package eval

import (
	"fmt"
	"strings"

	"github.com/juju/loggo"

	"github.com/carcosa-lang/yellow/pkgs/ast"
	"github.com/carcosa-lang/yellow/pkgs/lexer"
	"github.com/carcosa-lang/yellow/pkgs/parser"
	"github.com/carcosa-lang/yellow/pkgs/state"
	"github.com/carcosa-lang/yellow/pkgs/value"
)

// logger is the structured-log counterpart to the transcript buffer:
// every line written through logInfo/logWarn/logCritical is also
// emitted here, at a severity matching the banner's gravity. Echo
// output, the error lines, and the summary box go to the transcript
// only.
var logger = loggo.GetLogger("yellow.eval")

// Evaluator walks a statement list against a single *state.State. One
// Evaluator is created per interpreter and reused across every
// RunProgram call, since state accumulates across host invocations.
type Evaluator struct {
	state        *state.State
	rewriteCount int
}

// New creates an Evaluator over the given state.
func New(s *state.State) *Evaluator {
	return &Evaluator{state: s}
}

// RunProgram lexes, parses, and executes source against the
// Evaluator's state, returning this call's transcript (banners,
// distorted echoes, and the final summary box). Sanity, echoes,
// phantoms, and every other side channel persist into the next call;
// only the transcript buffer itself is reset per call.
func (e *Evaluator) RunProgram(source string) string {
	e.state.ResetTranscript()

	tokens := lexer.Tokenize(source)
	p := parser.New(tokens)
	stmts, err := p.ParseProgram()
	if err != nil {
		e.state.AppendTranscriptLine(fmt.Sprintf("⚠ %s", err.Error()))
		return e.state.Transcript()
	}

	_, _, err = e.execBlock(stmts)
	if err != nil {
		e.state.AppendTranscriptLine(fmt.Sprintf("⚠ Runtime horror: %s", err.Error()))
		e.state.AppendTranscriptLine("The code consumes itself…")
	}

	e.state.AppendTranscriptLine(fmt.Sprintf("parser sanity: %.2f", p.Sanity()))
	e.appendSummary()
	return e.state.Transcript()
}

// execBlock runs statements sequentially. A statement whose
// evaluation returns a value (only carcosa) short-circuits the rest of
// the block; any error unwinds immediately, which is how call-stack
// frames get popped on the way out.
func (e *Evaluator) execBlock(stmts []ast.Stmt) (*value.Value, bool, error) {
	for _, stmt := range stmts {
		ret, returned, err := e.execStatement(stmt)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return ret, true, nil
		}
	}
	return nil, false, nil
}

// execStatement applies the pre-statement bookkeeping (sanity decay,
// entropy increment, the six-rule sanity check, the execution-depth
// guard) and then dispatches by concrete type.
func (e *Evaluator) execStatement(stmt ast.Stmt) (ret *value.Value, returned bool, err error) {
	s := e.state
	s.Sanity -= s.Config.SanityPerStatement
	s.Entropy++

	if err := e.sanityCheck(); err != nil {
		return nil, false, err
	}

	s.ExecutionDepth++
	defer func() { s.ExecutionDepth-- }()
	if s.ExecutionDepth > s.Config.MaxRecursionDepth {
		return nil, false, e.runtimeError("recursion overflow")
	}

	switch n := stmt.(type) {
	case *ast.Mask:
		return e.execMask(n)
	case *ast.EchoStmt:
		return e.execEcho(n)
	case *ast.Scene:
		return e.execScene(n)
	case *ast.Hastur:
		return e.execHastur(n)
	case *ast.Cassilda:
		return e.execCassilda(n)
	case *ast.Carcosa:
		return e.execCarcosa(n)
	case *ast.Act:
		return e.execAct(n)
	case *ast.RewriteStmt:
		return e.execRewriteStmt(n)
	case *ast.Remember:
		return e.execRemember(n)
	case *ast.Forget:
		return e.execForget(n)
	case *ast.Infect:
		return e.execInfect(n)
	case *ast.WhisperStmt:
		return nil, false, e.execWhisper(n)
	case *ast.Anchor:
		return e.execAnchor(n)
	case *ast.ExprStmt:
		_, err := e.evalExpr(n.Value)
		return nil, false, err
	default:
		return nil, false, e.runtimeError("unrecognised statement")
	}
}

// --- logging helpers ---
//
// Every banner fires both a structured loggo record (for developer
// observability) and a transcript line (the host-facing surface).
// logInfo covers routine flavour text; logWarn and logCritical exist
// for the sanity-check warning and the Yellow Sign banner.

func (e *Evaluator) logInfo(msg string) {
	logger.Infof("%s", msg)
	e.state.AppendTranscriptLine(msg)
}

func (e *Evaluator) logWarn(msg string) {
	logger.Warningf("%s", msg)
	e.state.AppendTranscriptLine(msg)
}

func (e *Evaluator) logCritical(msg string) {
	logger.Criticalf("%s", msg)
	e.state.AppendTranscriptLine(msg)
}

func (e *Evaluator) appendSummary() {
	s := e.state
	lines := []string{
		fmt.Sprintf("sanity:     %.2f", s.GetSanity()),
		fmt.Sprintf("infections: %d", len(s.Infections)),
		fmt.Sprintf("echoes:     %d", len(s.Echoes)),
		fmt.Sprintf("fragments:  %d", countFragments(s.MemoryFragments)),
		fmt.Sprintf("phantoms:   %d", len(s.Phantoms)),
		fmt.Sprintf("generated:  %d", len(s.GeneratedCode)),
	}
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}
	border := "+" + strings.Repeat("-", width+2) + "+"
	s.AppendTranscriptLine(border)
	for _, l := range lines {
		s.AppendTranscriptLine(fmt.Sprintf("| %-*s |", width, l))
	}
	s.AppendTranscriptLine(border)
	if s.GetSanity() < s.Config.CriticalSanityThreshold {
		s.AppendTranscriptLine("⚠ critical sanity")
	}
}

func countFragments(fragments map[string][]*value.Value) int {
	n := 0
	for _, q := range fragments {
		n += len(q)
	}
	return n
}
