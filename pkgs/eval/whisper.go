package eval

import (
	"fmt"
	"strings"

	"github.com/carcosa-lang/yellow/pkgs/ast"
	"github.com/carcosa-lang/yellow/pkgs/lexer"
	"github.com/carcosa-lang/yellow/pkgs/parser"
)

// execWhisper validates, lexes, parses, and executes a nested source
// string in the current environment. Rejections are non-fatal
// degradations: they roll whisper_count back and log the rule that
// fired, never aborting the enclosing program. Only an error raised
// by the nested program's own execution propagates like any other
// runtime error, since the nested statements run in the same
// environment as ordinary ones.
func (e *Evaluator) execWhisper(n *ast.WhisperStmt) error {
	s := e.state
	s.WhisperCount++

	reject := func(reason string) error {
		s.WhisperCount--
		e.logWarn(fmt.Sprintf("whisper rejected: %s", reason))
		return nil
	}

	if s.WhisperCount > s.Config.MaxWhispers {
		return reject("whisper budget exhausted")
	}
	if len(n.Source) > s.Config.MaxWhisperChars {
		return reject("source too long")
	}

	lower := strings.ToLower(n.Source)
	for _, bad := range s.Config.ForbiddenWhisperSubstrings {
		if strings.Contains(lower, strings.ToLower(bad)) {
			return reject("forbidden substring")
		}
	}

	tokens := lexer.Tokenize(n.Source)
	stmts, err := parser.Parse(tokens)
	if err != nil {
		return reject("malformed nested source")
	}
	if len(stmts) > s.Config.MaxWhisperStatements {
		return reject("too many nested statements")
	}

	s.GeneratedCode = append(s.GeneratedCode, n.Source)
	if _, _, err := e.execBlock(stmts); err != nil {
		return err
	}
	s.Sanity -= 5
	return nil
}
