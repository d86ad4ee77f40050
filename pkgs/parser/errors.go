package parser

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/carcosa-lang/yellow/pkgs/token"
)

// ParseError is the single opaque error a parser may surface. Its
// Error() text differs by the parser's sanity band (see
// bandedMessage) but is otherwise unstructured - callers must not
// pattern-match on its wording, only on its presence.
type ParseError struct {
	cause error
	tok   token.Token
	band  string
}

func (e *ParseError) Error() string {
	if e.tok.Type == token.EOF && e.tok.Value == "" {
		return fmt.Sprintf("%s: %s", e.band, e.cause.Error())
	}
	return fmt.Sprintf("%s at %s near %s: %s", e.band, e.tok.Position(), e.tok, e.cause.Error())
}

// newParseError wraps msg with github.com/juju/errors so the
// underlying cause is still inspectable via errors.Cause during
// development, while the string returned to the host stays a single
// opaque line.
func newParseError(tok token.Token, band string, format string, args ...interface{}) error {
	return &ParseError{
		cause: errors.Annotatef(errors.New(fmt.Sprintf(format, args...)), "parse"),
		tok:   tok,
		band:  band,
	}
}

// bandedMessage names the sanity band a parser error fires in, purely
// for flavour: the message text differs by parser sanity band but is
// not otherwise structured.
func bandedMessage(sanity float64) string {
	switch {
	case sanity < 20:
		return "the grammar itself rebels"
	case sanity < 60:
		return "syntax error"
	default:
		return "malformed script"
	}
}
