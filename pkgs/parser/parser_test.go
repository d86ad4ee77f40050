package parser

import (
	"testing"

	"github.com/carcosa-lang/yellow/pkgs/ast"
	"github.com/carcosa-lang/yellow/pkgs/lexer"
	"github.com/carcosa-lang/yellow/pkgs/token"
)

func parseSource(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	stmts, err := Parse(lexer.Tokenize(src))
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return stmts
}

func TestParseMask(t *testing.T) {
	stmts := parseSource(t, `mask x -> 3;`)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	m, ok := stmts[0].(*ast.Mask)
	if !ok {
		t.Fatalf("expected *ast.Mask, got %T", stmts[0])
	}
	if m.Name != "x" {
		t.Errorf("expected name x, got %s", m.Name)
	}
}

func TestParseMaskAcceptsBareEquals(t *testing.T) {
	stmts := parseSource(t, `mask x = 3;`)
	if _, ok := stmts[0].(*ast.Mask); !ok {
		t.Fatalf("expected *ast.Mask, got %T", stmts[0])
	}
}

func TestParseEcho(t *testing.T) {
	stmts := parseSource(t, `echo(1);`)
	if _, ok := stmts[0].(*ast.EchoStmt); !ok {
		t.Fatalf("expected *ast.EchoStmt, got %T", stmts[0])
	}
}

func TestParseScene(t *testing.T) {
	stmts := parseSource(t, `scene { mask x -> 1; }`)
	sc, ok := stmts[0].(*ast.Scene)
	if !ok {
		t.Fatalf("expected *ast.Scene, got %T", stmts[0])
	}
	if len(sc.Body) != 1 {
		t.Errorf("expected one statement in scene body, got %d", len(sc.Body))
	}
}

func TestParseHasturLoop(t *testing.T) {
	stmts := parseSource(t, `Hastur(yellow) { echo(1); }`)
	h, ok := stmts[0].(*ast.Hastur)
	if !ok {
		t.Fatalf("expected *ast.Hastur, got %T", stmts[0])
	}
	if h.IsRift {
		t.Error("a Hastur-headed loop must not be marked IsRift")
	}
}

func TestParseRiftAsLoopHeader(t *testing.T) {
	stmts := parseSource(t, `rift(yellow) { echo(1); }`)
	h, ok := stmts[0].(*ast.Hastur)
	if !ok {
		t.Fatalf("expected rift(...) { } to parse as *ast.Hastur, got %T", stmts[0])
	}
	if !h.IsRift {
		t.Error("expected IsRift=true")
	}
}

func TestParseRiftAsBareExpressionStatement(t *testing.T) {
	stmts := parseSource(t, `rift(1);`)
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected rift(...); to parse as *ast.ExprStmt, got %T", stmts[0])
	}
	if _, ok := es.Value.(*ast.Rift); !ok {
		t.Fatalf("expected an *ast.Rift expression inside, got %T", es.Value)
	}
}

func TestParseCassildaNeverParsesElse(t *testing.T) {
	stmts := parseSource(t, `Cassilda(yellow) { echo(1); }`)
	c, ok := stmts[0].(*ast.Cassilda)
	if !ok {
		t.Fatalf("expected *ast.Cassilda, got %T", stmts[0])
	}
	if len(c.Then) != 1 {
		t.Errorf("expected one statement in then-branch, got %d", len(c.Then))
	}
	if _, err := Parse(lexer.Tokenize(`Cassilda(yellow) { } else { echo(1); }`)); err == nil {
		t.Error("expected a trailing else branch to be a parse error")
	}
}

func TestParseCarcosaBareReturn(t *testing.T) {
	stmts := parseSource(t, `Carcosa;`)
	c, ok := stmts[0].(*ast.Carcosa)
	if !ok {
		t.Fatalf("expected *ast.Carcosa, got %T", stmts[0])
	}
	if c.Value != nil {
		t.Error("expected nil Value for a bare Carcosa;")
	}
}

func TestParseCarcosaWithValue(t *testing.T) {
	stmts := parseSource(t, `Carcosa 5;`)
	c := stmts[0].(*ast.Carcosa)
	if c.Value == nil {
		t.Fatal("expected a Value expression")
	}
}

func TestParseAct(t *testing.T) {
	stmts := parseSource(t, `act add(a, b) { Carcosa a + b; }`)
	a, ok := stmts[0].(*ast.Act)
	if !ok {
		t.Fatalf("expected *ast.Act, got %T", stmts[0])
	}
	if a.Name != "add" || len(a.Params) != 2 {
		t.Errorf("got %+v", a)
	}
}

func TestParseActNoParams(t *testing.T) {
	stmts := parseSource(t, `act noop() { Carcosa; }`)
	a := stmts[0].(*ast.Act)
	if len(a.Params) != 0 {
		t.Errorf("expected zero params, got %d", len(a.Params))
	}
}

func TestParseRewriteStatement(t *testing.T) {
	stmts := parseSource(t, `rewrite x;`)
	r, ok := stmts[0].(*ast.RewriteStmt)
	if !ok {
		t.Fatalf("expected *ast.RewriteStmt, got %T", stmts[0])
	}
	if r.Name != "x" {
		t.Errorf("got name %s", r.Name)
	}
}

func TestParseRememberForgetInfect(t *testing.T) {
	stmts := parseSource(t, `remember x; forget x; infect x;`)
	if _, ok := stmts[0].(*ast.Remember); !ok {
		t.Errorf("expected *ast.Remember, got %T", stmts[0])
	}
	if _, ok := stmts[1].(*ast.Forget); !ok {
		t.Errorf("expected *ast.Forget, got %T", stmts[1])
	}
	if _, ok := stmts[2].(*ast.Infect); !ok {
		t.Errorf("expected *ast.Infect, got %T", stmts[2])
	}
}

func TestParseWhisper(t *testing.T) {
	stmts := parseSource(t, `whisper "echo(1);";`)
	w, ok := stmts[0].(*ast.WhisperStmt)
	if !ok {
		t.Fatalf("expected *ast.WhisperStmt, got %T", stmts[0])
	}
	if w.Source != "echo(1);" {
		t.Errorf("got source %q", w.Source)
	}
}

func TestParseAnchor(t *testing.T) {
	stmts := parseSource(t, `anchor;`)
	if _, ok := stmts[0].(*ast.Anchor); !ok {
		t.Fatalf("expected *ast.Anchor, got %T", stmts[0])
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3): the outer node is MERGED.
	stmts := parseSource(t, `echo(1 + 2 * 3);`)
	echo := stmts[0].(*ast.EchoStmt)
	bin, ok := echo.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary, got %T", echo.Value)
	}
	if bin.Op != token.MERGED {
		t.Fatalf("expected outermost op MERGED, got %v", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != token.REFLECTED {
		t.Fatalf("expected right-hand side to be a REFLECTED binary, got %+v", bin.Right)
	}
}

func TestParseExpressionLeftAssociative(t *testing.T) {
	// 1 - 2 - 3 must parse as (1 - 2) - 3.
	stmts := parseSource(t, `echo(1 - 2 - 3);`)
	echo := stmts[0].(*ast.EchoStmt)
	bin := echo.Value.(*ast.Binary)
	if bin.Op != token.TORN {
		t.Fatalf("expected outer op TORN, got %v", bin.Op)
	}
	if _, ok := bin.Left.(*ast.Binary); !ok {
		t.Fatalf("expected left-associative nesting on the left, got %T", bin.Left)
	}
	if _, ok := bin.Right.(*ast.NumberLit); !ok {
		t.Fatalf("expected a plain literal on the right, got %T", bin.Right)
	}
}

func TestParseCallArgsTrailingCommaOptional(t *testing.T) {
	stmts := parseSource(t, `echo(superpose(1, 2, 3,));`)
	echo := stmts[0].(*ast.EchoStmt)
	sp, ok := echo.Value.(*ast.Superpose)
	if !ok {
		t.Fatalf("expected *ast.Superpose, got %T", echo.Value)
	}
	if len(sp.Args) != 3 {
		t.Fatalf("expected 3 args despite trailing comma, got %d", len(sp.Args))
	}
}

func TestParseCallNoArgs(t *testing.T) {
	stmts := parseSource(t, `foo();`)
	es := stmts[0].(*ast.ExprStmt)
	call, ok := es.Value.(*ast.Call)
	if !ok || len(call.Args) != 0 {
		t.Fatalf("expected a zero-arg call, got %+v", es.Value)
	}
}

func TestParseRewriteExpressionNoParensRequired(t *testing.T) {
	stmts := parseSource(t, `mask y -> rewrite x;`)
	m := stmts[0].(*ast.Mask)
	rw, ok := m.Value.(*ast.Rewrite)
	if !ok {
		t.Fatalf("expected *ast.Rewrite, got %T", m.Value)
	}
	if _, ok := rw.Target.(*ast.Identifier); !ok {
		t.Fatalf("expected a bare identifier target, got %T", rw.Target)
	}
}

func TestParseRewriteExpressionParenthesisedStillWorks(t *testing.T) {
	stmts := parseSource(t, `mask y -> rewrite(x);`)
	m := stmts[0].(*ast.Mask)
	if _, ok := m.Value.(*ast.Rewrite); !ok {
		t.Fatalf("expected *ast.Rewrite, got %T", m.Value)
	}
}

func TestParseQuantumPrimaries(t *testing.T) {
	stmts := parseSource(t, `
		mask q -> superpose(1, 2);
		mask c -> collapse(q);
		mask m -> manifest(x);
		mask e -> entangle(a, b);
	`)
	if _, ok := stmts[0].(*ast.Mask).Value.(*ast.Superpose); !ok {
		t.Error("expected Superpose")
	}
	if _, ok := stmts[1].(*ast.Mask).Value.(*ast.Collapse); !ok {
		t.Error("expected Collapse")
	}
	if _, ok := stmts[2].(*ast.Mask).Value.(*ast.Manifest); !ok {
		t.Error("expected Manifest")
	}
	if _, ok := stmts[3].(*ast.Mask).Value.(*ast.Entangle); !ok {
		t.Error("expected Entangle")
	}
}

func TestParsePallidIsNotAParseableExpression(t *testing.T) {
	_, err := Parse(lexer.Tokenize(`mask x -> pallid;`))
	if err == nil {
		t.Fatal("expected a parse error for 'pallid' in expression position")
	}
}

func TestParseUnexpectedTokenProducesOpaqueError(t *testing.T) {
	_, err := Parse(lexer.Tokenize(`mask x -> ;`))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestParseUnterminatedBlockErrors(t *testing.T) {
	_, err := Parse(lexer.Tokenize(`scene { mask x -> 1;`))
	if err == nil {
		t.Fatal("expected an error for an unterminated block")
	}
}

func TestBandedMessageThresholds(t *testing.T) {
	cases := []struct {
		sanity float64
		want   string
	}{
		{100, "malformed script"},
		{50, "syntax error"},
		{10, "the grammar itself rebels"},
	}
	for _, c := range cases {
		if got := bandedMessage(c.sanity); got != c.want {
			t.Errorf("bandedMessage(%v) = %q, want %q", c.sanity, got, c.want)
		}
	}
}
