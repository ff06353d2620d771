// Tests the lexer by verifying that a small sample program is tokenized
// into the expected sequence of (kind, lexeme) pairs, the same way the
// teacher's TestLexer checks a sample VSL program against a hand-captured
// tuple slice.

package token

import (
	"testing"

	"slc/src/util"
)

func TestLexerBasic(t *testing.T) {
	src := `fun f(x: Int) -> Int {
  var y: Int = x + 1;
  return y * 2;
}`
	diags := util.NewEngine()
	toks := Lex(src, diags)

	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diagnostics())
	}

	exp := []struct {
		kind   Kind
		lexeme string
	}{
		{FUN, "fun"}, {ID, "f"}, {LPAREN, "("}, {ID, "x"}, {COLON, ":"}, {ID, "Int"}, {RPAREN, ")"},
		{ARROW, "->"}, {ID, "Int"}, {LBRACE, "{"},
		{VAR, "var"}, {ID, "y"}, {COLON, ":"}, {ID, "Int"}, {ASSIGN, "="}, {ID, "x"}, {PLUS, "+"}, {INTEGER, "1"}, {SEMI, ";"},
		{RETURN, "return"}, {ID, "y"}, {STAR, "*"}, {INTEGER, "2"}, {SEMI, ";"},
		{RBRACE, "}"},
		{EOF, ""},
	}

	if len(toks) != len(exp) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(exp), toks)
	}
	for i1, e1 := range exp {
		if toks[i1].Kind != e1.kind || toks[i1].Lexeme != e1.lexeme {
			t.Errorf("token %d: got {%s %q}, want {%s %q}", i1, toks[i1].Kind, toks[i1].Lexeme, e1.kind, e1.lexeme)
		}
	}
}

func TestLexerOperators(t *testing.T) {
	src := `== != <= >= -> && || :: ... . .. ! -5`
	diags := util.NewEngine()
	toks := Lex(src, diags)
	exp := []Kind{EQ, NEQ, LE, GE, ARROW, AND, OR, DCOLON, ELLIPSIS, DOT, DOT, DOT, NOT, MINUS, INTEGER, EOF}
	if len(toks) != len(exp) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(exp), toks)
	}
	for i1, k := range exp {
		if toks[i1].Kind != k {
			t.Errorf("token %d: got %s, want %s", i1, toks[i1].Kind, k)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	src := `"a\nb\tc\\d\"e\0f\wg"`
	diags := util.NewEngine()
	toks := Lex(src, diags)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Diagnostics())
	}
	if len(toks) != 2 || toks[0].Kind != STRING {
		t.Fatalf("got %v", toks)
	}
	want := "a\nb\tc\\d\"e\x00f g"
	if toks[0].Lexeme != want {
		t.Errorf("got lexeme %q, want %q", toks[0].Lexeme, want)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	src := `"abc`
	diags := util.NewEngine()
	toks := Lex(src, diags)
	if diags.Len() != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d: %v", diags.Len(), diags.Diagnostics())
	}
	if diags.Diagnostics()[0].Kind != util.LexError {
		t.Fatalf("expected LexError, got %s", diags.Diagnostics()[0].Kind)
	}
	if len(toks) != 2 || toks[len(toks)-1].Kind != EOF {
		t.Fatalf("expected lexer to continue to EOF after error, got %v", toks)
	}
}

func TestLexerUnknownCharacter(t *testing.T) {
	src := `var x = 1 @ 2;`
	diags := util.NewEngine()
	toks := Lex(src, diags)
	if diags.Len() != 1 || diags.Diagnostics()[0].Kind != util.LexError {
		t.Fatalf("expected 1 LexError, got %v", diags.Diagnostics())
	}
	// Scanning must continue past the bad character.
	if toks[len(toks)-1].Kind != EOF {
		t.Fatalf("expected scanning to reach EOF, got %v", toks)
	}
}

func TestLexerSpanCoverage(t *testing.T) {
	src := "fun f() -> Int { return 1; }"
	diags := util.NewEngine()
	toks := Lex(src, diags)
	for _, tk := range toks {
		if !tk.Span.Covers(len(src)) {
			t.Errorf("token %v span out of bounds for source of length %d", tk, len(src))
		}
	}
}
