package parser

import (
	"testing"

	"slc/src/ast"
	"slc/src/util"
)

func mustParse(t *testing.T, src string) *ast.Root {
	t.Helper()
	diags := util.NewEngine()
	root := Parse(src, diags)
	if diags.HadErrors() {
		t.Fatalf("unexpected diagnostics for %q: %v", src, diags.Diagnostics())
	}
	return root
}

func TestParseMinimalFunction(t *testing.T) {
	root := mustParse(t, `fun main() -> Int { return 0; }`)
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top-level decl, got %d", len(root.Children))
	}
	fn, ok := root.Children[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("expected *ast.FunDecl, got %T", root.Children[0])
	}
	if fn.Name != "main" {
		t.Errorf("expected name main, got %s", fn.Name)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", fn.Body.Stmts[0])
	}
	lit, ok := ret.Value.(*ast.IntLit)
	if !ok || lit.Value != 0 {
		t.Errorf("expected return 0, got %#v", ret.Value)
	}
}

func TestParseVarDeclAndArithmetic(t *testing.T) {
	root := mustParse(t, `
		fun f(x: Int) -> Int {
			var y: Int = x + 1 * 2;
			return y;
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	vd, ok := fn.Body.Stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", fn.Body.Stmts[0])
	}
	add, ok := vd.Init.(*ast.BinOp)
	if !ok {
		t.Fatalf("expected *ast.BinOp at top, got %T", vd.Init)
	}
	// Precedence: "x + 1 * 2" parses as x + (1 * 2).
	if _, ok := add.Right.(*ast.BinOp); !ok {
		t.Errorf("expected multiplicative subexpression on the right of +, got %#v", add.Right)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	root := mustParse(t, `fun f() -> Int { return 2 ^ 3 ^ 2; }`)
	fn := root.Children[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.Return)
	top, ok := ret.Value.(*ast.BinOp)
	if !ok {
		t.Fatalf("expected *ast.BinOp, got %T", ret.Value)
	}
	if _, ok := top.Left.(*ast.IntLit); !ok {
		t.Errorf("expected left operand to be the literal 2, got %#v", top.Left)
	}
	if _, ok := top.Right.(*ast.BinOp); !ok {
		t.Errorf("expected right operand to be the nested power expression, got %#v", top.Right)
	}
}

func TestParseIfElseStatement(t *testing.T) {
	root := mustParse(t, `
		fun f(x: Int) -> Int {
			if x > 0 {
				return 1;
			} else {
				return 0;
			}
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	ifs, ok := fn.Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body.Stmts[0])
	}
	if ifs.Else == nil {
		t.Fatal("expected an else branch")
	}
}

func TestParseElseIfChain(t *testing.T) {
	root := mustParse(t, `
		fun f(x: Int) -> Int {
			if x > 0 {
				return 1;
			} else if x < 0 {
				return -1;
			} else {
				return 0;
			}
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	ifs := fn.Body.Stmts[0].(*ast.If)
	if len(ifs.Else.Stmts) != 1 {
		t.Fatalf("expected the else branch to wrap exactly one nested if, got %d stmts", len(ifs.Else.Stmts))
	}
	if _, ok := ifs.Else.Stmts[0].(*ast.If); !ok {
		t.Errorf("expected nested *ast.If, got %T", ifs.Else.Stmts[0])
	}
}

func TestParseWhileLoop(t *testing.T) {
	root := mustParse(t, `
		fun f(n: Int) -> Int {
			var i: Int = 0;
			while i < n {
				i = i + 1;
			}
			return i;
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	wh, ok := fn.Body.Stmts[1].(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While, got %T", fn.Body.Stmts[1])
	}
	if len(wh.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in while body, got %d", len(wh.Body.Stmts))
	}
	if _, ok := wh.Body.Stmts[0].(*ast.Assign); !ok {
		t.Errorf("expected *ast.Assign in while body, got %T", wh.Body.Stmts[0])
	}
}

func TestParseCallWithNamedAndPositionalArgs(t *testing.T) {
	root := mustParse(t, `
		fun f() -> Int {
			return g(1, y = 2);
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.Return)
	call, ok := ret.Value.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call, got %T", ret.Value)
	}
	if call.Callee != "g" || len(call.Args) != 2 {
		t.Fatalf("unexpected call shape: %#v", call)
	}
	if call.Args[0].Name != "" {
		t.Errorf("expected first arg positional, got name %q", call.Args[0].Name)
	}
	if call.Args[1].Name != "y" {
		t.Errorf("expected second arg named y, got %q", call.Args[1].Name)
	}
}

func TestParseStructLiteral(t *testing.T) {
	root := mustParse(t, `
		record Point { x: Int, y: Int }
		fun f() -> Point {
			return Point { x: 1, y: 2 };
		}`)
	fn := root.Children[1].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.Return)
	lit, ok := ret.Value.(*ast.StructLit)
	if !ok {
		t.Fatalf("expected *ast.StructLit, got %T", ret.Value)
	}
	if lit.TypeName != "Point" || len(lit.Fields) != 2 {
		t.Fatalf("unexpected struct literal shape: %#v", lit)
	}
}

func TestParseEnumTagRef(t *testing.T) {
	root := mustParse(t, `
		enum Color { Red, Green, Blue }
		fun f() -> Int {
			return Color::Green;
		}`)
	fn := root.Children[1].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.Return)
	ref, ok := ret.Value.(*ast.EnumTagRef)
	if !ok {
		t.Fatalf("expected *ast.EnumTagRef, got %T", ret.Value)
	}
	if ref.EnumName != "Color" || ref.Tag != "Green" {
		t.Errorf("unexpected enum tag ref: %#v", ref)
	}
}

func TestParseTrailingBlockResult(t *testing.T) {
	root := mustParse(t, `
		fun f(x: Int) -> Int {
			x + 1
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	if len(fn.Body.Stmts) != 0 {
		t.Fatalf("expected 0 statements, got %d", len(fn.Body.Stmts))
	}
	if fn.Body.Result == nil {
		t.Fatal("expected a trailing result expression")
	}
}

func TestParseExternDecl(t *testing.T) {
	root := mustParse(t, `extern fun puts(s: *Int) -> Int;`)
	fn, ok := root.Children[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("expected *ast.FunDecl, got %T", root.Children[0])
	}
	if fn.Modifiers&ast.ModExtern == 0 {
		t.Error("expected ModExtern set")
	}
	if fn.Body != nil {
		t.Error("expected a nil body for an extern declaration")
	}
}

// TestParseWhileWithBareIdentifierCondition guards against treating the
// block-opening '{' as a struct literal body when the condition is a bare
// identifier, e.g. "while n { ... }".
func TestParseWhileWithBareIdentifierCondition(t *testing.T) {
	root := mustParse(t, `
		fun f(n: Bool) -> Int {
			while n {
				return 1;
			}
			return 0;
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	wh, ok := fn.Body.Stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While, got %T", fn.Body.Stmts[0])
	}
	if _, ok := wh.Cond.(*ast.IdRef); !ok {
		t.Errorf("expected condition to be a bare *ast.IdRef, got %T", wh.Cond)
	}
	if len(wh.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in while body, got %d", len(wh.Body.Stmts))
	}
}

// TestParseIfWithBareIdentifierCondition is the same guard for "if".
func TestParseIfWithBareIdentifierCondition(t *testing.T) {
	root := mustParse(t, `
		fun f(ok: Bool) -> Int {
			if ok {
				return 1;
			}
			return 0;
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	ifs, ok := fn.Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body.Stmts[0])
	}
	if _, ok := ifs.Cond.(*ast.IdRef); !ok {
		t.Errorf("expected condition to be a bare *ast.IdRef, got %T", ifs.Cond)
	}
}

// TestParseStructLiteralStillWorksInsideCallArgInCondition confirms the
// struct-literal suppression in condition position does not leak into
// unambiguous nested contexts like call arguments.
func TestParseStructLiteralStillWorksInsideCallArgInCondition(t *testing.T) {
	root := mustParse(t, `
		fun f(p: Point) -> Int {
			if equals(p, Point{x: 1, y: 2}) {
				return 1;
			}
			return 0;
		}`)
	fn := root.Children[0].(*ast.FunDecl)
	ifs, ok := fn.Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body.Stmts[0])
	}
	call, ok := ifs.Cond.(*ast.Call)
	if !ok {
		t.Fatalf("expected *ast.Call condition, got %T", ifs.Cond)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 call args, got %d", len(call.Args))
	}
	if _, ok := call.Args[1].Value.(*ast.StructLit); !ok {
		t.Errorf("expected second argument to still parse as *ast.StructLit, got %T", call.Args[1].Value)
	}
}

func TestParseErrorRecoveryContinuesToNextDecl(t *testing.T) {
	diags := util.NewEngine()
	root := Parse(`
		fun broken( -> Int { return 0; }
		fun ok() -> Int { return 1; }
	`, diags)
	if !diags.HadErrors() {
		t.Fatal("expected at least one diagnostic from the malformed parameter list")
	}
	var names []string
	for _, c := range root.Children {
		if fn, ok := c.(*ast.FunDecl); ok {
			names = append(names, fn.Name)
		}
	}
	found := false
	for _, n := range names {
		if n == "ok" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected parser to recover and still see function 'ok', got %v", names)
	}
}
