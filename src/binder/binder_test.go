package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/src/bound"
	"slc/src/parser"
	"slc/src/types"
	"slc/src/util"
)

func bindSource(t *testing.T, src string) (*bound.Program, *util.Engine) {
	t.Helper()
	diags := util.NewEngine()
	root := parser.Parse(src, diags)
	require.False(t, diags.HadErrors(), "unexpected parse diagnostics: %v", diags.Diagnostics())
	prog := Bind(root, diags)
	return prog, diags
}

func TestBindMinimalFunctionNoErrors(t *testing.T) {
	prog, diags := bindSource(t, `fun main() -> Int { return 0; }`)
	assert.False(t, diags.HadErrors())
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, "main", prog.Functions[0].Sym.Name)
}

func TestBindNumericPromotionInsertsConvert(t *testing.T) {
	prog, diags := bindSource(t, `
		fun f(x: Int, y: Float) -> Float {
			return x + y;
		}`)
	assert.False(t, diags.HadErrors())
	fn := prog.Functions[0]
	ret := fn.Body.Stmts[0].(*bound.Return)
	bin := ret.Value.(*bound.BinOp)
	assert.Equal(t, types.Float, bin.Typ)
	if _, ok := bin.Left.(*bound.Convert); !ok {
		t.Errorf("expected the Int operand to be wrapped in a Convert node, got %T", bin.Left)
	}
	if _, ok := bin.Right.(*bound.Convert); ok {
		t.Errorf("did not expect the Float operand to be wrapped, got %T", bin.Right)
	}
}

func TestBindTypeMismatchReportsError(t *testing.T) {
	_, diags := bindSource(t, `
		fun f() -> Int {
			return true;
		}`)
	assert.True(t, diags.HadErrors())
	found := false
	for _, d := range diags.Diagnostics() {
		if d.Kind == util.TypeError {
			found = true
		}
	}
	assert.True(t, found, "expected a TypeError diagnostic")
}

func TestBindUndefinedNameReportsError(t *testing.T) {
	_, diags := bindSource(t, `
		fun f() -> Int {
			return undefinedVar;
		}`)
	assert.True(t, diags.HadErrors())
	assert.Equal(t, util.NameError, diags.Diagnostics()[0].Kind)
}

func TestBindBreakOutsideLoopReportsFlowError(t *testing.T) {
	_, diags := bindSource(t, `
		fun f() -> Int {
			break;
			return 0;
		}`)
	assert.True(t, diags.HadErrors())
	assert.Equal(t, util.FlowError, diags.Diagnostics()[0].Kind)
}

func TestBindNamedArgumentsReorderToPositional(t *testing.T) {
	prog, diags := bindSource(t, `
		fun g(x: Int, y: Int) -> Int { return x - y; }
		fun f() -> Int { return g(y = 1, x = 2); }
	`)
	assert.False(t, diags.HadErrors())
	var caller *bound.Function
	for _, fn := range prog.Functions {
		if fn.Sym.Name == "f" {
			caller = fn
		}
	}
	require.NotNil(t, caller)
	ret := caller.Body.Stmts[0].(*bound.Return)
	call := ret.Value.(*bound.Call)
	require.Len(t, call.Args, 2)
	assert.Equal(t, int64(2), call.Args[0].Value.(*bound.IntLit).Value)
	assert.Equal(t, int64(1), call.Args[1].Value.(*bound.IntLit).Value)
}

func TestBindStructLiteralRequiresEveryField(t *testing.T) {
	_, diags := bindSource(t, `
		record Point { x: Int, y: Int }
		fun f() -> Point {
			return Point { x: 1 };
		}
	`)
	assert.True(t, diags.HadErrors())
	found := false
	for _, d := range diags.Diagnostics() {
		if d.Kind == util.TypeError {
			found = true
		}
	}
	assert.True(t, found, "expected a TypeError for the missing field y")
}

func TestBindEnumTagResolvesToIntOrdinal(t *testing.T) {
	prog, diags := bindSource(t, `
		enum Color { Red, Green, Blue }
		fun f() -> Int {
			return Color::Blue;
		}
	`)
	assert.False(t, diags.HadErrors())
	fn := prog.Functions[0]
	ret := fn.Body.Stmts[0].(*bound.Return)
	tag := ret.Value.(*bound.EnumTag)
	assert.Equal(t, 2, tag.Index)
	assert.Equal(t, types.Int, tag.Type())
}

func TestBindMutualRecursionResolves(t *testing.T) {
	_, diags := bindSource(t, `
		fun isEven(n: Int) -> Bool { if n == 0 { return true; } return isOdd(n - 1); }
		fun isOdd(n: Int) -> Bool { if n == 0 { return false; } return isEven(n - 1); }
	`)
	assert.False(t, diags.HadErrors())
}

func TestBindRedeclarationInSameScopeReportsError(t *testing.T) {
	_, diags := bindSource(t, `
		fun f() -> Int {
			var x: Int = 1;
			var x: Int = 2;
			return x;
		}
	`)
	assert.True(t, diags.HadErrors())
}

func TestBindShadowingAcrossScopesIsAllowed(t *testing.T) {
	_, diags := bindSource(t, `
		fun f(x: Int) -> Int {
			if x > 0 {
				var x: Int = 99;
				return x;
			}
			return x;
		}
	`)
	assert.False(t, diags.HadErrors())
}

func TestBindAddressOfVariableIsAllowed(t *testing.T) {
	_, diags := bindSource(t, `
		fun f() -> Int {
			var x: Int = 1;
			var p: *Int = &x;
			return *p;
		}
	`)
	assert.False(t, diags.HadErrors())
}

func TestBindAddressOfNonAddressableExpressionReportsError(t *testing.T) {
	_, diags := bindSource(t, `
		fun f(a: Int, b: Int) -> Int {
			var p: *Int = &(a + b);
			return *p;
		}
	`)
	assert.True(t, diags.HadErrors())
}
