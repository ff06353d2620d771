package irgen

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"slc/src/binder"
	"slc/src/ir"
	"slc/src/parser"
	"slc/src/util"
)

func generateSource(t *testing.T, src string) *ir.Module {
	t.Helper()
	diags := util.NewEngine()
	root := parser.Parse(src, diags)
	require.False(t, diags.HadErrors(), "unexpected parse diagnostics: %v", diags.Diagnostics())
	prog := binder.Bind(root, diags)
	require.False(t, diags.HadErrors(), "unexpected bind diagnostics: %v", diags.Diagnostics())
	return Generate(prog)
}

// diffText produces a unified diff between want and got, used to give a
// readable failure message when a golden comparison fails.
func diffText(t *testing.T, want, got string) string {
	t.Helper()
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	require.NoError(t, err)
	return diff
}

func TestGenerateMinimalReturnHasSingleTerminatedBlock(t *testing.T) {
	m := generateSource(t, `fun main() -> Int { return 0; }`)
	require.Len(t, m.Functions, 1)
	fn := m.Functions[0]
	require.Len(t, fn.Blocks, 1)
	entry := fn.Blocks[0]
	if !entry.Terminated() {
		t.Fatal("entry block must end in a terminator")
	}
	last := entry.Instr[len(entry.Instr)-1]
	if last.Op != ir.OpRet {
		t.Errorf("expected the entry block to end in Ret, got %s", last.Op)
	}
}

func TestGenerateEveryBlockIsTerminated(t *testing.T) {
	m := generateSource(t, `
		fun f(n: Int) -> Int {
			var acc: Int = 0;
			var i: Int = 0;
			while i < n {
				acc = acc + i;
				i = i + 1;
			}
			return acc;
		}`)
	fn := m.Functions[0]
	for _, blk := range fn.Blocks {
		if !blk.Terminated() {
			t.Errorf("block %s is not terminated", blk.Name)
		}
	}
}

func TestGenerateIfStatementProducesCondBr(t *testing.T) {
	m := generateSource(t, `
		fun f(x: Int) -> Int {
			if x > 0 {
				return 1;
			}
			return 0;
		}`)
	fn := m.Functions[0]
	var sawCondBr bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instr {
			if instr.Op == ir.OpCondBr {
				sawCondBr = true
			}
		}
	}
	if !sawCondBr {
		t.Error("expected a CondBr instruction lowering the if statement")
	}
}

func TestGenerateIntFloatPromotionEmitsSIToFP(t *testing.T) {
	m := generateSource(t, `
		fun f(x: Int, y: Float) -> Float {
			return x + y;
		}`)
	fn := m.Functions[0]
	var sawConvert, sawFAdd bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instr {
			switch instr.Op {
			case ir.OpSIToFP:
				sawConvert = true
			case ir.OpFAdd:
				sawFAdd = true
			}
		}
	}
	if !sawConvert {
		t.Error("expected an explicit sitofp conversion for the Int operand")
	}
	if !sawFAdd {
		t.Error("expected the promoted addition to lower to fadd, not iadd")
	}
}

func TestGenerateTrailingResultFunctionIsTerminated(t *testing.T) {
	m := generateSource(t, `
		fun f(x: Int) -> Int {
			x + 1
		}`)
	fn := m.Functions[0]
	last := fn.Blocks[len(fn.Blocks)-1]
	if !last.Terminated() {
		t.Fatal("expected the trailing-result function to still terminate with a Ret")
	}
}

func TestGenerateExternFunctionHasNoBlocks(t *testing.T) {
	m := generateSource(t, `extern fun puts(s: *Int) -> Int;`)
	fn := m.Functions[0]
	if !fn.Extern {
		t.Fatal("expected Extern to be set")
	}
	if len(fn.Blocks) != 0 {
		t.Errorf("expected an extern function to have no basic blocks, got %d", len(fn.Blocks))
	}
}

func TestPrintRendersFunctionHeaderAndTerminator(t *testing.T) {
	m := generateSource(t, `fun main() -> Int { return 0; }`)
	out := ir.Print(m)
	if !strings.Contains(out, "fun @main") {
		t.Errorf("expected printed IR to contain the function header, got:\n%s", out)
	}
	if !strings.Contains(out, "ret") {
		t.Errorf("expected printed IR to contain a ret instruction, got:\n%s", out)
	}
}

func TestGenerateRecursiveCallLowersToCallOpcode(t *testing.T) {
	m := generateSource(t, `
		fun fact(n: Int) -> Int {
			if n <= 1 {
				return 1;
			}
			return n * fact(n - 1);
		}`)
	fn := m.Functions[0]
	var sawCall bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instr {
			if instr.Op == ir.OpCall && instr.CallName == "fact" {
				sawCall = true
			}
		}
	}
	if !sawCall {
		t.Error("expected a recursive call to lower to a Call instruction naming fact")
	}
}

// TestGenerateStringLiteralLowersToConstStringValue confirms a string
// literal is not silently dropped to an indistinguishable zero value: it
// must carry its bytes on a ValConstString operand.
func TestGenerateStringLiteralLowersToConstStringValue(t *testing.T) {
	m := generateSource(t, `
		fun greeting() -> String {
			return "hello";
		}`)
	fn := m.Functions[0]
	var found bool
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instr {
			for _, arg := range instr.Args {
				if arg.Kind == ir.ValConstString && arg.Str == "hello" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected a ValConstString operand carrying \"hello\"")
	}
}

// TestGenerateIfExpressionGoldenShape pins the block/terminator shape of an
// if-expression's diamond lowering; a future refactor that changes the
// merge-block wiring should show up as a readable diff here.
func TestGenerateIfExpressionGoldenShape(t *testing.T) {
	m := generateSource(t, `
		fun f(x: Int) -> Int {
			return if x > 0 { 1 } else { 0 };
		}`)
	fn := m.Functions[0]
	var gotOps []string
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instr {
			gotOps = append(gotOps, instr.Op.String())
		}
	}
	want := []string{"alloca", "store", "load", "icmp.gt", "alloca", "condbr", "store", "br", "store", "br", "load", "ret"}
	if len(gotOps) != len(want) {
		diff := diffText(t, strings.Join(want, "\n"), strings.Join(gotOps, "\n"))
		t.Fatalf("unexpected instruction shape:\n%s", diff)
	}
	for i1 := range want {
		if gotOps[i1] != want[i1] {
			diff := diffText(t, strings.Join(want, "\n"), strings.Join(gotOps, "\n"))
			t.Fatalf("unexpected instruction shape:\n%s", diff)
		}
	}
}
