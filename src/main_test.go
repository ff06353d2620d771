package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slc/src/util"
)

// compileToFile runs the full pipeline against src, writing its output
// next to the source under dir, and returns the produced output text (or
// an error if any pipeline stage failed).
func compileToFile(t *testing.T, dir, src string) (string, error) {
	t.Helper()
	in := filepath.Join(dir, "prog.slc")
	out := filepath.Join(dir, "prog.ir")
	if err := os.WriteFile(in, []byte(src), 0644); err != nil {
		t.Fatalf("could not write source fixture: %v", err)
	}
	opt := util.Options{Src: in, Out: out, ZIR: true}
	log := util.NewStageLog(false)
	if err := run(opt, log); err != nil {
		return "", err
	}
	text, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("could not read pipeline output: %v", err)
	}
	return string(text), nil
}

// TestEndToEndMinimalReturn covers scenario S1: the smallest possible
// program should compile cleanly to a single terminated block.
func TestEndToEndMinimalReturn(t *testing.T) {
	out, err := compileToFile(t, t.TempDir(), `fun main() -> Int { return 0; }`)
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	if !strings.Contains(out, "fun @main") || !strings.Contains(out, "ret") {
		t.Errorf("expected a terminated main function in the output, got:\n%s", out)
	}
}

// TestEndToEndVariablesAndArithmetic covers scenario S2.
func TestEndToEndVariablesAndArithmetic(t *testing.T) {
	out, err := compileToFile(t, t.TempDir(), `
		fun sumTo(n: Int) -> Int {
			var acc: Int = 0;
			var i: Int = 0;
			while i < n {
				acc = acc + i;
				i = i + 1;
			}
			return acc;
		}`)
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	if !strings.Contains(out, "iadd") {
		t.Errorf("expected integer addition in the output, got:\n%s", out)
	}
}

// TestEndToEndTypeErrorHaltsPipeline covers scenario S3: a genuine type
// mismatch must stop the pipeline before IR generation runs.
func TestEndToEndTypeErrorHaltsPipeline(t *testing.T) {
	_, err := compileToFile(t, t.TempDir(), `
		fun f() -> Int {
			var x: Bool = true;
			return x;
		}`)
	if err == nil {
		t.Fatal("expected a type error to halt compilation")
	}
}

// TestEndToEndControlFlow covers scenario S4.
func TestEndToEndControlFlow(t *testing.T) {
	out, err := compileToFile(t, t.TempDir(), `
		fun abs(x: Int) -> Int {
			if x < 0 {
				return 0 - x;
			}
			return x;
		}`)
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	if !strings.Contains(out, "condbr") {
		t.Errorf("expected a conditional branch in the output, got:\n%s", out)
	}
}

// TestEndToEndUndefinedNameHaltsPipeline covers scenario S5.
func TestEndToEndUndefinedNameHaltsPipeline(t *testing.T) {
	_, err := compileToFile(t, t.TempDir(), `
		fun f() -> Int {
			return y;
		}`)
	if err == nil {
		t.Fatal("expected an undefined-name error to halt compilation")
	}
}

// TestEndToEndNumericPromotion covers scenario S6.
func TestEndToEndNumericPromotion(t *testing.T) {
	out, err := compileToFile(t, t.TempDir(), `
		fun f(x: Int, y: Float) -> Float {
			return x + y;
		}`)
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	if !strings.Contains(out, "sitofp") {
		t.Errorf("expected an sitofp conversion in the output, got:\n%s", out)
	}
}

// TestOutputPathDefaultsToSourceStem exercises util.OutputPath's default
// behaviour (source path with its extension stripped) by omitting -o.
func TestOutputPathDefaultsToSourceStem(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "prog.slc")
	if err := os.WriteFile(in, []byte(`fun main() -> Int { return 0; }`), 0644); err != nil {
		t.Fatalf("could not write source fixture: %v", err)
	}
	opt := util.Options{Src: in, ZIR: true}
	log := util.NewStageLog(false)
	if err := run(opt, log); err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	wantOut := filepath.Join(dir, "prog")
	if _, err := os.Stat(wantOut); err != nil {
		t.Errorf("expected default output at %s, got error: %v", wantOut, err)
	}
}
