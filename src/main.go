package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"slc/src/backend/llvm"
	"slc/src/binder"
	"slc/src/ir"
	"slc/src/irgen"
	"slc/src/parser"
	"slc/src/util"
)

// run drives the compiler pipeline end to end. Behaviour is governed by
// the util.Options structure: read source, lex+parse, bind, generate IR,
// then either print the IR text form (--zir) or hand it to the LLVM
// backend (--llvm); the IR text is the default, final artifact, since a
// physical code generator is out of scope for this compiler.
func run(opt util.Options, log *util.StageLog) error {
	src, err := os.ReadFile(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source code: %w", err)
	}

	diags := util.NewEngine()

	t0 := time.Now()
	root := parser.Parse(string(src), diags)
	log.Stage("parse", time.Since(t0), diags.Len())
	if diags.HadErrors() {
		printDiagnostics(diags, string(src))
		return fmt.Errorf("parsing failed with %d diagnostic(s)", diags.Len())
	}

	t0 = time.Now()
	prog := binder.Bind(root, diags)
	log.Stage("bind", time.Since(t0), diags.Len())
	if diags.HadErrors() {
		printDiagnostics(diags, string(src))
		return fmt.Errorf("binding failed with %d diagnostic(s)", diags.Len())
	}

	t0 = time.Now()
	mod := irgen.Generate(prog)
	log.Stage("irgen", time.Since(t0), diags.Len())

	if opt.LLVM {
		ctx, llmod, err := llvm.Emit(moduleName(opt.Src), mod)
		if err != nil {
			return fmt.Errorf("LLVM backend error: %w", err)
		}
		defer ctx.Dispose()
		return writeOutput(opt, llmod.String())
	}

	return writeOutput(opt, ir.Print(mod))
}

func moduleName(src string) string {
	base := src
	for i1 := len(base) - 1; i1 >= 0; i1-- {
		if base[i1] == '/' {
			return base[i1+1:]
		}
	}
	return base
}

func writeOutput(opt util.Options, text string) error {
	path := util.OutputPath(opt)
	if path == "" || path == "-" {
		_, err := fmt.Print(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// printDiagnostics writes every diagnostic to stderr with its resolved
// line:col position.
func printDiagnostics(diags *util.Engine, src string) {
	for _, d := range diags.Diagnostics() {
		line, col := d.Span.Line(src)
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", d.Kind, line, col, d.String())
	}
}

func newRootCmd() *cobra.Command {
	var opt util.Options
	var envFile string

	cmd := &cobra.Command{
		Use:     "slc [source file]",
		Short:   "slc compiles the source language to a textual IR, or to LLVM IR with --llvm",
		Version: util.Version(),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Src = args[0]
			if err := util.LoadEnv(&opt, envFile); err != nil {
				return fmt.Errorf("could not load environment: %w", err)
			}
			log := util.NewStageLog(opt.Debug)
			return run(opt, log)
		},
	}

	cmd.Flags().StringVarP(&opt.Out, "out", "o", "", "output file path (default: source path without its extension)")
	cmd.Flags().BoolVar(&opt.Debug, "debug", false, "enable debug-level stage logging")
	cmd.Flags().BoolVar(&opt.ZIR, "zir", false, "print the intermediate representation in textual form (default behaviour)")
	cmd.Flags().BoolVar(&opt.LLVM, "llvm", false, "lower the intermediate representation to LLVM IR instead")
	cmd.Flags().StringVar(&envFile, "env", ".env", "path to an optional .env configuration file")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
