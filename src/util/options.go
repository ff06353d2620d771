// options.go defines the compiler's Options and the three-layer
// configuration scheme of SPEC_FULL.md §A.1: built-in defaults, an
// optional .env file loaded with godotenv, then CLI flags (wired in
// src/main.go via cobra), which always win.

package util

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options controls a single compiler invocation. Grounded on the teacher's
// util.Options (src/util/args.go), trimmed to the flags spec.md §6.1
// actually names: target-architecture, thread-count and LLVM-toolchain
// flags that only made sense for the teacher's parallel ARM/RISC-V backend
// are dropped along with that backend (see DESIGN.md).
type Options struct {
	Src   string // Path to the input source file.
	Out   string // Path to the output artifact. Default: input path minus extension.
	Debug bool   // Verbose stage diagnostics (raises the logrus level).
	ZIR   bool   // Textual IR output; not read by run, which writes textual IR whenever LLVM is false.
	LLVM  bool   // Write LLVM IR instead of textual IR. Either form goes to OutputPath, not to stdout, unless that path is "-".
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "slc 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// Version returns the compiler's version string, printed by -v/--version.
func Version() string {
	return appVersion
}

// LoadEnv applies SLC_OUT / SLC_DEBUG environment defaults to opt for any
// field not already set by a CLI flag. envFile may be empty, in which case
// only variables already present in the process environment are consulted;
// a missing .env file is not an error.
func LoadEnv(opt *Options, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if opt.Out == "" {
		if v, ok := os.LookupEnv("SLC_OUT"); ok {
			opt.Out = v
		}
	}
	if !opt.Debug {
		if v, ok := os.LookupEnv("SLC_DEBUG"); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				opt.Debug = b
			}
		}
	}
	return nil
}

// OutputPath resolves the effective output path for opt: the explicit -o
// value if set, else the source path with its extension stripped.
func OutputPath(opt Options) string {
	if opt.Out != "" {
		return opt.Out
	}
	src := opt.Src
	for i1 := len(src) - 1; i1 >= 0 && src[i1] != '/'; i1-- {
		if src[i1] == '.' {
			return src[:i1]
		}
	}
	return src
}
