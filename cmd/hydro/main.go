// hydro - Hydor compiler and virtual machine driver
//
// Usage:
//
//	hydro build [-o out.hydc] [-g] file.hy   # compile to bytecode
//	hydro run file.hy                        # compile and execute
//	hydro run file.hydc                      # execute precompiled bytecode
//	hydro disasm file.hydc                   # print a bytecode listing
//	hydro repl                               # interactive session
//
// When a hydor.toml manifest is found in the current directory or above,
// its settings apply: build output directory, debug sidecars, the compile
// cache, the VM stack limit, and the source entry file. With a manifest
// entry configured, build and run may be invoked without a file argument.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/hydor-lang/hydor"
	"github.com/hydor-lang/hydor/cache"
	"github.com/hydor-lang/hydor/compiler"
	"github.com/hydor-lang/hydor/manifest"
	"github.com/hydor-lang/hydor/pkg/bytecode"
)

var log = commonlog.GetLogger("hydro")

func main() {
	verbose := flag.Int("v", 0, "log verbosity (0-2)")
	flag.Usage = usage
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "build":
		err = cmdBuild(args[1:])
	case "run":
		err = cmdRun(args[1:])
	case "disasm":
		err = cmdDisasm(args[1:])
	case "repl":
		err = cmdRepl()
	default:
		fmt.Fprintf(os.Stderr, "hydro: unknown command %q\n", args[0])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "hydro: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  hydro [-v N] build [-o out.hydc] [-g] [file.hy]
  hydro [-v N] run [file.hy | file.hydc]
  hydro [-v N] disasm file.hydc
  hydro [-v N] repl
`)
}

// compileFile compiles a .hy source file, consulting the manifest's
// compile cache when enabled. Returns the bytecode and debug sidecar.
func compileFile(path string, m *manifest.Manifest) (hydc, hydd []byte, err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	source := string(src)

	var c *cache.Cache
	if m != nil && m.Build.Cache {
		c, err = cache.Open(m.CachePath())
		if err != nil {
			log.Errorf("opening compile cache: %s", err)
		} else {
			defer c.Close()
		}
	}

	key := cache.Key(source)
	if c != nil {
		cached, cachedDebug, ok, err := c.Get(key, bytecode.FormatVersion)
		if err != nil {
			log.Errorf("reading compile cache: %s", err)
		} else if ok {
			return cached, cachedDebug, nil
		}
	}

	hydc, hydd, diags := hydor.CompileWithDebug(source)
	if len(diags) > 0 {
		fmt.Fprint(os.Stderr, hydor.FormatDiagnostics(source, diags))
		return nil, nil, fmt.Errorf("%s: %d error(s)", path, len(diags))
	}

	if c != nil {
		if err := c.Put(key, bytecode.FormatVersion, hydc, hydd); err != nil {
			log.Errorf("writing compile cache: %s", err)
		}
	}

	return hydc, hydd, nil
}

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "output path (default: source name with .hydc)")
	debug := fs.Bool("g", false, "write a .hydd debug sidecar next to the output")
	fs.Parse(args)

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return err
	}

	path, err := resolveFileArg(fs, m, "build requires a source file or a manifest entry")
	if err != nil {
		return err
	}

	hydc, hydd, err := compileFile(path, m)
	if err != nil {
		return err
	}

	outPath := *out
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".hydc"
		if m != nil {
			if err := os.MkdirAll(m.OutputDir(), 0o755); err != nil {
				return err
			}
			outPath = filepath.Join(m.OutputDir(), base)
		} else {
			outPath = base
		}
	}

	if err := os.WriteFile(outPath, hydc, 0o644); err != nil {
		return err
	}
	log.Infof("wrote %s (%d bytes)", outPath, len(hydc))

	if *debug || (m != nil && m.Build.DebugInfo) {
		if hydd != nil {
			sidecar := strings.TrimSuffix(outPath, ".hydc") + ".hydd"
			if err := os.WriteFile(sidecar, hydd, 0o644); err != nil {
				return err
			}
			log.Infof("wrote %s (%d bytes)", sidecar, len(hydd))
		}
	}

	return nil
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Parse(args)

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return err
	}

	path, err := resolveFileArg(fs, m, "run requires a file or a manifest entry")
	if err != nil {
		return err
	}

	var hydc, hydd []byte
	if filepath.Ext(path) == ".hydc" {
		hydc, err = os.ReadFile(path)
		if err != nil {
			return err
		}
		// Pick up a sidecar if one sits next to the bytecode.
		sidecar := strings.TrimSuffix(path, ".hydc") + ".hydd"
		hydd, _ = os.ReadFile(sidecar)
	} else {
		hydc, hydd, err = compileFile(path, m)
		if err != nil {
			return err
		}
	}

	maxStack := 0
	if m != nil {
		maxStack = m.VM.MaxStack
	}
	_, err = hydor.RunBytesWithStack(hydc, hydd, maxStack)
	return err
}

// resolveFileArg picks the file to operate on: the positional argument
// when given, otherwise the manifest's source entry.
func resolveFileArg(fs *flag.FlagSet, m *manifest.Manifest, missing string) (string, error) {
	switch fs.NArg() {
	case 0:
		if m != nil {
			if entry := m.EntryPath(); entry != "" {
				return entry, nil
			}
		}
		return "", errors.New(missing)
	case 1:
		return fs.Arg(0), nil
	default:
		return "", errors.New("too many arguments")
	}
}

func cmdDisasm(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("disasm requires exactly one .hydc file")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	listing, err := hydor.Disassemble(data)
	if err != nil {
		return err
	}
	fmt.Print(listing)
	return nil
}

// cmdRepl runs an interactive session. Each accepted line is appended to
// the session source and the whole program is recompiled and re-run, so
// declared variables stay visible across lines. Rejected lines are
// discarded and do not poison the session.
func cmdRepl() error {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var session strings.Builder

	for {
		input, err := state.Prompt("hydor> ")
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return nil
			default:
				return fmt.Errorf("read error: %w", err)
			}
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		candidate := session.String() + input + "\n"
		result, err := hydor.Run(candidate)
		if err != nil {
			if errors.Is(err, hydor.ErrRejected) {
				diags := diagnose(candidate)
				fmt.Fprint(os.Stderr, hydor.FormatDiagnostics(candidate, diags))
			} else {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			continue
		}

		session.WriteString(input)
		session.WriteString("\n")
		state.AppendHistory(trimmed)

		// LastPopped reflects the whole re-run session, so echo it only
		// when this line's own final statement produced a value.
		if lineProducesValue(input) {
			fmt.Println(result.String())
		}
	}
}

// lineProducesValue reports whether an accepted line ends in a statement
// that leaves a value to display. Declarations, blocks, ifs, and
// unit-typed assignments do not.
func lineProducesValue(line string) bool {
	prog, diags := compiler.Parse(line)
	if len(diags) > 0 || len(prog.Statements) == 0 {
		return false
	}
	last, ok := prog.Statements[len(prog.Statements)-1].(*compiler.ExprStmt)
	if !ok {
		return false
	}
	_, isAssign := last.Expr.(*compiler.AssignExpr)
	return !isAssign
}

// diagnose re-runs the front end to recover structured diagnostics for
// REPL error display.
func diagnose(source string) []compiler.Diagnostic {
	prog, diags := compiler.Parse(source)
	if len(diags) > 0 {
		return diags
	}
	_, diags = compiler.Check(prog)
	return diags
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".hydor_history")
}
