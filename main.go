// Command coolsemant checks COOL programs for static semantic errors.
//
//	coolsemant [-config file] [-v] [-entry Class] [-dump text|yaml] [-emit-layout] file.cl...
//
// Diagnostics go to stderr and the exit status is 1 when any are reported.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/do"

	"cool-semant/config"
	"cool-semant/parser"
	"cool-semant/semant"
)

const parseHaltLine = "Compilation halted due to lex and parse errors"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coolsemant", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultFile, "analyzer options (TOML, or YAML by extension)")
	verbose := fs.Bool("v", false, "log every analysis phase")
	entry := fs.String("entry", "", "entry class, overriding the config file")
	dump := fs.String("dump", "", "print inferred types after a successful run: text or yaml")
	emitLayout := fs.Bool("emit-layout", false, "print object layouts and vtables as LLVM IR")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: coolsemant [flags] file.cl...")
		fs.PrintDefaults()
		return 2
	}
	switch *dump {
	case "", "text", "yaml":
	default:
		fmt.Fprintf(stderr, "unknown -dump format %q\n", *dump)
		return 2
	}

	injector := newContainer(options{
		configPath: *configPath,
		verbose:    *verbose,
		entryClass: *entry,
		stderr:     stderr,
	})
	defer injector.Shutdown()

	analyzer, err := do.Invoke[*semant.Analyzer](injector)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log := do.MustInvoke[*slog.Logger](injector)

	files, err := parser.ResolveImports(fs.Args()...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log.Debug("resolved sources", "files", len(files))

	prog, errs := parser.ParseFiles(files)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(stderr, e)
		}
		fmt.Fprintln(stderr, parseHaltLine)
		return 1
	}

	res, err := analyzer.Analyze(prog)
	if err != nil {
		if werr := semant.Report(stderr, err); werr != nil {
			log.Error("cannot write diagnostics", "err", werr, "diagnostics", err)
		}
		return 1
	}

	var out []byte
	switch *dump {
	case "text":
		out = []byte(semant.Dump(res))
	case "yaml":
		data, err := semant.DumpYAML(res)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		out = data
	}

	if *emitLayout {
		build := do.MustInvoke[layoutBuilder](injector)
		l, err := build(res)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		out = append(out, l.Module.String()...)
	}

	if len(out) == 0 {
		return 0
	}
	if _, err := stdout.Write(out); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
