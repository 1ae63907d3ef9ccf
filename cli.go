package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sanity-io/litter"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func showUsage(w io.Writer) {
	fmt.Fprintf(w, `opelac - compiler for the OpeLa language, emitting x86-64 or AArch64 assembly

Usage:
    opelac <command> [arguments]

Commands:
    build [file]    Compile a file (or stdin) to assembly
    check <file>    Parse and type-check a file
    eval <code>     Compile inline code and print the assembly
    repl            Compile interactively
    help            Show this help message

Examples:
    opelac build -o prog.s prog.opela && cc -o prog prog.s
    opelac build -arch aarch64 -native 'puts=func(*byte) int' hello.opela
    opelac eval 'a := 5; a + 1;'
    opelac check -dump-ast prog.opela

Use "opelac <command> -h" for more information about a command.
`)
}

// nativeFlag collects repeated -native name=signature flags.
type nativeFlag []Native

func (f *nativeFlag) String() string {
	var parts []string
	for _, n := range *f {
		parts = append(parts, n.Name+"="+n.Sig)
	}
	return strings.Join(parts, ",")
}

func (f *nativeFlag) Set(v string) error {
	name, sig, ok := strings.Cut(v, "=")
	if !ok || name == "" || sig == "" {
		return fmt.Errorf("want name=signature, got %q", v)
	}
	*f = append(*f, Native{Name: name, Sig: sig})
	return nil
}

// compileFlags are shared by every command that produces assembly.
type compileFlags struct {
	arch    string
	natives nativeFlag
	verbose bool
}

func (c *compileFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.arch, "arch", string(ArchX86_64), "Target architecture: x86-64 or aarch64")
	fs.Var(&c.natives, "native", "Declare an external C symbol as name=signature (repeatable)")
	fs.BoolVar(&c.verbose, "v", false, "Show verbose compilation details")
}

func (c *compileFlags) options(stderr io.Writer) (Options, error) {
	arch, err := ParseArch(c.arch)
	if err != nil {
		return Options{}, err
	}
	opts := Options{Arch: arch, Natives: c.natives}
	if c.verbose {
		opts.Verbose = stderr
	}
	return opts, nil
}

func newFlagSet(name, usage, summary string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: opelac %s\n", usage)
		fmt.Fprintf(stderr, "%s\n\n", summary)
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// readSource reads the named file, or stdin for "" and "-".
func readSource(name string, stdin io.Reader) (*Source, error) {
	if name == "" || name == "-" {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return NewSource("<stdin>", text), nil
	}
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return NewSource(name, text), nil
}

// reportError prints err, as a caret diagnostic when it is a CompileError.
func reportError(stderr io.Writer, src *Source, err error) {
	var ce *CompileError
	if src != nil && errors.As(err, &ce) {
		fmt.Fprintln(stderr, FormatDiagnostic(src, err))
		return
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

func buildCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("build", "build [-arch arch] [-o output] [-native name=sig]... [-v] [file]",
		"Compile a file, or stdin when no file or - is given, to assembly", stderr)
	var cf compileFlags
	cf.register(fs)
	output := fs.String("o", "", "Output file path (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "Error: expected at most one file argument\n")
		fs.Usage()
		return exitUsage
	}
	opts, err := cf.options(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	src, err := readSource(fs.Arg(0), stdin)
	if err != nil {
		reportError(stderr, nil, err)
		return exitFailure
	}
	if cf.verbose {
		fmt.Fprintf(stderr, "Compiling %s for %s...\n", src.Name, opts.Arch)
	}
	var asm bytes.Buffer
	if err := Compile(src.Text, opts, &asm); err != nil {
		reportError(stderr, src, err)
		return exitFailure
	}

	if *output == "" {
		stdout.Write(asm.Bytes())
		return exitOK
	}
	if err := os.WriteFile(*output, asm.Bytes(), 0644); err != nil {
		reportError(stderr, nil, fmt.Errorf("writing %s: %w", *output, err))
		return exitFailure
	}
	if cf.verbose {
		fmt.Fprintf(stderr, "Generated %s (%d bytes)\n", *output, asm.Len())
	}
	return exitOK
}

func checkCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("check", "check [-v] [-dump-ast] [-native name=sig]... <file>",
		"Parse and type-check a file without generating code", stderr)
	var cf compileFlags
	cf.register(fs)
	dump := fs.Bool("dump-ast", false, "Print the resolved declarations")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		return exitUsage
	}
	opts, err := cf.options(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	src, err := readSource(fs.Arg(0), stdin)
	if err != nil {
		reportError(stderr, nil, err)
		return exitFailure
	}
	s := NewSession(opts)
	if err := s.Parse(src.Text); err != nil {
		reportError(stderr, src, err)
		return exitFailure
	}
	if err := s.Resolve(); err != nil {
		reportError(stderr, src, err)
		return exitFailure
	}

	fmt.Fprintf(stdout, "%s: no errors found\n", src.Name)
	if *dump {
		dumper := litter.Options{HidePrivateFields: true, HideZeroValues: true, StripPackageNames: true}
		fmt.Fprintln(stdout, dumper.Sdump(s.Decls()))
	}
	return exitOK
}

func evalCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet("eval", "eval [-arch arch] [-native name=sig]... [-v] <code>",
		"Compile inline code and print the assembly", stderr)
	var cf compileFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: expected exactly one code argument\n")
		fs.Usage()
		return exitUsage
	}
	opts, err := cf.options(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	src := NewSource("<eval>", []byte(fs.Arg(0)))
	if cf.verbose {
		fmt.Fprintf(stderr, "Evaluating: %s\n", src.Text)
	}
	if err := Compile(src.Text, opts, stdout); err != nil {
		reportError(stderr, src, err)
		return exitFailure
	}
	return exitOK
}

// runMain dispatches one command line and returns the process exit code.
func runMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		showUsage(stderr)
		return exitUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "build":
		return buildCommand(rest, stdin, stdout, stderr)
	case "check":
		return checkCommand(rest, stdin, stdout, stderr)
	case "eval":
		return evalCommand(rest, stdin, stdout, stderr)
	case "repl":
		return replCommand(rest, stdout, stderr)
	case "help", "-h", "--help":
		showUsage(stdout)
		return exitOK
	}
	fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
	showUsage(stderr)
	return exitUsage
}

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
