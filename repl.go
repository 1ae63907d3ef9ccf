package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".opelac_history"
	promptMain  = "opela> "
	promptCont  = "  ...> "
)

// replCommand compiles each entered unit on its own and prints the
// assembly. A unit continues over several lines while the parser runs into
// the end of the input.
func replCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("repl", "repl [-arch arch] [-native name=sig]... [-v]",
		"Compile interactively; :arch <name> switches target, :quit exits", stderr)
	var cf compileFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	opts, err := cf.options(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readUnit(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return exitOK
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if replDirective(trimmed, &opts, stdout, stderr) {
				return exitOK
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		src := NewSource("<repl>", []byte(code))
		if err := Compile(src.Text, opts, stdout); err != nil {
			reportError(stderr, src, err)
		}
	}
}

// replDirective handles a :command line and reports whether the loop
// should end.
func replDirective(line string, opts *Options, stdout, stderr io.Writer) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":arch":
		if len(fields) != 2 {
			fmt.Fprintf(stdout, "target is %s\n", opts.Arch)
			return false
		}
		arch, err := ParseArch(fields[1])
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return false
		}
		opts.Arch = arch
	default:
		fmt.Fprintf(stderr, "unknown command %s. Type :arch <name> or :quit.\n", fields[0])
	}
	return false
}

func readUnit(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src fails to parse only because it ends too
// early, so that reading another line could complete it.
func incomplete(src string) bool {
	err := NewSession(Options{}).Parse([]byte(src))
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Kind != ErrSyntax {
		return false
	}
	return ce.Offset >= len(src)
}
