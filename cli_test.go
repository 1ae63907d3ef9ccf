package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runMain(args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	be.Err(t, os.WriteFile(path, []byte(src), 0644), nil)
	return path
}

func TestCLIUsage(t *testing.T) {
	res := runCLI(t, "")
	be.Equal(t, res.code, exitUsage)
	be.True(t, strings.Contains(res.stderr, "Usage:"))

	res = runCLI(t, "", "help")
	be.Equal(t, res.code, exitOK)
	be.True(t, strings.Contains(res.stdout, "opelac - compiler for the OpeLa language"))

	res = runCLI(t, "", "frob")
	be.Equal(t, res.code, exitUsage)
	be.True(t, strings.HasPrefix(res.stderr, "Unknown command: frob\n"))
}

func TestCLIEval(t *testing.T) {
	res := runCLI(t, "", "eval", "a := 5; a + 1;")
	be.Equal(t, res.code, exitOK)
	be.True(t, strings.Contains(res.stdout, "\nmain:\n"))
	be.Equal(t, res.stderr, "")

	res = runCLI(t, "", "eval", "-arch", "arm64", "a := 5; a + 1;")
	be.Equal(t, res.code, exitOK)
	be.True(t, strings.Contains(res.stdout, "\n_main:\n"))
}

func TestCLIEvalErrors(t *testing.T) {
	res := runCLI(t, "", "eval", "1 +;")
	be.Equal(t, res.code, exitFailure)
	be.Equal(t, res.stdout, "")
	be.Equal(t, res.stderr, "<eval>:1:4: syntax error: expected expression, got ';'\n1 +;\n   ^\n\n")

	res = runCLI(t, "", "eval")
	be.Equal(t, res.code, exitUsage)
	be.True(t, strings.Contains(res.stderr, "expected exactly one code argument"))

	res = runCLI(t, "", "eval", "-arch", "sparc", "1;")
	be.Equal(t, res.code, exitUsage)
	be.True(t, strings.Contains(res.stderr, `Error: unknown architecture "sparc"`))
}

func TestCLINatives(t *testing.T) {
	res := runCLI(t, "", "eval", "-native", "puts=func(*byte) int", `puts("hi");`)
	be.Equal(t, res.code, exitOK)
	be.True(t, strings.Contains(res.stdout, "call puts"))

	res = runCLI(t, "", "eval", "-native", "puts", `puts("hi");`)
	be.Equal(t, res.code, exitUsage)
	be.True(t, strings.Contains(res.stderr, `want name=signature, got "puts"`))
}

func TestNativeFlag(t *testing.T) {
	var f nativeFlag
	be.Err(t, f.Set("puts=func(*byte) int"), nil)
	be.Err(t, f.Set("errno=int"), nil)
	be.Equal(t, f.String(), "puts=func(*byte) int,errno=int")
	be.Equal(t, len(f), 2)

	be.Err(t, f.Set("=int"), `want name=signature, got "=int"`)
	be.Err(t, f.Set("x="), `want name=signature, got "x="`)
}

func TestCLIBuild(t *testing.T) {
	path := writeSource(t, "prog.opela", "func main() int {\n    return 42;\n}\n")
	out := filepath.Join(t.TempDir(), "prog.s")

	res := runCLI(t, "", "build", "-o", out, path)
	be.Equal(t, res.code, exitOK)
	be.Equal(t, res.stdout, "")

	asm, err := os.ReadFile(out)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(asm), "mov rdi, 42"))
}

func TestCLIBuildFromStdin(t *testing.T) {
	res := runCLI(t, "x := 3;\nx;\n", "build", "-")
	be.Equal(t, res.code, exitOK)
	be.True(t, strings.Contains(res.stdout, "mov rdi, 3"))

	res = runCLI(t, "x;\n", "build")
	be.Equal(t, res.code, exitFailure)
	be.True(t, strings.HasPrefix(res.stderr, "<stdin>:1:1: semantic error: undefined variable 'x'\n"))
}

func TestCLIBuildVerbose(t *testing.T) {
	path := writeSource(t, "v.opela", "1;\n")
	out := filepath.Join(t.TempDir(), "v.s")

	res := runCLI(t, "", "build", "-v", "-o", out, path)
	be.Equal(t, res.code, exitOK)
	be.True(t, strings.Contains(res.stderr, "Compiling "+path+" for x86-64...\n"))
	be.True(t, strings.Contains(res.stderr, "parsed 1 declarations\n"))
	be.True(t, strings.Contains(res.stderr, "Generated "+out))
}

func TestCLIBuildErrors(t *testing.T) {
	path := writeSource(t, "bad.opela", "func main() int {\n    return y;\n}\n")

	res := runCLI(t, "", "build", path)
	be.Equal(t, res.code, exitFailure)
	be.Equal(t, res.stdout, "")
	be.True(t, strings.HasPrefix(res.stderr, path+":2:12: semantic error: undefined variable 'y'\n    return y;\n           ^\n"))

	res = runCLI(t, "", "build", filepath.Join(t.TempDir(), "missing.opela"))
	be.Equal(t, res.code, exitFailure)
	be.True(t, strings.HasPrefix(res.stderr, "Error: reading "))

	res = runCLI(t, "", "build", "a.opela", "b.opela")
	be.Equal(t, res.code, exitUsage)
	be.True(t, strings.Contains(res.stderr, "expected at most one file argument"))
}

func TestCLICheck(t *testing.T) {
	path := writeSource(t, "ok.opela", "func main() int {\n    return 0;\n}\n")

	res := runCLI(t, "", "check", path)
	be.Equal(t, res.code, exitOK)
	be.Equal(t, res.stdout, path+": no errors found\n")

	res = runCLI(t, "", "check", "-dump-ast", path)
	be.Equal(t, res.code, exitOK)
	be.True(t, strings.Contains(res.stdout, `"main"`))

	bad := writeSource(t, "bad.opela", "var x foo;\n")
	res = runCLI(t, "", "check", bad)
	be.Equal(t, res.code, exitFailure)
	be.True(t, strings.Contains(res.stderr, "semantic error: unknown type name 'foo'"))

	res = runCLI(t, "", "check")
	be.Equal(t, res.code, exitUsage)
}
