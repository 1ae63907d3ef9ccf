package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/opela-lang/opelac/sexy"
)

func TestSexyAllTests(t *testing.T) {
	testFiles, err := filepath.Glob("test/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		testName := strings.TrimSuffix(filepath.Base(testFile), ".md")
		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					for _, assertion := range tc.Assertions {
						t.Run(string(assertion.Type)+"@"+strconv.Itoa(assertion.Line), func(t *testing.T) {
							runSexyAssertion(t, tc, assertion)
						})
					}
				})
			}
		})
	}
}

func runSexyAssertion(t *testing.T, tc sexy.TestCase, a sexy.Assertion) {
	switch a.Type {
	case sexy.AssertionTypeAST:
		assertSexyAST(t, tc, a.ParsedSexy)
	case sexy.AssertionTypeTypes:
		assertSexyTypes(t, tc, a.ParsedSexy)
	case sexy.AssertionTypeAsm:
		assertAsmLines(t, compileSexy(t, tc.Input, ArchX86_64), a.Content)
	case sexy.AssertionTypeAsmAArch64:
		assertAsmLines(t, compileSexy(t, tc.Input, ArchAArch64), a.Content)
	case sexy.AssertionTypeCompileError:
		err := Compile([]byte(tc.Input), Options{Arch: ArchX86_64}, &bytes.Buffer{})
		be.True(t, err != nil)
		be.Equal(t, err.Error(), a.Content)
	case sexy.AssertionTypeExecute:
		stdout, _ := executeSexy(t, tc)
		be.Equal(t, strings.TrimRight(stdout, "\n"), a.Content)
	case sexy.AssertionTypeExitCode:
		_, code := executeSexy(t, tc)
		be.Equal(t, strconv.Itoa(code), strings.TrimSpace(a.Content))
	default:
		t.Fatalf("unsupported assertion type %s", a.Type)
	}
}

func assertSexyAST(t *testing.T, tc sexy.TestCase, pattern *sexy.Node) {
	var node *Node
	switch tc.InputType {
	case sexy.InputTypeExpr:
		n, err := ParseExpr([]byte(tc.Input))
		be.Err(t, err, nil)
		node = n
	case sexy.InputTypeProgram:
		s := NewSession(Options{Arch: ArchX86_64})
		be.Err(t, s.Parse([]byte(tc.Input)), nil)
		node = s.Program()
	default:
		t.Fatalf("unknown input type: %s", tc.InputType)
	}

	printed := ToSExpr(node)
	actual, err := sexy.Parse(printed)
	be.Err(t, err, nil)
	if err := sexy.Match(pattern, actual); err != nil {
		t.Errorf("%v\nfull AST: %s", err, printed)
	}
}

// assertSexyTypes checks a list of (name "type") pairs against the
// resolved global objects.
func assertSexyTypes(t *testing.T, tc sexy.TestCase, pattern *sexy.Node) {
	s := NewSession(Options{Arch: ArchX86_64})
	be.Err(t, s.Parse([]byte(tc.Input)), nil)
	be.Err(t, s.Resolve(), nil)

	be.Equal(t, pattern.Type, sexy.NodeList)
	for _, pair := range pattern.Items {
		be.Equal(t, len(pair.Items), 2)
		name, want := pair.Items[0].Text, pair.Items[1].Text
		obj := s.Lookup(name)
		if obj == nil {
			t.Errorf("no global named %s", name)
			continue
		}
		be.Equal(t, obj.Type.String(), want)
	}
}

func compileSexy(t *testing.T, input string, arch Arch) string {
	var out bytes.Buffer
	be.Err(t, Compile([]byte(input), Options{Arch: arch}, &out), nil)
	return out.String()
}

// assertAsmLines checks that every non-empty line of want appears in asm,
// in order, ignoring surrounding whitespace.
func assertAsmLines(t *testing.T, asm, want string) {
	var got []string
	for _, line := range strings.Split(asm, "\n") {
		got = append(got, strings.TrimSpace(line))
	}
	i := 0
	for _, line := range strings.Split(want, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for i < len(got) && got[i] != line {
			i++
		}
		if i == len(got) {
			t.Fatalf("line %q not found in order in:\n%s", line, asm)
		}
		i++
	}
}

// executeSexy assembles the test program with the host C compiler and runs
// it. Execution needs an x86-64 Linux host with cc on the PATH.
func executeSexy(t *testing.T, tc sexy.TestCase) (string, int) {
	t.Helper()
	if runtime.GOOS != "linux" || runtime.GOARCH != "amd64" {
		t.Skip("execution tests need linux/amd64")
	}
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("cc not found")
	}

	dir := t.TempDir()
	asmPath := filepath.Join(dir, "prog.s")
	binPath := filepath.Join(dir, "prog")
	be.Err(t, os.WriteFile(asmPath, []byte(compileSexy(t, tc.Input, ArchX86_64)), 0644), nil)

	build := exec.Command(cc, "-no-pie", "-o", binPath, asmPath)
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("cc failed: %v\n%s", err, out)
	}

	run := exec.Command(binPath)
	run.Stdin = strings.NewReader(tc.InputData)
	var stdout bytes.Buffer
	run.Stdout = &stdout
	err = run.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), exitErr.ExitCode()
	}
	t.Fatalf("running program: %v", err)
	return "", 0
}
