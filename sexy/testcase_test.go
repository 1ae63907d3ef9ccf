package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Binary expressions

## Test: +
` + fence + `opela-expr
1 + 2
` + fence + `
` + fence + `ast
(add 1 2)
` + fence + `

## Test: -
` + fence + `opela-expr
1 - 2
` + fence + `
` + fence + `ast
(sub 1 2)
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "+")
	be.Equal(t, tc1.Input, "1 + 2")
	be.Equal(t, tc1.InputType, InputTypeExpr)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc1.Assertions[0].Content, `(add 1 2)`)
	be.Equal(t, tc1.Assertions[0].ParsedSexy.String(), `(add 1 2)`)

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "-")
	be.Equal(t, tc2.Input, "1 - 2")
	be.Equal(t, tc2.Assertions[0].ParsedSexy.String(), `(sub 1 2)`)
}

func TestExtractTestCases_DifferentAssertionTypes(t *testing.T) {
	markdown := `## Test: everything
` + fence + `opela-program
func main() int {
    return 6 / 2;
}
` + fence + `
` + fence + `ast
(decls ...)
` + fence + `
` + fence + `types
((main "func() int64"))
` + fence + `
` + fence + `asm
idiv r11
` + fence + `
` + fence + `asm-aarch64
sdiv x0, x0, x1
` + fence + `
` + fence + `exit-code
3
` + fence + `
` + fence + `execute
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.InputType, InputTypeProgram)
	be.Equal(t, len(tc.Assertions), 6)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeTypes)
	be.True(t, tc.Assertions[1].ParsedSexy != nil)
	be.Equal(t, tc.Assertions[2].Type, AssertionTypeAsm)
	be.True(t, tc.Assertions[2].ParsedSexy == nil)
	be.Equal(t, tc.Assertions[2].Content, "idiv r11")
	be.Equal(t, tc.Assertions[3].Type, AssertionTypeAsmAArch64)
	be.Equal(t, tc.Assertions[4].Type, AssertionTypeExitCode)
	be.Equal(t, tc.Assertions[4].Content, "3")
	be.Equal(t, tc.Assertions[5].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[5].Content, "")
}

func TestExtractTestCases_CompileError(t *testing.T) {
	markdown := `## Test: undefined variable
` + fence + `opela-expr
x + 1;
` + fence + `
` + fence + `compile-error
error: undefined variable 'x'
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].Assertions[0].Type, AssertionTypeCompileError)
	be.Equal(t, testCases[0].Assertions[0].Content, "error: undefined variable 'x'")
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	markdown := `# Some document

This is just regular markdown content.

` + fence + `
plain code blocks are documentation
` + fence + `

## Regular heading

No test cases here.`

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_InvalidSexyAssertion(t *testing.T) {
	markdown := `## Test: invalid sexy
` + fence + `opela-expr
1 + 2
` + fence + `
` + fence + `ast
(unclosed list
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "failed to parse Sexy assertion in test 'invalid sexy'")
	be.Err(t, err, "line 6")
}

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	tests := []struct {
		fenceType string
		markdown  string
	}{
		{"opela-expr", "# Document\n\n```opela-expr\n1 + 2\n```\n"},
		{"opela-program", "# Document\n\n```opela-program\nfunc main() {}\n```\n"},
		{"ast", "# Document\n\n```ast\n(add 1 2)\n```\n"},
		{"asm", "# Document\n\n```asm\nret\n```\n"},
	}

	for _, test := range tests {
		t.Run(test.fenceType, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.Err(t, err, test.fenceType+" fence found outside of test case")
			be.Err(t, err, "line 4")
		})
	}
}

func TestExtractTestCases_UnknownFence(t *testing.T) {
	outside := "# Document\n\n```go\nfunc main() {}\n```\n"
	_, err := ExtractTestCases(outside)
	be.Err(t, err, "unknown fence language 'go' found outside of test case")

	inside := `## Test: with unknown fence
` + fence + `python
print("hello")
` + fence + `
` + fence + `opela-expr
1 + 2
` + fence + `
` + fence + `ast
(add 1 2)
` + fence
	_, err = ExtractTestCases(inside)
	be.Err(t, err, "unknown fence language 'python' in test 'with unknown fence'")
}

func TestExtractTestCases_MissingFences(t *testing.T) {
	noInput := `## Test: no input
` + fence + `ast
(add 1 2)
` + fence
	_, err := ExtractTestCases(noInput)
	be.Err(t, err, "test 'no input' has no input fence")

	noAssertion := `## Test: no assertion
` + fence + `opela-expr
1 + 2
` + fence
	_, err = ExtractTestCases(noAssertion)
	be.Err(t, err, "test 'no assertion' has no assertion fences")
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := `## Test: two inputs
` + fence + `opela-expr
1
` + fence + `
` + fence + `opela-expr
2
` + fence + `
` + fence + `ast
1
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "multiple input fences found in test 'two inputs'")
}

func TestExtractTestCases_ErrorInSecondTest(t *testing.T) {
	markdown := `## Test: first test
` + fence + `opela-expr
1 + 2
` + fence + `
` + fence + `ast
(add 1 2)
` + fence + `

## Test: second test missing input
` + fence + `ast
(sub 1 2)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'second test missing input' has no input fence")
}

func TestExtractTestCases_InputFence(t *testing.T) {
	markdown := `## Test: echo
` + fence + `opela-program
extern "C" getchar func() int;
func main() int { return getchar(); }
` + fence + `
` + fence + `input
A
` + fence + `
` + fence + `exit-code
65
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].InputData, "A\n")
	be.Equal(t, len(testCases[0].Assertions), 1)
	be.True(t, strings.HasPrefix(testCases[0].Input, "extern"))
}
