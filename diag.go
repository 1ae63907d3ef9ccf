package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a CompileError.
type ErrorKind int

const (
	ErrLexical ErrorKind = iota
	ErrSyntax
	ErrSemantic
	ErrGeneric
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrLexical:
		return "lexical"
	case ErrSyntax:
		return "syntax"
	case ErrSemantic:
		return "semantic"
	case ErrGeneric:
		return "generic instantiation"
	case ErrInternal:
		return "internal"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// CompileError is the single error type produced by the compiler core.
// Offset and Length locate the offending text in the source buffer.
type CompileError struct {
	Kind   ErrorKind
	Offset int
	Length int
	Msg    string
}

func (e *CompileError) Error() string {
	return "error: " + e.Msg
}

// bailout aborts the current phase. It is recovered by catchBailout at the
// phase boundary and turned into an ordinary error return.
func bailout(kind ErrorKind, tok *Token, format string, args ...any) {
	e := &CompileError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
	if tok != nil {
		e.Offset, e.Length = tok.Offset, tok.Len
	}
	panic(e)
}

// catchBailout must be deferred by every exported entry point that may
// reach bailout.
func catchBailout(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if ce, ok := r.(*CompileError); ok {
		*err = ce
		return
	}
	panic(r)
}

// FormatDiagnostic renders err against src: a position header, the offending
// source line and a caret under the offending column. Errors that are not
// CompileErrors are returned as-is.
func FormatDiagnostic(src *Source, err error) string {
	var ce *CompileError
	if !errors.As(err, &ce) {
		return err.Error()
	}
	line, col, text := src.Locate(ce.Offset)
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s error: %s\n", src.Name, line, col, ce.Kind, ce.Msg)
	b.WriteString(text)
	b.WriteByte('\n')
	// Keep tabs so the caret lines up in a terminal.
	for i := 0; i < min(col-1, len(text)); i++ {
		if text[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("^\n")
	return b.String()
}
