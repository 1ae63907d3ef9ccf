package main

import "bytes"

// Source is the whole text of one translation unit.
type Source struct {
	Name string
	Text []byte
}

func NewSource(name string, text []byte) *Source {
	// The lexer owns the terminator; diagnostics never show it.
	text = bytes.TrimSuffix(text, []byte{0})
	return &Source{Name: name, Text: text}
}

// Locate returns the 1-based line and column of offset along with the text
// of that line (without its newline).
func (s *Source) Locate(offset int) (line, col int, text string) {
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	if offset < 0 {
		offset = 0
	}
	start := bytes.LastIndexByte(s.Text[:offset], '\n') + 1
	end := bytes.IndexByte(s.Text[offset:], '\n')
	if end < 0 {
		end = len(s.Text)
	} else {
		end += offset
	}
	line = bytes.Count(s.Text[:start], []byte{'\n'}) + 1
	return line, offset - start + 1, string(s.Text[start:end])
}
