// Package position translates between byte offsets in a document's text and
// the zero-based line/character positions used by the language server
// protocol. Characters are counted in UTF-16 code units.
package position

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/bryanl/solidity-language-server/pkg/lsp"
)

// ToOffset returns the byte offset of p in text. It returns false if p is
// negative or lies beyond the text. A character equal to the length of its
// line addresses the end of that line.
func ToOffset(text string, p lsp.Position) (int, bool) {
	if p.Line < 0 || p.Character < 0 {
		return 0, false
	}

	offset := 0
	for i := 0; i < p.Line; i++ {
		n := strings.IndexByte(text[offset:], '\n')
		if n < 0 {
			return 0, false
		}
		offset += n + 1
	}

	eol := len(text)
	if n := strings.IndexByte(text[offset:], '\n'); n >= 0 {
		eol = offset + n
	}

	units := 0
	for units < p.Character {
		if offset >= eol {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[offset:eol])
		units += utf16Len(r)
		offset += size
	}

	// The character points into the middle of a surrogate pair.
	if units != p.Character {
		return 0, false
	}

	return offset, true
}

// FromOffset returns the position of offset in text. The offset is clamped
// to the text so the position is never negative.
func FromOffset(text string, offset int) lsp.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	head := text[:offset]
	lineStart := strings.LastIndexByte(head, '\n') + 1

	character := 0
	for _, r := range head[lineStart:] {
		character += utf16Len(r)
	}

	return lsp.Position{
		Line:      max(strings.Count(head, "\n"), 0),
		Character: max(character, 0),
	}
}

// NewRange creates a protocol range for the byte range [start, end) of text.
func NewRange(text string, start, end int) lsp.Range {
	return lsp.Range{
		Start: FromOffset(text, start),
		End:   FromOffset(text, end),
	}
}

// Parse decodes a protocol position. Both line and character must be
// present integers.
func Parse(raw json.RawMessage) (lsp.Position, bool) {
	var p struct {
		Line      *int `json:"line"`
		Character *int `json:"character"`
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return lsp.Position{}, false
	}

	if p.Line == nil || p.Character == nil {
		return lsp.Position{}, false
	}

	return lsp.Position{Line: *p.Line, Character: *p.Character}, true
}

// ParseOffset resolves a raw protocol position to a byte offset in text. The
// result is a zero-width location.
func ParseOffset(text string, raw json.RawMessage) (int, bool) {
	p, ok := Parse(raw)
	if !ok {
		return 0, false
	}

	return ToOffset(text, p)
}

// ParseRange resolves a raw protocol range to the byte range [start, end)
// of text. Both endpoints must resolve and start may not follow end.
func ParseRange(text string, raw json.RawMessage) (int, int, bool) {
	var r struct {
		Start json.RawMessage `json:"start"`
		End   json.RawMessage `json:"end"`
	}

	if err := json.Unmarshal(raw, &r); err != nil {
		return 0, 0, false
	}

	start, ok := ParseOffset(text, r.Start)
	if !ok {
		return 0, 0, false
	}

	end, ok := ParseOffset(text, r.End)
	if !ok || end < start {
		return 0, 0, false
	}

	return start, end, true
}

func utf16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
