// Package compiler describes the engine that analyzes source units and the
// errors it reports.
package compiler

import (
	"context"
	"fmt"
)

// Severity is the severity of a compiler error.
type Severity int

const (
	// SeverityError is an error that prevents compilation.
	SeverityError Severity = iota
	// SeverityWarning is a warning.
	SeverityWarning
	// SeverityInfo is informational.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity parses a severity name.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return 0, false
	}
}

// SourceLocation is the half open byte range [Start, End) in a source unit.
type SourceLocation struct {
	Source string
	Start  int
	End    int
}

// HasText returns true if the location points to text in a named source.
func (l SourceLocation) HasText() bool {
	return l.Source != "" && l.Start >= 0 && l.End >= l.Start
}

// SecondaryLocation is a location related to an error.
type SecondaryLocation struct {
	Message  string
	Location SourceLocation
}

// Error is an error reported by the compiler.
type Error struct {
	Type      string
	Severity  Severity
	ID        uint64
	Comment   string
	Location  *SourceLocation
	Secondary []SecondaryLocation
}

// Description formats the error as its type followed by its comment.
func (e Error) Description() string {
	if e.Comment == "" {
		return e.Type + ":"
	}

	return e.Type + ": " + e.Comment
}

// Input is a compilation request.
type Input struct {
	BasePath string
	Sources  map[string]string
}

// Engine compiles sources and reports their errors. An error return means
// the engine itself failed.
type Engine interface {
	Compile(ctx context.Context, input Input) ([]Error, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, input Input) ([]Error, error)

var _ Engine = (EngineFunc)(nil)

// Compile calls fn.
func (fn EngineFunc) Compile(ctx context.Context, input Input) ([]Error, error) {
	return fn(ctx, input)
}
