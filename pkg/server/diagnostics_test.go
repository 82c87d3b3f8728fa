package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanl/solidity-language-server/pkg/compiler"
	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/util/uri"
)

func TestServer_compileAndUpdateDiagnostics(t *testing.T) {
	source := "contract C {\n  uint x = y;\n}"

	engine := compiler.EngineFunc(func(context.Context, compiler.Input) ([]compiler.Error, error) {
		return []compiler.Error{
			{
				Type:     "DeclarationError",
				Severity: compiler.SeverityError,
				ID:       7576,
				Comment:  "Undeclared identifier.",
				Location: &compiler.SourceLocation{Source: "a.sol", Start: 24, End: 25},
				Secondary: []compiler.SecondaryLocation{
					{
						Message:  "Did you mean this?",
						Location: compiler.SourceLocation{Source: "a.sol", Start: 0, End: 8},
					},
					{
						Message:  "Somewhere unknown.",
						Location: compiler.SourceLocation{Source: "missing.sol", Start: 0, End: 1},
					},
				},
			},
			{
				Type:     "Warning",
				Severity: compiler.SeverityWarning,
				ID:       1878,
				Location: &compiler.SourceLocation{Source: "a.sol", Start: -1, End: -1},
			},
			{
				Type:     "Info",
				Severity: compiler.SeverityInfo,
				ID:       3,
				Comment:  "Consider this.",
				Location: &compiler.SourceLocation{Source: "a.sol", Start: 13, End: 26},
			},
			{
				Type:     "JSONError",
				Severity: compiler.SeverityError,
				Comment:  "No location.",
			},
			{
				Type:     "ParserError",
				Severity: compiler.SeverityError,
				Comment:  "Unknown source.",
				Location: &compiler.SourceLocation{Source: "missing.sol", Start: 0, End: 1},
			},
		}, nil
	})

	h := run(t, engine,
		requestMsg(1, "initialize", `{"rootUri":"file:///nonexistent-root"}`),
		didOpenMsg("file:///nonexistent-root/a.sol", source),
		didOpenMsg("file:///nonexistent-root/b.sol", "contract B {}"),
	)

	published := h.diagnostics(t)
	require.Len(t, published, 3)

	expected := []lsp.Diagnostic{
		{
			Range: lsp.Range{
				Start: lsp.Position{Line: 1, Character: 11},
				End:   lsp.Position{Line: 1, Character: 12},
			},
			Severity: lsp.SeverityError,
			Code:     7576,
			Source:   "solc",
			Message:  "DeclarationError: Undeclared identifier.",
			RelatedInformation: []lsp.DiagnosticRelatedInformation{
				{
					Location: lsp.Location{
						URI: "file:///nonexistent-root/a.sol",
						Range: lsp.Range{
							Start: lsp.Position{Line: 0, Character: 0},
							End:   lsp.Position{Line: 0, Character: 8},
						},
					},
					Message: "Did you mean this?",
				},
			},
		},
		{
			Severity: lsp.SeverityWarning,
			Code:     1878,
			Source:   "solc",
			Message:  "Warning:",
		},
		{
			Range: lsp.Range{
				Start: lsp.Position{Line: 1, Character: 0},
				End:   lsp.Position{Line: 1, Character: 13},
			},
			Severity: lsp.SeverityInformation,
			Code:     3,
			Source:   "solc",
			Message:  "Info: Consider this.",
		},
	}

	last := published[1:]
	assert.Equal(t, "file:///nonexistent-root/a.sol", last[0].URI)
	assert.Equal(t, expected, last[0].Diagnostics)
	assert.Equal(t, "file:///nonexistent-root/b.sol", last[1].URI)
	assert.Empty(t, last[1].Diagnostics)

	assert.Equal(t, []string{"a.sol", "b.sol"}, h.server.Config().Names())
}

func TestServer_compileAndUpdateDiagnostics_imports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0755))
	libPath := filepath.Join(dir, "lib", "math.sol")
	require.NoError(t, os.WriteFile(libPath, []byte("library Math {\n  function f() {}\n}"), 0644))

	engine := compiler.EngineFunc(func(ctx context.Context, input compiler.Input) ([]compiler.Error, error) {
		return []compiler.Error{
			{
				Type:     "SyntaxError",
				Severity: compiler.SeverityError,
				ID:       4937,
				Comment:  "No visibility specified.",
				Location: &compiler.SourceLocation{Source: "lib/math.sol", Start: 17, End: 32},
			},
		}, nil
	})

	h := run(t, engine,
		requestMsg(1, "initialize", `{"rootUri":"`+uri.FromPath(dir)+`"}`),
		didOpenMsg(uri.FromPath(filepath.Join(dir, "main.sol")), `import "lib/math.sol";`),
		didOpenMsg(uri.FromPath(filepath.Join(dir, "other.sol")), `contract Other {}`),
	)

	published := h.diagnostics(t)
	require.Len(t, published, 5)

	// The import becomes a known document once the compiler reports on it.
	assert.Equal(t, uri.FromPath(libPath), published[0].URI)
	require.Len(t, published[0].Diagnostics, 1)
	assert.Equal(t, lsp.Range{
		Start: lsp.Position{Line: 1, Character: 2},
		End:   lsp.Position{Line: 1, Character: 17},
	}, published[0].Diagnostics[0].Range)
	assert.Equal(t, uri.FromPath(filepath.Join(dir, "main.sol")), published[1].URI)
	assert.Empty(t, published[1].Diagnostics)

	var names []string
	for _, params := range published[2:] {
		names = append(names, params.URI)
	}
	assert.Equal(t, []string{
		uri.FromPath(libPath),
		uri.FromPath(filepath.Join(dir, "main.sol")),
		uri.FromPath(filepath.Join(dir, "other.sol")),
	}, names)

	assert.Equal(t, []string{"lib/math.sol", "main.sol", "other.sol"}, h.server.Config().Names())
}

func TestToSeverity(t *testing.T) {
	assert.Equal(t, lsp.SeverityError, toSeverity(compiler.SeverityError))
	assert.Equal(t, lsp.SeverityWarning, toSeverity(compiler.SeverityWarning))
	assert.Equal(t, lsp.SeverityInformation, toSeverity(compiler.SeverityInfo))
	assert.Panics(t, func() { toSeverity(compiler.Severity(4)) })
}
