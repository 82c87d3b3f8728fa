package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanl/solidity-language-server/pkg/compiler"
	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/util/uri"
)

func TestDiagnose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Token {}"), 0644))

	var got compiler.Input
	engine := compiler.EngineFunc(func(ctx context.Context, input compiler.Input) ([]compiler.Error, error) {
		got = input
		return []compiler.Error{
			{
				Type:     "Warning",
				Severity: compiler.SeverityWarning,
				ID:       1878,
				Comment:  "SPDX license identifier not provided in source file.",
				Location: &compiler.SourceLocation{Source: "token.sol", Start: 0, End: 8},
			},
		}, nil
	})

	published, err := diagnose(context.Background(), engine, dir, []string{path})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"token.sol": "contract Token {}"}, got.Sources)

	diagnostics := published[uri.FromPath(path)]
	require.Len(t, diagnostics, 1)
	assert.Equal(t, lsp.SeverityWarning, diagnostics[0].Severity)
	assert.Equal(t, "Warning: SPDX license identifier not provided in source file.", diagnostics[0].Message)
}

func TestDiagnose_engine_failure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Token {}"), 0644))

	engine := compiler.EngineFunc(func(ctx context.Context, input compiler.Input) ([]compiler.Error, error) {
		return nil, errors.New("solc not found")
	})

	_, err := diagnose(context.Background(), engine, dir, []string{path})
	require.Error(t, err)
}

func TestDiagnose_missing_file(t *testing.T) {
	_, err := diagnose(context.Background(), nil, t.TempDir(), []string{"missing.sol"})
	require.Error(t, err)
}
