package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/pkg/errors"
)

func newConfig(t *testing.T) *Config {
	logger, _ := test.NewNullLogger()
	return New(logger)
}

func TestConfig_SourceUnitName(t *testing.T) {
	cases := []struct {
		name     string
		basePath string
		uri      string
		expected string
	}{
		{
			name:     "file under base path",
			basePath: "/work",
			uri:      "file:///work/contracts/a.sol",
			expected: "contracts/a.sol",
		},
		{
			name:     "file outside of base path",
			basePath: "/work",
			uri:      "file:///other/a.sol",
			expected: "/other/a.sol",
		},
		{
			name:     "sibling directory sharing a prefix",
			basePath: "/work",
			uri:      "file:///workspace/a.sol",
			expected: "/workspace/a.sol",
		},
		{
			name:     "root base path",
			basePath: "/",
			uri:      "file:///a.sol",
			expected: "a.sol",
		},
		{
			name:     "no base path",
			uri:      "file:///work/a.sol",
			expected: "/work/a.sol",
		},
		{
			name:     "non file uri",
			basePath: "/work",
			uri:      "untitled:Untitled-1",
			expected: "untitled:Untitled-1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newConfig(t)
			c.SetBasePath(tc.basePath)

			assert.Equal(t, tc.expected, c.SourceUnitName(tc.uri))
		})
	}
}

func TestConfig_StoreTextDocumentItem(t *testing.T) {
	c := newConfig(t)
	c.SetBasePath("/work")
	require.Len(t, c.textDocuments, 0)

	c.StoreTextDocumentItem(NewTextDocument("file:///work/a.sol", "text"))
	require.Len(t, c.textDocuments, 1)

	td, err := c.Text("file:///work/a.sol")
	require.NoError(t, err)
	assert.Equal(t, "text", td.String())
	assert.Equal(t, "a.sol", td.Name())
	assert.Equal(t, "file:///work/a.sol", td.URI())
}

func TestConfig_StoreTextDocumentItem_reopen(t *testing.T) {
	c := newConfig(t)

	c.StoreTextDocumentItem(NewTextDocument("file:///a.sol", "contract A {}"))
	first := c.Sources()

	c.StoreTextDocumentItem(NewTextDocument("file:///a.sol", "contract A {}"))
	assert.Equal(t, first, c.Sources())
	assert.Equal(t, []string{"/a.sol"}, c.Names())

	c.StoreTextDocumentItem(NewTextDocument("file:///a.sol", "contract B {}"))
	assert.Equal(t, map[string]string{"/a.sol": "contract B {}"}, c.Sources())
}

func TestConfig_Text_unknown(t *testing.T) {
	c := newConfig(t)

	_, err := c.Text("file:///missing.sol")
	require.Error(t, err)

	rpcErr, ok := errors.Cause(err).(*lsp.Error)
	require.True(t, ok)
	assert.Equal(t, lsp.RequestFailed, rpcErr.Code)
	assert.Equal(t, "Unknown file: file:///missing.sol", rpcErr.Message)
}

func TestConfig_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0755))
	path := filepath.Join(dir, "lib", "token.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Token {}"), 0644))

	c := newConfig(t)
	c.SetBasePath(dir)

	td, err := c.Load("lib/token.sol")
	require.NoError(t, err)
	assert.Equal(t, "lib/token.sol", td.Name())
	assert.Equal(t, "contract Token {}", td.String())

	doc, ok := c.Document("lib/token.sol")
	require.True(t, ok)
	assert.Equal(t, td.URI(), doc.URI())

	// The on-disk document is now addressable by its client URI.
	byURI, err := c.Text(td.URI())
	require.NoError(t, err)
	assert.Equal(t, "contract Token {}", byURI.String())

	_, err = c.Load("lib/missing.sol")
	require.Error(t, err)
	_, ok = c.Document("lib/missing.sol")
	assert.False(t, ok)
}

func TestConfig_Names(t *testing.T) {
	c := newConfig(t)
	c.SetBasePath("/work")

	for _, name := range []string{"c.sol", "a.sol", "b/b.sol"} {
		c.StoreTextDocumentItem(NewTextDocument("file:///work/"+name, ""))
	}

	assert.Equal(t, []string{"a.sol", "b/b.sol", "c.sol"}, c.Names())
}

func TestConfig_UpdateClientConfiguration(t *testing.T) {
	c := newConfig(t)
	assert.Empty(t, c.Settings())

	c.UpdateClientConfiguration(map[string]interface{}{"a": "b"})
	assert.Equal(t, map[string]interface{}{"a": "b"}, c.Settings())

	c.UpdateClientConfiguration(map[string]interface{}{"c": float64(1)})
	assert.Equal(t, map[string]interface{}{"c": float64(1)}, c.Settings())

	c.UpdateClientConfiguration(nil)
	assert.Empty(t, c.Settings())
}

func TestConfig_String(t *testing.T) {
	c := newConfig(t)
	c.SetBasePath("/work")
	c.UpdateClientConfiguration(map[string]interface{}{"a": "b"})

	got := c.String()

	expected := "{\"BasePath\":\"/work\",\"Settings\":{\"a\":\"b\"}}"
	assert.Equal(t, expected, got)
}
