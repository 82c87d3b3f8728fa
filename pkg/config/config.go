package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/util/uri"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config holds the documents and client settings for the server.
type Config struct {
	basePath      string
	textDocuments map[string]TextDocument
	settings      map[string]interface{}
	logger        logrus.FieldLogger
}

// New creates an instance of Config.
func New(logger logrus.FieldLogger) *Config {
	return &Config{
		textDocuments: make(map[string]TextDocument),
		settings:      make(map[string]interface{}),
		logger:        logger.WithField("component", "config"),
	}
}

// SetBasePath sets the directory source unit names are relative to.
func (c *Config) SetBasePath(path string) {
	if path == "" {
		c.basePath = ""
		return
	}
	c.basePath = filepath.Clean(path)
}

// BasePath returns the base path.
func (c *Config) BasePath() string {
	return c.basePath
}

// SourceUnitName converts a client URI to the name the document is known
// by. Files under the base path are named relative to it. URIs that are not
// file URIs are used as is.
func (c *Config) SourceUnitName(uriStr string) string {
	path, err := uri.ToPath(uriStr)
	if err != nil {
		return uriStr
	}

	if c.basePath != "" {
		rel, err := filepath.Rel(c.basePath, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.ToSlash(path)
}

// StoreTextDocumentItem stores a text document item, replacing any text
// stored for the same document.
func (c *Config) StoreTextDocumentItem(td TextDocument) {
	td.name = c.SourceUnitName(td.uri)

	c.logger.WithFields(logrus.Fields{
		"name": td.name,
		"uri":  td.uri,
	}).Debug("storing text document")

	c.textDocuments[td.name] = td
}

// Text retrieves the text document for a client URI.
func (c *Config) Text(uriStr string) (*TextDocument, error) {
	td, ok := c.textDocuments[c.SourceUnitName(uriStr)]
	if !ok {
		return nil, lsp.NewError(lsp.RequestFailed, "Unknown file: %s", uriStr)
	}

	return &td, nil
}

// Document returns the text document with a source unit name.
func (c *Config) Document(name string) (*TextDocument, bool) {
	td, ok := c.textDocuments[name]
	if !ok {
		return nil, false
	}

	return &td, true
}

// Load reads a source unit from the file system and stores it. Relative
// names are resolved against the base path.
func (c *Config) Load(name string) (*TextDocument, error) {
	path := filepath.FromSlash(name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.basePath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading source unit %q", name)
	}

	c.logger.WithFields(logrus.Fields{
		"name": name,
		"path": path,
	}).Info("loaded text document from disk")

	td := TextDocument{
		name: name,
		uri:  uri.FromPath(path),
		text: string(data),
	}
	c.textDocuments[name] = td

	return &td, nil
}

// Names returns the names of all known documents in sorted order.
func (c *Config) Names() []string {
	var names []string
	for name := range c.textDocuments {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Sources returns the text of all known documents keyed by name.
func (c *Config) Sources() map[string]string {
	sources := make(map[string]string, len(c.textDocuments))
	for name, td := range c.textDocuments {
		sources[name] = td.text
	}

	return sources
}

// UpdateClientConfiguration replaces the client settings.
func (c *Config) UpdateClientConfiguration(settings map[string]interface{}) {
	if settings == nil {
		settings = make(map[string]interface{})
	}

	c.settings = settings
	c.logger.WithField("settings", c.String()).Debug("updated client configuration")
}

// Settings returns the client settings.
func (c *Config) Settings() map[string]interface{} {
	return c.settings
}

func (c *Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		panic(fmt.Sprintf("marshaling config to JSON: %v", err))
	}
	return string(data)
}

type configMarshaled struct {
	BasePath string
	Settings map[string]interface{}
}

// MarshalJSON marshals a config to JSON bytes.
func (c *Config) MarshalJSON() ([]byte, error) {
	cm := configMarshaled{
		BasePath: c.basePath,
		Settings: c.Settings(),
	}

	return json.Marshal(&cm)
}
