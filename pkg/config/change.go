package config

import (
	"bytes"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/bryanl/solidity-language-server/pkg/lsp"
	"github.com/bryanl/solidity-language-server/pkg/util/position"
	"github.com/bryanl/solidity-language-server/pkg/util/text"
)

// UpdateTextDocumentItem applies a batch of content changes to a stored
// document. Changes are applied in order, each against the result of the
// previous one. A change without a range replaces the whole text. If any
// change is invalid the document is left untouched.
func (c *Config) UpdateTextDocumentItem(uriStr string, changes []json.RawMessage) error {
	td, err := c.Text(uriStr)
	if err != nil {
		return err
	}

	buf := td.text
	for _, raw := range changes {
		buf, err = applyChange(buf, raw)
		if err != nil {
			return err
		}
	}

	td.text = buf
	c.textDocuments[td.name] = *td

	c.logger.WithFields(logrus.Fields{
		"name":    td.name,
		"changes": len(changes),
	}).Debug("updated text document")

	return nil
}

func applyChange(buf string, raw json.RawMessage) (string, error) {
	var change map[string]json.RawMessage
	if err := json.Unmarshal(raw, &change); err != nil || change == nil {
		return "", lsp.NewError(lsp.RequestFailed, "Invalid content reference.")
	}

	var newText string
	if v, ok := change["text"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &newText); err != nil {
			return "", lsp.NewError(lsp.RequestFailed, "Invalid content reference.")
		}
	}

	r, ok := change["range"]
	if !ok || isNull(r) {
		return newText, nil
	}

	start, end, ok := position.ParseRange(buf, r)
	if !ok {
		return "", lsp.NewError(lsp.RequestFailed, "Invalid source range: %s", compact(r))
	}

	return text.Splice(buf, start, end, newText)
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}

	return buf.String()
}
