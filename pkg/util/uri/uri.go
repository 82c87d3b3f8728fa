package uri

import (
	"net/url"
	"path/filepath"

	"github.com/pkg/errors"
)

const schemeFile = "file"

// ToPath converts URI to a filesystem path. Only file URIs are supported.
func ToPath(uriStr string) (string, error) {
	u, err := url.Parse(uriStr)
	if err != nil {
		return "", errors.Wrap(err, "parsing file URL")
	}

	if u.Scheme != schemeFile {
		return "", errors.Errorf("invalid file schema %q", u.Scheme)
	}

	return filepath.FromSlash(u.Path), nil
}

// FromPath converts a filesystem path to a file URI.
func FromPath(path string) string {
	u := url.URL{
		Scheme: schemeFile,
		Path:   filepath.ToSlash(path),
	}

	return u.String()
}

// IsFile returns true if uriStr is a file URI.
func IsFile(uriStr string) bool {
	_, err := ToPath(uriStr)
	return err == nil
}
