package text

import "github.com/pkg/errors"

// Splice returns source with the byte range [start, end) replaced by
// replacement.
func Splice(source string, start, end int, replacement string) (string, error) {
	if start < 0 || end < start || end > len(source) {
		return "", errors.Errorf("range [%d, %d) is outside of text with length %d",
			start, end, len(source))
	}

	return source[:start] + replacement + source[end:], nil
}
