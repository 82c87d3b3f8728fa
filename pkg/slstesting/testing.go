// Package slstesting contains helpers for tests.
package slstesting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Testdata returns the contents of a file in the testdata directory of the
// package under test.
func Testdata(t *testing.T, elem ...string) string {
	data, err := os.ReadFile(TestdataPath(elem...))
	require.NoError(t, err)
	return string(data)
}

// TestdataPath returns the path of a file in the testdata directory.
func TestdataPath(elem ...string) string {
	return filepath.Join(append([]string{"testdata"}, elem...)...)
}
