package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv names the variable that makes AssertGolden rewrite its
// fixture instead of comparing against it.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

// AssertGolden compares rendered output with testdata/<name> in the calling
// package. Mismatches are reported as a line diff.
func AssertGolden(t *testing.T, name, output string) {
	t.Helper()
	path := filepath.Join("testdata", name)
	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "create golden dir")
		require.NoError(t, os.WriteFile(path, []byte(output), 0o644), "update golden %s", name)
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err, "read golden %s", name)
	require.Equal(t, string(want), output, "rendered output differs from %s", name)
}
