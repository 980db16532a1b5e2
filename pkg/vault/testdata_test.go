package vault_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/macropower/notemover/pkg/vault"
)

// newVault writes files (vault path to content) under a temp dir and opens
// it. Paths ending in "/" create empty directories.
func newVault(t *testing.T, files map[string]string, opts ...vault.Opt) *vault.Vault {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}

		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	v, err := vault.Open(dir, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, v.Close())
	})

	return v
}
