package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibrary(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, lib.Dzikir)
	assert.NotEmpty(t, lib.Renungan)

	lib.WithPicker(func(int) int { return 0 })
	assert.Equal(t, lib.Dzikir[0], lib.RandomDzikir())
	assert.Equal(t, lib.Renungan[0], lib.RandomRenungan())
}

func TestRandomStaysInRange(t *testing.T) {
	lib, err := Parse([]byte("dzikir: [a, b, c]\n"))
	require.NoError(t, err)
	for range 50 {
		assert.Contains(t, []string{"a", "b", "c"}, lib.RandomDzikir())
	}
	assert.Empty(t, lib.RandomRenungan())
}

func TestParseDropsBlankEntries(t *testing.T) {
	lib, err := Parse([]byte("renungan:\n  - \"  \"\n  - sabar\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sabar"}, lib.Renungan)

	_, err = Parse([]byte("dzikir: {"))
	assert.Error(t, err)
}

func TestLoadFileFallsBackToBundled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dzikir: [custom]\n"), 0o600))

	lib, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, lib.Dzikir)

	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, def.Renungan, lib.Renungan)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
