package symbol

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Device.kicad_sym")
	require.NoError(t, os.WriteFile(path, []byte(deviceSource), 0o644))

	c := NewCache(0, 0)
	first, err := c.Load(path)
	require.NoError(t, err)
	second, err := c.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())

	// A rewritten file is parsed again.
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	third, err := c.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 1, c.Len())

	c.Forget(path)
	assert.Equal(t, 0, c.Len())
}

func TestCacheLoadErrors(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(2, 0)

	_, err := c.Load(filepath.Join(dir, "missing.kicad_sym"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "Broken.kicad_sym")
	require.NoError(t, os.WriteFile(broken, []byte("(kicad_symbol_lib (symbol"), 0o644))
	_, err = c.Load(broken)
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCacheEviction(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(1, 0)
	for _, name := range []string{"A.kicad_sym", "B.kicad_sym"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(deviceSource), 0o644))
		_, err := c.Load(path)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.Len())
}
