package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.True(t, c.IsPerishable("food"))
	assert.True(t, c.IsPerishable(" 食品 "))
	assert.False(t, c.IsPerishable("日用品"))
}

func TestParse_CustomSections(t *testing.T) {
	raw := []byte(`
perishable: [dairy, 野菜]
aliases:
  醤油: しょうゆ
  こいくちしょうゆ: しょうゆ
icons:
  dairy: "🥛"
`)
	c, err := Parse(raw)
	require.NoError(t, err)

	assert.True(t, c.IsPerishable("Dairy"))
	assert.False(t, c.IsPerishable("food"))
	assert.Equal(t, "🥛", c.IconFor("dairy"))

	pairs := c.AliasPairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "こいくちしょうゆ", pairs[0][0], "longest alias first")
	assert.Equal(t, "しょうゆ", pairs[1][1])
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("perishable: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestNilCatalogIsSafe(t *testing.T) {
	var c *Catalog
	assert.False(t, c.IsPerishable("food"))
	assert.Empty(t, c.IconFor("food"))
	assert.Nil(t, c.AliasPairs())
}
