package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/infrastructure/catalog"
	"github.com/yourusername/pantry-bot/internal/infrastructure/ocr"
	"github.com/yourusername/pantry-bot/internal/infrastructure/storage"
	"github.com/yourusername/pantry-bot/internal/usecase"
)

func newInventory(t *testing.T, lines ...string) (usecase.InventoryUseCase, *storage.MemoryInventory) {
	t.Helper()
	store := storage.NewMemoryInventory(entity.Table{Items: []entity.Item{
		{Icon: "🧻", Name: "トイレットペーパー", Category: "日用品", ReserveCount: 0, RestockThreshold: 2},
		{Icon: "🥚", Name: "卵", Category: "食品", ReserveCount: 3, RestockThreshold: 1, ExpiryDate: "2000-01-01"},
	}})
	return usecase.NewInventoryUseCase(store, ocr.NewSimulated(0, store, lines...), catalog.Default()), store
}

func TestRunList(t *testing.T) {
	inv, _ := newInventory(t)
	var out bytes.Buffer
	require.NoError(t, runList(context.Background(), inv, &out))

	text := out.String()
	assert.Contains(t, text, "トイレットペーパー")
	assert.Contains(t, text, "OUT")
	assert.Contains(t, text, "shopping list (1)")
	assert.Contains(t, text, "🥚 卵 2000-01-01")
}

func TestWriteTable_AlignsWideRunes(t *testing.T) {
	var out bytes.Buffer
	writeTable(&out, [][]string{{"name", "n"}, {"卵", "1"}, {"milk", "2"}})
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	col := runewidth.StringWidth("name") + 2
	for _, l := range lines {
		assert.Equal(t, col, runewidth.StringWidth(l)-1, l)
	}
}

func TestRunExport(t *testing.T) {
	inv, _ := newInventory(t)
	dir := t.TempDir()

	path, err := runExport(context.Background(), inv, "csv", filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\xef\xbb\xbf")), "UTF-8 BOM")
	assert.Contains(t, string(data), "トイレットペーパー")

	_, err = runExport(context.Background(), inv, "pdf", filepath.Join(dir, "out.pdf"))
	assert.Error(t, err)
}

func TestRunScan_DryRunThenApply(t *testing.T) {
	inv, store := newInventory(t, "トイレットペーパー 12ロール 2点 598円", "レジ袋 3円")
	image := []byte("\x89PNG\r\n\x1a\nfake")

	var out bytes.Buffer
	require.NoError(t, runScan(context.Background(), inv, image, "", false, &out))
	assert.Contains(t, out.String(), "+ トイレットペーパー x2")
	assert.Contains(t, out.String(), "dry run")
	assert.Zero(t, store.Writes())

	out.Reset()
	require.NoError(t, runScan(context.Background(), inv, image, "", true, &out))
	assert.Contains(t, out.String(), "applied 1")
	table, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Items[0].ReserveCount)
}

func TestListCommand_MemoryDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("OCR_DRIVER", "off")
	t.Setenv("MEMORY_SEED_XLSX", "")
	t.Setenv("CATALOG_FILE", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"list"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "shopping list (0)")
}
