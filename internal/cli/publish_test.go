package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animpub/internal/guard"
	"github.com/roach88/animpub/internal/testutil"
)

const (
	id1 = "00000000-0000-4000-8000-000000000001"
	id2 = "00000000-0000-4000-8000-000000000002"
)

var heroLayers = []testutil.Layer{
	{Name: "slot1figureFace2", Fill: "#ACAC31"},
	{Name: "slot1glasses"},
}

// writeExport writes a generated export with the hero layers into dir.
func writeExport(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	base := name[:len(name)-len(filepath.Ext(name))]
	require.NoError(t, os.WriteFile(path, []byte(testutil.Export(base, heroLayers...)), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPublish_Text(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.js")

	stdout, _, err := execute(t, fixedIDs(id1), "publish", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Published!\n")
	assert.Contains(t, stdout, "composition: "+id1+"\n")
	assert.Contains(t, stdout, "slots:       3\n")
	assert.Contains(t, stdout, "  color    slot=1 color=5 \"Color 5 (Skin)\"\n")
	assert.Contains(t, stdout, "  feature  slot=1 Face range=3\n")
	assert.Contains(t, stdout, "  toggle   slot=1 glasses\n")
	assert.True(t, guard.Marked(readFile(t, path)))
}

func TestPublish_JSON(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.js")

	stdout, _, err := execute(t, fixedIDs(id1), "--format", "json", "publish", path)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			File          string            `json:"file"`
			CompositionID string            `json:"composition_id"`
			Slots         []json.RawMessage `json:"slots"`
			Manifest      struct {
				Hash string `json:"hash"`
			} `json:"manifest"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, path, resp.Data.File)
	assert.Equal(t, id1, resp.Data.CompositionID)
	assert.Len(t, resp.Data.Slots, 3)
	assert.Len(t, resp.Data.Manifest.Hash, 64)
	assert.JSONEq(t, `{"name":"glasses","slot":1,"type":"toggle","layer":"glasses"}`, string(resp.Data.Slots[2]))
}

func TestPublish_YAML(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.js")

	stdout, _, err := execute(t, fixedIDs(id1), "--format", "yaml", "publish", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "status: ok\n")
	assert.Contains(t, stdout, "composition_id: ")
	assert.Contains(t, stdout, id1)
	assert.NotContains(t, stdout, "Published!")
}

func TestPublish_SecondRunFails(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.js")

	_, _, err := execute(t, fixedIDs(id1), "publish", path)
	require.NoError(t, err)
	first := readFile(t, path)

	stdout, _, err := execute(t, fixedIDs(id2), "publish", path)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [ALREADY_PROCESSED]")
	assert.Contains(t, stdout, "Usage: animpub publish [-fc] <file.js>")
	assert.Equal(t, first, readFile(t, path))
}

func TestPublish_Force(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.js")

	_, _, err := execute(t, fixedIDs(id1), "publish", path)
	require.NoError(t, err)

	stdout, _, err := execute(t, fixedIDs(id2), "publish", "-f", path)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Published!")
	assert.Contains(t, stdout, "composition: "+id1)
}

func TestPublish_Copy(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeExport(t, dir, "hero.js")
	original := readFile(t, path)

	_, _, err := execute(t, fixedIDs(id1), "publish", "-c", path)
	require.NoError(t, err)

	assert.Equal(t, original, readFile(t, filepath.Join(dir, "hero.orig.js")))
	assert.NotEqual(t, original, readFile(t, path))
}

func TestPublish_CopyHonorsConfiguredSuffix(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeExport(t, dir, "hero.js")
	t.Setenv("ANIMPUB_BACKUP_SUFFIX", ".before")

	_, _, err := execute(t, fixedIDs(id1), "publish", "-fc", path)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "hero.before.js"))
	assert.NoError(t, err)
}

func TestPublish_ConfiguredCacheDir(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.js")
	t.Setenv("ANIMPUB_CACHE_DIR", "cdn/")

	_, _, err := execute(t, fixedIDs(id1), "publish", path)
	require.NoError(t, err)

	assert.Contains(t, readFile(t, path), `{src:"cdn/hero_atlas_1.png`)
}

func TestPublish_UnsupportedFileType(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.txt")

	stdout, _, err := execute(t, fixedIDs(id1), "publish", path)

	require.Error(t, err)
	assert.Contains(t, stdout, "Error [UNSUPPORTED_FILE_TYPE]")
	assert.Contains(t, stdout, "Usage: animpub publish")
}

func TestPublish_MissingFile(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, fixedIDs(id1), "publish", filepath.Join(t.TempDir(), "missing.js"))

	require.Error(t, err)
	assert.Contains(t, stdout, "Error [IO_FAILURE]")
}

func TestPublish_JSONError(t *testing.T) {
	isolate(t)
	path := writeExport(t, t.TempDir(), "hero.txt")

	stdout, _, err := execute(t, fixedIDs(id1), "--format", "json", "publish", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
}

func TestPublish_RequiresOneArgument(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, nil, "publish")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
