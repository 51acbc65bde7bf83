package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_JSONAndYAMLShareFieldNames(t *testing.T) {
	v := map[string]any{"file_type": "csv", "total_rows": 3}

	var js bytes.Buffer
	require.NoError(t, render(&js, formatJSON, v))
	assert.Contains(t, js.String(), `"file_type": "csv"`)

	var ym bytes.Buffer
	require.NoError(t, render(&ym, formatYAML, v))
	assert.Contains(t, ym.String(), "file_type: csv")
	assert.Contains(t, ym.String(), "total_rows: 3")
}

func TestGlobalOptions_Validate(t *testing.T) {
	assert.NoError(t, (&globalOptions{output: "json"}).validate())
	assert.NoError(t, (&globalOptions{output: "yaml"}).validate())
	assert.Error(t, (&globalOptions{output: "xml"}).validate())
}

func TestCleanCommand_WritesCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sales.csv")
	out := filepath.Join(dir, "sales.clean.csv")
	require.NoError(t, os.WriteFile(in, []byte("region,units,Unnamed: 2\nnorth,10,\n,,\nsouth,7,\n"), 0o644))

	opts := &globalOptions{output: formatJSON}
	cmd := newCleanCmd(opts)
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{in, "--out", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "region,units\nnorth,10\nsouth,7\n", string(data))
	assert.True(t, strings.HasPrefix(stderr.String(), "wrote 2 rows x 2 columns"))
}

func TestCleanCommand_Advanced(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sales.csv")
	out := filepath.Join(dir, "sales.clean.csv")
	require.NoError(t, os.WriteFile(in, []byte("Region Name,Units\nnorth,10\nnorth,10\nsouth,\n"), 0o644))

	cmd := newCleanCmd(&globalOptions{output: formatJSON})
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{in, "--advanced", "--out", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "region_name,units\nnorth,10\nsouth,10\n", string(data))
	assert.Contains(t, stderr.String(), "Removed 1 duplicate rows")
	assert.Contains(t, stderr.String(), "wrote 2 rows x 2 columns")

	stored, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "Region Name,Units\nnorth,10\nnorth,10\nsouth,\n", string(stored))
}

func TestCleanCommand_RejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(in, []byte("a\n1\n"), 0o644))

	cmd := newCleanCmd(&globalOptions{output: formatJSON})
	cmd.SetArgs([]string{in, "--out", filepath.Join(dir, "sales.json")})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestPreviewCommand_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(in, []byte("%PDF"), 0o644))

	cmd := newPreviewCmd(&globalOptions{output: formatJSON})
	cmd.SetArgs([]string{in})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}
