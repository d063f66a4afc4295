package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/ccqa"
	"github.com/fwojciec/ccqa/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: JSON Output
// Pages are written as one pretty-printed JSON array that replaces the target.

func TestWriter_WritesPrettyJSONArray(t *testing.T) {
	t.Parallel()

	// Given a writer targeting a new file
	path := filepath.Join(t.TempDir(), "out.json")
	w := fs.NewWriter(path)

	// When I write two pages
	err := w.WritePages(context.Background(), []*ccqa.Page{
		{MHTML: `<div itemtype="https://schema.org/Question">A &amp; B</div>`, Language: "en", URI: "https://example.com/q/1", IPAddress: "192.0.2.1"},
		{MHTML: "<div>x</div>", Language: ccqa.LanguageUnknown, URI: "https://example.com/q/2"},
	})

	// Then the file holds a two-space indented array
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[\n  {\n    \"mhtml\": ")

	// And markup is not escaped for HTML
	assert.Contains(t, string(data), `"mhtml": "<div itemtype=\"https://schema.org/Question\">A &amp; B</div>"`)
	assert.NotContains(t, string(data), `<`)

	// And it decodes back to the pages in order
	var got []ccqa.Page
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "en", got[0].Language)
	assert.Equal(t, "192.0.2.1", got[0].IPAddress)
	assert.Equal(t, "-", got[1].Language)
	assert.Equal(t, "", got[1].IPAddress)
}

func TestWriter_UsesExpectedFieldNames(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")

	err := fs.NewWriter(path).WritePages(context.Background(), []*ccqa.Page{
		{MHTML: "m", Language: "l", URI: "u", IPAddress: "i"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []map[string]string{{"mhtml": "m", "language": "l", "uri": "u", "ip_address": "i"}}, raw)
}

func TestWriter_WritesEmptyArrayForNoPages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")

	err := fs.NewWriter(path).WritePages(context.Background(), nil)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriter_TruncatesExistingFile(t *testing.T) {
	t.Parallel()

	// Given an existing output file with longer content
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"mhtml":"previous run with a lot more content"}]`), 0o644))

	// When I write a shorter result
	err := fs.NewWriter(path).WritePages(context.Background(), []*ccqa.Page{})

	// Then only the new content remains
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	// And no temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriter_FailsForMissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.json")

	err := fs.NewWriter(path).WritePages(context.Background(), []*ccqa.Page{})

	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
