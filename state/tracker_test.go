package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionName(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		expected string
	}{
		{name: "simple", project: "myapp", expected: "recall_myapp"},
		{name: "dashes become underscores", project: "my-app", expected: "recall_my_app"},
		{name: "slashes become underscores", project: "org/repo", expected: "recall_org_repo"},
		{name: "leading separators trimmed", project: "-home-user-proj", expected: "recall_home_user_proj"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CollectionName(tt.project))
		})
	}
}

func TestManager_LoadMissingReturnsDefault(t *testing.T) {
	m := NewManager(t.TempDir())

	st, err := m.Load("myapp")
	require.NoError(t, err)
	assert.Equal(t, "recall_myapp", st.CollectionName)
	assert.Empty(t, st.Files)
}

func TestManager_RecordProgressRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.RecordProgress("myapp", "session-a.jsonl", 1024, 7))

	offset, err := m.FileOffset("myapp", "session-a.jsonl")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), offset)

	st, err := m.Load("myapp")
	require.NoError(t, err)
	require.Contains(t, st.Files, "session-a.jsonl")
	assert.Equal(t, 7, st.Files["session-a.jsonl"].IndexedCount)
	assert.NotEmpty(t, st.Files["session-a.jsonl"].LastIndexed)
}

func TestManager_RecordProgressAccumulatesCount(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.RecordProgress("myapp", "a.jsonl", 500, 3))
	require.NoError(t, m.RecordProgress("myapp", "a.jsonl", 900, 2))

	st, err := m.Load("myapp")
	require.NoError(t, err)
	assert.Equal(t, int64(900), st.Files["a.jsonl"].LastByteOffset)
	assert.Equal(t, 5, st.Files["a.jsonl"].IndexedCount)
}

func TestManager_CollectionNameIsStable(t *testing.T) {
	m := NewManager(t.TempDir())

	st, err := m.Load("myapp")
	require.NoError(t, err)
	st.CollectionName = "recall_renamed"
	require.NoError(t, m.Save("myapp", st))

	// Later loads must keep the persisted name, never re-derive it.
	reloaded, err := m.Load("myapp")
	require.NoError(t, err)
	assert.Equal(t, "recall_renamed", reloaded.CollectionName)
}

func TestManager_FileOffsetUnknownFile(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.RecordProgress("myapp", "a.jsonl", 100, 1))

	offset, err := m.FileOffset("myapp", "never-seen.jsonl")
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)
}

func TestManager_ResetFile(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.RecordProgress("myapp", "a.jsonl", 100, 4))
	require.NoError(t, m.ResetFile("myapp", "a.jsonl"))

	offset, err := m.FileOffset("myapp", "a.jsonl")
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)

	st, err := m.Load("myapp")
	require.NoError(t, err)
	assert.NotContains(t, st.Files, "a.jsonl")
}

func TestManager_ResetFileUnknownIsNoOp(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.ResetFile("myapp", "missing.jsonl"))
}

func TestManager_ListProjects(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.RecordProgress("beta", "a.jsonl", 10, 1))
	require.NoError(t, m.RecordProgress("alpha", "b.jsonl", 20, 1))

	// A stray directory without a state file is not a project.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	projects, err := m.ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, projects)
}

func TestManager_ListProjectsMissingBaseDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "does-not-exist"))

	projects, err := m.ListProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestManager_Stats(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.RecordProgress("myapp", "a.jsonl", 100, 3))
	require.NoError(t, m.RecordProgress("myapp", "b.jsonl", 200, 5))

	stats, err := m.Stats("myapp")
	require.NoError(t, err)
	assert.Equal(t, "recall_myapp", stats.CollectionName)
	assert.Equal(t, 2, stats.FilesTracked)
	assert.Equal(t, 8, stats.TotalIndexed)
}

func TestManager_StateFileFormat(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.RecordProgress("myapp", "a.jsonl", 42, 1))

	data, err := os.ReadFile(filepath.Join(dir, "myapp", "state.json"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "recall_myapp", doc["collection_name"])

	files, ok := doc["files"].(map[string]any)
	require.True(t, ok)
	entry, ok := files["a.jsonl"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), entry["last_byte_offset"])
	assert.Equal(t, float64(1), entry["indexed_count"])
	assert.Contains(t, entry, "last_indexed")
}

func TestManager_LoadCorruptState(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "myapp"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "myapp", "state.json"), []byte("{not json"), 0644))

	_, err := m.Load("myapp")
	assert.Error(t, err)
}
