// Package state persists per-project ingestion progress.
//
// Each project owns one JSON state file holding its collection name and
// a per-file record of the last consumed byte offset and cumulative
// indexed count. Progress is recorded only after a successful vector
// store write, so a crash never advances an offset past unindexed data.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"recall/core"
)

const stateFileName = "state.json"

// CollectionName derives the vector store collection name for a
// project. The name is assigned on first load and persisted; it must
// never be regenerated afterwards, since it addresses the project's
// vectors.
func CollectionName(project string) string {
	safe := strings.ReplaceAll(project, "/", "-")
	safe = strings.ReplaceAll(safe, "-", "_")
	safe = strings.TrimLeft(safe, "_")
	return "recall_" + safe
}

// Manager owns the per-project state files under a base directory.
//
// All updates are whole-document read-modify-writes serialized by an
// internal mutex, so file updates within one Manager never interleave.
// The design still assumes at most one ingestion process per project;
// cross-process coordination is the caller's concern.
type Manager struct {
	baseDir string
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewManager creates a state manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir: baseDir,
		logger:  slog.Default().With("component", "state-manager"),
	}
}

// projectDir returns the state directory for a project, sanitized for
// the filesystem.
func (m *Manager) projectDir(project string) string {
	safe := strings.TrimLeft(strings.ReplaceAll(project, "/", "-"), "-")
	return filepath.Join(m.baseDir, safe)
}

func (m *Manager) stateFile(project string) string {
	return filepath.Join(m.projectDir(project), stateFileName)
}

// DBPath returns the directory for a project's embedded vector
// database.
func (m *Manager) DBPath(project string) string {
	return filepath.Join(m.projectDir(project), "vectors")
}

// Load reads a project's state, returning a fresh default with a newly
// derived collection name when no state file exists yet.
func (m *Manager) Load(project string) (*core.ProjectState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(project)
}

// load reads without locking. Callers must hold m.mu.
func (m *Manager) load(project string) (*core.ProjectState, error) {
	data, err := os.ReadFile(m.stateFile(project))
	if err != nil {
		if os.IsNotExist(err) {
			return &core.ProjectState{
				CollectionName: CollectionName(project),
				Files:          make(map[string]*core.FileProgress),
			}, nil
		}
		return nil, err
	}

	var st core.ProjectState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Files == nil {
		st.Files = make(map[string]*core.FileProgress)
	}
	return &st, nil
}

// Save persists a project's state, creating the project directory as
// needed.
func (m *Manager) Save(project string, st *core.ProjectState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(project, st)
}

// save writes without locking. Callers must hold m.mu.
func (m *Manager) save(project string, st *core.ProjectState) error {
	if err := os.MkdirAll(m.projectDir(project), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.stateFile(project), data, 0644)
}

// RecordProgress updates a file's tracked state after a successful
// store write. newOffset must be the file's end-of-data offset at scan
// time; it overwrites the stored offset. deltaCount is added to the
// file's running total.
func (m *Manager) RecordProgress(project, filename string, newOffset int64, deltaCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(project)
	if err != nil {
		return err
	}

	progress, ok := st.Files[filename]
	if !ok {
		progress = &core.FileProgress{}
		st.Files[filename] = progress
	}
	progress.LastByteOffset = newOffset
	progress.IndexedCount += deltaCount
	progress.LastIndexed = time.Now().UTC().Format(time.RFC3339)

	if err := m.save(project, st); err != nil {
		return err
	}
	m.logger.Debug("recorded progress",
		"project", project, "file", filename, "offset", newOffset, "added", deltaCount)
	return nil
}

// ResetFile clears a file's tracked state so the next ingestion starts
// from the beginning with a zero count. Used for forced full rebuilds.
func (m *Manager) ResetFile(project, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(project)
	if err != nil {
		return err
	}
	if _, ok := st.Files[filename]; !ok {
		return nil
	}
	delete(st.Files, filename)
	return m.save(project, st)
}

// FileOffset returns the last indexed byte offset for a file, or 0 for
// a file that has never been ingested.
func (m *Manager) FileOffset(project, filename string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(project)
	if err != nil {
		return 0, err
	}
	if progress, ok := st.Files[filename]; ok {
		return progress.LastByteOffset, nil
	}
	return 0, nil
}

// ListProjects returns the names of all projects with a state file.
func (m *Manager) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(m.baseDir, entry.Name(), stateFileName)); err == nil {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// ProjectStats summarizes a project's tracked ingestion state.
type ProjectStats struct {
	Project        string
	CollectionName string
	FilesTracked   int
	TotalIndexed   int
}

// Stats aggregates a project's tracked state.
func (m *Manager) Stats(project string) (*ProjectStats, error) {
	st, err := m.Load(project)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, progress := range st.Files {
		total += progress.IndexedCount
	}
	return &ProjectStats{
		Project:        project,
		CollectionName: st.CollectionName,
		FilesTracked:   len(st.Files),
		TotalIndexed:   total,
	}, nil
}
