package logparse

import (
	"os"
	"path/filepath"
	"sort"
)

// DiscoverFiles returns all JSONL log files in a project directory,
// sorted by name. A missing directory yields an empty list.
func DiscoverFiles(projectDir string) ([]string, error) {
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		return nil, nil
	}

	matches, err := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ListProjects returns the names of all directories under logsDir that
// contain at least one JSONL log file, sorted.
func ListProjects(logsDir string) ([]string, error) {
	entries, err := os.ReadDir(logsDir)
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
		files, err := DiscoverFiles(filepath.Join(logsDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// FinalOffset returns the end-of-data offset of a log file, i.e. its
// current size. Progress is recorded against this value after a
// successful index write.
func FinalOffset(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
