// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"recall/core"
	"recall/logparse"
	"recall/state"
	"recall/vectorstore"
)

// StoreOpener returns a vector store handle for a project's collection.
// The coordinator closes the handle when it is done with the project.
type StoreOpener func(project, collection string) (vectorstore.Store, error)

// FileReport records the outcome of ingesting one log file.
type FileReport struct {
	File    string
	Indexed int
	Err     error
}

// ProjectReport records the outcome of ingesting one project.
type ProjectReport struct {
	Project string
	Files   []FileReport
	Indexed int
}

// Failed returns the number of files that ended in an error.
func (r *ProjectReport) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Coordinator drives incremental ingestion across projects.
type Coordinator struct {
	logsDir        string
	states         *state.Manager
	open           StoreOpener
	pool           *ants.Pool
	retryAttempts  int
	retryBaseDelay time.Duration
	progressWriter io.Writer
	logger         *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithPoolSize sets the worker pool size for concurrent project
// ingestion. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "ingest-coordinator")
		return nil
	}
}

// WithRetry sets the retry policy for vector store writes.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Coordinator) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.retryAttempts = maxAttempts
		c.retryBaseDelay = baseDelay
		return nil
	}
}

// WithProgressWriter enables console progress reporting.
func WithProgressWriter(w io.Writer) Option {
	return func(c *Coordinator) error {
		c.progressWriter = w
		return nil
	}
}

// NewCoordinator creates an ingestion coordinator over the given logs
// directory.
func NewCoordinator(logsDir string, states *state.Manager, open StoreOpener, opts ...Option) (*Coordinator, error) {
	if states == nil {
		return nil, ErrStateManagerRequired
	}
	if open == nil {
		return nil, ErrStoreOpenerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		logsDir:        logsDir,
		states:         states,
		open:           open,
		pool:           pool,
		retryAttempts:  3,
		retryBaseDelay: time.Second,
		logger:         slog.Default().With("component", "ingest-coordinator"),
	}
	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	return c, nil
}

// Release releases the worker pool. The coordinator should not be used
// after calling Release.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// IngestProject ingests all log files of one project. When full is
// true, tracked offsets are discarded first and every file is re-read
// from the beginning.
//
// Per-file failures are captured in the report; the returned error
// covers only conditions that prevent ingestion entirely, such as a
// missing project directory or an unopenable store.
func (c *Coordinator) IngestProject(ctx context.Context, project string, full bool) (*ProjectReport, error) {
	dir := filepath.Join(c.logsDir, project)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, project)
		}
		return nil, err
	}

	files, err := logparse.DiscoverFiles(dir)
	if err != nil {
		return nil, err
	}

	st, err := c.states.Load(project)
	if err != nil {
		return nil, err
	}

	store, err := c.open(project, st.CollectionName)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var tracker *ProgressTracker
	if c.progressWriter != nil {
		tracker = NewProgressTracker(c.progressWriter, "files", len(files), 1)
		tracker.Start()
	}

	report := &ProjectReport{Project: project}
	for _, path := range files {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		indexed, err := c.ingestFile(ctx, store, project, path, full)
		report.Files = append(report.Files, FileReport{File: filepath.Base(path), Indexed: indexed, Err: err})
		report.Indexed += indexed
		if err != nil {
			c.logger.Error("file ingestion failed",
				"project", project, "file", filepath.Base(path), "error", err)
		}
		if tracker != nil {
			tracker.Increment(1)
		}
	}
	if tracker != nil {
		tracker.Finish()
	}

	c.logger.Info("project ingested",
		"project", project, "files", len(files), "indexed", report.Indexed, "failed", report.Failed())
	return report, nil
}

// ingestFile reads one file from its tracked offset and indexes any new
// messages. The file's offset advances to its size at scan time, and
// only after the store write succeeds.
func (c *Coordinator) ingestFile(ctx context.Context, store vectorstore.Store, project, path string, full bool) (int, error) {
	name := filepath.Base(path)

	if full {
		if err := c.states.ResetFile(project, name); err != nil {
			return 0, err
		}
	}

	offset, err := c.states.FileOffset(project, name)
	if err != nil {
		return 0, err
	}

	// Size is captured before scanning so that bytes appended during
	// the scan are left for the next run.
	size, err := logparse.FinalOffset(path)
	if err != nil {
		return 0, err
	}
	if size <= offset {
		return 0, nil
	}

	messages, err := c.collectMessages(path, offset)
	if err != nil {
		return 0, err
	}
	// A file that yields nothing ingestible is skipped entirely. No
	// progress entry exists until the first successful ingestion.
	if len(messages) == 0 {
		return 0, nil
	}

	indexed := 0
	err = RetryWithBackoff(ctx, func() error {
		n, indexErr := store.Index(ctx, messages)
		if indexErr != nil {
			return indexErr
		}
		indexed = n
		return nil
	}, c.retryAttempts, c.retryBaseDelay)
	if err != nil {
		return 0, err
	}

	if err := c.states.RecordProgress(project, name, size, indexed); err != nil {
		return indexed, err
	}
	return indexed, nil
}

// collectMessages scans a file from startOffset and extracts all
// indexable messages.
func (c *Coordinator) collectMessages(path string, startOffset int64) ([]*core.Message, error) {
	scanner, err := logparse.NewScanner(path, startOffset)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	var messages []*core.Message
	for scanner.Scan() {
		rec := scanner.Record()
		msg, ok := logparse.Extract(rec, filepath.Base(path))
		if !ok {
			continue
		}
		if err := core.ValidateMessage(msg); err != nil {
			c.logger.Debug("skipping invalid message",
				"file", filepath.Base(path), "line", rec.LineNumber, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// IngestAll ingests every project under the logs directory, fanning the
// projects out across the worker pool.
func (c *Coordinator) IngestAll(ctx context.Context, full bool) ([]*ProjectReport, error) {
	projects, err := logparse.ListProjects(c.logsDir)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		reports  []*ProjectReport
		firstErr error
	)
	for _, project := range projects {
		project := project
		wg.Add(1)
		submitErr := c.pool.Submit(func() {
			defer wg.Done()
			report, err := c.IngestProject(ctx, project, full)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Error("project ingestion failed", "project", project, "error", err)
				if firstErr == nil {
					firstErr = fmt.Errorf("project %s: %w", project, err)
				}
				return
			}
			reports = append(reports, report)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].Project < reports[j].Project })
	return reports, firstErr
}
