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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"recall/ai"
	"recall/ai/openai"
	"recall/config"
	"recall/core"
	"recall/ingest"
	"recall/logparse"
	"recall/query"
	"recall/state"
	"recall/vectorstore"
	storebadger "recall/vectorstore/badger"
	"recall/vectorstore/qdrant"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Semantic search over conversation logs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Ingest new log records into the vector store",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "project",
						Aliases: []string{"p"},
						Usage:   "Index only this project (default: all projects)",
					},
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Discard tracked offsets and re-read every file",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed store writes",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search indexed conversations",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "project",
						Aliases: []string{"p"},
						Usage:   "Search only these projects (default: all tracked projects)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   vectorstore.DefaultSearchLimit,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score for a hit",
						Value: vectorstore.DefaultScoreThreshold,
					},
					&cli.BoolFlag{
						Name:  "no-index",
						Usage: "Skip ingesting new records before searching",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show ingestion and collection status",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "project",
						Aliases: []string{"p"},
						Usage:   "Show only this project",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List projects with conversation logs",
				Action: listCommand,
			},
			{
				Name:   "drop",
				Usage:  "Delete a project's collection and ingestion state",
				Action: dropCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Aliases:  []string{"p"},
						Usage:    "Project whose index to delete",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// appEnv holds the wired dependencies for one command invocation.
type appEnv struct {
	cfg      *config.Config
	states   *state.Manager
	embedder ai.Embedder
	backends map[string]*storebadger.Backend
}

func newAppEnv(c *cli.Context) (*appEnv, error) {
	path := c.String("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(cfg.Embedding.Host),
		ai.WithEmbeddingModel(cfg.Embedding.Model),
		ai.WithDimension(cfg.Embedding.Dimension),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := ai.Shared(func() (ai.Embedder, error) {
		return openai.NewEmbedder(aiConfig)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &appEnv{
		cfg:      cfg,
		states:   state.NewManager(cfg.StateDir),
		embedder: embedder,
		backends: make(map[string]*storebadger.Backend),
	}, nil
}

func (a *appEnv) close() {
	for _, backend := range a.backends {
		backend.Close()
	}
}

// openStore builds a vector store handle for a project's collection,
// using the configured backend. Badger backends are cached per project
// so repeated opens within one command share the database handle.
func (a *appEnv) openStore(project, collection string) (vectorstore.Store, error) {
	switch a.cfg.Backend {
	case config.BackendQdrant:
		return qdrant.NewStore(qdrant.Config{
			URL:        a.cfg.Qdrant.URL,
			APIKey:     a.cfg.Qdrant.APIKey,
			Collection: collection,
			Dimension:  a.cfg.Embedding.Dimension,
			Timeout:    time.Duration(a.cfg.Qdrant.TimeoutSecs) * time.Second,
		}, a.embedder), nil
	case config.BackendBadger:
		backend, ok := a.backends[project]
		if !ok {
			var err error
			backend, err = storebadger.OpenBackend(a.states.DBPath(project), false)
			if err != nil {
				return nil, fmt.Errorf("failed to open database for %s: %w", project, err)
			}
			a.backends[project] = backend
		}
		return storebadger.NewStore(backend, collection, a.cfg.Embedding.Dimension, a.embedder), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", a.cfg.Backend)
	}
}

func (a *appEnv) newIngestCoordinator(c *cli.Context, progress bool) (*ingest.Coordinator, error) {
	var opts []ingest.Option
	// The search command has no retry flags; keep the defaults there.
	if retries := c.Int("max-retries"); retries > 0 {
		opts = append(opts, ingest.WithRetry(retries, c.Duration("retry-delay")))
	}
	if progress {
		opts = append(opts, ingest.WithProgressWriter(os.Stderr))
	}
	return ingest.NewCoordinator(a.cfg.LogsDir, a.states, a.openStore, opts...)
}

func indexCommand(c *cli.Context) error {
	env, err := newAppEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	coordinator, err := env.newIngestCoordinator(c, true)
	if err != nil {
		return err
	}
	defer coordinator.Release()

	var reports []*ingest.ProjectReport
	if project := c.String("project"); project != "" {
		report, err := coordinator.IngestProject(c.Context, project, c.Bool("full"))
		if err != nil {
			return err
		}
		reports = append(reports, report)
	} else {
		reports, err = coordinator.IngestAll(c.Context, c.Bool("full"))
		if err != nil {
			return err
		}
	}

	for _, report := range reports {
		fmt.Printf("%s: %d indexed across %d files", report.Project, report.Indexed, len(report.Files))
		if failed := report.Failed(); failed > 0 {
			fmt.Printf(" (%d failed)", failed)
		}
		fmt.Println()
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("search query is required")
	}
	queryText := strings.Join(c.Args().Slice(), " ")

	env, err := newAppEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	projects := c.StringSlice("project")

	// Pick up any freshly written log records first, so search always
	// sees the latest conversations.
	if !c.Bool("no-index") {
		coordinator, err := env.newIngestCoordinator(c, false)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			_, err = coordinator.IngestAll(c.Context, false)
		} else {
			for _, project := range projects {
				if _, perr := coordinator.IngestProject(c.Context, project, false); perr != nil {
					err = perr
					break
				}
			}
		}
		coordinator.Release()
		if err != nil {
			slog.Warn("pre-search ingestion failed, searching existing index", "error", err)
		}
	}

	qc, err := query.NewCoordinator(env.states, env.openStore, nil)
	if err != nil {
		return err
	}
	defer qc.Close()

	results, err := qc.Search(c.Context, queryText, projects, c.Int("limit"), float32(c.Float64("threshold")))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s %s:%d (%s)\n", i+1, r.Score, r.Project, r.FilePath, r.LineNumber, r.Role)
		fmt.Printf("   %s\n", r.Snippet)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	env, err := newAppEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	var projects []string
	if project := c.String("project"); project != "" {
		projects = []string{project}
	} else {
		projects, err = env.states.ListProjects()
		if err != nil {
			return err
		}
	}
	if len(projects) == 0 {
		fmt.Println("No indexed projects.")
		return nil
	}

	for _, project := range projects {
		stats, err := env.states.Stats(project)
		if err != nil {
			return err
		}
		store, err := env.openStore(project, stats.CollectionName)
		if err != nil {
			return err
		}
		storeStats, err := store.Stats(c.Context)
		store.Close()
		if err != nil {
			return fmt.Errorf("project %s: %w", project, err)
		}

		fmt.Printf("%s\n", project)
		fmt.Printf("  collection: %s (%s)\n", stats.CollectionName, storeStats.Status)
		fmt.Printf("  files tracked: %d\n", stats.FilesTracked)
		fmt.Printf("  messages indexed: %d\n", stats.TotalIndexed)
		fmt.Printf("  points stored: %d\n", storeStats.PointsCount)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	env, err := newAppEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	projects, err := logparse.ListProjects(env.cfg.LogsDir)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Printf("No projects with logs under %s\n", env.cfg.LogsDir)
		return nil
	}

	tracked, err := env.states.ListProjects()
	if err != nil {
		return err
	}
	indexed := make(map[string]bool, len(tracked))
	for _, p := range tracked {
		indexed[p] = true
	}

	for _, project := range projects {
		marker := " "
		if indexed[project] {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, project)
	}
	fmt.Println("\n* indexed")
	return nil
}

func dropCommand(c *cli.Context) error {
	env, err := newAppEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	project := c.String("project")
	st, err := env.states.Load(project)
	if err != nil {
		return err
	}

	store, err := env.openStore(project, st.CollectionName)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Drop(c.Context); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", st.CollectionName, err)
	}

	st.Files = make(map[string]*core.FileProgress)
	if err := env.states.Save(project, st); err != nil {
		return err
	}

	fmt.Printf("Dropped %s (collection %s)\n", project, st.CollectionName)
	return nil
}

func setup(c *cli.Context) error {
	// A missing .env file is fine; environment overrides are optional.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
