package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/common"
	"github.com/jorge-barreto/blogflow/internal/config"
	"github.com/jorge-barreto/blogflow/internal/docs"
	"github.com/jorge-barreto/blogflow/internal/pipeline"
	"github.com/jorge-barreto/blogflow/internal/runner"
	"github.com/jorge-barreto/blogflow/internal/scaffold"
	"github.com/jorge-barreto/blogflow/internal/state"
	"github.com/jorge-barreto/blogflow/internal/store"
	"github.com/jorge-barreto/blogflow/internal/ux"
	"github.com/jorge-barreto/blogflow/internal/workflow"
)

func main() {
	app := &cli.Command{
		Name:        "blogflow",
		Usage:       "Keyword-to-article content workflow",
		Description: "Run 'blogflow docs' for documentation on config, stages, and artifacts.",
		Commands: []*cli.Command{
			initCmd(),
			runCmd(),
			statusCmd(),
			articlesCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the workflow for a keyword",
		ArgsUsage: "<keyword>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "auto", Usage: "Choose keywords and titles without prompting"},
			&cli.IntFlag{Name: "retry", Usage: "Automatic retries per stage (overrides retry.max)"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus metrics on host:port"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			keyword := cmd.Args().First()
			if keyword == "" {
				return fmt.Errorf("keyword argument is required")
			}

			projectRoot, cfg, err := loadProject()
			if err != nil {
				return err
			}
			if cmd.IsSet("retry") {
				retry := int(cmd.Int("retry"))
				if retry < 0 {
					return fmt.Errorf("--retry must be >= 0")
				}
				cfg.Retry.Max = retry
			}
			if addr := cmd.String("metrics-addr"); addr != "" {
				cfg.Metrics.Addr = addr
			}

			logger, err := common.NewLogger(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			logger = logger.With(zap.String("project", cfg.Name))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			metrics := pipeline.NewMetrics("blogflow")
			if cfg.Metrics.Addr != "" {
				shutdown, err := serveMetrics(cfg.Metrics.Addr, metrics, logger)
				if err != nil {
					return err
				}
				defer shutdown()
			}

			client := pipeline.NewClient(pipeline.Options{
				Endpoints: cfg.EndpointMap(),
				Timeouts:  cfg.TimeoutMap(),
				Headers:   cfg.Headers,
				Breaker:   cfg.BreakerSettings(),
				Metrics:   metrics,
				Logger:    logger,
			})

			articles, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer articles.Close()

			r := &runner.Runner{
				Caller:   client,
				Content:  articles,
				Identity: workflow.StaticIdentity{ID: cfg.User.ID, SessionToken: cfg.User.SessionToken},
				Discovery: runner.DiscoveryOptions{
					Language: cfg.Discovery.Language,
					Country:  cfg.Discovery.Country,
					Depth:    cfg.Discovery.Depth,
					Limit:    cfg.Discovery.Limit,
				},
				MaxRetries:    cfg.Retry.Max,
				ArtifactsRoot: cfg.ArtifactsDir,
				Logger:        logger,
			}
			if cmd.Bool("auto") {
				r.Selector = runner.AutoSelector{}
			} else {
				prompt := runner.NewPromptSelector(os.Stdin, os.Stdout)
				defer prompt.Close()
				r.Selector = prompt
			}

			logger.Debug("starting run", zap.String("root", projectRoot), zap.String("store", cfg.Store.Driver))
			_, err = r.Run(ctx, keyword)
			return err
		},
	}
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the status of a run",
		ArgsUsage: "[workflow-id]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, cfg, err := loadProject()
			if err != nil {
				return err
			}

			id := cmd.Args().First()
			if id == "" {
				id, err = state.Latest(cfg.ArtifactsDir)
				if err != nil {
					return err
				}
			}
			runDir := state.RunDir(cfg.ArtifactsDir, id)
			st, err := state.Load(runDir)
			if err != nil {
				return fmt.Errorf("loading state: %w", err)
			}

			ux.RenderStatus(runner.Steps, st, runDir)
			return nil
		},
	}
}

func articlesCmd() *cli.Command {
	return &cli.Command{
		Name:  "articles",
		Usage: "List saved articles, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of articles"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, cfg, err := loadProject()
			if err != nil {
				return err
			}

			articles, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer articles.Close()

			list, err := articles.List(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			ux.ArticleTable(list)
			return nil
		},
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new .blogflow/ directory with example config",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'blogflow docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

// loadProject finds the project root, loads .env and the config.
func loadProject() (string, *config.Config, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return "", nil, err
	}
	if err := config.LoadEnv(projectRoot); err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(config.Path(projectRoot), projectRoot)
	if err != nil {
		return "", nil, fmt.Errorf("loading config: %w", err)
	}
	return projectRoot, cfg, nil
}

// findProjectRoot walks up from cwd looking for .blogflow/config.yaml.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(config.Path(dir)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s/%s found (searched from cwd to root)", config.Dir, config.ConfigFile)
		}
		dir = parent
	}
}
