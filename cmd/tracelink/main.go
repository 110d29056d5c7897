package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tracelink/internal/analysis"
	"github.com/standardbeagle/tracelink/internal/confidence"
	"github.com/standardbeagle/tracelink/internal/config"
	"github.com/standardbeagle/tracelink/internal/embedding"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/input"
	"github.com/standardbeagle/tracelink/internal/logging"
	"github.com/standardbeagle/tracelink/internal/similarity"
	"github.com/standardbeagle/tracelink/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	// The default file is optional; an explicit one must exist
	if !c.IsSet("config") && !fileExists(configPath) {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := c.String("log-format"); format != "" {
		cfg.Logging.Format = format
	}
	if c.IsSet("aggregator") {
		cfg.Confidence.Aggregator = c.String("aggregator")
	}
	if c.IsSet("strategy") {
		cfg.Similarity.Strategy = c.String("strategy")
	}
	if measures := c.StringSlice("measure"); len(measures) > 0 {
		cfg.Similarity.Measures = measures
	}
	if c.IsSet("workers") {
		cfg.Recommendation.Workers = c.Int("workers")
		cfg.Connection.Workers = c.Int("workers")
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func initLogging(c *cli.Context, cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Logging.Format, c.App.ErrWriter)
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "tracelink",
		Usage:                  "Link documentation to architecture models and report inconsistencies",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml)",
				Value:   config.DefaultFileName,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json (overrides config)",
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			measuresCommand(),
			importVectorsCommand(),
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					return nil
				},
			},
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run trace link recovery and inconsistency detection",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "text",
				Aliases:  []string{"t"},
				Usage:    "Annotated documentation file (YAML or JSON)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "model",
				Aliases:  []string{"m"},
				Usage:    "Architecture model file (YAML or JSON)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "diagrams",
				Usage: "Optional diagram elements file",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or csv",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "aggregator",
				Usage: "Confidence aggregator: " + strings.Join(confidence.Names(), ", "),
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Similarity strategy: " + strings.Join(similarity.RegisteredStrategies(), ", "),
			},
			&cli.StringSliceFlag{
				Name:  "measure",
				Usage: "Similarity measure, repeatable (replaces the configured list)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel workers per stage (0 = one per CPU)",
			},
			&cli.BoolFlag{
				Name:  "fail-on-findings",
				Usage: "Exit with status 2 when inconsistencies are found",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	if format != "text" && format != "json" && format != "csv" {
		return fmt.Errorf("unknown format %q (text, json or csv)", format)
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if err := initLogging(c, cfg); err != nil {
		return err
	}

	analyzer, err := analysis.New(cfg)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	doc, err := input.LoadDocument(c.String("text"))
	if err != nil {
		return err
	}
	entities, err := input.LoadModel(c.String("model"))
	if err != nil {
		return err
	}
	diagrams, err := input.LoadDiagrams(c.String("diagrams"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := analyzer.Run(ctx, analysis.Inputs{Document: doc, Entities: entities, Diagrams: diagrams})
	if err != nil {
		return err
	}

	w := c.App.Writer
	if path := c.String("output"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeReport(w, state, format); err != nil {
		return err
	}
	if c.Bool("fail-on-findings") && len(state.Findings()) > 0 {
		return cli.Exit(fmt.Sprintf("%d inconsistencies found", len(state.Findings())), 2)
	}
	return nil
}

func measuresCommand() *cli.Command {
	return &cli.Command{
		Name:  "measures",
		Usage: "List registered similarity measures, strategies and aggregators",
		Action: func(c *cli.Context) error {
			w := c.App.Writer
			fmt.Fprintf(w, "measures:    %s\n", strings.Join(similarity.RegisteredMeasures(), ", "))
			fmt.Fprintf(w, "strategies:  %s\n", strings.Join(similarity.RegisteredStrategies(), ", "))
			fmt.Fprintf(w, "aggregators: %s\n", strings.Join(confidence.Names(), ", "))
			return nil
		},
	}
}

func importVectorsCommand() *cli.Command {
	return &cli.Command{
		Name:      "import-vectors",
		Usage:     "Load word vectors (word2vec/GloVe text format) into the configured embedding store",
		ArgsUsage: "<vectors.txt>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one vectors file", 1)
			}
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			if err := initLogging(c, cfg); err != nil {
				return err
			}

			store, err := embedding.Open(cfg.Embedding, logging.New("embedding"))
			if err != nil {
				return err
			}
			if store == nil {
				return cli.Exit("embedding.backend is none; configure memory, badger or sqlite", 1)
			}
			defer store.Close()

			f, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := embedding.Import(store, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d vectors into %s store\n", n, cfg.Embedding.Backend)
			return nil
		},
	}
}

func main() {
	app := newApp()
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		// ExitCoder errors already exited inside RunContext
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error classes to process status; 2 is reserved for --fail-on-findings
func exitCode(err error) int {
	switch tlerrors.TypeOf(err) {
	case tlerrors.ErrorTypeConfig:
		return 3
	case tlerrors.ErrorTypeInput:
		return 4
	default:
		return 1
	}
}
