package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/given-names/internal/application"
	"github.com/eugenenazirov/given-names/internal/config"
	"github.com/eugenenazirov/given-names/internal/logging"
	"github.com/eugenenazirov/given-names/internal/sparql"
)

var (
	signalNotify = signal.Notify
	signalStop   = signal.Stop

	// bootstrapLogger reports problems found while resolving the
	// configuration, before the configured logger exists.
	bootstrapLogger = func() (*zap.Logger, error) { return logging.New(false) }
)

func main() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		kingpin.Fatalf("%v", err)
	}
}

type cli struct {
	app *kingpin.Application

	root *string

	run          *kingpin.CmdClause
	runSeeds     *string
	runExec      *bool
	runQueries   *int
	runOverrides *[]string

	semantic          *kingpin.CmdClause
	semanticConcepts  *[]string
	semanticLanguages *[]string
	semanticLimit     *int
	semanticExec      *bool
	semanticOverrides *[]string

	show          *kingpin.CmdClause
	showFormat    *string
	showOverrides *[]string
}

func newCLI() *cli {
	c := &cli{
		app: kingpin.New("givennames", "Given names enrichment from the Wikidata SPARQL endpoint. "+
			"Configuration overrides go after --, e.g. -- --sparql.rateLimitMs 2000 --locale ca-ES"),
	}
	c.root = c.app.Flag("root", "Root directory holding config.json/.env; relative paths resolve against it").String()

	c.run = c.app.Command("run", "Estimate, and with --exec perform, the enrichment of a seed file")
	c.runSeeds = c.run.Arg("seeds", "Seed JSON file ({\"seeds\": [...]})").Required().String()
	c.runExec = c.run.Flag("exec", "Send the queries instead of only estimating").Bool()
	c.runQueries = c.run.Flag("queries", "Queries per seed used for the estimate").Default("3").Int()
	c.runOverrides = c.run.Arg("overrides", "Configuration overrides").Strings()

	c.semantic = c.app.Command("semantic", "Print, and with --exec run, a query for given names named after a concept cluster")
	c.semanticConcepts = c.semantic.Flag("concept", "Root concept QID, e.g. Q729 (animal) or Q506 (flower); repeatable").Required().Strings()
	c.semanticLanguages = c.semantic.Flag("lang", "Label language, in order of preference; repeatable").Strings()
	c.semanticLimit = c.semantic.Flag("limit", "Maximum number of rows").Default("200").Int()
	c.semanticExec = c.semantic.Flag("exec", "Send the query and save the matches").Bool()
	c.semanticOverrides = c.semantic.Arg("overrides", "Configuration overrides").Strings()

	c.show = c.app.Command("config", "Print the resolved configuration")
	c.showFormat = c.show.Flag("format", "Output format").Default("json").Enum("json", "yaml")
	c.showOverrides = c.show.Arg("overrides", "Configuration overrides").Strings()
	return c
}

func execute(args []string, stdout io.Writer) error {
	c := newCLI()
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	rootPath := *c.root
	if rootPath == "" {
		if rootPath, err = os.Getwd(); err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
	}

	var overrides []string
	switch command {
	case c.run.FullCommand():
		overrides = *c.runOverrides
	case c.semantic.FullCommand():
		overrides = *c.semanticOverrides
	case c.show.FullCommand():
		overrides = *c.showOverrides
	}

	bootLogger, err := bootstrapLogger()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	manager := config.NewManager(
		config.WithArgs(overrides),
		config.WithLogger(bootLogger),
	)
	rc, err := manager.Config(rootPath)
	_ = bootLogger.Sync()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := rc.App()

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	reportConfig(rc, logger)

	switch command {
	case c.show.FullCommand():
		return printConfig(stdout, rc, *c.showFormat)
	case c.run.FullCommand():
		app, err := application.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize application: %w", err)
		}
		return runSeeds(app, stdout, *c.runSeeds, *c.runQueries, *c.runExec, logger)
	case c.semantic.FullCommand():
		opts := sparql.SemanticOptions{
			ConceptQIDs: *c.semanticConcepts,
			Languages:   *c.semanticLanguages,
			Limit:       *c.semanticLimit,
		}
		if !*c.semanticExec {
			return printSemanticQuery(stdout, opts)
		}
		app, err := application.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize application: %w", err)
		}
		return runSemantic(app, stdout, opts, logger)
	}
	return fmt.Errorf("unknown command %q", command)
}

func reportConfig(rc *config.ResolvedConfig, logger *zap.Logger) {
	if extra, ok := rc.UnrecognizedArgs(); ok {
		logger.Warn("unrecognized configuration arguments", zap.Any("args", extra.Interface()))
	}
	if ignored := rc.IgnoredOverrides(); len(ignored) > 0 {
		logger.Warn("override file keys not in schema were ignored",
			zap.String("file", rc.OverridePath()),
			zap.Strings("keys", ignored),
		)
	}
	logger.Debug("configuration", zap.Any("config", rc.Map()))
}

func printConfig(w io.Writer, rc *config.ResolvedConfig, format string) error {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = yaml.Marshal(rc)
	} else {
		data, err = json.MarshalIndent(rc, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func runSeeds(app *application.App, w io.Writer, seedsPath string, queriesPerSeed int, exec bool, logger *zap.Logger) error {
	est, err := app.Estimate(seedsPath, queriesPerSeed)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "SPARQL run estimate\n")
	fmt.Fprintf(w, "- seeds: %d\n", est.Seeds)
	fmt.Fprintf(w, "- queries per seed: %d\n", est.QueriesPerSeed)
	fmt.Fprintf(w, "- total queries: %d\n", est.TotalQueries)
	fmt.Fprintf(w, "- rate: %.2f queries/s\n", est.QueriesPerSecond())
	fmt.Fprintf(w, "- estimated time: %.1f s (~%.1f min)\n", est.Duration.Seconds(), est.Duration.Minutes())

	if !exec {
		fmt.Fprintf(w, "\nEstimate only. Pass --exec to run the queries.\n")
		return nil
	}

	ctx, stop := interruptContext(context.Background(), logger)
	defer stop()

	out, err := app.Run(ctx, seedsPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nResults saved to %s\n", out)
	return nil
}

func printSemanticQuery(w io.Writer, opts sparql.SemanticOptions) error {
	q, err := sparql.SemanticQuery(opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, q)
	return nil
}

func runSemantic(app *application.App, w io.Writer, opts sparql.SemanticOptions, logger *zap.Logger) error {
	ctx, stop := interruptContext(context.Background(), logger)
	defer stop()

	out, n, err := app.Semantic(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d matches saved to %s\n", n, out)
	return nil
}

// interruptContext is cancelled on SIGINT or SIGTERM.
func interruptContext(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-quit:
			logger.Info("interrupt received, stopping run")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signalStop(quit)
		cancel()
	}
}
