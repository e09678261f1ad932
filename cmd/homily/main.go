package main

import (
	"context"
	"fmt"
	"os"

	"github.com/homilybuild/homily/internal/cli"
	"github.com/homilybuild/homily/internal/config"
	"github.com/homilybuild/homily/internal/db"
	"github.com/homilybuild/homily/internal/llm"
	"github.com/homilybuild/homily/internal/logging"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	database, err := db.Open(cfg.Dialect(), cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	conn := database.Conn()
	homilyRepo := repository.NewSQLHomilyRepo(conn)
	contextRepo := repository.NewSQLContextRepo(conn)
	settingsRepo := repository.NewSQLSettingsRepo(conn)
	uow := db.NewUnitOfWork(database)

	client, provider, err := newLLMClient(logger)
	if err != nil {
		return err
	}
	generator := llm.NewGenerator(client, provider, logger)

	// Wire services
	observer := service.NewLogUseCaseObserver(logger)
	app := &cli.App{
		Homilies:      service.NewHomilyService(homilyRepo, uow, observer),
		Contexts:      service.NewContextService(contextRepo, observer),
		Settings:      service.NewSettingsService(settingsRepo, contextRepo, observer),
		Wizards:       service.NewWizardService(homilyRepo, settingsRepo, generator, logger),
		Archives:      service.NewArchiveService(homilyRepo, contextRepo, settingsRepo, uow, observer),
		Config:        cfg,
		Logger:        logger,
		LLM:           client,
		IsInteractive: stdinIsTerminal,
	}

	return cli.NewRootCmd(app).Execute()
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newLLMClient returns a nil client when no provider is configured; the
// generator then reports every request as not configured.
func newLLMClient(logger *zap.Logger) (llm.LLMClient, llm.Provider, error) {
	llmCfg, err := llm.LoadConfig()
	if err != nil {
		return nil, "", err
	}
	if !llmCfg.Enabled() {
		logger.Info("text generation disabled", zap.String("provider", string(llmCfg.Provider)))
		return nil, llmCfg.Provider, nil
	}

	observer := llm.MultiObserver{llm.NewMetricsObserver(prometheus.DefaultRegisterer)}
	if llmCfg.LogCalls {
		observer = append(observer, llm.NewLogObserver(logger))
	}
	client, err := llm.NewClient(context.Background(), llmCfg, observer)
	if err != nil {
		return nil, "", err
	}
	logger.Info("text generation enabled",
		zap.String("provider", string(llmCfg.Provider)),
		zap.String("model", llmCfg.ResolvedModel()))
	return client, llmCfg.Provider, nil
}
