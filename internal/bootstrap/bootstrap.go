package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	fastinginadapter "fasttrack/internal/modules/fasting/adapter/in"
	fastingoutadapter "fasttrack/internal/modules/fasting/adapter/out"
	fastingout "fasttrack/internal/modules/fasting/port/out"
	fastingservice "fasttrack/internal/modules/fasting/service"
	fastingusecase "fasttrack/internal/modules/fasting/usecase"
	identityinadapter "fasttrack/internal/modules/identity/adapter/in"
	identityoutadapter "fasttrack/internal/modules/identity/adapter/out"
	identityin "fasttrack/internal/modules/identity/port/in"
	identityservice "fasttrack/internal/modules/identity/service"
	identityusecase "fasttrack/internal/modules/identity/usecase"
	insightsinadapter "fasttrack/internal/modules/insights/adapter/in"
	insightsoutadapter "fasttrack/internal/modules/insights/adapter/out"
	insightsservice "fasttrack/internal/modules/insights/service"
	insightsusecase "fasttrack/internal/modules/insights/usecase"
	"fasttrack/internal/platform/clock"
	"fasttrack/internal/platform/config"
	"fasttrack/internal/platform/id"
	"fasttrack/internal/platform/logging"
	"fasttrack/internal/platform/prefs"
	uiapp "fasttrack/internal/ui/app"
)

const identityPollInterval = 5 * time.Second

type App struct {
	Config      config.Config
	Logger      *slog.Logger
	FastingCLI  fastinginadapter.CLIHandler
	FastingTUI  fastinginadapter.TUIHandler
	InsightsCLI insightsinadapter.CLIHandler
	InsightsTUI insightsinadapter.TUIHandler
	IdentityCLI identityinadapter.CLIHandler
	MCP         *fastinginadapter.MCPServer

	engine   *fastingservice.Engine
	identity identityin.Usecase
	logFile  io.Closer
}

// New wires the client. Nothing touches the network until Hydrate or RunTUI.
func New(cfg config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger := logging.New(logFile, cfg.LogLevel, cfg.LogFormat)

	clk := clock.SystemClock{}
	ids := id.UUID{}

	var remote fastingout.RemoteStore
	if cfg.RemoteURL != "" {
		remote = fastingoutadapter.NewHTTPRemoteStore(nil, cfg.RemoteURL)
	}

	prefStore := prefs.NewStore(cfg.PrefsPath)
	if dir := prefStore.Load().ExportDir; dir != "" {
		cfg.JournalDir = dir
	}

	templatePath := cfg.TemplatePath
	if _, err := os.Stat(templatePath); err != nil {
		templatePath = ""
	}

	engine := fastingservice.NewEngine(fastingservice.EngineDeps{
		Clock:        clk,
		IDs:          ids,
		Cache:        fastingoutadapter.NewFileLocalCache(cfg.CachePath),
		Remote:       remote,
		Journal:      fastingoutadapter.NewMarkdownJournal(cfg.JournalDir, templatePath),
		Prefs:        prefStore,
		Logger:       logger.With("module", "fasting"),
		SyncInterval: cfg.SyncInterval,
	})

	identityUC := identityusecase.NewInteractor(identityservice.NewIdentityService(
		clk,
		identityoutadapter.NewFileCredentialStore(cfg.CredentialsPath),
		logger.With("module", "identity"),
	))

	runtime := fastingservice.NewRuntime(
		engine,
		fastingoutadapter.NewIdentityBridge(identityUC),
		cfg.TickInterval,
		identityPollInterval,
		logger.With("module", "runtime"),
	)
	fastingUC := fastingusecase.NewInteractor(engine, runtime, clk)

	insightsUC := insightsusecase.NewInteractor(insightsservice.NewInsightsService(
		clk,
		insightsoutadapter.NewFastingHistoryAdapter(fastingUC),
		time.Local,
	))

	return &App{
		Config:      cfg,
		Logger:      logger,
		FastingCLI:  fastinginadapter.NewCLIHandler(fastingUC),
		FastingTUI:  fastinginadapter.NewTUIHandler(fastingUC),
		InsightsCLI: insightsinadapter.NewCLIHandler(insightsUC),
		InsightsTUI: insightsinadapter.NewTUIHandler(insightsUC),
		IdentityCLI: identityinadapter.NewCLIHandler(identityUC),
		MCP:         fastinginadapter.NewMCPServer(fastingUC, insightsUC),
		engine:      engine,
		identity:    identityUC,
		logFile:     logFile,
	}, nil
}

// Hydrate runs the identity-change routine once for the stored identity.
// One-shot commands call it before touching fasting state.
func (a *App) Hydrate(ctx context.Context) error {
	current, err := a.identity.Current(ctx)
	if err != nil {
		a.Logger.Warn("read identity failed, running anonymous", "err", err)
	}
	return a.engine.SetIdentity(ctx, current)
}

func (a *App) Close() error {
	a.engine.Close()
	return a.logFile.Close()
}

// RunBackground keeps the runtime alive until ctx ends, for long-lived surfaces
// such as the MCP server.
func (a *App) RunBackground(ctx context.Context) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.FastingTUI.Run(ctx); err != nil {
			a.Logger.Error("runtime stopped", "err", err)
		}
	}()
	return wg.Wait
}

func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	wait := app.RunBackground(ctx)
	defer func() {
		cancel()
		wait()
	}()

	model := uiapp.NewModel(app.FastingTUI, app.InsightsTUI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// DefaultTemplate writes the built-in journal template so users can edit it.
func DefaultTemplate(cfg config.Config) (string, error) {
	if _, err := os.Stat(cfg.TemplatePath); err == nil {
		return cfg.TemplatePath, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.TemplatePath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(cfg.TemplatePath, []byte(fastingoutadapter.DefaultJournalTemplate), 0o644); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}
	return cfg.TemplatePath, nil
}
