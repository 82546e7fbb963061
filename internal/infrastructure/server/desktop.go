package server

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/branch"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/chat"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/drag"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/events"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm/anthropic"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm/openai"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/markdown"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/settings"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// Desktop is the assembled domain: storage, state, services and event bus
type Desktop struct {
	Store    storage.KV
	Bridge   *session.Bridge
	Bus      *events.Bus
	Windows  *workspace.Manager
	Settings *settings.Store
	Router   *llm.Router
	Client   *llm.Client
	Chat     *chat.Service
	Branches *branch.Engine
	Drags    *drag.Tracker
	Renderer *markdown.Renderer

	detach []func()
}

// OpenDesktop opens the store, restores the saved desktop and wires the
// services around it
func OpenDesktop(ctx context.Context, cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*Desktop, error) {
	store, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	d, err := assemble(ctx, cfg, store, logger, metrics)
	if err != nil {
		store.Close()
		return nil, err
	}
	return d, nil
}

func assemble(ctx context.Context, cfg *config.Config, store storage.KV, logger *logging.Logger, metrics *monitoring.Metrics) (*Desktop, error) {
	bridge := session.NewBridge(store,
		session.WithCompression(cfg.Storage.Compress),
		session.WithLogger(logger.Component("session")),
	)
	state, outcome, err := bridge.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load desktop state: %w", err)
	}
	if outcome.Corrupt != nil {
		metrics.IncStateRecovered()
	}

	creds, err := settings.Open(ctx, store, cfg.Settings.Passphrase, logger.Component("settings"))
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	if cfg.Settings.CredentialsFile != "" {
		if _, err := creds.ImportFile(ctx, cfg.Settings.CredentialsFile); err != nil {
			logger.Warn("Failed to import credentials", zap.Error(err))
		}
	}

	bus := events.NewBus()
	windows := workspace.NewManager(state, bridge).
		WithEvents(bus).
		WithMetrics(metrics).
		WithLogger(logger.Component("workspace")).
		WithPayloadDefaults(chat.DefaultPayload).
		WithDefaultSize(types.Size{Width: cfg.Desktop.WindowWidth, Height: cfg.Desktop.WindowHeight})

	client := newProviderClient(cfg.Providers, metrics, logger.Component("llm"))
	router := newRouter(cfg.Providers, client, creds).
		WithMetrics(metrics).
		WithLogger(logger.Component("llm"))

	renderer := markdown.NewRenderer(logger.Component("markdown"))
	guard := branch.NewGuard(cfg.Desktop.BranchCooldown, time.Now)
	branches := branch.NewEngine(windows, guard, renderer).
		WithMetrics(metrics).
		WithLogger(logger.Component("branch"))

	drags := drag.NewTracker(windows, cfg.Desktop.DragInterval).
		WithMetrics(metrics).
		WithLogger(logger.Component("drag"))

	d := &Desktop{
		Store:    store,
		Bridge:   bridge,
		Bus:      bus,
		Windows:  windows,
		Settings: creds,
		Router:   router,
		Client:   client,
		Chat:     chat.NewService(windows, router).WithLogger(logger.Component("chat")),
		Branches: branches,
		Drags:    drags,
		Renderer: renderer,
	}
	d.detach = append(d.detach, drags.Attach(bus))

	stats := windows.Stats()
	logger.Info("Desktop restored",
		zap.Bool("fresh", outcome.Fresh),
		zap.Int("workspaces", stats.Workspaces),
		zap.Int("windows", stats.Windows),
		zap.Int64("active_workspace", stats.ActiveWorkspaceID))
	return d, nil
}

func newProviderClient(cfg config.ProviderConfig, metrics *monitoring.Metrics, logger *zap.Logger) *llm.Client {
	clientCfg := llm.DefaultClientConfig()
	clientCfg.Timeout = cfg.Timeout
	clientCfg.Breaker.OnStateChange = func(provider string, from, to resilience.State) {
		metrics.SetProviderBreaker(provider, int(to))
		logger.Warn("Provider circuit changed",
			zap.String("provider", provider),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	}
	return llm.NewClient(clientCfg)
}

func newRouter(cfg config.ProviderConfig, client *llm.Client, creds llm.CredentialSource) *llm.Router {
	router := llm.NewRouter(creds)
	router.Register(anthropic.New(client, cfg.AnthropicBaseURL))
	router.Register(openai.New(llm.FamilyOpenAI, client, cfg.OpenAIBaseURL))
	router.Register(openai.New(llm.FamilyDeepSeek, client, cfg.DeepSeekBaseURL))
	router.Register(openai.New(llm.FamilyGroq, client, cfg.GroqBaseURL))
	return router
}

// Close detaches subscribers and closes the store
func (d *Desktop) Close() error {
	for _, fn := range d.detach {
		fn()
	}
	return d.Store.Close()
}
