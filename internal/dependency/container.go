// Package dependency wires core oatsbridge services using go.uber.org/dig.
package dependency

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"github.com/oatsbridge/oatsbridge/internal/agent"
	"github.com/oatsbridge/oatsbridge/internal/artifacts"
	"github.com/oatsbridge/oatsbridge/internal/bus"
	"github.com/oatsbridge/oatsbridge/internal/channels"
	"github.com/oatsbridge/oatsbridge/internal/config"
	"github.com/oatsbridge/oatsbridge/internal/portal"
	"github.com/oatsbridge/oatsbridge/internal/providers"
	"github.com/oatsbridge/oatsbridge/internal/schema"
	"github.com/oatsbridge/oatsbridge/internal/store"
	"github.com/oatsbridge/oatsbridge/internal/tools"
	"github.com/oatsbridge/oatsbridge/internal/transcript"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	cfg          *config.Config
	db           *store.DB
	provider     schema.LLMProvider
	msgBus       *bus.MessageBus
	orchestrator *agent.Orchestrator
	loop         *agent.AgentLoop
	channels     *channels.Manager
	portal       *portal.Server
	reaper       *artifacts.Reaper
}

func (c *Container) Config() *config.Config            { return c.cfg }
func (c *Container) Store() *store.DB                  { return c.db }
func (c *Container) Provider() schema.LLMProvider      { return c.provider }
func (c *Container) MessageBus() *bus.MessageBus       { return c.msgBus }
func (c *Container) Orchestrator() *agent.Orchestrator { return c.orchestrator }
func (c *Container) AgentLoop() *agent.AgentLoop       { return c.loop }
func (c *Container) Channels() *channels.Manager       { return c.channels }
func (c *Container) Portal() *portal.Server            { return c.portal }
func (c *Container) Reaper() *artifacts.Reaper         { return c.reaper }

// Close releases the database.
func (c *Container) Close() error { return c.db.Close() }

// LLMModel is a named string type so dig can distinguish it from plain
// strings when injecting the effective model name.
type LLMModel string

// New builds and wires all core services from cfg.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	d := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		func() context.Context { return ctx },
		newStore,
		newProvider,
		resolveLLMModel,
		newMessageBus,
		newArtifacts,
		newReaper,
		newFormatter,
		newExecutor,
		newAssembler,
		newOrchestrator,
		newAgentLoop,
		newChannelManager,
		newPortal,
	}
	for _, c := range constructors {
		if err := d.Provide(c); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		db *store.DB,
		provider schema.LLMProvider,
		msgBus *bus.MessageBus,
		orch *agent.Orchestrator,
		loop *agent.AgentLoop,
		mgr *channels.Manager,
		srv *portal.Server,
		reaper *artifacts.Reaper,
	) {
		result = &Container{
			cfg:          cfg,
			db:           db,
			provider:     provider,
			msgBus:       msgBus,
			orchestrator: orch,
			loop:         loop,
			channels:     mgr,
			portal:       srv,
			reaper:       reaper,
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newStore(ctx context.Context, cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(ctx, cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.DBPath(), err)
	}
	return db, nil
}

func newProvider(cfg *config.Config) schema.LLMProvider {
	return providers.New(providers.Params{
		APIKey:       cfg.Provider.ResolvedAPIKey(),
		APIBase:      cfg.Provider.APIBase,
		ExtraHeaders: cfg.Provider.ExtraHeaders,
		DefaultModel: cfg.Agent.Model,
		Timeout:      cfg.ProviderTimeout(),
		MaxRetries:   cfg.Provider.MaxRetries,
	})
}

func resolveLLMModel(cfg *config.Config, p schema.LLMProvider) LLMModel {
	m := cfg.Agent.Model
	if m == "" {
		m = p.DefaultModel()
	}
	return LLMModel(m)
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(100)
}

func newArtifacts(cfg *config.Config) *artifacts.Store {
	return artifacts.NewStore(cfg.ArtifactsDir())
}

func newReaper(cfg *config.Config, s *artifacts.Store) (*artifacts.Reaper, error) {
	return artifacts.NewReaper(s, cfg.Tools.ReapSchedule, cfg.ArtifactMaxAge())
}

func newFormatter(cfg *config.Config) *tools.Formatter {
	return tools.NewFormatter(cfg.Tools.LegacyPrefixMatch)
}

func newExecutor(cfg *config.Config, p schema.LLMProvider, s *artifacts.Store) *tools.Executor {
	timeout, connect := cfg.ToolTimeouts()
	return tools.NewExecutor(tools.ExecutorOptions{
		Timeout:        timeout,
		ConnectTimeout: connect,
		ProviderHost:   p.Host(),
		Credential:     p.Credential(),
		Artifacts:      s,
	})
}

func newAssembler(cfg *config.Config, db *store.DB) *transcript.Assembler {
	return transcript.NewAssembler(db, cfg.Agent.HistoryLimit)
}

func newOrchestrator(
	db *store.DB,
	p schema.LLMProvider,
	m LLMModel,
	a *transcript.Assembler,
	e *tools.Executor,
	f *tools.Formatter,
) *agent.Orchestrator {
	return agent.NewOrchestrator(agent.OrchestratorDeps{
		Settings:  db,
		Provider:  p,
		Assembler: a,
		Executor:  e,
		Writer:    db,
		Formatter: f,
		Model:     string(m),
	})
}

func newAgentLoop(cfg *config.Config, b *bus.MessageBus, db *store.DB, o *agent.Orchestrator) *agent.AgentLoop {
	return agent.NewAgentLoop(b, db, o, cfg.Agent.DefaultChatSettingsID)
}

func newChannelManager(cfg *config.Config, b *bus.MessageBus) (*channels.Manager, error) {
	return channels.NewManager(cfg.Channels, b)
}

func newPortal(cfg *config.Config, loop *agent.AgentLoop, o *agent.Orchestrator) *portal.Server {
	return portal.NewServer(cfg.Gateway.Host, cfg.Gateway.Port, loop, o)
}
