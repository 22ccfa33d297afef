package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tbxark/hotelagent/agent"
	"github.com/tbxark/hotelagent/config"
	"github.com/tbxark/hotelagent/dialogue"
	"github.com/tbxark/hotelagent/internal/llm"
	"github.com/tbxark/hotelagent/internal/logging"
	"github.com/tbxark/hotelagent/metrics"
	"github.com/tbxark/hotelagent/rediscache"
	"github.com/tbxark/hotelagent/types"
	"github.com/tbxark/hotelagent/validate"
)

// app holds the wired service components.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	engine   *agent.Engine
	manager  *agent.SessionManager
	history  *agent.HistoryStore
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	health   func(ctx context.Context) error
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:    cfg,
		logger: logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format),
	}

	validator := validate.New(validate.WithPaymentMethods(cfg.Booking.PaymentMethods...))
	caps, err := a.capabilities(ctx, validator.PaymentMethods())
	if err != nil {
		return nil, err
	}

	engineOpts := []agent.Option{
		agent.WithLogger(a.logger),
		agent.WithValidator(validator),
	}
	if cfg.Server.Metrics {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.metrics, err = metrics.New(a.registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		engineOpts = append(engineOpts, agent.WithCallbacks(a.metrics.Handler()))
	}
	a.engine, err = agent.NewEngine(ctx, caps, engineOpts...)
	if err != nil {
		return nil, err
	}

	sessions, history := a.stores()
	a.manager = agent.NewSessionManager(a.engine, sessions, agent.WithManagerLogger(a.logger))
	a.history = history
	return a, nil
}

func (a *app) capabilities(ctx context.Context, paymentMethods []string) (agent.Capabilities, error) {
	local := agent.LocalCapabilities(a.cfg.Booking.HotelName, paymentMethods...)
	if a.cfg.UseLocal() {
		a.logger.Info("Using local capabilities", "offline", a.cfg.Offline)
		return local, nil
	}
	chatModel, err := llm.NewChatModel(ctx, a.cfg.LLM)
	if err != nil {
		return agent.Capabilities{}, err
	}
	dialogueOpts := []dialogue.GeneratorOption{
		dialogue.WithHotelName(a.cfg.Booking.HotelName),
		dialogue.WithDialogueLang(a.cfg.Booking.Language),
	}
	tool, err := agent.ToolBasedCapabilities(chatModel, paymentMethods, dialogueOpts...)
	if err != nil {
		return agent.Capabilities{}, err
	}
	tool.Corrector = dialogue.NewToolBasedDialogueGenerator(chatModel, dialogue.KindCorrection,
		append(dialogueOpts, dialogue.WithTemperature(a.cfg.LLM.CorrectionTemperature))...)
	a.logger.Info("Using LLM capabilities", "model", a.cfg.LLM.Model)
	return agent.WithFailback(tool, local), nil
}

func (a *app) stores() (*agent.SessionStore, *agent.HistoryStore) {
	trimmer := agent.KeepSystemLastNTrimmer{N: 50}
	if a.cfg.Store.Backend != config.BackendRedis {
		return agent.NewMemorySessionStore(), agent.NewMemoryHistoryStore(trimmer)
	}
	rc := a.cfg.Store.Redis
	client := rediscache.NewClient(rc.Addr, rc.Password, rc.DB)
	a.closers = append(a.closers, client.Close)
	opts := []rediscache.Option{rediscache.WithPrefix(rc.Prefix), rediscache.WithTTL(rc.TTL)}
	a.logger.Info("Using redis session store", "addr", rc.Addr, "db", rc.DB)
	sessions := rediscache.New[*types.Session](client, opts...)
	a.health = sessions.Ping
	return agent.NewSessionStore(sessions),
		agent.NewHistoryStore(rediscache.New[[]*schema.Message](client, opts...), trimmer)
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("Failed to close resource", "error", err)
		}
	}
}
