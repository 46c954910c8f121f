package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/alerts"
	"github.com/vozlegal/intake/internal/analysis"
	"github.com/vozlegal/intake/internal/config"
	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/journal"
	"github.com/vozlegal/intake/internal/knowledge"
	"github.com/vozlegal/intake/internal/model"
	"github.com/vozlegal/intake/internal/prompt"
	"github.com/vozlegal/intake/internal/routing"
	"github.com/vozlegal/intake/internal/service"
	"github.com/vozlegal/intake/internal/session"
)

// runtimeStack is everything a command needs after wiring the service
// together from config.
type runtimeStack struct {
	registry *agent.Registry
	engine   *routing.Engine
	sessions *session.Manager
	base     *knowledge.Base
	models   model.ModelRouter
	intake   *service.Intake
	journal  *journal.Journal
}

func (s *runtimeStack) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			slog.Error("Failed to close journal", "error", err)
		}
	}
}

func buildRegistry(cfg *config.Config) (*agent.Registry, *agent.Evaluator, error) {
	defs := agent.Builtin()
	if cfg.Agents.DefinitionsFile != "" {
		var err error
		defs, err = agent.ApplyOverrides(cfg.Agents.DefinitionsFile, defs)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to load agent definitions")
		}
	}

	registry, err := agent.NewRegistry(defs)
	if err != nil {
		return nil, nil, err
	}

	location, err := time.LoadLocation(cfg.Agents.Timezone)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid agents timezone")
	}

	return registry, agent.NewEvaluator(registry, location), nil
}

// buildStack wires the full intake service from config. Model providers
// are optional: without API keys the service still routes and replies
// with canned acknowledgements.
func buildStack(cfg *config.Config) (*runtimeStack, error) {
	registry, evaluator, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	engine := routing.NewEngine(registry, evaluator, nil)
	sessions := session.NewManager(registry, cfg.Sessions.MaxTransferHistory, nil)

	base := knowledge.Builtin()
	if cfg.Knowledge.File != "" {
		if err := base.LoadFile(cfg.Knowledge.File); err != nil {
			return nil, errors.Wrap(err, "failed to load knowledge file")
		}
	}
	composer := prompt.NewComposer(registry, base)

	var models model.ModelRouter
	router, err := model.NewModelRouter(cfg.Models)
	if err != nil {
		slog.Warn("Model router unavailable, replies degrade to canned responses", "error", err)
	} else {
		models = router
	}

	analysisTimeout, err := config.DurationOrDefault(cfg.Analysis.RequestTimeout, config.DefaultAnalysisRequestTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "invalid analysis request timeout")
	}
	analysisModel := cfg.Analysis.Model
	if analysisModel == "" {
		analysisModel = cfg.Models.Default
	}
	analyzer := analysis.NewAnalyzer(models, analysisModel, analysisTimeout)

	stack := &runtimeStack{
		registry: registry,
		engine:   engine,
		sessions: sessions,
		base:     base,
		models:   models,
	}

	opts := service.Options{Router: models, Model: cfg.Models.Default}

	if cfg.Journal.Enabled {
		lockTimeout, err := config.DurationOrDefault(cfg.Journal.LockTimeout, config.DefaultJournalLockTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "invalid journal lock timeout")
		}
		lockRetry, err := config.DurationOrDefault(cfg.Journal.LockRetry, config.DefaultJournalLockRetry)
		if err != nil {
			return nil, errors.Wrap(err, "invalid journal lock retry")
		}

		j, err := journal.Open(cfg.Journal.Path, lockTimeout, lockRetry)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open journal")
		}
		stack.journal = j
		opts.Journal = j
	}

	if cfg.Alerts.Slack.Enabled {
		token := cfg.Alerts.Slack.BotToken
		if token == "" {
			token = os.Getenv("SLACK_BOT_TOKEN")
		}
		opts.Notifier = alerts.NewSlackNotifier(token, cfg.Alerts.Slack.Channel)
	}

	stack.intake = service.New(engine, sessions, composer, analyzer, opts)
	return stack, nil
}
