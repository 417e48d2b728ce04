package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"social-support-wizard/internal/archive"
	awsclient "social-support-wizard/internal/common/aws"
	"social-support-wizard/internal/common/config"
	"social-support-wizard/internal/common/database"
	httpclient "social-support-wizard/internal/common/http"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/metrics"
	"social-support-wizard/internal/common/observability"
	"social-support-wizard/internal/i18n"
	"social-support-wizard/internal/models"
	"social-support-wizard/internal/notify"
	"social-support-wizard/internal/persistence"
	"social-support-wizard/internal/store"
	"social-support-wizard/internal/submission"
	"social-support-wizard/internal/suggestion"
	"social-support-wizard/internal/wizard"

	"go.uber.org/zap"
)

// app owns everything main wires together and the order it is torn down in.
type app struct {
	cfg     *config.Config
	zap     *zap.Logger
	log     logger.Logger
	obs     *observability.Observability
	wizard  *wizard.Wizard
	drafts  *persistence.Adapter
	metrics *http.Server
	closers []func() error
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	a := &app{
		cfg: cfg,
		zap: zapLog,
		log: logger.NewZapAdapter(zapLog).With(map[string]interface{}{"service": cfg.App.Name}),
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		a.log.Warn("observability disabled", map[string]interface{}{"error": err.Error()})
	}
	a.obs = obs

	if cfg.Metrics.Addr != "" {
		a.metrics = metrics.Serve(cfg.Metrics.Addr)
	}

	catalog, err := i18n.Load()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load translations: %w", err)
	}

	backend, closeBackend, err := persistence.NewBackend(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("persistence: %w", err)
	}
	a.closers = append(a.closers, closeBackend)
	a.drafts = persistence.NewAdapter(backend, a.log)

	ui := store.NewUIStore(models.ParseLanguage(cfg.Form.Language))
	form := store.NewFormStore(a.log)

	hc := httpclient.NewClient(0)
	primary := suggestion.NewClient(suggestion.LoadConfig(cfg, cfg.AI.Primary), hc, obs, a.log)
	secondary := suggestion.NewClient(suggestion.LoadConfig(cfg, cfg.AI.Secondary), hc, obs, a.log)
	if !primary.Configured() && !secondary.Configured() {
		a.log.Warn("no AI provider keys configured", map[string]interface{}{
			"primary":   primary.Name(),
			"secondary": secondary.Name(),
		})
	}
	policy := suggestion.PolicyFromConfig(cfg.AI.AutoFallback)
	orch := suggestion.NewOrchestrator(primary, secondary, policy, ui, catalog, a.log)

	submitter, closeSubmitter, err := submission.New(ctx, cfg, a.log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("submission backend: %w", err)
	}
	a.closers = append(a.closers, closeSubmitter)

	hooks, err := a.hooks(ctx, catalog, ui.Language)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.wizard = wizard.New(wizard.Deps{
		Form:          form,
		UI:            ui,
		Drafts:        a.drafts,
		Orchestrator:  orch,
		Submitter:     submitter,
		Hooks:         hooks,
		Catalog:       catalog,
		Observability: obs,
		Logger:        a.log,
	}, wizard.Options{
		DraftKey:    cfg.Form.DraftKey,
		ResumeDraft: cfg.Form.ResumeDraft,
	})

	a.log.Info("wizard ready", map[string]interface{}{
		"persistence": backend.Name(),
		"submission":  submitter.Name(),
		"ai_policy":   policy.String(),
		"hooks":       len(hooks),
	})
	return a, nil
}

// hooks builds the after-submit hooks that are enabled in configuration.
func (a *app) hooks(ctx context.Context, catalog *i18n.Catalog, lang func() models.Language) ([]submission.Hook, error) {
	var hooks []submission.Hook
	nc := a.cfg.Notifications

	if nc.Email.Enabled || nc.SMS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, nc.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		// Interface values stay nil for disabled channels.
		var (
			email notify.Emailer
			sms   notify.Texter
		)
		if nc.Email.Enabled {
			email = awsclient.NewSESClient(awsCfg, nc.Email.FromEmail)
		}
		if nc.SMS.Enabled {
			sms = awsclient.NewSNSClient(awsCfg)
		}
		hooks = append(hooks, notify.NewConfirmation(email, sms, catalog, lang, a.log))
	}

	if a.cfg.Archive.Enabled {
		es, err := database.NewElasticsearch(a.cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := es.EnsureIndex(ctx, a.cfg.Archive.Index); err != nil {
			return nil, fmt.Errorf("archive index: %w", err)
		}
		hooks = append(hooks, archive.NewIndexer(es.Client, a.cfg.Archive.Index, lang, a.log))
	}
	return hooks, nil
}

func (a *app) Close() {
	if a.wizard != nil {
		a.wizard.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
	}
	if a.obs != nil {
		a.obs.Shutdown()
	}
	_ = a.zap.Sync()
}
