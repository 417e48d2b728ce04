// internal/suggestion/orchestrator.go
package suggestion

import (
	"context"
	"errors"
	"fmt"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/metrics"
	"social-support-wizard/internal/i18n"
	"social-support-wizard/internal/store"
)

var (
	ErrSuggestionPending = errors.New("suggestion already pending for field")
	ErrUnknownProvider   = errors.New("unknown suggestion provider")
)

// Policy selects how the two providers are offered.
type Policy int

const (
	// PolicyFallback tries the primary and, on failure, the secondary.
	PolicyFallback Policy = iota
	// PolicyIndependent exposes each provider as its own action with no fallback.
	PolicyIndependent
)

func (p Policy) String() string {
	if p == PolicyIndependent {
		return "independent"
	}
	return "fallback"
}

// PolicyFromConfig maps the ai.auto_fallback flag.
func PolicyFromConfig(autoFallback bool) Policy {
	if autoFallback {
		return PolicyFallback
	}
	return PolicyIndependent
}

// fallbackMarker is the pending-provider value held while a fallback chain runs.
const fallbackMarker = "auto"

// Request asks for a suggestion for one field.
type Request struct {
	Field   string
	Context string
	// Valid reports whether the result is still wanted. A nil Valid always accepts.
	Valid func() bool
}

func (r Request) stale() bool {
	return r.Valid != nil && !r.Valid()
}

// Outcome describes what happened to a request.
type Outcome struct {
	Suggestion string
	Provider   string
	Errors     map[string]*apperrors.Error
	Message    string // user-facing alert, empty on success
	Stale      bool
}

// Orchestrator drives one or both providers and publishes results to the UI store. It is the
// only layer that turns provider failures into user-facing text.
type Orchestrator struct {
	primary   Suggester
	secondary Suggester
	policy    Policy
	ui        *store.UIStore
	catalog   *i18n.Catalog
	logger    logger.Logger
}

func NewOrchestrator(primary, secondary Suggester, policy Policy, ui *store.UIStore, catalog *i18n.Catalog, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Orchestrator{
		primary:   primary,
		secondary: secondary,
		policy:    policy,
		ui:        ui,
		catalog:   catalog,
		logger:    log.With(map[string]interface{}{"component": "suggestion", "policy": policy.String()}),
	}
}

func (o *Orchestrator) Policy() Policy { return o.policy }

// Providers returns the primary and secondary in order.
func (o *Orchestrator) Providers() []Suggester {
	return []Suggester{o.primary, o.secondary}
}

// Request runs the configured policy. Under the independent policy it asks the primary only.
func (o *Orchestrator) Request(ctx context.Context, req Request) (*Outcome, error) {
	if o.policy == PolicyIndependent {
		return o.RequestFrom(ctx, o.primary.Name(), req)
	}
	return o.requestWithFallback(ctx, req)
}

func (o *Orchestrator) requestWithFallback(ctx context.Context, req Request) (*Outcome, error) {
	if !o.ui.BeginSuggestion(req.Field, fallbackMarker) {
		return nil, ErrSuggestionPending
	}
	defer o.ui.EndSuggestion(req.Field, fallbackMarker)

	out := &Outcome{Errors: map[string]*apperrors.Error{}}

	text, err := o.primary.Suggest(ctx, req.Field, req.Context)
	if err == nil {
		return o.publish(req, out, o.primary, text), nil
	}
	out.Errors[o.primary.Name()] = apperrors.Normalize(err)

	if req.stale() {
		out.Stale = true
		o.logger.Info("dropping stale suggestion request", map[string]interface{}{"field": req.Field})
		return out, nil
	}

	metrics.SuggestionFallbacks.Inc()
	o.logger.Info("primary provider failed, trying secondary", map[string]interface{}{
		"field":     req.Field,
		"primary":   o.primary.Name(),
		"secondary": o.secondary.Name(),
		"kind":      apperrors.TagOf(err),
	})

	text, err = o.secondary.Suggest(ctx, req.Field, req.Context)
	if err == nil {
		return o.publish(req, out, o.secondary, text), nil
	}
	out.Errors[o.secondary.Name()] = apperrors.Normalize(err)

	if req.stale() {
		out.Stale = true
		return out, nil
	}

	out.Message = o.combinedMessage(out.Errors[o.primary.Name()], out.Errors[o.secondary.Name()])
	o.ui.SetAlert(out.Message)
	return out, nil
}

// RequestFrom asks a single named provider. A field with a request already pending is refused.
func (o *Orchestrator) RequestFrom(ctx context.Context, provider string, req Request) (*Outcome, error) {
	s := o.provider(provider)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if !o.ui.BeginSuggestion(req.Field, s.Name()) {
		return nil, ErrSuggestionPending
	}
	defer o.ui.EndSuggestion(req.Field, s.Name())

	out := &Outcome{Errors: map[string]*apperrors.Error{}}

	text, err := s.Suggest(ctx, req.Field, req.Context)
	if err == nil {
		return o.publish(req, out, s, text), nil
	}
	out.Errors[s.Name()] = apperrors.Normalize(err)

	if req.stale() {
		out.Stale = true
		return out, nil
	}

	lang := o.ui.Language()
	out.Message = o.catalog.Format(lang, "ai.providerFailed", map[string]string{
		"provider": s.DisplayName(),
		"error":    apperrors.TagOf(err),
	})
	o.ui.SetAlert(out.Message)
	return out, nil
}

func (o *Orchestrator) provider(name string) Suggester {
	for _, s := range o.Providers() {
		if s != nil && s.Name() == name {
			return s
		}
	}
	return nil
}

func (o *Orchestrator) publish(req Request, out *Outcome, s Suggester, text string) *Outcome {
	if req.stale() {
		out.Stale = true
		o.logger.Info("dropping stale suggestion", map[string]interface{}{
			"field":    req.Field,
			"provider": s.Name(),
		})
		return out
	}
	out.Suggestion = text
	out.Provider = s.Name()
	o.ui.SetAISuggestion(req.Field, text)
	return out
}

// combinedMessage renders the alert shown when both providers failed.
func (o *Orchestrator) combinedMessage(primaryErr, secondaryErr *apperrors.Error) string {
	lang := o.ui.Language()
	vars := map[string]string{
		"primary":        o.primary.DisplayName(),
		"secondary":      o.secondary.DisplayName(),
		"primaryError":   primaryErr.Tag(),
		"secondaryError": secondaryErr.Tag(),
	}

	switch {
	case primaryErr.Kind == apperrors.KindAPIKeyMissing && secondaryErr.Kind == apperrors.KindAPIKeyMissing:
		return o.catalog.Format(lang, "ai.bothKeysMissing", vars)
	case apperrors.IsRateLimited(primaryErr.Kind) && apperrors.IsRateLimited(secondaryErr.Kind):
		return o.catalog.Format(lang, "ai.bothRateLimited", vars)
	case apperrors.IsRateLimited(primaryErr.Kind):
		return o.catalog.Format(lang, "ai.primaryRateLimited", vars)
	default:
		return o.catalog.Format(lang, "ai.bothFailed", vars)
	}
}
