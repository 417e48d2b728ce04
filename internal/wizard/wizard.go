// Package wizard implements the three-step application flow: navigation with per-step validation,
// AI suggestion actions, language switching and submission.
package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/observability"
	"social-support-wizard/internal/common/validation"
	"social-support-wizard/internal/formsync"
	"social-support-wizard/internal/i18n"
	"social-support-wizard/internal/models"
	"social-support-wizard/internal/persistence"
	"social-support-wizard/internal/store"
	"social-support-wizard/internal/submission"
	"social-support-wizard/internal/suggestion"
)

var (
	ErrInvalidStep          = errors.New("current step has invalid fields")
	ErrNotOnFinalStep       = errors.New("submission is only available on the last step")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrNoSuggestion         = errors.New("no suggestion is open")
)

// Deps are the collaborators a Wizard drives. Drafts, Orchestrator, Hooks and Observability are
// optional.
type Deps struct {
	Form          *store.FormStore
	UI            *store.UIStore
	Drafts        *persistence.Adapter
	Orchestrator  *suggestion.Orchestrator
	Submitter     submission.Submitter
	Hooks         []submission.Hook
	Catalog       *i18n.Catalog
	Observability *observability.Observability
	Logger        logger.Logger
}

type Options struct {
	DraftKey    string
	ResumeDraft bool
}

type Wizard struct {
	form      *store.FormStore
	ui        *store.UIStore
	drafts    *persistence.Adapter
	ai        *suggestion.Orchestrator
	submitter submission.Submitter
	hooks     []submission.Hook
	catalog   *i18n.Catalog
	obs       *observability.Observability
	log       logger.Logger
	opts      Options

	binding *formsync.Binding
	sync    *formsync.Controller

	submitMu   sync.Mutex
	submitting bool

	now func() time.Time
}

func New(deps Deps, opts Options) *Wizard {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "wizard"})

	binding := formsync.NewBinding()
	return &Wizard{
		form:      deps.Form,
		ui:        deps.UI,
		drafts:    deps.Drafts,
		ai:        deps.Orchestrator,
		submitter: deps.Submitter,
		hooks:     deps.Hooks,
		catalog:   deps.Catalog,
		obs:       deps.Observability,
		log:       log,
		opts:      opts,
		binding:   binding,
		sync:      formsync.NewController(deps.Form, binding, deps.Drafts, opts.DraftKey, log),
		now:       time.Now,
	}
}

func (w *Wizard) Binding() *formsync.Binding             { return w.binding }
func (w *Wizard) Form() *store.FormStore                 { return w.form }
func (w *Wizard) UI() *store.UIStore                     { return w.ui }
func (w *Wizard) Catalog() *i18n.Catalog                 { return w.catalog }
func (w *Wizard) Orchestrator() *suggestion.Orchestrator { return w.ai }
func (w *Wizard) CurrentStep() int                       { return w.form.CurrentStep() }
func (w *Wizard) Language() models.Language              { return w.ui.Language() }
func (w *Wizard) T(key string) string                    { return w.catalog.T(w.ui.Language(), key) }
func (w *Wizard) Direction() string                      { return w.ui.Language().Direction() }

// Start applies the draft policy and begins syncing. It reports whether a draft was resumed.
func (w *Wizard) Start(ctx context.Context) bool {
	w.sync.Start()

	if w.opts.ResumeDraft && w.drafts != nil {
		if draft, ok := w.drafts.LoadForm(ctx, w.opts.DraftKey); ok {
			w.form.Hydrate(draft)
			w.log.Info("draft resumed", map[string]interface{}{"step": draft.CurrentStep})
			return true
		}
	}

	w.form.ResetForm()
	w.clearDraft()
	return false
}

// Close stops syncing. The stores stay usable.
func (w *Wizard) Close() {
	w.sync.Stop()
}

// Next validates the current step and advances when every field is valid. On failure the field
// errors are left on the binding and ErrInvalidStep is returned.
func (w *Wizard) Next() error {
	w.sync.Flush()

	state := w.form.State()
	step := state.CurrentStep
	result := validation.ValidateStep(step, state.Group(step))
	if !result.Valid {
		w.binding.SetErrors(result.Errors)
		return ErrInvalidStep
	}

	w.binding.ClearErrors()
	if step < models.MaxStep {
		w.form.SetCurrentStep(step + 1)
	}
	return nil
}

// Previous moves back one step without validating.
func (w *Wizard) Previous() {
	w.sync.Flush()
	if step := w.form.CurrentStep(); step > models.MinStep {
		w.form.SetCurrentStep(step - 1)
	}
}

// FieldError returns the localized error for field, or "".
func (w *Wizard) FieldError(field string) string {
	e, ok := w.binding.Errors()[field]
	if !ok {
		return ""
	}
	return w.T(e.MessageKey())
}

// SetLanguage switches the active language.
func (w *Wizard) SetLanguage(lang models.Language) {
	w.ui.SetLanguage(lang)
}

// ToggleLanguage flips between English and Arabic and returns the new language.
func (w *Wizard) ToggleLanguage() models.Language {
	next := w.ui.Language().Toggle()
	w.ui.SetLanguage(next)
	return next
}

// Reset discards everything entered so far, including the draft.
func (w *Wizard) Reset(ctx context.Context) {
	w.ui.CloseAIModal()
	w.ui.ResetSubmissionState()
	w.ui.ClearAlert()
	w.form.ResetForm()
	w.clearDraft()
}

func (w *Wizard) clearDraft() {
	w.sync.ClearDraft()
}

func (w *Wizard) record(ctx context.Context, op string, err error, start time.Time) {
	status := "ok"
	if err != nil {
		status = string(apperrors.KindOf(err))
	}
	w.obs.RecordOperation(ctx, op, status, time.Since(start))
}
