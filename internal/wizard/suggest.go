package wizard

import (
	"context"
	"errors"
	"time"

	"social-support-wizard/internal/models"
	"social-support-wizard/internal/store"
	"social-support-wizard/internal/suggestion"
)

var errSuggestionsDisabled = errors.New("suggestions are not configured")

// RequestSuggestion asks for draft text for field under the configured policy.
func (w *Wizard) RequestSuggestion(ctx context.Context, field string) (*suggestion.Outcome, error) {
	if w.ai == nil {
		return nil, errSuggestionsDisabled
	}
	start := time.Now()
	out, err := w.ai.Request(ctx, w.suggestionRequest(field))
	w.record(ctx, "suggest", err, start)
	return out, err
}

// RequestSuggestionFrom asks one named provider, for the independent-button policy.
func (w *Wizard) RequestSuggestionFrom(ctx context.Context, provider, field string) (*suggestion.Outcome, error) {
	if w.ai == nil {
		return nil, errSuggestionsDisabled
	}
	start := time.Now()
	out, err := w.ai.RequestFrom(ctx, provider, w.suggestionRequest(field))
	w.record(ctx, "suggest", err, start)
	return out, err
}

// suggestionRequest grounds the prompt in step 2 and pins the result to the current generation,
// so a reset while the request is in flight discards its result.
func (w *Wizard) suggestionRequest(field string) suggestion.Request {
	w.sync.Flush()
	state := w.form.State()
	gen := w.form.Generation()
	return suggestion.Request{
		Field:   field,
		Context: suggestion.BuildContext(state.Step2),
		Valid:   func() bool { return w.form.Generation() == gen },
	}
}

// AcceptSuggestion writes text, the suggestion as possibly edited by the user, into the open
// suggestion's field and closes the modal.
func (w *Wizard) AcceptSuggestion(text string) error {
	field := w.ui.State().AIField
	if field == "" {
		return ErrNoSuggestion
	}

	step := models.StepOfField(field)
	if step == 0 {
		step = models.MaxStep
	}
	w.form.UpdateStep(step, models.StepData{field: text}, store.OriginSystem)
	w.ui.CloseAIModal()
	return nil
}

// DiscardSuggestion closes the modal without touching the form.
func (w *Wizard) DiscardSuggestion() {
	w.ui.CloseAIModal()
}
