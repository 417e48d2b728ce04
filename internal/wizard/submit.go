package wizard

import (
	"context"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/validation"
	"social-support-wizard/internal/models"
	"social-support-wizard/internal/submission"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Submit validates step 3, assembles the payload and hands it to the submitter. Only one
// submission runs at a time. On success the confirmation is stored on the UI state and the form
// and draft are reset; on failure the form is left untouched and a localized message is set.
func (w *Wizard) Submit(ctx context.Context) (*models.SubmissionResult, error) {
	if w.form.CurrentStep() != models.MaxStep {
		return nil, ErrNotOnFinalStep
	}
	if !w.beginSubmit() {
		return nil, ErrSubmissionInProgress
	}
	defer w.endSubmit()

	start := time.Now()
	ctx, span := w.obs.StartSpan(ctx, "wizard.submit", attribute.String("submitter", w.submitter.Name()))
	defer span.End()

	w.sync.Flush()
	state := w.form.State()

	result := validation.ValidateStep(models.MaxStep, state.Group(models.MaxStep))
	if !result.Valid {
		w.binding.SetErrors(result.Errors)
		return nil, ErrInvalidStep
	}

	w.ui.ResetSubmissionState()
	w.ui.ClearConfirmation()
	w.ui.SetSubmitting(true)

	payload, err := models.NewApplicationPayload(state, w.now())
	if err != nil {
		w.log.Warn("payload assembly failed", map[string]interface{}{"error": err.Error()})
		return nil, w.fail(ctx, apperrors.Wrap(apperrors.KindValidationError, err), start)
	}

	res, err := w.submitter.Submit(ctx, payload)
	if err != nil {
		return nil, w.fail(ctx, apperrors.Normalize(err), start)
	}

	w.ui.SetConfirmation(res)
	submission.RunHooks(ctx, w.hooks, payload, res, w.log)

	w.form.ResetForm()
	w.clearDraft()
	w.ui.SetSubmitting(false)

	w.record(ctx, "submit", nil, start)
	return res, nil
}

func (w *Wizard) fail(ctx context.Context, err *apperrors.Error, start time.Time) error {
	trace.SpanFromContext(ctx).SetStatus(codes.Error, err.Tag())
	w.ui.SetSubmissionError(w.SubmissionMessage(err))
	w.ui.SetSubmitting(false)
	w.record(ctx, "submit", err, start)
	return err
}

// SubmissionMessage renders a submission failure for the user.
func (w *Wizard) SubmissionMessage(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindTimeout:
		return w.T("form.submitTimeout")
	case apperrors.KindNetworkError:
		return w.T("form.submitNetworkError")
	case apperrors.KindServerError:
		return w.T("form.submitServerError")
	case apperrors.KindValidationError:
		return w.T("form.submitValidationError")
	default:
		return apperrors.TagOf(err)
	}
}

// ConfirmationText renders the last confirmation, or "" when there is none.
func (w *Wizard) ConfirmationText() string {
	c := w.ui.State().Confirmation
	if c == nil {
		return ""
	}
	return w.catalog.Format(w.ui.Language(), "form.confirmation", map[string]string{
		"applicationId": c.ApplicationID,
		"status":        c.Status,
		"submittedAt":   c.SubmittedAt,
		"message":       c.Message,
	})
}

func (w *Wizard) beginSubmit() bool {
	w.submitMu.Lock()
	defer w.submitMu.Unlock()
	if w.submitting {
		return false
	}
	w.submitting = true
	return true
}

func (w *Wizard) endSubmit() {
	w.submitMu.Lock()
	w.submitting = false
	w.submitMu.Unlock()
}
