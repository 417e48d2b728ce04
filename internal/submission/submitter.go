// Package submission delivers an assembled application to one of the configured backends.
package submission

import (
	"context"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/metrics"
	"social-support-wizard/internal/models"
)

// ConfirmationMessage is returned with every accepted application.
const ConfirmationMessage = "Your application has been received and is under review."

// Submitter delivers an application. Failures are always *errors.Error values.
type Submitter interface {
	Name() string
	Submit(ctx context.Context, payload *models.ApplicationPayload) (*models.SubmissionResult, error)
}

// Hook runs after a successful submission. Its failures never affect the submission.
type Hook interface {
	Name() string
	AfterSubmit(ctx context.Context, payload *models.ApplicationPayload, result *models.SubmissionResult) error
}

func newResult(id string, now time.Time) *models.SubmissionResult {
	return &models.SubmissionResult{
		ApplicationID: id,
		Status:        models.StatusSubmitted,
		SubmittedAt:   now.UTC().Format(time.RFC3339),
		Message:       ConfirmationMessage,
	}
}

type instrumented struct {
	next Submitter
	log  logger.Logger
}

// Instrument counts and times every call to s.
func Instrument(s Submitter, log logger.Logger) Submitter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &instrumented{next: s, log: log.WithFields(map[string]interface{}{"component": "submission", "backend": s.Name()})}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Submit(ctx context.Context, payload *models.ApplicationPayload) (*models.SubmissionResult, error) {
	metrics.SubmissionsActive.Inc()
	defer metrics.SubmissionsActive.Dec()

	start := time.Now()
	result, err := i.next.Submit(ctx, payload)
	metrics.SubmissionDuration.WithLabelValues(i.next.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		classified := apperrors.Normalize(err)
		metrics.SubmissionsTotal.WithLabelValues(i.next.Name(), string(classified.Kind)).Inc()
		apperrors.Report(i.log, "submission failed", classified)
		return nil, classified
	}

	metrics.SubmissionsTotal.WithLabelValues(i.next.Name(), "success").Inc()
	i.log.Info("application submitted", map[string]interface{}{
		"applicationId": result.ApplicationID,
		"durationMs":    time.Since(start).Milliseconds(),
	})
	return result, nil
}

// RunHooks runs every hook in order. Failures are logged and counted only.
func RunHooks(ctx context.Context, hooks []Hook, payload *models.ApplicationPayload, result *models.SubmissionResult, log logger.Logger) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	for _, h := range hooks {
		if err := h.AfterSubmit(ctx, payload, result); err != nil {
			metrics.HookFailures.WithLabelValues(h.Name()).Inc()
			log.Warn("after-submit hook failed", map[string]interface{}{
				"hook":          h.Name(),
				"applicationId": result.ApplicationID,
				"error":         err.Error(),
			})
		}
	}
}
