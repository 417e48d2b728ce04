package submission

import (
	"context"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/models"

	"github.com/google/uuid"
)

// ProcessStarter creates a workflow instance. *camunda.Client satisfies it.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, vars interface{}) (int64, error)
}

// ProcessSubmitter hands the application to a BPMN process for review.
type ProcessSubmitter struct {
	starter   ProcessStarter
	processID string
	logger    logger.Logger
	now       func() time.Time
}

func NewProcessSubmitter(starter ProcessStarter, processID string, log logger.Logger) *ProcessSubmitter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ProcessSubmitter{
		starter:   starter,
		processID: processID,
		logger:    log.WithFields(map[string]interface{}{"component": "process_submitter", "processId": processID}),
		now:       time.Now,
	}
}

func (p *ProcessSubmitter) Name() string { return "camunda" }

// processVariables is the variable document the process instance starts with.
type processVariables struct {
	ApplicationID string                     `json:"applicationId"`
	Application   *models.ApplicationPayload `json:"application"`
}

func (p *ProcessSubmitter) Submit(ctx context.Context, payload *models.ApplicationPayload) (*models.SubmissionResult, error) {
	appID := uuid.New().String()

	key, err := p.starter.StartProcess(ctx, p.processID, processVariables{
		ApplicationID: appID,
		Application:   payload,
	})
	if err != nil {
		if e, ok := apperrors.As(err); ok {
			return nil, e
		}
		if apperrors.IsTimeout(err) {
			return nil, apperrors.Wrap(apperrors.KindTimeout, err)
		}
		return nil, apperrors.Wrap(apperrors.KindServerError, err)
	}

	p.logger.Info("process instance created", map[string]interface{}{
		"applicationId":      appID,
		"processInstanceKey": key,
	})
	return newResult(appID, p.now()), nil
}
