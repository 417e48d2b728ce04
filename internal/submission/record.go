package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/validation"
	"social-support-wizard/internal/models"

	"github.com/google/uuid"
)

// RecordSubmitter validates the payload against the application schema and stores it in Postgres.
type RecordSubmitter struct {
	db     *sql.DB
	schema *validation.Schema
	logger logger.Logger
	now    func() time.Time
}

func NewRecordSubmitter(db *sql.DB, log logger.Logger) (*RecordSubmitter, error) {
	schema, err := validation.CompileSchema(validation.ApplicationSchema)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &RecordSubmitter{
		db:     db,
		schema: schema,
		logger: log.WithFields(map[string]interface{}{"component": "record_submitter"}),
		now:    time.Now,
	}, nil
}

func (r *RecordSubmitter) Name() string { return "postgres" }

func (r *RecordSubmitter) Submit(ctx context.Context, payload *models.ApplicationPayload) (*models.SubmissionResult, error) {
	result, err := r.schema.ValidateDocument(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknownError, err)
	}
	if !result.Valid {
		e := apperrors.New(apperrors.KindValidationError)
		e.Details = strings.Join(result.GetErrorMessages(), "; ")
		return nil, e
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknownError, err)
	}

	appID := uuid.New().String()
	now := r.now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, national_id, applicant_name, email, status, payload, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		appID,
		payload.PersonalInfo[models.FieldNationalID],
		payload.PersonalInfo[models.FieldName],
		payload.PersonalInfo[models.FieldEmail],
		models.StatusSubmitted,
		data,
		now,
	)
	if err != nil {
		return nil, classifyDBError(err)
	}

	// Audit entry is non-critical.
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, entity_type, entity_id, action, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(),
		"application",
		appID,
		"application_submitted",
		now,
	)
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err.Error(),
			"applicationId": appID,
		})
	}

	r.logger.Info("application record created", map[string]interface{}{
		"applicationId": appID,
	})
	return newResult(appID, now), nil
}

func classifyDBError(err error) *apperrors.Error {
	if apperrors.IsTimeout(err) {
		return apperrors.Wrap(apperrors.KindTimeout, err)
	}
	return apperrors.Wrap(apperrors.KindServerError, fmt.Errorf("insert application: %w", err))
}
