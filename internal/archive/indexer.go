// Package archive copies accepted applications into a search index for caseworkers.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Document is what gets indexed for one application.
type Document struct {
	ApplicationID         string                 `json:"applicationId"`
	Status                string                 `json:"status"`
	SubmittedAt           string                 `json:"submittedAt"`
	Language              string                 `json:"language"`
	PersonalInfo          models.StepData        `json:"personalInfo"`
	FamilyFinancial       models.FamilyFinancial `json:"familyFinancial"`
	SituationDescriptions models.StepData        `json:"situationDescriptions"`
}

// Indexer is an after-submit hook writing one document per application, keyed by its id.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	lang   func() models.Language
	logger logger.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, lang func() models.Language, log logger.Logger) *Indexer {
	if lang == nil {
		lang = func() models.Language { return models.English }
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Indexer{
		es:     es,
		index:  index,
		lang:   lang,
		logger: log.WithFields(map[string]interface{}{"component": "archive", "index": index}),
	}
}

func (i *Indexer) Name() string { return "archive" }

func (i *Indexer) AfterSubmit(ctx context.Context, payload *models.ApplicationPayload, result *models.SubmissionResult) error {
	doc := Document{
		ApplicationID:         result.ApplicationID,
		Status:                result.Status,
		SubmittedAt:           result.SubmittedAt,
		Language:              string(i.lang()),
		PersonalInfo:          payload.PersonalInfo,
		FamilyFinancial:       payload.FamilyFinancial,
		SituationDescriptions: payload.SituationDescriptions,
	}
	return i.Index(ctx, doc)
}

// Index writes doc, replacing any earlier document with the same id.
func (i *Indexer) Index(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode archive document: %w", err)
	}

	res, err := i.es.Index(
		i.index,
		bytes.NewReader(body),
		i.es.Index.WithDocumentID(doc.ApplicationID),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("elasticsearch index error: %s: %s", res.Status(), bytes.TrimSpace(msg))
	}

	i.logger.Debug("application archived", map[string]interface{}{
		"applicationId": doc.ApplicationID,
	})
	return nil
}
