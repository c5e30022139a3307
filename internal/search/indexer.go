// internal/search/indexer.go

// Package search pushes completed applications into Elasticsearch so the
// back office can find them. Indexing is best effort and happens after the
// record is already durably stored.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"loanflow/internal/common/logger"
	"loanflow/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Indexer writes application documents into one index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search", "index": index}),
	}
}

// document is the flattened shape stored in the index.
type document struct {
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
	Email         string `json:"email,omitempty"`
	ApplicantName string `json:"applicantName,omitempty"`
	Status        string `json:"status"`
	LoanAmount    int    `json:"loanAmount"`
	LoanType      string `json:"loanType,omitempty"`
	SubmittedAt   string `json:"submittedAt,omitempty"`
}

// IndexApplication stores the completed application under its id.
func (ix *Indexer) IndexApplication(ctx context.Context, app *models.Application, user *models.UserProfile) error {
	doc := document{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Status:        string(app.Status),
		LoanAmount:    app.LoanAmount,
		SubmittedAt:   app.SubmittedAt,
	}
	if user != nil {
		doc.Email = user.Email
		doc.ApplicantName = user.FullName()
		doc.LoanType = user.LoanType
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal application document: %w", err)
	}

	res, err := ix.client.Index(
		ix.index,
		bytes.NewReader(payload),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(app.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index application: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.Status())
	}

	ix.logger.Info("application indexed", map[string]interface{}{
		"applicationId": app.ID,
	})
	return nil
}
