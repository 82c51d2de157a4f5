package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/htmltopdf/internal/gcp"
	"github.com/Lllllllleong/htmltopdf/internal/models"
)

// JobUpdate is a status change of a render job.
type JobUpdate struct {
	Status       string
	ErrorDetails string
	PageCount    int
	Provider     string
}

// JobTracker records the progress of each conversion.
type JobTracker interface {
	Start(ctx context.Context, req *models.PdfRequest) (string, error)
	Update(ctx context.Context, jobID string, update JobUpdate) error
}

// FirestoreJobTracker stores render jobs as Firestore documents.
type FirestoreJobTracker struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreJobTracker creates a tracker writing to collection.
func NewFirestoreJobTracker(client *firestore.Client, collection string) *FirestoreJobTracker {
	return &FirestoreJobTracker{client: client, collection: collection}
}

func (t *FirestoreJobTracker) Start(ctx context.Context, req *models.PdfRequest) (string, error) {
	newJob := models.RenderJob{
		Status:     models.JobStatusRendering,
		Provider:   req.Output.Provider,
		Bucket:     req.Output.Bucket,
		ObjectKey:  req.Output.ObjectKey,
		InputPages: len(req.Pages),
		CreatedAt:  time.Now(),
	}
	docRef, _, err := t.client.Collection(t.collection).Add(ctx, newJob)
	if err != nil {
		return "", fmt.Errorf("failed to create render job: %w", err)
	}
	return docRef.ID, nil
}

func (t *FirestoreJobTracker) Update(ctx context.Context, jobID string, update JobUpdate) error {
	var extra []firestore.Update
	if update.PageCount > 0 {
		extra = append(extra, firestore.Update{Path: "pageCount", Value: update.PageCount})
	}
	if update.Provider != "" {
		extra = append(extra, firestore.Update{Path: "provider", Value: update.Provider})
	}
	docRef := t.client.Collection(t.collection).Doc(jobID)
	return gcp.UpdateStatus(ctx, docRef, update.Status, update.ErrorDetails, extra...)
}

var _ JobTracker = (*FirestoreJobTracker)(nil)
