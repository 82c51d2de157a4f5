package services

import (
	"context"
	"log/slog"

	executions "cloud.google.com/go/workflows/executions/apiv1"

	"github.com/Lllllllleong/htmltopdf/internal/gcp"
	"github.com/Lllllllleong/htmltopdf/internal/objectstore"
)

// Notifier hands an uploaded PDF to the next stage.
type Notifier interface {
	Notify(ctx context.Context, jobID string, put *objectstore.PutResult, pageCount int) error
}

// WorkflowNotifier starts a Cloud Workflows execution for each uploaded PDF.
type WorkflowNotifier struct {
	client   *executions.Client
	workflow string
}

// NewWorkflowNotifier creates a notifier for the workflow resource name.
func NewWorkflowNotifier(client *executions.Client, workflow string) *WorkflowNotifier {
	return &WorkflowNotifier{client: client, workflow: workflow}
}

func (n *WorkflowNotifier) Notify(ctx context.Context, jobID string, put *objectstore.PutResult, pageCount int) error {
	payload := handoffPayload(jobID, put, pageCount)
	name, err := gcp.StartExecution(ctx, n.client, n.workflow, payload)
	if err != nil {
		return err
	}
	slog.Info("Triggered workflow.", "execution", name, "location", put.Location())
	return nil
}

func handoffPayload(jobID string, put *objectstore.PutResult, pageCount int) map[string]interface{} {
	return map[string]interface{}{
		"jobId":     jobID,
		"provider":  put.Provider,
		"bucket":    put.Bucket,
		"objectKey": put.Key,
		"pageCount": pageCount,
	}
}

var _ Notifier = (*WorkflowNotifier)(nil)
