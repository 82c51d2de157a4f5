package models

import "time"

// Render job statuses stored in Firestore.
const (
	JobStatusRendering    = "RENDERING"
	JobStatusUploading    = "UPLOADING"
	JobStatusCompleted    = "COMPLETED"
	JobStatusRenderFailed = "RENDER_FAILED"
	JobStatusFailed       = "FAILED"
)

// RenderJob is the Firestore record of a single conversion request.
// It tracks the overall status and where the PDF was written.
type RenderJob struct {
	Status       string    `firestore:"status,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	Provider     string    `firestore:"provider,omitempty"`
	Bucket       string    `firestore:"bucket,omitempty"`
	ObjectKey    string    `firestore:"objectKey,omitempty"`
	InputPages   int       `firestore:"inputPages"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
}
