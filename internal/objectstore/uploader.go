// Package objectstore writes rendered PDFs to S3 or Google Cloud Storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
	"github.com/Lllllllleong/htmltopdf/internal/models"
)

// ContentTypePDF is set on every uploaded object.
const ContentTypePDF = "application/pdf"

// Storage providers a target can name.
const (
	ProviderS3  = "s3"
	ProviderGCS = "gcs"
)

// PutResult is the provider's acknowledgement of a put.
type PutResult struct {
	Provider string
	Bucket   string
	Key      string
	Region   string
	Endpoint string
	ETag     string
	Version  string
}

// Location returns the object URI, e.g. s3://bucket/key.
func (r *PutResult) Location() string {
	scheme := r.Provider
	if scheme == ProviderGCS {
		scheme = "gs"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, r.Bucket, r.Key)
}

// Uploader performs a single blocking put of a PDF.
type Uploader interface {
	Put(ctx context.Context, target models.StorageTarget, body []byte) (*PutResult, error)
}

// ReadOutput reads the rendered file fully. A missing or empty file means the
// renderer produced nothing.
func ReadOutput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.New(apperr.KindEmptyOutput, "failed to read PDF output", err)
		}
		return nil, apperr.New(apperr.KindTempFile, "failed to read temp file", err)
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.KindEmptyOutput, "failed to read PDF output", nil)
	}
	return data, nil
}

// ParseProvider normalises a provider name. Empty is returned unchanged.
func ParseProvider(s string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(s))
	switch p {
	case "", ProviderS3, ProviderGCS:
		return p, nil
	case "gs":
		return ProviderGCS, nil
	default:
		return "", fmt.Errorf("unsupported storage provider %q", s)
	}
}

// Router sends each put to the uploader for the target's provider.
type Router struct {
	defaultProvider string
	uploaders       map[string]Uploader
}

// NewRouter creates a Router. The default provider must have an uploader.
func NewRouter(defaultProvider string, uploaders map[string]Uploader) (*Router, error) {
	p, err := ParseProvider(defaultProvider)
	if err != nil {
		return nil, err
	}
	if p == "" {
		p = ProviderS3
	}
	if uploaders[p] == nil {
		return nil, fmt.Errorf("no uploader configured for default storage provider %q", p)
	}
	return &Router{defaultProvider: p, uploaders: uploaders}, nil
}

// DefaultProvider returns the provider used for targets that name none.
func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

func (r *Router) Put(ctx context.Context, target models.StorageTarget, body []byte) (*PutResult, error) {
	p, err := ParseProvider(target.Provider)
	if err != nil {
		return nil, apperr.New(apperr.KindUpload, "failed to select storage provider", err)
	}
	if p == "" {
		p = r.defaultProvider
	}
	u := r.uploaders[p]
	if u == nil {
		return nil, apperr.New(apperr.KindUpload, fmt.Sprintf("storage provider %q is not configured", p), nil)
	}
	return u.Put(ctx, target, body)
}

var _ Uploader = (*Router)(nil)
