package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
	"github.com/Lllllllleong/htmltopdf/internal/gcp"
	"github.com/Lllllllleong/htmltopdf/internal/models"
)

// GCSUploader writes objects to Google Cloud Storage. The target region is
// not used; buckets carry their own location.
type GCSUploader struct {
	client *storage.Client
}

// NewGCSUploader creates a storage client, optionally against endpoint.
func NewGCSUploader(ctx context.Context, endpoint string) (*GCSUploader, error) {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSUploader{client: client}, nil
}

func (u *GCSUploader) Put(ctx context.Context, target models.StorageTarget, body []byte) (*PutResult, error) {
	obj := u.client.Bucket(target.Bucket).Object(target.ObjectKey)
	attrs, err := gcp.WriteObject(ctx, obj, ContentTypePDF, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.New(apperr.KindUpload, uploadFailure("gs", target, gcsErrorCode(err)), err)
	}

	res := &PutResult{
		Provider: ProviderGCS,
		Bucket:   target.Bucket,
		Key:      target.ObjectKey,
	}
	if attrs != nil {
		res.ETag = attrs.Etag
		res.Version = strconv.FormatInt(attrs.Generation, 10)
	}
	return res, nil
}

// Close releases the storage client.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

func gcsErrorCode(err error) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return strconv.Itoa(gerr.Code)
	}
	return ""
}

var _ Uploader = (*GCSUploader)(nil)
