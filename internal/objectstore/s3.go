package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
	"github.com/Lllllllleong/htmltopdf/internal/models"
)

// PutObjectAPI is the part of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ClientFactory builds an S3 client for a resolved region.
type ClientFactory func(region Region) PutObjectAPI

// S3Config holds the S3 settings read at startup.
type S3Config struct {
	// Endpoint overrides the AWS endpoint, e.g. a local MinIO for testing.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Uploader puts objects to S3 or an S3-compatible store.
type S3Uploader struct {
	endpoint  string
	newClient ClientFactory
}

// NewS3Uploader loads the AWS configuration once. Static credentials are used
// when both keys are set, otherwise the default credential chain.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(DefaultRegion),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	factory := func(region Region) PutObjectAPI {
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.Region = region.Name
			if region.Endpoint != "" {
				o.BaseEndpoint = aws.String(region.Endpoint)
				o.UsePathStyle = true
			}
		})
	}
	return NewS3UploaderWithClient(cfg.Endpoint, factory), nil
}

// NewS3UploaderWithClient creates an S3Uploader around a client factory.
func NewS3UploaderWithClient(endpoint string, factory ClientFactory) *S3Uploader {
	return &S3Uploader{endpoint: endpoint, newClient: factory}
}

func (u *S3Uploader) Put(ctx context.Context, target models.StorageTarget, body []byte) (*PutResult, error) {
	region, err := ResolveRegion(u.endpoint, target.Region)
	if err != nil {
		return nil, err
	}
	if region.Endpoint != "" {
		slog.Info("Using non-standard S3 endpoint.", "endpoint", region.Endpoint, "region", region.Name)
	}

	out, err := u.newClient(region).PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(target.Bucket),
		Key:         aws.String(target.ObjectKey),
		ContentType: aws.String(ContentTypePDF),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return nil, apperr.New(apperr.KindUpload, uploadFailure("s3", target, s3ErrorCode(err)), err)
	}

	return &PutResult{
		Provider: ProviderS3,
		Bucket:   target.Bucket,
		Key:      target.ObjectKey,
		Region:   region.Name,
		Endpoint: region.Endpoint,
		ETag:     aws.ToString(out.ETag),
		Version:  aws.ToString(out.VersionId),
	}, nil
}

func s3ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func uploadFailure(scheme string, target models.StorageTarget, code string) string {
	msg := fmt.Sprintf("failed to upload PDF to %s://%s/%s", scheme, target.Bucket, target.ObjectKey)
	if code != "" {
		msg += " (" + code + ")"
	}
	return msg
}

var _ Uploader = (*S3Uploader)(nil)
