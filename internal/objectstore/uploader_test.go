package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
	"github.com/Lllllllleong/htmltopdf/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	name    string
	targets []models.StorageTarget
}

func (u *recordingUploader) Put(_ context.Context, target models.StorageTarget, _ []byte) (*PutResult, error) {
	u.targets = append(u.targets, target)
	return &PutResult{Provider: u.name, Bucket: target.Bucket, Key: target.ObjectKey}, nil
}

func TestReadOutput(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads whole file", func(t *testing.T) {
		path := filepath.Join(dir, "out.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 body"), 0o600))

		data, err := ReadOutput(path)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 body", string(data))
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.pdf")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := ReadOutput(path)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindEmptyOutput))
		assert.Equal(t, "failed to read PDF output", err.Error())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadOutput(filepath.Join(dir, "gone.pdf"))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindEmptyOutput))
	})
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "s3", want: ProviderS3},
		{in: " S3 ", want: ProviderS3},
		{in: "gcs", want: ProviderGCS},
		{in: "gs", want: ProviderGCS},
		{in: "azure", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRouter(t *testing.T) {
	t.Run("default defaults to s3", func(t *testing.T) {
		r, err := NewRouter("", map[string]Uploader{ProviderS3: &recordingUploader{}})
		require.NoError(t, err)
		assert.Equal(t, ProviderS3, r.DefaultProvider())
	})

	t.Run("default must be configured", func(t *testing.T) {
		_, err := NewRouter(ProviderGCS, map[string]Uploader{ProviderS3: &recordingUploader{}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gcs")
	})

	t.Run("unknown default", func(t *testing.T) {
		_, err := NewRouter("ftp", map[string]Uploader{ProviderS3: &recordingUploader{}})
		require.Error(t, err)
	})
}

func TestRouter_Put(t *testing.T) {
	s3Up := &recordingUploader{name: ProviderS3}
	gcsUp := &recordingUploader{name: ProviderGCS}
	r, err := NewRouter(ProviderS3, map[string]Uploader{ProviderS3: s3Up, ProviderGCS: gcsUp})
	require.NoError(t, err)
	ctx := context.Background()

	res, err := r.Put(ctx, models.StorageTarget{Bucket: "b", ObjectKey: "k"}, []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "s3://b/k", res.Location())

	res, err = r.Put(ctx, models.StorageTarget{Bucket: "b", ObjectKey: "k", Provider: "GCS"}, []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "gs://b/k", res.Location())

	assert.Len(t, s3Up.targets, 1)
	assert.Len(t, gcsUp.targets, 1)

	_, err = r.Put(ctx, models.StorageTarget{Bucket: "b", ObjectKey: "k", Provider: "azure"}, []byte("pdf"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpload))
}

func TestRouter_Put_ProviderNotConfigured(t *testing.T) {
	r, err := NewRouter(ProviderS3, map[string]Uploader{ProviderS3: &recordingUploader{}})
	require.NoError(t, err)

	_, err = r.Put(context.Background(), models.StorageTarget{Provider: ProviderGCS}, []byte("pdf"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpload))
	assert.Contains(t, err.Error(), "not configured")
}
