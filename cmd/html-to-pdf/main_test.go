package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/htmltopdf/internal/models"
	"github.com/Lllllllleong/htmltopdf/internal/objectstore"
	"github.com/Lllllllleong/htmltopdf/internal/render"
	"github.com/Lllllllleong/htmltopdf/internal/services"
)

type pdfRunner struct{}

func (pdfRunner) Run(_ context.Context, args []string, outputPath string) (*render.Result, error) {
	if len(args) > 0 && args[len(args)-1] == "https://example.com/fail.html" {
		return &render.Result{Success: false, ExitCode: 1, Stderr: []byte("HostNotFoundError")}, nil
	}
	return &render.Result{Success: true}, os.WriteFile(outputPath, []byte("%PDF-1.4"), 0o600)
}

type memUploader struct {
	keys []string
}

func (u *memUploader) Put(_ context.Context, target models.StorageTarget, _ []byte) (*objectstore.PutResult, error) {
	u.keys = append(u.keys, target.ObjectKey)
	return &objectstore.PutResult{Provider: objectstore.ProviderS3, Bucket: target.Bucket, Key: target.ObjectKey}, nil
}

var uploads = &memUploader{}

func TestMain(m *testing.M) {
	once.Do(func() {
		converterInstance = services.NewConverterWith(services.Dependencies{
			Runner:     pdfRunner{},
			Uploader:   uploads,
			CountPages: func(string) (int, error) { return 1, nil },
		})
	})
	os.Exit(m.Run())
}

func post(t *testing.T, body string) (*httptest.ResponseRecorder, models.PdfResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	convertHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	var res models.PdfResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return rec, res
}

func TestConvertHTTP_Success(t *testing.T) {
	rec, res := post(t, `{
		"pages": [{"page_type": "content", "html_url": "https://example.com/a.html"}],
		"output": {"bucket": "b", "object_key": "http/ok.pdf"}
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, res.Success)
	assert.JSONEq(t, `{"success": true, "messages": []}`, rec.Body.String())
	assert.Contains(t, uploads.keys, "http/ok.pdf")
}

func TestConvertHTTP_RendererFailure(t *testing.T) {
	rec, res := post(t, `{
		"pages": [{"page_type": "content", "html_url": "https://example.com/fail.html"}],
		"output": {"bucket": "b", "object_key": "http/fail.pdf"}
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"HostNotFoundError"}, res.Messages)
	assert.NotContains(t, uploads.keys, "http/fail.pdf")
}

func TestConvertHTTP_InternalError(t *testing.T) {
	rec, res := post(t, `{"pages": [{"page_type": "cover"}], "output": {"bucket": "b", "object_key": "k"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PdfResponse{Success: false, Messages: []string{"no page source specified"}}, res)
}

func TestConvertHTTP_BadBody(t *testing.T) {
	rec, res := post(t, `{"pages": [`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, res.Success)
	require.Len(t, res.Messages, 1)
	assert.True(t, strings.HasPrefix(res.Messages[0], "could not parse request: "))
}

func TestConvertEvent(t *testing.T) {
	req := models.PdfRequest{
		Pages:  []models.Page{{PageType: models.PageTypeContent, HTMLURL: models.String("https://example.com/a.html")}},
		Output: models.StorageTarget{Bucket: "b", ObjectKey: "event/ok.pdf"},
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	var msg models.PubSubMessage
	msg.Message.Data = data
	msg.Message.MessageID = "42"

	e := cloudevents.NewEvent()
	e.SetID("evt-1")
	e.SetSource("//pubsub.googleapis.com/projects/p/topics/render")
	e.SetType("google.cloud.pubsub.topic.v1.messagePublished")
	require.NoError(t, e.SetData(cloudevents.ApplicationJSON, msg))

	require.NoError(t, convertEvent(context.Background(), e))
	assert.Contains(t, uploads.keys, "event/ok.pdf")
}

func TestConvertEvent_MalformedEnvelope(t *testing.T) {
	e := cloudevents.NewEvent()
	e.SetID("evt-2")
	e.SetSource("test")
	e.SetType("test")
	require.NoError(t, e.SetData(cloudevents.TextPlain, []byte("not json")))

	err := convertEvent(context.Background(), e)
	require.Error(t, err)
}
