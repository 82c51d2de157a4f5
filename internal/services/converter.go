package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
	"github.com/Lllllllleong/htmltopdf/internal/gcp"
	"github.com/Lllllllleong/htmltopdf/internal/models"
	"github.com/Lllllllleong/htmltopdf/internal/objectstore"
	"github.com/Lllllllleong/htmltopdf/internal/render"
)

const outputFilePattern = "wkhtmltopdf-output-*.pdf"

// ConverterConfig holds all configuration for the converter service.
type ConverterConfig struct {
	Renderer         render.Environment
	S3               objectstore.S3Config
	StorageProvider  string
	GCSEndpoint      string
	ProjectID        string
	JobsCollection   string
	WorkflowID       string
	WorkflowLocation string
}

// Runner runs the renderer. *render.Invoker is the production implementation.
type Runner interface {
	Run(ctx context.Context, args []string, outputPath string) (*render.Result, error)
}

// Dependencies are the collaborators of a ConverterFunction. Jobs and
// Notifier are optional.
type Dependencies struct {
	Runner   Runner
	Uploader objectstore.Uploader
	Jobs     JobTracker
	Notifier Notifier
	// TempDir holds input and output files; empty means the system default.
	TempDir string
	// CountPages inspects the rendered file. Defaults to pdfcpu.
	CountPages func(path string) (int, error)
}

// ConverterFunction holds the dependencies for the conversion logic.
type ConverterFunction struct {
	runner     Runner
	uploader   objectstore.Uploader
	jobs       JobTracker
	notifier   Notifier
	tempDir    string
	countPages func(path string) (int, error)
}

// loadConfig loads and validates all necessary environment variables for this service.
func loadConfig() (*ConverterConfig, error) {
	provider, err := objectstore.ParseProvider(gcp.GetEnv("STORAGE_PROVIDER", objectstore.ProviderS3))
	if err != nil {
		return nil, fmt.Errorf("STORAGE_PROVIDER: %w", err)
	}

	config := &ConverterConfig{
		Renderer: render.Environment{
			ExplicitPath:      gcp.GetEnv("RENDERER_PATH", ""),
			ExplicitFontsPath: gcp.GetEnv("RENDERER_FONTS_PATH", ""),
			TaskRoot:          gcp.GetEnv("LAMBDA_TASK_ROOT", gcp.GetEnv("TASK_ROOT", "")),
		},
		S3: objectstore.S3Config{
			Endpoint:        gcp.GetEnv("S3_ENDPOINT", ""),
			AccessKeyID:     gcp.GetEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: gcp.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		},
		StorageProvider:  provider,
		GCSEndpoint:      gcp.GetEnv("GCS_ENDPOINT", ""),
		ProjectID:        gcp.GetEnv("PROJECT_ID", ""),
		JobsCollection:   gcp.GetEnv("JOBS_COLLECTION", "render-jobs"),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}
	if config.WorkflowID != "" && config.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set when WORKFLOW_ID is set")
	}
	return config, nil
}

// NewConverter creates a new ConverterFunction from the environment. The
// renderer is located once here.
func NewConverter(ctx context.Context) (*ConverterFunction, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	exe := render.Locate(config.Renderer)
	slog.Info("Renderer located.", "binary", exe.Path, "fontconfigPath", exe.FontConfigPath)

	s3Uploader, err := objectstore.NewS3Uploader(ctx, config.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 uploader: %w", err)
	}
	uploaders := map[string]objectstore.Uploader{objectstore.ProviderS3: s3Uploader}

	gcsUploader, err := objectstore.NewGCSUploader(ctx, config.GCSEndpoint)
	switch {
	case err == nil:
		uploaders[objectstore.ProviderGCS] = gcsUploader
	case config.StorageProvider == objectstore.ProviderGCS:
		return nil, fmt.Errorf("failed to create GCS uploader: %w", err)
	default:
		slog.Warn("GCS uploads disabled.", "error", err)
	}

	router, err := objectstore.NewRouter(config.StorageProvider, uploaders)
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		Runner:   render.NewInvoker(exe),
		Uploader: router,
	}

	if config.ProjectID != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		deps.Jobs = NewFirestoreJobTracker(firestoreClient, config.JobsCollection)
	}

	if config.WorkflowID != "" {
		executionsClient, err := executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
		workflow := gcp.WorkflowName(config.ProjectID, config.WorkflowLocation, config.WorkflowID)
		deps.Notifier = NewWorkflowNotifier(executionsClient, workflow)
	}

	slog.Info("Converter initialized.",
		"defaultProvider", router.DefaultProvider(),
		"s3Endpoint", config.S3.Endpoint,
		"jobTracking", deps.Jobs != nil,
		"workflowId", config.WorkflowID)
	return NewConverterWith(deps), nil
}

// NewConverterWith creates a ConverterFunction from explicit dependencies.
func NewConverterWith(deps Dependencies) *ConverterFunction {
	countPages := deps.CountPages
	if countPages == nil {
		countPages = pdfPageCount
	}
	return &ConverterFunction{
		runner:     deps.Runner,
		uploader:   deps.Uploader,
		jobs:       deps.Jobs,
		notifier:   deps.Notifier,
		tempDir:    deps.TempDir,
		countPages: countPages,
	}
}

// Process converts the request's pages into one PDF and uploads it. It never
// fails: internal errors come back as a non-success response carrying the
// error text.
func (f *ConverterFunction) Process(ctx context.Context, req *models.PdfRequest) (res *models.PdfResponse) {
	logCtx := slog.With("bucket", req.Output.Bucket, "objectKey", req.Output.ObjectKey)
	var jobID string

	defer func() {
		if r := recover(); r != nil {
			logCtx.Error("Recovered from panic during conversion.", "panic", r)
			f.updateJob(ctx, logCtx, jobID, JobUpdate{Status: models.JobStatusFailed, ErrorDetails: fmt.Sprint(r)})
			res = models.NewFailureResponse(fmt.Sprintf("internal error: %v", r))
		}
	}()

	logCtx.Info("Converting pages.", "pageCount", len(req.Pages))
	jobID = f.startJob(ctx, logCtx, req)
	if jobID != "" {
		logCtx = logCtx.With("jobId", jobID)
	}

	res, err := f.convert(ctx, logCtx, req, jobID)
	if err != nil {
		kind, _ := apperr.KindOf(err)
		logCtx.Error("Conversion failed.", "errorKind", kind, "error", err)
		f.updateJob(ctx, logCtx, jobID, JobUpdate{Status: models.JobStatusFailed, ErrorDetails: err.Error()})
		return models.NewFailureResponse(err.Error())
	}
	return res
}

func (f *ConverterFunction) convert(ctx context.Context, logCtx *slog.Logger, req *models.PdfRequest, jobID string) (*models.PdfResponse, error) {
	if len(req.Pages) == 0 {
		logCtx.Warn("Request has no pages; passing it to the renderer unchanged.")
	}

	args, inputs, err := render.BuildArgs(logCtx, req, f.tempDir)
	defer func() {
		if err := inputs.Release(); err != nil {
			logCtx.Warn("Failed to remove input temp files.", "error", err)
		}
	}()
	if err != nil {
		return nil, err
	}

	outputPath, err := createOutputFile(f.tempDir)
	if err != nil {
		return nil, err
	}
	defer os.Remove(outputPath)

	logCtx.Info("Running renderer.", "args", args, "outputPath", outputPath)
	result, err := f.runner.Run(ctx, args, outputPath)
	if err != nil {
		return nil, err
	}

	if !result.Success {
		logCtx.Error("Renderer exited unsuccessfully.",
			"exitCode", result.ExitCode,
			"stdout", string(result.Stdout),
			"stderr", string(result.Stderr))
		messages := result.Messages()
		f.updateJob(ctx, logCtx, jobID, JobUpdate{
			Status:       models.JobStatusRenderFailed,
			ErrorDetails: strings.Join(messages, "\n"),
		})
		return &models.PdfResponse{Success: false, Messages: messages}, nil
	}
	logCtx.Info("Successfully converted HTML to PDF.")
	f.updateJob(ctx, logCtx, jobID, JobUpdate{Status: models.JobStatusUploading})

	body, err := objectstore.ReadOutput(outputPath)
	if err != nil {
		return nil, err
	}

	pageCount, err := f.countPages(outputPath)
	if err != nil {
		logCtx.Warn("Could not inspect rendered PDF.", "error", err)
		pageCount = 0
	}

	put, err := f.uploader.Put(ctx, req.Output, body)
	if err != nil {
		return nil, err
	}
	logCtx.Info("Uploaded PDF.",
		"location", put.Location(),
		"region", put.Region,
		"bytes", len(body),
		"pdfPages", pageCount)

	f.updateJob(ctx, logCtx, jobID, JobUpdate{
		Status:    models.JobStatusCompleted,
		PageCount: pageCount,
		Provider:  put.Provider,
	})
	f.notify(ctx, logCtx, jobID, put, pageCount)

	return &models.PdfResponse{Success: true, Messages: []string{}}, nil
}

func (f *ConverterFunction) startJob(ctx context.Context, logCtx *slog.Logger, req *models.PdfRequest) string {
	if f.jobs == nil {
		return ""
	}
	jobID, err := f.jobs.Start(ctx, req)
	if err != nil {
		logCtx.Error("Failed to create render job record.", "error", err)
		return ""
	}
	return jobID
}

func (f *ConverterFunction) updateJob(ctx context.Context, logCtx *slog.Logger, jobID string, update JobUpdate) {
	if f.jobs == nil || jobID == "" {
		return
	}
	if err := f.jobs.Update(ctx, jobID, update); err != nil {
		logCtx.Error("Failed to update render job record.", "status", update.Status, "error", err)
	}
}

func (f *ConverterFunction) notify(ctx context.Context, logCtx *slog.Logger, jobID string, put *objectstore.PutResult, pageCount int) {
	if f.notifier == nil {
		return
	}
	if err := f.notifier.Notify(ctx, jobID, put, pageCount); err != nil {
		logCtx.Error("Failed to hand off uploaded PDF.", "error", err)
	}
}

// createOutputFile reserves a uniquely named file for the renderer to write.
func createOutputFile(dir string) (string, error) {
	file, err := os.CreateTemp(dir, outputFilePattern)
	if err != nil {
		return "", apperr.New(apperr.KindTempFile, "failed to create temp file", err)
	}
	path := file.Name()
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", apperr.New(apperr.KindTempFile, "failed to create temp file", err)
	}
	return path, nil
}

func pdfPageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
