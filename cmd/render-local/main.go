// Command render-local runs one conversion request from a JSON or YAML file
// using the same configuration as the deployed function.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	flag "github.com/spf13/pflag"

	"github.com/Lllllllleong/htmltopdf/internal/models"
	"github.com/Lllllllleong/htmltopdf/internal/services"
)

// Processor converts a request. *services.ConverterFunction implements it.
type Processor interface {
	Process(ctx context.Context, req *models.PdfRequest) *models.PdfResponse
}

var errConversionFailed = errors.New("conversion failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, func(ctx context.Context) (Processor, error) {
		return services.NewConverter(ctx)
	})
	if err != nil {
		if !errors.Is(err, errConversionFailed) {
			fmt.Fprintln(os.Stderr, "render-local:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, newProcessor func(context.Context) (Processor, error)) error {
	fs := flag.NewFlagSet("render-local", flag.ContinueOnError)
	requestPath := fs.StringP("request", "r", "", "path to a JSON or YAML conversion request")
	bucket := fs.String("bucket", "", "override the output bucket")
	key := fs.String("key", "", "override the output object key")
	region := fs.String("region", "", "override the output region")
	provider := fs.String("provider", "", "override the storage provider (s3 or gcs)")
	verbose := fs.BoolP("verbose", "v", false, "log at debug level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *requestPath == "" && fs.NArg() > 0 {
		*requestPath = fs.Arg(0)
	}
	if *requestPath == "" {
		return errors.New("usage: render-local --request <request.json|request.yaml>")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	req, err := readRequest(*requestPath)
	if err != nil {
		return err
	}
	if *bucket != "" {
		req.Output.Bucket = *bucket
	}
	if *key != "" {
		req.Output.ObjectKey = *key
	}
	if *region != "" {
		req.Output.Region = models.String(*region)
	}
	if *provider != "" {
		req.Output.Provider = *provider
	}

	p, err := newProcessor(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize converter: %w", err)
	}

	res := p.Process(ctx, req)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	if !res.Success {
		return errConversionFailed
	}
	return nil
}

// readRequest decodes a request file. .yaml and .yml files are YAML, anything
// else is JSON.
func readRequest(path string) (*models.PdfRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	var req models.PdfRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	return &req, nil
}
