package render

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/Lllllllleong/htmltopdf/internal/apperr"
	"github.com/Lllllllleong/htmltopdf/internal/models"
)

// LocalFileAccessFlag lets the renderer read the temporary files written for
// inline pages. wkhtmltopdf refuses local paths without it.
const LocalFileAccessFlag = "--enable-local-file-access"

const inputFilePattern = "wkhtmltopdf-input-*.html"

// InputFiles are the temporary HTML files written for inline pages. They must
// outlive the renderer process; Release removes them.
type InputFiles struct {
	paths []string
}

// Paths returns the files in creation order.
func (f *InputFiles) Paths() []string {
	return append([]string(nil), f.paths...)
}

// Release removes every file. It is safe to call more than once.
func (f *InputFiles) Release() error {
	var errs []error
	for _, p := range f.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	f.paths = nil
	return errors.Join(errs...)
}

// BuildArgs translates req into renderer arguments, excluding the binary and
// the output path. Inline pages are written to files under tempDir (the
// system default when empty). Warnings go to logger, or the default logger
// when nil.
//
// The returned InputFiles is never nil, even on error, and the caller owns it.
func BuildArgs(logger *slog.Logger, req *models.PdfRequest, tempDir string) ([]string, *InputFiles, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files := &InputFiles{}
	args := appendOptions(nil, req.Options)

	for i, page := range req.Pages {
		args = append(args, string(page.PageType))
		if page.PageType == models.PageTypeTOC {
			continue
		}

		inline := false
		switch {
		case page.HTMLURL != nil:
			if page.HTMLBase64 != nil {
				logger.Warn("Page has both html_url and html_base64; using html_url.", "page", i)
			}
			args = append(args, *page.HTMLURL)
		case page.HTMLBase64 != nil:
			html, err := decodeHTML(*page.HTMLBase64)
			if err != nil {
				return nil, files, apperr.New(apperr.KindDecode, "failed to decode base64", err)
			}
			path, err := writeInputFile(tempDir, html)
			if err != nil {
				return nil, files, err
			}
			files.paths = append(files.paths, path)
			args = append(args, path)
			inline = true
		default:
			return nil, files, apperr.New(apperr.KindMissingSource, "no page source specified", nil)
		}

		args = appendOptions(args, page.Options)
		if inline {
			args = append(args, LocalFileAccessFlag)
		}
	}

	return args, files, nil
}

// decodeHTML decodes standard-alphabet base64, padded or not. Line breaks and
// other characters outside the alphabet are rejected.
func decodeHTML(encoded string) ([]byte, error) {
	if strings.ContainsAny(encoded, "\r\n") {
		return nil, errors.New("illegal line break in input")
	}
	if strings.HasSuffix(encoded, "=") {
		return base64.StdEncoding.Strict().DecodeString(encoded)
	}
	return base64.RawStdEncoding.Strict().DecodeString(encoded)
}

func appendOptions(args []string, opts []models.Option) []string {
	for _, opt := range opts {
		args = append(args, opt.Name)
		if opt.Value != nil {
			args = append(args, *opt.Value)
		}
	}
	return args
}

// writeInputFile writes html to a new temporary file. Nothing is left behind
// on failure.
func writeInputFile(dir string, html []byte) (string, error) {
	file, err := os.CreateTemp(dir, inputFilePattern)
	if err != nil {
		return "", apperr.New(apperr.KindTempFile, "failed to create temp file", err)
	}
	path := file.Name()

	if _, err := file.Write(html); err != nil {
		file.Close()
		os.Remove(path)
		return "", apperr.New(apperr.KindTempFile, "failed to write to temp file", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", apperr.New(apperr.KindTempFile, "failed to write to temp file", err)
	}
	return path, nil
}
