// Package extract implements the best-effort text-extraction pipeline for
// ingested documents. Given a source (an uploaded file or a remote URL) it
// tries a fixed sequence of strategies, each of which either yields usable
// text or falls through to the next:
//
//  1. native text layer extraction (PDF text layer, plain text files)
//  2. OCR when native extraction comes up short
//  3. for remote pages: caption tracks, readability article extraction,
//     then HTML metadata heuristics
//
// If every strategy fails, a fixed placeholder is returned instead of
// content. There is no retry scheduling and no durable state: one pass,
// every attempt guarded, failures collected as warnings on the result.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arborhq/arbor-api/internal/config"
	"github.com/arborhq/arbor-api/internal/domain"
)

// PlaceholderText is stored as document content when no strategy produced
// usable text.
const PlaceholderText = "No readable text could be extracted from this source."

// Common extraction errors
var (
	ErrEmptySource   = errors.New("source has no content")
	ErrTooShort      = errors.New("extracted text below minimum length")
	ErrUnsupported   = errors.New("unsupported source type")
	ErrBodyTooLarge  = errors.New("remote body exceeds size limit")
	ErrNoCaptions    = errors.New("no caption track found")
	ErrNoArticleText = errors.New("no article text found")
)

// SourceKind identifies how a source's content is reached.
type SourceKind string

// Possible source kinds
const (
	SourceKindFile SourceKind = "file"
	SourceKindURL  SourceKind = "url"
)

// Source is the input to the pipeline: either raw file bytes or a URL.
type Source struct {
	Kind     SourceKind
	Name     string
	MimeType string
	Data     []byte
	URL      string
}

// Result is the outcome of a pipeline run. Text is never empty: when all
// strategies fail it holds PlaceholderText and Method is
// domain.ExtractionMethodFallback. Warnings record each strategy that was
// tried and failed.
type Result struct {
	Text     string
	Method   domain.ExtractionMethod
	Warnings []string
}

// Fallback reports whether the pipeline had to store the placeholder.
func (r *Result) Fallback() bool {
	return r.Method == domain.ExtractionMethodFallback
}

// OCRClient abstracts the OCR provider so the pipeline can be tested
// without network access. Implemented by vision.Client.
type OCRClient interface {
	// ExtractText runs document text detection over the file bytes.
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Pipeline runs the extraction strategy chain.
type Pipeline struct {
	logger *slog.Logger

	minTextLength int
	maxFetchSize  int64
	httpClient    *http.Client

	ocr OCRClient // nil when OCR is disabled
}

// NewPipeline creates a Pipeline from the extraction configuration.
// ocr may be nil, which disables the OCR fallback.
func NewPipeline(cfg config.ExtractionConfig, ocr OCRClient, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	minLength := cfg.MinTextLength
	if minLength <= 0 {
		minLength = 120
	}

	maxFetch := cfg.MaxFetchSizeBytes
	if maxFetch <= 0 {
		maxFetch = 10 * 1024 * 1024
	}

	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if !cfg.OCREnabled {
		ocr = nil
	}

	return &Pipeline{
		logger:        logger.With("component", "extract_pipeline"),
		minTextLength: minLength,
		maxFetchSize:  maxFetch,
		httpClient:    &http.Client{Timeout: timeout},
		ocr:           ocr,
	}
}

// Extract runs the strategy chain for the given source. It only returns an
// error for unusable input (nil data, missing URL); strategy failures
// degrade to the placeholder result instead.
func (p *Pipeline) Extract(ctx context.Context, src Source) (*Result, error) {
	switch src.Kind {
	case SourceKindFile:
		if len(src.Data) == 0 {
			return nil, ErrEmptySource
		}
		return p.extractFile(ctx, src), nil
	case SourceKindURL:
		if strings.TrimSpace(src.URL) == "" {
			return nil, ErrEmptySource
		}
		return p.extractURL(ctx, src), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, src.Kind)
	}
}

// extractFile tries the native text layer first, then OCR.
func (p *Pipeline) extractFile(ctx context.Context, src Source) *Result {
	result := &Result{}

	text, err := p.nativeText(src)
	if err == nil && p.usable(text) {
		result.Text = text
		result.Method = domain.ExtractionMethodNative
		return result
	}
	result.Warnings = append(result.Warnings, warnf("native extraction", err, text, p.minTextLength))

	if p.ocr != nil {
		ocrText, ocrErr := p.ocr.ExtractText(ctx, src.Data, src.MimeType)
		if ocrErr == nil && p.usable(ocrText) {
			result.Text = collapseWhitespace(ocrText)
			result.Method = domain.ExtractionMethodOCR
			return result
		}
		result.Warnings = append(result.Warnings, warnf("ocr", ocrErr, ocrText, p.minTextLength))
	}

	p.logger.Warn("all file extraction strategies failed, storing placeholder",
		"name", src.Name,
		"mime_type", src.MimeType,
		"warnings", result.Warnings)

	result.Text = PlaceholderText
	result.Method = domain.ExtractionMethodFallback
	return result
}

// extractURL fetches the page once and tries caption tracks, readability
// article extraction, and metadata heuristics against the same body.
func (p *Pipeline) extractURL(ctx context.Context, src Source) *Result {
	result := &Result{}

	page, err := p.fetchPage(ctx, src.URL)
	if err != nil {
		p.logger.Warn("failed to fetch remote page, storing placeholder",
			"url", src.URL,
			"error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("fetch: %v", err))
		result.Text = PlaceholderText
		result.Method = domain.ExtractionMethodFallback
		return result
	}

	captions, err := p.captionText(ctx, src.URL, page)
	if err == nil && p.usable(captions) {
		result.Text = captions
		result.Method = domain.ExtractionMethodCaptions
		return result
	}
	result.Warnings = append(result.Warnings, warnf("captions", err, captions, p.minTextLength))

	article, err := articleText(src.URL, page)
	if err == nil && p.usable(article) {
		result.Text = article
		result.Method = domain.ExtractionMethodWebpage
		return result
	}
	result.Warnings = append(result.Warnings, warnf("readability", err, article, p.minTextLength))

	// Metadata is accepted even below the usual threshold: a title plus a
	// description is still better than the placeholder.
	meta, err := metadataText(page)
	if err == nil && meta != "" {
		result.Text = meta
		result.Method = domain.ExtractionMethodWebpage
		return result
	}
	result.Warnings = append(result.Warnings, warnf("metadata", err, meta, p.minTextLength))

	p.logger.Warn("all URL extraction strategies failed, storing placeholder",
		"url", src.URL,
		"warnings", result.Warnings)

	result.Text = PlaceholderText
	result.Method = domain.ExtractionMethodFallback
	return result
}

// usable reports whether text clears the minimum length threshold.
func (p *Pipeline) usable(text string) bool {
	return len(strings.TrimSpace(text)) >= p.minTextLength
}

// warnf formats a strategy failure for the warnings list.
func warnf(strategy string, err error, text string, minLength int) string {
	if err != nil {
		return fmt.Sprintf("%s: %v", strategy, err)
	}
	return fmt.Sprintf("%s: %v (%d < %d chars)", strategy, ErrTooShort, len(strings.TrimSpace(text)), minLength)
}

// collapseWhitespace normalizes runs of whitespace to single spaces while
// keeping line breaks.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.Join(strings.Fields(line), " "))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
