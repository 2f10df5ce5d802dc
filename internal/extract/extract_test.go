package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor-api/internal/config"
	"github.com/arborhq/arbor-api/internal/domain"
)

// fakeOCR is a canned OCRClient for pipeline tests.
type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	return f.text, f.err
}

func testConfig() config.ExtractionConfig {
	return config.ExtractionConfig{
		MinTextLength:       50,
		MaxFetchSizeBytes:   1 << 20,
		FetchTimeoutSeconds: 5,
		OCREnabled:          true,
	}
}

func longText(seed string) string {
	return strings.Repeat(seed+" ", 20)
}

func TestExtract_PlainTextFile(t *testing.T) {
	t.Parallel()

	p := NewPipeline(testConfig(), nil, nil)
	body := longText("morning pages about discipline and consistency")

	result, err := p.Extract(context.Background(), Source{
		Kind:     SourceKindFile,
		Name:     "notes.txt",
		MimeType: "text/plain",
		Data:     []byte(body),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodNative, result.Method)
	assert.Equal(t, strings.TrimSpace(body), result.Text)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.Fallback())
}

func TestExtract_OCRFallbackForScannedFile(t *testing.T) {
	t.Parallel()

	ocr := &fakeOCR{text: longText("a scanned page recognized by the annotator")}
	p := NewPipeline(testConfig(), ocr, nil)

	// A JPEG has no native text layer, so the pipeline must reach OCR.
	result, err := p.Extract(context.Background(), Source{
		Kind:     SourceKindFile,
		Name:     "scan.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xFF, 0xD8, 0xFF, 0xE0},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodOCR, result.Method)
	assert.Contains(t, result.Text, "scanned page")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "native extraction")
}

func TestExtract_PlaceholderWhenEverythingFails(t *testing.T) {
	t.Parallel()

	ocr := &fakeOCR{err: errors.New("annotator unavailable")}
	p := NewPipeline(testConfig(), ocr, nil)

	result, err := p.Extract(context.Background(), Source{
		Kind:     SourceKindFile,
		Name:     "scan.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xFF, 0xD8},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodFallback, result.Method)
	assert.Equal(t, PlaceholderText, result.Text)
	assert.Len(t, result.Warnings, 2)
	assert.True(t, result.Fallback())
}

func TestExtract_OCRDisabledSkipsAnnotator(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.OCREnabled = false

	ocr := &fakeOCR{text: longText("should never be used")}
	p := NewPipeline(cfg, ocr, nil)

	result, err := p.Extract(context.Background(), Source{
		Kind:     SourceKindFile,
		Name:     "scan.jpg",
		MimeType: "image/jpeg",
		Data:     []byte{0xFF, 0xD8},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodFallback, result.Method)
	assert.Len(t, result.Warnings, 1)
}

func TestExtract_EmptySources(t *testing.T) {
	t.Parallel()

	p := NewPipeline(testConfig(), nil, nil)

	_, err := p.Extract(context.Background(), Source{Kind: SourceKindFile})
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = p.Extract(context.Background(), Source{Kind: SourceKindURL, URL: "   "})
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = p.Extract(context.Background(), Source{Kind: SourceKind("ftp")})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestExtract_URLArticle(t *testing.T) {
	t.Parallel()

	paragraph := longText("deliberate practice compounds when sessions are short and frequent")
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>The Practice Loop</title></head>
<body>
<article>
<h1>The Practice Loop</h1>
<p>%s</p>
<p>%s</p>
</article>
</body>
</html>`, paragraph, paragraph)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	p := NewPipeline(testConfig(), nil, nil)
	result, err := p.Extract(context.Background(), Source{Kind: SourceKindURL, URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodWebpage, result.Method)
	assert.Contains(t, result.Text, "deliberate practice compounds")
	// Caption discovery ran first and missed.
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "captions")
}

func TestExtract_URLMetadataFallback(t *testing.T) {
	t.Parallel()

	page := `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="Atomic Habits, Summarized">
<meta name="description" content="A short guide to building systems instead of goals.">
</head>
<body><p>tiny</p></body>
</html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	p := NewPipeline(testConfig(), nil, nil)
	result, err := p.Extract(context.Background(), Source{Kind: SourceKindURL, URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodWebpage, result.Method)
	assert.Contains(t, result.Text, "Atomic Habits, Summarized")
	assert.Contains(t, result.Text, "building systems instead of goals")
}

func TestExtract_URLCaptions(t *testing.T) {
	t.Parallel()

	captionXML := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
<text start="0.0" dur="2.1">welcome back to the channel</text>
<text start="2.1" dur="3.0">today we cover spaced repetition</text>
<text start="5.1" dur="2.4">and why cramming fails over long horizons</text>
</transcript>`

	mux := http.NewServeMux()
	mux.HandleFunc("/captions.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(captionXML))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><head><title>Video</title></head>
<body><video><track kind="captions" src="/captions.xml"></video></body></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	cfg.MinTextLength = 40
	p := NewPipeline(cfg, nil, nil)

	result, err := p.Extract(context.Background(), Source{Kind: SourceKindURL, URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodCaptions, result.Method)
	assert.Equal(t,
		"welcome back to the channel today we cover spaced repetition and why cramming fails over long horizons",
		result.Text)
}

func TestExtract_URLFetchFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPipeline(testConfig(), nil, nil)
	result, err := p.Extract(context.Background(), Source{Kind: SourceKindURL, URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionMethodFallback, result.Method)
	assert.Equal(t, PlaceholderText, result.Text)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "fetch")
}

func TestFetchPage_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxFetchSizeBytes = 1024
	p := NewPipeline(cfg, nil, nil)

	_, err := p.fetchPage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestFetchPage_RejectsNonHTTPSchemes(t *testing.T) {
	t.Parallel()

	p := NewPipeline(testConfig(), nil, nil)
	_, err := p.fetchPage(context.Background(), "file:///etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported URL scheme")
}

func TestFindCaptionTrack_TimedTextURL(t *testing.T) {
	t.Parallel()

	page := []byte(`{"captionTracks":[{"baseUrl":"https://video.example.com/api/timedtext?v=abc123&lang=en"}]}`)

	got, err := findCaptionTrack("https://video.example.com/watch?v=abc123", page)
	require.NoError(t, err)
	assert.Equal(t, "https://video.example.com/api/timedtext?v=abc123&lang=en", got)
}

func TestFindCaptionTrack_HTMLEscapedURL(t *testing.T) {
	t.Parallel()

	page := []byte(`<a href="https://video.example.com/api/timedtext?v=abc123&amp;lang=en&amp;fmt=srv3">captions</a>`)

	got, err := findCaptionTrack("https://video.example.com/watch?v=abc123", page)
	require.NoError(t, err)
	assert.Equal(t, "https://video.example.com/api/timedtext?v=abc123&lang=en&fmt=srv3", got)
}

func TestFindCaptionTrack_JSONEscapedURL(t *testing.T) {
	t.Parallel()

	page := []byte(`{"captionTracks":[{"baseUrl":"https:\/\/video.example.com\/api\/timedtext?v=abc123\u0026lang=en"}]}`)

	got, err := findCaptionTrack("https://video.example.com/watch?v=abc123", page)
	require.NoError(t, err)
	assert.Equal(t, "https://video.example.com/api/timedtext?v=abc123&lang=en", got)
}

func TestFindCaptionTrack_NoTrack(t *testing.T) {
	t.Parallel()

	_, err := findCaptionTrack("https://example.com/post", []byte(`<html><body><p>hi</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestParseCaptionCues_EmptyTranscript(t *testing.T) {
	t.Parallel()

	_, err := parseCaptionCues([]byte(`<transcript></transcript>`))
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "one two\nthree", collapseWhitespace("  one \t two \r\n three  "))
	assert.Equal(t, "", collapseWhitespace(" \t \n "))
}
