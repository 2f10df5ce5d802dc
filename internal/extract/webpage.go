package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const userAgent = "arbor-api/1.0"

// fetchPage downloads a remote page body, capped at the configured size
// limit. Only http and https URLs are accepted.
func (p *Pipeline) fetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxFetchSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > p.maxFetchSize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, p.maxFetchSize)
	}

	return body, nil
}

// articleText runs readability extraction over the page and returns the
// plain text of the main article, prefixed with its title when present.
func articleText(pageURL string, page []byte) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(page)), parsed)
	if err != nil {
		return "", fmt.Errorf("readability failed: %w", err)
	}

	text := collapseWhitespace(article.TextContent)
	if text == "" {
		return "", ErrNoArticleText
	}

	title := strings.TrimSpace(article.Title)
	if title != "" && !strings.HasPrefix(text, title) {
		text = title + "\n\n" + text
	}
	return text, nil
}

// metadataText scrapes page metadata as a last resort before the
// placeholder: OpenGraph and Twitter card tags, the meta description, and
// the document title.
func metadataText(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := metaProperty(doc, "og:title")
	if title == "" {
		title = metaName(doc, "twitter:title")
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	description := metaProperty(doc, "og:description")
	if description == "" {
		description = metaName(doc, "twitter:description")
	}
	if description == "" {
		description = metaName(doc, "description")
	}

	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	if description != "" {
		parts = append(parts, description)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("page carries no usable metadata")
	}

	return strings.Join(parts, "\n\n"), nil
}

func metaProperty(doc *goquery.Document, property string) string {
	sel := fmt.Sprintf(`meta[property=%q]`, property)
	content, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaName(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[name=%q]`, name)
	content, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(content)
}
