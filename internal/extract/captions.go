package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// timedTextURLPattern matches caption track URLs embedded in video page
// markup or player configuration blobs. Backslashes stay in the match so
// JSON-escaped URLs (`https:\/\/...`) are caught and unescaped afterwards.
var timedTextURLPattern = regexp.MustCompile(`https?:[^"'\s]*?/api\\?/timedtext[^"'\s]*`)

// captionText tries to locate a caption track for the page and returns its
// cue text joined into a single transcript. Pages without caption tracks
// return ErrNoCaptions.
func (p *Pipeline) captionText(ctx context.Context, pageURL string, page []byte) (string, error) {
	trackURL, err := findCaptionTrack(pageURL, page)
	if err != nil {
		return "", err
	}

	body, err := p.fetchPage(ctx, trackURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch caption track: %w", err)
	}

	return parseCaptionCues(body)
}

// findCaptionTrack looks for a caption track URL in the page: first an
// embedded timedtext API URL, then <track> elements with a src attribute.
func findCaptionTrack(pageURL string, page []byte) (string, error) {
	if match := timedTextURLPattern.Find(page); match != nil {
		return unescapeTrackURL(string(match)), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	src, ok := doc.Find("track[src]").First().Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", ErrNoCaptions
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", fmt.Errorf("invalid track URL: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// unescapeTrackURL undoes the escaping applied by the contexts timedtext
// URLs are embedded in: HTML attributes (&amp;) and JSON player-config
// strings (\u0026 and \/).
func unescapeTrackURL(raw string) string {
	raw = strings.ReplaceAll(raw, `\u0026`, "&")
	raw = strings.ReplaceAll(raw, `&amp;`, "&")
	raw = strings.ReplaceAll(raw, `\/`, "/")
	return raw
}

// timedTextDoc is the timedtext caption XML layout: a flat list of cue
// elements whose character data is the spoken text.
type timedTextDoc struct {
	Cues []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

// parseCaptionCues decodes a timedtext XML body and joins the cue text
// with spaces into one transcript.
func parseCaptionCues(body []byte) (string, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("failed to parse caption XML: %w", err)
	}
	if len(doc.Cues) == 0 {
		return "", ErrNoCaptions
	}

	parts := make([]string, 0, len(doc.Cues))
	for _, cue := range doc.Cues {
		text := collapseWhitespace(cue.Body)
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoCaptions
	}

	return strings.Join(parts, " "), nil
}
