// Package vision wraps the Cloud Vision API as the OCR provider for the
// document extraction pipeline.
package vision

import (
	"context"
	"fmt"
	"strings"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// maxSyncPDFPages is the page cap of the synchronous file annotation API.
const maxSyncPDFPages = 5

// Client performs document text detection over uploaded file bytes.
// It satisfies extract.OCRClient.
type Client struct {
	annotator *visionapi.ImageAnnotatorClient
}

// NewClient creates a Vision client. When credentialsFile is empty the
// client falls back to application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	annotator, err := visionapi.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &Client{annotator: annotator}, nil
}

// ExtractText runs document text detection. PDFs go through the file
// annotation API (first pages only), everything else is treated as an
// image.
func (c *Client) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no content to annotate")
	}

	if mimeType == "application/pdf" {
		return c.extractPDF(ctx, data)
	}
	return c.extractImage(ctx, data)
}

func (c *Client) extractImage(ctx context.Context, data []byte) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := c.annotator.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", fmt.Errorf("vision returned no responses")
	}

	r0 := resp.GetResponses()[0]
	if apiErr := r0.GetError(); apiErr != nil {
		return "", fmt.Errorf("vision annotation error: %s", apiErr.GetMessage())
	}

	fta := r0.GetFullTextAnnotation()
	if fta == nil {
		return "", fmt.Errorf("vision detected no text")
	}
	return fta.GetText(), nil
}

func (c *Client) extractPDF(ctx context.Context, data []byte) (string, error) {
	pages := make([]int32, 0, maxSyncPDFPages)
	for i := int32(1); i <= maxSyncPDFPages; i++ {
		pages = append(pages, i)
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				Pages: pages,
			},
		},
	}

	resp, err := c.annotator.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateFiles: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", fmt.Errorf("vision returned no responses")
	}

	fileResp := resp.GetResponses()[0]
	if apiErr := fileResp.GetError(); apiErr != nil {
		return "", fmt.Errorf("vision annotation error: %s", apiErr.GetMessage())
	}

	var parts []string
	for _, pageResp := range fileResp.GetResponses() {
		if pageResp.GetError() != nil {
			continue
		}
		if fta := pageResp.GetFullTextAnnotation(); fta != nil && fta.GetText() != "" {
			parts = append(parts, fta.GetText())
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("vision detected no text")
	}

	return strings.Join(parts, "\n"), nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.annotator.Close()
}
