package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/arborhq/arbor-api/internal/config"
	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/generation"
)

// Generator implements generation.Generator and generation.Embedder using
// Google's Gemini API. All calls share a rate limiter and retry transient
// failures with exponential backoff.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig

	summaryTmpl  *template.Template
	insightsTmpl *template.Template
	pathTmpl     *template.Template

	client  *genai.Client
	limiter *rate.Limiter

	model          string
	embeddingModel string
}

// Compile-time interface checks
var (
	_ generation.Generator = (*Generator)(nil)
	_ generation.Embedder  = (*Generator)(nil)
)

// NewGenerator creates a Generator from the LLM configuration.
// Returns generation.ErrInvalidConfig (wrapped) when required settings are
// missing.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("%w: embedding model cannot be empty", generation.ErrInvalidConfig)
	}

	summaryTmpl, err := template.New("summary").Parse(summaryPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse summary template: %v", generation.ErrInvalidConfig, err)
	}

	insightsTmpl, err := template.New("insights").Parse(insightsPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse insights template: %v", generation.ErrInvalidConfig, err)
	}

	pathTmpl, err := template.New("path").Parse(pathPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse path template: %v", generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Generator{
		logger:         logger,
		config:         cfg,
		summaryTmpl:    summaryTmpl,
		insightsTmpl:   insightsTmpl,
		pathTmpl:       pathTmpl,
		client:         client,
		limiter:        rate.NewLimiter(rate.Limit(rpm/60.0), 1),
		model:          cfg.ModelName,
		embeddingModel: cfg.EmbeddingModel,
	}, nil
}

// Summarize implements generation.Generator.
func (g *Generator) Summarize(ctx context.Context, text, identitySeed string) (string, error) {
	prompt, err := g.renderPrompt(g.summaryTmpl, promptData{Text: text, IdentitySeed: identitySeed})
	if err != nil {
		return "", err
	}

	raw, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	var parsed summarySchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse summary JSON: %v", generation.ErrInvalidResponse, err)
	}

	if strings.TrimSpace(parsed.Summary) == "" {
		return "", fmt.Errorf("%w: empty summary", generation.ErrInvalidResponse)
	}

	return strings.TrimSpace(parsed.Summary), nil
}

// ExtractInsights implements generation.Generator. An empty result is not
// an error: some content genuinely yields no insights.
func (g *Generator) ExtractInsights(
	ctx context.Context,
	text, identitySeed string,
	userID uuid.UUID,
) ([]*domain.Insight, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user ID cannot be empty")
	}

	prompt, err := g.renderPrompt(g.insightsTmpl, promptData{Text: text, IdentitySeed: identitySeed})
	if err != nil {
		return nil, err
	}

	raw, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed insightsSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse insights JSON: %v", generation.ErrInvalidResponse, err)
	}

	return parseInsights(parsed, userID)
}

// GenerateLearningPath implements generation.Generator.
func (g *Generator) GenerateLearningPath(
	ctx context.Context,
	topic, identitySeed string,
) ([]generation.PathDayPlan, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, generation.ErrEmptyInput
	}

	prompt, err := g.renderPrompt(g.pathTmpl, promptData{Topic: topic, IdentitySeed: identitySeed})
	if err != nil {
		return nil, err
	}

	raw, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed pathSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse path JSON: %v", generation.ErrInvalidResponse, err)
	}

	return parsePathDays(parsed)
}

// Embed implements generation.Embedder.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, generation.ErrEmptyInput
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := g.client.Models.EmbedContent(ctx,
		g.embeddingModel,
		contents,
		&genai.EmbedContentConfig{
			TaskType: "RETRIEVAL_DOCUMENT",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: embed call failed: %v", generation.ErrTransientFailure, err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", generation.ErrInvalidResponse)
	}

	return result.Embeddings[0].Values, nil
}

// renderPrompt executes a prompt template with the given data.
func (g *Generator) renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	if data.Text == "" && data.Topic == "" {
		return "", generation.ErrEmptyInput
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %q: %w", tmpl.Name(), err)
	}

	return buf.String(), nil
}

// callWithRetry makes a generation call with exponential backoff retry for
// transient errors. Permanent errors (content blocked, malformed response)
// are returned immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"model", g.model)

		text, err := g.callOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are never retried.
		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single rate-limited generation request and extracts
// the response text.
func (g *Generator) callOnce(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		// API errors are assumed transient; the retry loop bounds them.
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	return text, nil
}

// parseInsights converts an insight-extraction response into domain
// insights. Blank entries are skipped rather than failing the batch.
func parseInsights(parsed insightsSchema, userID uuid.UUID) ([]*domain.Insight, error) {
	insights := make([]*domain.Insight, 0, len(parsed.Insights))
	for _, schema := range parsed.Insights {
		text := strings.TrimSpace(schema.Text)
		if text == "" {
			continue
		}

		insight, err := domain.NewInsight(userID, text, domain.InsightOriginAI, schema.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to create insight: %w", err)
		}

		insights = append(insights, insight)
	}

	return insights, nil
}

// parsePathDays converts a learning-path response into ordered day plans.
// Every day must have a title and a body.
func parsePathDays(parsed pathSchema) ([]generation.PathDayPlan, error) {
	if len(parsed.Days) == 0 {
		return nil, fmt.Errorf("%w: no days in response", generation.ErrInvalidResponse)
	}

	days := make([]generation.PathDayPlan, 0, len(parsed.Days))
	for i, schema := range parsed.Days {
		title := strings.TrimSpace(schema.Title)
		body := strings.TrimSpace(schema.Body)

		if title == "" {
			return nil, fmt.Errorf("%w: day %d missing title", generation.ErrInvalidResponse, i+1)
		}
		if body == "" {
			return nil, fmt.Errorf("%w: day %d missing body", generation.ErrInvalidResponse, i+1)
		}

		days = append(days, generation.PathDayPlan{Title: title, Body: body})
	}

	return days, nil
}
