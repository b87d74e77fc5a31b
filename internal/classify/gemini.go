package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/oss-values/issue-stats/internal/domain"
	"github.com/oss-values/issue-stats/internal/retry"
)

// TextBackend generates a completion for a prompt. It abstracts the hosted
// model so the classifier can be tested without network access.
type TextBackend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiBackend is the production TextBackend on top of the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini-backed text backend.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Generate implements TextBackend.
func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// isRateLimited inspects the structured API error for a rate-limit status.
func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	return false
}

// GenerativeClassifier asks a text-generation backend to pick the category.
// Rate-limited calls are retried under the shared backoff policy; every
// other failure, and any response outside the taxonomy, maps to unknown.
type GenerativeClassifier struct {
	backend TextBackend
	policy  retry.Policy
	logger  *zap.Logger

	// Injected for testability.
	sleep  func(time.Duration)
	random func() float64
}

// NewGenerativeClassifier creates the generative strategy.
func NewGenerativeClassifier(backend TextBackend, policy retry.Policy, logger *zap.Logger) *GenerativeClassifier {
	return &GenerativeClassifier{
		backend: backend,
		policy:  policy,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Classify implements Classifier.
func (c *GenerativeClassifier) Classify(ctx context.Context, title, body string) domain.Category {
	prompt := buildPrompt(title, body)

	for attempt := 0; ; attempt++ {
		text, err := c.backend.Generate(ctx, prompt)
		if err == nil {
			firstLine, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
			category, ok := domain.ParseCategory(firstLine)
			if !ok {
				c.logger.Warn("backend returned text outside the taxonomy",
					zap.String("title", title),
					zap.String("response", firstLine))
			}
			return category
		}

		if !isRateLimited(err) {
			c.logger.Warn("classification failed",
				zap.String("title", title),
				zap.Error(err))
			return domain.Unknown
		}
		if attempt == c.policy.MaxRetries {
			c.logger.Warn("giving up on rate-limited classification",
				zap.String("title", title),
				zap.Int("attempts", attempt+1))
			return domain.Unknown
		}

		delay := c.policy.Backoff(attempt, c.random)
		c.logger.Warn("backend rate limited, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay))
		c.sleep(delay)
	}
}

// buildPrompt enumerates the taxonomy with a three-keyword sample per
// category, followed by the issue text.
func buildPrompt(title, body string) string {
	names := make([]string, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		names = append(names, string(category))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Classify the following issue into one of the categories: %s.\n", strings.Join(names, ", "))
	sb.WriteString("Use the following keywords for each category:\n")
	for _, category := range domain.Categories() {
		keywords := domain.Keywords[category]
		if len(keywords) == 0 {
			continue
		}
		sample := keywords
		if len(sample) > 3 {
			sample = sample[:3]
		}
		fmt.Fprintf(&sb, "%s: %s\n", string(category), strings.Join(sample, ", "))
	}
	sb.WriteString("\nReturn the category as plain text. If none of the suggested categories apply, return \"unknown\".\n\n")
	fmt.Fprintf(&sb, "Title: %s\nDescription: %s\n\nCategory:", title, body)
	return sb.String()
}
