// Package aiextract extracts transactions with a language model and falls
// back to the rule-based parsers whenever the model cannot be used.
package aiextract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/parsererror"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const serviceGemini = "gemini"

// ResponseFormat asks the model for a given output encoding.
type ResponseFormat string

const (
	ResponseText ResponseFormat = "text"
	ResponseJSON ResponseFormat = "json"
)

// CompletionOptions tune a single completion.
type CompletionOptions struct {
	Temperature    float32
	MaxTokens      int
	ResponseFormat ResponseFormat
}

// Completer sends a prompt to a language model and returns its raw reply.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)
}

// GeminiCompleter implements Completer on the Gemini API.
type GeminiCompleter struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewGeminiCompleter creates a client for model. requestsPerMinute <= 0
// disables rate limiting.
func NewGeminiCompleter(ctx context.Context, apiKey, model string, requestsPerMinute int, logger logging.Logger) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &GeminiCompleter{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.OrDefault(logger),
	}, nil
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", &parsererror.ServiceUnavailableError{Service: serviceGemini, Err: err}
	}

	m := g.client.GenerativeModel(g.model)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	m.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.ResponseFormat == ResponseJSON {
		m.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", &parsererror.ServiceUnavailableError{Service: serviceGemini, Err: err}
	}
	g.logger.Debug("Gemini completion finished",
		logging.Field{Key: logging.FieldService, Value: serviceGemini},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()})

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &parsererror.ServiceUnavailableError{Service: serviceGemini, Err: errors.New("empty response")}
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// Close releases the underlying client.
func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}
