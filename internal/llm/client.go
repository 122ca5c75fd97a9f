// Package llm provides the language-model client abstraction used by the
// generation orchestrator and the skill extractor. The concrete provider is
// Gemini; the interface keeps pipeline code testable with scripted clients.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DeltaSink receives text increments as the model produces them. Returning
// an error stops consumption of the stream.
type DeltaSink func(delta string) error

// CompletionRequest describes one model call. Temperature and MaxTokens are
// fixed per run from configuration; identical requests are not guaranteed to
// reproduce identical text.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	JSONOutput   bool
}

// Client is an abstraction over LLM providers.
type Client interface {
	// StreamComplete issues a streaming call, forwarding each text increment
	// to sink as soon as it arrives, and returns the accumulated full text.
	StreamComplete(ctx context.Context, req CompletionRequest, sink DeltaSink) (string, error)
	// Complete issues a non-streaming call and returns the full text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Close releases any resources held by the client.
	Close() error
}

// Embedder is the narrow embedding contract consumed by the context store,
// the retriever and the scorer's semantic component.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, embeddingModel string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, embeddingModel: embeddingModel}, nil
}

func (c *GeminiClient) model(req CompletionRequest) *genai.GenerativeModel {
	model := c.client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}
	if req.JSONOutput {
		model.ResponseMIMEType = "application/json"
	}
	return model
}

// StreamComplete streams a completion, forwarding increments to sink.
func (c *GeminiClient) StreamComplete(ctx context.Context, req CompletionRequest, sink DeltaSink) (string, error) {
	if req.Model == "" {
		return "", &TransportError{Model: req.Model, Err: errors.New("no model configured")}
	}

	var full strings.Builder
	it := c.model(req).GenerateContentStream(ctx, genai.Text(req.UserPrompt))
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return full.String(), classify(req.Model, err)
		}

		delta := textFromResponse(resp)
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if sink != nil {
			if err := sink(delta); err != nil {
				return full.String(), err
			}
		}
	}

	if full.Len() == 0 {
		return "", &TransportError{Model: req.Model, Err: errors.New("model produced no text")}
	}
	return full.String(), nil
}

// Complete issues a non-streaming call.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", &TransportError{Model: req.Model, Err: errors.New("no model configured")}
	}

	resp, err := c.model(req).GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", classify(req.Model, err)
	}

	text := textFromResponse(resp)
	if text == "" {
		return "", &TransportError{Model: req.Model, Err: errors.New("model produced no text")}
	}
	if req.JSONOutput {
		text = CleanJSONBlock(text)
	}
	return text, nil
}

// Embed returns the embedding vector for text using the configured
// embedding model.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	em := c.client.EmbeddingModel(c.embeddingModel)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, classify(c.embeddingModel, err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &TransportError{Model: c.embeddingModel, Err: errors.New("no embedding values returned")}
	}
	return resp.Embedding.Values, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// textFromResponse joins the text parts of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, "")
}

// classify maps a provider error onto the pipeline error taxonomy.
// Caller-initiated cancellation is passed through untouched so it is not
// mistaken for a transport failure.
func classify(model string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Model: model, Err: err}
	}
	return &TransportError{Model: model, Err: err}
}
