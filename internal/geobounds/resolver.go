package geobounds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/logger"
)

// Resolver turns a location description into a validated bounding box.
type Resolver interface {
	Resolve(ctx context.Context, description string) (BoundingBox, error)
}

// ChatCompleter is the part of the OpenAI client the resolver uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMResolver asks an OpenAI-compatible chat endpoint for the bounds of a
// description. It makes exactly one request per Resolve call and never retries.
type LLMResolver struct {
	client      ChatCompleter
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *logger.Logger
}

// NewLLMResolver builds a resolver from the geo config. apiKey overrides
// cfg.APIKey when set.
func NewLLMResolver(cfg config.GeoConfig, apiKey string, log *logger.Logger) (*LLMResolver, error) {
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return nil, &Error{Stage: StageRequest, Message: "api key is required"}
	}
	if cfg.Endpoint == "" {
		return nil, &Error{Stage: StageRequest, Message: "endpoint is required"}
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return NewLLMResolverWithClient(openai.NewClientWithConfig(clientConfig), cfg, log), nil
}

// NewLLMResolverWithClient builds a resolver around an existing client.
func NewLLMResolverWithClient(client ChatCompleter, cfg config.GeoConfig, log *logger.Logger) *LLMResolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &LLMResolver{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:      log,
	}
}

// Resolve sends one prompt and validates the reply.
func (r *LLMResolver) Resolve(ctx context.Context, description string) (BoundingBox, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return BoundingBox{}, &Error{Stage: StageRequest, Message: "location description is empty"}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Debugw("Resolving bounding box", "model", r.model, "description", description)
	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(description)},
		},
		MaxTokens:   r.maxTokens,
		Temperature: float32(r.temperature),
	})
	if err != nil {
		return BoundingBox{}, &Error{Stage: StageRequest, Description: description, Message: "chat completion failed", Cause: err}
	}
	if len(resp.Choices) == 0 {
		return BoundingBox{}, &Error{Stage: StageRequest, Description: description, Message: "no choices in response"}
	}

	box, err := Parse(resp.Choices[0].Message.Content)
	if err != nil {
		if ge, ok := err.(*Error); ok {
			ge.Description = description
		}
		return BoundingBox{}, err
	}
	if box.Description == "" {
		box.Description = description
	}

	r.logger.Infow("Resolved bounding box",
		"description", box.Description,
		"bounds", box.String(),
		"elapsed", time.Since(start))
	return box, nil
}

// StaticResolver returns a fixed box, validated on every call.
type StaticResolver struct {
	Box BoundingBox
}

// Resolve ignores the description unless the box has none.
func (s StaticResolver) Resolve(_ context.Context, description string) (BoundingBox, error) {
	box := s.Box
	if box.Description == "" {
		box.Description = description
	}
	if err := box.Validate(); err != nil {
		err.(*Error).Description = description
		return BoundingBox{}, err
	}
	return box, nil
}

// Prompt is the instruction sent to the model.
func Prompt(description string) string {
	return fmt.Sprintf(`You are a geographic coordinate expert. Given a location description, provide the approximate coordinate bounds.

Location description: %q

Reply with ONLY a JSON object in this exact format (no other text):
{
  "min_lat": <minimum latitude>,
  "max_lat": <maximum latitude>,
  "min_lng": <minimum longitude>,
  "max_lng": <maximum longitude>,
  "description": "<brief description of the area>"
}

Example for "Northern Uganda near urban centers":
{
  "min_lat": 2.5,
  "max_lat": 3.8,
  "min_lng": 31.5,
  "max_lng": 33.5,
  "description": "Northern Uganda region including Gulu, Lira, and surrounding urban areas"
}

Use real geography. Return ONLY the JSON object.`, description)
}
