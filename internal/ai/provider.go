package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable means the provider is missing credentials or the
// requested capability. Callers treat it as "no AI", not as a request
// failure.
var ErrUnavailable = errors.New("ai provider unavailable")

// GenerateRequest is the provider-level completion call: a system
// instruction, the user prompt, and sampling bounds.
type GenerateRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float32
}

type IProvider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error)
}

// IGenerator binds a provider to a model and sampling settings.
type IGenerator interface {
	Generate(ctx context.Context, systemPrompt string, prompt string) (string, error)
}

// IEmbedder binds a provider to an embedding model.
type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type generator struct {
	provider    IProvider
	model       string
	maxTokens   int
	temperature float32
}

func NewGenerator(p IProvider, model string, maxTokens int, temperature float32) IGenerator {
	return &generator{provider: p, model: model, maxTokens: maxTokens, temperature: temperature}
}

func (g *generator) Generate(ctx context.Context, systemPrompt string, prompt string) (string, error) {
	return g.provider.Generate(ctx, GenerateRequest{
		Model:        g.model,
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
		MaxTokens:    g.maxTokens,
		Temperature:  g.temperature,
	})
}

type embedder struct {
	provider IProvider
	model    string
}

func NewEmbedder(p IProvider, model string) IEmbedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return e.provider.Embed(ctx, e.model, text, taskType)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
