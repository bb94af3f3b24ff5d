package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// completionSystem pins the model into continuation mode. Without it
// chat-tuned models answer the input instead of extending it.
const completionSystem = `You are a typing assistant embedded in a text editor.
Continue the user's text from exactly where it stops.
- Do NOT answer, converse, greet, or explain.
- Do NOT repeat any of the text the user already typed.
- Output ONLY the continuation, a short natural phrase.
- Match the language, tone and register of the input.`

const maxContextChunks = 5

type ManagerConfig struct {
	Timeout       int
	MaxInputChars int
	ContextChunks int
}

// Manager is the single entry point the services use for AI calls:
// embedding for indexing/retrieval and free-form continuation for the
// generator fallback.
type Manager struct {
	completer IGenerator
	embedder  IEmbedder
	cfg       ManagerConfig
}

func NewManager(completer IGenerator, embedder IEmbedder, cfg ManagerConfig) *Manager {
	if cfg.ContextChunks <= 0 || cfg.ContextChunks > maxContextChunks {
		cfg.ContextChunks = 3
	}
	return &Manager{completer: completer, embedder: embedder, cfg: cfg}
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	return m.embedder.Embed(ctx, text, taskType)
}

// Complete produces a continuation for the user's partial input,
// grounded on the top retrieved chunks when there are any.
func (m *Manager) Complete(ctx context.Context, input string, contextChunks []string) (string, error) {
	if m.completer == nil {
		return "", fmt.Errorf("completer not configured")
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty completion input")
	}
	if max := m.cfg.MaxInputChars; max > 0 && len(input) > max {
		input = input[len(input)-max:]
	}
	if len(contextChunks) > m.cfg.ContextChunks {
		contextChunks = contextChunks[:m.cfg.ContextChunks]
	}
	var sb strings.Builder
	if len(contextChunks) > 0 {
		sb.WriteString("Reference snippets from the user's own documents:\n")
		for _, chunk := range contextChunks {
			sb.WriteString("- ")
			sb.WriteString(chunk)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Text to continue:\n")
	sb.WriteString(input)

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := m.completer.Generate(ctx, completionSystem, sb.String())
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}
