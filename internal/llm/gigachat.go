package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GigaChatGenerator adapts the GigaChat SDK to the Generator contract. The
// SDK surface is request/response, so conversation history is rendered into
// a single user message and Stream emits one terminal fragment.
type GigaChatGenerator struct {
	client    *gigago.Client
	modelName string
	logger    *zap.Logger
}

func NewGigaChatGenerator(ctx context.Context, credential, modelName, scope string, insecureSkipVerify bool, logger *zap.Logger) (*GigaChatGenerator, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(scope),
	}
	if insecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, credential, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	if modelName == "" {
		modelName = "GigaChat"
	}

	return &GigaChatGenerator{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (g *GigaChatGenerator) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float32) (string, error) {
	system, user := flattenMessages(messages)

	// A fresh model per call keeps SystemInstruction off shared state.
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = system
	model.Temperature = 0.3

	resp, err := model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: user},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *GigaChatGenerator) Stream(ctx context.Context, messages []Message, maxTokens int, temperature float32) (*GenerationStream, error) {
	text, err := g.Complete(ctx, messages, maxTokens, temperature)
	if err != nil {
		return nil, err
	}

	stream := NewGenerationStream(1)
	go func() {
		stream.Push(text)
		stream.Close(nil)
	}()
	return stream, nil
}

func (g *GigaChatGenerator) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}

// flattenMessages splits out the system instruction and renders the
// remaining turns as a labeled transcript ending with the latest user
// message.
func flattenMessages(messages []Message) (system string, user string) {
	var sys []string
	var transcript strings.Builder
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			sys = append(sys, m.Content)
		case RoleAssistant:
			transcript.WriteString("Assistant: ")
			transcript.WriteString(m.Content)
			transcript.WriteString("\n")
		default:
			transcript.WriteString("User: ")
			transcript.WriteString(m.Content)
			transcript.WriteString("\n")
		}
	}
	return strings.Join(sys, "\n\n"), strings.TrimSpace(transcript.String())
}
