package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIGenerator(apiKey, model string, logger *zap.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

func (g *OpenAIGenerator) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float32) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Stream(ctx context.Context, messages []Message, maxTokens int, temperature float32) (*GenerationStream, error) {
	sdkStream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}

	stream := NewGenerationStream(64)
	go func() {
		defer sdkStream.Close()
		for {
			resp, err := sdkStream.Recv()
			if errors.Is(err, io.EOF) {
				stream.Close(nil)
				return
			}
			if err != nil {
				stream.Close(fmt.Errorf("stream recv: %w", err))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			stream.Push(resp.Choices[0].Delta.Content)
		}
	}()

	return stream, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIEmbedder(apiKey, model string, logger *zap.Logger) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
