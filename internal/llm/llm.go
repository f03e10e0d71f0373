package llm

import (
	"context"
	"errors"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// ErrNoCredential is returned when a workspace has no generation credential
// configured. Unlike most upstream failures this one is surfaced hard: no
// answer can be produced at all.
var ErrNoCredential = errors.New("no generation credential configured")

// StreamChunk is a single event on a generation stream. Exactly one chunk
// has Done set; it is the last one and may carry Err.
type StreamChunk struct {
	Delta string
	Done  bool
	Err   error
}

// GenerationStream carries model output as an in-order sequence of text
// fragments plus a deferred handle to the full concatenated text. Wait
// blocks until the producer has finished; it returns exactly the
// concatenation of every Delta pushed before Close. The consumer must drain
// Chunks or the producer goroutine will block.
type GenerationStream struct {
	chunks chan StreamChunk
	done   chan struct{}
	full   strings.Builder
	err    error
}

func NewGenerationStream(buffer int) *GenerationStream {
	return &GenerationStream{
		chunks: make(chan StreamChunk, buffer),
		done:   make(chan struct{}),
	}
}

func (s *GenerationStream) Chunks() <-chan StreamChunk {
	return s.chunks
}

// Push appends a fragment. Producer side only, single goroutine.
func (s *GenerationStream) Push(delta string) {
	if delta == "" {
		return
	}
	s.full.WriteString(delta)
	s.chunks <- StreamChunk{Delta: delta}
}

// Close terminates the stream. Already-emitted fragments are never
// retracted; a non-nil err marks the terminal chunk as failed.
func (s *GenerationStream) Close(err error) {
	s.err = err
	s.chunks <- StreamChunk{Done: true, Err: err}
	close(s.chunks)
	close(s.done)
}

// Wait blocks until the stream is closed and returns the full text.
func (s *GenerationStream) Wait() (string, error) {
	<-s.done
	return s.full.String(), s.err
}

// Generator is a chat-completion model in single-shot and streaming modes.
type Generator interface {
	Complete(ctx context.Context, messages []Message, maxTokens int, temperature float32) (string, error)
	Stream(ctx context.Context, messages []Message, maxTokens int, temperature float32) (*GenerationStream, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
