package service

import (
	"context"
	"fmt"

	"askbase/internal/dto"
	"askbase/internal/llm"
	"askbase/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatStream delivers an answer incrementally: an in-order fragment sequence
// followed by the final response metadata. Final blocks until the fragment
// channel has been closed; already-delivered fragments are never retracted.
type ChatStream struct {
	fragments chan llm.StreamChunk
	final     chan streamOutcome
}

type streamOutcome struct {
	resp *dto.ChatResponse
	err  error
}

func (cs *ChatStream) Fragments() <-chan llm.StreamChunk {
	return cs.fragments
}

func (cs *ChatStream) Final() (*dto.ChatResponse, error) {
	out := <-cs.final
	return out.resp, out.err
}

func newChatStream() *ChatStream {
	return &ChatStream{
		fragments: make(chan llm.StreamChunk, 64),
		final:     make(chan streamOutcome, 1),
	}
}

// immediateChatStream wraps an already-known response (advisory or cached
// answer) in the streaming shape: one fragment, then metadata.
func immediateChatStream(resp *dto.ChatResponse) *ChatStream {
	cs := newChatStream()
	cs.fragments <- llm.StreamChunk{Delta: resp.Answer}
	cs.fragments <- llm.StreamChunk{Done: true}
	close(cs.fragments)
	cs.final <- streamOutcome{resp: resp}
	return cs
}

// SendStream runs the same state machine as Send but realizes GENERATE and
// RESPOND incrementally. Gap recording and session persistence are deferred
// until the stream has been fully delivered and run detached: the visitor
// already has their answer, so their failure is logged, never surfaced.
func (s *ChatService) SendStream(ctx context.Context, workspaceID uuid.UUID, req *dto.ChatRequest) (*ChatStream, error) {
	pf, err := s.prepare(ctx, workspaceID, req)
	if err != nil {
		return nil, err
	}
	if pf.shortCircuit != nil {
		return immediateChatStream(pf.shortCircuit), nil
	}

	pipe, err := s.runPipeline(ctx, pf)
	if err != nil {
		return nil, err
	}

	gen, err := pf.generator.Stream(ctx, pipe.messages, s.cfg.MaxTokens, float32(s.cfg.Temperature))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	cs := newChatStream()
	go func() {
		for chunk := range gen.Chunks() {
			cs.fragments <- chunk
		}
		close(cs.fragments)

		full, err := gen.Wait()
		if err != nil {
			// Mid-stream failure: already-sent fragments stand, but an
			// incomplete answer is not worth persisting.
			s.logger.Warn("Generation stream failed, skipping persistence",
				zap.String("workspace_id", pf.workspace.ID.String()),
				zap.Error(err),
			)
			cs.final <- streamOutcome{err: err}
			return
		}

		reply := ParseAssistantReply(full, pf.workspace.ChipLimit())
		session := s.appendTurns(pf, pipe, reply)
		resp := s.buildResponse(pf.workspace, session, pipe, reply)

		s.deferred.Run("post-stream-persistence", func(dctx context.Context) error {
			return s.persistAfterStream(dctx, pf, pipe, reply, session)
		})

		cs.final <- streamOutcome{resp: resp}
	}()

	return cs, nil
}

func (s *ChatService) persistAfterStream(ctx context.Context, pf *preflight, pipe *pipelineState, reply AssistantReply, session *models.ConversationSession) error {
	if !pipe.grounded {
		var top *models.ScoredPair
		if len(pipe.candidates) > 0 {
			top = &pipe.candidates[0]
		}
		if err := s.gaps.Record(ctx, pf.workspace.ID, session.ID, pf.message, reply.Answer, top); err != nil {
			s.logger.Error("Failed to record knowledge gap after stream", zap.Error(err))
		}
	}

	if _, err := s.sessions.Upsert(ctx, session); err != nil {
		return fmt.Errorf("failed to persist session after stream: %w", err)
	}
	return nil
}
