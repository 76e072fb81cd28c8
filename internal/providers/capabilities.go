package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codescout/internal/research"
)

// GenerateQueries implements research.QueryGenerator. Prior learnings, when
// present, are folded into the prompt so later rounds target unexplored
// ground. Malformed model output is an error; the orchestrator treats it as
// an empty candidate list.
func (s *Suite) GenerateQueries(ctx context.Context, question string, learnings []string, max int) ([]research.CandidateQuery, error) {
	out, err := s.complete(ctx, withSystem(queryPrompt(question, learnings, max)))
	if err != nil {
		return nil, fmt.Errorf("generating queries: %w", err)
	}

	var payload struct {
		Queries []research.CandidateQuery `json:"queries"`
	}
	if err := unmarshalResponse(out, &payload); err != nil {
		return nil, fmt.Errorf("generating queries: %w", err)
	}

	candidates := payload.Queries
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	s.logger.Debug("generated queries",
		zap.Int("requested", max),
		zap.Int("returned", len(candidates)))
	return candidates, nil
}

// Extract implements research.Extractor. Documents with empty content are
// ignored; an all-empty batch yields an empty extraction without a model
// call.
func (s *Suite) Extract(ctx context.Context, query string, docs []research.Document, maxLearnings, maxFollowUps int) (research.Extraction, error) {
	usable := 0
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) != "" {
			usable++
		}
	}
	if usable == 0 {
		return research.Extraction{}, nil
	}

	out, err := s.complete(ctx, withSystem(extractionPrompt(query, docs, maxLearnings, maxFollowUps)))
	if err != nil {
		return research.Extraction{}, fmt.Errorf("extracting learnings: %w", err)
	}

	var payload struct {
		Learnings []string `json:"learnings"`
		FollowUps []string `json:"follow_up_questions"`
	}
	if err := unmarshalResponse(out, &payload); err != nil {
		return research.Extraction{}, fmt.Errorf("extracting learnings: %w", err)
	}

	if len(payload.Learnings) > maxLearnings {
		payload.Learnings = payload.Learnings[:maxLearnings]
	}
	if len(payload.FollowUps) > maxFollowUps {
		payload.FollowUps = payload.FollowUps[:maxFollowUps]
	}
	s.logger.Debug("extracted learnings",
		zap.String("query", query),
		zap.Int("learnings", len(payload.Learnings)),
		zap.Int("follow_ups", len(payload.FollowUps)))
	return research.Extraction{Learnings: payload.Learnings, FollowUps: payload.FollowUps}, nil
}

// SynthesizeReport implements research.Reporter. Fragments are forwarded to
// onChunk as the model streams them; the return value is the concatenated
// report. Providers that ignore the streaming option still produce a full
// report, delivered to onChunk as a single fragment.
func (s *Suite) SynthesizeReport(ctx context.Context, question string, learnings []string, onChunk func(string)) (string, error) {
	var streamed strings.Builder
	streamFn := func(_ context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		text := string(chunk)
		streamed.WriteString(text)
		if onChunk != nil {
			onChunk(text)
		}
		return nil
	}

	out, err := s.complete(ctx, withSystem(reportPrompt(question, learnings)), llms.WithStreamingFunc(streamFn))
	if err != nil {
		// Fragments already forwarded stay with the caller; the error
		// describes why the stream stopped.
		return "", fmt.Errorf("synthesizing report: %w", err)
	}

	if streamed.Len() > 0 {
		return streamed.String(), nil
	}
	if onChunk != nil && out != "" {
		onChunk(out)
	}
	return out, nil
}
