package chat

import (
	"context"
	"time"

	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
	"github.com/sejong-careerpath/coursebot-go/internal/respond"
	"github.com/sejong-careerpath/coursebot-go/internal/search"
)

// Reply sources.
const (
	SourceLLM   = "llm"
	SourceLocal = "local"
)

// Reply is one chatbot answer.
type Reply struct {
	Text    string        `json:"text"`
	Source  string        `json:"source"` // llm or local
	Intent  search.Intent `json:"intent"`
	Matches int           `json:"matches"`
}

// Service answers chat messages. Every message is first run through
// the search engine; the matched courses ground the LLM reply. When no
// provider is configured, or every provider fails, the reply degrades
// to locally generated markdown, never to an error.
type Service struct {
	engine    *search.Engine
	generator *respond.Generator
	responder Responder // nil when no provider is configured
	history   *History
	timeout   time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewService wires the chat orchestration. responder may be nil.
func NewService(
	engine *search.Engine,
	generator *respond.Generator,
	responder Responder,
	history *History,
	timeout time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		engine:    engine,
		generator: generator,
		responder: responder,
		history:   history,
		timeout:   timeout,
		log:       log.WithModule("chat"),
		metrics:   m,
	}
}

// Chat answers one user message within a conversation. The only error
// it returns is a catalog that cannot be loaded; every LLM failure
// degrades to a local reply instead.
func (s *Service) Chat(ctx context.Context, conversationID, message string) (*Reply, error) {
	result, err := s.engine.Search(ctx, message)
	if err != nil {
		return nil, err
	}

	if s.responder != nil {
		if text, ok := s.completeLLM(ctx, conversationID, message, result); ok {
			s.metrics.RecordChatReply(SourceLLM)
			return &Reply{
				Text:    text,
				Source:  SourceLLM,
				Intent:  result.Intent,
				Matches: len(result.Records),
			}, nil
		}
	}

	s.metrics.RecordChatReply(SourceLocal)
	return &Reply{
		Text:    s.generator.Generate(result),
		Source:  SourceLocal,
		Intent:  result.Intent,
		Matches: len(result.Records),
	}, nil
}

// completeLLM asks the provider chain for a reply. History is recorded
// only on success so a degraded local reply never pollutes the context
// of later turns.
func (s *Service) completeLLM(ctx context.Context, conversationID, message string, result *search.Result) (string, bool) {
	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := BuildRequest(message, s.history.Recent(conversationID), result.Records)
	text, err := s.responder.Complete(llmCtx, req)
	if err != nil {
		s.log.WithError(err).Warn("llm reply failed, degrading to local reply")
		return "", false
	}

	s.history.Record(conversationID, message, text)
	return text, true
}
