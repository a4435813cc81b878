package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/MikeSquared-Agency/bloop/internal/sample"
)

const (
	DefaultMaxUsers = 10
	maxTokens       = 4096
)

// Completer is the model call the summarizer needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Summarizer turns a per-sender sample into the {summary, people} JSON object.
type Summarizer struct {
	llm      Completer
	maxUsers int
	logger   *slog.Logger
}

// New creates a summarizer. Chats with more than maxUsers senders get a summary
// without per-person profiles.
func New(llm Completer, maxUsers int, logger *slog.Logger) *Summarizer {
	if maxUsers <= 0 {
		maxUsers = DefaultMaxUsers
	}
	return &Summarizer{llm: llm, maxUsers: maxUsers, logger: logger}
}

// MaxUsers is the largest chat that gets per-person profiles.
func (s *Summarizer) MaxUsers() int { return s.maxUsers }

// Summarize asks the model about the sampled messages. The returned JSON is only
// checked for validity and is otherwise passed through untouched. An empty
// sample yields nil without calling the model.
func (s *Summarizer) Summarize(ctx context.Context, set sample.Set, userCount int) (json.RawMessage, error) {
	if len(set) == 0 {
		s.logger.Info("nothing eligible to summarize")
		return nil, nil
	}

	payload, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sample: %w", err)
	}

	system := s.systemPrompt(userCount)

	s.logger.Info("summarizing chat",
		"senders", len(set),
		"user_count", userCount,
		"payload_len", len(payload),
	)

	raw, err := s.llm.Complete(ctx, system, string(payload), maxTokens)
	if err != nil {
		return nil, fmt.Errorf("llm summary: %w", err)
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("llm summary: invalid JSON")
	}

	s.logger.Info("summary complete", "len", len(raw))
	return json.RawMessage(raw), nil
}

func (s *Summarizer) systemPrompt(userCount int) string {
	if userCount > 0 && userCount <= s.maxUsers {
		return fmt.Sprintf(systemPrompt, GenerateSchema[Summary]()) +
			fmt.Sprintf(peopleInstructions, groupWord(userCount))
	}
	return fmt.Sprintf(systemPrompt, GenerateSchema[SummaryOnly]())
}

func groupWord(n int) string {
	switch {
	case n > 3:
		return "group"
	case n == 3:
		return "trio"
	default:
		return "duo"
	}
}

// GenerateSchema renders the JSON schema of T, inlined and closed to extra
// properties.
func GenerateSchema[T any]() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(b))
}
