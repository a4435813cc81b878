package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
	"github.com/MikeSquared-Agency/bloop/internal/hermes"
	"github.com/MikeSquared-Agency/bloop/internal/sample"
	"github.com/MikeSquared-Agency/bloop/internal/segment"
	"github.com/MikeSquared-Agency/bloop/internal/stats"
	"github.com/MikeSquared-Agency/bloop/internal/store"
)

// ErrBusy is returned when no analysis slot frees up within the queue timeout.
var ErrBusy = errors.New("analysis capacity exhausted, try again later")

const (
	noMessagesError = "no messages found in the file after preprocessing"
	sideEffectLimit = 5 * time.Second
)

// Summarizer produces the AI summary for a sample.
type Summarizer interface {
	Summarize(ctx context.Context, set sample.Set, userCount int) (json.RawMessage, error)
	MaxUsers() int
}

// Publisher emits events. *hermes.Client implements it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Recorder stores run metadata. *store.Store implements it.
type Recorder interface {
	RecordAnalysis(ctx context.Context, run store.Run) error
}

// Deps are the collaborators of a Service. Only Parser is required; leave the
// others nil to disable them.
type Deps struct {
	Parser     *chatlog.Parser
	Summarizer Summarizer
	Publisher  Publisher
	Recorder   Recorder
}

type Options struct {
	MaxConcurrent int
	QueueTimeout  time.Duration
	TopicGap      time.Duration
	Sample        sample.Options
}

// Service runs analyses with a process-wide cap on how many run at once.
type Service struct {
	deps     Deps
	opts     Options
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	logger   *slog.Logger
}

func New(deps Deps, opts Options, logger *slog.Logger) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.QueueTimeout <= 0 {
		opts.QueueTimeout = 10 * time.Second
	}
	if opts.TopicGap <= 0 {
		opts.TopicGap = 6 * time.Hour
	}
	return &Service{
		deps:   deps,
		opts:   opts,
		sem:    semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		logger: logger,
	}
}

// InFlight is the number of analyses currently holding a slot.
func (s *Service) InFlight() int { return int(s.inFlight.Load()) }

// Capacity is the maximum number of concurrent analyses.
func (s *Service) Capacity() int { return s.opts.MaxConcurrent }

// Analyze parses one exported chat and computes its statistics and, when a
// summarizer is configured and the chat has 2..MaxUsers senders, its AI summary.
// A chat with no usable messages yields an Empty result, not an error. A failed
// summary is reported in Result.Error.
func (s *Service) Analyze(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	start := time.Now()
	id := uuid.New().String()
	logger := s.logger.With("analysis_id", id, "file", filename)

	transcript, err := s.deps.Parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse chat: %w", err)
	}

	msgs := transcript.Messages
	senders := transcript.Senders()
	result := &Result{
		ID:            id,
		ChatName:      ChatName(filename, senders),
		TotalMessages: len(msgs),
		Participants:  len(senders),
		Ingest:        ingestFrom(transcript),
	}

	if len(msgs) == 0 {
		logger.Info("no messages found after preprocessing", "lines", transcript.Lines)
		result.Empty = true
		result.BreakMinutes = segment.DefaultBreakMinutes
		result.Stats = stats.Compute(nil, segment.DefaultBreakMinutes)
		result.Error = noMessagesError
		s.finish(ctx, result, time.Since(start), logger)
		return result, nil
	}

	result.BreakMinutes = segment.DynamicBreak(msgs)

	// Both stages only read msgs. The group has no shared context, so a failed
	// summary never cuts the statistics short.
	var g errgroup.Group
	g.Go(func() error {
		result.Stats = stats.Compute(msgs, result.BreakMinutes)
		return nil
	})

	var summary json.RawMessage
	if s.shouldSummarize(len(senders)) {
		g.Go(func() error {
			set := sample.New(s.opts.Sample).Sample(msgs, s.opts.TopicGap)
			var err error
			summary, err = s.deps.Summarizer.Summarize(ctx, set, len(senders))
			return err
		})
	} else {
		logger.Info("skipping summary", "participants", len(senders))
	}
	summaryErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.AIAnalysis = summary
	if summaryErr != nil {
		logger.Error("summary failed", "error", summaryErr)
		result.Error = fmt.Sprintf("AI analysis failed: %s", summaryErr)
	}

	s.finish(ctx, result, time.Since(start), logger)
	return result, nil
}

func (s *Service) shouldSummarize(participants int) bool {
	return s.deps.Summarizer != nil && participants > 1 && participants <= s.deps.Summarizer.MaxUsers()
}

func (s *Service) acquire(ctx context.Context) error {
	qctx, cancel := context.WithTimeout(ctx, s.opts.QueueTimeout)
	defer cancel()
	if err := s.sem.Acquire(qctx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
	s.inFlight.Add(1)
	return nil
}

func (s *Service) release() {
	s.inFlight.Add(-1)
	s.sem.Release(1)
}

// finish publishes the completion event and records run metadata. Both are best
// effort: failures are logged and never change the result.
func (s *Service) finish(ctx context.Context, result *Result, elapsed time.Duration, logger *slog.Logger) {
	logger.Info("analysis complete",
		"chat_name", result.ChatName,
		"messages", result.TotalMessages,
		"participants", result.Participants,
		"break_minutes", result.BreakMinutes,
		"summarized", result.AIAnalysis != nil,
		"duration_ms", elapsed.Milliseconds(),
	)

	if s.deps.Publisher != nil {
		evt := hermes.AnalysisCompleted{
			AnalysisID:    result.ID,
			ChatName:      result.ChatName,
			TotalMessages: result.TotalMessages,
			Participants:  result.Participants,
			BreakMinutes:  result.BreakMinutes,
			Summarized:    result.AIAnalysis != nil,
			Empty:         result.Empty,
			DurationMS:    elapsed.Milliseconds(),
			Timestamp:     time.Now().UTC(),
		}
		if err := s.deps.Publisher.Publish(hermes.SubjectAnalysisCompleted, evt); err != nil {
			logger.Warn("failed to publish analysis event", "error", err)
		}
	}

	if s.deps.Recorder != nil {
		id, err := uuid.Parse(result.ID)
		if err != nil {
			logger.Warn("invalid analysis id, not recording", "error", err)
			return
		}
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectLimit)
		defer cancel()
		run := store.Run{
			ID:            id,
			ChatName:      result.ChatName,
			TotalMessages: result.TotalMessages,
			Participants:  result.Participants,
			BreakMinutes:  result.BreakMinutes,
			Summarized:    result.AIAnalysis != nil,
			Empty:         result.Empty,
			Error:         result.Error,
			Duration:      elapsed,
		}
		if err := s.deps.Recorder.RecordAnalysis(rctx, run); err != nil {
			logger.Warn("failed to record analysis run", "error", err)
		}
	}
}
