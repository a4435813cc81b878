package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/bloop/internal/analysis"
)

// Analyzer runs one analysis. *analysis.Service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, filename string) (*analysis.Result, error)
}

type Config struct {
	Input     string // a .txt export or a directory of them
	OutputDir string
	StatePath string // default: <OutputDir>/.bloop-batch-state.json
	Restart   bool   // ignore and overwrite previous progress
}

// FileSummary is the outcome for one input file.
type FileSummary struct {
	Path         string
	Output       string
	Bytes        int64
	ChatName     string
	Messages     int
	Participants int
	Summarized   bool
	Empty        bool
	Error        string
}

// Runner analyzes chat exports from disk and writes one JSON result per file.
type Runner struct {
	cfg      Config
	analyzer Analyzer
	logger   *slog.Logger
}

func NewRunner(cfg Config, analyzer Analyzer, logger *slog.Logger) *Runner {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.StatePath == "" {
		cfg.StatePath = filepath.Join(cfg.OutputDir, stateFileName)
	}
	return &Runner{cfg: cfg, analyzer: analyzer, logger: logger}
}

// Run processes every pending file. Files already recorded in the state are
// skipped. On cancellation the state is saved and ctx.Err() returned along
// with the summaries gathered so far.
func (r *Runner) Run(ctx context.Context) ([]FileSummary, *State, error) {
	if r.cfg.Restart {
		if err := os.Remove(expandHome(r.cfg.StatePath)); err != nil && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("reset state: %w", err)
		}
	}
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load state: %w", err)
	}

	files, err := discoverFiles(r.cfg.Input)
	if err != nil {
		return nil, state, fmt.Errorf("discover files: %w", err)
	}

	var pending []string
	for _, f := range files {
		if !state.IsProcessed(f) {
			pending = append(pending, f)
		}
	}
	state.FilesRemaining = len(pending)
	r.logger.Info("files discovered", "total", len(files), "pending", len(pending))

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, state, fmt.Errorf("create output dir: %w", err)
	}

	var summaries []FileSummary
	for _, path := range pending {
		select {
		case <-ctx.Done():
			r.logger.Info("batch interrupted, saving state")
			_ = state.Save()
			return summaries, state, ctx.Err()
		default:
		}

		sum := r.processFile(ctx, path)
		if ctx.Err() != nil {
			// An interrupted file is retried next run.
			_ = state.Save()
			return summaries, state, ctx.Err()
		}
		if sum.Error != "" && sum.Output == "" {
			state.AddError(fmt.Sprintf("%s: %s", path, sum.Error))
		}
		summaries = append(summaries, sum)
		state.MessagesAnalyzed += sum.Messages
		state.MarkProcessed(path)
		state.FilesRemaining--
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save state", "path", state.Path(), "error", err)
		}
	}

	r.logger.Info("batch complete", "files_processed", len(summaries), "errors", len(state.Errors))
	return summaries, state, nil
}

func (r *Runner) processFile(ctx context.Context, path string) FileSummary {
	sum := FileSummary{Path: path}
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		sum.Error = err.Error()
		return sum
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil {
		sum.Bytes = info.Size()
	}

	result, err := r.analyzer.Analyze(ctx, f, filepath.Base(path))
	if err != nil {
		r.logger.Error("analysis failed", "path", path, "error", err)
		sum.Error = err.Error()
		return sum
	}

	sum.ChatName = result.ChatName
	sum.Messages = result.TotalMessages
	sum.Participants = result.Participants
	sum.Summarized = result.AIAnalysis != nil
	sum.Empty = result.Empty
	sum.Error = result.Error

	out := filepath.Join(r.cfg.OutputDir, outputName(expandHome(r.cfg.Input), path))
	if err := writeResult(out, result); err != nil {
		r.logger.Error("write result failed", "path", out, "error", err)
		sum.Error = err.Error()
		return sum
	}
	sum.Output = out

	r.logger.Info("file analyzed",
		"path", path,
		"output", out,
		"messages", sum.Messages,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return sum
}

func writeResult(path string, result *analysis.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// outputName derives <name>.analysis.json. Files below a directory input keep
// their relative path, flattened with underscores.
func outputName(input, path string) string {
	name := filepath.Base(path)
	if rel, err := filepath.Rel(input, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		name = strings.ReplaceAll(rel, string(filepath.Separator), "_")
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".analysis.json"
}

func discoverFiles(input string) ([]string, error) {
	path := expandHome(input)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input not found: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".txt") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
