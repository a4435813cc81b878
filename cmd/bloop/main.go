package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/bloop/internal/analysis"
	"github.com/MikeSquared-Agency/bloop/internal/api"
	"github.com/MikeSquared-Agency/bloop/internal/batch"
	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
	"github.com/MikeSquared-Agency/bloop/internal/config"
	"github.com/MikeSquared-Agency/bloop/internal/hermes"
	"github.com/MikeSquared-Agency/bloop/internal/llm"
	"github.com/MikeSquared-Agency/bloop/internal/sample"
	"github.com/MikeSquared-Agency/bloop/internal/store"
	"github.com/MikeSquared-Agency/bloop/internal/summarizer"
	"github.com/MikeSquared-Agency/bloop/internal/textclean"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Load()

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	// The batch report owns stdout.
	logOut := os.Stdout
	if cmd == "analyze" {
		logOut = os.Stderr
	}
	setupLogging(cfg.SlogLevel(), logOut)

	var err error
	switch cmd {
	case "serve":
		err = runServe(cfg)
	case "analyze":
		err = runAnalyze(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\nusage: bloop [serve | analyze -in <file|dir> -out <dir>]\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("bloop failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func runServe(cfg config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer hermesClient.Close()
		deps.Publisher = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, analysis events disabled")
	}

	// Run metadata (optional)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Recorder = db
		slog.Info("database connected")
	}

	svc := analysis.New(deps, serviceOptions(cfg, 0), slog.Default())

	srv := api.NewServer(api.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		APIKey:          cfg.APIKey,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		AnalysisTimeout: cfg.AnalysisTimeout,
		CORSOrigins:     cfg.CORSOrigins,
	}, svc, slog.Default())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectAgentRegistered, hermes.AgentRegistered{
			AgentID:      uuid.New().String(),
			Name:         "bloop",
			Role:         "chat-analyzer",
			Capabilities: capabilities(deps),
			Timestamp:    time.Now().UTC(),
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("bloop ready", "addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), "max_concurrent", svc.Capacity())

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
	}
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.AnalysisTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	slog.Info("bloop stopped")
	return nil
}

func runAnalyze(cfg config.Config, args []string) error {
	fset := flag.NewFlagSet("analyze", flag.ExitOnError)
	in := fset.String("in", "", "chat export (.txt) or directory of exports")
	out := fset.String("out", "bloop-results", "output directory for <name>.analysis.json files")
	statePath := fset.String("state", "", "resume state file (default <out>/.bloop-batch-state.json)")
	restart := fset.Bool("restart", false, "ignore previous progress")
	noAI := fset.Bool("no-ai", false, "skip the AI summary even when GROQ_API_KEY is set")
	seed := fset.Uint64("seed", 0, "sampler seed for reproducible summaries (0 = random)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *in == "" && fset.NArg() > 0 {
		*in = fset.Arg(0)
	}
	if *in == "" {
		fset.Usage()
		return fmt.Errorf("-in is required")
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	if *noAI {
		deps.Summarizer = nil
	}
	svc := analysis.New(deps, serviceOptions(cfg, *seed), slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(batch.Config{
		Input:     *in,
		OutputDir: *out,
		StatePath: *statePath,
		Restart:   *restart,
	}, svc, slog.Default())

	summaries, state, err := runner.Run(ctx)
	batch.WriteReport(os.Stdout, summaries, state)
	return err
}

// buildDeps loads the cleaning resources and wires the parser and, when an API
// key is configured, the summarizer.
func buildDeps(cfg config.Config) (analysis.Deps, error) {
	order, err := chatlog.ParseDateOrder(cfg.DateOrder)
	if err != nil {
		return analysis.Deps{}, err
	}
	stopwords, err := textclean.LoadStopwords(cfg.StopwordsPath, slog.Default())
	if err != nil {
		return analysis.Deps{}, err
	}
	patterns, err := textclean.LoadSystemPatterns(cfg.SystemPatternsPath, slog.Default())
	if err != nil {
		return analysis.Deps{}, err
	}

	deps := analysis.Deps{
		Parser: chatlog.NewParser(textclean.NewCleaner(stopwords), patterns, order, slog.Default()),
	}

	if cfg.GroqAPIKey != "" {
		client := llm.NewClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL)
		deps.Summarizer = summarizer.New(client, cfg.MaxSummaryUsers, slog.Default())
		slog.Info("summarizer ready", "model", cfg.GroqModel)
	} else {
		slog.Warn("GROQ_API_KEY not set, AI summaries disabled")
	}
	return deps, nil
}

func serviceOptions(cfg config.Config, seed uint64) analysis.Options {
	return analysis.Options{
		MaxConcurrent: cfg.MaxConcurrent,
		QueueTimeout:  cfg.QueueTimeout,
		TopicGap:      cfg.TopicGap,
		Sample: sample.Options{
			TokenBudget: cfg.SampleTokenBudget,
			MaxChars:    cfg.SampleMaxChars,
			Seed:        seed,
		},
	}
}

func capabilities(deps analysis.Deps) []string {
	caps := []string{"statistics"}
	if deps.Summarizer != nil {
		caps = append(caps, "summary")
	}
	if deps.Recorder != nil {
		caps = append(caps, "run-history")
	}
	return caps
}

func setupLogging(level slog.Level, w io.Writer) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
