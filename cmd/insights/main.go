package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func main() {
	var (
		inputPath     = flag.String("input", "", "path to a JSON file with transcript segments (default: stdin)")
		language      = flag.String("language", "", "language hint, ISO-like code or auto")
		summaryLength = flag.String("summary-length", "", "short, medium, or long")
		topicCount    = flag.Int("topics", 0, "number of topics per extraction method")
		noEntities    = flag.Bool("no-entities", false, "skip entity extraction")
		noKeywords    = flag.Bool("no-keywords", false, "skip topic extraction")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	gateway, err := ai.NewGateway(cfg.Gateway, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model gateway", zap.Error(err))
	}
	logger.Info("🤖 Model gateway ready",
		zap.String("backend", gateway.BackendName()),
		zap.Bool("disabled", cfg.Gateway.Disabled),
	)

	segments, err := readSegments(*inputPath)
	if err != nil {
		logger.Fatal("Failed to read transcript segments", zap.Error(err))
	}

	opts := pipeline.DefaultOptions(cfg.Pipeline)
	if *summaryLength != "" {
		opts.SummaryLength = entities.SummaryLength(*summaryLength)
	}
	if *topicCount > 0 {
		opts.TopicCount = *topicCount
	}
	opts.ExtractEntities = !*noEntities
	opts.ExtractKeywords = !*noKeywords

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := pipeline.New(gateway, cfg.Pipeline, logger)
	insights, err := orchestrator.Process(ctx, segments, *language, opts)
	if err != nil {
		if apperrors.IsInputError(err) {
			logger.Fatal("Transcript rejected", zap.Error(err))
		}
		logger.Fatal("Pipeline failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode insights", zap.Error(err))
	}
	fmt.Println(string(out))
}

func readSegments(path string) ([]entities.TranscriptSegment, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var segments []entities.TranscriptSegment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("invalid segment JSON: %w", err)
	}
	return segments, nil
}
