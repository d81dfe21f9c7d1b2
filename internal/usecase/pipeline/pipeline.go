package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/actionitems"
	"github.com/johnquangdev/meeting-insights/internal/usecase/entity"
	"github.com/johnquangdev/meeting-insights/internal/usecase/normalizer"
	"github.com/johnquangdev/meeting-insights/internal/usecase/summarizer"
	"github.com/johnquangdev/meeting-insights/internal/usecase/topics"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/runcontext"
)

// ModelGateway is what the orchestrator needs from the generation gateway.
// It may be nil, in which case every generation-backed path degrades to its
// local fallback.
type ModelGateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string, out any) error
}

// Options are the per-invocation knobs exposed to the caller. Turning a
// flag off skips that stage's computation entirely, not just its output.
type Options struct {
	SummaryLength       entities.SummaryLength
	TopicCount          int
	MinActionConfidence float64
	ExtractEntities     bool
	ExtractKeywords     bool
}

// DefaultOptions fills every knob from the pipeline configuration with both
// extraction flags on.
func DefaultOptions(cfg config.PipelineConfig) Options {
	return Options{
		SummaryLength:       entities.SummaryLength(cfg.SummaryLength),
		TopicCount:          cfg.TopicCount,
		MinActionConfidence: cfg.MinActionConfidence,
		ExtractEntities:     true,
		ExtractKeywords:     true,
	}
}

// Orchestrator runs the four analysis stages concurrently over one
// normalized transcript and assembles the aggregate result. Stage failures
// and timeouts degrade to empty values; only malformed input fails a run.
type Orchestrator struct {
	gateway ModelGateway
	cfg     config.PipelineConfig
	logger  *zap.Logger
}

func New(gateway ModelGateway, cfg config.PipelineConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{gateway: gateway, cfg: cfg, logger: logger}
}

// Process turns raw transcript segments into MeetingInsights. For valid
// input it always returns a result; partial backend unavailability shows up
// in the method/source fields and DegradedStages, never as an error.
func (o *Orchestrator) Process(ctx context.Context, segments []entities.TranscriptSegment, language string, opts Options) (entities.MeetingInsights, error) {
	ctx = runcontext.Begin(ctx)
	runID := runcontext.RunID(ctx)
	ref := time.Now()

	if language == "" {
		language = o.cfg.Language
	}
	if opts.SummaryLength == "" {
		opts.SummaryLength = entities.SummaryLength(o.cfg.SummaryLength)
	}
	if opts.TopicCount <= 0 {
		opts.TopicCount = o.cfg.TopicCount
	}

	norm := normalizer.New(o.logger)
	nt, err := norm.Normalize(segments)
	if err != nil {
		return entities.MeetingInsights{}, err
	}

	insights := entities.NewMeetingInsights()
	insights.ID = runID
	insights.ProcessedSegments = nt.Segments
	insights.SpeakerContributions = speakerContributions(nt.Segments)
	insights.WordCount = len(strings.Fields(nt.FullText))

	var (
		topicsOut   []entities.KeyTopic
		entitiesOut []entities.Entity
		summaryOut  entities.Summary
		actionsOut  []entities.ActionItem
		topicsErr   error
		entitiesErr error
		summaryErr  error
		actionsErr  error
	)

	g, gctx := errgroup.WithContext(ctx)

	if opts.ExtractKeywords {
		g.Go(func() error {
			topicsOut, topicsErr = runStage(gctx, o.cfg.StageTimeout, "topics", func(context.Context) []entities.KeyTopic {
				return topics.New(opts.TopicCount, o.logger).Extract(nt)
			})
			return nil
		})
	}
	if opts.ExtractEntities {
		g.Go(func() error {
			entitiesOut, entitiesErr = runStage(gctx, o.cfg.StageTimeout, "entities", func(context.Context) []entities.Entity {
				return entity.New(o.logger).Extract(nt.FullText, language, ref)
			})
			return nil
		})
	}
	g.Go(func() error {
		summaryOut, summaryErr = runStage(gctx, o.cfg.StageTimeout, "summary", func(sctx context.Context) entities.Summary {
			return summarizer.New(o.gateway, o.cfg.ExtractiveRatio, o.logger).
				Summarize(sctx, nt, opts.SummaryLength, language)
		})
		return nil
	})
	g.Go(func() error {
		actionsOut, actionsErr = runStage(gctx, o.cfg.StageTimeout, "action_items", func(sctx context.Context) []entities.ActionItem {
			return actionitems.New(o.gateway, opts.MinActionConfidence, o.cfg.SimilarityThreshold, o.logger).
				Extract(sctx, nt, language, ref)
		})
		return nil
	})

	_ = g.Wait()

	for _, stage := range []struct {
		name string
		err  error
	}{
		{"topics", topicsErr},
		{"entities", entitiesErr},
		{"summary", summaryErr},
		{"action_items", actionsErr},
	} {
		if stageErr := stage.err; stageErr != nil {
			o.logger.Warn("stage degraded",
				zap.String("run_id", runID.String()),
				zap.String("stage", stage.name),
				zap.Error(stageErr),
			)
			insights.DegradedStages = append(insights.DegradedStages, stage.name)
		}
	}

	if topicsOut != nil {
		insights.Topics = topicsOut
	}
	if entitiesOut != nil {
		insights.Entities = entitiesOut
	}
	if actionsOut != nil {
		insights.ActionItems = actionsOut
	}
	insights.Summary = summaryOut
	insights.GeneratedAt = time.Now()

	o.logger.Info("📋 meeting insights assembled",
		zap.String("id", insights.ID.String()),
		zap.Int("segments", len(insights.ProcessedSegments)),
		zap.Int("topics", len(insights.Topics)),
		zap.Int("entities", len(insights.Entities)),
		zap.Int("action_items", len(insights.ActionItems)),
		zap.String("summary_method", string(insights.Summary.Method)),
		zap.Strings("degraded", insights.DegradedStages),
		zap.Duration("took", runcontext.Elapsed(ctx)),
	)
	return insights, nil
}

// runStage executes fn under the orchestrator's per-stage budget. On
// timeout the stage's zero value is returned and the in-flight work is
// abandoned, not awaited.
func runStage[T any](ctx context.Context, timeout time.Duration, name string, fn func(context.Context) T) (T, error) {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resCh := make(chan T, 1)
	go func() {
		resCh <- fn(sctx)
	}()

	select {
	case res := <-resCh:
		return res, nil
	case <-sctx.Done():
		var zero T
		return zero, apperrors.ErrStageTimeout(name)
	}
}

// speakerContributions is each speaker's percentage of total speaking time;
// percentages sum to 100 for non-empty input.
func speakerContributions(segments []entities.TranscriptSegment) map[string]float64 {
	contributions := make(map[string]float64)
	var total float64
	for _, s := range segments {
		contributions[s.SpeakerID] += s.Duration()
		total += s.Duration()
	}
	if total == 0 {
		return contributions
	}
	for speaker, dur := range contributions {
		contributions[speaker] = dur / total * 100
	}
	return contributions
}
