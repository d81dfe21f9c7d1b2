package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

type fakeGateway struct {
	generateOut string
	err         error
	delay       time.Duration
}

func (f *fakeGateway) Generate(ctx context.Context, prompt string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.generateOut, f.err
}

func (f *fakeGateway) GenerateJSON(ctx context.Context, prompt string, out any) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.err
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		SummaryLength:       "medium",
		ExtractiveRatio:     0.33,
		TopicCount:          5,
		MinActionConfidence: 0.3,
		SimilarityThreshold: 0.6,
		StageTimeout:        5 * time.Second,
		Language:            "auto",
	}
}

func meetingSegments() []entities.TranscriptSegment {
	return []entities.TranscriptSegment{
		{SpeakerID: "SPEAKER_00", StartTS: 0, EndTS: 6, Text: "Welcome everyone, the agenda covers the release and the budget."},
		{SpeakerID: "SPEAKER_01", StartTS: 6, EndTS: 14, Text: "The release branch is stable and the test suite passes."},
		{SpeakerID: "SPEAKER_00", StartTS: 14, EndTS: 22, Text: "I will finish the release notes by Friday."},
		{SpeakerID: "SPEAKER_02", StartTS: 22, EndTS: 30, Text: "Budget review moves to next week because finance is busy."},
		{SpeakerID: "SPEAKER_01", StartTS: 30, EndTS: 40, Text: "Marketing needs to confirm the launch date with Acme Corp."},
	}
}

func TestProcess_AlwaysReturnsInsights(t *testing.T) {
	o := New(nil, testPipelineConfig(), nil)

	got, err := o.Process(context.Background(), meetingSegments(), "en", DefaultOptions(testPipelineConfig()))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got.Summary.Text == "" {
		t.Fatal("summary missing")
	}
	if got.Topics == nil || got.Entities == nil || got.ActionItems == nil || got.ProcessedSegments == nil {
		t.Fatalf("aggregate fields must always be present: %+v", got)
	}
	if got.WordCount == 0 {
		t.Fatal("word count missing")
	}
	if len(got.SpeakerContributions) != 3 {
		t.Fatalf("expected 3 speakers, got %v", got.SpeakerContributions)
	}
	var sum float64
	for _, pct := range got.SpeakerContributions {
		sum += pct
	}
	if sum < 99.9 || sum > 100.1 {
		t.Fatalf("speaker percentages must sum to 100, got %f", sum)
	}
}

func TestProcess_MalformedInputIsTheOnlyFailure(t *testing.T) {
	o := New(nil, testPipelineConfig(), nil)

	_, err := o.Process(context.Background(), nil, "en", DefaultOptions(testPipelineConfig()))
	if err == nil {
		t.Fatal("expected input error")
	}
	if !apperrors.IsInputError(err) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestProcess_UnreachableBackendDegradesToExtractive(t *testing.T) {
	gw := &fakeGateway{err: errors.New("dial tcp: connection refused")}
	o := New(gw, testPipelineConfig(), nil)

	got, err := o.Process(context.Background(), meetingSegments(), "en", DefaultOptions(testPipelineConfig()))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got.Summary.Method != entities.SummaryMethodExtractive {
		t.Fatalf("expected extractive summary, got %s", got.Summary.Method)
	}
	if got.Summary.Text == "" {
		t.Fatal("extractive summary empty")
	}
	// the rule pass still finds the spoken commitment
	if len(got.ActionItems) == 0 {
		t.Fatal("rule-based action items lost when backend is down")
	}
}

func TestProcess_GenerativeSummaryWhenBackendHealthy(t *testing.T) {
	gw := &fakeGateway{generateOut: "The team is ready to release and budget review moved to next week."}
	o := New(gw, testPipelineConfig(), nil)

	got, err := o.Process(context.Background(), meetingSegments(), "en", DefaultOptions(testPipelineConfig()))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got.Summary.Method != entities.SummaryMethodGenerative {
		t.Fatalf("expected generative summary, got %s", got.Summary.Method)
	}
}

func TestProcess_FlagsSkipStages(t *testing.T) {
	o := New(nil, testPipelineConfig(), nil)

	opts := DefaultOptions(testPipelineConfig())
	opts.ExtractKeywords = false
	opts.ExtractEntities = false

	got, err := o.Process(context.Background(), meetingSegments(), "en", opts)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(got.Topics) != 0 {
		t.Fatalf("keywords flag off but topics computed: %+v", got.Topics)
	}
	if len(got.Entities) != 0 {
		t.Fatalf("entities flag off but entities computed: %+v", got.Entities)
	}
	if got.Summary.Text == "" || len(got.ActionItems) == 0 {
		t.Fatal("unrelated stages must keep running")
	}
}

func TestProcess_StageTimeoutDegrades(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.StageTimeout = 50 * time.Millisecond
	gw := &fakeGateway{delay: 500 * time.Millisecond, generateOut: "slow but eventually fine summary text"}
	o := New(gw, cfg, nil)

	got, err := o.Process(context.Background(), meetingSegments(), "en", DefaultOptions(cfg))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	degraded := map[string]bool{}
	for _, s := range got.DegradedStages {
		degraded[s] = true
	}
	if !degraded["summary"] {
		t.Fatalf("slow summary stage not marked degraded: %v", got.DegradedStages)
	}
	if got.Summary.Method == entities.SummaryMethodGenerative {
		t.Fatal("timed-out stage must contribute its zero value")
	}
	// stages that beat the budget are untouched
	if degraded["topics"] || degraded["entities"] {
		t.Fatalf("fast stages wrongly degraded: %v", got.DegradedStages)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions(testPipelineConfig())
	if !opts.ExtractEntities || !opts.ExtractKeywords {
		t.Fatal("extraction flags default on")
	}
	if opts.SummaryLength != entities.SummaryLengthMedium {
		t.Fatalf("unexpected default length %s", opts.SummaryLength)
	}
	if opts.TopicCount != 5 || opts.MinActionConfidence != 0.3 {
		t.Fatalf("defaults not taken from config: %+v", opts)
	}
}
