package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

type fakeGenerator struct {
	output string
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.output, f.err
}

func transcript(sentenceCount int) entities.NormalizedTranscript {
	var sentences []entities.Sentence
	var full strings.Builder
	for i := 0; i < sentenceCount; i++ {
		text := fmt.Sprintf("Sentence number %d covers agenda point %d.", i+1, i+1)
		sentences = append(sentences, entities.Sentence{Text: text, SegmentIndex: i})
		if i > 0 {
			full.WriteByte(' ')
		}
		full.WriteString(text)
	}
	return entities.NormalizedTranscript{Sentences: sentences, FullText: full.String()}
}

func TestSummarize_GenerativeSuccess(t *testing.T) {
	gen := &fakeGenerator{output: "The team agreed on the release plan and assigned follow-ups."}
	s := New(gen, 0.33, nil)

	got := s.Summarize(context.Background(), transcript(6), entities.SummaryLengthMedium, "en")
	if got.Method != entities.SummaryMethodGenerative {
		t.Fatalf("expected generative, got %s", got.Method)
	}
	if got.Text != gen.output {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if got.RequestedLength != entities.SummaryLengthMedium {
		t.Fatalf("requested length not recorded: %s", got.RequestedLength)
	}
}

func TestSummarize_GatewayFailureFallsBackToExtractive(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	s := New(gen, 0.33, nil)

	got := s.Summarize(context.Background(), transcript(6), entities.SummaryLengthShort, "en")
	if got.Method != entities.SummaryMethodExtractive {
		t.Fatalf("expected extractive after gateway failure, got %s", got.Method)
	}
	if got.Text == "" {
		t.Fatal("extractive summary empty")
	}
}

func TestSummarize_DegenerateOutputFallsBack(t *testing.T) {
	gen := &fakeGenerator{output: "ok."}
	s := New(gen, 0.33, nil)

	got := s.Summarize(context.Background(), transcript(4), entities.SummaryLengthMedium, "en")
	if got.Method != entities.SummaryMethodExtractive {
		t.Fatalf("short generative output must fall back, got %s", got.Method)
	}
}

func TestSummarize_NoGeneratorGoesExtractive(t *testing.T) {
	s := New(nil, 0.33, nil)

	got := s.Summarize(context.Background(), transcript(3), entities.SummaryLengthMedium, "en")
	if got.Method != entities.SummaryMethodExtractive {
		t.Fatalf("expected extractive without a generator, got %s", got.Method)
	}
}

func TestExtractive_SentenceCountAndOrder(t *testing.T) {
	s := New(nil, 0.33, nil)

	cases := []struct {
		n    int
		want int
	}{
		{1, 1}, {2, 1}, {3, 1}, {4, 2}, {6, 2}, {7, 3}, {9, 3}, {10, 4}, {100, 33},
	}
	for _, tc := range cases {
		got := s.Summarize(context.Background(), transcript(tc.n), entities.SummaryLengthMedium, "en")
		if got.Method != entities.SummaryMethodExtractive {
			t.Fatalf("n=%d: expected extractive, got %s", tc.n, got.Method)
		}
		count := strings.Count(got.Text, "Sentence number")
		if count != tc.want {
			t.Fatalf("n=%d: expected %d sentences, got %d (%q)", tc.n, tc.want, count, got.Text)
		}
		if !strings.HasPrefix(got.Text, "Sentence number 1 ") {
			t.Fatalf("n=%d: sentences out of order: %q", tc.n, got.Text)
		}
	}
}

func TestSummarize_ZeroSentencesTruncates(t *testing.T) {
	s := New(nil, 0.33, nil)
	nt := entities.NormalizedTranscript{
		FullText: strings.Repeat("x", 150),
	}

	got := s.Summarize(context.Background(), nt, entities.SummaryLengthMedium, "en")
	if got.Method != entities.SummaryMethodTruncated {
		t.Fatalf("expected truncated, got %s", got.Method)
	}
	if got.Text != strings.Repeat("x", 100)+"..." {
		t.Fatalf("truncation contract violated: %q", got.Text)
	}
}

func TestSummarize_UnknownLengthDefaultsToMedium(t *testing.T) {
	s := New(nil, 0.33, nil)
	got := s.Summarize(context.Background(), transcript(3), entities.SummaryLength("huge"), "en")
	if got.RequestedLength != entities.SummaryLengthMedium {
		t.Fatalf("expected medium default, got %s", got.RequestedLength)
	}
}
