package emotion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	scores SentimentScores
}

func (s stubAnalyzer) PolarityScores(string) SentimentScores { return s.scores }

type panickingAnalyzer struct{}

func (panickingAnalyzer) PolarityScores(string) SentimentScores { panic("lexicon missing") }

func TestScoreKeywordWeights(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		polarity SentimentScores
		want     Scores
	}{
		{
			name: "single weight below threshold",
			text: "I am Scared",
			want: Scores{Distress: 1, Fear: 1},
		},
		{
			name:     "amplified by negative polarity",
			text:     "I am scared",
			polarity: SentimentScores{Negative: 0.6},
			want:     Scores{Distress: 2, Fear: 2},
		},
		{
			name:     "calm amplified by positive polarity",
			text:     "I feel fine",
			polarity: SentimentScores{Positive: 0.5},
			want:     Scores{Calm: 2},
		},
		{
			name: "question words",
			text: "what how why when",
			want: Scores{Confusion: 1},
		},
		{
			name: "repeated word",
			text: "pain pain pain again",
			want: Scores{Confusion: 1},
		},
		{
			name: "repetition needs more than three words",
			text: "pain pain pain",
			want: Scores{},
		},
		{
			name:     "strong negative floor",
			text:     "xyz",
			polarity: SentimentScores{Compound: -0.6},
			want:     Scores{Distress: 1},
		},
		{
			name:     "strong positive adds calm",
			text:     "xyz",
			polarity: SentimentScores{Compound: 0.5},
			want:     Scores{Calm: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.text, tt.polarity)
			for _, e := range Emotions {
				assert.Equal(t, tt.want[e], got[e], "bucket %s", e)
			}
		})
	}
}

func TestAnalyzeTieGoesToFirstBucket(t *testing.T) {
	scorer := NewScorer(stubAnalyzer{})

	res, err := scorer.Analyze(context.Background(), "hello there")
	require.NoError(t, err)

	assert.Equal(t, Confusion, res.PrimaryEmotion)
	assert.Equal(t, 0, res.EmotionScore)
	assert.Equal(t, AlertNone, res.AlertLevel)
	assert.Equal(t, []string{recommendStable}, res.Recommendations)
	assert.Equal(t, SentimentNeutral, res.Sentiment)
	assert.Len(t, res.Emotions, len(Emotions))
}

func TestAnalyzeHighAlert(t *testing.T) {
	scorer := NewScorer(stubAnalyzer{scores: SentimentScores{Negative: 0.6, Neutral: 0.4, Compound: -0.7}})

	res, err := scorer.Analyze(context.Background(), "Help, I am scared")
	require.NoError(t, err)

	assert.Equal(t, Distress, res.PrimaryEmotion)
	assert.Equal(t, 4, res.EmotionScore)
	assert.Equal(t, AlertHigh, res.AlertLevel)
	assert.Equal(t, SentimentNegative, res.Sentiment)
	assert.InDelta(t, 0.7, res.SentimentScore, 1e-9)
	assert.Equal(t, recommendDistress, res.Recommendations[0])
	assert.Equal(t, "Patient shows significant distress/concern", res.VaderDetails.Description)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	scorer := NewScorer(stubAnalyzer{scores: SentimentScores{Negative: 0.35, Compound: -0.2}})
	text := "I'm nervous and not sure what if it is getting worse"

	first, err := scorer.Analyze(context.Background(), text)
	require.NoError(t, err)
	second, err := scorer.Analyze(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyzeRecoversFromPanics(t *testing.T) {
	scorer := NewScorer(panickingAnalyzer{})

	_, err := scorer.Analyze(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexicon missing")
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	_, err := NewScorer(nil).Analyze(context.Background(), "anything")
	assert.True(t, errors.Is(err, ErrNoAnalyzer))
}

func TestNeutralResult(t *testing.T) {
	res := NeutralResult()

	assert.Equal(t, Neutral, res.PrimaryEmotion)
	assert.Equal(t, AlertNone, res.AlertLevel)
	assert.Equal(t, []string{recommendStable}, res.Recommendations)
	assert.Equal(t, 1.0, res.VaderScores.Neutral)
}

func TestVaderAnalyzerEndToEnd(t *testing.T) {
	scorer := NewScorer(NewVaderAnalyzer())
	levels := []AlertLevel{AlertNone, AlertLow, AlertMedium, AlertHigh}

	for _, text := range []string{
		"This is terrible and awful, I hate it",
		"I feel good and relaxed today",
		"When did the cough start?",
	} {
		res, err := scorer.Analyze(context.Background(), text)
		require.NoError(t, err)
		assert.Contains(t, Emotions, res.PrimaryEmotion)
		assert.Contains(t, levels, res.AlertLevel)
	}

	neg, err := scorer.Analyze(context.Background(), "This is terrible and awful, I hate it")
	require.NoError(t, err)
	assert.Less(t, neg.VaderScores.Compound, 0.0)
	assert.Positive(t, neg.Emotions[Distress])
}
