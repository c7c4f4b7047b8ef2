package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAlert(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   AlertLevel
	}{
		{"all zero", Scores{}, AlertNone},
		{"distress alone twice", Scores{Distress: 2}, AlertHigh},
		{"distress fear anxiety", Scores{Distress: 1, Fear: 1, Anxiety: 1}, AlertHigh},
		{"anxiety heavy", Scores{Anxiety: 4}, AlertHigh},
		{"confusion three", Scores{Confusion: 3}, AlertMedium},
		{"distress plus confusion", Scores{Fear: 1, Anxiety: 1, Confusion: 1}, AlertMedium},
		{"anger and frustration", Scores{Anger: 1, Frustration: 1}, AlertMedium},
		{"sadness two", Scores{Sadness: 2}, AlertMedium},
		{"confusion one", Scores{Confusion: 1}, AlertLow},
		{"two distress indicators without confusion", Scores{Fear: 1, Anxiety: 1}, AlertLow},
		{"single frustration", Scores{Frustration: 1}, AlertLow},
		{"calm only", Scores{Calm: 5}, AlertNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAlert(tt.scores))
		})
	}
}

func TestRecommend(t *testing.T) {
	t.Run("stable when nothing triggers", func(t *testing.T) {
		assert.Equal(t, []string{recommendStable}, Recommend(Scores{Confusion: 2, Anxiety: 1}))
	})

	t.Run("bucket order preserved", func(t *testing.T) {
		got := Recommend(Scores{Calm: 1, Anger: 2, Confusion: 3, Distress: 1})
		assert.Equal(t, []string{recommendDistress, recommendConfusion, recommendAnger, recommendCalm}, got)
	})
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		compound  float64
		category  string
		intensity float64
	}{
		{0.0, SentimentNeutral, 0},
		{0.04, SentimentNeutral, 0},
		{0.05, SentimentSlightlyPositive, 0.05},
		{0.5, SentimentPositive, 0.5},
		{0.9, SentimentPositive, 0.9},
		{-0.05, SentimentSlightlyNegative, 0.05},
		{-0.3, SentimentSlightlyNegative, 0.3},
		{-0.5, SentimentNegative, 0.5},
	}
	for _, tt := range tests {
		got := Categorize(tt.compound)
		assert.Equal(t, tt.category, got.Category, "compound %v", tt.compound)
		assert.InDelta(t, tt.intensity, got.Intensity, 1e-9, "compound %v", tt.compound)
		assert.NotEmpty(t, got.Description)
	}
}
