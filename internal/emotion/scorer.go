package emotion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("medical-consult-assistant/internal/emotion")

// ErrNoAnalyzer is returned by a Scorer built without a sentiment analyzer.
var ErrNoAnalyzer = errors.New("emotion: sentiment analyzer not configured")

type keywordRule struct {
	emotion  Emotion
	keywords []string
	// amplify reports whether each hit counts double.
	amplify func(SentimentScores) bool
}

func negativeAbove(t float64) func(SentimentScores) bool {
	return func(s SentimentScores) bool { return s.Negative > t }
}

var keywordRules = []keywordRule{
	{
		emotion: Confusion,
		keywords: []string{"confused", "don't understand", "not sure", "unclear", "what do you mean",
			"i don't know", "not clear", "confused about", "don't get it",
			"can you repeat", "i'm lost"},
	},
	{
		emotion: Distress,
		keywords: []string{"help", "scared", "worried", "anxious", "panic", "emergency", "urgent",
			"can't breathe", "chest pain", "dizzy", "faint", "terrible", "awful",
			"getting worse", "unbearable", "can't take it", "desperate", "severe",
			"excruciating", "overwhelming"},
		amplify: negativeAbove(0.5),
	},
	{
		emotion: Anxiety,
		keywords: []string{"nervous", "worried", "anxious", "stressed", "tense", "uneasy",
			"concerned", "restless", "jittery", "on edge", "overwhelmed", "panicked"},
		amplify: negativeAbove(0.3),
	},
	{
		emotion: Fear,
		keywords: []string{"afraid", "scared", "frightened", "terrified", "fearful", "alarmed",
			"what if", "worried about", "fear", "scary", "dangerous", "terrifying"},
		amplify: negativeAbove(0.4),
	},
	{
		emotion: Frustration,
		keywords: []string{"frustrated", "annoying", "irritating", "fed up", "sick of",
			"why won't", "nothing works", "tried everything", "give up"},
	},
	{
		emotion: Sadness,
		keywords: []string{"sad", "depressed", "down", "low", "hopeless", "crying", "tears",
			"upset", "miserable", "blue", "lonely", "empty", "devastated"},
		amplify: negativeAbove(0.6),
	},
	{
		emotion: Anger,
		keywords: []string{"angry", "mad", "furious", "rage", "hate", "disgusting", "stupid",
			"ridiculous", "outrageous", "unacceptable", "infuriating"},
		amplify: negativeAbove(0.7),
	},
	{
		emotion: Calm,
		keywords: []string{"fine", "okay", "good", "better", "calm", "relaxed", "peaceful",
			"comfortable", "stable", "manageable", "relieved"},
		amplify: func(s SentimentScores) bool { return s.Positive > 0.3 },
	},
}

var questionWords = []string{"what", "how", "why", "when", "where", "which"}

// Scorer turns an utterance into an emotion Result. It holds no mutable
// state, so one instance can serve every request.
type Scorer struct {
	analyzer SentimentAnalyzer
}

func NewScorer(analyzer SentimentAnalyzer) *Scorer {
	return &Scorer{analyzer: analyzer}
}

// Analyze scores text. A panic inside the analyzer is returned as an error;
// callers substitute NeutralResult.
func (s *Scorer) Analyze(ctx context.Context, text string) (res Result, err error) {
	_, span := tracer.Start(ctx, "emotion.Analyze", trace.WithAttributes(attribute.Int("text.length", len(text))))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("emotion: analysis failed: %v", r)
			span.RecordError(err)
		}
	}()

	if s == nil || s.analyzer == nil {
		return Result{}, ErrNoAnalyzer
	}

	polarity := s.analyzer.PolarityScores(text)
	scores := Score(text, polarity)
	primary, primaryScore := scores.Primary()
	details := Categorize(polarity.Compound)
	alert := ClassifyAlert(scores)

	span.SetAttributes(
		attribute.String("emotion.primary", string(primary)),
		attribute.String("emotion.alert_level", string(alert)),
	)

	return Result{
		PrimaryEmotion:  primary,
		EmotionScore:    primaryScore,
		Sentiment:       details.Category,
		SentimentScore:  details.Intensity,
		Emotions:        scores,
		AlertLevel:      alert,
		Recommendations: Recommend(scores),
		VaderScores:     polarity,
		VaderDetails:    details,
	}, nil
}

// Score builds the bucket vector for text given its polarity sub-scores.
// Keywords match by substring on the lowercased text.
func Score(text string, polarity SentimentScores) Scores {
	lower := strings.ToLower(text)
	scores := newScores()

	for _, rule := range keywordRules {
		weight := 1
		if rule.amplify != nil && rule.amplify(polarity) {
			weight = 2
		}
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				scores[rule.emotion] += weight
			}
		}
	}

	questions := 0
	for _, w := range questionWords {
		if strings.Contains(lower, w) {
			questions++
		}
	}
	if questions > 3 {
		scores[Confusion]++
	}

	if hasRepeatedWord(lower) {
		scores[Confusion]++
	}

	if polarity.Compound <= -0.5 && scores[Distress] == 0 && scores[Anxiety] == 0 {
		scores[Distress]++
	}
	if polarity.Compound >= 0.5 {
		scores[Calm]++
	}
	return scores
}

// hasRepeatedWord reports whether an utterance of more than three words
// contains some word more than twice.
func hasRepeatedWord(lower string) bool {
	words := strings.Fields(lower)
	if len(words) <= 3 {
		return false
	}
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
		if counts[w] > 2 {
			return true
		}
	}
	return false
}
