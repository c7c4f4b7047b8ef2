package emotion

import "math"

const (
	SentimentPositive         = "positive"
	SentimentSlightlyPositive = "slightly_positive"
	SentimentNeutral          = "neutral"
	SentimentSlightlyNegative = "slightly_negative"
	SentimentNegative         = "negative"
)

// SentimentAnalyzer produces lexicon-based polarity sub-scores for a text.
type SentimentAnalyzer interface {
	PolarityScores(text string) SentimentScores
}

// Categorize maps a compound score onto the five sentiment bands.
func Categorize(compound float64) Sentiment {
	switch {
	case compound >= 0.5:
		return Sentiment{SentimentPositive, compound, "Patient appears optimistic/confident"}
	case compound >= 0.05:
		return Sentiment{SentimentSlightlyPositive, compound, "Patient seems relatively calm"}
	case compound <= -0.5:
		return Sentiment{SentimentNegative, math.Abs(compound), "Patient shows significant distress/concern"}
	case compound <= -0.05:
		return Sentiment{SentimentSlightlyNegative, math.Abs(compound), "Patient expresses mild concern"}
	default:
		return Sentiment{SentimentNeutral, 0, "Patient maintains neutral emotional tone"}
	}
}
