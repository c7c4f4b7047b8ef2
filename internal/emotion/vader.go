package emotion

import "github.com/jonreiter/govader"

// VaderAnalyzer adapts govader to SentimentAnalyzer.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer loads the VADER lexicon once; the result is safe for concurrent use.
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderAnalyzer) PolarityScores(text string) SentimentScores {
	s := v.analyzer.PolarityScores(text)
	return SentimentScores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}
