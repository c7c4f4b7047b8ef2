package emotion

// Emotion is one bucket of the lexical score vector.
type Emotion string

const (
	Confusion   Emotion = "confusion"
	Distress    Emotion = "distress"
	Anxiety     Emotion = "anxiety"
	Fear        Emotion = "fear"
	Frustration Emotion = "frustration"
	Sadness     Emotion = "sadness"
	Anger       Emotion = "anger"
	Calm        Emotion = "calm"
	Neutral     Emotion = "neutral"
)

// Emotions lists every bucket in declaration order. Primary-emotion ties
// resolve to the earliest entry.
var Emotions = []Emotion{
	Confusion, Distress, Anxiety, Fear, Frustration, Sadness, Anger, Calm, Neutral,
}

// AlertLevel flags utterances that may need clinical attention.
type AlertLevel string

const (
	AlertNone   AlertLevel = "NONE"
	AlertLow    AlertLevel = "LOW"
	AlertMedium AlertLevel = "MEDIUM"
	AlertHigh   AlertLevel = "HIGH"
)

// Scores maps every bucket to its accumulated weight.
type Scores map[Emotion]int

func newScores() Scores {
	s := make(Scores, len(Emotions))
	for _, e := range Emotions {
		s[e] = 0
	}
	return s
}

// Primary returns the highest scoring bucket and its score.
func (s Scores) Primary() (Emotion, int) {
	best, bestScore := Emotions[0], s[Emotions[0]]
	for _, e := range Emotions[1:] {
		if s[e] > bestScore {
			best, bestScore = e, s[e]
		}
	}
	return best, bestScore
}

// SentimentScores are the raw sub-scores of the sentiment analyzer.
type SentimentScores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Sentiment is the categorized view of the compound score.
type Sentiment struct {
	Category    string  `json:"category"`
	Intensity   float64 `json:"intensity"`
	Description string  `json:"description"`
}

type Result struct {
	PrimaryEmotion  Emotion         `json:"primary_emotion"`
	EmotionScore    int             `json:"emotion_score"`
	Sentiment       string          `json:"sentiment"`
	SentimentScore  float64         `json:"sentiment_score"`
	Emotions        Scores          `json:"emotions"`
	AlertLevel      AlertLevel      `json:"alert_level"`
	Recommendations []string        `json:"recommendations"`
	VaderScores     SentimentScores `json:"vader_scores"`
	VaderDetails    Sentiment       `json:"vader_details"`
}

// NeutralResult is substituted whenever scoring fails.
func NeutralResult() Result {
	details := Categorize(0)
	return Result{
		PrimaryEmotion:  Neutral,
		Sentiment:       details.Category,
		Emotions:        newScores(),
		AlertLevel:      AlertNone,
		Recommendations: []string{recommendStable},
		VaderScores:     SentimentScores{Neutral: 1},
		VaderDetails:    details,
	}
}
