package emotion

const (
	recommendDistress    = "🚨 Patient showing signs of distress - check vital signs and immediate concerns"
	recommendConfusion   = "🤔 Patient appears confused - simplify explanations and check understanding"
	recommendAnxiety     = "😰 Patient showing anxiety - provide reassurance and clear information"
	recommendFear        = "😨 Patient expressing fear - address concerns with empathy and clear explanations"
	recommendFrustration = "😤 Patient appears frustrated - acknowledge feelings and provide clearer guidance"
	recommendSadness     = "😢 Patient showing sadness - offer emotional support and check mental wellbeing"
	recommendAnger       = "😠 Patient expressing anger - remain calm, listen actively, and address concerns"
	recommendCalm        = "😌 Patient appears calm - good opportunity for detailed discussions"
	recommendStable      = "✅ Patient emotional state appears stable"
)

// advisories fire when a bucket exceeds its threshold, in this order.
var advisories = []struct {
	emotion   Emotion
	threshold int
	text      string
}{
	{Distress, 0, recommendDistress},
	{Confusion, 2, recommendConfusion},
	{Anxiety, 1, recommendAnxiety},
	{Fear, 1, recommendFear},
	{Frustration, 1, recommendFrustration},
	{Sadness, 1, recommendSadness},
	{Anger, 1, recommendAnger},
	{Calm, 0, recommendCalm},
}

// ClassifyAlert derives the alert tier. Rules are checked from HIGH down and
// the first match wins.
func ClassifyAlert(s Scores) AlertLevel {
	distress := s[Distress] + s[Fear] + s[Anxiety]
	confusion := s[Confusion]
	anger := s[Anger] + s[Frustration]
	sadness := s[Sadness]

	switch {
	case distress >= 3 || s[Distress] >= 2:
		return AlertHigh
	case (distress >= 2 && confusion >= 1) || confusion >= 3 || anger >= 2 || sadness >= 2:
		return AlertMedium
	case distress >= 1 || confusion >= 1 || anger >= 1 || sadness >= 1:
		return AlertLow
	default:
		return AlertNone
	}
}

// Recommend returns the advisories triggered by s, or the stable advisory.
func Recommend(s Scores) []string {
	var out []string
	for _, a := range advisories {
		if s[a.emotion] > a.threshold {
			out = append(out, a.text)
		}
	}
	if len(out) == 0 {
		out = append(out, recommendStable)
	}
	return out
}
