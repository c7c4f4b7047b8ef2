package prompt

import "strings"

// Language selects the wording of prompts, labels and fallback pools.
type Language string

const (
	EnglishUS Language = "en-US"
	HindiIN   Language = "hi-IN"
)

// ParseLanguage maps a BCP 47 tag onto a supported Language; unknown tags
// resolve to EnglishUS.
func ParseLanguage(tag string) Language {
	if strings.EqualFold(strings.TrimSpace(tag), string(HindiIN)) {
		return HindiIN
	}
	return EnglishUS
}

// Turn is one history entry as the composer sees it.
type Turn struct {
	Patient bool
	Text    string
}

// EmotionMark is the slice of an emotion sample used in summaries.
type EmotionMark struct {
	Emotion    string
	AlertLevel string
}

func speakerLabel(patient bool, lang Language) string {
	if lang == HindiIN {
		if patient {
			return "मरीज़"
		}
		return "डॉक्टर"
	}
	if patient {
		return "Patient"
	}
	return "Doctor"
}

func patientStatements(history []Turn) []string {
	var out []string
	for _, t := range history {
		if t.Patient {
			out = append(out, t.Text)
		}
	}
	return out
}
