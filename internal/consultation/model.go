package consultation

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"medical-consult-assistant/internal/emotion"
	"medical-consult-assistant/internal/prompt"
)

type Speaker string

const (
	SpeakerPatient Speaker = "patient"
	SpeakerDoctor  Speaker = "doctor"
)

// ParseSpeaker defaults an empty role to patient.
func ParseSpeaker(s string) (Speaker, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SpeakerPatient):
		return SpeakerPatient, nil
	case string(SpeakerDoctor):
		return SpeakerDoctor, nil
	default:
		return "", ErrInvalidSpeaker
	}
}

// ConversationEntry is one utterance. Entries are never modified after append.
type ConversationEntry struct {
	Timestamp       time.Time       `json:"timestamp"`
	Speaker         Speaker         `json:"speaker"`
	Text            string          `json:"text"`
	EmotionAnalysis *emotion.Result `json:"emotion_analysis,omitempty"`
}

// EmotionSample is the timeline projection of a scored patient utterance.
type EmotionSample struct {
	Timestamp      time.Time          `json:"timestamp"`
	Emotion        emotion.Emotion    `json:"emotion"`
	AlertLevel     emotion.AlertLevel `json:"alert_level"`
	SentimentScore float64            `json:"sentiment_score"`
	Text           string             `json:"text"`
}

// Session is one consultation's conversational and emotional state.
type Session struct {
	ID                  uuid.UUID           `json:"session_id"`
	StartedAt           time.Time           `json:"started_at"`
	Language            string              `json:"language"`
	PatientInfo         map[string]any      `json:"patient_info"`
	ConversationHistory []ConversationEntry `json:"conversation_history"`
	EmotionTimeline     []EmotionSample     `json:"emotion_timeline"`
	KeySymptoms         []string            `json:"key_symptoms"`
	DoctorNotes         []string            `json:"doctor_notes"`
}

// clone returns a copy whose slices and patient info can be read without
// holding the session lock.
func (s *Session) clone() *Session {
	c := *s
	c.PatientInfo = maps.Clone(s.PatientInfo)
	c.ConversationHistory = append([]ConversationEntry(nil), s.ConversationHistory...)
	c.EmotionTimeline = append([]EmotionSample(nil), s.EmotionTimeline...)
	c.KeySymptoms = append([]string{}, s.KeySymptoms...)
	c.DoctorNotes = append([]string{}, s.DoctorNotes...)
	if c.ConversationHistory == nil {
		c.ConversationHistory = []ConversationEntry{}
	}
	if c.EmotionTimeline == nil {
		c.EmotionTimeline = []EmotionSample{}
	}
	return &c
}

// Lang is the session language resolved to a supported prompt language.
func (s *Session) Lang() prompt.Language {
	return prompt.ParseLanguage(s.Language)
}

func turns(entries []ConversationEntry) []prompt.Turn {
	out := make([]prompt.Turn, len(entries))
	for i, e := range entries {
		out[i] = prompt.Turn{Patient: e.Speaker == SpeakerPatient, Text: e.Text}
	}
	return out
}

func emotionMarks(samples []EmotionSample) []prompt.EmotionMark {
	out := make([]prompt.EmotionMark, len(samples))
	for i, s := range samples {
		out[i] = prompt.EmotionMark{Emotion: string(s.Emotion), AlertLevel: string(s.AlertLevel)}
	}
	return out
}

func sampleFrom(entry ConversationEntry) EmotionSample {
	res := emotion.NeutralResult()
	if entry.EmotionAnalysis != nil {
		res = *entry.EmotionAnalysis
	}
	return EmotionSample{
		Timestamp:      entry.Timestamp,
		Emotion:        res.PrimaryEmotion,
		AlertLevel:     res.AlertLevel,
		SentimentScore: res.SentimentScore,
		Text:           entry.Text,
	}
}
