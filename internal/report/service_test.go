package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-consult-assistant/internal/consultation"
	"medical-consult-assistant/internal/emotion"
	"medical-consult-assistant/internal/prompt"
	"medical-consult-assistant/pkg/logging"
)

type sentDoc struct {
	chatID int64
	data   []byte
	name   string
}

type fakeTelegram struct {
	messages []string
	docs     []sentDoc
	err      error
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTelegram) SendDocument(chatID int64, data []byte, name string) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, sentDoc{chatID: chatID, data: data, name: name})
	return nil
}

func sampleReport() consultation.SessionReport {
	insights := prompt.EmptyInsights()
	insights.Symptoms = []string{"chest pain"}
	insights.Concerns = []string{"heart attack"}
	insights.EmotionalPatterns = []string{"distress: 2 times"}
	insights.Recommendations = []string{"🚨 Order an ECG"}
	return consultation.SessionReport{
		Session: &consultation.Session{
			ID:        uuid.MustParse("8d1f0a52-4c1e-4a0b-9f3e-2d7c8b6a5e41"),
			StartedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			Language:  "en-US",
		},
		Summary:  "Patient reports chest pain for two days.\nAnxious about cardiac causes.",
		Insights: insights,
		Stats: consultation.ConversationStats{
			TotalExchanges:    4,
			PatientStatements: 2,
			DoctorQuestions:   2,
			EmotionAlerts:     1,
		},
	}
}

func findFont(t *testing.T) string {
	t.Helper()
	for _, p := range defaultFontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Skip("DejaVuSans.ttf not installed")
	return ""
}

func TestSendAlert(t *testing.T) {
	tg := &fakeTelegram{}
	svc := NewService(tg, 42, "", logging.Discard())

	err := svc.SendAlert(context.Background(), consultation.AlertNotice{
		SessionID: "abc",
		Text:      "Help, I'm scared",
		Result: emotion.Result{
			PrimaryEmotion:  emotion.Distress,
			EmotionScore:    2,
			AlertLevel:      emotion.AlertHigh,
			Sentiment:       emotion.SentimentNegative,
			Recommendations: []string{"check vitals"},
		},
	})
	require.NoError(t, err)
	require.Len(t, tg.messages, 1)

	msg := tg.messages[0]
	assert.Contains(t, msg, "Session: abc")
	assert.Contains(t, msg, "Primary emotion: distress (score 2)")
	assert.Contains(t, msg, "Alert level: HIGH")
	assert.Contains(t, msg, `"Help, I'm scared"`)
	assert.Contains(t, msg, "- check vitals")
}

func TestNotConfigured(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, 42, "", logging.Discard())
	assert.ErrorIs(t, svc.SendAlert(ctx, consultation.AlertNotice{}), ErrNotConfigured)

	svc = NewService(&fakeTelegram{}, 0, "", logging.Discard())
	assert.ErrorIs(t, svc.SendDoctorReport(ctx, sampleReport()), ErrNotConfigured)
}

func TestSendDoctorReportWithoutFontSendsText(t *testing.T) {
	tg := &fakeTelegram{}
	missing := filepath.Join(t.TempDir(), "missing.ttf")
	svc := NewService(tg, 42, missing, logging.Discard())

	require.NoError(t, svc.SendDoctorReport(context.Background(), sampleReport()))

	require.Len(t, tg.messages, 1)
	assert.Empty(t, tg.docs)
	msg := tg.messages[0]
	assert.Contains(t, msg, "Session: 8d1f0a52-4c1e-4a0b-9f3e-2d7c8b6a5e41")
	assert.Contains(t, msg, "Exchanges: 4 (patient 2, doctor 2)")
	assert.Contains(t, msg, "Patient reports chest pain for two days.")
	assert.Contains(t, msg, "Symptoms:\n- chest pain")
}

func TestSendDoctorReportRendersPDF(t *testing.T) {
	font := findFont(t)
	tg := &fakeTelegram{}
	svc := NewService(tg, 42, font, logging.Discard())

	require.NoError(t, svc.SendDoctorReport(context.Background(), sampleReport()))

	require.Len(t, tg.docs, 1)
	doc := tg.docs[0]
	assert.Equal(t, int64(42), doc.chatID)
	assert.Equal(t, "report_8d1f0a52-4c1e-4a0b-9f3e-2d7c8b6a5e41.pdf", doc.name)
	assert.True(t, len(doc.data) > 4 && string(doc.data[:4]) == "%PDF")
}

func TestSendDoctorReportTelegramFailure(t *testing.T) {
	tg := &fakeTelegram{err: errors.New("bot blocked")}
	svc := NewService(tg, 42, "", logging.Discard())

	err := svc.SendDoctorReport(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot blocked")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, " Order an ECG", sanitize("🚨 Order an ECG"))
	assert.Equal(t, "Пациент", sanitize("Пациент"))
	assert.Equal(t, "ok ", asciiOnly("ok मरीज़"))
}

func TestFontPathsForHindiSessions(t *testing.T) {
	svc := NewService(&fakeTelegram{}, 42, "/fonts/latin.ttf", logging.Discard(),
		WithDevanagariFont("/fonts/devanagari.ttf"))

	hindi := &consultation.Session{Language: "hi-IN"}
	english := &consultation.Session{Language: "en-US"}

	assert.Equal(t, []string{"/fonts/devanagari.ttf", "/fonts/latin.ttf"}, svc.fontPathsFor(hindi))
	assert.Equal(t, []string{"/fonts/latin.ttf"}, svc.fontPathsFor(english))

	svc = NewService(&fakeTelegram{}, 42, "", logging.Discard(), WithDevanagariFont(" "))
	assert.Equal(t, append(append([]string{}, defaultDevanagariFontPaths...), defaultFontPaths...), svc.fontPathsFor(hindi))
}

func TestSendDoctorReportHindiWithoutFontsSendsText(t *testing.T) {
	tg := &fakeTelegram{}
	dir := t.TempDir()
	svc := NewService(tg, 42, filepath.Join(dir, "latin.ttf"), logging.Discard(),
		WithDevanagariFont(filepath.Join(dir, "devanagari.ttf")))

	r := sampleReport()
	r.Session.Language = "hi-IN"
	r.Summary = "मरीज़ को सीने में दर्द है।"

	require.NoError(t, svc.SendDoctorReport(context.Background(), r))
	require.Len(t, tg.messages, 1)
	assert.Contains(t, tg.messages[0], "मरीज़ को सीने में दर्द है।")
	assert.Empty(t, tg.docs)
}

func TestSanitizeKeepsDevanagari(t *testing.T) {
	assert.Equal(t, "मरीज़ ठीक है", sanitize("मरीज़ ठीक है"))
}
