package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medical-consult-assistant/internal/agent"
	"medical-consult-assistant/internal/emotion"
	"medical-consult-assistant/internal/observability/metrics"
	"medical-consult-assistant/internal/prompt"
	"medical-consult-assistant/pkg/logging"
)

const (
	DefaultLanguage = string(prompt.EnglishUS)

	// RepeatPrompt is returned for blank utterances.
	RepeatPrompt = "I couldn't hear you clearly. Could you please repeat what you said?"
	// NothingToSummarize is returned for sessions without history.
	NothingToSummarize = "No conversation to summarize yet."

	// A running summary is attached once the session has this many entries.
	summaryMinEntries    = 4
	summaryRecentEntries = 10
	summaryRecentSamples = 5

	notifyTimeout = 30 * time.Second
)

var (
	ErrSessionNotFound = errors.New("consultation: session not found")
	ErrEmptyText       = errors.New("consultation: empty text provided")
	ErrInvalidSpeaker  = errors.New("consultation: speaker must be patient or doctor")
	ErrReportsDisabled = errors.New("consultation: doctor reports are not configured")
)

// Generator is the text generation capability the service depends on.
type Generator interface {
	Generate(ctx context.Context, req agent.Request) (string, error)
}

// EmotionScorer scores patient utterances.
type EmotionScorer interface {
	Analyze(ctx context.Context, text string) (emotion.Result, error)
}

// ReportService delivers alerts and reports to the doctor.
type ReportService interface {
	SendAlert(ctx context.Context, n AlertNotice) error
	SendDoctorReport(ctx context.Context, r SessionReport) error
}

// SummaryCache stores generated summaries keyed by session state.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, summary string) error
}

type Service interface {
	StartSession(ctx context.Context, language string, patientInfo map[string]any) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error)
	GenerateQuestion(ctx context.Context, req QuestionRequest) (*QuestionResponse, error)
	Summarize(ctx context.Context, id uuid.UUID, kind prompt.SummaryKind) (*SummaryReport, error)
	SendReport(ctx context.Context, id uuid.UUID) error
}

type QuestionRequest struct {
	Text      string
	Language  string
	SessionID string
	Speaker   string
	Count     int
}

type EmotionView struct {
	PrimaryEmotion   emotion.Emotion         `json:"primary_emotion"`
	AlertLevel       emotion.AlertLevel      `json:"alert_level"`
	Sentiment        string                  `json:"sentiment"`
	SentimentScore   float64                 `json:"sentiment_score"`
	Recommendations  []string                `json:"recommendations"`
	VaderScores      emotion.SentimentScores `json:"vader_scores"`
	VaderDescription string                  `json:"vader_description"`
}

func newEmotionView(r emotion.Result) *EmotionView {
	return &EmotionView{
		PrimaryEmotion:   r.PrimaryEmotion,
		AlertLevel:       r.AlertLevel,
		Sentiment:        r.Sentiment,
		SentimentScore:   r.SentimentScore,
		Recommendations:  r.Recommendations,
		VaderScores:      r.VaderScores,
		VaderDescription: r.VaderDetails.Description,
	}
}

// Question sources reported to clients.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

type QuestionResponse struct {
	Success             bool         `json:"success"`
	Transcription       string       `json:"transcription"`
	FollowUpQuestion    string       `json:"follow_up_question"`
	Source              string       `json:"source,omitempty"`
	SessionID           string       `json:"session_id,omitempty"`
	ConversationLength  int          `json:"conversation_length"`
	EmotionAnalysis     *EmotionView `json:"emotion_analysis,omitempty"`
	ConversationSummary string       `json:"conversation_summary,omitempty"`
	Error               string       `json:"error,omitempty"`
}

type SessionView struct {
	Session *Session `json:"session"`
	Summary *string  `json:"summary"`
}

type ConversationStats struct {
	TotalExchanges    int       `json:"total_exchanges"`
	PatientStatements int       `json:"patient_statements"`
	DoctorQuestions   int       `json:"doctor_questions"`
	EmotionAlerts     int       `json:"emotion_alerts"`
	Duration          time.Time `json:"duration"`
}

func statsFor(s *Session) ConversationStats {
	stats := ConversationStats{
		TotalExchanges: len(s.ConversationHistory),
		Duration:       s.StartedAt,
	}
	for _, e := range s.ConversationHistory {
		switch e.Speaker {
		case SpeakerPatient:
			stats.PatientStatements++
		case SpeakerDoctor:
			stats.DoctorQuestions++
		}
	}
	for _, e := range s.EmotionTimeline {
		if e.AlertLevel != emotion.AlertNone {
			stats.EmotionAlerts++
		}
	}
	return stats
}

type SummaryReport struct {
	SessionID string             `json:"session_id"`
	Summary   string             `json:"summary"`
	Insights  *prompt.Insights   `json:"insights,omitempty"`
	Stats     *ConversationStats `json:"conversation_stats,omitempty"`
}

// AlertNotice describes a HIGH alert utterance.
type AlertNotice struct {
	SessionID string
	Text      string
	Result    emotion.Result
}

// SessionReport is the doctor-facing digest of a session.
type SessionReport struct {
	Session  *Session
	Summary  string
	Insights prompt.Insights
	Stats    ConversationStats
}

type service struct {
	repo      Repository
	scorer    EmotionScorer
	composer  *prompt.Composer
	generator Generator
	reports   ReportService
	cache     SummaryCache
	metrics   *metrics.AssistantMetrics
	logger    *logging.Logger
}

// Deps groups the collaborators of the consultation service. Reports,
// Cache and Metrics are optional.
type Deps struct {
	Repo      Repository
	Scorer    EmotionScorer
	Composer  *prompt.Composer
	Generator Generator
	Reports   ReportService
	Cache     SummaryCache
	Metrics   *metrics.AssistantMetrics
	Logger    *logging.Logger
}

func NewService(d Deps) Service {
	if d.Repo == nil {
		d.Repo = NewRepository()
	}
	if d.Composer == nil {
		d.Composer = prompt.NewComposer(nil)
	}
	if d.Generator == nil {
		d.Generator = agent.NewDisabled()
	}
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	return &service{
		repo:      d.Repo,
		scorer:    d.Scorer,
		composer:  d.Composer,
		generator: d.Generator,
		reports:   d.Reports,
		cache:     d.Cache,
		metrics:   d.Metrics,
		logger:    d.Logger,
	}
}

func (s *service) StartSession(ctx context.Context, language string, patientInfo map[string]any) (*Session, error) {
	sess, err := s.repo.Create(ctx, language, patientInfo)
	if err != nil {
		return nil, fmt.Errorf("consultation: create session: %w", err)
	}
	s.logger.Info("session started", "session_id", sess.ID, "language", sess.Language)
	return sess, nil
}

func (s *service) GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &SessionView{Session: sess}
	if len(sess.ConversationHistory) > 0 {
		summary := s.summarize(ctx, sess.ID, "full", len(sess.ConversationHistory), sess.ConversationHistory, sess.EmotionTimeline, sess.Lang(), prompt.SummaryBrief)
		view.Summary = &summary
	}
	return view, nil
}

// GenerateQuestion records the utterance and suggests follow-up questions.
// The response always carries a usable question; the returned error is
// ErrEmptyText or ErrInvalidSpeaker only.
func (s *service) GenerateQuestion(ctx context.Context, req QuestionRequest) (*QuestionResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return &QuestionResponse{
			FollowUpQuestion: RepeatPrompt,
			Error:            "Empty text provided",
		}, ErrEmptyText
	}
	speaker, err := ParseSpeaker(req.Speaker)
	if err != nil {
		return nil, err
	}
	lang := prompt.ParseLanguage(req.Language)
	count := req.Count
	if count <= 0 {
		count = prompt.DefaultQuestionCount
	}
	logger := s.logger.With("session_id", req.SessionID)

	var result *emotion.Result
	if speaker == SpeakerPatient {
		r := s.analyze(ctx, text, logger)
		result = &r
		s.metrics.ObserveAlert(string(r.AlertLevel))
	}

	// Unknown sessions are served without history.
	var snapshot *Session
	if id, parseErr := uuid.Parse(req.SessionID); parseErr == nil {
		snapshot, err = s.repo.Append(ctx, id, ConversationEntry{
			Speaker:         speaker,
			Text:            text,
			EmotionAnalysis: result,
		})
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			logger.Error("failed to append utterance", "error", err)
		}
	}

	var history []ConversationEntry
	if snapshot != nil {
		history = snapshot.ConversationHistory
	}

	resp := &QuestionResponse{
		Success:            true,
		Transcription:      text,
		SessionID:          req.SessionID,
		ConversationLength: len(history),
	}
	question, source, genErr := s.nextQuestion(ctx, text, lang, history, result, count, logger)
	resp.FollowUpQuestion = question
	resp.Source = source
	if genErr != nil {
		resp.Error = "Question generation failed; showing a suggested question instead"
	}
	if result != nil {
		resp.EmotionAnalysis = newEmotionView(*result)
	}

	if snapshot != nil && len(history) >= summaryMinEntries {
		recent := tail(history, summaryRecentEntries)
		samples := tail(snapshot.EmotionTimeline, summaryRecentSamples)
		resp.ConversationSummary = s.summarize(ctx, snapshot.ID, "recent", len(history), recent, samples, lang, prompt.SummaryBrief)
	}

	if result != nil && result.AlertLevel == emotion.AlertHigh {
		s.notifyAlert(ctx, AlertNotice{SessionID: req.SessionID, Text: text, Result: *result})
	}
	return resp, nil
}

func (s *service) analyze(ctx context.Context, text string, logger *logging.Logger) emotion.Result {
	if s.scorer == nil {
		return emotion.NeutralResult()
	}
	res, err := s.scorer.Analyze(ctx, text)
	if err != nil {
		logger.Warn("emotion analysis failed, using neutral result", "error", err)
		return emotion.NeutralResult()
	}
	return res
}

func (s *service) nextQuestion(ctx context.Context, text string, lang prompt.Language, history []ConversationEntry,
	result *emotion.Result, count int, logger *logging.Logger) (string, string, error) {
	req := s.composer.Question(prompt.QuestionInput{
		Text:     text,
		Language: lang,
		History:  turns(history),
		Emotion:  result,
	})

	start := time.Now()
	question, err := s.generator.Generate(ctx, req)
	s.metrics.ObserveLatency("question", time.Since(start).Seconds())
	if err == nil {
		return question, SourceModel, nil
	}

	fallback := prompt.FallbackQuestions(text, lang, count)
	switch {
	case errors.Is(err, agent.ErrDisabled):
		s.metrics.ObserveFallback("disabled")
		return fallback, SourceFallback, nil
	case agent.IsRateLimited(err):
		logger.Warn("generation rate limited, serving fallback questions", "error", err)
		s.metrics.ObserveFallback("rate_limited")
		return fallback, SourceFallback, nil
	default:
		logger.Error("question generation failed, serving fallback questions", "error", err)
		s.metrics.ObserveFallback("error")
		return fallback, SourceFallback, err
	}
}

// summarize returns a generated summary, or the localized error text when
// generation fails. scope and version (the session's entry count) identify
// the summarized state in the cache.
func (s *service) summarize(ctx context.Context, id uuid.UUID, scope string, version int, history []ConversationEntry,
	samples []EmotionSample, lang prompt.Language, kind prompt.SummaryKind) string {
	key := summaryKey(id, scope, kind, lang, version)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("summary cache read failed", "session_id", id, "error", err)
		} else if ok {
			return cached
		}
	}

	req := s.composer.Summary(prompt.SummaryInput{
		History:  turns(history),
		Emotions: emotionMarks(samples),
		Language: lang,
		Kind:     kind,
	})
	start := time.Now()
	summary, err := s.generator.Generate(ctx, req)
	s.metrics.ObserveLatency("summary", time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, agent.ErrDisabled) {
			s.logger.Warn("summary generation failed", "session_id", id, "error", err)
		}
		return prompt.SummaryErrorText(lang)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary); err != nil {
			s.logger.Warn("summary cache write failed", "session_id", id, "error", err)
		}
	}
	return summary
}

func (s *service) insights(ctx context.Context, sess *Session) prompt.Insights {
	patterns := prompt.EmotionalPatterns(emotionMarks(sess.EmotionTimeline))
	req := s.composer.Insights(turns(sess.ConversationHistory), patterns, sess.Lang())

	start := time.Now()
	raw, err := s.generator.Generate(ctx, req)
	s.metrics.ObserveLatency("insights", time.Since(start).Seconds())
	if err != nil {
		out := prompt.EmptyInsights()
		out.Error = err.Error()
		return out
	}
	return prompt.ParseInsights(raw, patterns)
}

// Summarize returns the session summary of the given kind with insights and
// stats. An empty kind means comprehensive.
func (s *service) Summarize(ctx context.Context, id uuid.UUID, kind prompt.SummaryKind) (*SummaryReport, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(sess.ConversationHistory) == 0 {
		return &SummaryReport{SessionID: id.String(), Summary: NothingToSummarize}, nil
	}

	if kind == "" {
		kind = prompt.SummaryComprehensive
	}
	report := s.buildReport(ctx, sess, kind)
	return &SummaryReport{
		SessionID: id.String(),
		Summary:   report.Summary,
		Insights:  &report.Insights,
		Stats:     &report.Stats,
	}, nil
}

func (s *service) buildReport(ctx context.Context, sess *Session, kind prompt.SummaryKind) SessionReport {
	return SessionReport{
		Session:  sess,
		Summary:  s.summarize(ctx, sess.ID, "full", len(sess.ConversationHistory), sess.ConversationHistory, sess.EmotionTimeline, sess.Lang(), kind),
		Insights: s.insights(ctx, sess),
		Stats:    statsFor(sess),
	}
}

func (s *service) SendReport(ctx context.Context, id uuid.UUID) error {
	if s.reports == nil {
		return ErrReportsDisabled
	}
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	report := SessionReport{Session: sess, Summary: NothingToSummarize, Insights: prompt.EmptyInsights(), Stats: statsFor(sess)}
	if len(sess.ConversationHistory) > 0 {
		report = s.buildReport(ctx, sess, prompt.SummaryComprehensive)
	}
	if err := s.reports.SendDoctorReport(ctx, report); err != nil {
		return fmt.Errorf("consultation: send report: %w", err)
	}
	s.logger.Info("doctor report sent", "session_id", id)
	return nil
}

// notifyAlert delivers in the background; failures are only logged.
func (s *service) notifyAlert(ctx context.Context, n AlertNotice) {
	if s.reports == nil {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.reports.SendAlert(bgCtx, n); err != nil {
			s.logger.Warn("failed to notify doctor of high alert", "session_id", n.SessionID, "error", err)
		}
	}()
}

func summaryKey(id uuid.UUID, scope string, kind prompt.SummaryKind, lang prompt.Language, version int) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", id, scope, kind, lang, version)
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
