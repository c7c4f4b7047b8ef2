package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/signintech/gopdf"

	"medical-consult-assistant/internal/consultation"
	"medical-consult-assistant/internal/prompt"
	"medical-consult-assistant/pkg/logging"
)

var ErrNotConfigured = errors.New("report: telegram client or doctor chat id not configured")

// DejaVuSans covers Latin and Cyrillic but has no Devanagari glyphs; hi-IN
// reports need a Devanagari font (REPORT_DEVANAGARI_FONT_PATH or Noto Sans
// Devanagari below), otherwise Hindi lines render empty in the PDF. The
// Telegram text message is unaffected. Installed paths differ by distro.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

var defaultDevanagariFontPaths = []string{
	"/usr/share/fonts/noto/NotoSansDevanagari-Regular.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf",
}

const (
	fontFamily = "DejaVu"
	lineWidth  = 500
	pageBreakY = 780
)

type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Service implements consultation.ReportService over Telegram.
type Service struct {
	tgClient            TelegramClient
	doctorChatID        int64
	fontPaths           []string
	devanagariFontPaths []string
	logger              *logging.Logger
}

type Option func(*Service)

// WithDevanagariFont sets the TTF used for hi-IN session reports.
func WithDevanagariFont(path string) Option {
	return func(s *Service) {
		if strings.TrimSpace(path) != "" {
			s.devanagariFontPaths = []string{path}
		}
	}
}

// NewService builds a report service. An empty fontPath searches the usual
// DejaVu locations.
func NewService(tg TelegramClient, doctorChatID int64, fontPath string, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	paths := defaultFontPaths
	if strings.TrimSpace(fontPath) != "" {
		paths = []string{fontPath}
	}
	s := &Service{
		tgClient:            tg,
		doctorChatID:        doctorChatID,
		fontPaths:           paths,
		devanagariFontPaths: defaultDevanagariFontPaths,
		logger:              logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ consultation.ReportService = (*Service)(nil)

func (s *Service) configured() bool {
	return s.tgClient != nil && s.doctorChatID != 0
}

func (s *Service) SendAlert(ctx context.Context, n consultation.AlertNotice) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.tgClient.SendMessage(s.doctorChatID, alertText(n)); err != nil {
		return fmt.Errorf("report: send alert: %w", err)
	}
	s.logger.Info("high alert sent to doctor", "session_id", n.SessionID, "emotion", n.Result.PrimaryEmotion)
	return nil
}

func alertText(n consultation.AlertNotice) string {
	var b strings.Builder
	b.WriteString("🚨 HIGH EMOTIONAL ALERT\n\n")
	fmt.Fprintf(&b, "Session: %s\n", n.SessionID)
	fmt.Fprintf(&b, "Primary emotion: %s (score %d)\n", n.Result.PrimaryEmotion, n.Result.EmotionScore)
	fmt.Fprintf(&b, "Alert level: %s\n", n.Result.AlertLevel)
	fmt.Fprintf(&b, "Sentiment: %s\n", n.Result.Sentiment)
	fmt.Fprintf(&b, "\nPatient said: \"%s\"\n", n.Text)
	if len(n.Result.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, r := range n.Result.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}

// SendDoctorReport sends the digest as text and then as a PDF. When no font
// can be loaded the PDF is skipped and only the text is delivered.
func (s *Service) SendDoctorReport(ctx context.Context, r consultation.SessionReport) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	if r.Session == nil {
		return errors.New("report: session is required")
	}
	logger := s.logger.With("session_id", r.Session.ID)

	if err := s.tgClient.SendMessage(s.doctorChatID, reportText(r)); err != nil {
		return fmt.Errorf("report: send summary: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pdfData, err := s.renderPDF(r)
	if err != nil {
		logger.Warn("PDF report skipped", "error", err)
		return nil
	}

	fileName := fmt.Sprintf("report_%s.pdf", r.Session.ID)
	if err := s.tgClient.SendDocument(s.doctorChatID, pdfData, fileName); err != nil {
		return fmt.Errorf("report: send pdf: %w", err)
	}
	logger.Info("doctor report sent", "file", fileName, "bytes", len(pdfData))
	return nil
}

type section struct {
	title string
	items []string
}

func reportSections(r consultation.SessionReport) []section {
	return []section{
		{"Symptoms", r.Insights.Symptoms},
		{"Concerns", r.Insights.Concerns},
		{"Emotional patterns", r.Insights.EmotionalPatterns},
		{"Recommendations", r.Insights.Recommendations},
	}
}

func headerLines(r consultation.SessionReport) []string {
	st := r.Stats
	return []string{
		fmt.Sprintf("Session: %s", r.Session.ID),
		fmt.Sprintf("Started: %s", r.Session.StartedAt.Format("02.01.2006 15:04")),
		fmt.Sprintf("Language: %s", r.Session.Language),
		fmt.Sprintf("Exchanges: %d (patient %d, doctor %d)", st.TotalExchanges, st.PatientStatements, st.DoctorQuestions),
		fmt.Sprintf("Emotion alerts: %d", st.EmotionAlerts),
	}
}

func reportText(r consultation.SessionReport) string {
	var b strings.Builder
	b.WriteString("📋 Consultation report\n\n")
	for _, l := range headerLines(r) {
		b.WriteString(l)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nSummary:\n%s\n", strings.TrimSpace(r.Summary))
	for _, sec := range reportSections(r) {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", sec.title)
		for _, item := range sec.items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String()
}

// fontPathsFor lists candidate fonts for a session, Devanagari first for hi-IN.
func (s *Service) fontPathsFor(sess *consultation.Session) []string {
	if sess.Lang() == prompt.HindiIN {
		return append(append([]string{}, s.devanagariFontPaths...), s.fontPaths...)
	}
	return s.fontPaths
}

func (s *Service) loadFont(pdf *gopdf.GoPdf, paths []string) error {
	var lastErr error
	for _, path := range paths {
		if err := pdf.AddTTFFont(fontFamily, path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("report: no usable font in %v: %w", paths, lastErr)
}

func (s *Service) renderPDF(r consultation.SessionReport) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetMargins(40, 40, 40, 40)
	pdf.AddPage()

	if err := s.loadFont(pdf, s.fontPathsFor(r.Session)); err != nil {
		return nil, err
	}

	w := &pdfWriter{pdf: pdf}
	w.heading("Consultation Report", 20, 30)
	w.setFont(11)
	for _, l := range headerLines(r) {
		w.paragraph(l)
	}
	w.pdf.Br(15)

	w.heading("Summary", 14, 18)
	w.setFont(11)
	w.paragraph(r.Summary)
	w.pdf.Br(10)

	for _, sec := range reportSections(r) {
		if len(sec.items) == 0 {
			continue
		}
		w.heading(sec.title, 14, 18)
		w.setFont(11)
		for _, item := range sec.items {
			w.paragraph("- " + item)
		}
		w.pdf.Br(10)
	}

	if w.err != nil {
		return nil, w.err
	}
	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("report: failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfWriter keeps the first error so rendering reads top to bottom.
type pdfWriter struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *pdfWriter) setFont(size float64) {
	if w.err != nil {
		return
	}
	if err := w.pdf.SetFont(fontFamily, "", size); err != nil {
		w.err = fmt.Errorf("report: set font: %w", err)
	}
}

func (w *pdfWriter) heading(text string, size, gap float64) {
	w.setFont(size)
	w.line(text)
	w.pdf.Br(gap)
}

func (w *pdfWriter) paragraph(text string) {
	for _, raw := range strings.Split(sanitize(text), "\n") {
		if w.err != nil {
			return
		}
		lines, err := w.pdf.SplitText(raw, lineWidth)
		if err != nil {
			lines = []string{asciiOnly(raw)}
		}
		for _, l := range lines {
			w.line(l)
			w.pdf.Br(14)
		}
	}
}

// line writes one row, retrying without non-ASCII glyphs the font lacks.
func (w *pdfWriter) line(text string) {
	if w.err != nil {
		return
	}
	if w.pdf.GetY() > pageBreakY {
		w.pdf.AddPage()
	}
	if err := w.pdf.Cell(nil, text); err != nil {
		if err := w.pdf.Cell(nil, asciiOnly(text)); err != nil {
			w.err = fmt.Errorf("report: write line: %w", err)
		}
	}
}

// sanitize drops emoji and other pictographs that TTF text fonts lack.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF || unicode.Is(unicode.So, r) || r == '\uFE0F' {
			return -1
		}
		return r
	}, s)
}

func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || (r < ' ' && r != '\t') {
			return -1
		}
		return r
	}, s)
}
