package consultation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medical-consult-assistant/internal/prompt"
	"medical-consult-assistant/pkg/logging"
)

type Handler struct {
	svc    Service
	logger *logging.Logger
}

func NewHandler(svc Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type StartSessionRequest struct {
	Language    string         `json:"language"`
	PatientInfo map[string]any `json:"patient_info"`
}

type GenerateQuestionRequest struct {
	Text          *string `json:"text"`
	Language      string  `json:"language"`
	SessionID     string  `json:"session_id"`
	Speaker       string  `json:"speaker"`
	QuestionCount int     `json:"question_count"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	// An empty body starts an en-US session.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	sess, err := h.svc.StartSession(r.Context(), req.Language, req.PatientInfo)
	if err != nil {
		h.logger.Error("failed to start session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": sess.ID.String(),
		"message":    "New consultation session started",
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": view.Session,
		"summary": view.Summary,
	})
}

func (h *Handler) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}

	resp, err := h.svc.GenerateQuestion(r.Context(), QuestionRequest{
		Text:      *req.Text,
		Language:  req.Language,
		SessionID: req.SessionID,
		Speaker:   req.Speaker,
		Count:     req.QuestionCount,
	})
	switch {
	case errors.Is(err, ErrEmptyText):
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, ErrInvalidSpeaker):
		writeError(w, http.StatusBadRequest, "Speaker must be patient or doctor")
	case err != nil:
		h.writeServiceError(w, err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) SummarizeConversation(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	// ?kind=brief|comprehensive, comprehensive when absent.
	kind := prompt.SummaryComprehensive
	if q := r.URL.Query().Get("kind"); q != "" {
		kind = prompt.ParseSummaryKind(q)
	}
	report, err := h.svc.Summarize(r.Context(), id, kind)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*SummaryReport
	}{true, report})
}

func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.SendReport(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Report sent to doctor",
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, ErrReportsDisabled):
		writeError(w, http.StatusServiceUnavailable, "Doctor reports are not configured")
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// sessionID parses the {id} URL parameter. Malformed ids cannot name a
// session, so they are reported as not found.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/start-session", h.StartSession)
	r.Get("/get-session/{id}", h.GetSession)
	r.Post("/generate-question", h.GenerateQuestion)
	r.Get("/summarize-conversation/{id}", h.SummarizeConversation)
	r.Post("/send-report/{id}", h.SendReport)
}
