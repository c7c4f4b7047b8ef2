package consultation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, language string, patientInfo map[string]any) (*Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// Append stamps entry with the append time, adds it and, for patient
	// entries, its emotion sample, and returns a snapshot of the session.
	Append(ctx context.Context, id uuid.UUID, entry ConversationEntry) (*Session, error)
}

type memoryRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionSlot
	now      func() time.Time
}

// sessionSlot serializes appends to one session without blocking others.
type sessionSlot struct {
	mu      sync.Mutex
	session *Session
}

// NewRepository returns a process-local store; sessions live until exit.
func NewRepository() Repository {
	return &memoryRepo{
		sessions: make(map[uuid.UUID]*sessionSlot),
		now:      time.Now,
	}
}

func (r *memoryRepo) Create(ctx context.Context, language string, patientInfo map[string]any) (*Session, error) {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	if patientInfo == nil {
		patientInfo = map[string]any{}
	}
	s := &Session{
		ID:                  uuid.New(),
		StartedAt:           r.now(),
		Language:            language,
		PatientInfo:         patientInfo,
		ConversationHistory: []ConversationEntry{},
		EmotionTimeline:     []EmotionSample{},
		KeySymptoms:         []string{},
		DoctorNotes:         []string{},
	}

	r.mu.Lock()
	r.sessions[s.ID] = &sessionSlot{session: s}
	r.mu.Unlock()

	return s.clone(), nil
}

func (r *memoryRepo) slot(id uuid.UUID) (*sessionSlot, error) {
	r.mu.RLock()
	slot, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return slot, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	slot, err := r.slot(id)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.session.clone(), nil
}

func (r *memoryRepo) Append(ctx context.Context, id uuid.UUID, entry ConversationEntry) (*Session, error) {
	slot, err := r.slot(id)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	// Stamped under the lock so history order and time order agree.
	s := slot.session
	entry.Timestamp = r.now()
	if n := len(s.ConversationHistory); n > 0 {
		if last := s.ConversationHistory[n-1].Timestamp; !entry.Timestamp.After(last) {
			entry.Timestamp = last.Add(time.Nanosecond)
		}
	}
	s.ConversationHistory = append(s.ConversationHistory, entry)
	if entry.Speaker == SpeakerPatient {
		s.EmotionTimeline = append(s.EmotionTimeline, sampleFrom(entry))
	}
	return s.clone(), nil
}
