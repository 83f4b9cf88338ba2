package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"earshot/internal/api"
	"earshot/internal/contextview"
	"earshot/internal/language"
	"earshot/internal/logging"
	"earshot/internal/services"
)

// Backend is the subset of the HTTP client a session needs.
type Backend interface {
	GetContext(ctx context.Context, id int64) (contextview.Payload, error)
	UploadAudio(ctx context.Context, contextID int64, filename string, r io.Reader) (api.UploadResponse, error)
}

// Snapshot is the state applied by the most recent accepted refresh.
type Snapshot struct {
	Sequence    uint64                 `json:"sequence"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Projection  contextview.Projection `json:"projection"`
	Speakers    []contextview.Speaker  `json:"speakers"`
	Warnings    []contextview.Warning  `json:"warnings"`
}

// Session is the view controller for one context.
type Session struct {
	backend   Backend
	contextID int64
	lang      *language.Setting
	logger    *slog.Logger

	issued atomic.Uint64

	mu      sync.RWMutex
	current *Snapshot
}

// New builds a session for contextID. A nil setting starts at the default
// language.
func New(backend Backend, contextID int64, lang *language.Setting, logger *slog.Logger) *Session {
	if lang == nil {
		lang = language.NewSetting(language.Default)
	}
	return &Session{
		backend:   backend,
		contextID: contextID,
		lang:      lang,
		logger:    logging.NewComponentLogger(logger, "session").With(logging.Int64(logging.FieldContextID, contextID)),
	}
}

// ContextID returns the context this session renders.
func (s *Session) ContextID() int64 {
	return s.contextID
}

// Language returns the display-language setting.
func (s *Session) Language() *language.Setting {
	return s.lang
}

// Refresh fetches the context and recomputes the projection. applied is false
// when a newer refresh already landed and this response was dropped.
func (s *Session) Refresh(ctx context.Context) (applied bool, err error) {
	seq := s.issued.Add(1)
	payload, err := s.backend.GetContext(ctx, s.contextID)
	if err != nil {
		return false, fmt.Errorf("refresh context %d: %w", s.contextID, err)
	}
	return s.apply(seq, payload), nil
}

func (s *Session) apply(seq uint64, payload contextview.Payload) bool {
	snap := &Snapshot{
		Sequence:    seq,
		Name:        payload.Name,
		Description: payload.Description,
		Projection:  contextview.Project(payload),
		Speakers:    payload.Speakers,
		Warnings:    contextview.Inspect(payload),
	}

	s.mu.Lock()
	if s.current != nil && s.current.Sequence > seq {
		s.mu.Unlock()
		s.logger.Debug("discarding stale context response",
			logging.Int64("sequence", int64(seq)),
			logging.Int64("applied_sequence", int64(s.current.Sequence)),
		)
		return false
	}
	s.current = snap
	s.mu.Unlock()

	for _, w := range snap.Warnings {
		logging.WarnWithContext(s.logger, w.Message, w.Kind, logging.Int("index", w.Index))
	}
	return true
}

// Upload sends an audio file and refreshes once the backend accepts it. The
// session is left untouched when the upload fails.
func (s *Session) Upload(ctx context.Context, filename string, r io.Reader) (api.UploadResponse, error) {
	resp, err := s.backend.UploadAudio(ctx, s.contextID, filename, r)
	if err != nil {
		return api.UploadResponse{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	for _, w := range resp.Warnings {
		logging.WarnWithContext(s.logger, w.Message, w.Event)
	}
	if _, err := s.Refresh(ctx); err != nil {
		return resp, err
	}
	return resp, nil
}

// Snapshot returns the applied state, or nil before the first refresh.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Speaker looks up a speaker by graph node id.
func (s *Session) Speaker(id string) (contextview.Speaker, bool) {
	snap := s.Snapshot()
	if snap == nil {
		return contextview.Speaker{}, false
	}
	for _, speaker := range snap.Speakers {
		if speaker.ID == id {
			return speaker, true
		}
	}
	return contextview.Speaker{}, false
}

// Audio returns the audio sample at position index in the audio list.
func (s *Session) Audio(index int) (contextview.Audio, error) {
	snap := s.Snapshot()
	if snap == nil {
		return contextview.Audio{}, services.Wrap(services.ErrValidation, "session", "audio", "context not loaded", nil)
	}
	if index < 0 || index >= len(snap.Projection.Audios) {
		return contextview.Audio{}, services.Wrap(services.ErrNotFound, "session", "audio",
			fmt.Sprintf("audio #%d (have %d)", index+1, len(snap.Projection.Audios)), nil)
	}
	return snap.Projection.Audios[index], nil
}

// Transcript renders the audio at index in the current display language.
func (s *Session) Transcript(index int) ([]contextview.TranscriptRow, error) {
	audio, err := s.Audio(index)
	if err != nil {
		return nil, err
	}
	return contextview.TranscriptRows(audio, s.lang.Current()), nil
}
