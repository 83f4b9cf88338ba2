package api

import (
	"context"
	"io"
	"strings"

	"earshot/internal/contextview"
	"earshot/internal/ingest"
	"earshot/internal/language"
	"earshot/internal/services"
	"earshot/internal/store"
)

// ContextStore abstracts the persistence calls the API needs.
type ContextStore interface {
	ListContexts(ctx context.Context, offset, limit int) ([]store.Context, error)
	CreateContext(ctx context.Context, name, description string) (*store.Context, error)
	Context(ctx context.Context, id int64) (*store.Context, error)
	GetContext(ctx context.Context, id int64) (*contextview.Payload, error)
	AddSpeaker(ctx context.Context, contextID int64, name, description string) (contextview.Speaker, error)
	AddHierarchy(ctx context.Context, contextID int64, parentName, childName string) error
	AddCodeword(ctx context.Context, contextID int64, word, meaning string) error
	Stats(ctx context.Context) (store.Stats, error)
}

// Ingester stores uploaded audio.
type Ingester interface {
	Ingest(ctx context.Context, contextID int64, filename string, r io.Reader) (*ingest.Result, error)
}

// ContextService exposes context operations returning API DTOs.
type ContextService struct {
	store    ContextStore
	ingester Ingester
}

// NewContextService constructs a ContextService. ingester may be nil, in which
// case uploads are rejected.
func NewContextService(st ContextStore, ingester Ingester) *ContextService {
	if st == nil {
		return nil
	}
	return &ContextService{store: st, ingester: ingester}
}

// List returns a page of context summaries.
func (s *ContextService) List(ctx context.Context, offset, limit int) ([]ContextSummary, error) {
	items, err := s.store.ListContexts(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return FromContexts(items), nil
}

// Create adds a new empty context.
func (s *ContextService) Create(ctx context.Context, req CreateContextRequest) (ContextSummary, error) {
	if strings.TrimSpace(req.Name) == "" {
		return ContextSummary{}, services.Wrap(services.ErrValidation, "api", "create context", "name is required", nil)
	}
	item, err := s.store.CreateContext(ctx, req.Name, req.Description)
	if err != nil {
		return ContextSummary{}, err
	}
	return FromContext(*item), nil
}

// Payload returns the full context document.
func (s *ContextService) Payload(ctx context.Context, id int64) (*contextview.Payload, error) {
	return s.store.GetContext(ctx, id)
}

// View returns the projected context rendered in lang.
func (s *ContextService) View(ctx context.Context, id int64, lang language.Code) (ContextView, error) {
	payload, err := s.store.GetContext(ctx, id)
	if err != nil {
		return ContextView{}, err
	}
	return BuildView(id, *payload, lang), nil
}

// AddSpeaker records a named speaker in the context.
func (s *ContextService) AddSpeaker(ctx context.Context, contextID int64, req AddSpeakerRequest) (contextview.Speaker, error) {
	if strings.TrimSpace(req.Name) == "" {
		return contextview.Speaker{}, services.Wrap(services.ErrValidation, "api", "add speaker", "name is required", nil)
	}
	return s.store.AddSpeaker(ctx, contextID, req.Name, req.Description)
}

// AddHierarchy links parent to child by speaker name. Names that match no
// speaker are accepted and simply produce no edge in the view.
func (s *ContextService) AddHierarchy(ctx context.Context, contextID int64, req contextview.HierarchyEntry) (contextview.HierarchyEntry, error) {
	entry := contextview.HierarchyEntry{
		ParentName: strings.TrimSpace(req.ParentName),
		ChildName:  strings.TrimSpace(req.ChildName),
	}
	if entry.ParentName == "" || entry.ChildName == "" {
		return contextview.HierarchyEntry{}, services.Wrap(services.ErrValidation, "api", "add hierarchy", "parent_name and child_name are required", nil)
	}
	if err := s.store.AddHierarchy(ctx, contextID, entry.ParentName, entry.ChildName); err != nil {
		return contextview.HierarchyEntry{}, err
	}
	return entry, nil
}

// AddCodeword records a codeword and its meaning.
func (s *ContextService) AddCodeword(ctx context.Context, contextID int64, req contextview.Codeword) (contextview.Codeword, error) {
	word := contextview.Codeword{Word: strings.TrimSpace(req.Word), Meaning: strings.TrimSpace(req.Meaning)}
	if word.Word == "" {
		return contextview.Codeword{}, services.Wrap(services.ErrValidation, "api", "add codeword", "word is required", nil)
	}
	if err := s.store.AddCodeword(ctx, contextID, word.Word, word.Meaning); err != nil {
		return contextview.Codeword{}, err
	}
	return word, nil
}

// Upload ingests an audio file into the context.
func (s *ContextService) Upload(ctx context.Context, contextID int64, filename string, r io.Reader) (UploadResponse, error) {
	if s.ingester == nil {
		return UploadResponse{}, services.Wrap(services.ErrConfiguration, "api", "upload", "ingest pipeline unavailable", nil)
	}
	result, err := s.ingester.Ingest(ctx, contextID, filename, r)
	if err != nil {
		return UploadResponse{}, err
	}
	return FromIngestResult(result), nil
}

// Stats returns database row counts.
func (s *ContextService) Stats(ctx context.Context) (store.Stats, error) {
	return s.store.Stats(ctx)
}
