package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"earshot/internal/api"
	"earshot/internal/config"
	"earshot/internal/contextview"
	"earshot/internal/language"
	"earshot/internal/logging"
	"earshot/internal/services"
	"earshot/internal/store"
)

const (
	multipartMemory   = 32 << 20
	shutdownTimeout   = 5 * time.Second
	uploadGracePeriod = 2 * time.Minute
)

type apiServer struct {
	bind          string
	logger        *slog.Logger
	svc           *api.ContextService
	maxUpload     int64
	uploadTimeout time.Duration
	llmEnabled    bool
	transcription bool

	handler http.Handler
	server  *http.Server

	mu       sync.Mutex
	listener net.Listener
}

func newAPIServer(cfg *config.Config, svc *api.ContextService, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:          strings.TrimSpace(cfg.API.Bind),
		logger:        logging.NewComponentLogger(logger, "api"),
		svc:           svc,
		maxUpload:     cfg.MaxUploadBytes(),
		llmEnabled:    cfg.LLM.Enabled,
		transcription: cfg.Transcription.Enabled,
	}
	if cfg.Transcription.TimeoutSeconds > 0 {
		srv.uploadTimeout = time.Duration(cfg.Transcription.TimeoutSeconds)*time.Second + uploadGracePeriod
	}
	srv.handler = srv.routes(cfg.API.Token, cfg.API.AllowedOrigins)
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		// Uploads transcribe synchronously; the handler bounds them instead.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(token string, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware(token))
	protected.HandleFunc("/", s.handleList).Methods(http.MethodGet)
	protected.HandleFunc("/create-context", s.handleCreate).Methods(http.MethodPost)
	protected.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPut)
	protected.HandleFunc("/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	protected.HandleFunc("/{id:[0-9]+}/view", s.handleView).Methods(http.MethodGet)
	protected.HandleFunc("/{id:[0-9]+}/speakers", s.handleAddSpeaker).Methods(http.MethodPost)
	protected.HandleFunc("/{id:[0-9]+}/hierarchy", s.handleAddHierarchy).Methods(http.MethodPost)
	protected.HandleFunc("/{id:[0-9]+}/codewords", s.handleAddCodeword).Methods(http.MethodPost)

	var handler http.Handler = r
	handler = loggingMiddleware(s.logger)(handler)
	handler = corsMiddleware(allowedOrigins)(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api listen: bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.shutdown()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "degraded", Database: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:        "ok",
		Database:      "ok",
		Stats:         stats,
		Transcription: s.transcription,
		LLM:           s.llmEnabled,
	})
}

func (s *apiServer) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	offset, err := queryInt(query.Get("offset"), 0)
	if err != nil || offset < 0 {
		s.writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(query.Get("limit"), store.DefaultListLimit)
	if err != nil || limit < 1 || limit > store.MaxListLimit {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", store.MaxListLimit))
		return
	}
	items, err := s.svc.List(r.Context(), offset, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *apiServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreateContextRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	created, err := s.svc.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *apiServer) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.contextID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	payload, err := s.svc.Payload(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleView(w http.ResponseWriter, r *http.Request) {
	id, ok := s.contextID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	lang := language.Default
	if raw := r.URL.Query().Get("lang"); raw != "" {
		parsed, err := language.Parse(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lang = parsed
	}
	view, err := s.svc.View(r.Context(), id, lang)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *apiServer) handleAddSpeaker(w http.ResponseWriter, r *http.Request) {
	id, ok := s.contextID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	var req api.AddSpeakerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	speaker, err := s.svc.AddSpeaker(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, speaker)
}

func (s *apiServer) handleAddHierarchy(w http.ResponseWriter, r *http.Request) {
	id, ok := s.contextID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	var req contextview.HierarchyEntry
	if !s.decodeBody(w, r, &req) {
		return
	}
	entry, err := s.svc.AddHierarchy(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *apiServer) handleAddCodeword(w http.ResponseWriter, r *http.Request) {
	id, ok := s.contextID(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	var req contextview.Codeword
	if !s.decodeBody(w, r, &req) {
		return
	}
	word, err := s.svc.AddCodeword(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, word)
}

func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	id, ok := s.contextID(w, r.FormValue("context_id"))
	if !ok {
		return
	}
	file, header, err := r.FormFile("audio_sample")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "audio_sample file is required")
		return
	}
	defer file.Close()

	ctx := r.Context()
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}
	resp, err := s.svc.Upload(ctx, id, header.Filename, file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) contextID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid context id")
		return 0, false
	}
	return id, true
}

func (s *apiServer) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func queryInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.logger).Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
