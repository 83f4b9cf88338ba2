package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"earshot/internal/api"
	"earshot/internal/config"
	"earshot/internal/contextview"
	"earshot/internal/ingest"
	"earshot/internal/store"
	"earshot/internal/testsupport"
)

type stubIngester struct {
	calls []string
	body  string
}

func (s *stubIngester) Ingest(_ context.Context, contextID int64, filename string, r io.Reader) (*ingest.Result, error) {
	data, _ := io.ReadAll(r)
	s.body = string(data)
	s.calls = append(s.calls, filename)
	return &ingest.Result{
		Audio:       &store.AudioSample{ID: 1, ContextID: contextID, Name: filename},
		NewSpeakers: []string{},
		Warnings:    []ingest.Warning{},
	}, nil
}

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*apiServer, *store.Store, *config.Config, *stubIngester) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	ing := &stubIngester{}
	srv := newAPIServer(cfg, api.NewContextService(st, ing), nil)
	return srv, st, cfg, ing
}

func serve(srv *apiServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

func TestAPIListContexts(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	testsupport.NewContext(t, st, "Session 1")
	testsupport.NewContext(t, st, "Session 2")

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/?offset=1&limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var items []api.ContextSummary
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Session 2" || items[0].Date == "" {
		t.Fatalf("unexpected items %+v", items)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestAPIListEmptyEncodesArray(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", w.Body.String())
	}
}

func TestAPIListRejectsBadPaging(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	for _, target := range []string{"/?limit=101", "/?limit=0", "/?offset=-1", "/?limit=abc"} {
		w := serve(srv, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestAPICreateAndGetContext(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	body := strings.NewReader(`{"name":"Session 3"}`)
	w := serve(srv, httptest.NewRequest(http.MethodPost, "/create-context", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created api.ContextSummary
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	payload, err := contextview.DecodePayload(w.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if payload.Name != "Session 3" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	for _, key := range []string{"context", "hierarchy", "speakers", "audio_samples"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("expected %q in document %s", key, w.Body.String())
		}
	}
}

func TestAPICreateValidation(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	w := serve(srv, httptest.NewRequest(http.MethodPost, "/create-context", strings.NewReader(`{"name":""}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w = serve(srv, httptest.NewRequest(http.MethodPost, "/create-context", strings.NewReader(`{`)))
	if w.Code != http.StatusBadRequest || decodeError(t, w) != "invalid JSON body" {
		t.Fatalf("expected invalid body error, got %d %s", w.Code, w.Body.String())
	}
}

func TestAPIGetUnknownContext(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/42", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if msg := decodeError(t, w); !strings.Contains(msg, "context 42") {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestAPIViewUsesLanguage(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	item := testsupport.NewContext(t, st, "Session")
	ctx := context.Background()
	if _, err := st.AddSpeaker(ctx, item.ID, "Boss", ""); err != nil {
		t.Fatalf("AddSpeaker: %v", err)
	}
	utterances := []contextview.Utterance{{Speaker: "Boss", StartTime: "0:00", EndTime: "0:01"}}
	utterances[0].Text.EN = "Go"
	utterances[0].Text.RU = "Пошли"
	if _, err := st.AddAudioSample(ctx, item.ID, store.AudioSample{Name: "a.wav"}, utterances); err != nil {
		t.Fatalf("AddAudioSample: %v", err)
	}

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/1/view?lang=russian", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var view api.ContextView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Language != "ru" || view.Transcripts[0].Rows[0].Content != "Пошли" {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(view.Projection.Nodes) != 1 || view.Projection.Nodes[0].Label != "Boss" {
		t.Fatalf("unexpected nodes %+v", view.Projection.Nodes)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/1/view?lang=klingon", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown language, got %d", w.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("audio_sample", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAPIUpload(t *testing.T) {
	srv, st, _, ing := newTestServer(t)
	testsupport.NewContext(t, st, "Session")

	body, contentType := multipartBody(t, map[string]string{"context_id": "1"}, "radio.wav", "RIFF")
	req := httptest.NewRequest(http.MethodPut, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(srv, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(ing.calls) != 1 || ing.calls[0] != "radio.wav" || ing.body != "RIFF" {
		t.Fatalf("unexpected ingest calls %v body %q", ing.calls, ing.body)
	}
	var resp api.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if resp.Audio == nil || resp.Audio.Name != "radio.wav" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAPIUploadValidation(t *testing.T) {
	srv, _, _, ing := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"context_id": "x"}, "a.wav", "a")
	req := httptest.NewRequest(http.MethodPut, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	if w := serve(srv, req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad context id, got %d", w.Code)
	}

	body, contentType = multipartBody(t, map[string]string{"context_id": "1"}, "", "")
	req = httptest.NewRequest(http.MethodPut, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	if w := serve(srv, req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/upload", strings.NewReader("plain"))
	if w := serve(srv, req); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-multipart body, got %d", w.Code)
	}
	if len(ing.calls) != 0 {
		t.Fatalf("ingester must not run on invalid uploads, got %v", ing.calls)
	}
}

func TestAPIUploadTooLarge(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	srv.maxUpload = 512
	testsupport.NewContext(t, st, "Session")

	body, contentType := multipartBody(t, map[string]string{"context_id": "1"}, "a.wav", strings.Repeat("x", 4096))
	req := httptest.NewRequest(http.MethodPut, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	if w := serve(srv, req); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAPIAuthRequired(t *testing.T) {
	srv, _, _, _ := newTestServer(t, testsupport.WithAPIToken("secret"))

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if w := serve(srv, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	if w := serve(srv, req); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}

	if w := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected healthz to skip auth, got %d", w.Code)
	}
}

func TestAPIMethodNotAllowed(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	w := serve(srv, httptest.NewRequest(http.MethodDelete, "/create-context", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if decodeError(t, w) != "method not allowed" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAPIHealth(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	testsupport.NewContext(t, st, "Session")

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var resp api.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "ok" || resp.Stats.Contexts != 1 {
		t.Fatalf("unexpected health %+v", resp)
	}
}

func TestAPICORSPreflight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.API.AllowedOrigins = []string{"http://localhost:4200"}
	st := testsupport.MustOpenStore(t, cfg)
	srv := newAPIServer(cfg, api.NewContextService(st, nil), nil)

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	w := serve(srv, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(srv, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("expected no CORS headers for unknown origin")
	}
}

func TestAPIEditsFeedProjection(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	testsupport.NewContext(t, st, "Session")

	post := func(target, body string) *httptest.ResponseRecorder {
		t.Helper()
		w := serve(srv, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
		if w.Code != http.StatusCreated {
			t.Fatalf("POST %s: expected 201, got %d: %s", target, w.Code, w.Body.String())
		}
		return w
	}

	w := post("/1/speakers", `{"name":"Bear","description":"commander"}`)
	var bear contextview.Speaker
	if err := json.Unmarshal(w.Body.Bytes(), &bear); err != nil {
		t.Fatalf("decode speaker: %v", err)
	}
	if bear.ID == "" || bear.Description != "commander" {
		t.Fatalf("unexpected speaker %+v", bear)
	}
	post("/1/speakers", `{"name":"Wolf"}`)
	post("/1/hierarchy", `{"parent_name":"Bear","child_name":"Wolf"}`)
	post("/1/hierarchy", `{"parent_name":"Bear","child_name":"Ghost"}`)
	post("/1/codewords", `{"word":"Birch","meaning":"rally point"}`)

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/1/view", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var view api.ContextView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Projection.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %+v", view.Projection.Nodes)
	}
	wolf := view.Projection.Nodes[1]
	if len(view.Projection.Edges) != 1 || view.Projection.Edges[0] != (contextview.GraphEdge{Source: bear.ID, Target: wolf.ID}) {
		t.Fatalf("expected one Bear -> Wolf edge, got %+v", view.Projection.Edges)
	}
	if len(view.Projection.CodewordRows) != 1 || view.Projection.CodewordRows[0] != (contextview.CodewordRow{Word: "Birch", Meaning: "rally point"}) {
		t.Fatalf("unexpected codeword rows %+v", view.Projection.CodewordRows)
	}
	if len(view.Warnings) != 1 {
		t.Fatalf("expected the dangling Ghost link to be reported, got %+v", view.Warnings)
	}
}

func TestAPIEditValidation(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	testsupport.NewContext(t, st, "Session")

	cases := []struct {
		target string
		body   string
		status int
	}{
		{"/1/speakers", `{"name":" "}`, http.StatusBadRequest},
		{"/1/speakers", `{`, http.StatusBadRequest},
		{"/1/hierarchy", `{"parent_name":"Bear"}`, http.StatusBadRequest},
		{"/1/codewords", `{"meaning":"x"}`, http.StatusBadRequest},
		{"/9/codewords", `{"word":"Birch"}`, http.StatusNotFound},
		{"/9/speakers", `{"name":"Bear"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		w := serve(srv, httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader(tc.body)))
		if w.Code != tc.status {
			t.Fatalf("POST %s %s: expected %d, got %d: %s", tc.target, tc.body, tc.status, w.Code, w.Body.String())
		}
	}

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/1/speakers", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET on speakers, got %d", w.Code)
	}
}
