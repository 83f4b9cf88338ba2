package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"earshot/internal/client"
	"earshot/internal/config"
	"earshot/internal/contextview"
	"earshot/internal/daemon"
	"earshot/internal/ingest"
	"earshot/internal/language"
	"earshot/internal/services"
	"earshot/internal/store"
	"earshot/internal/testsupport"
)

func newBackend(t *testing.T, opts ...testsupport.ConfigOption) (*client.Client, *store.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	d, err := daemon.New(cfg, st, ingest.New(st, cfg.Paths.StagingDir), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, client.WithToken(cfg.Client.Token))
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return c, st, cfg
}

func TestCreateListAndGet(t *testing.T) {
	c, st, _ := newBackend(t)
	ctx := context.Background()

	created, err := c.CreateContext(ctx, "Session 1", "night shift")
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	if created.ID == 0 || created.Desc != "night shift" {
		t.Fatalf("unexpected created context %+v", created)
	}
	if _, err := st.AddSpeaker(ctx, created.ID, "Boss", ""); err != nil {
		t.Fatalf("AddSpeaker: %v", err)
	}
	if err := st.AddCodeword(ctx, created.ID, "sparrow", "courier"); err != nil {
		t.Fatalf("AddCodeword: %v", err)
	}

	items, err := c.ListContexts(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListContexts: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Session 1" {
		t.Fatalf("unexpected list %+v", items)
	}

	payload, err := c.GetContext(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	projection := contextview.Project(payload)
	want := []contextview.CodewordRow{{Word: "sparrow", Meaning: "courier"}}
	if diff := cmp.Diff(want, projection.CodewordRows); diff != "" {
		t.Fatalf("codeword rows mismatch (-want +got):\n%s", diff)
	}
	if len(projection.Nodes) != 1 || projection.Nodes[0].Label != "Boss" {
		t.Fatalf("unexpected nodes %+v", projection.Nodes)
	}

	view, err := c.View(ctx, created.ID, language.Russian)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Language != "ru" || view.Name != "Session 1" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestGetContextNotFound(t *testing.T) {
	c, _, _ := newBackend(t)
	_, err := c.GetContext(context.Background(), 99)
	if !client.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", err)
	}
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) || !strings.Contains(statusErr.Message, "context 99") {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestCreateContextValidation(t *testing.T) {
	c, _, _ := newBackend(t)
	_, err := c.CreateContext(context.Background(), " ", "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadFileWithoutTranscription(t *testing.T) {
	c, st, cfg := newBackend(t)
	ctx := context.Background()
	item := testsupport.NewContext(t, st, "Session")

	path := filepath.Join(testsupport.BaseDir(cfg), "radio.wav")
	testsupport.WriteAudioFile(t, path, 2048)

	resp, err := c.UploadFile(ctx, item.ID, path)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if resp.Audio == nil || resp.Audio.Name != "radio.wav" || resp.Audio.Transcribed {
		t.Fatalf("unexpected upload response %+v", resp)
	}

	payload, err := c.GetContext(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if len(payload.AudioSamples) != 1 || payload.AudioSamples[0].Utterances != nil {
		t.Fatalf("expected one untranscribed audio, got %+v", payload.AudioSamples)
	}
}

func TestBearerToken(t *testing.T) {
	c, _, _ := newBackend(t, testsupport.WithAPIToken("secret"))
	if _, err := c.ListContexts(context.Background(), 0, 10); err != nil {
		t.Fatalf("expected token to authorize, got %v", err)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("secret"))
	st := testsupport.MustOpenStore(t, cfg)
	d, err := daemon.New(cfg, st, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	srv := httptest.NewServer(d.Handler())
	defer srv.Close()

	anon, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	_, err = anon.ListContexts(context.Background(), 0, 10)
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestStatusErrorWithPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL + "/")
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	_, err = c.Health(context.Background())
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("expected body text in error, got %v", err)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := client.New("localhost:8000"); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	c, err := client.FromConfig(cfg.Client)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if c.BaseURL() != "http://localhost:8000" {
		t.Fatalf("unexpected base url %q", c.BaseURL())
	}
}

func TestEditsAppearInView(t *testing.T) {
	c, _, _ := newBackend(t)
	ctx := context.Background()

	created, err := c.CreateContext(ctx, "Session 2", "")
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	bear, err := c.AddSpeaker(ctx, created.ID, "Bear", "commander")
	if err != nil {
		t.Fatalf("AddSpeaker Bear: %v", err)
	}
	wolf, err := c.AddSpeaker(ctx, created.ID, "Wolf", "")
	if err != nil {
		t.Fatalf("AddSpeaker Wolf: %v", err)
	}
	entry, err := c.AddHierarchy(ctx, created.ID, "Bear", "Wolf")
	if err != nil {
		t.Fatalf("AddHierarchy: %v", err)
	}
	if entry != (contextview.HierarchyEntry{ParentName: "Bear", ChildName: "Wolf"}) {
		t.Fatalf("unexpected hierarchy entry %+v", entry)
	}
	if _, err := c.AddCodeword(ctx, created.ID, "Birch", "rally point"); err != nil {
		t.Fatalf("AddCodeword: %v", err)
	}

	view, err := c.View(ctx, created.ID, language.English)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	wantEdges := []contextview.GraphEdge{{Source: bear.ID, Target: wolf.ID}}
	if diff := cmp.Diff(wantEdges, view.Projection.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	wantRows := []contextview.CodewordRow{{Word: "Birch", Meaning: "rally point"}}
	if diff := cmp.Diff(wantRows, view.Projection.CodewordRows); diff != "" {
		t.Fatalf("codeword rows mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.AddHierarchy(ctx, created.ID, "", "Wolf"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := c.AddSpeaker(ctx, 999, "Fox", ""); !client.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
