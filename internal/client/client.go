package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"earshot/internal/api"
	"earshot/internal/config"
	"earshot/internal/contextview"
	"earshot/internal/language"
	"earshot/internal/services"
)

const defaultTimeout = 30 * time.Second

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the shared error markers so callers can use
// errors.Is(err, services.ErrNotFound).
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return services.ErrNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return services.ErrValidation
	case http.StatusGatewayTimeout:
		return services.ErrTimeout
	case http.StatusBadGateway:
		return services.ErrExternal
	}
	return nil
}

// Client is an HTTP client for one backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// New constructs a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromConfig builds a client from the [client] config section.
func FromConfig(cfg config.Client, opts ...Option) (*Client, error) {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithToken(cfg.Token),
	}
	return New(cfg.ServerURL, append(base, opts...)...)
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListContexts fetches one page of contexts.
func (c *Client) ListContexts(ctx context.Context, offset, limit int) ([]api.ContextSummary, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	var items []api.ContextSummary
	if err := c.doJSON(ctx, http.MethodGet, "/?"+query.Encode(), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []api.ContextSummary{}
	}
	return items, nil
}

// GetContext fetches the raw payload of one context.
func (c *Client) GetContext(ctx context.Context, id int64) (contextview.Payload, error) {
	body, err := c.do(ctx, http.MethodGet, "/"+strconv.FormatInt(id, 10), "", nil)
	if err != nil {
		return contextview.Payload{}, err
	}
	return contextview.DecodePayload(body)
}

// View fetches the server-side projection of one context.
func (c *Client) View(ctx context.Context, id int64, lang language.Code) (api.ContextView, error) {
	path := "/" + strconv.FormatInt(id, 10) + "/view"
	if lang != "" {
		path += "?lang=" + url.QueryEscape(string(lang))
	}
	var view api.ContextView
	err := c.doJSON(ctx, http.MethodGet, path, nil, &view)
	return view, err
}

// CreateContext creates a new, empty context.
func (c *Client) CreateContext(ctx context.Context, name, description string) (api.ContextSummary, error) {
	var created api.ContextSummary
	req := api.CreateContextRequest{Name: name, Description: description}
	err := c.doJSON(ctx, http.MethodPost, "/create-context", req, &created)
	return created, err
}

// AddSpeaker records a speaker in the context.
func (c *Client) AddSpeaker(ctx context.Context, contextID int64, name, description string) (contextview.Speaker, error) {
	var speaker contextview.Speaker
	req := api.AddSpeakerRequest{Name: name, Description: description}
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/%d/speakers", contextID), req, &speaker)
	return speaker, err
}

// AddHierarchy links parent to child by speaker name.
func (c *Client) AddHierarchy(ctx context.Context, contextID int64, parentName, childName string) (contextview.HierarchyEntry, error) {
	var entry contextview.HierarchyEntry
	req := contextview.HierarchyEntry{ParentName: parentName, ChildName: childName}
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/%d/hierarchy", contextID), req, &entry)
	return entry, err
}

// AddCodeword records a codeword and its meaning.
func (c *Client) AddCodeword(ctx context.Context, contextID int64, word, meaning string) (contextview.Codeword, error) {
	var created contextview.Codeword
	req := contextview.Codeword{Word: word, Meaning: meaning}
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/%d/codewords", contextID), req, &created)
	return created, err
}

// UploadAudio sends an audio file to a context. The call returns once the
// backend has finished ingesting it.
func (c *Client) UploadAudio(ctx context.Context, contextID int64, filename string, r io.Reader) (api.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("context_id", strconv.FormatInt(contextID, 10)); err != nil {
		return api.UploadResponse{}, err
	}
	part, err := mw.CreateFormFile("audio_sample", filepath.Base(filename))
	if err != nil {
		return api.UploadResponse{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return api.UploadResponse{}, fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return api.UploadResponse{}, err
	}

	body, err := c.do(ctx, http.MethodPut, "/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		return api.UploadResponse{}, err
	}
	var resp api.UploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return api.UploadResponse{}, fmt.Errorf("decode upload response: %w", err)
	}
	return resp, nil
}

// UploadFile opens path and uploads it.
func (c *Client) UploadFile(ctx context.Context, contextID int64, path string) (api.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return api.UploadResponse{}, err
	}
	defer f.Close()
	return c.UploadAudio(ctx, contextID, path, f)
}

// Health fetches backend health.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var resp api.HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, &resp)
	return resp, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	data, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

func statusError(status int, body []byte) error {
	var payload api.ErrorResponse
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = strings.TrimSpace(payload.Error)
	} else {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
	}
	return &StatusError{StatusCode: status, Message: msg}
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
