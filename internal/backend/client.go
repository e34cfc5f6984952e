// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// =============================================================================
// CLIENT SETTINGS
// =============================================================================

// Settings holds configuration options for the backend client.
type Settings struct {
	// BaseURL is the service base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// AskPath is the question endpoint (default: /ask)
	AskPath string

	// AnswerFields are the response fields tried in order for the answer text.
	AnswerFields []string

	// ResponseSchema is an optional JSON schema file the /ask body must satisfy.
	ResponseSchema string

	// SessionID is sent as session_id when set.
	SessionID string

	// Timeout for a single request. Zero means no timeout.
	Timeout time.Duration

	// MaxRequestsPerMinute throttles questions client-side. Zero disables it.
	MaxRequestsPerMinute int
}

// DefaultSettings returns the default client settings.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:      "http://127.0.0.1:8000",
		AskPath:      "/ask",
		AnswerFields: []string{"content", "answer"},
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.BaseURL == "" {
		s.BaseURL = def.BaseURL
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if s.AskPath == "" {
		s.AskPath = def.AskPath
	}
	if !strings.HasPrefix(s.AskPath, "/") {
		s.AskPath = "/" + s.AskPath
	}
	if len(s.AnswerFields) == 0 {
		s.AnswerFields = def.AnswerFields
	}
	if s.MaxRequestsPerMinute < 0 {
		s.MaxRequestsPerMinute = 0
	}
	return s
}

// newLimiter returns a limiter allowing perMinute questions per minute with
// bursts of the same size, or nil when throttling is disabled.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the RAG service.
//
// The Client is safe for concurrent use. Reconfigure swaps settings for
// subsequent requests without affecting requests already in flight.
//
// Example:
//
//	client, err := backend.New(backend.DefaultSettings())
//	if err != nil {
//	    return err
//	}
//	answer, err := client.Ask(ctx, "What was Tesla's revenue?", model.ModeStandard)
type Client struct {
	mu         sync.RWMutex
	settings   Settings
	schema     *gojsonschema.Schema
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the request logger. Defaults to the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = &logger
	}
}

// New creates a client. It fails only when the response schema cannot be loaded.
func New(settings Settings, opts ...Option) (*Client, error) {
	c := &Client{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Reconfigure(settings); err != nil {
		return nil, err
	}
	return c, nil
}

// Reconfigure replaces the client settings. On error the previous settings
// stay in effect.
func (c *Client) Reconfigure(settings Settings) error {
	settings = settings.withDefaults()

	var schema *gojsonschema.Schema
	if settings.ResponseSchema != "" {
		var err error
		schema, err = loadSchema(settings.ResponseSchema)
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	if c.limiter == nil || c.settings.MaxRequestsPerMinute != settings.MaxRequestsPerMinute {
		c.limiter = newLimiter(settings.MaxRequestsPerMinute)
	}
	c.settings = settings
	c.schema = schema
	c.mu.Unlock()
	return nil
}

// Settings returns a copy of the current settings.
func (c *Client) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.settings
	s.AnswerFields = append([]string(nil), s.AnswerFields...)
	return s
}

func (c *Client) current() (Settings, *gojsonschema.Schema) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings, c.schema
}

func (c *Client) currentLimiter() *rate.Limiter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limiter
}

func (c *Client) log() *zerolog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return &log.Logger
}

func loadSchema(path string) (*gojsonschema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read response schema %s", path)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "compile response schema %s", path)
	}
	return schema, nil
}

// =============================================================================
// ASK
// =============================================================================

// Ask sends question with the given retrieval mode and returns the answer.
func (c *Client) Ask(ctx context.Context, question string, mode model.RetrievalMode) (*model.Answer, error) {
	settings, schema := c.current()

	if limiter := c.currentLimiter(); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, networkError("request throttled", err)
		}
	}

	reqBody := AskRequest{
		Question:      question,
		RetrieverType: mode.String(),
		SessionID:     settings.SessionID,
	}

	body, status, err := c.do(ctx, settings, http.MethodPost, settings.AskPath, reqBody)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}

	if schema != nil {
		if err := validate(schema, body); err != nil {
			return nil, err
		}
	}

	return parseAnswer(body, settings.AnswerFields)
}

// parseAnswer extracts the answer text and sources from an /ask body.
func parseAnswer(body []byte, answerFields []string) (*model.Answer, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, malformedError("response is not a JSON object", err)
	}

	answer := &model.Answer{}
	found := false
	for _, name := range answerFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			continue
		}
		answer.Text = text
		found = true
		break
	}
	if !found {
		return nil, malformedError("response has no answer text in fields "+strings.Join(answerFields, ", "), nil)
	}

	answer.Sources, answer.SourcesField = parseSources(fields["sources"])
	return answer, nil
}

// parseSources decodes the optional sources field. Non-string items are kept
// as their compact JSON text.
func parseSources(raw json.RawMessage) ([]string, model.SourcesField) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, model.SourcesAbsent
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, model.SourcesInvalid
	}

	sources := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			sources = append(sources, s)
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, item); err != nil {
			sources = append(sources, string(item))
			continue
		}
		sources = append(sources, compact.String())
	}
	return sources, model.SourcesList
}

func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return malformedError("response is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return malformedError("response does not match schema: "+strings.Join(problems, "; "), nil)
}

// =============================================================================
// SERVICE OPERATIONS
// =============================================================================

// Health calls GET / and returns the service welcome message.
func (c *Client) Health(ctx context.Context) (string, error) {
	settings, _ := c.current()

	body, status, err := c.do(ctx, settings, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	if err := checkStatus(status, body); err != nil {
		return "", err
	}
	return messageText(body), nil
}

// ClearHistory asks the service to forget the conversation of sessionID.
// An empty sessionID falls back to the configured one, then to "default".
func (c *Client) ClearHistory(ctx context.Context, sessionID string) (string, error) {
	settings, _ := c.current()
	if sessionID == "" {
		sessionID = settings.SessionID
	}
	if sessionID == "" {
		sessionID = "default"
	}

	body, status, err := c.do(ctx, settings, http.MethodPost, "/clear-history", ClearHistoryRequest{SessionID: sessionID})
	if err != nil {
		return "", err
	}
	if err := checkStatus(status, body); err != nil {
		return "", err
	}
	return messageText(body), nil
}

func messageText(body []byte) string {
	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		return resp.Message
	}
	return strings.TrimSpace(string(body))
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one request and returns the body and status code.
func (c *Client) do(ctx context.Context, settings Settings, method, path string, payload interface{}) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, &ClientError{Kind: KindUnknown, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, settings.BaseURL+path, reader)
	if err != nil {
		return nil, 0, networkError("failed to create request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log().Debug().
			Str("method", method).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("backend request failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, networkError("request timed out", err)
		}
		return nil, 0, networkError("backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, networkError("failed to read response", err)
	}

	c.log().Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	return body, resp.StatusCode, nil
}

func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := http.StatusText(status)
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		msg = er.Detail
	}
	if msg == "" {
		msg = "unexpected status"
	}
	return &ClientError{Kind: KindHTTPStatus, Message: msg, Status: status}
}
