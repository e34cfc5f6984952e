// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/backend"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/config"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// isolate points HOME at a temp dir and clears AUTOREPORT_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"AUTOREPORT_BACKEND_URL",
		"AUTOREPORT_SESSION_ID",
		"AUTOREPORT_MODE",
		"AUTOREPORT_LOG_LEVEL",
		"AUTOREPORT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	return home
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// fakeService records requests and answers like the retrieval service.
type fakeService struct {
	mu       sync.Mutex
	asks     []backend.AskRequest
	cleared  []string
	askCode  int
	askBody  string
	rootBody string
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	fs := &fakeService{
		askCode:  http.StatusOK,
		askBody:  `{"content":"Revenue was <strong>10B</strong>","sources":["bmw_2023.pdf"],"session_id":"default"}`,
		rootBody: `{"message":"Welcome to the Consigli Conversational RAG API!"}`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", func(w http.ResponseWriter, r *http.Request) {
		var req backend.AskRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		fs.mu.Lock()
		fs.asks = append(fs.asks, req)
		code, body := fs.askCode, fs.askBody
		fs.mu.Unlock()
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/clear-history", func(w http.ResponseWriter, r *http.Request) {
		var req backend.ClearHistoryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		fs.mu.Lock()
		fs.cleared = append(fs.cleared, req.SessionID)
		fs.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"History cleared for session: ` + req.SessionID + `","session_id":"` + req.SessionID + `"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fs.rootBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeService) lastAsk(t *testing.T) backend.AskRequest {
	t.Helper()
	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.NotEmpty(t, fs.asks)
	return fs.asks[len(fs.asks)-1]
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_Raw(t *testing.T) {
	isolate(t)
	fs, srv := newFakeService(t)

	out, err := runCLI(t, "", "ask", "--raw", "--backend", srv.URL, "--mode", "multi-query", "What was", "the revenue?")
	require.NoError(t, err)

	assert.Equal(t, backend.AskRequest{Question: "What was the revenue?", RetrieverType: "multi_query"}, fs.lastAsk(t))
	assert.Contains(t, out, "Revenue was <strong>10B</strong><br/><br/><Strong>Sources:</Strong><ul><li>bmw_2023.pdf</li></ul>")
}

func TestAsk_PipedOutputIsMarkdown(t *testing.T) {
	isolate(t)
	_, srv := newFakeService(t)

	out, err := runCLI(t, "", "ask", "--backend", srv.URL, "revenue?")
	require.NoError(t, err)
	assert.Contains(t, out, "**10B**")
	assert.Contains(t, out, "bmw_2023.pdf")
	assert.NotContains(t, out, "<li>")
}

func TestAsk_SessionIDFlag(t *testing.T) {
	isolate(t)
	fs, srv := newFakeService(t)

	_, err := runCLI(t, "", "ask", "--raw", "--backend", srv.URL, "--session-id", "analyst-7", "hi")
	require.NoError(t, err)
	assert.Equal(t, "analyst-7", fs.lastAsk(t).SessionID)
}

func TestAsk_QuestionFromStdin(t *testing.T) {
	isolate(t)
	fs, srv := newFakeService(t)

	_, err := runCLI(t, "Who is the CEO?\n", "ask", "--raw", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Who is the CEO?", fs.lastAsk(t).Question)
	assert.Equal(t, "standard", fs.lastAsk(t).RetrieverType)
}

func TestAsk_NoQuestion(t *testing.T) {
	isolate(t)
	_, srv := newFakeService(t)

	_, err := runCLI(t, "   ", "ask", "--backend", srv.URL)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestAsk_InvalidMode(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "ask", "--mode", "hybrid", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidMode)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestAsk_Failures(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		wantCode int
		wantMsg  string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"vector store offline"}`, ExitNetworkError, "vector store offline"},
		{"not json", http.StatusOK, `<html>oops</html>`, ExitResponseError, ""},
		{"no answer field", http.StatusOK, `{"sources":[]}`, ExitResponseError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			fs, srv := newFakeService(t)
			fs.askCode, fs.askBody = tt.code, tt.body

			_, err := runCLI(t, "", "ask", "--backend", srv.URL, "hi")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestAsk_Unreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := runCLI(t, "", "ask", "--backend", url, "hi")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, ExitCode(err))
}

// =============================================================================
// STATUS AND CLEAR-HISTORY
// =============================================================================

func TestStatus(t *testing.T) {
	isolate(t)
	_, srv := newFakeService(t)

	out, err := runCLI(t, "", "status", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL)
	assert.Contains(t, out, "[OK]")
	assert.Contains(t, out, "Welcome to the Consigli Conversational RAG API!")
}

func TestStatus_Unreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out, err := runCLI(t, "", "status", "--backend", url)
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL]")
	assert.Equal(t, ExitNetworkError, ExitCode(err))
}

func TestClearHistory(t *testing.T) {
	isolate(t)
	fs, srv := newFakeService(t)

	out, err := runCLI(t, "", "clear-history", "--backend", srv.URL, "--session-id", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared for session: s1")

	_, err = runCLI(t, "", "clear-history", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "default"}, fs.cleared)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigShow(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[backend]")
	assert.Contains(t, out, `url = "http://127.0.0.1:8000"`)

	out, err = runCLI(t, "", "config", "show", "--format", "json", "--mode", "query_decomposition")
	require.NoError(t, err)
	assert.Contains(t, out, `"default_mode": "query_decomposition"`)

	out, err = runCLI(t, "", "config", "show", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "ask_path: /ask")

	_, err = runCLI(t, "", "config", "show", "-f", "ini")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestConfigInitAndPath(t *testing.T) {
	home := isolate(t)
	want := filepath.Join(home, ".autoreport", "config.toml")

	out, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, want)
	assert.Contains(t, out, "(not created)")

	_, err = runCLI(t, "", "config", "init", "--yes")
	require.NoError(t, err)
	info, err := os.Stat(want)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err = runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.NotContains(t, out, "(not created)")

	_, err = runCLI(t, "", "config", "init", "--yes")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, err = runCLI(t, "", "config", "init", "--yes", "--force")
	assert.NoError(t, err)
}

func TestConfigSetAndGet(t *testing.T) {
	home := isolate(t)

	out, err := runCLI(t, "", "config", "set", "backend.timeout_secs", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "backend.timeout_secs = 30")

	out, err = runCLI(t, "", "config", "get", "backend.timeout_secs")
	require.NoError(t, err)
	assert.Equal(t, "30\n", out)

	out, err = runCLI(t, "", "config", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "backend.answer_fields = content,answer")
	assert.Contains(t, out, "chat.default_mode = standard")

	// Environment overrides apply to get but are not written by set.
	t.Setenv("AUTOREPORT_BACKEND_URL", "https://env.example.com")
	_, err = runCLI(t, "", "config", "set", "ui.theme", "dark")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".autoreport", "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `theme = "dark"`)
	assert.NotContains(t, string(data), "env.example.com")

	out, err = runCLI(t, "", "config", "get", "backend.url")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com\n", out)
}

func TestConfigSet_Invalid(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "config", "set", "ui.theme", "neon")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))

	_, err = runCLI(t, "", "config", "set", "backend.nope", "1")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestInvalidConfigFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".autoreport", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0o600))

	_, err := runCLI(t, "", "status")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))

	// config path still works so the file can be found and fixed.
	out, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, path)
}

// =============================================================================
// VERSION AND EXIT CODES
// =============================================================================

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "autoreport "+Version)
	assert.Contains(t, out, "Platform")
}

func TestUnknownFlag(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "", "status", "--nope")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitUsageError, ExitCode(newUsageError("bad %s", "arg")))
	assert.Equal(t, ExitConfigError, ExitCode(errors.Wrap(config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}, "invalid config")))
	assert.Equal(t, ExitNetworkError, ExitCode(&backend.ClientError{Kind: backend.KindNetwork, Message: "refused"}))
	assert.Equal(t, ExitResponseError, ExitCode(&backend.ClientError{Kind: backend.KindMalformedResponse, Message: "bad json"}))
}

// =============================================================================
// REPL
// =============================================================================

func newTestSession(t *testing.T, url string) (*session, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.URL = url
	sess, err := newSession(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess, cfg
}

func TestREPL_HandleLine(t *testing.T) {
	isolate(t)
	fs, srv := newFakeService(t)
	sess, cfg := newTestSession(t, srv.URL)

	var out bytes.Buffer
	r := newREPL(sess, cfg, &out, true)
	r.exportDir = t.TempDir()
	ctx := context.Background()

	quit, err := r.handleLine(ctx, ":mode query decomposition")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "Query Decomposition")
	assert.Contains(t, r.prompt(), "Query Decomposition")

	quit, err = r.handleLine(ctx, "What was the revenue?")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "query_decomposition", fs.lastAsk(t).RetrieverType)
	assert.Contains(t, out.String(), "searching documents..")
	assert.Contains(t, out.String(), "<li>bmw_2023.pdf</li>")
	assert.Len(t, sess.store.Snapshot().Messages, 3)

	out.Reset()
	_, err = r.handleLine(ctx, ":modes")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "* query_decomposition")

	out.Reset()
	_, err = r.handleLine(ctx, ":export json")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Exported to")
	matches, err := filepath.Glob(filepath.Join(r.exportDir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = r.handleLine(ctx, ":mode hybrid")
	assert.ErrorIs(t, err, model.ErrInvalidMode)

	_, err = r.handleLine(ctx, ":bogus")
	assert.Error(t, err)

	quit, err = r.handleLine(ctx, "   ")
	assert.NoError(t, err)
	assert.False(t, quit)

	quit, err = r.handleLine(ctx, ":quit")
	assert.NoError(t, err)
	assert.True(t, quit)

	quit, _ = r.handleLine(ctx, "exit")
	assert.True(t, quit)
}

func TestREPL_FailureKeepsQuestion(t *testing.T) {
	isolate(t)
	fs, srv := newFakeService(t)
	fs.askCode, fs.askBody = http.StatusInternalServerError, `{"detail":"boom"}`
	sess, cfg := newTestSession(t, srv.URL)

	r := newREPL(sess, cfg, &bytes.Buffer{}, true)
	_, err := r.handleLine(context.Background(), "hello")
	require.Error(t, err)

	snap := sess.store.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.True(t, snap.Messages[1].IsOutgoing())
	assert.False(t, snap.Busy)
}

// =============================================================================
// SESSION WIRING
// =============================================================================

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.URL = "https://rag.example.com"
	cfg.Backend.SessionID = "s9"
	cfg.Backend.TimeoutSecs = 12
	cfg.Backend.MaxRequestsPerMinute = 30

	s := settingsFromConfig(cfg)
	assert.Equal(t, "https://rag.example.com", s.BaseURL)
	assert.Equal(t, "/ask", s.AskPath)
	assert.Equal(t, []string{"content", "answer"}, s.AnswerFields)
	assert.Equal(t, "s9", s.SessionID)
	assert.Equal(t, 12*time.Second, s.Timeout)
	assert.Equal(t, 30, s.MaxRequestsPerMinute)

	s.AnswerFields[0] = "changed"
	assert.Equal(t, "content", cfg.Backend.AnswerFields[0])
}

func TestSession_EventsAreLogged(t *testing.T) {
	isolate(t)
	_, srv := newFakeService(t)

	buf := &syncBuffer{}
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	cfg := config.Default()
	cfg.Backend.URL = srv.URL
	cfg.Log.Events = true
	sess, err := newSession(context.Background(), cfg)
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.ask(context.Background(), "hi")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		s := buf.String()
		return strings.Contains(s, `"type":"message_appended"`) && strings.Contains(s, `"type":"busy_changed"`)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchConfig_ReconfiguresClient(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend]\nurl = \"http://one.example.com\"\n"), 0o600))

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	sess, err := newSession(context.Background(), cfg)
	require.NoError(t, err)
	defer sess.Close()

	a := &app{cfg: cfg, cfgPath: path, flags: rootFlags{sessionID: "from-flag"}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := a.watchConfig(ctx, sess)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("[backend]\nurl = \"http://two.example.com\"\nsession_id = \"from-file\"\n"), 0o600))

	assert.Eventually(t, func() bool {
		s := sess.client.Settings()
		return s.BaseURL == "http://two.example.com" && s.SessionID == "from-flag"
	}, 3*time.Second, 25*time.Millisecond)
}

func TestWatchConfig_NoFile(t *testing.T) {
	a := &app{cfg: config.Default()}
	_, err := a.watchConfig(context.Background(), nil)
	assert.Error(t, err)
}
