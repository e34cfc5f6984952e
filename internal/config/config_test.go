// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// clearEnv unsets every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUTOREPORT_BACKEND_URL",
		"AUTOREPORT_SESSION_ID",
		"AUTOREPORT_MODE",
		"AUTOREPORT_LOG_LEVEL",
		"AUTOREPORT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.URL)
	assert.Equal(t, "/ask", cfg.Backend.AskPath)
	assert.Equal(t, []string{"content", "answer"}, cfg.Backend.AnswerFields)
	assert.Equal(t, 0, cfg.Backend.TimeoutSecs)
	assert.Equal(t, model.ModeStandard, cfg.Chat.Mode())
	assert.Equal(t, DefaultGreeting, cfg.Chat.Greeting)
	assert.Equal(t, "searching documents..", cfg.Chat.TypingText)
	assert.True(t, cfg.UI.DateSeparator)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Backend, cfg.Backend)
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoadFromPath_Formats(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `
[backend]
url = "http://rag.internal:9000"
timeout_secs = 30

[chat]
default_mode = "multi_query"

[ui]
date_separator = false
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
backend:
  url: http://rag.internal:9000
  timeout_secs: 30
chat:
  default_mode: multi_query
ui:
  date_separator: false
`,
		},
		{
			name:    "json",
			file:    "config.json",
			content: `{"backend": {"url": "http://rag.internal:9000", "timeout_secs": 30}, "chat": {"default_mode": "multi_query"}, "ui": {"date_separator": false}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadFromPath(writeFile(t, tc.file, tc.content))
			require.NoError(t, err)

			assert.Equal(t, "http://rag.internal:9000", cfg.Backend.URL)
			assert.Equal(t, 30*time.Second, cfg.Backend.Timeout())
			assert.Equal(t, model.ModeMultiQuery, cfg.Chat.Mode())
			assert.False(t, cfg.UI.DateSeparator)

			// Unset values keep their defaults.
			assert.Equal(t, "/ask", cfg.Backend.AskPath)
			assert.Equal(t, "AutoReport Assistant", cfg.Chat.AssistantName)
			assert.Equal(t, 100, cfg.UI.WordWrap)
		})
	}
}

func TestLoadFromPath_EmptyValuesFallBack(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", "[chat]\ngreeting = \"\"\n[backend]\nanswer_fields = []\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultGreeting, cfg.Chat.Greeting)
	assert.Equal(t, []string{"content", "answer"}, cfg.Backend.AnswerFields)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromPath(writeFile(t, "config.toml", "[chat]\ndefault_mode = \"hybrid\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat.default_mode")

	_, err = LoadFromPath(writeFile(t, "config.toml", "not = [valid"))
	assert.Error(t, err)

	_, err = LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestReadFile_SkipsEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOREPORT_BACKEND_URL", "https://env.example.com")
	path := writeFile(t, "config.toml", "[backend]\nurl = \"http://file.example.com:8000\"\n")

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example.com:8000", cfg.Backend.URL)
	assert.Equal(t, "/ask", cfg.Backend.AskPath)

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", loaded.Backend.URL)
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOREPORT_BACKEND_URL", "https://rag.example.com")
	t.Setenv("AUTOREPORT_SESSION_ID", "analyst-7")
	t.Setenv("AUTOREPORT_MODE", "query_decomposition")
	t.Setenv("AUTOREPORT_LOG_LEVEL", "debug")
	t.Setenv("AUTOREPORT_TIMEOUT", "45")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://rag.example.com", cfg.Backend.URL)
	assert.Equal(t, "analyst-7", cfg.Backend.SessionID)
	assert.Equal(t, model.ModeQueryDecomposition, cfg.Chat.Mode())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 45, cfg.Backend.TimeoutSecs)
}

func TestApplyEnvOverrides_InvalidTimeoutIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTOREPORT_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 0, cfg.Backend.TimeoutSecs)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.Backend.URL = "ftp://host" }, "backend.url"},
		{"no host", func(c *Config) { c.Backend.URL = "http://" }, "backend.url"},
		{"empty ask path", func(c *Config) { c.Backend.AskPath = " " }, "backend.ask_path"},
		{"empty answer field", func(c *Config) { c.Backend.AnswerFields = []string{"content", ""} }, "backend.answer_fields"},
		{"missing schema", func(c *Config) { c.Backend.ResponseSchema = "/no/such/schema.json" }, "backend.response_schema"},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSecs = -1 }, "backend.timeout_secs"},
		{"negative rate limit", func(c *Config) { c.Backend.MaxRequestsPerMinute = -5 }, "backend.max_requests_per_minute"},
		{"bad mode", func(c *Config) { c.Chat.DefaultMode = "hybrid" }, "chat.default_mode"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"narrow wrap", func(c *Config) { c.UI.WordWrap = 5 }, "ui.word_wrap"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Chat.DefaultMode = "x"
	cfg.UI.Theme = "y"

	var verrs ValidateErrors
	require.ErrorAs(t, cfg.Validate(), &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, verrs.Error(), "; ")
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveTo_RoundTrip(t *testing.T) {
	clearEnv(t)

	for _, name := range []string{"config.toml", "config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Backend.SessionID = "s-1"
			cfg.Chat.DefaultMode = string(model.ModeQueryDecomposition)
			cfg.UI.DateSeparator = false

			require.NoError(t, SaveTo(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			loaded, err := LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

// =============================================================================
// DOT NOTATION
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("backend.url", "http://10.0.0.5:8000"))
	require.NoError(t, cfg.Set("backend.timeout-secs", "12"))
	require.NoError(t, cfg.Set("backend.answer_fields", "answer, content"))
	require.NoError(t, cfg.Set("ui.date_separator", "off"))

	v, err := cfg.Get("backend.url")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", v)
	assert.Equal(t, 12, cfg.Backend.TimeoutSecs)
	assert.Equal(t, []string{"answer", "content"}, cfg.Backend.AnswerFields)
	assert.False(t, cfg.UI.DateSeparator)
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()

	_, err := cfg.Get("")
	assert.Error(t, err)
	_, err = cfg.Get("backend.nope")
	assert.Error(t, err)
	_, err = cfg.Get("backend.url.deeper")
	assert.Error(t, err)

	assert.Error(t, cfg.Set("backend", "x"))
	assert.Error(t, cfg.Set("backend.timeout_secs", "abc"))
	assert.Error(t, cfg.Set("ui.date_separator", "maybe"))
}

func TestAllKeys(t *testing.T) {
	keys := AllKeys()
	assert.Contains(t, keys, "backend.url")
	assert.Contains(t, keys, "chat.default_mode")
	assert.Contains(t, keys, "log.events")
	assert.Equal(t, "backend.url", keys[0])

	cfg := Default()
	for _, key := range keys {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.Backend.AnswerFields[0] = "changed"

	assert.Equal(t, "content", cfg.Backend.AnswerFields[0])
}

// =============================================================================
// HOT RELOAD
// =============================================================================

func TestWatch_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", "[chat]\ndefault_mode = \"standard\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	w, err := Watch(ctx, path, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[chat]\ndefault_mode = \"multi_query\"\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, model.ModeMultiQuery, cfg.Chat.Mode())
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	path := writeFile(t, "config.toml", "")
	ctx, cancel := context.WithCancel(context.Background())

	w, err := Watch(ctx, path, func(*Config, error) {})
	require.NoError(t, err)

	cancel()
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.NoError(t, w.Close())
}
