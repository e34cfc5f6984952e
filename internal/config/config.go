// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	clone "github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend" yaml:"backend"`
	Chat    ChatConfig    `toml:"chat" json:"chat" yaml:"chat"`
	UI      UIConfig      `toml:"ui" json:"ui" yaml:"ui"`
	Log     LogConfig     `toml:"log" json:"log" yaml:"log"`
}

// BackendConfig describes how to reach the RAG service.
type BackendConfig struct {
	// URL is the service base URL
	URL string `toml:"url" json:"url" yaml:"url"`
	// AskPath is the question endpoint path
	AskPath string `toml:"ask_path" json:"ask_path" yaml:"ask_path"`
	// AnswerFields are tried in order for the answer text
	AnswerFields []string `toml:"answer_fields" json:"answer_fields" yaml:"answer_fields"`
	// ResponseSchema is an optional JSON schema file for /ask responses
	ResponseSchema string `toml:"response_schema" json:"response_schema" yaml:"response_schema"`
	// SessionID is sent with every question when set
	SessionID string `toml:"session_id" json:"session_id" yaml:"session_id"`
	// TimeoutSecs bounds each request; 0 disables the timeout
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
	// MaxRequestsPerMinute throttles questions; 0 disables throttling
	MaxRequestsPerMinute int `toml:"max_requests_per_minute" json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// ChatConfig contains the conversation presentation settings.
type ChatConfig struct {
	DefaultMode   string `toml:"default_mode" json:"default_mode" yaml:"default_mode"`
	AssistantName string `toml:"assistant_name" json:"assistant_name" yaml:"assistant_name"`
	Greeting      string `toml:"greeting" json:"greeting" yaml:"greeting"`
	TypingText    string `toml:"typing_text" json:"typing_text" yaml:"typing_text"`
	Placeholder   string `toml:"placeholder" json:"placeholder" yaml:"placeholder"`
}

// Mode returns the configured default retrieval mode, or model.DefaultMode
// when the value is not a known mode.
func (c ChatConfig) Mode() model.RetrievalMode {
	mode, err := model.ParseRetrievalMode(c.DefaultMode)
	if err != nil {
		return model.DefaultMode
	}
	return mode
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme" yaml:"theme"`
	// WordWrap is the maximum message width; 0 uses the terminal width
	WordWrap int `toml:"word_wrap" json:"word_wrap" yaml:"word_wrap"`
	// DateSeparator shows today's date above the transcript
	DateSeparator bool `toml:"date_separator" json:"date_separator" yaml:"date_separator"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error
	Level string `toml:"level" json:"level" yaml:"level"`
	// Format is "console" or "json"
	Format string `toml:"format" json:"format" yaml:"format"`
	// File receives log output; empty means the command's default
	File string `toml:"file" json:"file" yaml:"file"`
	// Events mirrors store events to the log through the event bus
	Events bool `toml:"events" json:"events" yaml:"events"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultGreeting is the first message of every session.
const DefaultGreeting = "Hello, I’m your <Strong>Automotive Annual Report</Strong> Analyst Assistant. How can I help you?"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:          "http://127.0.0.1:8000",
			AskPath:      "/ask",
			AnswerFields: []string{"content", "answer"},
		},
		Chat: ChatConfig{
			DefaultMode:   string(model.DefaultMode),
			AssistantName: "AutoReport Assistant",
			Greeting:      DefaultGreeting,
			TypingText:    "searching documents..",
			Placeholder:   "ask your question here...",
		},
		UI: UIConfig{
			Theme:         "auto",
			WordWrap:      100,
			DateSeparator: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// fillDefaults fills in values a config file set to empty.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.AskPath == "" {
		cfg.Backend.AskPath = defaults.Backend.AskPath
	}
	if len(cfg.Backend.AnswerFields) == 0 {
		cfg.Backend.AnswerFields = defaults.Backend.AnswerFields
	}

	if cfg.Chat.DefaultMode == "" {
		cfg.Chat.DefaultMode = defaults.Chat.DefaultMode
	}
	if cfg.Chat.AssistantName == "" {
		cfg.Chat.AssistantName = defaults.Chat.AssistantName
	}
	if cfg.Chat.Greeting == "" {
		cfg.Chat.Greeting = defaults.Chat.Greeting
	}
	if cfg.Chat.TypingText == "" {
		cfg.Chat.TypingText = defaults.Chat.TypingText
	}
	if cfg.Chat.Placeholder == "" {
		cfg.Chat.Placeholder = defaults.Chat.Placeholder
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".autoreport"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return configPath("config.toml")
}

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) {
	return configPath("config.yaml")
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	return configPath("config.json")
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DefaultLogFile returns the log file used when the terminal owns stdout.
func DefaultLogFile() (string, error) {
	return configPath("autoreport.log")
}

// FindConfigFile returns the first existing config file in the config
// directory, or "" when there is none.
func FindConfigFile() (string, error) {
	for _, fn := range []func() (string, error){ConfigPathTOML, ConfigPathYAML, ConfigPathJSON} {
		path, err := fn()
		if err != nil {
			return "", err
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return path, nil
		}
	}
	return "", nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the first config file found in the config
// directory and falls back to defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	if path == "" {
		cfg := Default()
		return finish(cfg)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file with full validation.
// The format follows the file extension; unknown extensions are read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "failed to load config from %s", path)
	}
	return finish(cfg)
}

// ReadFile decodes path over the defaults without environment overrides or
// validation. Use it to edit a file without persisting AUTOREPORT_* values.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "failed to read config from %s", path)
	}
	fillDefaults(cfg)
	return cfg, nil
}

func finish(cfg *Config) (*Config, error) {
	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// decodeFile decodes path over cfg, keeping values the file does not set.
func decodeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	switch formatOf(path) {
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(err, "failed to decode JSON")
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(err, "failed to decode YAML")
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return errors.Wrap(err, "failed to decode TOML")
		}
		for _, key := range md.Undecoded() {
			log.Warn().Str("key", key.String()).Str("file", path).Msg("unknown config key")
		}
	}
	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTo writes cfg to path in the format matching its extension.
func SaveTo(cfg *Config, path string) error {
	switch formatOf(path) {
	case "json":
		return SaveJSON(cfg, path)
	case "yaml":
		return SaveYAML(cfg, path)
	default:
		return SaveTOML(cfg, path)
	}
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# AutoReport Assistant configuration\n")
	buf.WriteString("# Environment variables AUTOREPORT_* override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return writeConfig(path, buf.Bytes())
}

// SaveYAML saves the configuration to a YAML file with 0600 permissions.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return writeConfig(path, data)
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return writeConfig(path, append(data, '\n'))
}

func writeConfig(path string, data []byte) error {
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors when
// anything is wrong.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Backend
	if u, err := url.Parse(c.Backend.URL); err != nil {
		add("backend.url", "invalid URL: %v", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("backend.url", "scheme must be http or https, got '%s'", u.Scheme)
	} else if u.Host == "" {
		add("backend.url", "missing host")
	}
	if strings.TrimSpace(c.Backend.AskPath) == "" {
		add("backend.ask_path", "must not be empty")
	}
	for i, field := range c.Backend.AnswerFields {
		if strings.TrimSpace(field) == "" {
			add("backend.answer_fields", "entry %d is empty", i)
		}
	}
	if c.Backend.ResponseSchema != "" {
		if _, err := os.Stat(c.Backend.ResponseSchema); err != nil {
			add("backend.response_schema", "cannot read schema file: %v", err)
		}
	}
	if c.Backend.TimeoutSecs < 0 {
		add("backend.timeout_secs", "must be >= 0, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.MaxRequestsPerMinute < 0 {
		add("backend.max_requests_per_minute", "must be >= 0, got %d", c.Backend.MaxRequestsPerMinute)
	}

	// Chat
	if _, err := model.ParseRetrievalMode(c.Chat.DefaultMode); err != nil {
		add("chat.default_mode", "invalid mode '%s', must be one of: standard, multi_query, query_decomposition", c.Chat.DefaultMode)
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}
	if c.UI.WordWrap != 0 && (c.UI.WordWrap < 20 || c.UI.WordWrap > 400) {
		add("ui.word_wrap", "must be 0 or between 20 and 400, got %d", c.UI.WordWrap)
	}

	// Log
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil || c.Log.Level == "" {
		add("log.level", "invalid level '%s', must be one of: trace, debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		add("log.format", "invalid format '%s', must be one of: console, json", c.Log.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - AUTOREPORT_BACKEND_URL: overrides backend.url
//   - AUTOREPORT_SESSION_ID: overrides backend.session_id
//   - AUTOREPORT_MODE: overrides chat.default_mode
//   - AUTOREPORT_LOG_LEVEL: overrides log.level
//   - AUTOREPORT_TIMEOUT: overrides backend.timeout_secs
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AUTOREPORT_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("AUTOREPORT_SESSION_ID"); v != "" {
		c.Backend.SessionID = v
	}
	if v := os.Getenv("AUTOREPORT_MODE"); v != "" {
		c.Chat.DefaultMode = v
	}
	if v := os.Getenv("AUTOREPORT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AUTOREPORT_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			log.Warn().Str("value", v).Msg("ignoring invalid AUTOREPORT_TIMEOUT")
		} else {
			c.Backend.TimeoutSecs = secs
		}
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	return clone.Clone(c).(*Config)
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
