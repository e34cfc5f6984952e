// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

func sampleTranscript() *Transcript {
	t := NewTranscript([]model.Message{
		model.Greeting("Hello, I’m your <Strong>Automotive Annual Report</Strong> Analyst Assistant."),
		model.NewOutgoing("Compare <BMW> & Tesla"),
		model.NewIncoming("The answer is 42.<br/><br/><Strong>Sources:</Strong><ul><li>doc1.pdf</li></ul><script>x()</script>"),
	}, "AutoReport Assistant", model.ModeMultiQuery)
	t.ExportedAt = time.Date(2024, 11, 5, 14, 30, 0, 0, time.UTC)
	return t
}

func TestNewExporter(t *testing.T) {
	for format, ext := range map[string]string{"md": ".md", "markdown": ".md", "json": ".json", "HTML": ".html", "htm": ".html"} {
		e, err := NewExporter(format, nil)
		require.NoError(t, err, format)
		assert.Equal(t, ext, e.FileExtension())
	}

	_, err := NewExporter("pdf", nil)
	assert.Error(t, err)
}

func TestMarkdownExporter(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "---\ntitle: AutoReport Assistant\nmode: multi_query\n"))
	assert.Contains(t, out, "# AutoReport Assistant")
	assert.Contains(t, out, "### Assistant")
	assert.Contains(t, out, "### You")
	assert.Contains(t, out, "**Automotive Annual Report**")
	assert.Contains(t, out, "Compare <BMW> & Tesla")
	assert.Contains(t, out, "The answer is 42.\n\n**Sources:**\n- doc1.pdf")
	assert.NotContains(t, out, "x()")

	// Messages keep transcript order.
	assert.Less(t, strings.Index(out, "Automotive"), strings.Index(out, "Compare"))
	assert.Less(t, strings.Index(out, "Compare"), strings.Index(out, "The answer is 42."))
}

func TestHTMLExporter(t *testing.T) {
	data, err := NewHTMLExporter(&Options{Theme: "dark"}).Export(sampleTranscript())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `<body class="dark-theme">`)
	assert.Contains(t, out, "Multi-query")
	assert.Contains(t, out, "Compare &lt;BMW&gt; &amp; Tesla")
	assert.Contains(t, out, "<strong>Sources:</strong><ul><li>doc1.pdf</li></ul>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "class=\"timestamp\"")
}

func TestJSONExporter(t *testing.T) {
	src := sampleTranscript()
	data, err := NewJSONExporter().Export(src)
	require.NoError(t, err)

	var decoded Transcript
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Messages, 3)
	assert.Equal(t, "multi_query", decoded.Mode)
	assert.Equal(t, src.Messages[2].Content, decoded.Messages[2].Content)
	assert.Equal(t, model.Outgoing, decoded.Messages[1].Direction)
}

func TestExport_EmptyTranscript(t *testing.T) {
	empty := NewTranscript(nil, "x", model.ModeStandard)
	for _, format := range Formats() {
		e, err := NewExporter(format, nil)
		require.NoError(t, err)
		_, err = e.Export(empty)
		assert.Error(t, err, format)
	}

	_, err := NewJSONExporter().Export(nil)
	assert.Error(t, err)
}

func TestExportFormat_WritesFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportFormat(sampleTranscript(), "md", &Options{OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "AutoReport_Assistant_20241105_143000.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "doc1.pdf")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c_d", sanitizeFilename("a/b:c d"))
	assert.Equal(t, "conversation", sanitizeFilename("  "))
	assert.Equal(t, "Citro\u00ebn", sanitizeFilename("Citroe\u0308n"))
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: b"`, escapeYAML("a: b"))
	assert.Equal(t, `"say \"hi\""`, escapeYAML(`say "hi"`))
}
