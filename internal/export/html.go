// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/markup"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page. Reply markup
// is kept after sanitizing; user text is escaped.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a transcript to HTML.
func (e *HTMLExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(t.Title)))
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(t.Title)))
	sb.WriteString(fmt.Sprintf("            <div class=\"metadata\">%s &middot; %s</div>\n",
		html.EscapeString(model.RetrievalMode(t.Mode).Label()),
		formatTimestamp(t.ExportedAt)))
	sb.WriteString("        </header>\n")

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range t.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) renderMessage(msg model.Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("            <div class=\"message %s\">\n", msg.Direction))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"sender\">%s</span>\n", msg.Direction.DisplayName()))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.CreatedAt)))
	}
	sb.WriteString("                </div>\n")

	var body string
	if msg.IsOutgoing() {
		body = strings.ReplaceAll(html.EscapeString(msg.Content), "\n", "<br/>")
	} else {
		body = markup.Sanitize(msg.Content)
	}
	sb.WriteString(fmt.Sprintf("                <div class=\"message-content\">%s</div>\n", body))
	sb.WriteString("            </div>\n")
	return sb.String()
}

const css = `    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; }
        .light-theme { background: #f5f6f8; color: #1f2328; }
        .dark-theme { background: #16181d; color: #e6e6e6; }
        .container { max-width: 860px; margin: 0 auto; padding: 24px; }
        .header h1 { margin: 0 0 4px; font-size: 1.4em; }
        .metadata { opacity: 0.7; font-size: 0.9em; margin-bottom: 24px; }
        .message { border-radius: 12px; padding: 12px 16px; margin: 12px 0; max-width: 80%; }
        .incoming { background: #c6e3fa; color: #1f2328; }
        .outgoing { background: #6ea9d7; color: #fff; margin-left: auto; }
        .message-header { font-size: 0.8em; opacity: 0.8; margin-bottom: 6px; display: flex; gap: 8px; }
        .sender { font-weight: 600; }
        .message-content ul { margin: 6px 0 0; padding-left: 20px; }
    </style>
`
