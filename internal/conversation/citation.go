// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"strings"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// Citation block markup. The fragment is rendered by the transcript views,
// so the exact tags matter.
const (
	citationHeader   = "<br/><br/><Strong>Sources:</Strong><ul>"
	citationItemOpen = "<li>"
	citationItemEnd  = "</li>"
	citationFooter   = "</ul>"
)

// FormatCitations appends the citation block for sources to text. Sources
// keep their order and are neither sorted nor deduplicated. With no sources
// the text is returned verbatim.
func FormatCitations(text string, sources []string) string {
	if len(sources) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(citationHeader) + len(citationFooter) + 16*len(sources))
	b.WriteString(text)
	b.WriteString(citationHeader)
	for _, src := range sources {
		b.WriteString(citationItemOpen)
		b.WriteString(src)
		b.WriteString(citationItemEnd)
	}
	b.WriteString(citationFooter)
	return b.String()
}

// FormatReply builds the content of the incoming message for an answer.
// Only a present, non-empty sources list produces a citation block.
func FormatReply(answer *model.Answer) string {
	if answer == nil {
		return ""
	}
	if !answer.HasCitations() {
		return answer.Text
	}
	return FormatCitations(answer.Text, answer.Sources)
}
