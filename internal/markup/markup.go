// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup converts the HTML-like markup used in message content into
// Markdown and plain text for terminals and exports.
//
// Replies arrive as markup such as
//
//	The answer is 42.<br/><br/><Strong>Sources:</Strong><ul><li>doc1.pdf</li></ul>
//
// which ToMarkdown turns into
//
//	The answer is 42.
//
//	**Sources:**
//	- doc1.pdf
package markup

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// ToMarkdown converts markup to Markdown. Text outside tags is kept as is,
// so answers that already contain Markdown pass through.
func ToMarkdown(markup string) string {
	return convert(markup, true)
}

// ToPlain converts markup to plain text without emphasis markers.
func ToPlain(markup string) string {
	return convert(markup, false)
}

// Escape makes user text safe to embed in markup.
func Escape(text string) string {
	return html.EscapeString(text)
}

func convert(markup string, markdown bool) string {
	if !strings.ContainsAny(markup, "<&") {
		return strings.TrimSpace(markup)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(markup)
	}

	r := &renderer{markdown: markdown}
	r.children(doc.Find("body"))
	out := blankRuns.ReplaceAllString(r.b.String(), "\n\n")
	return strings.TrimSpace(out)
}

type renderer struct {
	b        strings.Builder
	markdown bool
	depth    int
}

func (r *renderer) children(sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		r.node(s)
	})
}

func (r *renderer) node(s *goquery.Selection) {
	n := s.Get(0)
	switch n.Type {
	case xhtml.TextNode:
		r.b.WriteString(n.Data)
		return
	case xhtml.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Br:
		r.b.WriteString("\n")
	case atom.Strong, atom.B:
		r.wrap(s, "**")
	case atom.Em, atom.I:
		r.wrap(s, "_")
	case atom.Code:
		r.wrap(s, "`")
	case atom.P, atom.Div:
		r.block()
		r.children(s)
		r.block()
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		r.block()
		if r.markdown {
			level := int(n.Data[1] - '0')
			r.b.WriteString(strings.Repeat("#", level) + " ")
		}
		r.children(s)
		r.block()
	case atom.Ul, atom.Ol:
		r.list(s, n.DataAtom == atom.Ol)
	case atom.A:
		r.link(s)
	case atom.Script, atom.Style:
	default:
		r.children(s)
	}
}

func (r *renderer) wrap(s *goquery.Selection, marker string) {
	if !r.markdown {
		r.children(s)
		return
	}
	r.b.WriteString(marker)
	r.children(s)
	r.b.WriteString(marker)
}

func (r *renderer) link(s *goquery.Selection) {
	href, ok := s.Attr("href")
	if !ok || href == "" {
		r.children(s)
		return
	}
	if r.markdown {
		r.b.WriteString("[")
		r.children(s)
		r.b.WriteString("](" + href + ")")
		return
	}
	r.children(s)
	r.b.WriteString(" (" + href + ")")
}

func (r *renderer) list(s *goquery.Selection, ordered bool) {
	r.newline()
	indent := strings.Repeat("  ", r.depth)
	r.depth++
	n := 0
	s.Children().Each(func(_ int, item *goquery.Selection) {
		if goquery.NodeName(item) != "li" {
			return
		}
		n++
		r.newline()
		bullet := "- "
		if ordered {
			bullet = strconv.Itoa(n) + ". "
		}
		r.b.WriteString(indent + bullet)
		r.children(item)
	})
	r.depth--
	r.newline()
}

// newline ends the current line if it has content.
func (r *renderer) newline() {
	s := r.b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		r.b.WriteString("\n")
	}
}

// block starts a new paragraph.
func (r *renderer) block() {
	s := r.b.String()
	switch {
	case s == "", strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		r.b.WriteString("\n")
	default:
		r.b.WriteString("\n\n")
	}
}

// Sanitize removes scripts, styles and event handler attributes so markup
// can be embedded in an HTML document.
func Sanitize(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Escape(markup)
	}
	doc.Find("script, style, iframe, object, embed").Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") {
				continue
			}
			if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})
	out, err := doc.Find("body").Html()
	if err != nil {
		return Escape(markup)
	}
	return out
}
