// Package richtext converts author input into the HTML stored on posts and
// derives plain-text excerpts from it.
package richtext

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// ExcerptLength is the rune budget of a derived excerpt.
const ExcerptLength = 100

// Raw HTML in markdown input is escaped because WithUnsafe is not set.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// FromMarkdown renders markdown source to HTML.
func FromMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// PlainText collapses the text nodes of an HTML fragment into one line.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.Join(parts, " ")
			}
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, string(z.Text()))
			}
		}
	}
}

func isHidden(tag []byte) bool {
	return string(tag) == "script" || string(tag) == "style"
}

// Excerpt returns the first ExcerptLength runes of the fragment's text,
// with an ellipsis when it was cut.
func Excerpt(fragment string) string {
	text := PlainText(fragment)
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "…"
}

// allowedTags maps each tag kept by Sanitize to the attributes it may carry.
var allowedTags = map[string][]string{
	"a": {"href", "title"}, "img": {"src", "alt", "title"},
	"p": nil, "br": nil, "hr": nil, "span": nil,
	"strong": nil, "em": nil, "b": nil, "i": nil, "u": nil, "s": nil, "del": nil,
	"h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
	"ul": nil, "ol": nil, "li": nil, "blockquote": nil, "pre": nil, "code": nil,
	"table": nil, "thead": nil, "tbody": nil, "tr": nil, "th": nil, "td": nil,
}

var voidTags = map[string]bool{"br": true, "hr": true, "img": true}

// droppedTags are removed together with everything inside them.
var droppedTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
	"noscript": true, "template": true, "textarea": true, "title": true,
}

// Sanitize rebuilds an HTML fragment from allowed tags and attributes only.
// Text is re-escaped, links and images keep http, https, mailto or relative
// URLs, and unknown tags are dropped while their text stays.
func Sanitize(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.WriteString(html.EscapeString(string(z.Text())))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if droppedTags[tok.Data] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			attrs, ok := allowedTags[tok.Data]
			if skip > 0 || !ok {
				continue
			}
			b.WriteString("<" + tok.Data)
			for _, a := range tok.Attr {
				if a.Namespace != "" || !slices.Contains(attrs, a.Key) {
					continue
				}
				if (a.Key == "href" || a.Key == "src") && !safeURL(a.Val) {
					continue
				}
				fmt.Fprintf(&b, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
			}
			b.WriteString(">")
		case html.EndTagToken:
			tok := z.Token()
			if droppedTags[tok.Data] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if _, ok := allowedTags[tok.Data]; ok && skip == 0 && !voidTags[tok.Data] {
				b.WriteString("</" + tok.Data + ">")
			}
		}
	}
}

func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}
