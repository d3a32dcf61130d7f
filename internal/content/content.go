// Package content renders blog markdown to safe HTML, strips markup from
// free-text submissions and builds URL slugs.
package content

import (
	"bytes"
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Typographer))

	ugcOnce   sync.Once
	ugcPolicy *bluemonday.Policy
	strict    = bluemonday.StrictPolicy()
)

func policy() *bluemonday.Policy {
	ugcOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		ugcPolicy = p
	})
	return ugcPolicy
}

// RenderMarkdown converts markdown to HTML and removes anything unsafe
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", errors.Wrap(err, "render markdown")
	}
	return policy().Sanitize(buf.String()), nil
}

// PlainText strips all markup from user supplied text (inquiries, testimonials).
// The result is unescaped text, not HTML.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Excerpt returns the first n runes of the text in rendered, cut on a word boundary
func Excerpt(rendered string, n int) string {
	text := strings.Join(strings.Fields(PlainText(rendered)), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lower-cases s, folds accents and joins words with hyphens.
// "Crème Brûlée Roses!" becomes "creme-brulee-roses".
func Slugify(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '&':
			pendingDash = true
			if b.Len() > 0 {
				b.WriteString("-and")
			}
		default:
			pendingDash = true
		}
	}
	return b.String()
}
