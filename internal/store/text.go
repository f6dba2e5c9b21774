package store

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const excerptWords = 40

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "section": true, "article": true,
	"tr": true, "td": true, "th": true, "table": true,
}

// PlainText strips markup from an article body and collapses whitespace.
// Bodies that are not HTML come back with whitespace collapsed.
func PlainText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.Join(strings.Fields(body), " ")
	}
	doc.Find("script, style").Remove()
	var b strings.Builder
	collectText(doc.Find("body"), &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); {
		case name == "#text":
			b.WriteString(c.Text())
		case strings.HasPrefix(name, "#"):
		default:
			collectText(c, b)
			if blockElements[name] {
				b.WriteByte(' ')
			}
		}
	})
}

// WordCount counts whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Excerpt returns the first n words of text, marked when truncated.
func Excerpt(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
