package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document wraps a parsed page with the few queries the parser needs.
type Document struct {
	doc *goquery.Document
}

// NewDocument parses HTML from r.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// SelectContaining returns elements matching selector whose text satisfies pred.
func (d *Document) SelectContaining(selector string, pred func(text string) bool) *goquery.Selection {
	return d.doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return pred(s.Text())
	})
}

// Closest returns the nearest ancestor of sel (starting with sel itself) whose text
// satisfies pred, or an empty selection.
func Closest(sel *goquery.Selection, pred func(text string) bool) *goquery.Selection {
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if goquery.NodeName(cur) == "body" {
			break
		}
		if pred(cur.Text()) {
			return cur
		}
	}
	return sel.Slice(0, 0)
}

// ClosestTag returns the nearest ancestor of sel matching one of the tag names.
func ClosestTag(sel *goquery.Selection, tags ...string) *goquery.Selection {
	return sel.ParentsFiltered(strings.Join(tags, ",")).First()
}

// cleanText collapses whitespace in the text of sel.
func cleanText(sel *goquery.Selection) string {
	return collapseSpace(sel.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nodeKey(sel *goquery.Selection) *html.Node {
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}
