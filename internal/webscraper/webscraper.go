package webscraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yingtu35/doombot/internal/report"
	"github.com/yingtu35/doombot/pkg/domain"
	"golang.org/x/net/html"
)

// WebScraper scans a single page without a browser.
type WebScraper interface {
	Scan(ctx context.Context, url string) *Scan
}

// Scan is the static result for one page plus the visible text used for
// the grammar check.
type Scan struct {
	Result report.PageResult
	Text   string
}

// getAllLinks returns the resolved, de-duplicated http(s) links of the page in
// document order, at most limit of them (0 means no limit).
func getAllLinks(doc *goquery.Document, base string, limit int) []string {
	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		link, err := domain.ResolveURL(base, href)
		if err != nil || seen[link] {
			return true
		}
		seen[link] = true
		links = append(links, link)
		return limit <= 0 || len(links) < limit
	})
	return links
}

// FindDropdowns reports elements that look like dropdowns or accordions:
// <summary>, buttons carrying aria-expanded, and anything whose class is one
// of keywords. Each element is reported once.
func FindDropdowns(doc *goquery.Document, keywords []string) []report.DropdownResult {
	selectors := []string{"summary", "button[aria-expanded]"}
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			selectors = append(selectors, "."+kw)
		}
	}

	seen := make(map[*html.Node]bool)
	var results []report.DropdownResult
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			node := s.Get(0)
			if seen[node] {
				return
			}
			seen[node] = true

			outer, err := goquery.OuterHtml(s)
			if err != nil {
				return
			}
			results = append(results, report.DropdownResult{
				Target:  snippet(outer, MaxDropdownSnippet),
				Outcome: report.OutcomeSuccess,
			})
		})
	}
	return results
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

// VisibleText returns the text a visitor would read in the page body, one
// line per block element.
func VisibleText(doc *goquery.Document) string {
	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, n := range root.Nodes {
		writeText(&b, n)
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if textSkipTags[n.Data] || hidden(n) {
			return
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteString("\n")
	}
	for c := range n.ChildNodes() {
		writeText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}
