package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Style selects the markup used by Format.
type Style int

const (
	StyleSlack Style = iota
	StyleMarkdown
)

// SlackLimit is the largest text payload sent to the Slack webhook.
const SlackLimit = 3500

const timeLayout = "2006-01-02 15:04 MST"

// Format renders the full report.
func Format(r *Report, style Style) string {
	var b strings.Builder

	switch style {
	case StyleMarkdown:
		fmt.Fprintf(&b, "# %s\n\n", r.Title)
		fmt.Fprintf(&b, "_Generated %s_\n\n", r.FinishedAt.Format(timeLayout))
	default:
		fmt.Fprintf(&b, "*%s*\n", r.Title)
		fmt.Fprintf(&b, "_%s_\n", r.FinishedAt.Format(timeLayout))
	}
	fmt.Fprintf(&b, "Pages: %d | Broken links: %d | Grammar issues: %d\n",
		len(r.Pages), r.BrokenLinkCount(), r.GrammarIssueCount())

	for i := range r.Pages {
		b.WriteString("\n")
		writePage(&b, &r.Pages[i], style)
	}
	return b.String()
}

func writePage(b *strings.Builder, p *PageResult, style Style) {
	heading := func(s string) {
		if style == StyleMarkdown {
			fmt.Fprintf(b, "### %s\n", s)
		} else {
			fmt.Fprintf(b, "*%s*\n", s)
		}
	}
	bullet := func(format string, args ...any) {
		fmt.Fprintf(b, "- "+format+"\n", args...)
	}

	if style == StyleMarkdown {
		fmt.Fprintf(b, "## %s\n\n", p.URL)
	} else {
		fmt.Fprintf(b, "🔍 *%s*\n", p.URL)
	}

	// a page that failed to load can still carry browser results
	if p.Failed() {
		fmt.Fprintf(b, "❌ Error loading page: %s\n", p.Error)
	} else {
		if len(p.BrokenLinks) == 0 {
			fmt.Fprintf(b, "✅ No broken links (%d checked)\n", p.LinksChecked)
		} else {
			heading(fmt.Sprintf("Broken links (%d of %d checked)", len(p.BrokenLinks), p.LinksChecked))
			for _, l := range p.BrokenLinks {
				bullet("%s (%s)", l.URL, l.Reason())
			}
		}
		if len(p.Dropdowns) == 0 {
			b.WriteString("⚠️ No dropdowns detected\n")
		}
	}

	if len(p.Dropdowns) > 0 {
		heading("Dropdowns")
		for _, d := range p.Dropdowns {
			if d.Detail != "" {
				bullet("%s %s: %s", outcomeIcon(d.Outcome), d.Outcome, d.Detail)
			} else {
				bullet("%s %s: `%s`", outcomeIcon(d.Outcome), d.Outcome, d.Target)
			}
		}
	}

	if len(p.HoverFailures) > 0 {
		heading("Links not interactable")
		for _, h := range p.HoverFailures {
			bullet("%s", h)
		}
	}

	if len(p.ConsoleErrors) > 0 {
		heading("Console errors")
		for _, e := range p.ConsoleErrors {
			bullet("%s", e)
		}
	}

	if len(p.GrammarIssues) > 0 {
		heading("Grammar")
		for _, g := range p.GrammarIssues {
			bullet("%s", strings.ReplaceAll(g, "\n", "\n  "))
		}
	}

	for _, n := range p.Notes {
		fmt.Fprintf(b, "⚠️ %s\n", n)
	}
}

func outcomeIcon(o Outcome) string {
	if o == OutcomeFail {
		return "❌"
	}
	return "✅"
}

// Truncate cuts s to at most n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
