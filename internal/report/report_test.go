package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	at := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	r := New("Doombot Weekly Website Review", at)
	r.FinishedAt = at.Add(time.Minute)
	r.Pages = []PageResult{
		{
			URL:          "https://quickbookstraining.com/",
			CheckedAt:    at,
			Status:       200,
			LinksChecked: 10,
			BrokenLinks: []BrokenLink{
				{URL: "https://quickbookstraining.com/old-course", Status: 404},
				{URL: "https://gone.example.com/", Err: "dial tcp: no such host"},
			},
			Dropdowns: []DropdownResult{
				{Target: `<summary>What is included?</summary>…`, Outcome: OutcomeSuccess},
				{Target: ".dropdown-toggle", Outcome: OutcomeFail, Detail: "Dropdown did not open after click"},
			},
			GrammarIssues: []string{"❌ Misspelling: “teh” ➝ Suggested: “the”\n🧠 Context: “…*teh* course…”"},
		},
		{
			URL:       "https://quickbookstraining.com/plans-and-pricing",
			CheckedAt: at,
			Error:     "HTTP 503",
		},
	}
	return r
}

func TestCounts(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, 2, r.BrokenLinkCount())
	assert.Equal(t, 1, r.GrammarIssueCount())
	assert.Equal(t, []string{"https://quickbookstraining.com/plans-and-pricing"}, r.FailedPages())
}

func TestBrokenLinkReason(t *testing.T) {
	assert.Equal(t, "HTTP 404", BrokenLink{Status: 404}.Reason())
	assert.Equal(t, "timeout", BrokenLink{Status: 0, Err: "timeout"}.Reason())
}

func TestFormatSlack(t *testing.T) {
	out := Format(sampleReport(), StyleSlack)

	assert.True(t, strings.HasPrefix(out, "*Doombot Weekly Website Review*\n"))
	assert.Contains(t, out, "Pages: 2 | Broken links: 2 | Grammar issues: 1")
	assert.Contains(t, out, "🔍 *https://quickbookstraining.com/*")
	assert.Contains(t, out, "- https://quickbookstraining.com/old-course (HTTP 404)")
	assert.Contains(t, out, "- https://gone.example.com/ (dial tcp: no such host)")
	assert.Contains(t, out, "❌ Fail: Dropdown did not open after click")
	assert.Contains(t, out, "✅ Success: `<summary>What is included?</summary>…`")
	assert.Contains(t, out, "❌ Error loading page: HTTP 503")
	assert.Contains(t, out, "\n  🧠 Context:")
}

func TestFormatMarkdown(t *testing.T) {
	out := Format(sampleReport(), StyleMarkdown)

	assert.True(t, strings.HasPrefix(out, "# Doombot Weekly Website Review\n"))
	assert.Contains(t, out, "## https://quickbookstraining.com/\n")
	assert.Contains(t, out, "### Broken links (2 of 10 checked)")
	assert.Contains(t, out, "### Grammar")
}

func TestFormatCleanPage(t *testing.T) {
	r := New("t", time.Now())
	r.Pages = []PageResult{{URL: "https://example.com/", LinksChecked: 4}}

	out := Format(r, StyleSlack)
	assert.Contains(t, out, "✅ No broken links (4 checked)")
	assert.Contains(t, out, "⚠️ No dropdowns detected")
}

func TestFormatFailedPageKeepsBrowserResults(t *testing.T) {
	r := New("t", time.Now())
	r.Pages = []PageResult{{
		URL:           "https://example.com/",
		Error:         "HTTP 403",
		Dropdowns:     []DropdownResult{{Target: ".dropdown-toggle", Outcome: OutcomeFail, Detail: "Dropdown did not open after click"}},
		ConsoleErrors: []string{"Uncaught TypeError: boom"},
		HoverFailures: []string{"/pricing"},
		Notes:         []string{"Browser received HTTP 403"},
	}}

	for _, style := range []Style{StyleSlack, StyleMarkdown} {
		out := Format(r, style)
		assert.Contains(t, out, "❌ Error loading page: HTTP 403")
		assert.Contains(t, out, "❌ Fail: Dropdown did not open after click")
		assert.Contains(t, out, "Uncaught TypeError: boom")
		assert.Contains(t, out, "- /pricing")
		assert.Contains(t, out, "⚠️ Browser received HTTP 403")
		assert.NotContains(t, out, "No broken links")
		assert.NotContains(t, out, "No dropdowns detected")
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))

	long := strings.Repeat("✅ ok ", 1000)
	cut := Truncate(long, SlackLimit)
	assert.Equal(t, SlackLimit, utf8.RuneCountInString(cut))
	assert.True(t, utf8.ValidString(cut))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleReport())

	out := buf.String()
	require.Contains(t, out, "Page")
	require.Contains(t, out, "Broken Links")
	assert.Contains(t, out, "https://quickbookstraining.com/old-course")
	assert.Contains(t, out, "HTTP 404")
	assert.Contains(t, out, "dial tcp: no such host")
	assert.Equal(t, 1, strings.Count(out, "https://quickbookstraining.com/ "))

	buf.Reset()
	PrintTable(&buf, New("t", time.Now()))
	assert.Equal(t, "No broken links found\n", buf.String())
}
