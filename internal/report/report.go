// Package report holds the results of one doombot run and renders them
// for the terminal, Slack and Markdown.
package report

import (
	"fmt"
	"time"
)

// Outcome is the result of a dropdown/accordion check.
type Outcome string

const (
	// OutcomeSuccess marks an element found in the static HTML.
	OutcomeSuccess Outcome = "Success"
	// OutcomePass marks a toggle that revealed content when clicked.
	OutcomePass Outcome = "Pass"
	// OutcomeFail marks a toggle that could not be clicked or revealed nothing.
	OutcomeFail Outcome = "Fail"
)

// BrokenLink is a hyperlink whose target answered >= 400 or could not be reached.
type BrokenLink struct {
	URL    string `json:"url"`
	Status int    `json:"status,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Reason renders the status code or the connection error.
func (b BrokenLink) Reason() string {
	if b.Err != "" {
		return b.Err
	}
	return fmt.Sprintf("HTTP %d", b.Status)
}

type DropdownResult struct {
	Target  string  `json:"target"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// PageResult is everything learned about one URL. Any list may be empty.
type PageResult struct {
	URL           string           `json:"url"`
	CheckedAt     time.Time        `json:"checked_at"`
	Status        int              `json:"status,omitempty"`
	Error         string           `json:"error,omitempty"`
	LinksChecked  int              `json:"links_checked"`
	BrokenLinks   []BrokenLink     `json:"broken_links"`
	Dropdowns     []DropdownResult `json:"dropdowns"`
	HoverFailures []string         `json:"hover_failures,omitempty"`
	ConsoleErrors []string         `json:"console_errors,omitempty"`
	GrammarIssues []string         `json:"grammar_issues"`
	Notes         []string         `json:"notes,omitempty"`
}

// Failed reports whether the page itself could not be checked.
func (p *PageResult) Failed() bool {
	return p.Error != ""
}

func (p *PageResult) AddNote(format string, args ...any) {
	p.Notes = append(p.Notes, fmt.Sprintf(format, args...))
}

type Report struct {
	Title      string       `json:"title"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Pages      []PageResult `json:"pages"`
}

func New(title string, startedAt time.Time) *Report {
	return &Report{Title: title, StartedAt: startedAt}
}

func (r *Report) BrokenLinkCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.BrokenLinks)
	}
	return n
}

func (r *Report) GrammarIssueCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.GrammarIssues)
	}
	return n
}

// FailedPages returns the URLs that could not be loaded at all.
func (r *Report) FailedPages() []string {
	var urls []string
	for _, p := range r.Pages {
		if p.Failed() {
			urls = append(urls, p.URL)
		}
	}
	return urls
}
