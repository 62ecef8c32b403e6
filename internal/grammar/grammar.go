// Package grammar checks page text against a LanguageTool server.
package grammar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
)

const checkPath = "/v2/check"

// Match is one diagnostic returned by LanguageTool. Offset and Length count
// UTF-16 code units of the submitted text, as the API reports them.
type Match struct {
	Message      string
	Offset       int
	Length       int
	Replacements []string
	RuleID       string
	IssueType    string
	Category     string
}

type checkResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Rule struct {
			ID        string `json:"id"`
			IssueType string `json:"issueType"`
			Category  struct {
				Name string `json:"name"`
			} `json:"category"`
		} `json:"rule"`
	} `json:"matches"`
}

type Client struct {
	options config.GrammarConfig
	http    *resty.Client
	log     logger.Logger
}

func NewClient(options config.GrammarConfig, log logger.Logger) *Client {
	client := resty.New().
		SetLogger(logger.RestyLogger{Log: log}).
		SetBaseURL(strings.TrimRight(options.APIURL, "/")).
		SetTimeout(options.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// the public API answers 429 when rate limited
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{options: options, http: client, log: log}
}

// Check sends text as-is and returns every match.
func (c *Client) Check(ctx context.Context, text string) ([]Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	form := map[string]string{
		"text":     text,
		"language": c.options.Language,
	}
	if len(c.options.DisabledRules) > 0 {
		form["disabledRules"] = strings.Join(c.options.DisabledRules, ",")
	}
	if c.options.Username != "" && c.options.APIKey != "" {
		form["username"] = c.options.Username
		form["apiKey"] = c.options.APIKey
	}

	var out checkResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post(checkPath)
	if err != nil {
		return nil, fmt.Errorf("languagetool request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("languagetool: HTTP %d: %s", resp.StatusCode(), clip(strings.TrimSpace(resp.String()), 200))
	}

	matches := make([]Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		match := Match{
			Message:   m.Message,
			Offset:    m.Offset,
			Length:    m.Length,
			RuleID:    m.Rule.ID,
			IssueType: m.Rule.IssueType,
			Category:  m.Rule.Category.Name,
		}
		for _, r := range m.Replacements {
			match.Replacements = append(match.Replacements, r.Value)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Issues checks the visible text of a page and renders at most
// MaxIssuesPerPage report lines. total is the number of matches found.
func (c *Client) Issues(ctx context.Context, text string) (issues []string, total int, err error) {
	text = clip(text, c.options.MaxTextLength)

	start := time.Now()
	matches, err := c.Check(ctx, text)
	if err != nil {
		return nil, 0, err
	}
	c.log.Debug("grammar check finished",
		logger.Int("matches", len(matches)),
		logger.Int("text_length", len([]rune(text))),
		logger.Duration("took", time.Since(start)))

	limit := len(matches)
	if c.options.MaxIssuesPerPage > 0 {
		limit = min(limit, c.options.MaxIssuesPerPage)
	}
	for _, m := range matches[:limit] {
		issues = append(issues, Describe(text, m, c.options.ContextRadius))
	}
	return issues, len(matches), nil
}

// clip cuts text to at most n runes, backing up to the last space so that no
// word is split. n <= 0 disables the limit.
func clip(text string, n int) string {
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	cut := runes[:n]
	for i := len(cut) - 1; i > n/2; i-- {
		if cut[i] == ' ' || cut[i] == '\n' {
			return string(cut[:i])
		}
	}
	return string(cut)
}
