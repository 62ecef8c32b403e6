package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var (
	ErrNoURLs     = errors.New("no URLs configured")
	ErrInvalidURL = errors.New("invalid URL")
)

// ValidationError names the offending config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OutputFormats are the file exporters that can be requested.
var OutputFormats = []string{"markdown", "json", "csv"}

func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return ErrNoURLs
	}
	for _, raw := range c.URLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
		}
	}

	if c.Concurrency < 1 {
		return &ValidationError{Field: "concurrency", Message: "must be at least 1"}
	}
	if c.Scraper.PageTimeout <= 0 {
		return &ValidationError{Field: "scraper.page_timeout", Message: "must be positive"}
	}
	if c.Scraper.LinkTimeout <= 0 {
		return &ValidationError{Field: "scraper.link_timeout", Message: "must be positive"}
	}
	if c.Scraper.MaxLinksPerPage < 0 {
		return &ValidationError{Field: "scraper.max_links_per_page", Message: "must not be negative"}
	}
	if c.Scraper.MaxConcurrency < 1 {
		return &ValidationError{Field: "scraper.max_concurrency", Message: "must be at least 1"}
	}

	if c.Grammar.Enabled {
		if _, err := url.ParseRequestURI(c.Grammar.APIURL); err != nil {
			return &ValidationError{Field: "grammar.api_url", Message: "must be an absolute URL"}
		}
		if c.Grammar.Language == "" {
			return &ValidationError{Field: "grammar.language", Message: "is required"}
		}
	}

	for _, f := range c.Output.Formats {
		if !slices.Contains(OutputFormats, f) {
			return &ValidationError{Field: "output.formats", Message: fmt.Sprintf("unknown format %q", f)}
		}
	}

	if c.Slack.WebhookURL != "" {
		if _, err := url.ParseRequestURI(c.Slack.WebhookURL); err != nil {
			return &ValidationError{Field: "slack.webhook_url", Message: "must be an absolute URL"}
		}
	}

	if c.GoogleDoc.Enabled && c.GoogleDoc.Credentials == "" {
		return &ValidationError{Field: "google_doc.credentials", Message: "is required when google_doc is enabled"}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error"}
	}
	return nil
}
