package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/report"
)

var ErrNoWebhook = errors.New("slack webhook URL not set")

type slackPayload struct {
	Text string `json:"text"`
}

// Slack posts the report to an incoming webhook.
type Slack struct {
	webhookURL string
	maxChars   int
	http       *resty.Client
}

func NewSlack(cfg config.SlackConfig, log logger.Logger) (*Slack, error) {
	if cfg.WebhookURL == "" {
		return nil, ErrNoWebhook
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = report.SlackLimit
	}

	client := resty.New().
		SetLogger(logger.RestyLogger{Log: log}).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Slack{webhookURL: cfg.WebhookURL, maxChars: maxChars, http: client}, nil
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Notify(ctx context.Context, rep *report.Report) error {
	text := report.Truncate(report.Format(rep, report.StyleSlack), s.maxChars)

	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(slackPayload{Text: text}).
		Post(s.webhookURL)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("slack error: %d - %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}
