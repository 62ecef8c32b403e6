// Package config holds doombot's run configuration.
//
// Values come from, in increasing priority: built-in defaults, the YAML
// config file, and environment variables named by `env` struct tags. The
// .env files are loaded into the environment first:
//
//  1. ENV_FILE (if set, only this file is loaded)
//  2. .env.local
//  3. .env
package config

import (
	"time"

	"github.com/yingtu35/doombot/internal/logger"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "config.yaml"

// DefaultURLs are the marketing pages reviewed every week.
var DefaultURLs = []string{
	"https://quickbookstraining.com/",
	"https://quickbookstraining.com/quickbooks-courses",
	"https://quickbookstraining.com/plans-and-pricing",
}

type Config struct {
	Title       string   `yaml:"title"`
	URLs        []string `yaml:"urls" env:"DOOMBOT_URLS"`
	UserAgent   string   `yaml:"user_agent" env:"DOOMBOT_USER_AGENT"`
	Concurrency int      `yaml:"concurrency" env:"DOOMBOT_CONCURRENCY"`

	Scraper   ScraperConfig   `yaml:"scraper"`
	Browser   BrowserConfig   `yaml:"browser"`
	Grammar   GrammarConfig   `yaml:"grammar"`
	Preflight PreflightConfig `yaml:"preflight"`
	Output    OutputConfig    `yaml:"output"`
	Slack     SlackConfig     `yaml:"slack"`
	GoogleDoc GoogleDocConfig `yaml:"google_doc"`
	Email     EmailConfig     `yaml:"email"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Logging   logger.Config   `yaml:"logging"`
}

type ScraperConfig struct {
	PageTimeout      time.Duration `yaml:"page_timeout" env:"DOOMBOT_PAGE_TIMEOUT"`
	LinkTimeout      time.Duration `yaml:"link_timeout" env:"DOOMBOT_LINK_TIMEOUT"`
	MaxLinksPerPage  int           `yaml:"max_links_per_page" env:"DOOMBOT_MAX_LINKS_PER_PAGE"`
	MaxConcurrency   int           `yaml:"max_concurrency" env:"DOOMBOT_MAX_CONCURRENCY"`
	FetchRetries     int           `yaml:"fetch_retries"`
	DropdownKeywords []string      `yaml:"dropdown_keywords"`
}

type BrowserConfig struct {
	Enabled           bool          `yaml:"enabled" env:"DOOMBOT_BROWSER"`
	InstallBrowsers   bool          `yaml:"install_browsers"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `yaml:"action_timeout"`
	ToggleSelector    string        `yaml:"toggle_selector"`
	MenuSelector      string        `yaml:"menu_selector"`
	HoverLinks        int           `yaml:"hover_links"`
	MaxConsoleErrors  int           `yaml:"max_console_errors"`
}

type GrammarConfig struct {
	Enabled          bool          `yaml:"enabled" env:"DOOMBOT_GRAMMAR"`
	APIURL           string        `yaml:"api_url" env:"LANGUAGETOOL_URL"`
	Language         string        `yaml:"language" env:"LANGUAGETOOL_LANGUAGE"`
	Username         string        `yaml:"username" env:"LANGUAGETOOL_USERNAME"`
	APIKey           string        `yaml:"api_key" env:"LANGUAGETOOL_API_KEY"`
	DisabledRules    []string      `yaml:"disabled_rules"`
	MaxTextLength    int           `yaml:"max_text_length"`
	MaxIssuesPerPage int           `yaml:"max_issues_per_page"`
	ContextRadius    int           `yaml:"context_radius"`
	Timeout          time.Duration `yaml:"timeout"`
}

type PreflightConfig struct {
	Enabled        bool          `yaml:"enabled" env:"DOOMBOT_PREFLIGHT"`
	MinGoVersion   string        `yaml:"min_go_version"`
	DiskPath       string        `yaml:"disk_path"`
	MinFreeDiskGB  uint64        `yaml:"min_free_disk_gb"`
	NetworkAddr    string        `yaml:"network_addr"`
	NetworkTimeout time.Duration `yaml:"network_timeout"`
	RequiredEnv    []string      `yaml:"required_env" env:"DOOMBOT_REQUIRED_ENV"`
}

type OutputConfig struct {
	Dir        string   `yaml:"dir" env:"DOOMBOT_OUTPUT_DIR"`
	Basename   string   `yaml:"basename"`
	Formats    []string `yaml:"formats" env:"DOOMBOT_OUTPUT_FORMATS"`
	PrintTable bool     `yaml:"print_table"`
}

type SlackConfig struct {
	WebhookURL string        `yaml:"webhook_url" env:"SLACK_WEBHOOK_URL"`
	MaxChars   int           `yaml:"max_chars"`
	Timeout    time.Duration `yaml:"timeout"`
}

type GoogleDocConfig struct {
	Enabled     bool     `yaml:"enabled" env:"DOOMBOT_GOOGLE_DOC"`
	Credentials string   `yaml:"credentials" env:"GOOGLE_SERVICE_ACCOUNT_KEY"`
	DocumentID  string   `yaml:"document_id" env:"GOOGLE_DOC_ID"`
	ShareWith   []string `yaml:"share_with" env:"GOOGLE_DOC_SHARE_WITH"`
}

type EmailConfig struct {
	Host     string   `yaml:"host" env:"SMTP_HOST"`
	Port     int      `yaml:"port" env:"SMTP_PORT"`
	Username string   `yaml:"username" env:"SMTP_USERNAME"`
	Password string   `yaml:"password" env:"SMTP_PASSWORD"`
	From     string   `yaml:"from" env:"SMTP_FROM"`
	To       []string `yaml:"to" env:"SMTP_TO"`
	Subject  string   `yaml:"subject"` // defaults to the report title
}

type ScheduleConfig struct {
	Cron string `yaml:"cron" env:"DOOMBOT_SCHEDULE"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Title:       "Doombot Weekly Website Review",
		URLs:        append([]string(nil), DefaultURLs...),
		UserAgent:   "DoombotSiteChecker/1.0",
		Concurrency: 4,
		Scraper: ScraperConfig{
			PageTimeout:      15 * time.Second,
			LinkTimeout:      5 * time.Second,
			MaxLinksPerPage:  10,
			MaxConcurrency:   20,
			FetchRetries:     2,
			DropdownKeywords: []string{"dropdown", "accordion", "collapse"},
		},
		Browser: BrowserConfig{
			NavigationTimeout: 20 * time.Second,
			ActionTimeout:     5 * time.Second,
			ToggleSelector:    ".dropdown-toggle",
			MenuSelector:      ".dropdown-menu",
			HoverLinks:        10,
			MaxConsoleErrors:  3,
		},
		Grammar: GrammarConfig{
			Enabled:          true,
			APIURL:           "https://api.languagetool.org",
			Language:         "en-US",
			MaxTextLength:    20000,
			MaxIssuesPerPage: 15,
			ContextRadius:    40,
			Timeout:          30 * time.Second,
		},
		Preflight: PreflightConfig{
			Enabled:        true,
			MinGoVersion:   "go1.22",
			DiskPath:       "/",
			MinFreeDiskGB:  2,
			NetworkAddr:    "8.8.8.8:53",
			NetworkTimeout: 3 * time.Second,
		},
		Output: OutputConfig{
			Dir:        ".",
			Basename:   "doombot_report",
			Formats:    []string{"markdown"},
			PrintTable: true,
		},
		Slack: SlackConfig{
			MaxChars: 3500,
			Timeout:  10 * time.Second,
		},
		Email: EmailConfig{
			Port: 587,
		},
		Schedule: ScheduleConfig{
			Cron: "0 9 * * 1",
		},
		Logging: logger.Config{
			Level: logger.DefaultLevel,
		},
	}
}

// EmailEnabled reports whether enough SMTP settings exist to send mail.
func (c *Config) EmailEnabled() bool {
	return c.Email.Host != "" && c.Email.From != "" && len(c.Email.To) > 0
}
