package doombot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/export"
	"github.com/yingtu35/doombot/internal/grammar"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/notify"
	"github.com/yingtu35/doombot/internal/preflight"
	"github.com/yingtu35/doombot/internal/report"
	"github.com/yingtu35/doombot/internal/webscraper"
	"golang.org/x/sync/errgroup"
)

// GrammarChecker returns the formatted issues for a page's visible text and
// the total number found before capping.
type GrammarChecker interface {
	Issues(ctx context.Context, text string) ([]string, int, error)
}

// Runner performs one full website review: scan, check, report, deliver.
type Runner struct {
	cfg *config.Config
	log logger.Logger

	newScraper func() webscraper.WebScraper
	newProber  func() (webscraper.Prober, error)
	grammar    GrammarChecker
	preflight  func(ctx context.Context) error
	notifiers  []notify.Notifier
	stdout     io.Writer

	customNotifiers bool
}

type Option func(*Runner)

// WithScraper replaces the static scraper. A fresh scraper is built for
// every run so the link cache never outlives a run.
func WithScraper(fn func() webscraper.WebScraper) Option {
	return func(r *Runner) { r.newScraper = fn }
}

func WithProber(fn func() (webscraper.Prober, error)) Option {
	return func(r *Runner) { r.newProber = fn }
}

func WithGrammar(g GrammarChecker) Option {
	return func(r *Runner) { r.grammar = g }
}

func WithPreflight(fn func(ctx context.Context) error) Option {
	return func(r *Runner) { r.preflight = fn }
}

// WithNotifiers replaces the notifiers derived from the configuration.
func WithNotifiers(n ...notify.Notifier) Option {
	return func(r *Runner) {
		r.notifiers = n
		r.customNotifiers = true
	}
}

func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// New builds a Runner from cfg. Remote sinks that are configured but cannot
// be constructed are logged and left out.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		log:    log,
		stdout: os.Stdout,
		newScraper: func() webscraper.WebScraper {
			return webscraper.NewStaticHunter(cfg.Scraper, cfg.UserAgent, log)
		},
		newProber: func() (webscraper.Prober, error) {
			return webscraper.NewDynamicHunter(cfg.Browser, cfg.UserAgent, log)
		},
		grammar: grammar.NewClient(cfg.Grammar, log),
		preflight: func(ctx context.Context) error {
			return preflight.Run(ctx, cfg.Preflight, log)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.customNotifiers {
		r.notifiers = configuredNotifiers(ctx, cfg, log)
	}
	return r
}

func configuredNotifiers(ctx context.Context, cfg *config.Config, log logger.Logger) []notify.Notifier {
	var notifiers []notify.Notifier

	if cfg.Slack.WebhookURL != "" {
		slack, err := notify.NewSlack(cfg.Slack, log)
		if err != nil {
			log.Warn("Slack disabled", logger.Error(err))
		} else {
			notifiers = append(notifiers, slack)
		}
	} else {
		log.Warn("Slack webhook URL not set, report will not be posted to Slack")
	}

	if cfg.GoogleDoc.Enabled {
		doc, err := notify.NewGoogleDoc(ctx, cfg.GoogleDoc, log)
		if err != nil {
			log.Warn("Google Doc disabled", logger.Error(err))
		} else {
			notifiers = append(notifiers, doc)
		}
	}

	if cfg.EmailEnabled() {
		notifiers = append(notifiers, notify.NewEmail(cfg.Email))
	}
	return notifiers
}

// Run reviews every configured URL. Per-page failures are recorded in the
// report; Run only fails when preflight fails or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	r.log.Info("Doombot weekly website review starting",
		logger.Int("urls", len(r.cfg.URLs)),
		logger.Bool("browser", r.cfg.Browser.Enabled),
		logger.Bool("grammar", r.cfg.Grammar.Enabled))

	if r.cfg.Preflight.Enabled && r.preflight != nil {
		if err := r.preflight(ctx); err != nil {
			r.log.Error("preflight failed", logger.Error(err))
			return nil, err
		}
	}

	rep := report.New(r.cfg.Title, start.UTC())
	rep.Pages = r.scanPages(ctx)
	if r.cfg.Browser.Enabled && ctx.Err() == nil {
		r.probePages(ctx, rep.Pages)
	}
	rep.FinishedAt = time.Now().UTC()

	r.deliver(ctx, rep)

	r.log.Info("Doombot weekly website review finished",
		logger.Duration("elapsed", time.Since(start)),
		logger.Int("pages", len(rep.Pages)),
		logger.Int("broken_links", rep.BrokenLinkCount()),
		logger.Int("grammar_issues", rep.GrammarIssueCount()))
	return rep, ctx.Err()
}

// scanPages runs the static and grammar checks. Results keep the order of
// the configured URLs.
func (r *Runner) scanPages(ctx context.Context) []report.PageResult {
	scraper := r.newScraper()
	pages := make([]report.PageResult, len(r.cfg.URLs))

	var g errgroup.Group
	g.SetLimit(max(r.cfg.Concurrency, 1))
	for i, url := range r.cfg.URLs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				pages[i] = report.PageResult{URL: url, CheckedAt: time.Now().UTC(), Error: "skipped: " + err.Error()}
				return nil
			}
			scan := scraper.Scan(ctx, url)
			r.checkGrammar(ctx, scan)
			pages[i] = scan.Result
			return nil
		})
	}
	_ = g.Wait()
	return pages
}

func (r *Runner) checkGrammar(ctx context.Context, scan *webscraper.Scan) {
	res := &scan.Result
	if !r.cfg.Grammar.Enabled || r.grammar == nil || res.Failed() {
		return
	}
	if scan.Text == "" {
		res.AddNote("No visible text to check")
		return
	}

	issues, total, err := r.grammar.Issues(ctx, scan.Text)
	if err != nil {
		r.log.Warn("grammar check failed", logger.String("url", res.URL), logger.Error(err))
		res.AddNote("Grammar check failed: %v", err)
		return
	}
	res.GrammarIssues = issues
	if total > len(issues) {
		res.AddNote("%d more grammar issues not shown", total-len(issues))
	}
}

// probePages drives one browser through every page in order.
func (r *Runner) probePages(ctx context.Context, pages []report.PageResult) {
	prober, err := r.newProber()
	if err != nil {
		r.log.Error("browser unavailable", logger.Error(err))
		for i := range pages {
			pages[i].AddNote("Browser checks unavailable: %v", err)
		}
		return
	}
	defer func() {
		if err := prober.Close(); err != nil {
			r.log.Warn("closing browser", logger.Error(err))
		}
	}()

	for i := range pages {
		if ctx.Err() != nil {
			return
		}
		prober.Probe(ctx, pages[i].URL, &pages[i])
	}
}

// deliver writes the report to every local and remote destination. A failing
// destination never stops the others.
func (r *Runner) deliver(ctx context.Context, rep *report.Report) {
	out := r.cfg.Output
	if out.PrintTable {
		report.PrintTable(r.stdout, rep)
	}

	if len(out.Formats) > 0 {
		if err := os.MkdirAll(out.Dir, 0o755); err != nil {
			r.log.Error("creating output directory", logger.String("dir", out.Dir), logger.Error(err))
		} else {
			r.export(rep, filepath.Join(out.Dir, out.Basename), out.Formats)
		}
	}

	for _, n := range r.notifiers {
		if err := n.Notify(ctx, rep); err != nil {
			r.log.Error(fmt.Sprintf("%s delivery failed", n.Name()), logger.Error(err))
			continue
		}
		r.log.Info("report delivered", logger.String("destination", n.Name()))
	}
}

func (r *Runner) export(rep *report.Report, filename string, formats []string) {
	for _, format := range formats {
		exporter, err := export.New(format)
		if err != nil {
			r.log.Error("unknown export format", logger.String("format", format))
			continue
		}
		path, err := exporter.Export(rep, filename)
		if err != nil {
			r.log.Error("export failed", logger.String("format", format), logger.Error(err))
			continue
		}
		r.log.Info("report exported", logger.String("path", path))
	}
}
