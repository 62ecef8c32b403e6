package doombot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/report"
	"github.com/yingtu35/doombot/internal/webscraper"
)

type fakeGrammar struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (g *fakeGrammar) Issues(_ context.Context, text string) ([]string, int, error) {
	g.mu.Lock()
	g.texts = append(g.texts, text)
	g.mu.Unlock()
	if g.err != nil {
		return nil, 0, g.err
	}
	return []string{"❌ Spelling mistake: “trainnig”", "❌ Whitespace: “  ”"}, 3, nil
}

type fakeProber struct {
	urls   []string
	closed bool
}

func (p *fakeProber) Probe(_ context.Context, url string, res *report.PageResult) {
	p.urls = append(p.urls, url)
	res.Dropdowns = append(res.Dropdowns, report.DropdownResult{Target: ".dropdown-toggle", Outcome: report.OutcomePass})
}

func (p *fakeProber) Close() error {
	p.closed = true
	return nil
}

type fakeNotifier struct {
	name string
	err  error
	got  *report.Report
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Notify(_ context.Context, rep *report.Report) error {
	n.got = rep
	return n.err
}

type fakeScraper struct {
	mu   sync.Mutex
	urls []string
}

func (s *fakeScraper) Scan(_ context.Context, url string) *webscraper.Scan {
	s.mu.Lock()
	s.urls = append(s.urls, url)
	s.mu.Unlock()
	return &webscraper.Scan{Result: report.PageResult{URL: url}, Text: "Some page text."}
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body>
			<p>Welcome to QuickBooks trainnig</p>
			<a href="/pricing">pricing</a>
			<a href="/missing">missing</a>
		</body></html>`)
	})
	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, urls ...string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.URLs = urls
	cfg.Preflight.Enabled = false
	cfg.Scraper.FetchRetries = 0
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Formats = []string{"markdown", "json"}
	return cfg
}

func TestRunFullReview(t *testing.T) {
	srv := newSite(t)
	cfg := testConfig(t, srv.URL+"/", srv.URL+"/gone")
	cfg.Browser.Enabled = true

	g := &fakeGrammar{}
	prober := &fakeProber{}
	failing := &fakeNotifier{name: "slack", err: errors.New("slack error: 500 - oops")}
	ok := &fakeNotifier{name: "email"}
	var stdout bytes.Buffer

	r := New(context.Background(), cfg, logger.NewNop(),
		WithGrammar(g),
		WithProber(func() (webscraper.Prober, error) { return prober, nil }),
		WithNotifiers(failing, ok),
		WithStdout(&stdout),
	)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Pages, 2)
	assert.Equal(t, cfg.Title, rep.Title)
	assert.False(t, rep.FinishedAt.Before(rep.StartedAt))

	home := rep.Pages[0]
	assert.Equal(t, srv.URL+"/", home.URL)
	assert.Empty(t, home.Error)
	assert.Equal(t, 2, home.LinksChecked)
	require.Len(t, home.BrokenLinks, 1)
	assert.Equal(t, srv.URL+"/missing", home.BrokenLinks[0].URL)
	assert.Equal(t, 404, home.BrokenLinks[0].Status)
	assert.Len(t, home.GrammarIssues, 2)
	assert.Contains(t, home.Notes, "1 more grammar issues not shown")

	gone := rep.Pages[1]
	assert.Equal(t, "HTTP 404", gone.Error)
	assert.Empty(t, gone.GrammarIssues)

	// grammar only runs on pages that loaded
	require.Len(t, g.texts, 1)
	assert.Contains(t, g.texts[0], "QuickBooks trainnig")

	assert.Equal(t, []string{srv.URL + "/", srv.URL + "/gone"}, prober.urls)
	assert.True(t, prober.closed)

	assert.Same(t, rep, failing.got)
	assert.Same(t, rep, ok.got)

	assert.Contains(t, stdout.String(), srv.URL+"/missing")
	for _, name := range []string{"doombot_report.md", "doombot_report.json"} {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunPreflightFailure(t *testing.T) {
	cfg := testConfig(t, "https://quickbookstraining.com/")
	cfg.Preflight.Enabled = true

	scraper := &fakeScraper{}
	notifier := &fakeNotifier{name: "slack"}
	r := New(context.Background(), cfg, logger.NewNop(),
		WithScraper(func() webscraper.WebScraper { return scraper }),
		WithPreflight(func(context.Context) error { return errors.New("preflight: missing environment variables: SLACK_WEBHOOK_URL") }),
		WithNotifiers(notifier),
		WithStdout(&bytes.Buffer{}),
	)

	rep, err := r.Run(context.Background())
	require.ErrorContains(t, err, "SLACK_WEBHOOK_URL")
	assert.Nil(t, rep)
	assert.Empty(t, scraper.urls)
	assert.Nil(t, notifier.got)
}

func TestRunBrowserUnavailable(t *testing.T) {
	cfg := testConfig(t, "https://a.example/", "https://b.example/")
	cfg.Browser.Enabled = true
	cfg.Grammar.Enabled = false

	r := New(context.Background(), cfg, logger.NewNop(),
		WithScraper(func() webscraper.WebScraper { return &fakeScraper{} }),
		WithProber(func() (webscraper.Prober, error) { return nil, errors.New("could not install driver") }),
		WithNotifiers(),
		WithStdout(&bytes.Buffer{}),
	)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	for _, page := range rep.Pages {
		assert.Equal(t, []string{"Browser checks unavailable: could not install driver"}, page.Notes)
	}
}

func TestRunGrammarFailureBecomesNote(t *testing.T) {
	cfg := testConfig(t, "https://a.example/")

	r := New(context.Background(), cfg, logger.NewNop(),
		WithScraper(func() webscraper.WebScraper { return &fakeScraper{} }),
		WithGrammar(&fakeGrammar{err: errors.New("languagetool: HTTP 503: busy")}),
		WithNotifiers(),
		WithStdout(&bytes.Buffer{}),
	)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Pages, 1)
	assert.Equal(t, []string{"Grammar check failed: languagetool: HTTP 503: busy"}, rep.Pages[0].Notes)
}

func TestRunKeepsURLOrder(t *testing.T) {
	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/page-%d", i)
	}
	cfg := testConfig(t, urls...)
	cfg.Grammar.Enabled = false

	scraper := &fakeScraper{}
	r := New(context.Background(), cfg, logger.NewNop(),
		WithScraper(func() webscraper.WebScraper { return scraper }),
		WithNotifiers(),
		WithStdout(&bytes.Buffer{}),
	)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Pages, len(urls))
	for i, page := range rep.Pages {
		assert.Equal(t, urls[i], page.URL)
	}
	assert.ElementsMatch(t, urls, scraper.urls)
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t, "https://a.example/", "https://b.example/")
	cfg.Output.Formats = nil

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper := &fakeScraper{}
	r := New(ctx, cfg, logger.NewNop(),
		WithScraper(func() webscraper.WebScraper { return scraper }),
		WithNotifiers(),
		WithStdout(&bytes.Buffer{}),
	)

	rep, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, rep.Pages, 2)
	for _, page := range rep.Pages {
		assert.Equal(t, "skipped: context canceled", page.Error)
	}
	assert.Empty(t, scraper.urls)
}
