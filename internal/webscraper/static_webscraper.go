package webscraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/report"
	"github.com/yingtu35/doombot/pkg/domain"
	"golang.org/x/sync/singleflight"
)

// StaticHunter fetches pages over plain HTTP, sweeps their links and detects
// dropdowns. One StaticHunter is shared by every page of a run so that a link
// appearing on several pages is only requested once.
type StaticHunter struct {
	options   config.ScraperConfig
	log       logger.Logger
	pages     *resty.Client                 // page fetches, with retries
	links     *resty.Client                 // link checks, single shot
	checked   map[string]*report.BrokenLink // link URL -> nil when healthy
	semaphore chan struct{}                 // limits concurrent link requests

	checkedMu   sync.Mutex
	flightGroup singleflight.Group
}

func NewStaticHunter(options config.ScraperConfig, userAgent string, log logger.Logger) *StaticHunter {
	if options.MaxConcurrency < 1 {
		options.MaxConcurrency = MaxConcurrency
	}

	pages := resty.New().
		SetLogger(logger.RestyLogger{Log: log}).
		SetTimeout(options.PageTimeout).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetRetryCount(options.FetchRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	links := resty.New().
		SetLogger(logger.RestyLogger{Log: log}).
		SetTimeout(options.LinkTimeout).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &StaticHunter{
		options:   options,
		log:       log,
		pages:     pages,
		links:     links,
		checked:   make(map[string]*report.BrokenLink),
		semaphore: make(chan struct{}, options.MaxConcurrency),
	}
}

// Scan fetches pageURL and runs every static check on it. Failures are
// recorded on the result; Scan never returns an error.
func (d *StaticHunter) Scan(ctx context.Context, pageURL string) *Scan {
	log := d.log.With(logger.String("url", pageURL))
	scan := &Scan{Result: report.PageResult{URL: pageURL, CheckedAt: time.Now().UTC()}}
	res := &scan.Result

	log.Info("fetching page")
	resp, err := d.pages.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		log.Warn("page fetch failed", logger.Error(err))
		res.Error = errorText(err)
		return scan
	}
	res.Status = resp.StatusCode()
	if resp.StatusCode() != http.StatusOK {
		log.Warn("page returned non-200 status", logger.Int("status", resp.StatusCode()))
		res.Error = fmt.Sprintf("HTTP %d", resp.StatusCode())
		return scan
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		res.Error = fmt.Sprintf("parse html: %v", err)
		return scan
	}

	base := pageURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		base = raw.Request.URL.String()
	}

	links := getAllLinks(doc, base, d.options.MaxLinksPerPage)
	res.LinksChecked = len(links)
	res.BrokenLinks = d.checkLinks(ctx, links)
	res.Dropdowns = FindDropdowns(doc, d.options.DropdownKeywords)
	scan.Text = VisibleText(doc)

	log.Info("page scanned",
		logger.Int("links_checked", res.LinksChecked),
		logger.Int("external_links", countExternal(base, links)),
		logger.Int("broken_links", len(res.BrokenLinks)),
		logger.Int("dropdowns", len(res.Dropdowns)))
	return scan
}

// checkLinks checks every link concurrently and returns the broken ones in
// input order.
func (d *StaticHunter) checkLinks(ctx context.Context, links []string) []report.BrokenLink {
	results := make([]*report.BrokenLink, len(links))

	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link string) {
			defer wg.Done()

			val, _, _ := d.flightGroup.Do(link, func() (interface{}, error) {
				return d.checkLink(ctx, link), nil
			})
			results[i], _ = val.(*report.BrokenLink)
		}(i, link)
	}
	wg.Wait()

	broken := []report.BrokenLink{}
	for _, r := range results {
		if r != nil {
			broken = append(broken, *r)
		}
	}
	return broken
}

func (d *StaticHunter) checkLink(ctx context.Context, link string) *report.BrokenLink {
	d.checkedMu.Lock()
	if res, ok := d.checked[link]; ok {
		d.checkedMu.Unlock()
		return res
	}
	d.checkedMu.Unlock()

	d.semaphore <- struct{}{}
	res := d.probe(ctx, link)
	<-d.semaphore

	// a cancelled check says nothing about the link
	if ctx.Err() != nil {
		return res
	}

	d.checkedMu.Lock()
	d.checked[link] = res
	d.checkedMu.Unlock()
	return res
}

// probe sends HEAD, falling back to GET for servers that refuse HEAD.
func (d *StaticHunter) probe(ctx context.Context, link string) *report.BrokenLink {
	d.log.Debug("checking link", logger.String("link", link))

	resp, err := d.links.R().SetContext(ctx).SetDoNotParseResponse(true).Head(link)
	if err == nil && rejectsHead(resp.StatusCode()) && !domain.IsBinaryFileUrl(link) {
		closeBody(resp)
		resp, err = d.links.R().SetContext(ctx).SetDoNotParseResponse(true).Get(link)
	}
	if err != nil {
		closeBody(resp)
		return &report.BrokenLink{URL: link, Err: errorText(err)}
	}
	defer closeBody(resp)

	if resp.StatusCode() >= http.StatusBadRequest {
		return &report.BrokenLink{URL: link, Status: resp.StatusCode()}
	}
	return nil
}

func countExternal(base string, links []string) int {
	host, err := domain.GetDomain(base)
	if err != nil {
		return 0
	}
	n := 0
	for _, link := range links {
		if !domain.IsSameDomain(host, link) {
			n++
		}
	}
	return n
}

func rejectsHead(status int) bool {
	return status == http.StatusMethodNotAllowed ||
		status == http.StatusNotImplemented ||
		status == http.StatusForbidden
}

func closeBody(resp *resty.Response) {
	if resp == nil {
		return
	}
	if body := resp.RawBody(); body != nil {
		_ = body.Close()
	}
}

// errorText drops the "Get \"url\":" prefix that net/http adds.
func errorText(err error) string {
	var uErr *url.Error
	if errors.As(err, &uErr) {
		return uErr.Err.Error()
	}
	return err.Error()
}
