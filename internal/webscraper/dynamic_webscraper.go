package webscraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/report"
)

// Prober drives a real browser over a page and adds what it finds to res.
type Prober interface {
	Probe(ctx context.Context, url string, res *report.PageResult)
	Close() error
}

// DynamicHunter owns one Playwright driver, one headless Chromium and one
// browser context for the whole run. Probe is not safe for concurrent use.
type DynamicHunter struct {
	options  config.BrowserConfig
	log      logger.Logger
	pwClient *playwright.Playwright
	browser  playwright.Browser
	context  playwright.BrowserContext
}

func NewDynamicHunter(options config.BrowserConfig, userAgent string, log logger.Logger) (*DynamicHunter, error) {
	pw, err := playwright.Run(&playwright.RunOptions{
		SkipInstallBrowsers: !options.InstallBrowsers,
		Browsers:            []string{"chromium"},
	})
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	bctx.SetDefaultNavigationTimeout(milliseconds(options.NavigationTimeout))
	bctx.SetDefaultTimeout(milliseconds(options.ActionTimeout))

	return &DynamicHunter{
		options:  options,
		log:      log,
		pwClient: pw,
		browser:  browser,
		context:  bctx,
	}, nil
}

func (dh *DynamicHunter) Probe(ctx context.Context, url string, res *report.PageResult) {
	log := dh.log.With(logger.String("url", url))
	if ctx.Err() != nil {
		res.AddNote("Browser check skipped: %v", ctx.Err())
		return
	}

	page, err := dh.context.NewPage()
	if err != nil {
		res.AddNote("Browser page could not be opened: %v", err)
		return
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("closing browser page", logger.Error(err))
		}
	}()

	var consoleMu sync.Mutex
	var consoleErrors []string
	page.OnConsole(func(msg playwright.ConsoleMessage) {
		if msg.Type() != "error" {
			return
		}
		consoleMu.Lock()
		consoleErrors = append(consoleErrors, msg.Text())
		consoleMu.Unlock()
	})

	log.Info("fetching dynamic page")
	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		res.AddNote("Error loading page: %v", err)
		return
	}
	if resp != nil && resp.Status() >= 400 {
		res.AddNote("Browser received HTTP %d", resp.Status())
	}

	steps := []func(playwright.Page, *report.PageResult){
		dh.probeToggle,
		dh.probeAccordion,
		dh.hoverLinks,
	}
	for _, step := range steps {
		if ctx.Err() != nil {
			res.AddNote("Browser check interrupted: %v", ctx.Err())
			break
		}
		step(page, res)
	}

	consoleMu.Lock()
	defer consoleMu.Unlock()
	limit := min(len(consoleErrors), dh.options.MaxConsoleErrors)
	res.ConsoleErrors = append(res.ConsoleErrors, consoleErrors[:limit]...)
	if extra := len(consoleErrors) - limit; extra > 0 {
		res.AddNote("%d more console errors not shown", extra)
	}
	log.Info("dynamic page probed",
		logger.Int("console_errors", len(consoleErrors)),
		logger.Int("hover_failures", len(res.HoverFailures)))
}

// probeToggle clicks the first dropdown toggle and waits for its menu.
func (dh *DynamicHunter) probeToggle(page playwright.Page, res *report.PageResult) {
	sel := dh.options.ToggleSelector
	toggles := page.Locator(sel)
	count, err := toggles.Count()
	if err != nil || count == 0 {
		res.AddNote("No %s element found", sel)
		return
	}

	if err := toggles.First().Click(); err != nil {
		res.Dropdowns = append(res.Dropdowns, report.DropdownResult{
			Target:  sel,
			Outcome: report.OutcomeFail,
			Detail:  fmt.Sprintf("Dropdown could not be clicked: %v", shortError(err)),
		})
		return
	}

	err = page.Locator(dh.options.MenuSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	})
	if err != nil {
		res.Dropdowns = append(res.Dropdowns, report.DropdownResult{
			Target:  sel,
			Outcome: report.OutcomeFail,
			Detail:  "Dropdown did not open after click",
		})
		return
	}
	res.Dropdowns = append(res.Dropdowns, report.DropdownResult{
		Target:  sel,
		Outcome: report.OutcomePass,
		Detail:  "Dropdown opened successfully",
	})
}

const accordionSelector = "details > summary"

// probeAccordion clicks the first <summary> and requires its <details> to be
// open afterwards.
func (dh *DynamicHunter) probeAccordion(page playwright.Page, res *report.PageResult) {
	summary := page.Locator(accordionSelector).First()
	count, err := page.Locator(accordionSelector).Count()
	if err != nil || count == 0 {
		return
	}

	var open interface{}
	if err = summary.Click(); err == nil {
		open, err = summary.Evaluate("el => el.parentElement.open", nil)
	}
	res.Dropdowns = append(res.Dropdowns, accordionResult(open, err))
}

func accordionResult(open interface{}, err error) report.DropdownResult {
	result := report.DropdownResult{Target: accordionSelector}
	switch {
	case err != nil:
		result.Outcome = report.OutcomeFail
		result.Detail = fmt.Sprintf("Accordion could not be clicked: %v", shortError(err))
	case open != true:
		result.Outcome = report.OutcomeFail
		result.Detail = "Accordion did not open after click"
	default:
		result.Outcome = report.OutcomePass
		result.Detail = "Accordion opened successfully"
	}
	return result
}

// hoverLinks scrolls to and hovers the first HoverLinks anchors.
func (dh *DynamicHunter) hoverLinks(page playwright.Page, res *report.PageResult) {
	links, err := page.Locator("a").All()
	if err != nil {
		res.AddNote("Links could not be listed: %v", shortError(err))
		return
	}
	if len(links) == 0 {
		res.AddNote("No links found")
		return
	}

	for _, link := range links[:min(len(links), dh.options.HoverLinks)] {
		href, _ := link.GetAttribute("href")
		if href == "" {
			href = "(no href)"
		}
		err := link.ScrollIntoViewIfNeeded()
		if err == nil {
			err = link.Hover()
		}
		if err != nil {
			dh.log.Debug("link not interactable", logger.String("href", href), logger.Error(err))
			res.HoverFailures = append(res.HoverFailures, href)
		}
	}
}

func (dh *DynamicHunter) Close() error {
	var errs []error
	if dh.context != nil {
		errs = append(errs, dh.context.Close())
	}
	if dh.browser != nil {
		errs = append(errs, dh.browser.Close())
	}
	if dh.pwClient != nil {
		errs = append(errs, dh.pwClient.Stop())
	}
	return errors.Join(errs...)
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

// shortError keeps only the first line of Playwright's multi-line errors.
func shortError(err error) string {
	msg := err.Error()
	for i, r := range msg {
		if r == '\n' {
			return msg[:i]
		}
	}
	return msg
}
