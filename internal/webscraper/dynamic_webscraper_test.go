package webscraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yingtu35/doombot/internal/config"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/report"
)

func TestShortError(t *testing.T) {
	assert.Equal(t, "timeout 5000ms exceeded", shortError(errors.New("timeout 5000ms exceeded\n=== logs ===\nwaiting for locator")))
	assert.Equal(t, "plain", shortError(errors.New("plain")))
}

func TestAccordionResult(t *testing.T) {
	pass := accordionResult(true, nil)
	assert.Equal(t, report.OutcomePass, pass.Outcome)
	assert.Equal(t, "details > summary", pass.Target)

	// an accordion that starts open and closes on click is not a pass
	closed := accordionResult(false, nil)
	assert.Equal(t, report.OutcomeFail, closed.Outcome)
	assert.Equal(t, "Accordion did not open after click", closed.Detail)

	failed := accordionResult(nil, errors.New("element is not visible\ncall log"))
	assert.Equal(t, report.OutcomeFail, failed.Outcome)
	assert.Equal(t, "Accordion could not be clicked: element is not visible", failed.Detail)
}

// Needs Chromium installed for playwright-go.
func TestDynamicHunterProbe(t *testing.T) {
	if os.Getenv("DOOMBOT_PLAYWRIGHT") != "1" {
		t.Skip("set DOOMBOT_PLAYWRIGHT=1 to run browser tests")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<button class="dropdown-toggle" onclick="document.querySelector('.dropdown-menu').style.display='block'">Menu</button>
			<ul class="dropdown-menu" style="display:none"><li>Item</li></ul>
			<details><summary>FAQ</summary>Answer</details>
			<a href="/a">A</a>
			<script>console.error("boom")</script>
		</body></html>`)
	}))
	defer srv.Close()

	hunter, err := NewDynamicHunter(config.Default().Browser, "DoombotSiteChecker/1.0", logger.NewNop())
	require.NoError(t, err)
	defer hunter.Close()

	res := &report.PageResult{URL: srv.URL}
	hunter.Probe(context.Background(), srv.URL, res)

	require.Len(t, res.Dropdowns, 2)
	assert.Equal(t, report.OutcomePass, res.Dropdowns[0].Outcome)
	assert.Equal(t, report.OutcomePass, res.Dropdowns[1].Outcome)
	assert.Equal(t, []string{"boom"}, res.ConsoleErrors)
	assert.Empty(t, res.HoverFailures)
}
