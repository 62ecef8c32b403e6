package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/yingtu35/doombot/internal/report"
)

type MarkdownExporter struct{}

func NewMarkdownExporter() Exporter {
	return &MarkdownExporter{}
}

func (e *MarkdownExporter) Export(rep *report.Report, filename string) (string, error) {
	path := filename + ".md"
	if err := os.WriteFile(path, []byte(Markdown(rep)), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Markdown renders the full report followed by a per-page summary table.
func Markdown(rep *report.Report) string {
	var b strings.Builder
	b.WriteString(report.Format(rep, report.StyleMarkdown))
	b.WriteString("\n## Summary\n\n")
	b.WriteString(summaryTable(rep))
	b.WriteString("\n")
	return b.String()
}

func summaryTable(rep *report.Report) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Page", "Status", "Links checked", "Broken links", "Dropdowns", "Grammar issues"})
	for _, p := range rep.Pages {
		status := "ok"
		if p.Failed() {
			status = p.Error
		}
		tw.AppendRow(table.Row{
			p.URL,
			status,
			strconv.Itoa(p.LinksChecked),
			strconv.Itoa(len(p.BrokenLinks)),
			strconv.Itoa(len(p.Dropdowns)),
			strconv.Itoa(len(p.GrammarIssues)),
		})
	}
	tw.AppendFooter(table.Row{"Total", "", "", strconv.Itoa(rep.BrokenLinkCount()), "", strconv.Itoa(rep.GrammarIssueCount())})
	return tw.RenderMarkdown()
}
