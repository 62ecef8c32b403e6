package report

import (
	"fmt"
	"io"

	"github.com/rodaine/table"
)

// PrintTable writes one row per broken link to w.
func PrintTable(w io.Writer, r *Report) {
	if r.BrokenLinkCount() == 0 {
		fmt.Fprintln(w, "No broken links found")
		return
	}

	tbl := table.New("Page", "Counts", "Broken Links", "Reason").WithWriter(w)
	for _, page := range r.Pages {
		for i, link := range page.BrokenLinks {
			if i == 0 {
				tbl.AddRow(page.URL, len(page.BrokenLinks), link.URL, link.Reason())
			} else {
				tbl.AddRow("", "", link.URL, link.Reason())
			}
		}
	}
	tbl.Print()
}
