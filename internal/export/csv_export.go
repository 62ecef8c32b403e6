package export

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/yingtu35/doombot/internal/report"
)

type BrokenLinkRow struct {
	Page       string `csv:"Page,omitempty"`
	Counts     string `csv:"Counts,omitempty"`
	BrokenLink string `csv:"Broken Link"`
	Reason     string `csv:"Reason"`
}

type CSVExporter struct{}

func NewCSVExporter() Exporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Export(rep *report.Report, filename string) (string, error) {
	path := filename + ".csv"
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	rows := e.transformData(rep)
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("write csv %s: %w", path, err)
	}
	return path, nil
}

// transformData emits one row per broken link; page and count appear only on
// the first row of each page.
func (e *CSVExporter) transformData(rep *report.Report) []BrokenLinkRow {
	result := []BrokenLinkRow{}
	for _, page := range rep.Pages {
		for i, link := range page.BrokenLinks {
			row := BrokenLinkRow{BrokenLink: link.URL, Reason: link.Reason()}
			if i == 0 {
				row.Page = page.URL
				row.Counts = strconv.Itoa(len(page.BrokenLinks))
			}
			result = append(result, row)
		}
	}
	return result
}
