package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yingtu35/doombot/internal/report"
)

type Record struct {
	Page         string   `json:"Page"`
	Error        string   `json:"Error,omitempty"`
	LinksChecked int      `json:"Links Checked"`
	Counts       int      `json:"Counts"`
	BrokenLinks  []string `json:"Broken Links"`
}

type jsonDocument struct {
	*report.Report
	Summary []Record `json:"summary"`
}

type JsonExporter struct{}

func NewJsonExporter() Exporter {
	return &JsonExporter{}
}

func (e *JsonExporter) Export(rep *report.Report, filename string) (string, error) {
	path := filename + ".json"
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jsonDocument{Report: rep, Summary: e.transformData(rep)}); err != nil {
		return "", fmt.Errorf("encode report to %s: %w", path, err)
	}
	return path, nil
}

func (e *JsonExporter) transformData(rep *report.Report) []Record {
	result := make([]Record, 0, len(rep.Pages))
	for _, page := range rep.Pages {
		links := make([]string, 0, len(page.BrokenLinks))
		for _, l := range page.BrokenLinks {
			links = append(links, l.URL)
		}
		result = append(result, Record{
			Page:         page.URL,
			Error:        page.Error,
			LinksChecked: page.LinksChecked,
			Counts:       len(page.BrokenLinks),
			BrokenLinks:  links,
		})
	}
	return result
}
