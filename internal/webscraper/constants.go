package webscraper

const (
	MaxDropdownSnippet = 80 // characters of outer HTML kept per detected dropdown
	MaxConcurrency     = 20 // default number of concurrent link requests
	MaxLinksPerPage    = 10 // default number of links checked per page
)

// textSkipTags never contribute visible text.
var textSkipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "svg": true, "head": true,
}

// blockTags end a line of visible text.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true, "footer": true,
	"nav": true, "aside": true, "main": true, "li": true, "ul": true, "ol": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "table": true, "blockquote": true, "summary": true,
	"details": true, "button": true, "form": true, "label": true, "figcaption": true,
}
