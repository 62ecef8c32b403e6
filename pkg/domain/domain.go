package domain

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var (
	ErrEmptyHref      = errors.New("empty href")
	ErrAnchorHref     = errors.New("anchor link")
	ErrUnsupportedURL = errors.New("unsupported URL scheme")
)

// binaryExtensions are file types that are probed with HEAD only.
var binaryExtensions = map[string]bool{
	".pdf": true, ".zip": true, ".gz": true, ".tar": true, ".rar": true, ".7z": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true, ".ico": true,
	".mp3": true, ".mp4": true, ".mov": true, ".avi": true, ".webm": true,
	".exe": true, ".dmg": true, ".msi": true,
}

// GetDomain returns the host of a given URL without a leading "www."
func GetDomain(u string) (string, error) {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return "", errors.New("error parsing URL")
	}
	hostname := parsedUrl.Host
	if hostname == "" {
		// scheme-less input such as "example.com/path"
		hostname = strings.SplitN(parsedUrl.Path, "/", 2)[0]
	}
	hostname = strings.ToLower(hostname)
	return strings.TrimPrefix(hostname, "www."), nil
}

func IsSameDomain(domain string, u string) bool {
	d, err := GetDomain(u)
	return err == nil && domain == d
}

// ResolveURL resolves href against the page it was found on. Fragment-only
// links and non-HTTP schemes are rejected; the fragment is dropped from the
// result.
func ResolveURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyHref
	}
	if strings.HasPrefix(href, "#") {
		return "", ErrAnchorHref
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", ErrUnsupportedURL
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), nil
}

// IsBinaryFileUrl reports whether the URL points at a document, media or
// archive file rather than an HTML page.
func IsBinaryFileUrl(u string) bool {
	parsedUrl, err := url.Parse(u)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsedUrl.Path))
	return binaryExtensions[ext]
}
