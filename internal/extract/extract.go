// Package extract finds admissible outbound links in fetched pages. It
// performs the admission filtering (host restriction, allow/deny patterns)
// before candidates reach the frontier, so the frontier itself never needs
// to inspect page content.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor parses anchors out of HTML bodies and filters them down to
// crawlable same-site candidates.
type Extractor struct {
	host  string
	allow []*regexp.Regexp
	deny  []*regexp.Regexp
}

// New builds an Extractor restricted to the host of baseURL. Candidates
// matching any deny pattern are dropped; when allow patterns are present a
// candidate must match at least one of them.
func New(baseURL string, allowPatterns, denyPatterns []string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}

	allow, err := compilePatterns(allowPatterns)
	if err != nil {
		return nil, fmt.Errorf("compile allow patterns: %w", err)
	}
	deny, err := compilePatterns(denyPatterns)
	if err != nil {
		return nil, fmt.Errorf("compile deny patterns: %w", err)
	}

	// Treat "www.x.edu" as the site "x.edu" so sibling subdomains stay
	// crawlable.
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	return &Extractor{
		host:  host,
		allow: allow,
		deny:  deny,
	}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Extract returns the unique admissible absolute URLs linked from the page.
// Non-HTML bodies yield no candidates.
func (e *Extractor) Extract(pageURL string, contentType string, body []byte) []string {
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var candidates []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		resolved := e.admit(base, href)
		if resolved == "" {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		candidates = append(candidates, resolved)
	})
	return candidates
}

// admit resolves href against base and applies the admission filters,
// returning the absolute URL or "" when the candidate is rejected.
func (e *Extractor) admit(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if !e.sameSite(resolved.Hostname()) {
		return ""
	}

	full := resolved.String()
	for _, re := range e.deny {
		if re.MatchString(full) {
			return ""
		}
	}
	if len(e.allow) > 0 {
		matched := false
		for _, re := range e.allow {
			if re.MatchString(full) {
				matched = true
				break
			}
		}
		if !matched {
			return ""
		}
	}
	return full
}

// sameSite accepts the configured host and its subdomains.
func (e *Extractor) sameSite(host string) bool {
	host = strings.ToLower(host)
	return host == e.host || strings.HasSuffix(host, "."+e.host)
}
