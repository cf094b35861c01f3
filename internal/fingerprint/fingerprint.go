// Package fingerprint canonicalizes URLs into fixed-size identifiers used as
// dedup ledger keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	"github.com/campussearch/crawler/internal/crawler"
)

// Fingerprinter implements crawler.Fingerprinter by hashing a normalized URL
// with SHA-256.
type Fingerprinter struct{}

// New returns a Fingerprinter.
func New() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint normalizes rawURL and returns the hex digest of the normalized
// form. Two URLs that differ only by fragment, query parameter order, or a
// trailing slash map to the same fingerprint.
func (f *Fingerprinter) Fingerprint(rawURL string) (crawler.Fingerprint, error) {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(normalized))
	return crawler.Fingerprint(hex.EncodeToString(sum[:])), nil
}

// Normalize standardizes a URL so equivalent spellings compare equal.
// It lowercases the scheme and host, strips default ports, removes the
// fragment, sorts query parameters by key, and trims a single trailing slash
// from the path unless the path is exactly "/".
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", &crawler.InvalidURLError{URL: rawURL, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &crawler.InvalidURLError{URL: rawURL, Err: errors.New("missing scheme or host")}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	switch {
	case u.Scheme == "http":
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https":
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawFragment = ""

	// Encode sorts by key and preserves the relative order of repeated
	// values, which is the stable ordering the ledger key requires. Queries
	// ParseQuery rejects (semicolon separators, malformed escapes) are kept
	// verbatim: re-encoding them would drop pairs and collide distinct URLs.
	if u.RawQuery != "" {
		if q, err := url.ParseQuery(u.RawQuery); err == nil {
			u.RawQuery = q.Encode()
		}
	}

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}

	return u.String(), nil
}
