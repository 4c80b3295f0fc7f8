package matcher

import (
	"net/url"
	"strings"

	"focusguard/internal/preset"
)

// Normalize lowercases a hostname and strips a single leading "www." so that
// stored sites and candidates compare on the same form.
func Normalize(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// HostOf extracts the hostname from a raw URL. Unparseable or host-less URLs
// report ok=false; matching fails closed on those.
func HostOf(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return u.Hostname(), true
}

// IsBlocked reports whether the URL's hostname equals, or is a subdomain of,
// any configured site or any member of an enabled preset.
func IsBlocked(rawURL string, sites []string, enabledPresets []string) bool {
	host, ok := HostOf(rawURL)
	if !ok {
		return false
	}
	h := Normalize(host)

	for _, s := range sites {
		if matches(h, Normalize(s)) {
			return true
		}
	}
	for _, id := range enabledPresets {
		p, ok := preset.Get(id)
		if !ok {
			continue
		}
		for _, s := range p.Sites {
			if matches(h, Normalize(s)) {
				return true
			}
		}
	}
	return false
}

func matches(host, site string) bool {
	if site == "" {
		return false
	}
	return host == site || strings.HasSuffix(host, "."+site)
}
