package review

import (
	"strings"

	"github.com/veridex/veridex/internal/item"
)

// SiteInList reports whether a document URL or domain belongs to one of the
// listed sites. The match is scheme independent when a host can be parsed
// out of the URL; otherwise a raw prefix match against the listed site URLs
// is attempted, and as a last resort the bare domain is compared against
// the listed hosts. Used to recognise fact-checker and social-media sites.
func SiteInList(rawURL, domain string, siteURLs []string) bool {
	hosts := make([]string, 0, len(siteURLs))
	for _, u := range siteURLs {
		if h := item.DomainFromURL(u); h != "" {
			hosts = append(hosts, h)
		}
	}
	if h := item.DomainFromURL(rawURL); h != "" {
		if hostIn(h, hosts) {
			return true
		}
	} else if rawURL != "" {
		// no parseable host, prefix matching is scheme dependent
		for _, u := range siteURLs {
			if strings.HasPrefix(rawURL, u) {
				return true
			}
		}
		return false
	}
	if domain == "" {
		return false
	}
	return hostIn(domain, hosts)
}

// SiteItemInList applies SiteInList to a WebSite item.
func SiteItemInList(site item.M, siteURLs []string) bool {
	if site == nil {
		return false
	}
	return SiteInList(item.Str(site, "url", ""), item.Str(site, "name", ""), siteURLs)
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if h == host {
			return true
		}
	}
	return false
}
