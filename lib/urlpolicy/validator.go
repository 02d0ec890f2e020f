// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package urlpolicy

import (
	"net/url"
	"strings"
)

// IsAllowed reports whether rawURL's scheme is in allowedSchemes and,
// when allowedHosts is non-nil, whether its host is one of
// allowedHosts. A nil allowedHosts places no restriction on the host;
// an empty non-nil slice allows no host at all. Comparisons ignore
// case. Host matching is exact: "www.example.com" does not match
// "example.com".
func IsAllowed(rawURL string, allowedSchemes []string, allowedHosts []string) bool {
	parsed, ok := parse(rawURL)
	if !ok {
		return false
	}
	if !containsFold(allowedSchemes, parsed.scheme) {
		return false
	}
	if allowedHosts == nil {
		return true
	}
	return parsed.host != "" && containsFold(allowedHosts, parsed.host)
}

// parsedURL is the normalized pair every policy decision looks at.
type parsedURL struct {
	scheme string
	host   string
}

// parse extracts the lower-cased scheme and host (without port) from
// rawURL. Relative URLs and URLs that do not parse are rejected.
func parse(rawURL string) (parsedURL, bool) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return parsedURL{}, false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" {
		return parsedURL{}, false
	}
	return parsedURL{
		scheme: strings.ToLower(parsed.Scheme),
		host:   strings.ToLower(parsed.Hostname()),
	}, true
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
