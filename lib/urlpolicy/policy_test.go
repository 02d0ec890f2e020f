// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package urlpolicy

import "testing"

func TestIsAllowed(t *testing.T) {
	schemes := []string{"https", "MAILTO"}
	tests := []struct {
		name  string
		url   string
		hosts []string
		want  bool
	}{
		{"scheme allowed, no host list", "https://anything.test/x", nil, true},
		{"scheme case ignored", "HTTPS://anything.test", nil, true},
		{"configured scheme case ignored", "mailto:someone@example.com", nil, true},
		{"scheme not allowed", "http://example.com", nil, false},
		{"javascript rejected", "javascript:alert(1)", nil, false},
		{"relative rejected", "/just/a/path", nil, false},
		{"empty rejected", "", nil, false},
		{"unparsable rejected", "https://[::1", nil, false},
		{"host in list", "https://example.com/a", []string{"example.com"}, true},
		{"host case ignored", "https://EXAMPLE.com/a", []string{"Example.COM"}, true},
		{"port ignored", "https://example.com:8443/a", []string{"example.com"}, true},
		{"subdomain not exact", "https://www.example.com", []string{"example.com"}, false},
		{"empty host list allows nothing", "https://example.com", []string{}, false},
		{"hostless url with host list", "mailto:a@example.com", []string{"example.com"}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsAllowed(test.url, schemes, test.hosts); got != test.want {
				t.Errorf("IsAllowed(%q, hosts=%v): expected %v, got %v", test.url, test.hosts, test.want, got)
			}
		})
	}
}

func TestLinkPolicy(t *testing.T) {
	policy := DefaultLinkPolicy()
	if !policy.Allows("http://x.test") {
		t.Error("expected default policy to allow http")
	}
	if policy.Allows("file:///etc/passwd") {
		t.Error("expected default policy to reject file URLs")
	}

	restricted := LinkPolicy{AllowedSchemes: []string{"https"}, AllowedHosts: []string{"docs.test"}}
	if !restricted.Allows("https://docs.test/page") {
		t.Error("expected allow-listed host to be allowed")
	}
	if restricted.Allows("https://other.test/page") {
		t.Error("expected other host to be rejected")
	}
}

func TestImagePolicyDecide(t *testing.T) {
	schemes := []string{"https"}
	hosts := []string{"img.test"}
	tests := []struct {
		name   string
		policy ImagePolicy
		url    string
		want   ImageDecision
	}{
		{"disabled blocks everything", DisabledImages(), "https://img.test/a.png", ImageBlocked},
		{"tap to load waits", TapToLoadImages(schemes, hosts), "https://img.test/a.png", ImageAwaitTap},
		{"tap to load blocks other host", TapToLoadImages(schemes, hosts), "https://evil.test/a.png", ImageBlocked},
		{"allow fetches", AllowImages(schemes, nil), "https://anywhere.test/a.png", ImageFetch},
		{"allow blocks bad scheme", AllowImages(schemes, nil), "http://anywhere.test/a.png", ImageBlocked},
		{"data url blocked", AllowImages(schemes, nil), "data:image/png;base64,AAAA", ImageBlocked},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.policy.Decide(test.url); got != test.want {
				t.Errorf("Decide(%q): expected %v, got %v", test.url, test.want, got)
			}
		})
	}
}

func TestLinkSafetyPolicy(t *testing.T) {
	policy := LinkSafetyPolicy{
		Confirmation: ConfirmUnsafeOnly,
		SafeSchemes:  []string{"https"},
		SafeHosts:    []string{"example.com"},
	}
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/x", false},
		{"https://EXAMPLE.COM/x", false},
		{"https://evil.com", true},
		{"ftp://example.com", true},
		{"https://sub.example.com", true},
		{"not a url", true},
	}
	for _, test := range tests {
		if got := policy.RequiresConfirmation(test.url); got != test.want {
			t.Errorf("RequiresConfirmation(%q): expected %v, got %v", test.url, test.want, got)
		}
	}

	policy.Confirmation = ConfirmAlways
	if !policy.RequiresConfirmation("https://example.com/x") {
		t.Error("expected ConfirmAlways to require confirmation for safe links")
	}
}

func TestLinkSafetyPolicySuffixes(t *testing.T) {
	policy := LinkSafetyPolicy{
		Confirmation:     ConfirmUnsafeOnly,
		SafeSchemes:      []string{"https"},
		SafeHostSuffixes: []string{"example.com", ".Docs.Test", ""},
	}
	tests := []struct {
		url  string
		safe bool
	}{
		{"https://example.com", true},
		{"https://a.b.example.com/path", true},
		{"https://badexample.com", false},
		{"https://example.com.evil.test", false},
		{"https://docs.test", true},
		{"https://api.docs.test", true},
		{"https://other.test", false},
	}
	for _, test := range tests {
		if got := policy.IsSafe(test.url); got != test.safe {
			t.Errorf("IsSafe(%q): expected %v, got %v", test.url, test.safe, got)
		}
	}
}

func TestZeroValueSafetyPolicyConfirmsEverything(t *testing.T) {
	var policy LinkSafetyPolicy
	if !policy.RequiresConfirmation("https://example.com") {
		t.Error("expected zero-value policy to require confirmation")
	}
}

func TestParseModes(t *testing.T) {
	for _, mode := range []ImageMode{ImagesDisabled, ImagesTapToLoad, ImagesAllow} {
		parsed, err := ParseImageMode(mode.String())
		if err != nil || parsed != mode {
			t.Errorf("ParseImageMode(%q): expected %v, got %v (err %v)", mode.String(), mode, parsed, err)
		}
	}
	if _, err := ParseImageMode("sometimes"); err == nil {
		t.Error("expected error for unknown image mode")
	}

	for _, mode := range []ConfirmationMode{ConfirmAlways, ConfirmUnsafeOnly} {
		parsed, err := ParseConfirmationMode(mode.String())
		if err != nil || parsed != mode {
			t.Errorf("ParseConfirmationMode(%q): expected %v, got %v (err %v)", mode.String(), mode, parsed, err)
		}
	}
	if _, err := ParseConfirmationMode("never"); err == nil {
		t.Error("expected error for unknown confirmation mode")
	}
}
