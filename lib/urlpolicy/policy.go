// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package urlpolicy

import (
	"fmt"
	"strings"
)

// LinkPolicy gates which links compile to interactive runs.
type LinkPolicy struct {
	AllowedSchemes []string
	// AllowedHosts restricts hosts when non-nil. See [IsAllowed].
	AllowedHosts []string
}

// DefaultLinkPolicy allows http, https, and mailto links to any host.
func DefaultLinkPolicy() LinkPolicy {
	return LinkPolicy{AllowedSchemes: []string{"http", "https", "mailto"}}
}

// Allows reports whether rawURL may be rendered as an interactive link.
func (policy LinkPolicy) Allows(rawURL string) bool {
	return IsAllowed(rawURL, policy.AllowedSchemes, policy.AllowedHosts)
}

// ImageMode selects when an allowed image is fetched.
type ImageMode int

const (
	// ImagesDisabled never fetches.
	ImagesDisabled ImageMode = iota
	// ImagesTapToLoad fetches an allowed image only after the user asks.
	ImagesTapToLoad
	// ImagesAllow fetches an allowed image as soon as it is displayed.
	ImagesAllow
)

var imageModeNames = map[ImageMode]string{
	ImagesDisabled:  "disabled",
	ImagesTapToLoad: "tap_to_load",
	ImagesAllow:     "allow",
}

func (mode ImageMode) String() string {
	if name, ok := imageModeNames[mode]; ok {
		return name
	}
	return fmt.Sprintf("ImageMode(%d)", int(mode))
}

// ParseImageMode converts a configuration string ("disabled",
// "tap_to_load", "allow") into an ImageMode.
func ParseImageMode(value string) (ImageMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for mode, name := range imageModeNames {
		if name == normalized {
			return mode, nil
		}
	}
	return ImagesDisabled, fmt.Errorf("unknown image mode %q (expected disabled, tap_to_load, or allow)", value)
}

// ImagePolicy gates whether and when an image fetch starts.
type ImagePolicy struct {
	Mode           ImageMode
	AllowedSchemes []string
	// AllowedHosts restricts hosts when non-nil. See [IsAllowed].
	AllowedHosts []string
}

// DisabledImages returns a policy that never fetches.
func DisabledImages() ImagePolicy {
	return ImagePolicy{Mode: ImagesDisabled}
}

// TapToLoadImages returns a policy that fetches allow-listed images on
// explicit user action.
func TapToLoadImages(allowedSchemes, allowedHosts []string) ImagePolicy {
	return ImagePolicy{Mode: ImagesTapToLoad, AllowedSchemes: allowedSchemes, AllowedHosts: allowedHosts}
}

// AllowImages returns a policy that fetches allow-listed images
// automatically.
func AllowImages(allowedSchemes, allowedHosts []string) ImagePolicy {
	return ImagePolicy{Mode: ImagesAllow, AllowedSchemes: allowedSchemes, AllowedHosts: allowedHosts}
}

// ImageDecision is what a host should do with one image.
type ImageDecision int

const (
	// ImageBlocked: never fetch; show a blocked placeholder.
	ImageBlocked ImageDecision = iota
	// ImageAwaitTap: fetch only after the user asks.
	ImageAwaitTap
	// ImageFetch: fetch now.
	ImageFetch
)

func (decision ImageDecision) String() string {
	switch decision {
	case ImageBlocked:
		return "blocked"
	case ImageAwaitTap:
		return "await_tap"
	case ImageFetch:
		return "fetch"
	default:
		return fmt.Sprintf("ImageDecision(%d)", int(decision))
	}
}

// Decide applies the policy to rawURL.
func (policy ImagePolicy) Decide(rawURL string) ImageDecision {
	if policy.Mode == ImagesDisabled {
		return ImageBlocked
	}
	if !IsAllowed(rawURL, policy.AllowedSchemes, policy.AllowedHosts) {
		return ImageBlocked
	}
	if policy.Mode == ImagesTapToLoad {
		return ImageAwaitTap
	}
	return ImageFetch
}

// ConfirmationMode selects which links need confirmation before
// navigation. The zero value is ConfirmAlways.
type ConfirmationMode int

const (
	// ConfirmAlways requires confirmation for every link.
	ConfirmAlways ConfirmationMode = iota
	// ConfirmUnsafeOnly requires confirmation unless the link is safe.
	ConfirmUnsafeOnly
)

func (mode ConfirmationMode) String() string {
	switch mode {
	case ConfirmAlways:
		return "always"
	case ConfirmUnsafeOnly:
		return "unsafe_only"
	default:
		return fmt.Sprintf("ConfirmationMode(%d)", int(mode))
	}
}

// ParseConfirmationMode converts "always" or "unsafe_only" into a
// ConfirmationMode.
func ParseConfirmationMode(value string) (ConfirmationMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "always":
		return ConfirmAlways, nil
	case "unsafe_only":
		return ConfirmUnsafeOnly, nil
	default:
		return ConfirmAlways, fmt.Errorf("unknown confirmation mode %q (expected always or unsafe_only)", value)
	}
}

// LinkSafetyPolicy decides whether navigating a link needs explicit
// user confirmation.
type LinkSafetyPolicy struct {
	Confirmation ConfirmationMode
	SafeSchemes  []string
	SafeHosts    []string
	// SafeHostSuffixes match the host itself or any subdomain:
	// "example.com" covers "example.com" and "docs.example.com" but
	// not "badexample.com". A leading dot is ignored.
	SafeHostSuffixes []string
}

// RequiresConfirmation reports whether the user must confirm before
// navigating to rawURL.
func (policy LinkSafetyPolicy) RequiresConfirmation(rawURL string) bool {
	if policy.Confirmation == ConfirmAlways {
		return true
	}
	return !policy.IsSafe(rawURL)
}

// IsSafe reports whether rawURL's scheme is a safe scheme and its host
// is a safe host or falls under a safe host suffix.
func (policy LinkSafetyPolicy) IsSafe(rawURL string) bool {
	parsed, ok := parse(rawURL)
	if !ok || parsed.host == "" {
		return false
	}
	if !containsFold(policy.SafeSchemes, parsed.scheme) {
		return false
	}
	if containsFold(policy.SafeHosts, parsed.host) {
		return true
	}
	for _, suffix := range policy.SafeHostSuffixes {
		if hostHasSuffix(parsed.host, suffix) {
			return true
		}
	}
	return false
}

// hostHasSuffix reports whether host equals suffix or ends with
// "."+suffix. host must already be lower case.
func hostHasSuffix(host, suffix string) bool {
	suffix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(suffix), "."))
	if suffix == "" {
		return false
	}
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}
