// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imagefetch is the host-side collaborator that loads images
// referenced by a rendered markdown tree.
//
// Parsing never touches the network. Once a tree is displayed, the
// host hands its images to a [Manager], which consults the
// [urlpolicy.ImagePolicy] for each one:
//
//   - blocked (policy disabled, or URL not allow-listed): never fetched
//   - tap to load: waits for [Manager.Load]
//   - allow: fetched immediately
//
// Every fetch runs in its own goroutine under its own cancellable
// context. There is no ordering between fetches. A failed fetch marks
// its image [StateFailed] so the host can show a placeholder; failures
// never propagate anywhere else.
//
// Content changes (including each chunk of a streaming response)
// produce a whole new tree. [Manager.Replace] takes the new tree's
// images: fetches for images that are no longer present are
// cancelled, new images start fresh, and an image present in both
// trees keeps whatever state it had. Images are identified by a
// BLAKE3 digest of their URL ([KeyFor]).
package imagefetch
