// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for chatmark.
//
// Configuration is loaded from a single file specified by either the
// CHATMARK_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no merging of several
// files. Values absent from the file keep their [Default].
//
// Files are YAML. Files ending in .json or .jsonc are JSON with
// comments and trailing commas allowed; they are normalized with
// tidwall/jsonc and then decoded by the same YAML decoder.
//
// Key exports:
//
//   - [Config] -- links, images, link_safety, and layout sections
//   - [Default] -- the built-in policy
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Policies] -- conversion to lib/urlpolicy value objects
package config
