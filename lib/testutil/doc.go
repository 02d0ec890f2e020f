// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for chatmark packages.
//
// [RequireReceive] encapsulates the timeout safety valve for tests
// that wait on a channel fed by another goroutine (image fetches,
// viewer commands): a select with a time.After fallback that fails the
// test instead of hanging it. These helpers are the only place tests
// use real wall-clock timeouts.
//
// Helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
