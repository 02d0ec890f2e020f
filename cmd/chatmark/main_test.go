// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/chatmark/lib/config"
	"github.com/bureau-foundation/chatmark/lib/treedump"
)

// runCommand runs the command with input on stdin and returns stdout,
// stderr, and the error.
func runCommand(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(input), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

func TestRenderANSIFromStdin(t *testing.T) {
	stdout, _, err := runCommand(t, "# Title\n\nsome **bold** text", "--width", "40")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	plain := ansi.Strip(stdout)
	if !strings.Contains(plain, "Title") || !strings.Contains(plain, "some bold text") {
		t.Errorf("unexpected output:\n%s", plain)
	}
	if !strings.HasSuffix(stdout, "\n") {
		t.Error("expected trailing newline")
	}
}

func TestRenderANSIWrapsToWidth(t *testing.T) {
	stdout, _, err := runCommand(t, strings.Repeat("lorem ipsum ", 20), "--width", "30")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSuffix(stdout, "\n"), "\n") {
		if width := ansi.StringWidth(line); width > 30 {
			t.Errorf("expected lines of at most 30 columns, got %d: %q", width, line)
		}
	}
}

func TestRenderEmptyInput(t *testing.T) {
	stdout, _, err := runCommand(t, "", "--format", "ansi")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected no output for empty input, got %q", stdout)
	}
}

func TestRenderHTML(t *testing.T) {
	stdout, _, err := runCommand(t, "# Hi\n\n[docs](https://example.com)", "--format", "html")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "<h1>Hi</h1>") {
		t.Errorf("expected heading markup, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, `href="https://example.com"`) {
		t.Errorf("expected link markup, got:\n%s", stdout)
	}
}

func TestRenderJSON(t *testing.T) {
	stdout, _, err := runCommand(t, "# Hi\n\n```go\nx\n```", "--format", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var nodes []treedump.Node
	if err := json.Unmarshal([]byte(stdout), &nodes); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, stdout)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 items, got %d", len(nodes))
	}
	if nodes[0].Kind != treedump.KindTextGroup || nodes[1].Kind != treedump.KindCodeBlock {
		t.Errorf("unexpected kinds %q, %q", nodes[0].Kind, nodes[1].Kind)
	}
	if nodes[1].Language != "go" || nodes[1].Text != "x" {
		t.Errorf("unexpected code block %+v", nodes[1])
	}
}

func TestRenderCBORIsDeterministic(t *testing.T) {
	input := "| a | b |\n|---|---|\n| 1 | 2 |\n\nsee ![cat](https://img.example/cat.png)"
	first, _, err := runCommand(t, input, "--format", "cbor")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, _, err := runCommand(t, input, "--format", "cbor")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first != second {
		t.Error("expected byte-identical CBOR for identical input")
	}
	nodes, err := treedump.DecodeCBOR([]byte(first))
	if err != nil {
		t.Fatalf("decoding CBOR: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Kind != treedump.KindTable {
		t.Errorf("unexpected nodes %+v", nodes)
	}
}

func TestRenderCBORDiagnostic(t *testing.T) {
	stdout, _, err := runCommand(t, "# Hi", "--format", "cbor-diag")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout, "[") || !strings.HasSuffix(stdout, "\n") {
		t.Errorf("expected a diagnostic array on one line, got %q", stdout)
	}
	for _, want := range []string{`"kind"`, `"text_group"`, `"heading"`, `"Hi"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected diagnostic to contain %s, got %s", want, stdout)
		}
	}
}

func TestReadsFileArgument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("from a file"), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := runCommand(t, "ignored stdin", "--format", "html", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "<p>from a file</p>\n" {
		t.Errorf("expected file content rendered, got %q", stdout)
	}
}

func TestDashReadsStdin(t *testing.T) {
	stdout, _, err := runCommand(t, "from stdin", "--format", "html", "-")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "<p>from stdin</p>\n" {
		t.Errorf("expected stdin rendered, got %q", stdout)
	}
}

func TestMissingFile(t *testing.T) {
	_, _, err := runCommand(t, "", filepath.Join(t.TempDir(), "absent.md"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
	if code := exitCode(err); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestConfigFileAppliesPolicies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatmark.yaml")
	contents := "images:\n  mode: allow\n  allowed_schemes: [https]\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	input := "![cat](https://img.example/cat.png)"

	stdout, _, err := runCommand(t, input, "--format", "html", "--config", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "<img ") {
		t.Errorf("expected <img> under allow mode, got %q", stdout)
	}

	stdout, _, err = runCommand(t, input, "--format", "html")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(stdout, "<img ") {
		t.Errorf("expected no <img> under the default tap-to-load mode, got %q", stdout)
	}
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatmark.yaml")
	if err := os.WriteFile(path, []byte("images:\n  mode: sometimes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCommand(t, "x", "--config", path)
	if err == nil || !strings.Contains(err.Error(), "sometimes") {
		t.Errorf("expected validation error naming the bad mode, got %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown format", args: []string{"--format", "pdf"}},
		{name: "unknown flag", args: []string{"--colour"}},
		{name: "negative width", args: []string{"--width", "-1"}},
		{name: "stream without view", args: []string{"--stream", "10ms"}},
		{name: "log output without view", args: []string{"--log-output", "x.log"}},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
		{name: "two files", args: []string{"a.md", "b.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCommand(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := exitCode(err); code != 2 {
				t.Errorf("expected exit code 2, got %d (%v)", code, err)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := runCommand(t, "", "--version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout, "chatmark ") {
		t.Errorf("expected version line, got %q", stdout)
	}
}

func TestHelp(t *testing.T) {
	stdout, stderr, err := runCommand(t, "", "--help")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout != "" {
		t.Errorf("expected help on stderr only, got stdout %q", stdout)
	}
	if !strings.Contains(stderr, "Usage:") || !strings.Contains(stderr, "--format") {
		t.Errorf("unexpected help text:\n%s", stderr)
	}
}
