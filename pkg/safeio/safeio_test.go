package safeio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "guide.md", expected: "guide.md"},
		{name: "spaces", input: "my guide.md", expected: "my_guide.md"},
		{name: "unicode", input: "résumé.md", expected: "r_sum_.md"},
		{name: "dashes and underscores kept", input: "a-b_c.markdown", expected: "a-b_c.markdown"},
		{name: "separators replaced", input: `a/b\c.md`, expected: "a_b_c.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReadFileContained(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "docs", "a.md")
	if err := os.MkdirAll(filepath.Dir(inside), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(inside, []byte("# A\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := ReadFileContained(base, inside)
	if err != nil {
		t.Fatalf("expected read to succeed: %v", err)
	}
	if string(data) != "# A\n" {
		t.Errorf("unexpected content %q", data)
	}

	outside := filepath.Join(t.TempDir(), "b.md")
	if err := os.WriteFile(outside, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFileContained(base, outside); err == nil || !strings.Contains(err.Error(), "outside base directory") {
		t.Errorf("expected containment error, got %v", err)
	}
}

func TestWriteFileContained(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "guide.md-1.mmd")

	if err := WriteFileContained(base, target, []byte("graph TD\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len("graph TD\n")) {
		t.Errorf("unexpected size %d", info.Size())
	}

	if err := WriteFileContained(base, filepath.Join(base, "..", "escape.mmd"), []byte("x")); err == nil {
		t.Error("expected traversal to be rejected")
	}
}

func TestWriteFileContained_ErrorNamesPathOnce(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "blocked.mmd")
	if err := os.Mkdir(target, 0o750); err != nil {
		t.Fatal(err)
	}

	err := WriteFileContained(base, target, []byte("x"))
	if err == nil {
		t.Fatal("expected writing over a directory to fail")
	}
	if n := strings.Count(err.Error(), "blocked.mmd"); n != 1 {
		t.Errorf("expected path once in %q, found %d", err.Error(), n)
	}
}
