// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package shipfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeShipfile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ship.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing shipfile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeShipfile(t, "url: http://localhost:8080\ncode: lidlut-tabwed-pillex-ridrup\n")

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if file.URL != "http://localhost:8080" {
		t.Errorf("unexpected url: %s", file.URL)
	}

	code, err := file.ReadCode()
	if err != nil {
		t.Fatalf("ReadCode failed: %v", err)
	}
	defer code.Close()
	if code.String() != "lidlut-tabwed-pillex-ridrup" {
		t.Errorf("unexpected code: %q", code.String())
	}
}

func TestLoadCodeFile(t *testing.T) {
	dir := t.TempDir()
	codePath := filepath.Join(dir, "code")
	if err := os.WriteFile(codePath, []byte("lidlut-tabwed-pillex-ridrup\n"), 0o600); err != nil {
		t.Fatalf("writing code file: %v", err)
	}
	path := writeShipfile(t, "url: http://localhost:8080\ncode-file: "+codePath+"\n")

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	code, err := file.ReadCode()
	if err != nil {
		t.Fatalf("ReadCode failed: %v", err)
	}
	defer code.Close()
	if code.String() != "lidlut-tabwed-pillex-ridrup" {
		t.Errorf("unexpected code: %q", code.String())
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"missing url", "code: abc\n"},
		{"bad scheme", "url: ftp://localhost\ncode: abc\n"},
		{"missing code", "url: http://localhost:8080\n"},
		{"both code forms", "url: http://localhost:8080\ncode: abc\ncode-file: /tmp/code\n"},
		{"invalid yaml", "url: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeShipfile(t, tc.contents)); err == nil {
				t.Error("expected Load to fail")
			}
		})
	}
}

func TestPath(t *testing.T) {
	if got, err := Path("/explicit/ship.yaml"); err != nil || got != "/explicit/ship.yaml" {
		t.Errorf("Path with flag = %q, %v", got, err)
	}

	t.Setenv("AIRLOCK_SHIPFILE", "/env/ship.yaml")
	if got, err := Path(""); err != nil || got != "/env/ship.yaml" {
		t.Errorf("Path from env = %q, %v", got, err)
	}

	t.Setenv("AIRLOCK_SHIPFILE", "")
	if _, err := Path(""); err == nil {
		t.Error("expected error when nothing is set")
	}
}
