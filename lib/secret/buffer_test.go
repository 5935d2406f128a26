// Copyright 2026 The Airlock Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromBytes(t *testing.T) {
	source := []byte("lidlut-tabwed-pillex-ridrup")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "lidlut-tabwed-pillex-ridrup" {
		t.Errorf("unexpected contents: %q", got)
	}

	// The source slice must be zeroed so the secret no longer lives
	// on the Go heap.
	if !bytes.Equal(source, make([]byte, len(source))) {
		t.Error("source slice was not zeroed")
	}
}

func TestNewFromBytesEmpty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestNewInvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := New(-1); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestCloseIdempotent(t *testing.T) {
	buffer, err := NewFromBytes([]byte("cookie-value"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestAccessAfterClosePanics(t *testing.T) {
	buffer, err := NewFromBytes([]byte("cookie-value"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	buffer.Close()

	defer func() {
		if recover() == nil {
			t.Error("expected panic reading a closed buffer")
		}
	}()
	buffer.Bytes()
}

func TestReadFromPath(t *testing.T) {
	t.Run("trims whitespace and sig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "code")
		if err := os.WriteFile(path, []byte("  ~lidlut-tabwed-pillex-ridrup\n"), 0o600); err != nil {
			t.Fatalf("writing code file: %v", err)
		}

		buffer, err := ReadFromPath(path)
		if err != nil {
			t.Fatalf("ReadFromPath failed: %v", err)
		}
		defer buffer.Close()

		if got := buffer.String(); got != "lidlut-tabwed-pillex-ridrup" {
			t.Errorf("unexpected contents: %q", got)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "code")
		if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
			t.Fatalf("writing code file: %v", err)
		}
		if _, err := ReadFromPath(path); err == nil {
			t.Fatal("expected error for empty code file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
