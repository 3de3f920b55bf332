package hash

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMD5Hasher_HashFile(t *testing.T) {
	tmpDir := t.TempDir()
	hasher := NewMD5Hasher()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty archive", "", "d41d8cd98f00b204e9800998ecf8427e"},
		{"known content", "hello world", "5eb63bbbe01eeed093cb22bb8f5acdc3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+".7z")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			got, err := hasher.HashFile(path)
			if err != nil {
				t.Fatalf("HashFile failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("HashFile() = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("non-existent file returns error", func(t *testing.T) {
		if _, err := hasher.HashFile(filepath.Join(tmpDir, "missing.7z")); err == nil {
			t.Error("expected error for non-existent file, got nil")
		}
	})

	t.Run("directory returns error", func(t *testing.T) {
		if _, err := hasher.HashFile(tmpDir); err == nil {
			t.Error("expected error for a directory, got nil")
		}
	})
}

func TestFakeHasher(t *testing.T) {
	hasher := NewFakeHasher()
	errBoom := errors.New("boom")
	hasher.SetHash("/mods/a.7z", "hash-a")
	hasher.SetError("/mods/b.7z", errBoom)

	if got, err := hasher.HashFile("/mods/a.7z"); err != nil || got != "hash-a" {
		t.Errorf("HashFile(a) = %q, %v", got, err)
	}
	if _, err := hasher.HashFile("/mods/b.7z"); !errors.Is(err, errBoom) {
		t.Errorf("HashFile(b) error = %v, want %v", err, errBoom)
	}
	if got, _ := hasher.HashFile("/mods/c.7z"); got != "fakehash" {
		t.Errorf("HashFile(c) = %q, want fakehash", got)
	}
}
