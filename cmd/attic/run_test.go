package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckNotNested(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    string
		wantErr bool
	}{
		{name: "siblings", a: "/data/archive", b: "/data/staging"},
		{name: "unrelated", a: "/data/archive", b: "/tmp/incoming"},
		{name: "staging inside archive", a: "/a", b: "/a/b", wantErr: true},
		{name: "archive inside staging", a: "/a/b", b: "/a", wantErr: true},
		{name: "same directory", a: "/a", b: "/a", wantErr: true},
		{name: "deeply nested", a: "/a", b: "/a/b/c/d", wantErr: true},
		{name: "shared prefix but not nested", a: "/data/arch", b: "/data/archive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := checkNotNested(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("checkNotNested(%q, %q) = nil, want error", tt.a, tt.b)
				}
				return
			}
			if err != nil {
				t.Fatalf("checkNotNested(%q, %q) = %v, want nil", tt.a, tt.b, err)
			}
		})
	}
}

func TestResolveDir(t *testing.T) {
	t.Run("absolute path passes through", func(t *testing.T) {
		got, err := resolveDir("/var/data")
		if err != nil {
			t.Fatalf("resolveDir() error = %v", err)
		}
		if got != "/var/data" {
			t.Errorf("resolveDir() = %q, want /var/data", got)
		}
	})

	t.Run("relative path is absolutized", func(t *testing.T) {
		got, err := resolveDir("archive")
		if err != nil {
			t.Fatalf("resolveDir() error = %v", err)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("resolveDir() = %q, want absolute path", got)
		}
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Fatalf("UserHomeDir() error = %v", err)
		}
		got, err := resolveDir("~/archive")
		if err != nil {
			t.Fatalf("resolveDir() error = %v", err)
		}
		if got != filepath.Join(home, "archive") {
			t.Errorf("resolveDir() = %q, want %q", got, filepath.Join(home, "archive"))
		}
	})
}
