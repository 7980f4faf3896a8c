package logging

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{in: "debug", want: log.DebugLevel},
		{in: "info", want: log.InfoLevel},
		{in: "", want: log.InfoLevel},
		{in: "warn", want: log.WarnLevel},
		{in: "warning", want: log.WarnLevel},
		{in: "error", want: log.ErrorLevel},
		{in: "DEBUG", want: log.DebugLevel},
		{in: "trace", wantErr: true},
		{in: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	t.Run("rejects invalid level", func(t *testing.T) {
		err := Init(Config{Level: "nope"})
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
		}
	})

	t.Run("rejects invalid component override", func(t *testing.T) {
		err := Init(Config{Level: "info", Components: map[string]string{"scanner": "loud"}})
		if !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
		}
	})

	t.Run("creates log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "attic.log")
		if err := Init(Config{Level: "info", Path: path}); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer Close()

		Get("test").Info("hello")
	})
}

func TestGet_SameInstance(t *testing.T) {
	if err := Init(Config{Level: "info"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Close()

	a := Get("scanner")
	b := Get("scanner")
	if a != b {
		t.Error("Get must return the same logger per component")
	}
}
