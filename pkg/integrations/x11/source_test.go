package x11

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"idlerig/pkg/idle"
)

func TestSourceInterface(t *testing.T) {
	var _ idle.Source = (*Source)(nil)
}

func TestNewSource(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("X11 display not available on this system")
	}

	src, err := NewSource()
	if err != nil {
		t.Logf("NewSource() error (may be expected): %v", err)
		return
	}
	defer src.Close()

	d, err := src.IdleTime(context.Background())
	if err != nil {
		t.Logf("IdleTime() error (may be expected): %v", err)
		return
	}
	t.Logf("Idle Time: %v", d)
}

func TestIdleTime(t *testing.T) {
	src := &Source{query: func() (uint32, error) { return 1500, nil }}

	got, err := src.IdleTime(context.Background())
	if err != nil {
		t.Fatalf("IdleTime() error: %v", err)
	}
	if got != 1500*time.Millisecond {
		t.Errorf("IdleTime() = %v, want 1.5s", got)
	}
}

func TestIdleTimeError(t *testing.T) {
	src := &Source{query: func() (uint32, error) { return 0, errors.New("connection closed") }}

	_, err := src.IdleTime(context.Background())

	var qe *idle.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("IdleTime() error = %v, want *idle.QueryError", err)
	}
	if qe.Source != "x11" {
		t.Errorf("Source = %s, want x11", qe.Source)
	}
}

func TestIdleTimeCancelled(t *testing.T) {
	called := false
	src := &Source{query: func() (uint32, error) { called = true; return 0, nil }}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.IdleTime(ctx); err == nil {
		t.Fatal("IdleTime() with cancelled context expected error")
	}
	if called {
		t.Error("query ran after cancellation")
	}
}

func TestParseXprintidle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr bool
	}{
		{"plain", "1234", 1234, false},
		{"trailing newline", "987\n", 987, false},
		{"zero", "0\n", 0, false},
		{"empty", "", 0, true},
		{"garbage", "couldn't open display", 0, true},
		{"negative", "-5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseXprintidle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseXprintidle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseXprintidle(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCommandExists(t *testing.T) {
	if !commandExists("sh") {
		t.Error("commandExists(sh) = false")
	}
	if commandExists("nonexistent_command_xyz") {
		t.Error("commandExists(nonexistent_command_xyz) = true")
	}
}

func TestClose(t *testing.T) {
	src := &Source{}
	if err := src.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}
