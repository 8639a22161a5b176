package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateApp_Metadata(t *testing.T) {
	app := createApp()

	if app.Name != "redistracectl" {
		t.Errorf("app.Name = %q, want %q", app.Name, "redistracectl")
	}
	if len(app.Commands) != 2 {
		t.Errorf("len(app.Commands) = %d, want 2", len(app.Commands))
	}
	if app.DefaultCommand != "help" {
		t.Errorf("app.DefaultCommand = %q, want %q", app.DefaultCommand, "help")
	}
}

func TestLoadTraceOptions_EmptyPath(t *testing.T) {
	opts, err := loadTraceOptions("")
	if err != nil {
		t.Fatalf("loadTraceOptions(\"\") error = %v", err)
	}
	if opts != nil {
		t.Errorf("loadTraceOptions(\"\") = %v, want nil", opts)
	}
}

func TestLoadTraceOptions_ValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.yaml")
	if err := os.WriteFile(path, []byte("peer_service: demo\n"), 0600); err != nil {
		t.Fatal(err)
	}

	opts, err := loadTraceOptions(path)
	if err != nil {
		t.Fatalf("loadTraceOptions(%q) error = %v", path, err)
	}
	if len(opts) == 0 {
		t.Error("loadTraceOptions should return options for a valid config")
	}
}

func TestLoadTraceOptions_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.yaml")
	if err := os.WriteFile(path, []byte("peer_service: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := loadTraceOptions(path)
	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Errorf("loadTraceOptions with invalid config: error = %v, want *usageError", err)
	}
}

func TestCheckCommand_MissingConfig(t *testing.T) {
	app := createApp()

	err := app.Run(context.Background(), []string{"redistracectl", "check"})
	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Errorf("check without --config: error = %v, want *usageError", err)
	}
}

func TestCheckCommand_ValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.yaml")
	content := "omit_statement: true\nsent_ops:\n  - SET\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	app := createApp()
	err := app.Run(context.Background(), []string{"redistracectl", "-c", path, "check"})
	if err != nil {
		t.Errorf("check with valid config: error = %v", err)
	}
}
