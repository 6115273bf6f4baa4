package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestItemCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"item", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("item --help failed: %v", err)
	}

	out := buf.String()
	for _, sub := range []string{"create", "list", "show", "update", "move", "delete"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestItemCreateCmd_RequiresTitle(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"item", "create"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when --title is missing")
	}
}

func TestItemCreateCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"item", "create", "--title", "x", "--config", "/nonexistent/kontent.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestNewItemCreateCmd_Flags(t *testing.T) {
	cmd := newItemCreateCmd()

	tests := []struct {
		name, defValue string
	}{
		{"config", "kontent.yaml"},
		{"title", ""},
		{"variant", "TOPIC"},
		{"description", ""},
		{"scheduled", ""},
	}
	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Fatalf("expected --%s flag", tt.name)
		}
		if flag.DefValue != tt.defValue {
			t.Errorf("--%s default = %q, want %q", tt.name, flag.DefValue, tt.defValue)
		}
	}
}

func TestItemShowCmd_RequiresID(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"item", "show"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when id argument is missing")
	}
}

func TestItemMoveCmd_RequiresTwoArgs(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"item", "move", "it-abc123"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when lane argument is missing")
	}
}

func TestItemDeleteCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"item", "delete", "it-abc123", "--yes", "--config", "/nonexistent/kontent.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 40, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a very long card title that keeps going", 20, "a very long card ..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(nil); got != "-" {
		t.Errorf("formatDate(nil) = %q, want %q", got, "-")
	}
}
