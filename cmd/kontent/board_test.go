package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestBoardCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"board", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("board --help failed: %v", err)
	}

	out := buf.String()
	for _, sub := range []string{"show", "renumber"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestBoardShowCmd_VariantDefault(t *testing.T) {
	cmd := newBoardShowCmd()
	flag := cmd.Flags().Lookup("variant")
	if flag == nil {
		t.Fatal("expected --variant flag")
	}
	if flag.DefValue != "TOPIC" {
		t.Errorf("--variant default = %q, want %q", flag.DefValue, "TOPIC")
	}
}

func TestBoardRenumberCmd_RequiresLane(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"board", "renumber"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when lane argument is missing")
	}
}

func TestBoardShowCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"board", "show", "--config", "/nonexistent/kontent.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestExportCmd_Flags(t *testing.T) {
	cmd := newExportCmd()
	flag := cmd.Flags().Lookup("out")
	if flag == nil {
		t.Fatal("expected --out flag")
	}
	if flag.Shorthand != "o" {
		t.Errorf("--out shorthand = %q, want %q", flag.Shorthand, "o")
	}
}

func TestExportCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"export", "--config", "/nonexistent/kontent.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()
	flag := cmd.Flags().Lookup("port")
	if flag == nil {
		t.Fatal("expected --port flag")
	}
	if flag.Shorthand != "p" {
		t.Errorf("--port shorthand = %q, want %q", flag.Shorthand, "p")
	}
}

func TestServeCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "--config", "/nonexistent/kontent.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}
