package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smazurov/depthvideo/internal/colormap"
)

func TestColormapsCmdListsPalettes(t *testing.T) {
	c := CreateColormapsCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{})
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(colormap.Names()) {
		t.Fatalf("got %d lines, want %d", len(lines), len(colormap.Names()))
	}
	if !strings.Contains(out.String(), colormap.DefaultName+" (default)") {
		t.Errorf("default palette not marked:\n%s", out.String())
	}
}

func TestVersionCmd(t *testing.T) {
	c := CreateVersionCmd()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{})
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "depthvideo ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestProbeCmdRequiresPath(t *testing.T) {
	c := CreateProbeCmd()
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{})
	if err := c.Execute(); err == nil {
		t.Error("expected argument error")
	}
}
