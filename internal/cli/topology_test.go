package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tracelayer/gridroute/pkg/errors"
	"github.com/tracelayer/gridroute/pkg/pipeline"
)

func TestValidateTopologyFormats(t *testing.T) {
	if err := validateTopologyFormats([]string{"svg", "png", "pdf", "dot"}); err != nil {
		t.Errorf("validateTopologyFormats() error = %v", err)
	}
	// json is a route artifact, not a renderable diagram.
	err := validateTopologyFormats([]string{"svg", "json"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestRenderTopologyDOTPassthrough(t *testing.T) {
	dotText := "digraph routes {}\n"
	artifacts, err := renderTopology(context.Background(), dotText, topologyOpts{formats: []string{"dot"}})
	if err != nil {
		t.Fatalf("renderTopology() error: %v", err)
	}
	if string(artifacts["dot"]) != dotText {
		t.Errorf("dot artifact = %q, want passthrough", artifacts["dot"])
	}
}

func TestRunTopology(t *testing.T) {
	redirectCache(t)
	input := writeProblemFixture(t)
	output := filepath.Join(t.TempDir(), "net.svg")

	c := New(io.Discard, log.InfoLevel)
	opts := topologyOpts{
		formats: []string{"svg"},
		output:  output,
		scale:   pipeline.DefaultScale,
	}
	if err := c.runTopology(context.Background(), input, opts); err != nil {
		t.Fatalf("runTopology() error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("output is not an SVG document")
	}
}

func TestRunTopologyDerivedSuffix(t *testing.T) {
	redirectCache(t)
	input := writeProblemFixture(t)

	c := New(io.Discard, log.InfoLevel)
	opts := topologyOpts{
		formats: []string{"dot"},
		scale:   pipeline.DefaultScale,
	}
	if err := c.runTopology(context.Background(), input, opts); err != nil {
		t.Fatalf("runTopology() error: %v", err)
	}

	derived := filepath.Join(filepath.Dir(input), "pair.topology.dot")
	data, err := os.ReadFile(derived)
	if err != nil {
		t.Fatalf("expected derived output %s: %v", derived, err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Error("derived output is not DOT text")
	}
}
