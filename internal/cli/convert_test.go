package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	hkerrors "github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hcx"
)

func testCommand(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	ctx := withLogger(context.Background(), log.NewWithOptions(io.Discard, log.Options{}))
	cmd.SetContext(withConfig(ctx, defaultConfig()))
	return cmd
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunConvertHiDeFToCX2(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "result.nodes")
	writeFile(t, nodesPath, "Cluster0\t3\tA B C\t0.9\nCluster1\t3\tA B C\t0.7\n")
	writeFile(t, filepath.Join(dir, "result.edges"), "Cluster0\tCluster1\tdefault\n")

	output := filepath.Join(dir, "hierarchy.cx2")
	if err := runConvert(testCommand(t), convertOpts{}, nodesPath, output); err != nil {
		t.Fatalf("runConvert: %v", err)
	}

	h, err := (&hcx.Codec{}).Load(output)
	if err != nil {
		t.Fatalf("load converted output: %v", err)
	}
	if h.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", h.NodeCount())
	}
	if got := h.Members("Cluster0"); len(got) != 3 {
		t.Errorf("Cluster0 members = %v, want 3 genes", got)
	}
}

func TestRunConvertWithNetworkValidation(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "result.nodes")
	writeFile(t, nodesPath, "Cluster0\t2\tA UNKNOWN\t0.9\n")
	writeFile(t, filepath.Join(dir, "result.edges"), "")
	netPath := filepath.Join(dir, "edges.tsv")
	writeFile(t, netPath, "A\tB\tinteracts-with\n")

	output := filepath.Join(dir, "model.ont")
	opts := convertOpts{network: netPath}
	if err := runConvert(testCommand(t), opts, nodesPath, output); err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestRunConvertRejectsMalformedInput(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "bad.nodes")
	writeFile(t, nodesPath, "just-one-column\n")
	writeFile(t, filepath.Join(dir, "bad.edges"), "")

	err := runConvert(testCommand(t), convertOpts{}, nodesPath, filepath.Join(dir, "out.cx2"))
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestRunConvertRejectsInconsistentMembers(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "result.nodes")
	// Cluster0 claims member C, but its only child covers just {A,B}.
	writeFile(t, nodesPath, "Cluster0\t3\tA B C\t0.9\nCluster1\t2\tA B\t0.8\n")
	writeFile(t, filepath.Join(dir, "result.edges"), "Cluster0\tCluster1\tdefault\n")

	err := runConvert(testCommand(t), convertOpts{}, nodesPath, filepath.Join(dir, "out.cx2"))
	if err == nil {
		t.Fatal("expected an error for an uncovered member")
	}
	if !hkerrors.Is(err, hkerrors.ErrCodeMalformedHierarchy) {
		t.Errorf("error code = %q, want MALFORMED_HIERARCHY", hkerrors.GetCode(err))
	}
}
