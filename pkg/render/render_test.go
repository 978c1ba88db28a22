package render

import (
	"strings"
	"testing"

	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/hierdiff"
)

func testHierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	h := hierarchy.New()
	for _, n := range []hierarchy.Node{
		{ID: "root", Members: []string{"A", "B", "C"}},
		{ID: "sub", Label: "Proteasome", Members: []string{"A", "B"}},
	} {
		if err := h.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.AddEdge(hierarchy.Edge{Parent: "root", Child: "sub"}); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestToDOTBasic(t *testing.T) {
	dot := ToDOT(testHierarchy(t), Options{})

	for _, want := range []string{
		"digraph hierarchy {",
		`"root" [label="root"];`,
		`"sub" [label="Proteasome"];`,
		`"root" -> "sub";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "gene:") {
		t.Error("members rendered without ShowMembers")
	}
}

func TestToDOTShowMembers(t *testing.T) {
	dot := ToDOT(testHierarchy(t), Options{ShowMembers: true})
	if !strings.Contains(dot, `"sub" -> "gene:A" [style=dashed];`) {
		t.Errorf("DOT missing dashed membership edge:\n%s", dot)
	}
}

func TestToDOTShowSizes(t *testing.T) {
	dot := ToDOT(testHierarchy(t), Options{ShowSizes: true})
	if !strings.Contains(dot, "3 genes") {
		t.Errorf("DOT missing resolved size in label:\n%s", dot)
	}
}

func TestToDOTColorByRobustness(t *testing.T) {
	h := testHierarchy(t)
	n, _ := h.Node("sub")
	n.Attr[hierdiff.AttrRobustness] = 0.8

	dot := ToDOT(h, Options{ColorByRobustness: true})
	if !strings.Contains(dot, `"sub" [label="Proteasome", fillcolor="0.333 0.800 1.000"];`) {
		t.Errorf("DOT missing robustness fill:\n%s", dot)
	}
	// Nodes without a score keep the default fill.
	if strings.Contains(dot, `"root" [label="root", fillcolor=`) {
		t.Errorf("unscored node was colored:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	h := testHierarchy(t)
	if ToDOT(h, Options{}) != ToDOT(h, Options{}) {
		t.Error("ToDOT output is not deterministic")
	}
}
