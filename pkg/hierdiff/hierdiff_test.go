package hierdiff

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cellmaps/hierkit/pkg/codec/hidef"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
)

// flat builds a hierarchy of leaf systems, one per entry, each with the
// given member list. Edges are irrelevant to alignment, so none are added.
func flat(t *testing.T, systems map[string][]string) *hierarchy.Hierarchy {
	t.Helper()
	h := hierarchy.New()
	for id, members := range systems {
		if err := h.AddNode(hierarchy.Node{ID: id, Members: members}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	return h
}

func toSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return set
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{"identical", []string{"A", "B", "C"}, []string{"A", "B", "C"}, 1},
		{"disjoint", []string{"A", "B"}, []string{"C", "D"}, 0},
		{"partial", []string{"A", "B", "C", "D"}, []string{"A", "B", "C"}, 0.75},
		{"subset", []string{"A", "B", "C", "D"}, []string{"A", "B"}, 0.5},
		{"both empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, toSet(tt.b))
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Jaccard = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Jaccard = %v, outside [0,1]", got)
			}
		})
	}
}

func TestNewIndexExcludesEmptySets(t *testing.T) {
	h := flat(t, map[string][]string{
		"full":  {"A", "B"},
		"empty": nil,
	})
	idx := NewIndex(h)
	if got, want := idx.Len(), 1; got != want {
		t.Fatalf("Len = %d, want %d", got, want)
	}
}

func TestBestMatchPicksHighestSimilarity(t *testing.T) {
	alt := flat(t, map[string][]string{
		"close":   {"A", "B", "C"},
		"smaller": {"A", "B"},
		"far":     {"X", "Y", "Z"},
	})
	idx := NewIndex(alt)

	match, ok := JaccardAligner{Threshold: 0.4}.BestMatch([]string{"A", "B", "C", "D"}, idx)
	if !ok {
		t.Fatal("BestMatch found no candidate")
	}
	if match.NodeID != "close" {
		t.Errorf("NodeID = %q, want %q", match.NodeID, "close")
	}
	if want := 0.75; math.Abs(match.Score-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", match.Score, want)
	}
}

func TestBestMatchThresholdIsInclusive(t *testing.T) {
	alt := flat(t, map[string][]string{"half": {"A", "B"}})
	idx := NewIndex(alt)
	aligner := JaccardAligner{Threshold: 0.5}

	// {A,B} vs {A,B,C,D} scores exactly 0.5 and must be accepted.
	if _, ok := aligner.BestMatch([]string{"A", "B", "C", "D"}, idx); !ok {
		t.Error("score equal to the threshold was rejected")
	}
	// {A,B} vs {A,C,D,E} scores 0.2 and must be rejected.
	if _, ok := aligner.BestMatch([]string{"A", "C", "D", "E"}, idx); ok {
		t.Error("score below the threshold was accepted")
	}
}

func TestBestMatchTieBreaksTowardSmallerSet(t *testing.T) {
	// Both candidates score 0.5 against {A,B}; the smaller one wins.
	alt := flat(t, map[string][]string{
		"small": {"A"},
		"big":   {"A", "B", "C", "D"},
	})
	idx := NewIndex(alt)

	match, ok := JaccardAligner{Threshold: 0.4}.BestMatch([]string{"A", "B"}, idx)
	if !ok {
		t.Fatal("BestMatch found no candidate")
	}
	if match.NodeID != "small" {
		t.Errorf("NodeID = %q, want %q", match.NodeID, "small")
	}
}

func TestBestMatchPruningKeepsBoundaryCandidates(t *testing.T) {
	// At threshold 0.5 a candidate of size 2 is inside the admissible size
	// window [1, 4] for a reference of size 2 and must not be pruned away.
	alt := flat(t, map[string][]string{
		"tiny":     {"A"},
		"boundary": {"A", "B", "C", "D"},
		"huge":     {"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"},
	})
	idx := NewIndex(alt)

	match, ok := JaccardAligner{Threshold: 0.5}.BestMatch([]string{"A", "B"}, idx)
	if !ok {
		t.Fatal("BestMatch found no candidate")
	}
	if match.NodeID != "boundary" && match.NodeID != "tiny" {
		t.Errorf("NodeID = %q, want a candidate inside the size window", match.NodeID)
	}
	if want := 0.5; math.Abs(match.Score-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", match.Score, want)
	}
}

func TestRobustnessSelfIsOne(t *testing.T) {
	ref := flat(t, map[string][]string{
		"s1": {"A", "B", "C"},
		"s2": {"D", "E"},
	})
	alts := []*hierarchy.Hierarchy{
		flat(t, map[string][]string{"s1": {"A", "B", "C"}, "s2": {"D", "E"}}),
	}

	result := Robustness(context.Background(), ref, alts, Options{})
	if result.EffectiveN != 1 {
		t.Fatalf("EffectiveN = %d, want 1", result.EffectiveN)
	}
	for _, id := range ref.NodeIDs() {
		n, _ := ref.Node(id)
		if got := n.Attr[AttrRobustness]; got != 1.0 {
			t.Errorf("node %s robustness = %v, want 1", id, got)
		}
	}
}

func TestRobustnessFractionOfMatchingAlternatives(t *testing.T) {
	ref := flat(t, map[string][]string{
		"stable":   {"A", "B", "C"},
		"fragile":  {"X", "Y"},
		"singular": {"Q"},
	})
	match := map[string][]string{"m1": {"A", "B", "C"}, "m2": {"X", "Y"}}
	miss := map[string][]string{"m1": {"A", "B", "C"}, "m2": {"P", "R"}}
	alts := []*hierarchy.Hierarchy{flat(t, match), flat(t, match), flat(t, miss), flat(t, miss)}

	result := Robustness(context.Background(), ref, alts, Options{Threshold: 0.9, Workers: 3})
	if result.EffectiveN != 4 {
		t.Fatalf("EffectiveN = %d, want 4", result.EffectiveN)
	}

	want := map[string]float64{"stable": 1, "fragile": 0.5, "singular": 0}
	for id, score := range want {
		n, _ := ref.Node(id)
		got, ok := n.Attr[AttrRobustness].(float64)
		if !ok {
			t.Fatalf("node %s: robustness attribute missing", id)
		}
		if math.Abs(got-score) > 1e-12 {
			t.Errorf("node %s robustness = %v, want %v", id, got, score)
		}
	}
}

func TestRobustnessScoresAreBounded(t *testing.T) {
	ref := flat(t, map[string][]string{"s": {"A", "B"}})
	alts := []*hierarchy.Hierarchy{
		flat(t, map[string][]string{"s": {"A", "B"}}),
		flat(t, map[string][]string{"s": {"Z"}}),
	}

	Robustness(context.Background(), ref, alts, Options{})
	n, _ := ref.Node("s")
	score := n.Attr[AttrRobustness].(float64)
	if score < 0 || score > 1 {
		t.Errorf("robustness = %v, outside [0,1]", score)
	}
}

func TestRobustnessNoAlternatives(t *testing.T) {
	ref := flat(t, map[string][]string{"s": {"A"}})
	result := Robustness(context.Background(), ref, nil, Options{})
	if result.EffectiveN != 0 {
		t.Errorf("EffectiveN = %d, want 0", result.EffectiveN)
	}
	n, _ := ref.Node("s")
	if got := n.Attr[AttrRobustness]; got != 0.0 {
		t.Errorf("robustness = %v, want 0", got)
	}
}

func writeHiDeF(t *testing.T, dir, name string, h *hierarchy.Hierarchy) string {
	t.Helper()
	path := filepath.Join(dir, name+hidef.NodesSuffix)
	c := &hidef.Codec{}
	if err := c.Save(h, path); err != nil {
		t.Fatalf("Save(%s): %v", path, err)
	}
	return path
}

func TestRobustnessFromFilesSkipsUnreadableAlternatives(t *testing.T) {
	dir := t.TempDir()
	ref := flat(t, map[string][]string{"s1": {"A", "B"}, "s2": {"C", "D"}})

	refPath := writeHiDeF(t, dir, "ref", ref)
	good1 := writeHiDeF(t, dir, "alt1", flat(t, map[string][]string{"s1": {"A", "B"}, "s2": {"C", "D"}}))
	good2 := writeHiDeF(t, dir, "alt2", flat(t, map[string][]string{"s1": {"A", "B"}, "s2": {"C", "D"}}))

	bad := filepath.Join(dir, "alt3"+hidef.NodesSuffix)
	if err := os.WriteFile(bad, []byte("only-one-column\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := RobustnessFromFiles(context.Background(), &hidef.Codec{}, refPath,
		[]string{good1, good2, bad}, Options{})
	if err != nil {
		t.Fatalf("RobustnessFromFiles: %v", err)
	}

	if result.Requested != 3 {
		t.Errorf("Requested = %d, want 3", result.Requested)
	}
	if result.EffectiveN != 2 {
		t.Errorf("EffectiveN = %d, want 2", result.EffectiveN)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Path != bad {
		t.Fatalf("Skipped = %+v, want one record for %s", result.Skipped, bad)
	}

	// Both alternatives that loaded match perfectly, so the denominator is
	// the effective N, not the requested count.
	for _, id := range result.Hierarchy.NodeIDs() {
		n, _ := result.Hierarchy.Node(id)
		if got := n.Attr[AttrRobustness]; got != 1.0 {
			t.Errorf("node %s robustness = %v, want 1 over effective N", id, got)
		}
	}
}

func TestRobustnessFromFilesBadReference(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "ref"+hidef.NodesSuffix)
	if err := os.WriteFile(bad, []byte("broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := RobustnessFromFiles(context.Background(), &hidef.Codec{}, bad, nil, Options{}); err == nil {
		t.Fatal("expected error for an unreadable reference")
	}
}

func TestCompareWritesUnthresholdedScores(t *testing.T) {
	ref := flat(t, map[string][]string{
		"exact": {"A", "B"},
		"weak":  {"A", "X", "Y", "Z"},
	})
	alt := flat(t, map[string][]string{"n1": {"A", "B"}})

	Compare(ref, alt)

	exact, _ := ref.Node("exact")
	if got := exact.Attr[AttrRobustness]; got != 1.0 {
		t.Errorf("exact score = %v, want 1", got)
	}
	weak, _ := ref.Node("weak")
	got := weak.Attr[AttrRobustness].(float64)
	if want := 0.2; math.Abs(got-want) > 1e-12 {
		t.Errorf("weak score = %v, want %v (no threshold applied)", got, want)
	}
}
