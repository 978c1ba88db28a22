// Package hierdiff compares hierarchies whose node identifiers carry no
// meaning across files. Nodes are aligned by member-set similarity
// (Jaccard Index), either pairwise (Compare) or against a batch of
// bootstrap-perturbed alternatives to produce per-node robustness scores
// (Robustness).
package hierdiff

import (
	"slices"
	"sort"

	"github.com/cellmaps/hierkit/pkg/hierarchy"
)

// Match is the outcome of aligning one reference node against an indexed
// alternative hierarchy.
type Match struct {
	NodeID string  // best-matching node in the alternative
	Score  float64 // Jaccard Index of the match
}

// Aligner finds the best-matching node for a reference member set in an
// indexed alternative hierarchy. Implementations must be safe for
// concurrent use: the robustness engine calls BestMatch from parallel
// workers.
type Aligner interface {
	// BestMatch returns the best match and whether it clears the aligner's
	// acceptance criterion.
	BestMatch(ref []string, idx *Index) (Match, bool)
}

// indexedNode caches a node's resolved member set for repeated overlap
// computations.
type indexedNode struct {
	id   string
	set  map[string]bool
	size int
}

// Index holds an alternative hierarchy's nodes pre-sorted by member-set
// size, enabling size-ratio pruning during alignment. Building the index
// resolves every member set once; the index is immutable afterwards.
type Index struct {
	nodes []indexedNode // ascending by size
}

// NewIndex builds an alignment index over all nodes of a hierarchy.
// Nodes with empty resolved member sets are excluded: they can never
// overlap anything.
func NewIndex(h *hierarchy.Hierarchy) *Index {
	idx := &Index{}
	for _, id := range h.NodeIDs() {
		members := h.Members(id)
		if len(members) == 0 {
			continue
		}
		set := make(map[string]bool, len(members))
		for _, m := range members {
			set[m] = true
		}
		idx.nodes = append(idx.nodes, indexedNode{id: id, set: set, size: len(set)})
	}
	slices.SortFunc(idx.nodes, func(a, b indexedNode) int { return a.size - b.size })
	return idx
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int { return len(idx.nodes) }

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a []string, b map[string]bool) float64 {
	overlap := 0
	for _, m := range a {
		if b[m] {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

// JaccardAligner aligns by maximum Jaccard Index with an inclusive
// acceptance threshold: a best score exactly equal to Threshold counts as
// a match. Ties on score are broken toward the smaller member set, the
// more specific match.
type JaccardAligner struct {
	// Threshold is the minimum Jaccard Index for a match to be accepted.
	// Zero accepts the best candidate regardless of overlap.
	Threshold float64
}

// BestMatch scans the index for the node maximizing the Jaccard Index with
// ref.
//
// Candidates whose size makes the threshold unreachable are pruned: for a
// reference of size r and candidate of size s, the Jaccard Index is at most
// min(r,s)/max(r,s), so only sizes in [ceil(t*r), floor(r/t)] can clear
// threshold t. The index's size ordering turns the bounds into a single
// contiguous scan window.
func (a JaccardAligner) BestMatch(ref []string, idx *Index) (Match, bool) {
	if len(ref) == 0 || idx.Len() == 0 {
		return Match{}, false
	}

	nodes := idx.nodes
	if a.Threshold > 0 {
		r := float64(len(ref))
		lo := sort.Search(len(nodes), func(i int) bool {
			return float64(nodes[i].size) >= a.Threshold*r
		})
		hi := sort.Search(len(nodes), func(i int) bool {
			return float64(nodes[i].size) > r/a.Threshold
		})
		nodes = nodes[lo:hi]
	}

	best := Match{Score: -1}
	for _, n := range nodes {
		score := Jaccard(ref, n.set)
		// Ascending size order makes "strictly greater" the tie-break
		// toward smaller member sets.
		if score > best.Score {
			best = Match{NodeID: n.id, Score: score}
		}
	}
	if best.Score < 0 {
		return Match{}, false
	}
	return best, best.Score >= a.Threshold
}

var _ Aligner = JaccardAligner{}
