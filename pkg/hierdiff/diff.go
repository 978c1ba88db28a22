package hierdiff

import "github.com/cellmaps/hierkit/pkg/hierarchy"

// Compare aligns every node of ref against alt and writes the best
// Jaccard similarity found as each node's "robustness" attribute, with
// no threshold applied. A score of 1 means an exact member-set match in
// alt; 0 means no candidate shared any member. The reference hierarchy
// is annotated in place and returned.
func Compare(ref, alt *hierarchy.Hierarchy) *hierarchy.Hierarchy {
	idx := NewIndex(alt)
	aligner := JaccardAligner{}
	for _, id := range ref.NodeIDs() {
		node, _ := ref.Node(id)
		match, _ := aligner.BestMatch(ref.Members(id), idx)
		score := match.Score
		if score < 0 {
			score = 0
		}
		node.Attr[AttrRobustness] = score
	}
	return ref
}
