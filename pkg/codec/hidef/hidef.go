// Package hidef converts between the hierarchy model and the two-file
// HiDeF text format: a nodes file (one row per system) and an edges file
// (one row per containment relation).
//
// Nodes rows are `id TAB size TAB member_list [TAB persistence]`; the member
// list is whitespace-joined. Edges rows are `parent TAB child [TAB relation]`.
// Node identifiers seen only in the edges file are undeclared and rejected,
// and nodes with no parent row become roots (several roots are preserved,
// never merged).
package hidef

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

const (
	// NodesSuffix and EdgesSuffix are the conventional file extensions of
	// the two HiDeF output files.
	NodesSuffix = ".nodes"
	EdgesSuffix = ".edges"

	// AttrPersistence is the node attribute carrying the HiDeF persistence
	// score through a round-trip.
	AttrPersistence = "HiDeF_persistence"

	// AttrFlaggedMembers collects members that could not be resolved
	// against the parent interactome. They stay in the member list; the
	// flag only marks them for downstream visualization.
	AttrFlaggedMembers = "flaggedMembers"

	// defaultRelation is written for containment rows in the edges file.
	defaultRelation = "default"
)

// Codec implements [codec.Codec] for the HiDeF format.
//
// The path handed to Load and Save names the nodes file; the edges file is
// the sibling with EdgesSuffix. An optional Network resolves gene-level
// leaves during Load: members missing from it are retained but flagged.
type Codec struct {
	Network *interactome.Network
}

// Name returns "hidef".
func (c *Codec) Name() string { return "hidef" }

// Supports reports whether filename looks like a HiDeF nodes file.
func (c *Codec) Supports(filename string) bool {
	return strings.HasSuffix(filename, NodesSuffix)
}

// EdgesPath derives the edges file path from a nodes file path.
func EdgesPath(nodesPath string) string {
	return strings.TrimSuffix(nodesPath, NodesSuffix) + EdgesSuffix
}

// Decode parses the contents of a HiDeF nodes file and edges file into a
// hierarchy. An optional network cross-validates gene-level leaves: members
// absent from it are kept in the member list and recorded under
// AttrFlaggedMembers.
//
// Returns a FORMAT_PARSE error naming the offending line for malformed row
// arity, duplicate node rows, or edges referencing undeclared nodes.
func Decode(nodesText, edgesText string, network *interactome.Network) (*hierarchy.Hierarchy, error) {
	h := hierarchy.New()

	for i, line := range splitLines(nodesText) {
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 || len(cols) > 4 {
			return nil, errors.New(errors.ErrCodeParse,
				"nodes line %d: expected 3 or 4 columns, got %d", i+1, len(cols))
		}

		n := hierarchy.Node{ID: cols[0], Members: splitMembers(cols[2]), Attr: hierarchy.Attributes{}}
		if size, err := strconv.Atoi(strings.TrimSpace(cols[1])); err != nil {
			return nil, errors.New(errors.ErrCodeParse,
				"nodes line %d: size %q is not an integer", i+1, cols[1])
		} else if size != len(n.Members) {
			// HiDeF writes the declared size redundantly; trust the member
			// list but keep the declared value visible for debugging.
			n.Attr["declaredSize"] = size
		}
		if len(cols) == 4 {
			if p, err := strconv.ParseFloat(strings.TrimSpace(cols[3]), 64); err == nil {
				n.Attr[AttrPersistence] = p
			} else {
				n.Label = cols[3]
			}
		}
		if network != nil {
			if flagged := unknownMembers(n.Members, network); len(flagged) > 0 {
				n.Attr[AttrFlaggedMembers] = flagged
			}
		}
		if err := h.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "nodes line %d", i+1)
		}
	}

	for i, line := range splitLines(edgesText) {
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 || len(cols) > 3 {
			return nil, errors.New(errors.ErrCodeParse,
				"edges line %d: expected 2 or 3 columns, got %d", i+1, len(cols))
		}
		if err := h.AddEdge(hierarchy.Edge{Parent: cols[0], Child: cols[1]}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "edges line %d", i+1)
		}
	}

	return h, nil
}

// Encode serializes a hierarchy into HiDeF nodes and edges text.
//
// Rows are emitted in stable order (node ID ascending, edges parent-then-
// child ascending) so repeated conversions are diffable. Member lists are
// the resolved leaf sets from [hierarchy.Hierarchy.Members].
func Encode(h *hierarchy.Hierarchy) (nodesText, edgesText string) {
	ids := h.NodeIDs()
	slices.Sort(ids)

	var nodes strings.Builder
	for _, id := range ids {
		n, _ := h.Node(id)
		members := h.Members(id)
		fmt.Fprintf(&nodes, "%s\t%d\t%s", id, len(members), strings.Join(members, " "))
		if p, ok := n.Attr[AttrPersistence]; ok {
			fmt.Fprintf(&nodes, "\t%v", p)
		} else if n.Label != "" {
			fmt.Fprintf(&nodes, "\t%s", n.Label)
		}
		nodes.WriteByte('\n')
	}

	edges := h.ContainmentEdges()
	slices.SortFunc(edges, func(a, b hierarchy.Edge) int {
		if a.Parent != b.Parent {
			return strings.Compare(a.Parent, b.Parent)
		}
		return strings.Compare(a.Child, b.Child)
	})
	var out strings.Builder
	for _, e := range edges {
		fmt.Fprintf(&out, "%s\t%s\t%s\n", e.Parent, e.Child, defaultRelation)
	}

	return nodes.String(), out.String()
}

func unknownMembers(members []string, network *interactome.Network) []string {
	var flagged []string
	for _, m := range members {
		if !network.HasNode(m) {
			flagged = append(flagged, m)
		}
	}
	return flagged
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

// splitMembers tolerates both whitespace- and comma-joined member lists.
func splitMembers(list string) []string {
	list = strings.ReplaceAll(list, ",", " ")
	return strings.Fields(list)
}
