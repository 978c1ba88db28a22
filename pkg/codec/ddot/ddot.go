// Package ddot converts between the hierarchy model and the DDOT ontology
// format: rows of `source TAB target TAB relation`, where relation is
// "default" for system-to-system containment and "gene" for system-to-leaf
// membership. The same row layout, minus the fixed relation vocabulary,
// doubles as the flat interactome edge-list format.
//
// DDOT has no node attribute channel, so only structure and membership
// survive a round-trip; other annotations are dropped by format design.
// Rows with a relation outside {default, gene} are rejected rather than
// silently dropped, since the format has no extensibility mechanism.
package ddot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

// Relation types of the ontology format.
const (
	RelDefault = "default" // system -> system containment
	RelGene    = "gene"    // system -> leaf member
)

// OntologySuffix is the conventional extension for DDOT ontology files.
const OntologySuffix = ".ont"

// EncodeOntology serializes a hierarchy as DDOT ontology text.
//
// Containment rows come first (sorted by parent then child), followed by
// one gene row per explicit member of each node in sorted node order, so
// repeated conversions of the same hierarchy are diffable.
func EncodeOntology(h *hierarchy.Hierarchy) string {
	var b strings.Builder

	edges := h.ContainmentEdges()
	slices.SortFunc(edges, func(a, e hierarchy.Edge) int {
		if a.Parent != e.Parent {
			return strings.Compare(a.Parent, e.Parent)
		}
		return strings.Compare(a.Child, e.Child)
	})
	for _, e := range edges {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", e.Parent, e.Child, RelDefault)
	}

	ids := h.NodeIDs()
	slices.Sort(ids)
	for _, id := range ids {
		n, _ := h.Node(id)
		members := slices.Clone(n.Members)
		slices.Sort(members)
		for _, m := range members {
			fmt.Fprintf(&b, "%s\t%s\t%s\n", id, m, RelGene)
		}
	}

	return b.String()
}

// DecodeOntology parses DDOT ontology text into a hierarchy.
//
// Rows are partitioned by relation type: "default" rows reconstruct
// containment edges (declaring nodes on first sight), "gene" rows attach
// leaf membership. Any other relation, or a row without exactly three
// columns, yields a FORMAT_PARSE error naming the line.
func DecodeOntology(text string) (*hierarchy.Hierarchy, error) {
	h := hierarchy.New()

	ensure := func(id string) error {
		if _, ok := h.Node(id); ok {
			return nil
		}
		return h.AddNode(hierarchy.Node{ID: id})
	}

	for i, line := range splitLines(text) {
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != 3 {
			return nil, errors.New(errors.ErrCodeParse,
				"ontology line %d: expected 3 columns, got %d", i+1, len(cols))
		}
		source, target, rel := cols[0], cols[1], cols[2]

		switch rel {
		case RelDefault:
			if err := ensure(source); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "ontology line %d", i+1)
			}
			if err := ensure(target); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "ontology line %d", i+1)
			}
			if err := h.AddEdge(hierarchy.Edge{Parent: source, Child: target}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "ontology line %d", i+1)
			}
		case RelGene:
			if err := ensure(source); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "ontology line %d", i+1)
			}
			if err := h.AddEdge(hierarchy.Edge{Parent: source, Child: target, Kind: hierarchy.EdgeMembership}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "ontology line %d", i+1)
			}
		default:
			return nil, errors.New(errors.ErrCodeParse,
				"ontology line %d: unrecognized relation type %q", i+1, rel)
		}
	}

	return h, nil
}

// EncodeInteractome flattens an interaction network into a DDOT edge list
// (`geneA TAB geneB TAB interaction_type`). Node-level metadata beyond the
// pair and type does not survive; the format has no channel for it.
func EncodeInteractome(net *interactome.Network) string {
	var b strings.Builder
	for _, e := range net.Edges() {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", net.NodeName(e.Source), net.NodeName(e.Target), e.Type)
	}
	return b.String()
}

// DecodeInteractome reconstructs a flat network from a DDOT edge list.
// Rows carry two or three columns; a missing interaction type defaults to
// [interactome.DefaultInteractionType].
func DecodeInteractome(text string) (*interactome.Network, error) {
	net := interactome.New()
	for i, line := range splitLines(text) {
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 || len(cols) > 3 {
			return nil, errors.New(errors.ErrCodeParse,
				"edge list line %d: expected 2 or 3 columns, got %d", i+1, len(cols))
		}
		source := net.EnsureNode(cols[0])
		target := net.EnsureNode(cols[1])
		edgeType := ""
		if len(cols) == 3 {
			edgeType = cols[2]
		}
		if err := net.AddEdge(source, target, edgeType); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "edge list line %d", i+1)
		}
	}
	return net, nil
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
