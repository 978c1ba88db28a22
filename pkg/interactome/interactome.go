// Package interactome models the flat protein/gene interaction network that
// a hierarchy's leaf members are drawn from.
//
// The network is referenced, not owned, by a hierarchy: converters and the
// HCX annotator use it to resolve member identifiers to stable node IDs and
// to cross-check member lists. Node IDs are small integers assigned in
// insertion order, matching the CX2 convention of integer node handles.
package interactome

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultInteractionType labels edges whose input rows carried no explicit
// interaction type.
const DefaultInteractionType = "interacts-with"

// ErrUnknownNode is returned by [Network.AddEdge] when an endpoint has not
// been added to the network.
var ErrUnknownNode = errors.New("unknown interactome node")

// Node is a single entity (gene or protein) in the interaction network.
type Node struct {
	ID   int    // Stable within this network instance, assigned by EnsureNode
	Name string // Entity identifier (gene symbol, protein accession)
}

// Edge is a typed interaction between two entities.
type Edge struct {
	Source int    // Node ID
	Target int    // Node ID
	Type   string // Interaction type, never empty (DefaultInteractionType if unspecified)
}

// Network is a flat interaction network: named entities plus typed pairwise
// relationships. The zero value is not usable; use New.
type Network struct {
	nodes  []Node
	byName map[string]int // name -> node ID
	edges  []Edge
}

// New creates an empty interaction network.
func New() *Network {
	return &Network{byName: make(map[string]int)}
}

// EnsureNode returns the ID of the named entity, adding it if absent.
func (n *Network) EnsureNode(name string) int {
	if id, ok := n.byName[name]; ok {
		return id
	}
	id := len(n.nodes)
	n.nodes = append(n.nodes, Node{ID: id, Name: name})
	n.byName[name] = id
	return id
}

// LookupNode returns the ID of the named entity and true, or -1 and false.
func (n *Network) LookupNode(name string) (int, bool) {
	id, ok := n.byName[name]
	if !ok {
		return -1, false
	}
	return id, ok
}

// HasNode reports whether the named entity exists in the network.
func (n *Network) HasNode(name string) bool {
	_, ok := n.byName[name]
	return ok
}

// NodeName returns the name of the node with the given ID, or an empty
// string if the ID is out of range.
func (n *Network) NodeName(id int) string {
	if id < 0 || id >= len(n.nodes) {
		return ""
	}
	return n.nodes[id].Name
}

// AddEdge records a typed interaction between two existing nodes.
// An empty edgeType is replaced with DefaultInteractionType.
func (n *Network) AddEdge(source, target int, edgeType string) error {
	if source < 0 || source >= len(n.nodes) {
		return fmt.Errorf("source %d: %w", source, ErrUnknownNode)
	}
	if target < 0 || target >= len(n.nodes) {
		return fmt.Errorf("target %d: %w", target, ErrUnknownNode)
	}
	if edgeType == "" {
		edgeType = DefaultInteractionType
	}
	n.edges = append(n.edges, Edge{Source: source, Target: target, Type: edgeType})
	return nil
}

// Nodes returns a copy of all nodes in ID order.
func (n *Network) Nodes() []Node { return slices.Clone(n.nodes) }

// Edges returns a copy of all edges in insertion order.
func (n *Network) Edges() []Edge { return slices.Clone(n.edges) }

// NodeCount returns the number of entities in the network.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of interactions in the network.
func (n *Network) EdgeCount() int { return len(n.edges) }
