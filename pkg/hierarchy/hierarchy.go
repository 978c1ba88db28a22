package hierarchy

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Hierarchy.AddNode] when the node ID
	// is empty. All systems must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Hierarchy.AddNode] when a node with
	// the same ID already exists. Node IDs are unique within one hierarchy
	// (they carry no meaning across hierarchies).
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownParentNode is returned by [Hierarchy.AddEdge] when the
	// parent endpoint does not exist in the hierarchy.
	ErrUnknownParentNode = errors.New("unknown parent node")

	// ErrUnknownChildNode is returned by [Hierarchy.AddEdge] when the child
	// endpoint of a containment edge does not exist in the hierarchy.
	ErrUnknownChildNode = errors.New("unknown child node")

	// ErrHierarchyHasCycle is returned by [Hierarchy.Validate] when the
	// containment edges form a directed cycle. Cycles are detected with
	// depth-first search using white/gray/black coloring.
	ErrHierarchyHasCycle = errors.New("containment edges form a cycle")

	// ErrNoRootNode is returned by [Hierarchy.Validate] when no node has
	// in-degree zero. Every hierarchy must have at least one root.
	ErrNoRootNode = errors.New("hierarchy has no root node")

	// ErrMemberNotInDescendants is returned by [Hierarchy.Validate] when an
	// inner node declares a member that appears in none of its descendant
	// leaves. The explicit member annotation must be a subset of the union
	// of descendant leaf members.
	ErrMemberNotInDescendants = errors.New("member absent from all descendant leaves")
)

// EdgeKind distinguishes the two relation types a hierarchy edge can carry.
type EdgeKind int

const (
	// EdgeContainment is a system-to-system edge (DDOT relation "default").
	EdgeContainment EdgeKind = iota
	// EdgeMembership is a system-to-leaf-member edge (DDOT relation "gene").
	EdgeMembership
)

// Attributes stores arbitrary key-value annotations attached to a node or to
// the hierarchy itself (robustness scores, root flags, interactome linkage).
// Attribute maps are never nil after a node is added.
type Attributes map[string]any

// Node is a system in the hierarchy: a named cluster of leaf members
// (genes or proteins) at some level of nesting.
//
// Members holds the node's explicit member annotation in input order.
// For leaf systems this is the definitive member set; for inner systems it
// may be leaf-collapsed and is cross-checked by [Hierarchy.Validate].
// The zero value is not usable - ID must be set before adding to a Hierarchy.
type Node struct {
	ID      string     // Unique within one hierarchy, meaningless across hierarchies
	Label   string     // Optional human-readable label
	Members []string   // Explicit member annotation, input order preserved
	Attr    Attributes // Arbitrary annotations (never nil after AddNode)
}

// Size returns the number of explicit members.
func (n *Node) Size() int { return len(n.Members) }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed relation from a parent system to a child system
// (EdgeContainment) or from a system to one of its leaf members
// (EdgeMembership). The set of containment edges forms a DAG.
type Edge struct {
	Parent string
	Child  string
	Kind   EdgeKind
}

// NetworkRef records the hierarchy's link to its parent interaction network.
// Exactly one of UUID or LocalPath is set for an annotated hierarchy; both
// empty means the hierarchy has not been linked yet.
type NetworkRef struct {
	Host      string // Remote host, only meaningful together with UUID
	UUID      string // Remote network identifier
	LocalPath string // Path to a sibling interactome file
}

// IsRemote reports whether the reference points at a hosted network.
func (r NetworkRef) IsRemote() bool { return r.UUID != "" }

// IsLocal reports whether the reference points at a local interactome file.
func (r NetworkRef) IsLocal() bool { return r.LocalPath != "" }

// IsZero reports whether no linkage has been recorded.
func (r NetworkRef) IsZero() bool { return r.UUID == "" && r.LocalPath == "" }

// Hierarchy is a rooted (possibly multi-rooted) DAG of nested systems.
//
// Membership is immutable once the hierarchy is built from an interchange
// file; annotations (robustness, isRoot, interactome linkage) are appended
// afterwards through the Attr maps and SetNetworkRef. Hierarchy is not safe
// for concurrent mutation; concurrent reads are fine.
type Hierarchy struct {
	nodes    map[string]*Node
	order    []string // node IDs in insertion order
	edges    []Edge
	children map[string][]string // containment adjacency, parent -> child IDs
	parents  map[string][]string // containment adjacency, child -> parent IDs

	attr    Attributes // hierarchy-level annotations (format version tag etc.)
	network NetworkRef

	direct  map[string]map[string]bool // members attached via EdgeMembership
	members map[string][]string        // memoized resolved leaf members per node
}

// New creates an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
		direct:   make(map[string]map[string]bool),
		attr:     Attributes{},
	}
}

// Attr returns the hierarchy-level annotation map. Never nil.
func (h *Hierarchy) Attr() Attributes { return h.attr }

// NetworkRef returns the recorded parent-network linkage.
func (h *Hierarchy) NetworkRef() NetworkRef { return h.network }

// SetNetworkRef records the parent-network linkage.
func (h *Hierarchy) SetNetworkRef(ref NetworkRef) { h.network = ref }

// AddNode adds a system to the hierarchy.
// Returns ErrInvalidNodeID for an empty ID or ErrDuplicateNodeID if a node
// with the same ID exists. The node's Attr map is initialized if nil.
// Adding a node invalidates memoized member resolution.
func (h *Hierarchy) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := h.nodes[n.ID]; exists {
		return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
	}
	if n.Attr == nil {
		n.Attr = Attributes{}
	}
	node := &n
	h.nodes[node.ID] = node
	h.order = append(h.order, node.ID)
	h.members = nil
	return nil
}

// AddEdge adds a containment or membership edge.
//
// Containment edges require both endpoints to exist as nodes. Membership
// edges require only the parent: the child is a leaf member identifier, and
// is appended to the parent's Members list if not already present.
// Adding an edge invalidates memoized member resolution.
func (h *Hierarchy) AddEdge(e Edge) error {
	parent, ok := h.nodes[e.Parent]
	if !ok {
		return fmt.Errorf("edge %s->%s: %w", e.Parent, e.Child, ErrUnknownParentNode)
	}
	if e.Kind == EdgeMembership {
		if !slices.Contains(parent.Members, e.Child) {
			parent.Members = append(parent.Members, e.Child)
		}
		if h.direct[e.Parent] == nil {
			h.direct[e.Parent] = make(map[string]bool)
		}
		h.direct[e.Parent][e.Child] = true
		h.edges = append(h.edges, e)
		h.members = nil
		return nil
	}
	if _, ok := h.nodes[e.Child]; !ok {
		return fmt.Errorf("edge %s->%s: %w", e.Parent, e.Child, ErrUnknownChildNode)
	}
	h.edges = append(h.edges, e)
	h.children[e.Parent] = append(h.children[e.Parent], e.Child)
	h.parents[e.Child] = append(h.parents[e.Child], e.Parent)
	h.members = nil
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
// The pointer refers to the actual node, so attribute writes stick.
func (h *Hierarchy) Node(id string) (*Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (h *Hierarchy) Nodes() []*Node {
	nodes := make([]*Node, 0, len(h.order))
	for _, id := range h.order {
		nodes = append(nodes, h.nodes[id])
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (h *Hierarchy) NodeIDs() []string { return slices.Clone(h.order) }

// Edges returns a copy of all edges in insertion order.
func (h *Hierarchy) Edges() []Edge { return slices.Clone(h.edges) }

// ContainmentEdges returns only the system-to-system edges.
func (h *Hierarchy) ContainmentEdges() []Edge {
	var out []Edge
	for _, e := range h.edges {
		if e.Kind == EdgeContainment {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of systems in the hierarchy.
func (h *Hierarchy) NodeCount() int { return len(h.nodes) }

// Children returns the IDs of systems directly contained in the node.
// The returned slice is a read-only view.
func (h *Hierarchy) Children(id string) []string { return h.children[id] }

// Parents returns the IDs of systems directly containing the node.
// The returned slice is a read-only view.
func (h *Hierarchy) Parents(id string) []string { return h.parents[id] }

// InDegree returns the number of containment edges pointing at the node.
func (h *Hierarchy) InDegree(id string) int { return len(h.parents[id]) }

// OutDegree returns the number of containment edges leaving the node.
func (h *Hierarchy) OutDegree(id string) int { return len(h.children[id]) }

// Roots returns the IDs of all nodes with in-degree zero, in insertion
// order. A hierarchy may legitimately have more than one root; callers must
// not assume a single root and must never merge them.
func (h *Hierarchy) Roots() []string {
	var roots []string
	for _, id := range h.order {
		if len(h.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// IsLeaf reports whether the node contains no other systems.
func (h *Hierarchy) IsLeaf(id string) bool { return len(h.children[id]) == 0 }

// Leaves returns the IDs of all nodes with out-degree zero, in insertion
// order.
func (h *Hierarchy) Leaves() []string {
	var leaves []string
	for _, id := range h.order {
		if len(h.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Validate checks the structural invariants of the hierarchy:
//
//  1. The containment edges are acyclic.
//  2. At least one root (in-degree zero) node exists.
//  3. Every inner node's explicit member annotation is a subset of the
//     union of its descendant leaves' members.
//
// Returns ErrHierarchyHasCycle, ErrNoRootNode, or an error wrapping
// ErrMemberNotInDescendants naming the offending node and member.
// Runs in O(V+E) time.
func (h *Hierarchy) Validate() error {
	if len(h.nodes) == 0 {
		return ErrNoRootNode
	}
	if err := h.detectCycles(); err != nil {
		return err
	}
	if len(h.Roots()) == 0 {
		// Unreachable with acyclic edges on a non-empty node set, but kept
		// as a guard for direct misuse of the adjacency maps.
		return ErrNoRootNode
	}
	return h.checkMemberConsistency()
}

func (h *Hierarchy) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(h.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range h.children[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range h.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrHierarchyHasCycle
			}
		}
	}
	return nil
}

// checkMemberConsistency verifies that every inner node's explicit member
// annotation is covered by its descendants or by a direct membership edge.
// Leaf nodes are definitive: their explicit members need no covering.
func (h *Hierarchy) checkMemberConsistency() error {
	for _, id := range h.order {
		if h.IsLeaf(id) {
			continue
		}
		covered := make(map[string]bool)
		for _, child := range h.children[id] {
			for _, m := range h.Members(child) {
				covered[m] = true
			}
		}
		for m := range h.direct[id] {
			covered[m] = true
		}
		for _, m := range h.nodes[id].Members {
			if !covered[m] {
				return fmt.Errorf("node %s member %s: %w", id, m, ErrMemberNotInDescendants)
			}
		}
	}
	return nil
}

// Members returns the resolved leaf member set of the node: the union of
// the explicit members of the node and of all its descendants, sorted for
// deterministic output. Returns nil for an unknown node.
//
// Resolution is memoized: the first call walks the whole DAG once (O(V+E))
// and subsequent calls are lookups. Any AddNode or AddEdge clears the memo.
func (h *Hierarchy) Members(id string) []string {
	if _, ok := h.nodes[id]; !ok {
		return nil
	}
	if h.members == nil {
		h.resolveMembers()
	}
	return h.members[id]
}

// MemberSet returns the resolved leaf members of the node as a set.
func (h *Hierarchy) MemberSet(id string) map[string]bool {
	members := h.Members(id)
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return set
}

// resolveMembers computes the leaf-member union for every node in a single
// post-order pass over the containment DAG.
func (h *Hierarchy) resolveMembers() {
	h.members = make(map[string][]string, len(h.nodes))
	done := make(map[string]bool, len(h.nodes))

	var resolve func(id string) []string
	resolve = func(id string) []string {
		if done[id] {
			return h.members[id]
		}
		done[id] = true // pre-mark: cycles terminate with partial sets

		set := make(map[string]bool)
		for _, m := range h.nodes[id].Members {
			set[m] = true
		}
		for _, child := range h.children[id] {
			for _, m := range resolve(child) {
				set[m] = true
			}
		}

		members := make([]string, 0, len(set))
		for m := range set {
			members = append(members, m)
		}
		slices.Sort(members)
		h.members[id] = members
		return members
	}

	for _, id := range h.order {
		resolve(id)
	}
}
