package hcx

import (
	"path/filepath"

	"github.com/cellmaps/hierkit/pkg/codec"
	"github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

// AttrFlaggedMembers marks members that could not be resolved against the
// interactome. Flagged members stay in the member list so viewers still
// render them.
const AttrFlaggedMembers = "flaggedMembers"

// Linkage describes how a hierarchy is tied to its parent interactome:
// either remotely (Host + UUID of a hosted network) or locally (an
// in-memory interactome to be written next to the hierarchy output).
// Exactly one form must be provided.
type Linkage struct {
	Host string
	UUID string

	Interactome *interactome.Network
	OutputDir   string // directory for the sibling interactome file
	LocalName   string // filename for the sibling interactome file
}

func (l Linkage) remote() bool { return l.UUID != "" }
func (l Linkage) local() bool  { return l.Interactome != nil }

// AddNetworkAnnotations attaches the hierarchy-level HCX annotations that
// record the parent-network linkage, plus the schema version and model file
// count expected by hierarchy viewers.
//
// For a remote linkage the host and UUID are recorded; for a local linkage
// the interactome is written (atomically) to OutputDir/LocalName and that
// name is recorded. Supplying both forms, or neither, is a
// LINKAGE_AMBIGUITY error and leaves the hierarchy untouched.
func AddNetworkAnnotations(h *hierarchy.Hierarchy, link Linkage) error {
	switch {
	case link.remote() && link.local():
		return errors.New(errors.ErrCodeLinkage,
			"both a remote network locator and a local interactome were supplied")
	case !link.remote() && !link.local():
		return errors.New(errors.ErrCodeLinkage,
			"a remote network locator or a local interactome is required")
	}

	h.Attr()[AttrSchema] = SchemaVersion
	h.Attr()[AttrModelFileCount] = 2

	if link.remote() {
		h.SetNetworkRef(hierarchy.NetworkRef{Host: link.Host, UUID: link.UUID})
		return nil
	}

	name := link.LocalName
	if name == "" {
		name = "hierarchy_parent.cx2"
	}
	data, err := EncodeInteractome(link.Interactome)
	if err != nil {
		return err
	}
	if err := codec.WriteFileAtomic(filepath.Join(link.OutputDir, name), data); err != nil {
		return err
	}
	h.SetNetworkRef(hierarchy.NetworkRef{LocalPath: name})
	return nil
}

// AddMembersAnnotation sets the HCX::members attribute on every node to the
// interactome IDs of its resolved leaf members.
//
// Members missing from the interactome are retained in the member list and
// recorded under AttrFlaggedMembers; they are never dropped, since viewers
// must still render them.
func AddMembersAnnotation(h *hierarchy.Hierarchy, net *interactome.Network) {
	for _, n := range h.Nodes() {
		var ids []int
		var flagged []string
		for _, m := range h.Members(n.ID) {
			if id, ok := net.LookupNode(m); ok {
				ids = append(ids, id)
			} else {
				flagged = append(flagged, m)
			}
		}
		n.Attr[AttrMembers] = ids
		if len(flagged) > 0 {
			n.Attr[AttrFlaggedMembers] = flagged
		} else {
			delete(n.Attr, AttrFlaggedMembers)
		}
	}
}

// AddIsRootAttribute sets HCX::isRoot to true on every node in roots.
// Non-root nodes receive no attribute: absence means false, which keeps
// serialized hierarchies small. Applying the same root set twice yields
// the same annotation state as applying it once.
func AddIsRootAttribute(h *hierarchy.Hierarchy, roots []string) {
	for _, id := range roots {
		if n, ok := h.Node(id); ok {
			n.Attr[AttrIsRoot] = true
		}
	}
}

// Annotate runs the full HCX annotation pass: network linkage, member
// resolution, and root flags, in that order.
func Annotate(h *hierarchy.Hierarchy, net *interactome.Network, link Linkage) error {
	if err := AddNetworkAnnotations(h, link); err != nil {
		return err
	}
	AddMembersAnnotation(h, net)
	AddIsRootAttribute(h, h.Roots())
	return nil
}
