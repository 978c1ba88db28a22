// Package hcx reads and writes hierarchies and interactomes in the CX2
// aspect-oriented JSON format, and decorates hierarchies with the HCX
// annotations (interactome linkage, member lists, root flags) that
// hierarchy viewers require.
//
// Only the bit-relevant aspects are handled: nodes, edges, and
// networkAttributes. Unknown aspects in an input document are ignored, and
// node identity maps onto the "name" attribute since CX2 integer handles
// are not stable across files.
package hcx

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
)

// HCX node and network attribute names.
const (
	AttrName           = "name"
	AttrMemberList     = "CD_MemberList"
	AttrMemberListSize = "CD_MemberList_Size"
	AttrPersistence    = "HiDeF_persistence"
	AttrMembers        = "HCX::members"
	AttrIsRoot         = "HCX::isRoot"
	AttrRobustness     = "robustness"

	AttrNetworkHost = "HCX::interactionNetworkHost"
	AttrNetworkUUID = "HCX::interactionNetworkUUID"
	AttrNetworkName = "HCX::interactionNetworkName"

	AttrSchema         = "ndexSchema"
	AttrModelFileCount = "HCX::modelFileCount"

	// SchemaVersion tags every hierarchy this package writes.
	SchemaVersion = "hierarchy_v0.1"
)

// cxVersion is written into the document preamble.
const cxVersion = "2.0"

// CX2 wire structures. An aspect element holds exactly one of the known
// aspect keys; unknown keys are preserved nowhere (ignored on read).
type (
	cxNode struct {
		ID int            `json:"id"`
		V  map[string]any `json:"v,omitempty"`
	}
	cxEdge struct {
		ID     int            `json:"id"`
		Source int            `json:"s"`
		Target int            `json:"t"`
		V      map[string]any `json:"v,omitempty"`
	}
	cxAspect struct {
		CXVersion         string           `json:"CXVersion,omitempty"`
		NetworkAttributes []map[string]any `json:"networkAttributes,omitempty"`
		Nodes             []cxNode         `json:"nodes,omitempty"`
		Edges             []cxEdge         `json:"edges,omitempty"`
		Status            []map[string]any `json:"status,omitempty"`
	}
)

// EncodeHierarchy serializes a hierarchy as a raw CX2 document.
//
// Node handles are assigned in insertion order. Each node carries its name,
// member list, member count, and any annotations already present in its
// Attr map. Hierarchy-level annotations and interactome linkage become
// networkAttributes.
func EncodeHierarchy(h *hierarchy.Hierarchy) ([]byte, error) {
	idOf := make(map[string]int, h.NodeCount())

	var nodes []cxNode
	for i, n := range h.Nodes() {
		idOf[n.ID] = i
		v := map[string]any{
			AttrName:           n.ID,
			AttrMemberList:     strings.Join(h.Members(n.ID), " "),
			AttrMemberListSize: len(h.Members(n.ID)),
		}
		if n.Label != "" {
			v["label"] = n.Label
		}
		for k, val := range n.Attr {
			v[k] = val
		}
		nodes = append(nodes, cxNode{ID: i, V: v})
	}

	var edges []cxEdge
	for i, e := range h.ContainmentEdges() {
		edges = append(edges, cxEdge{ID: i, Source: idOf[e.Parent], Target: idOf[e.Child]})
	}

	netAttrs := map[string]any{}
	for k, val := range h.Attr() {
		netAttrs[k] = val
	}
	ref := h.NetworkRef()
	if ref.IsRemote() {
		netAttrs[AttrNetworkUUID] = ref.UUID
		if ref.Host != "" {
			netAttrs[AttrNetworkHost] = ref.Host
		}
	} else if ref.IsLocal() {
		netAttrs[AttrNetworkName] = ref.LocalPath
	}

	doc := []cxAspect{
		{CXVersion: cxVersion},
		{NetworkAttributes: []map[string]any{netAttrs}},
		{Nodes: nodes},
		{Edges: edges},
		{Status: []map[string]any{{"success": true}}},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeHierarchy parses a raw CX2 document into a hierarchy.
//
// The node "name" attribute becomes the hierarchy node ID (falling back to
// the numeric CX2 handle), CD_MemberList populates the explicit member
// annotation, and HCX network attributes are restored into the hierarchy's
// annotation map and NetworkRef. Edges referencing unknown node handles
// yield a FORMAT_PARSE error.
func DecodeHierarchy(data []byte) (*hierarchy.Hierarchy, error) {
	var doc []cxAspect
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode CX2 document")
	}

	h := hierarchy.New()
	names := make(map[int]string)

	for _, aspect := range doc {
		for _, cn := range aspect.Nodes {
			name := nodeName(cn)
			names[cn.ID] = name

			n := hierarchy.Node{ID: name, Attr: hierarchy.Attributes{}}
			if members, ok := cn.V[AttrMemberList].(string); ok {
				n.Members = strings.Fields(members)
			}
			if label, ok := cn.V["label"].(string); ok {
				n.Label = label
			}
			for k, v := range cn.V {
				switch k {
				case AttrName, AttrMemberList, AttrMemberListSize, "label":
				default:
					n.Attr[k] = v
				}
			}
			if err := h.AddNode(n); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "CX2 node %d", cn.ID)
			}
		}
	}

	for _, aspect := range doc {
		for _, ce := range aspect.Edges {
			source, okS := names[ce.Source]
			target, okT := names[ce.Target]
			if !okS || !okT {
				return nil, errors.New(errors.ErrCodeParse,
					"CX2 edge %d references unknown node handle", ce.ID)
			}
			if err := h.AddEdge(hierarchy.Edge{Parent: source, Child: target}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "CX2 edge %d", ce.ID)
			}
		}
	}

	ref := hierarchy.NetworkRef{}
	for _, aspect := range doc {
		for _, attrs := range aspect.NetworkAttributes {
			for k, v := range attrs {
				switch k {
				case AttrNetworkUUID:
					ref.UUID, _ = v.(string)
				case AttrNetworkHost:
					ref.Host, _ = v.(string)
				case AttrNetworkName:
					ref.LocalPath, _ = v.(string)
				default:
					h.Attr()[k] = v
				}
			}
		}
	}
	h.SetNetworkRef(ref)

	return h, nil
}

func nodeName(cn cxNode) string {
	if name, ok := cn.V[AttrName].(string); ok && name != "" {
		return name
	}
	return strconv.Itoa(cn.ID)
}
