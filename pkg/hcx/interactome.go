package hcx

import (
	"encoding/json"

	"github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

// AttrInteraction is the CX2 edge attribute carrying the interaction type.
const AttrInteraction = "interaction"

// EncodeInteractome serializes a flat interaction network as a raw CX2
// document. Node handles are the network's own integer IDs.
func EncodeInteractome(net *interactome.Network) ([]byte, error) {
	var nodes []cxNode
	for _, n := range net.Nodes() {
		nodes = append(nodes, cxNode{ID: n.ID, V: map[string]any{AttrName: n.Name}})
	}

	var edges []cxEdge
	for i, e := range net.Edges() {
		edges = append(edges, cxEdge{
			ID:     i,
			Source: e.Source,
			Target: e.Target,
			V:      map[string]any{AttrInteraction: e.Type},
		})
	}

	doc := []cxAspect{
		{CXVersion: cxVersion},
		{Nodes: nodes},
		{Edges: edges},
		{Status: []map[string]any{{"success": true}}},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeInteractome parses a raw CX2 document into a flat interaction
// network. Nodes without a "name" attribute keep their numeric handle as
// name; edges without an interaction attribute get the generic type.
func DecodeInteractome(data []byte) (*interactome.Network, error) {
	var doc []cxAspect
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode CX2 document")
	}

	net := interactome.New()
	byHandle := make(map[int]int)

	for _, aspect := range doc {
		for _, cn := range aspect.Nodes {
			byHandle[cn.ID] = net.EnsureNode(nodeName(cn))
		}
	}
	for _, aspect := range doc {
		for _, ce := range aspect.Edges {
			source, okS := byHandle[ce.Source]
			target, okT := byHandle[ce.Target]
			if !okS || !okT {
				return nil, errors.New(errors.ErrCodeParse,
					"CX2 edge %d references unknown node handle", ce.ID)
			}
			edgeType, _ := ce.V[AttrInteraction].(string)
			if err := net.AddEdge(source, target, edgeType); err != nil {
				return nil, errors.Wrap(errors.ErrCodeParse, err, "CX2 edge %d", ce.ID)
			}
		}
	}

	return net, nil
}
