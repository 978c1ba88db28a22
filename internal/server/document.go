package server

import (
	"encoding/json"

	"github.com/cellmaps/hierkit/pkg/codec/ddot"
	"github.com/cellmaps/hierkit/pkg/codec/hidef"
	"github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hcx"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
)

// Format identifiers accepted in documents.
const (
	FormatHiDeF = "hidef"
	FormatDDOT  = "ddot"
	FormatHCX   = "hcx"
)

// Document is a hierarchy in transit. Format selects which fields are
// meaningful: Nodes and Edges for hidef, Ontology for ddot, CX2 for hcx.
type Document struct {
	Format   string          `json:"format"`
	Nodes    string          `json:"nodes,omitempty"`
	Edges    string          `json:"edges,omitempty"`
	Ontology string          `json:"ontology,omitempty"`
	CX2      json.RawMessage `json:"cx2,omitempty"`
}

func (d Document) decode() (*hierarchy.Hierarchy, error) {
	switch d.Format {
	case FormatHiDeF:
		return hidef.Decode(d.Nodes, d.Edges, nil)
	case FormatDDOT:
		return ddot.DecodeOntology(d.Ontology)
	case FormatHCX:
		return hcx.DecodeHierarchy(d.CX2)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"unknown document format %q", d.Format)
	}
}

func encodeDocument(h *hierarchy.Hierarchy, format string) (Document, error) {
	switch format {
	case FormatHiDeF:
		nodes, edges := hidef.Encode(h)
		return Document{Format: FormatHiDeF, Nodes: nodes, Edges: edges}, nil
	case FormatDDOT:
		return Document{Format: FormatDDOT, Ontology: ddot.EncodeOntology(h)}, nil
	case FormatHCX:
		data, err := hcx.EncodeHierarchy(h)
		if err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "encode cx2 document")
		}
		return Document{Format: FormatHCX, CX2: data}, nil
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat,
			"unknown target format %q", format)
	}
}
