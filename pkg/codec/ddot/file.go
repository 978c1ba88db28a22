package ddot

import (
	"fmt"
	"os"
	"strings"

	"github.com/cellmaps/hierkit/pkg/codec"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

// Codec implements [codec.Codec] for DDOT ontology files.
type Codec struct{}

// Name returns "ddot".
func (c *Codec) Name() string { return "ddot" }

// Supports reports whether filename looks like a DDOT ontology file.
func (c *Codec) Supports(filename string) bool {
	return strings.HasSuffix(filename, OntologySuffix)
}

// Load reads and decodes a DDOT ontology file.
func (c *Codec) Load(path string) (*hierarchy.Hierarchy, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ontology file: %w", err)
	}
	return DecodeOntology(string(text))
}

// Save writes the hierarchy as a DDOT ontology file. The write is atomic.
func (c *Codec) Save(h *hierarchy.Hierarchy, path string) error {
	return codec.WriteFileAtomic(path, []byte(EncodeOntology(h)))
}

var _ codec.Codec = (*Codec)(nil)

// LoadInteractome reads and decodes a DDOT edge-list file into a flat
// interaction network.
func LoadInteractome(path string) (*interactome.Network, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}
	return DecodeInteractome(string(text))
}

// SaveInteractome writes the network as a DDOT edge list. The write is
// atomic.
func SaveInteractome(net *interactome.Network, path string) error {
	return codec.WriteFileAtomic(path, []byte(EncodeInteractome(net)))
}
