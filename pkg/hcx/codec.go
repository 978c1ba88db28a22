package hcx

import (
	"fmt"
	"os"
	"strings"

	"github.com/cellmaps/hierkit/pkg/codec"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

// Suffix is the conventional extension for CX2/HCX files.
const Suffix = ".cx2"

// Codec implements [codec.Codec] for CX2/HCX hierarchy files.
type Codec struct{}

// Name returns "hcx".
func (c *Codec) Name() string { return "hcx" }

// Supports reports whether filename looks like a CX2 file.
func (c *Codec) Supports(filename string) bool {
	return strings.HasSuffix(filename, Suffix)
}

// Load reads and decodes a CX2/HCX hierarchy file.
func (c *Codec) Load(path string) (*hierarchy.Hierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy file: %w", err)
	}
	return DecodeHierarchy(data)
}

// Save writes the hierarchy as a raw CX2 document. The write is atomic.
func (c *Codec) Save(h *hierarchy.Hierarchy, path string) error {
	data, err := EncodeHierarchy(h)
	if err != nil {
		return err
	}
	return codec.WriteFileAtomic(path, data)
}

var _ codec.Codec = (*Codec)(nil)

// LoadInteractome reads and decodes a CX2 interactome file.
func LoadInteractome(path string) (*interactome.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read interactome file: %w", err)
	}
	return DecodeInteractome(data)
}

// SaveInteractome writes the network as a raw CX2 document. The write is
// atomic.
func SaveInteractome(net *interactome.Network, path string) error {
	data, err := EncodeInteractome(net)
	if err != nil {
		return err
	}
	return codec.WriteFileAtomic(path, data)
}
