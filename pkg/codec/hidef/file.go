package hidef

import (
	"fmt"
	"os"

	"github.com/cellmaps/hierkit/pkg/codec"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
)

// Load reads the nodes file at path and its sibling edges file and decodes
// them into a hierarchy.
func (c *Codec) Load(path string) (*hierarchy.Hierarchy, error) {
	nodesText, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nodes file: %w", err)
	}
	edgesText, err := os.ReadFile(EdgesPath(path))
	if err != nil {
		return nil, fmt.Errorf("read edges file: %w", err)
	}
	return Decode(string(nodesText), string(edgesText), c.Network)
}

// Save writes the hierarchy as a nodes file at path plus a sibling edges
// file. Both writes are atomic; a failure leaves no partial output.
func (c *Codec) Save(h *hierarchy.Hierarchy, path string) error {
	nodesText, edgesText := Encode(h)
	if err := codec.WriteFileAtomic(path, []byte(nodesText)); err != nil {
		return err
	}
	return codec.WriteFileAtomic(EdgesPath(path), []byte(edgesText))
}

var _ codec.Codec = (*Codec)(nil)
