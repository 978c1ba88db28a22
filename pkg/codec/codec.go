// Package codec defines the common interface shared by all hierarchy
// interchange formats (HiDeF, DDOT, CX2/HCX).
//
// Each format package exposes a type implementing [Codec], so callers such
// as the robustness engine load and save hierarchies without knowing the
// concrete on-disk layout. New formats plug in without touching the engine.
package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cellmaps/hierkit/pkg/hierarchy"
)

// Codec converts between an on-disk interchange format and the in-memory
// hierarchy model.
type Codec interface {
	// Load parses the file(s) rooted at path into a hierarchy.
	Load(path string) (*hierarchy.Hierarchy, error)
	// Save serializes the hierarchy to path. Writes are atomic: on error no
	// partial output file remains.
	Save(h *hierarchy.Hierarchy, path string) error
	// Name returns the format identifier (e.g., "hidef", "ddot", "hcx").
	Name() string
	// Supports reports whether this codec handles the given filename.
	Supports(filename string) bool
}

// Detect finds a codec that supports the given file path.
// Returns an error if no codec matches.
func Detect(path string, codecs ...Codec) (Codec, error) {
	name := filepath.Base(path)
	for _, c := range codecs {
		if c.Supports(name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unsupported hierarchy format: %s", name)
}

// WriteFileAtomic writes data to path via a temporary sibling file and a
// rename, so a failed conversion never leaves a truncated output behind.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
