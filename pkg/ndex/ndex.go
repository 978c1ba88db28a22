// Package ndex is a client for the NDEx network repository. It fetches and
// stores CX2 networks over the v3 REST API, with raw bytes cached through a
// [cache.Cache] backend and decoded networks held in an in-process LRU.
package ndex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	hkerrors "github.com/cellmaps/hierkit/pkg/errors"
)

// DefaultHost is the public NDEx server.
const DefaultHost = "www.ndexbio.org"

var (
	// ErrNotFound is returned when a network UUID does not exist on the
	// server.
	ErrNotFound = errors.New("network not found")

	// ErrInvalidUUID is returned for identifiers that are not RFC 4122
	// UUIDs.
	ErrInvalidUUID = errors.New("invalid network uuid")
)

// ValidateUUID reports whether id is a well-formed network UUID.
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUUID, id)
	}
	return nil
}

// ParseNetworkURL splits an NDEx network URL into host and UUID.
//
// Accepted forms are the browser URL
// (https://www.ndexbio.org/viewer/networks/<uuid>), the REST URL
// (https://www.ndexbio.org/v3/networks/<uuid>), and a bare host/uuid pair.
// The host is the first path-less segment and the UUID the last segment.
func ParseNetworkURL(raw string) (host, id string, err error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.Trim(s, "/")
	if s == "" {
		return "", "", hkerrors.New(hkerrors.ErrCodeInvalidPath, "empty network url")
	}

	parts := strings.Split(s, "/")
	host = parts[0]
	id = parts[len(parts)-1]
	if len(parts) < 2 {
		return "", "", hkerrors.New(hkerrors.ErrCodeInvalidPath,
			"network url %q has no uuid segment", raw)
	}
	if err := ValidateUUID(id); err != nil {
		return "", "", hkerrors.Wrap(hkerrors.ErrCodeInvalidPath, err, "network url %q", raw)
	}
	return host, id, nil
}
